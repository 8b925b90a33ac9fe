package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/diewo77/emenu/internal/models"
)

func platForm(nom string) url.Values {
	return url.Values{
		"nom":           {nom},
		"description":   {"Un classique de la maison"},
		"prix":          {"12.50"},
		"categorie":     {models.CategoriePlat},
		"disponibilite": {"on"},
	}
}

func TestPlatCreate(t *testing.T) {
	db, h := newTestApp(t)
	user := createUser(t, db, "chef@example.com")

	rec := doForm(t, h, http.MethodPost, "/plats/nouveau", platForm("Thiéboudienne"), user.ID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var p models.Plat
	if err := db.First(&p).Error; err != nil {
		t.Fatalf("plat not persisted: %v", err)
	}
	if p.CreateurID != user.ID || p.Prix != 12.50 || !p.Disponibilite {
		t.Fatalf("bad plat: %+v", p)
	}
}

func TestPlatCreateRejectsNegativePrice(t *testing.T) {
	db, h := newTestApp(t)
	user := createUser(t, db, "chef@example.com")

	form := platForm("Gratuit")
	form.Set("prix", "-1")
	rec := doForm(t, h, http.MethodPost, "/plats/nouveau", form, user.ID)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp struct {
		Details map[string]string `json:"details"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Details["prix"] != "must_not_be_negative" {
		t.Fatalf("unexpected violations: %v", resp.Details)
	}
}

func TestPlatCreateRejectsExcessivePrice(t *testing.T) {
	db, h := newTestApp(t)
	user := createUser(t, db, "chef@example.com")

	form := platForm("Homard")
	form.Set("prix", "10000")
	rec := doForm(t, h, http.MethodPost, "/plats/nouveau", form, user.ID)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp struct {
		Details map[string]string `json:"details"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Details["prix"] != "too_large" {
		t.Fatalf("unexpected violations: %v", resp.Details)
	}
	var count int64
	db.Model(&models.Plat{}).Count(&count)
	if count != 0 {
		t.Fatal("plat persisted despite invalid price")
	}
}

func TestPlatCreateRejectsNonFinitePrice(t *testing.T) {
	db, h := newTestApp(t)
	user := createUser(t, db, "chef@example.com")

	for _, prix := range []string{"NaN", "Inf", "-Inf"} {
		form := platForm("Infini")
		form.Set("prix", prix)
		rec := doForm(t, h, http.MethodPost, "/plats/nouveau", form, user.ID)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("prix=%s: expected 400, got %d", prix, rec.Code)
		}
		var resp struct {
			Details map[string]string `json:"details"`
		}
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Details["prix"] != "invalid_number" {
			t.Fatalf("prix=%s: unexpected violations: %v", prix, resp.Details)
		}
	}
}

func TestPlatCreateRejectsBadCategory(t *testing.T) {
	db, h := newTestApp(t)
	user := createUser(t, db, "chef@example.com")

	form := platForm("Mystère")
	form.Set("categorie", "amuse-bouche")
	rec := doForm(t, h, http.MethodPost, "/plats/nouveau", form, user.ID)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPlatListScopedToCreator(t *testing.T) {
	db, h := newTestApp(t)
	chef := createUser(t, db, "chef@example.com")
	autre := createUser(t, db, "autre@example.com")
	db.Create(&models.Plat{Nom: "A moi", Description: "x", Prix: 5, Categorie: models.CategorieEntree, CreateurID: chef.ID})
	db.Create(&models.Plat{Nom: "Pas à moi", Description: "x", Prix: 5, Categorie: models.CategorieEntree, CreateurID: autre.ID})

	rec := doGet(t, h, "/plats", chef.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Items []models.Plat `json:"items"`
		Total int           `json:"total"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Items[0].Nom != "A moi" {
		t.Fatalf("list not scoped: %+v", resp)
	}
}

func TestPlatUpdateByStranger(t *testing.T) {
	db, h := newTestApp(t)
	chef := createUser(t, db, "chef@example.com")
	autre := createUser(t, db, "autre@example.com")
	db.Create(&models.Plat{Nom: "Original", Description: "x", Prix: 5, Categorie: models.CategorieEntree, CreateurID: chef.ID})

	rec := doForm(t, h, http.MethodPost, "/plats/1/modifier", platForm("Volé"), autre.ID)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("stranger update expected 404, got %d", rec.Code)
	}
	var p models.Plat
	db.First(&p, 1)
	if p.Nom != "Original" {
		t.Fatalf("plat modified by stranger: %+v", p)
	}
}

func TestPlatDeleteDetaches(t *testing.T) {
	db, h := newTestApp(t)
	chef := createUser(t, db, "chef@example.com")
	st := createStructure(t, db, chef.ID, "Chez Chef")
	plat := models.Plat{Nom: "Salade", Description: "x", Prix: 5, Categorie: models.CategorieEntree, CreateurID: chef.ID}
	db.Create(&plat)
	menu := models.Menu{Nom: "Midi", Status: models.MenuActif, CreateurID: chef.ID, StructureID: st.ID}
	db.Create(&menu)
	if err := db.Model(&menu).Association("Plats").Append(&plat); err != nil {
		t.Fatal(err)
	}

	rec := doForm(t, h, http.MethodPost, "/plats/1/supprimer", url.Values{}, chef.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var plats, menus, joins int64
	db.Model(&models.Plat{}).Count(&plats)
	db.Model(&models.Menu{}).Count(&menus)
	db.Table("menu_plats").Count(&joins)
	if plats != 0 || joins != 0 || menus != 1 {
		t.Fatalf("delete side effects wrong: plats=%d joins=%d menus=%d", plats, joins, menus)
	}
}
