package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/emenu/auth"
	"github.com/diewo77/emenu/internal/models"
	"github.com/diewo77/emenu/view"
)

func newE2EApp(t *testing.T) (*gorm.DB, http.Handler) {
	t.Helper()
	view.ResetForTests()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Structure{}, &models.LoginHistory{},
		&models.Plat{}, &models.Menu{}, &models.Avis{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db, NewApp(db, t.TempDir())
}

func e2eSession(uid uint) *http.Cookie {
	rec := httptest.NewRecorder()
	auth.CreateSession(rec, uid)
	return rec.Result().Cookies()[0]
}

func TestHomePageRenders(t *testing.T) {
	db, app := newE2EApp(t)
	u := models.User{Email: "o@x", Password: "h"}
	db.Create(&u)
	db.Create(&models.Structure{UserID: u.ID, Nom: "Le Baobab", Telephone: "01", Adresse: "r", Ville: "Dakar", Type: models.TypeRestaurant})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Le Baobab") {
		t.Fatal("featured structure missing from home page")
	}
}

func TestDashboardRequiresLogin(t *testing.T) {
	_, app := newE2EApp(t)
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected /login, got %q", loc)
	}
}

func TestDashboardShowsStructuresAndHistory(t *testing.T) {
	db, app := newE2EApp(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("motdepasse123"), bcrypt.MinCost)
	u := models.User{Email: "owner@x", Password: string(hash)}
	db.Create(&u)
	db.Create(&models.Structure{UserID: u.ID, Nom: "Chez Awa", Telephone: "01", Adresse: "r", Ville: "Paris", Type: models.TypeCafe})
	uid := u.ID
	db.Create(&models.LoginHistory{UserID: &uid, LoginTime: time.Now(), IPAddress: "10.0.0.1", Success: true, Action: models.ActionLogin})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(e2eSession(u.ID))
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Chez Awa") {
		t.Fatal("structure missing from dashboard")
	}
}

func TestDashboardRejectsStaleSession(t *testing.T) {
	_, app := newE2EApp(t)

	// Validly signed cookie for a user that was never created (or deleted since).
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(e2eSession(999))
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected /login, got %q", loc)
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" && c.Value == "" {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("stale session cookie not cleared")
	}
}

func TestLangPreferenceSetsSingleCookie(t *testing.T) {
	_, app := newE2EApp(t)
	req := httptest.NewRequest(http.MethodGet, "/health?lang=en", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	var langCookies []string
	for _, c := range rec.Result().Cookies() {
		if c.Name == "lang" {
			langCookies = append(langCookies, c.Value)
		}
	}
	if len(langCookies) != 1 || langCookies[0] != "en" {
		t.Fatalf("expected exactly one lang=en cookie, got %v", langCookies)
	}
}

func TestHealthThroughApp(t *testing.T) {
	_, app := newE2EApp(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
