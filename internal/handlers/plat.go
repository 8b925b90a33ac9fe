package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/emenu/auth"
	"github.com/diewo77/emenu/gate"
	"github.com/diewo77/emenu/httpx"
	"github.com/diewo77/emenu/internal/middleware"
	"github.com/diewo77/emenu/internal/models"
	"github.com/diewo77/emenu/internal/policy"
	"github.com/diewo77/emenu/internal/services"
	"github.com/diewo77/emenu/validation"
)

type PlatHandler struct {
	DB       *gorm.DB
	Gate     *gate.Gate[uint]
	Uploads  *services.UploadService
	Accounts *services.AccountService
}

func NewPlatHandler(db *gorm.DB, g *gate.Gate[uint], uploads *services.UploadService) *PlatHandler {
	return &PlatHandler{DB: db, Gate: g, Uploads: uploads, Accounts: services.NewAccountService(db)}
}

func (h *PlatHandler) load(r *http.Request, uid uint, action gate.Action) (*models.Plat, bool) {
	id, ok := pathID(r)
	if !ok {
		return nil, false
	}
	var p models.Plat
	if err := h.DB.First(&p, id).Error; err != nil {
		return nil, false
	}
	if !h.Gate.Can(r.Context(), uid, action, policy.ResourcePlat, p) {
		return nil, false
	}
	return &p, true
}

func (h *PlatHandler) platForm(r *http.Request) (models.Plat, validation.Violations) {
	v := validation.Violations{}
	prixStr := strings.TrimSpace(r.FormValue("prix"))
	prix, err := strconv.ParseFloat(prixStr, 64)
	if prixStr == "" || err != nil || math.IsNaN(prix) || math.IsInf(prix, 0) {
		v["prix"] = "invalid_number"
		prix = 0
	}
	p := models.Plat{
		Nom:           strings.TrimSpace(r.FormValue("nom")),
		Description:   strings.TrimSpace(r.FormValue("description")),
		Prix:          prix,
		Categorie:     r.FormValue("categorie"),
		Disponibilite: r.FormValue("disponibilite") != "" && r.FormValue("disponibilite") != "false",
	}
	validation.Required("nom", p.Nom, v)
	validation.MaxLen("nom", p.Nom, 100, v)
	validation.Required("description", p.Description, v)
	validation.OneOf("categorie", p.Categorie, models.PlatCategories(), v)
	if _, bad := v["prix"]; !bad {
		validation.NonNegativeFloat("prix", p.Prix, v)
		// decimal(6,2) column
		validation.MaxFloat("prix", p.Prix, 9999.99, v)
	}
	return p, v
}

// List handles GET /plats: the creator's own dishes.
func (h *PlatHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	uid, _ := auth.CurrentUserID(r)
	var plats []models.Plat
	if err := h.DB.Where("createur_id = ?", uid).Order("id desc").Find(&plats).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_plats", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": plats, "total": len(plats)})
		return
	}
	renderTemplate(w, r, "plats", map[string]any{"Plats": plats})
}

// Create handles GET/POST /plats/nouveau.
func (h *PlatHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUserID(r)
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "plat_form", map[string]any{"Categories": models.PlatCategories()})
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "GET,POST")
		return
	}
	if err := parseAnyForm(r); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	p, v := h.platForm(r)
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		renderTemplate(w, r, "plat_form", map[string]any{"Errors": v, "Plat": p, "Categories": models.PlatCategories()})
		return
	}
	p.CreateurID = uid
	if fh := formFile(r, "photo"); fh != nil {
		if path, err := h.Uploads.Save(fh, "plats"); err == nil {
			p.Photo = path
		}
	}
	if err := h.DB.Create(&p).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "plat_create_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, p)
		return
	}
	middleware.Flash(w, r, "flash_plat_created")
	http.Redirect(w, r, "/plats", statusSeeOther)
}

// Update handles GET/POST /plats/{id}/modifier.
func (h *PlatHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUserID(r)
	p, ok := h.load(r, uid, gate.ActionUpdate)
	if !ok {
		notFound(w, r)
		return
	}
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "plat_form", map[string]any{"Plat": p, "Categories": models.PlatCategories()})
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "GET,POST")
		return
	}
	if err := parseAnyForm(r); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	input, v := h.platForm(r)
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		input.ID = p.ID
		renderTemplate(w, r, "plat_form", map[string]any{"Errors": v, "Plat": input, "Categories": models.PlatCategories()})
		return
	}
	p.Nom = input.Nom
	p.Description = input.Description
	p.Prix = input.Prix
	p.Categorie = input.Categorie
	p.Disponibilite = input.Disponibilite
	if fh := formFile(r, "photo"); fh != nil {
		if path, err := h.Uploads.Save(fh, "plats"); err == nil {
			p.Photo = path
		}
	}
	if err := h.DB.Save(p).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "plat_update_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, p)
		return
	}
	middleware.Flash(w, r, "flash_plat_updated")
	http.Redirect(w, r, "/plats", statusSeeOther)
}

// Delete handles POST /plats/{id}/supprimer.
func (h *PlatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	uid, _ := auth.CurrentUserID(r)
	p, ok := h.load(r, uid, gate.ActionDelete)
	if !ok {
		notFound(w, r)
		return
	}
	if err := h.Accounts.DeletePlat(p.ID); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "plat_delete_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": p.ID})
		return
	}
	middleware.Flash(w, r, "flash_plat_deleted")
	http.Redirect(w, r, "/plats", statusSeeOther)
}
