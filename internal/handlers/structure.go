package handlers

import (
	"fmt"
	"net/http"
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

type StructureHandler struct {
	DB        *gorm.DB
	Gate      *gate.Gate[uint]
	Uploads   *services.UploadService
	Accounts  *services.AccountService
	Directory *services.DirectoryService
}

func NewStructureHandler(db *gorm.DB, g *gate.Gate[uint], uploads *services.UploadService) *StructureHandler {
	return &StructureHandler{
		DB:        db,
		Gate:      g,
		Uploads:   uploads,
		Accounts:  services.NewAccountService(db),
		Directory: services.NewDirectoryService(db),
	}
}

// load fetches by id then asks the gate; a denied resource reads as missing.
func (h *StructureHandler) load(r *http.Request, uid uint, action gate.Action) (*models.Structure, bool) {
	id, ok := pathID(r)
	if !ok {
		return nil, false
	}
	var st models.Structure
	if err := h.DB.First(&st, id).Error; err != nil {
		return nil, false
	}
	if !h.Gate.Can(r.Context(), uid, action, policy.ResourceStructure, st) {
		return nil, false
	}
	return &st, true
}

func (h *StructureHandler) structureForm(r *http.Request) (models.Structure, validation.Violations) {
	st := models.Structure{
		Nom:            strings.TrimSpace(r.FormValue("nom")),
		Telephone:      strings.TrimSpace(r.FormValue("telephone")),
		Adresse:        strings.TrimSpace(r.FormValue("adresse")),
		Ville:          strings.TrimSpace(r.FormValue("ville")),
		HeureOuverture: strings.TrimSpace(r.FormValue("heure_ouverture")),
		Description:    strings.TrimSpace(r.FormValue("description")),
		Type:           r.FormValue("type"),
	}
	v := validation.Violations{}
	validation.Required("nom", st.Nom, v)
	validation.MaxLen("nom", st.Nom, 100, v)
	validation.Required("telephone", st.Telephone, v)
	validation.MaxLen("telephone", st.Telephone, 20, v)
	validation.Required("adresse", st.Adresse, v)
	validation.MaxLen("adresse", st.Adresse, 255, v)
	validation.Required("ville", st.Ville, v)
	validation.MaxLen("ville", st.Ville, 100, v)
	validation.MaxLen("heure_ouverture", st.HeureOuverture, 100, v)
	validation.OneOf("type", st.Type, models.StructureTypes(), v)
	return st, v
}

// RegisterStructure handles GET/POST /register_structure.
func (h *StructureHandler) RegisterStructure(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUserID(r)
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "register_structure", map[string]any{"Types": models.StructureTypes()})
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
	st, v := h.structureForm(r)
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		renderTemplate(w, r, "register_structure", map[string]any{"Errors": v, "Structure": st, "Types": models.StructureTypes()})
		return
	}
	st.UserID = uid
	if fh := formFile(r, "photo"); fh != nil {
		path, err := h.Uploads.Save(fh, "structures")
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_photo", nil)
			return
		}
		st.Photo = path
	}
	if err := h.DB.Create(&st).Error; err != nil {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusInternalServerError, "structure_create_failed", nil)
			return
		}
		// Surface the failure as a flash on the dashboard, as the form page does not keep state.
		middleware.Flash(w, r, fmt.Sprintf("Erreur lors de la création de la structure: %v", err))
		http.Redirect(w, r, "/dashboard", statusSeeOther)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, st)
		return
	}
	middleware.Flash(w, r, "flash_structure_created")
	http.Redirect(w, r, "/dashboard", statusSeeOther)
}

// List handles GET /structure: the public directory with ville/type filters.
func (h *StructureHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	ville := strings.TrimSpace(r.URL.Query().Get("ville"))
	typ := strings.TrimSpace(r.URL.Query().Get("type"))
	structures, err := h.Directory.List(ville, typ)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_structures", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": structures, "total": len(structures)})
		return
	}
	villes, _ := h.Directory.Villes()
	types, _ := h.Directory.Types()
	renderTemplate(w, r, "structure", map[string]any{
		"Structures":    structures,
		"Villes":        villes,
		"Types":         types,
		"SelectedVille": ville,
		"SelectedType":  typ,
	})
}

// OwnerDetail handles GET /structure_detail/{id}: the management view, owner only.
func (h *StructureHandler) OwnerDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	uid, _ := auth.CurrentUserID(r)
	st, ok := h.load(r, uid, gate.ActionView)
	if !ok {
		notFound(w, r)
		return
	}
	var menus []models.Menu
	_ = h.DB.Preload("Plats").Where("structure_id = ?", st.ID).Order("id desc").Find(&menus).Error
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"structure": st, "menus": menus})
		return
	}
	renderTemplate(w, r, "structure_detail", map[string]any{"Structure": st, "Menus": menus})
}

// PublicDetail handles GET /detail/{id}: what any signed-in visitor sees.
func (h *StructureHandler) PublicDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	id, ok := pathID(r)
	if !ok {
		notFound(w, r)
		return
	}
	var st models.Structure
	if err := h.DB.Preload("Menus", "status = ?", models.MenuActif).
		Preload("Menus.Plats").First(&st, id).Error; err != nil {
		notFound(w, r)
		return
	}
	uid, _ := auth.CurrentUserID(r)
	hasStructure := st.UserID == uid
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"structure": st, "has_structure": hasStructure})
		return
	}
	renderTemplate(w, r, "detail", map[string]any{"Structure": st, "HasStructure": hasStructure})
}

// Update handles GET/POST /structure_form/{id}. The owner never changes.
func (h *StructureHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUserID(r)
	st, ok := h.load(r, uid, gate.ActionUpdate)
	if !ok {
		notFound(w, r)
		return
	}
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "structure_form", map[string]any{"Structure": st, "Types": models.StructureTypes()})
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
	input, v := h.structureForm(r)
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		input.ID = st.ID
		renderTemplate(w, r, "structure_form", map[string]any{"Errors": v, "Structure": input, "Types": models.StructureTypes()})
		return
	}
	st.Nom = input.Nom
	st.Telephone = input.Telephone
	st.Adresse = input.Adresse
	st.Ville = input.Ville
	st.HeureOuverture = input.HeureOuverture
	st.Description = input.Description
	st.Type = input.Type
	if fh := formFile(r, "photo"); fh != nil {
		if path, err := h.Uploads.Save(fh, "structures"); err == nil {
			st.Photo = path
		}
	}
	if err := h.DB.Save(st).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "structure_update_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, st)
		return
	}
	middleware.Flash(w, r, "flash_structure_updated")
	http.Redirect(w, r, fmt.Sprintf("/structure_detail/%d", st.ID), statusSeeOther)
}

// Delete handles POST /account_delete/{id}: remove a structure and everything under it.
func (h *StructureHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	uid, _ := auth.CurrentUserID(r)
	st, ok := h.load(r, uid, gate.ActionDelete)
	if !ok {
		notFound(w, r)
		return
	}
	if err := h.Accounts.DeleteStructure(st.ID); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "structure_delete_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": st.ID})
		return
	}
	middleware.Flash(w, r, "flash_structure_deleted")
	http.Redirect(w, r, "/dashboard", statusSeeOther)
}
