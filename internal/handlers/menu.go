package handlers

import (
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

type MenuHandler struct {
	DB       *gorm.DB
	Gate     *gate.Gate[uint]
	Accounts *services.AccountService
}

func NewMenuHandler(db *gorm.DB, g *gate.Gate[uint]) *MenuHandler {
	return &MenuHandler{DB: db, Gate: g, Accounts: services.NewAccountService(db)}
}

func (h *MenuHandler) load(r *http.Request, uid uint, action gate.Action) (*models.Menu, bool) {
	id, ok := pathID(r)
	if !ok {
		return nil, false
	}
	var m models.Menu
	if err := h.DB.Preload("Plats").First(&m, id).Error; err != nil {
		return nil, false
	}
	if !h.Gate.Can(r.Context(), uid, action, policy.ResourceMenu, m) {
		return nil, false
	}
	return &m, true
}

// ownPlats returns the caller's dishes, the only ones a menu may reference.
func (h *MenuHandler) ownPlats(uid uint) []models.Plat {
	var plats []models.Plat
	_ = h.DB.Where("createur_id = ?", uid).Order("nom asc").Find(&plats).Error
	return plats
}

// selectedPlats resolves the submitted plat_ids, silently dropping any dish
// the caller did not create.
func (h *MenuHandler) selectedPlats(r *http.Request, uid uint) []models.Plat {
	ids := make([]uint, 0, len(r.Form["plat_ids"]))
	for _, raw := range r.Form["plat_ids"] {
		if id64, err := strconv.ParseUint(raw, 10, 64); err == nil && id64 > 0 {
			ids = append(ids, uint(id64))
		}
	}
	if len(ids) == 0 {
		return nil
	}
	var plats []models.Plat
	_ = h.DB.Where("id IN ? AND createur_id = ?", ids, uid).Find(&plats).Error
	return plats
}

// firstStructure returns the caller's first structure, which anchors new menus.
func (h *MenuHandler) firstStructure(uid uint) (*models.Structure, bool) {
	var st models.Structure
	if err := h.DB.Where("user_id = ?", uid).Order("id asc").First(&st).Error; err != nil {
		return nil, false
	}
	return &st, true
}

// List handles GET /menus: the creator's own menus.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	uid, _ := auth.CurrentUserID(r)
	var menus []models.Menu
	if err := h.DB.Preload("Plats").Preload("Structure").
		Where("createur_id = ?", uid).Order("id desc").Find(&menus).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_menus", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": menus, "total": len(menus)})
		return
	}
	renderTemplate(w, r, "menus", map[string]any{"Menus": menus})
}

// Create handles GET/POST /menus/nouveau. A menu always hangs off the
// creator's first structure; without one the request is rejected.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUserID(r)
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "menu_form", map[string]any{
			"Plats":    h.ownPlats(uid),
			"Statuses": models.MenuStatuses(),
		})
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "GET,POST")
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	st, hasStructure := h.firstStructure(uid)
	if !hasStructure {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "structure_required", nil)
			return
		}
		middleware.Flash(w, r, "flash_structure_required")
		http.Redirect(w, r, "/register_structure", statusSeeOther)
		return
	}
	nom := strings.TrimSpace(r.FormValue("nom"))
	status := r.FormValue("status")
	if status == "" {
		status = models.MenuBrouillon
	}
	v := validation.Violations{}
	validation.Required("nom", nom, v)
	validation.MaxLen("nom", nom, 100, v)
	validation.OneOf("status", status, models.MenuStatuses(), v)
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		renderTemplate(w, r, "menu_form", map[string]any{
			"Errors": v, "Nom": nom, "Plats": h.ownPlats(uid), "Statuses": models.MenuStatuses(),
		})
		return
	}
	m := models.Menu{Nom: nom, Status: status, CreateurID: uid, StructureID: st.ID}
	if err := h.DB.Create(&m).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "menu_create_failed", nil)
		return
	}
	if plats := h.selectedPlats(r, uid); len(plats) > 0 {
		if err := h.DB.Model(&m).Association("Plats").Append(&plats); err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "menu_create_failed", nil)
			return
		}
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, m)
		return
	}
	middleware.Flash(w, r, "flash_menu_created")
	http.Redirect(w, r, "/menus", statusSeeOther)
}

// Update handles GET/POST /menus/{id}/modifier.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUserID(r)
	m, ok := h.load(r, uid, gate.ActionUpdate)
	if !ok {
		notFound(w, r)
		return
	}
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "menu_form", map[string]any{
			"Menu":     m,
			"Plats":    h.ownPlats(uid),
			"Statuses": models.MenuStatuses(),
		})
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "GET,POST")
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	nom := strings.TrimSpace(r.FormValue("nom"))
	status := r.FormValue("status")
	if status == "" {
		status = m.Status
	}
	v := validation.Violations{}
	validation.Required("nom", nom, v)
	validation.MaxLen("nom", nom, 100, v)
	validation.OneOf("status", status, models.MenuStatuses(), v)
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		renderTemplate(w, r, "menu_form", map[string]any{
			"Errors": v, "Menu": m, "Plats": h.ownPlats(uid), "Statuses": models.MenuStatuses(),
		})
		return
	}
	m.Nom = nom
	m.Status = status
	if err := h.DB.Save(m).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "menu_update_failed", nil)
		return
	}
	plats := h.selectedPlats(r, uid)
	if err := h.DB.Model(m).Association("Plats").Replace(&plats); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "menu_update_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, m)
		return
	}
	middleware.Flash(w, r, "flash_menu_updated")
	http.Redirect(w, r, "/menus", statusSeeOther)
}

// Delete handles POST /menus/{id}/supprimer.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	uid, _ := auth.CurrentUserID(r)
	m, ok := h.load(r, uid, gate.ActionDelete)
	if !ok {
		notFound(w, r)
		return
	}
	if err := h.Accounts.DeleteMenu(m.ID); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "menu_delete_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": m.ID})
		return
	}
	middleware.Flash(w, r, "flash_menu_deleted")
	http.Redirect(w, r, "/menus", statusSeeOther)
}
