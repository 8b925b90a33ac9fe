package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/emenu/auth"
	"github.com/diewo77/emenu/gate"
	"github.com/diewo77/emenu/httpx"
	"github.com/diewo77/emenu/internal/middleware"
	"github.com/diewo77/emenu/internal/models"
	"github.com/diewo77/emenu/internal/policy"
	"github.com/diewo77/emenu/validation"
)

type AvisHandler struct {
	DB   *gorm.DB
	Gate *gate.Gate[uint]
}

func NewAvisHandler(db *gorm.DB, g *gate.Gate[uint]) *AvisHandler {
	return &AvisHandler{DB: db, Gate: g}
}

// CreateForPlat handles GET/POST /plats/{id}/avis/nouveau.
func (h *AvisHandler) CreateForPlat(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, r)
		return
	}
	var p models.Plat
	if err := h.DB.First(&p, id).Error; err != nil {
		notFound(w, r)
		return
	}
	h.create(w, r, map[string]any{"Plat": p, "Target": p.Nom}, func(a *models.Avis) {
		a.PlatID = &p.ID
	})
}

// CreateForMenu handles GET/POST /menus/{id}/avis/nouveau.
func (h *AvisHandler) CreateForMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, r)
		return
	}
	var m models.Menu
	if err := h.DB.First(&m, id).Error; err != nil {
		notFound(w, r)
		return
	}
	h.create(w, r, map[string]any{"Menu": m, "Target": m.Nom}, func(a *models.Avis) {
		a.MenuID = &m.ID
	})
}

// create holds the shared review flow; attach pins the review to exactly
// one target, set by the route that resolved it.
func (h *AvisHandler) create(w http.ResponseWriter, r *http.Request, formData map[string]any, attach func(*models.Avis)) {
	uid, _ := auth.CurrentUserID(r)
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "avis_form", formData)
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
	note, noteErr := strconv.Atoi(r.FormValue("note"))
	commentaire := strings.TrimSpace(r.FormValue("commentaire"))

	v := validation.Violations{}
	if noteErr != nil {
		v["note"] = "invalid_number"
	} else {
		validation.IntRange("note", note, models.NoteMin, models.NoteMax, v)
	}
	validation.Required("commentaire", commentaire, v)
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		formData["Errors"] = v
		formData["Note"] = r.FormValue("note")
		formData["Commentaire"] = commentaire
		renderTemplate(w, r, "avis_form", formData)
		return
	}

	a := models.Avis{
		Note:            note,
		Commentaire:     commentaire,
		DatePublication: time.Now(),
		AuteurID:        uid,
	}
	attach(&a)
	if err := h.DB.Create(&a).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "avis_create_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, a)
		return
	}
	middleware.Flash(w, r, "flash_avis_created")
	http.Redirect(w, r, backTo(r), statusSeeOther)
}

// Delete handles POST /avis/{id}/supprimer. Only the author may remove a review.
func (h *AvisHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	uid, _ := auth.CurrentUserID(r)
	id, ok := pathID(r)
	if !ok {
		notFound(w, r)
		return
	}
	var a models.Avis
	if err := h.DB.First(&a, id).Error; err != nil {
		notFound(w, r)
		return
	}
	if !h.Gate.Can(r.Context(), uid, gate.ActionDelete, policy.ResourceAvis, a) {
		notFound(w, r)
		return
	}
	if err := h.DB.Delete(&models.Avis{}, a.ID).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "avis_delete_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": a.ID})
		return
	}
	middleware.Flash(w, r, "flash_avis_deleted")
	http.Redirect(w, r, backTo(r), statusSeeOther)
}

// backTo sends the browser back where it came from; same-site referers only.
func backTo(r *http.Request) string {
	ref := r.Referer()
	if ref != "" && strings.HasPrefix(ref, "/") {
		return ref
	}
	if ref != "" {
		if i := strings.Index(ref, "://"); i >= 0 {
			rest := ref[i+3:]
			if j := strings.Index(rest, "/"); j >= 0 {
				return rest[j:]
			}
		}
	}
	return "/"
}
