package handlers

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/emenu/auth"
	"github.com/diewo77/emenu/httpx"
	"github.com/diewo77/emenu/internal/middleware"
	"github.com/diewo77/emenu/internal/models"
	"github.com/diewo77/emenu/internal/services"
	"github.com/diewo77/emenu/validation"
)

type AuthHandler struct {
	DB      *gorm.DB
	History *services.HistoryService
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{DB: db, History: services.NewHistoryService(db)}
}

func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/login", h.login)
	mux.HandleFunc("/logout", h.logout)
	mux.HandleFunc("/register", h.register)
}

// postLoginTarget sends structure owners to their dashboard, everyone else home.
func (h *AuthHandler) postLoginTarget(uid uint) string {
	var count int64
	if err := h.DB.Model(&models.Structure{}).Where("user_id = ?", uid).Limit(1).Count(&count).Error; err == nil && count > 0 {
		return "/dashboard"
	}
	return "/"
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		// If already logged in, verify user still exists, then redirect.
		if uid, ok := auth.CurrentUserID(r); ok {
			var count int64
			if err := h.DB.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err == nil && count > 0 {
				http.Redirect(w, r, h.postLoginTarget(uid), http.StatusSeeOther)
				return
			}
			// Stale session: clear and continue to render login
			auth.ClearSession(w)
		}
		renderTemplate(w, r, "login", nil)
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
	email := strings.TrimSpace(r.FormValue("email"))
	pass := r.FormValue("password")

	fail := func(uid *uint, code string) {
		h.History.Record(uid, auth.ClientIP(r), r.UserAgent(), false, models.ActionFailedAttempt)
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusUnauthorized, code, nil)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		renderTemplate(w, r, "login", map[string]any{"Error": code, "Email": email})
	}

	if email == "" || pass == "" {
		fail(nil, "login_failed")
		return
	}
	var user models.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err != nil {
		// Unknown email still leaves an audit row, with no user attached.
		fail(nil, "login_failed")
		return
	}
	uid := user.ID
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(pass)) != nil {
		fail(&uid, "login_failed")
		return
	}
	if user.Status != models.StatusActive {
		// Same generic message as a bad password so the response does not
		// confirm that the credentials were right; the history row keeps
		// the attempt on record.
		fail(&uid, "login_failed")
		return
	}

	h.History.Record(&uid, auth.ClientIP(r), r.UserAgent(), true, models.ActionLogin)
	auth.CreateSession(w, user.ID)
	target := h.postLoginTarget(user.ID)
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"id": user.ID, "redirect": target})
		return
	}
	middleware.Flash(w, r, "flash_login_welcome")
	http.Redirect(w, r, target, statusSeeOther)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		methodNotAllowed(w, "GET,POST")
		return
	}
	if uid, ok := auth.CurrentUserID(r); ok {
		h.History.Record(&uid, auth.ClientIP(r), r.UserAgent(), true, models.ActionLogout)
	}
	auth.ClearSession(w)
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
		return
	}
	http.Redirect(w, r, "/login", statusSeeOther)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "register", nil)
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
	email := strings.TrimSpace(r.FormValue("email"))
	pass := r.FormValue("password")
	confirm := r.FormValue("password_confirm")
	prenom := strings.TrimSpace(r.FormValue("prenom"))
	nom := strings.TrimSpace(r.FormValue("nom"))
	telephone := strings.TrimSpace(r.FormValue("telephone"))
	adresse := strings.TrimSpace(r.FormValue("adresse"))
	ville := strings.TrimSpace(r.FormValue("ville"))

	v := validation.Violations{}
	validation.Required("email", email, v)
	validation.Required("password", pass, v)
	if _, bad := v["email"]; !bad {
		validation.Email("email", email, v)
		validation.MaxLen("email", email, 191, v)
	}
	if _, bad := v["password"]; !bad {
		if len(pass) < 8 {
			v["password"] = "password_too_short"
		} else if confirm != "" && confirm != pass {
			v["password_confirm"] = "password_mismatch"
		}
	}
	validation.MaxLen("prenom", prenom, 100, v)
	validation.MaxLen("nom", nom, 100, v)
	validation.MaxLen("telephone", telephone, 20, v)
	validation.MaxLen("adresse", adresse, 255, v)
	validation.MaxLen("ville", ville, 100, v)

	if v.Empty() {
		var count int64
		if err := h.DB.Model(&models.User{}).Where("email = ?", email).Limit(1).Count(&count).Error; err == nil && count > 0 {
			v["email"] = "email_taken"
		}
	}
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		renderTemplate(w, r, "register", map[string]any{
			"Errors": v,
			"Form":   map[string]string{"Email": email, "Prenom": prenom, "Nom": nom, "Telephone": telephone, "Adresse": adresse, "Ville": ville},
		})
		return
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	user := models.User{
		Email:     email,
		Password:  string(hash),
		Prenom:    prenom,
		Nom:       nom,
		Telephone: telephone,
		Adresse:   adresse,
		Ville:     ville,
		Role:      models.RoleClient,
		Status:    models.StatusActive,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		// Unique index race: treat a concurrent duplicate like the pre-check.
		if strings.Contains(strings.ToLower(err.Error()), "unique") || strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			v["email"] = "email_taken"
			if httpx.WantsJSON(r) {
				httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
				return
			}
			w.WriteHeader(http.StatusBadRequest)
			renderTemplate(w, r, "register", map[string]any{"Errors": v})
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "user_create_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, map[string]any{"id": user.ID})
		return
	}
	// No auto-login: the new account signs in explicitly.
	middleware.Flash(w, r, "flash_account_created")
	http.Redirect(w, r, "/login", statusSeeOther)
}
