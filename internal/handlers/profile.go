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

type ProfileHandler struct {
	DB       *gorm.DB
	Uploads  *services.UploadService
	Accounts *services.AccountService
}

func NewProfileHandler(db *gorm.DB, uploads *services.UploadService) *ProfileHandler {
	return &ProfileHandler{DB: db, Uploads: uploads, Accounts: services.NewAccountService(db)}
}

func (h *ProfileHandler) currentUser(r *http.Request) (*models.User, bool) {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		return nil, false
	}
	var user models.User
	if err := h.DB.First(&user, uid).Error; err != nil {
		return nil, false
	}
	return &user, true
}

// Show handles GET /profile.
func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	user, ok := h.currentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", statusSeeOther)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"id": user.ID, "email": user.Email, "prenom": user.Prenom, "nom": user.Nom,
			"telephone": user.Telephone, "adresse": user.Adresse, "ville": user.Ville,
			"role": user.Role, "photo": user.Photo, "created_at": user.CreatedAt,
		})
		return
	}
	renderTemplate(w, r, "profile", map[string]any{"User": user})
}

// Update handles GET/POST /profile_form.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", statusSeeOther)
		return
	}
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "profile_form", map[string]any{"User": user})
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
	email := strings.TrimSpace(r.FormValue("email"))
	prenom := strings.TrimSpace(r.FormValue("prenom"))
	nom := strings.TrimSpace(r.FormValue("nom"))
	telephone := strings.TrimSpace(r.FormValue("telephone"))
	adresse := strings.TrimSpace(r.FormValue("adresse"))
	ville := strings.TrimSpace(r.FormValue("ville"))

	v := validation.Violations{}
	validation.Required("email", email, v)
	if _, bad := v["email"]; !bad {
		validation.Email("email", email, v)
		validation.MaxLen("email", email, 191, v)
	}
	validation.MaxLen("prenom", prenom, 100, v)
	validation.MaxLen("nom", nom, 100, v)
	validation.MaxLen("telephone", telephone, 20, v)
	validation.MaxLen("adresse", adresse, 255, v)
	validation.MaxLen("ville", ville, 100, v)
	if v.Empty() && email != user.Email {
		var count int64
		if err := h.DB.Model(&models.User{}).Where("email = ? AND id <> ?", email, user.ID).Limit(1).Count(&count).Error; err == nil && count > 0 {
			v["email"] = "email_taken"
		}
	}
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		renderTemplate(w, r, "profile_form", map[string]any{"Errors": v, "User": user})
		return
	}

	user.Email = email
	user.Prenom = prenom
	user.Nom = nom
	user.Telephone = telephone
	user.Adresse = adresse
	user.Ville = ville
	if fh := formFile(r, "photo"); fh != nil {
		if path, err := h.Uploads.Save(fh, "users"); err == nil {
			user.Photo = path
		}
	}
	if err := h.DB.Save(user).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "profile_update_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"id": user.ID})
		return
	}
	middleware.Flash(w, r, "flash_profile_updated")
	http.Redirect(w, r, "/profile", statusSeeOther)
}

// ChangePassword handles GET/POST /change_password. The session survives the change.
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", statusSeeOther)
		return
	}
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "change_password", nil)
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
	current := r.FormValue("current")
	newPass := r.FormValue("new")
	confirm := r.FormValue("confirm")

	fail := func(code string) {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, code, nil)
			return
		}
		middleware.Flash(w, r, code)
		http.Redirect(w, r, "/change_password", statusSeeOther)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
		fail("flash_password_current_bad")
		return
	}
	if len(newPass) < 8 || newPass != confirm {
		fail("flash_password_mismatch")
		return
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte(newPass), bcrypt.DefaultCost)
	if err := h.DB.Model(user).Update("password", string(hash)).Error; err != nil {
		fail("flash_password_save_error")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "password_changed"})
		return
	}
	middleware.Flash(w, r, "flash_password_saved")
	http.Redirect(w, r, "/profile", statusSeeOther)
}

// DeleteAccount handles GET (confirmation page) and POST /account_delete.
// Everything the user owns or authored goes with the account.
func (h *ProfileHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", statusSeeOther)
		return
	}
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "account_delete", map[string]any{"User": user})
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "GET,POST")
		return
	}
	if err := h.Accounts.DeleteUser(user.ID); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "account_delete_failed", nil)
		return
	}
	auth.ClearSession(w)
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": user.ID})
		return
	}
	middleware.Flash(w, r, "flash_account_deleted")
	http.Redirect(w, r, "/", statusSeeOther)
}
