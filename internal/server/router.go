package server

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/emenu/auth"
	"github.com/diewo77/emenu/httpx"
	"github.com/diewo77/emenu/internal/handlers"
	"github.com/diewo77/emenu/internal/models"
	"github.com/diewo77/emenu/internal/policy"
	"github.com/diewo77/emenu/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, uploads *services.UploadService) http.Handler {
	mux := http.NewServeMux()

	// Configure a user verifier so RequireAuth can ensure the user still exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	// requireAuth attaches the session context then enforces it.
	requireAuth := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(h))
	}

	// --- Health endpoints ---
	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, werr := w.Write([]byte(`{"status":"degraded"}`)); werr != nil {
				_ = werr
			}
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	//revive:enable:unused-parameter

	g := policy.NewAppGate(db)

	// Login, logout, register
	authHandler := handlers.NewAuthHandler(db)
	authHandler.Register(mux)

	// Structures: public directory plus owner management
	sh := handlers.NewStructureHandler(db, g, uploads)
	mux.HandleFunc("/structure", sh.List)
	mux.Handle("/register_structure", requireAuth(sh.RegisterStructure))
	mux.Handle("/structure_detail/{id}", requireAuth(sh.OwnerDetail))
	mux.Handle("/detail/{id}", requireAuth(sh.PublicDetail))
	mux.Handle("/structure_form/{id}", requireAuth(sh.Update))
	mux.Handle("/account_delete/{id}", requireAuth(sh.Delete))

	// Profile and account lifecycle
	ph := handlers.NewProfileHandler(db, uploads)
	mux.Handle("/profile", requireAuth(ph.Show))
	mux.Handle("/profile_form", requireAuth(ph.Update))
	mux.Handle("/change_password", requireAuth(ph.ChangePassword))
	mux.Handle("/account_delete", requireAuth(ph.DeleteAccount))

	// Dishes
	dh := handlers.NewPlatHandler(db, g, uploads)
	mux.Handle("/plats", requireAuth(dh.List))
	mux.Handle("/plats/nouveau", requireAuth(dh.Create))
	mux.Handle("/plats/{id}/modifier", requireAuth(dh.Update))
	mux.Handle("/plats/{id}/supprimer", requireAuth(dh.Delete))

	// Menus
	mh := handlers.NewMenuHandler(db, g)
	mux.Handle("/menus", requireAuth(mh.List))
	mux.Handle("/menus/nouveau", requireAuth(mh.Create))
	mux.Handle("/menus/{id}/modifier", requireAuth(mh.Update))
	mux.Handle("/menus/{id}/supprimer", requireAuth(mh.Delete))

	// Reviews, attached to exactly one dish or menu
	ah := handlers.NewAvisHandler(db, g)
	mux.Handle("/plats/{id}/avis/nouveau", requireAuth(ah.CreateForPlat))
	mux.Handle("/menus/{id}/avis/nouveau", requireAuth(ah.CreateForMenu))
	mux.Handle("/avis/{id}/supprimer", requireAuth(ah.Delete))

	// Prefs is applied once by the outer app handler.
	return withRecover(mux)
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
