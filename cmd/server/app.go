package main

import (
	"crypto/sha1"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/emenu/auth"
	"github.com/diewo77/emenu/internal/config"
	"github.com/diewo77/emenu/internal/middleware"
	"github.com/diewo77/emenu/internal/models"
	"github.com/diewo77/emenu/internal/server"
	"github.com/diewo77/emenu/internal/services"
	"github.com/diewo77/emenu/view"
)

var templateBase string

func init() {
	// Detect templates directory whether running from repo root or subdir (e.g., cmd/server).
	candidates := []string{"templates", "../templates", "../../templates"}
	for _, c := range candidates {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			templateBase = filepath.Clean(c)
			break
		}
	}
	if templateBase == "" { // fallback to relative; parsing will error clearly
		templateBase = "templates"
	}

	// Inject language/theme resolvers into the shared view package so it stays decoupled
	// from the middleware package while still reflecting user preferences.
	view.SetLangResolver(middleware.LangFrom)
	view.SetThemeResolver(middleware.ThemeFrom)
}

// NewApp bundles the landing page, dashboard, static/media serving, and the
// routed application behind one handler.
func NewApp(dbConn *gorm.DB, mediaDir string) http.Handler {
	uploads := services.NewUploadService(mediaDir)
	rootAPI := auth.Middleware(server.New(dbConn, uploads))
	directory := services.NewDirectoryService(dbConn)
	history := services.NewHistoryService(dbConn)

	// serve static assets (CSS, JS) under /static/
	fs := http.FileServer(http.Dir("static"))
	staticHandler := http.StripPrefix("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path
		ext := filepath.Ext(name)
		// open file manually to compute ETag
		f, err := os.Open(filepath.Join("static", name))
		if err == nil {
			h := sha1.New()
			// small files only; large could be optimized with stat modtime
			if _, cerr := io.Copy(h, f); cerr == nil {
				etag := fmt.Sprintf("\"%x\"", h.Sum(nil)[:8])
				w.Header().Set("ETag", etag)
				if match := r.Header.Get("If-None-Match"); match == etag {
					f.Close()
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
			// rewind for file server by reopening
			f.Close()
		}
		if ext == ".css" {
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
		} else if ext == ".js" {
			w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		}
		if config.ParseBool("DEV", false) {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		} else {
			// Long cache for versioned assets (1 year)
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		}
		fs.ServeHTTP(w, r)
	}))

	// uploaded photos under /media/
	mediaFS := http.FileServer(http.Dir(mediaDir))
	mediaHandler := http.StripPrefix("/media/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		mediaFS.ServeHTTP(w, r)
	}))

	baseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Path) >= 8 && r.URL.Path[:8] == "/static/" {
			staticHandler.ServeHTTP(w, r)
			return
		}
		if len(r.URL.Path) >= 7 && r.URL.Path[:7] == "/media/" {
			mediaHandler.ServeHTTP(w, r)
			return
		}

		if r.URL.Path == "/dashboard" {
			uid, ok := auth.CurrentUserID(r)
			if !ok {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			var user models.User
			if err := dbConn.First(&user, uid).Error; err != nil {
				// Signed cookie for a user that no longer exists: clear and
				// treat as unauthenticated, like RequireAuth does elsewhere.
				auth.ClearSession(w)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			data := map[string]any{"Year": time.Now().Year(), "User": user}
			popFlashInto(w, r, data)
			var structures []models.Structure
			dbConn.Where("user_id = ?", uid).Order("id asc").Find(&structures)
			data["Structures"] = structures
			if entries, err := history.RecentForUser(uid, 10); err == nil {
				data["LoginHistory"] = entries
			}
			if err := view.Render(w, r, "dashboard.html", data); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprintf(w, "template render error: %v", err)
			}
			return
		}

		if r.URL.Path == "/" {
			data := map[string]any{}
			popFlashInto(w, r, data)
			featured, _ := directory.Featured(4)
			counts, _ := directory.CategoryCounts()
			data["Featured"] = featured
			data["CategoryCounts"] = counts
			if uid, ok := auth.CurrentUserID(r); ok {
				var user models.User
				if err := dbConn.First(&user, uid).Error; err == nil {
					data["User"] = user
				}
			}
			if err := view.Render(w, r, "index.html", data); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				if _, werr := w.Write([]byte("render error")); werr != nil {
					_ = werr
				}
			}
			return
		}

		rootAPI.ServeHTTP(w, r)
	})
	return middleware.Prefs(baseHandler)
}

// popFlashInto drains the flash cookie into the page data.
func popFlashInto(w http.ResponseWriter, r *http.Request, data map[string]any) {
	c, err := r.Cookie("flash")
	if err != nil || c.Value == "" {
		return
	}
	if dec, derr := url.QueryUnescape(c.Value); derr == nil {
		data["Flash"] = dec
	} else {
		data["Flash"] = c.Value
	}
	http.SetCookie(w, &http.Cookie{Name: "flash", Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1})
}
