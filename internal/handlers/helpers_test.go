package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/emenu/auth"
	"github.com/diewo77/emenu/internal/models"
	"github.com/diewo77/emenu/internal/server"
	"github.com/diewo77/emenu/internal/services"
)

const testPassword = "motdepasse123"

func newTestApp(t *testing.T) (*gorm.DB, http.Handler) {
	t.Helper()
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
	return db, server.New(db, services.NewUploadService(t.TempDir()))
}

func createUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	u := models.User{Email: email, Password: string(hash), Role: models.RoleClient, Status: models.StatusActive}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func createStructure(t *testing.T, db *gorm.DB, ownerID uint, nom string) models.Structure {
	t.Helper()
	st := models.Structure{UserID: ownerID, Nom: nom, Telephone: "0102030405", Adresse: "1 rue du Test", Ville: "Paris", Type: models.TypeRestaurant}
	if err := db.Create(&st).Error; err != nil {
		t.Fatalf("create structure: %v", err)
	}
	return st
}

// sessionCookie forges a signed session for uid the same way the login handler does.
func sessionCookie(uid uint) *http.Cookie {
	rec := httptest.NewRecorder()
	auth.CreateSession(rec, uid)
	return rec.Result().Cookies()[0]
}

// doForm posts urlencoded values and asks for the JSON representation.
func doForm(t *testing.T, h http.Handler, method, path string, form url.Values, uid uint) *httptest.ResponseRecorder {
	t.Helper()
	var body string
	if form != nil {
		body = form.Encode()
	}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")
	if uid != 0 {
		req.AddCookie(sessionCookie(uid))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func doGet(t *testing.T, h http.Handler, path string, uid uint) *httptest.ResponseRecorder {
	t.Helper()
	return doForm(t, h, http.MethodGet, path, nil, uid)
}
