package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/diewo77/emenu/internal/models"
)

func TestRegisterCreatesUserWithoutAutoLogin(t *testing.T) {
	db, h := newTestApp(t)

	form := url.Values{
		"email":    {"nouveau@example.com"},
		"password": {"motdepasse123"},
		"prenom":   {"Awa"},
		"nom":      {"Diallo"},
	}
	rec := doForm(t, h, http.MethodPost, "/register", form, 0)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			t.Fatal("registration must not open a session")
		}
	}
	var user models.User
	if err := db.Where("email = ?", "nouveau@example.com").First(&user).Error; err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if user.Password == "motdepasse123" {
		t.Fatal("password stored in clear")
	}
	if user.Role != models.RoleClient || user.Status != models.StatusActive {
		t.Fatalf("unexpected defaults: role=%s status=%s", user.Role, user.Status)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db, h := newTestApp(t)
	createUser(t, db, "pris@example.com")

	form := url.Values{"email": {"pris@example.com"}, "password": {"motdepasse123"}}
	rec := doForm(t, h, http.MethodPost, "/register", form, 0)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if resp.Details["email"] != "email_taken" {
		t.Fatalf("expected email_taken, got %v", resp.Details)
	}
}

func TestLoginSuccessRecordsHistoryAndRedirectsHome(t *testing.T) {
	db, h := newTestApp(t)
	user := createUser(t, db, "login@example.com")

	form := url.Values{"email": {"login@example.com"}, "password": {testPassword}}
	rec := doForm(t, h, http.MethodPost, "/login", form, 0)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Redirect string `json:"redirect"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Redirect != "/" {
		t.Fatalf("user without structure should land on /, got %q", resp.Redirect)
	}
	sessionSet := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			sessionSet = true
		}
	}
	if !sessionSet {
		t.Fatal("session cookie missing")
	}
	var entry models.LoginHistory
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("no history row: %v", err)
	}
	if entry.UserID == nil || *entry.UserID != user.ID || !entry.Success || entry.Action != models.ActionLogin {
		t.Fatalf("bad history row: %+v", entry)
	}
}

func TestLoginOwnerRedirectsToDashboard(t *testing.T) {
	db, h := newTestApp(t)
	user := createUser(t, db, "owner@example.com")
	createStructure(t, db, user.ID, "Chez Awa")

	form := url.Values{"email": {"owner@example.com"}, "password": {testPassword}}
	rec := doForm(t, h, http.MethodPost, "/login", form, 0)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"/dashboard"`) {
		t.Fatalf("structure owner should be sent to /dashboard: %s", rec.Body.String())
	}
}

func TestLoginUnknownEmailRecordsAnonymousFailure(t *testing.T) {
	db, h := newTestApp(t)

	form := url.Values{"email": {"personne@example.com"}, "password": {"whatever"}}
	rec := doForm(t, h, http.MethodPost, "/login", form, 0)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var entry models.LoginHistory
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("failed attempt not recorded: %v", err)
	}
	if entry.UserID != nil || entry.Success || entry.Action != models.ActionFailedAttempt {
		t.Fatalf("bad history row: %+v", entry)
	}
}

func TestLoginWrongPasswordRecordsFailureForUser(t *testing.T) {
	db, h := newTestApp(t)
	user := createUser(t, db, "bad@example.com")

	form := url.Values{"email": {"bad@example.com"}, "password": {"pasbon12345"}}
	rec := doForm(t, h, http.MethodPost, "/login", form, 0)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var entry models.LoginHistory
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("failed attempt not recorded: %v", err)
	}
	if entry.UserID == nil || *entry.UserID != user.ID || entry.Action != models.ActionFailedAttempt {
		t.Fatalf("bad history row: %+v", entry)
	}
}

func TestLoginInactiveAccountRejected(t *testing.T) {
	db, h := newTestApp(t)
	user := createUser(t, db, "inactif@example.com")
	db.Model(&user).Update("status", models.StatusSuspended)

	form := url.Values{"email": {"inactif@example.com"}, "password": {testPassword}}
	rec := doForm(t, h, http.MethodPost, "/login", form, 0)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	// Correct credentials on a disabled account must not be distinguishable
	// from a wrong password.
	if !strings.Contains(rec.Body.String(), "login_failed") {
		t.Fatalf("expected login_failed, got %s", rec.Body.String())
	}
	var entry models.LoginHistory
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("failed attempt not recorded: %v", err)
	}
	if entry.UserID == nil || *entry.UserID != user.ID || entry.Action != models.ActionFailedAttempt {
		t.Fatalf("bad history row: %+v", entry)
	}
}

func TestLogoutRecordsHistory(t *testing.T) {
	db, h := newTestApp(t)
	user := createUser(t, db, "out@example.com")

	rec := doGet(t, h, "/logout", user.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var entry models.LoginHistory
	if err := db.Where("action = ?", models.ActionLogout).First(&entry).Error; err != nil {
		t.Fatalf("no logout row: %v", err)
	}
	if entry.UserID == nil || *entry.UserID != user.ID {
		t.Fatalf("bad logout row: %+v", entry)
	}
}

func TestProtectedRouteWithoutSession(t *testing.T) {
	_, h := newTestApp(t)
	rec := doGet(t, h, "/plats", 0)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("JSON client should get 401, got %d", rec.Code)
	}
}
