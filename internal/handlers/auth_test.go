package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"comedor/models"
)

func withTestSessionManager(t *testing.T) (*scs.SessionManager, func()) {
	t.Helper()
	original := sessionManager
	sm := scs.New()
	sessionManager = sm
	return sm, func() {
		sessionManager = original
	}
}

func withTestDatabase(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	original := database
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Provider{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredientLine{},
		&models.Projection{},
		&models.ProjectionShare{},
	); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	database = db
	return db, func() {
		database = original
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

// authenticateRequest loads a session context onto the request and marks it as
// signed in with the given account id and role.
func authenticateRequest(t *testing.T, sm *scs.SessionManager, req *http.Request, userID uint, role string) *http.Request {
	t.Helper()
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	req = req.WithContext(ctx)
	sm.Put(req.Context(), sessionAuthenticatedKey, true)
	sm.Put(req.Context(), sessionUserIDKey, int(userID))
	sm.Put(req.Context(), sessionUserRoleKey, role)
	return req
}

func sessionRequest(t *testing.T, sm *scs.SessionManager, req *http.Request) *http.Request {
	t.Helper()
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	return req.WithContext(ctx)
}

func seedUser(t *testing.T, db *gorm.DB, email, password, role string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{Email: email, Name: "Test User", PasswordHash: string(hashed), Role: role}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestActiveSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if ActiveSession(req) {
		t.Fatal("expected inactive session when manager is nil")
	}

	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)

	req = authenticateRequest(t, sm, req, 42, models.RoleStaff)
	if !ActiveSession(req) {
		t.Fatal("expected active session when flags are set")
	}
	if role := currentUserRole(req); role != models.RoleStaff {
		t.Fatalf("expected staff role, got %q", role)
	}
}

func TestCurrentUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := currentUserID(req); ok {
		t.Fatal("expected currentUserID to fail without session manager")
	}

	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)

	req = sessionRequest(t, sm, req)
	if _, ok := currentUserID(req); ok {
		t.Fatal("expected currentUserID to fail for anonymous session")
	}

	sm.Put(req.Context(), sessionUserIDKey, 7)
	id, ok := currentUserID(req)
	if !ok || id != 7 {
		t.Fatalf("expected user id 7, got %d (ok=%v)", id, ok)
	}
}

func TestLogin(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	seedUser(t, db, "cook@example.com", "secret-password", models.RoleAdmin)

	body, _ := json.Marshal(loginRequest{Email: "cook@example.com", Password: "secret-password"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = sessionRequest(t, sm, req)
	w := httptest.NewRecorder()
	Login(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%s)", w.Code, w.Body.String())
	}
	var resp sessionUserResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if resp.Email != "cook@example.com" || resp.Role != models.RoleAdmin {
		t.Fatalf("unexpected session user: %+v", resp)
	}
	if !ActiveSession(req) {
		t.Fatal("expected session to be established after login")
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	seedUser(t, db, "cook@example.com", "secret-password", models.RoleStaff)

	body, _ := json.Marshal(loginRequest{Email: "cook@example.com", Password: "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req = sessionRequest(t, sm, req)
	w := httptest.NewRecorder()
	Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestSignup(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	body, _ := json.Marshal(signupRequest{Email: "new@example.com", Name: "New Cook", Password: "long-enough"})
	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(body))
	req = sessionRequest(t, sm, req)
	w := httptest.NewRecorder()
	Signup(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (%s)", w.Code, w.Body.String())
	}
	var resp sessionUserResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode signup response: %v", err)
	}
	if resp.Role != models.RoleStaff {
		t.Fatalf("expected new accounts to be staff, got %q", resp.Role)
	}

	var stored models.User
	if err := db.Where("email = ?", "new@example.com").First(&stored).Error; err != nil {
		t.Fatalf("expected user to be persisted: %v", err)
	}

	// duplicate signup is rejected
	req = httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(body))
	req = sessionRequest(t, sm, req)
	w = httptest.NewRecorder()
	Signup(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for duplicate email, got %d", w.Code)
	}
}

func TestSignupRejectsShortPassword(t *testing.T) {
	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	body, _ := json.Marshal(signupRequest{Email: "new@example.com", Name: "New Cook", Password: "short"})
	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(body))
	req = sessionRequest(t, sm, req)
	w := httptest.NewRecorder()
	Signup(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}
