package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	applog "comedor/internal/log"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionUserResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Login processes sign-in submissions and establishes a session cookie.
func Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if sessionManager == nil || database == nil {
		applog.Debug(r.Context(), "authentication dependencies unavailable",
			"hasSession", sessionManager != nil, "hasDatabase", database != nil)
		writeJSONError(w, http.StatusServiceUnavailable, "authentication not available")
		return
	}

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid login payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	email := strings.TrimSpace(payload.Email)
	if email == "" || payload.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, ok := authenticate(r, email, payload.Password)
	if !ok {
		applog.Debug(r.Context(), "authentication failed", "email", strings.ToLower(email))
		writeJSONError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	applog.Info(r.Context(), "user signed in", "user", user.ID)
	writeJSON(w, http.StatusOK, sessionUserResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
}
