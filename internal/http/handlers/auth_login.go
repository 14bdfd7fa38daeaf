package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/dental-booking-platform/internal/auth"
	"github.com/wolfman30/dental-booking-platform/pkg/logging"
)

// AuthHandler exposes the admin login endpoint.
type AuthHandler struct {
	auth   *auth.Service
	logger *logging.Logger
}

// NewAuthHandler creates the login handler.
func NewAuthHandler(authService *auth.Service, logger *logging.Logger) *AuthHandler {
	if authService == nil {
		panic("handlers: auth service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AuthHandler{auth: authService, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login handles POST /admin/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	token, expires, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		h.logger.Error("admin login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expires})
}
