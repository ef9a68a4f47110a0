package handlers

import (
	"log/slog"
	"net/http"

	"gametracker/internal/security"
	"gametracker/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	cookieName  string
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, cookieName string, logger *slog.Logger) *AuthHandler {
	if cookieName == "" {
		cookieName = SessionCookieName
	}
	return &AuthHandler{
		authService: authService,
		cookieName:  cookieName,
		logger:      logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
}

// Login starts a session for an existing player
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, session, user, err := h.authService.Login(r.Context(), req.Username)
	if err != nil {
		respondServiceError(w, r, h.logger, "login failed", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, h.cookieName, token, session.ExpiresAt))
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    user,
	})
}

// Logout ends the current session, if any
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil && cookie.Value != "" {
		if err := h.authService.Logout(r.Context(), cookie.Value); err != nil {
			respondServiceError(w, r, h.logger, "logout failed", err)
			return
		}
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, h.cookieName))
	respondJSON(w, http.StatusOK, map[string]any{"message": "Logout successful"})
}

// Me returns the player behind the session cookie
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"user": GetUserFromContext(r.Context())})
}
