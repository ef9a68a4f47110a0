package handlers

import (
	"log/slog"
	"net/http"

	"gametracker/internal/service"
)

// UserHandler serves the player endpoints
type UserHandler struct {
	userService *service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

type userRequest struct {
	Username string `json:"username"`
}

// List returns every player
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to list users", err)
		return
	}
	respondSuccess(w, http.StatusOK, users, "Users retrieved successfully")
}

// Create registers a new player
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), req.Username)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to create user", err)
		return
	}
	respondSuccess(w, http.StatusCreated, user, "User created successfully")
}

// Get returns one player
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrInvalidUserID)
		return
	}

	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to get user", err)
		return
	}
	respondSuccess(w, http.StatusOK, user, "User retrieved successfully")
}

// Update renames the signed-in player
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrInvalidUserID)
		return
	}
	var req userRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	actor := GetUserFromContext(r.Context())
	user, err := h.userService.Rename(r.Context(), actor.ID, id, req.Username)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to update user", err)
		return
	}
	respondSuccess(w, http.StatusOK, user, "User updated successfully")
}

// Delete removes the signed-in player
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrInvalidUserID)
		return
	}

	actor := GetUserFromContext(r.Context())
	if err := h.userService.DeleteUser(r.Context(), actor.ID, id); err != nil {
		respondServiceError(w, r, h.logger, "failed to delete user", err)
		return
	}
	respondSuccess(w, http.StatusOK, nil, "User deleted successfully")
}
