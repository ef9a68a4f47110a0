package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"gametracker/internal/service"
	"gametracker/internal/validation"
)

// APIResponse is the envelope for CRUD endpoints
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondSuccess(w http.ResponseWriter, status int, data any, message string) {
	respondJSON(w, status, APIResponse{Success: true, Data: data, Message: message})
}

func respondWithError(w http.ResponseWriter, status int, userMsg string) {
	respondJSON(w, status, APIResponse{Success: false, Error: userMsg})
}

// respondServiceError maps a service error to its status code. Anything the
// caller could not have caused is logged with the request id and hidden
// behind a generic 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, logMsg string, err error) {
	status, userMsg := classifyError(err)
	if status == http.StatusInternalServerError {
		logger.Error(logMsg,
			"error", err,
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
		)
	}
	respondWithError(w, status, userMsg)
}

func classifyError(err error) (int, string) {
	var ve validation.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Message
	}

	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, ErrUserNotFoundMsg
	case errors.Is(err, service.ErrGameNotFound):
		return http.StatusNotFound, ErrGameNotFoundMsg
	case errors.Is(err, service.ErrResultNotFound):
		return http.StatusNotFound, ErrResultNotFoundMsg
	case errors.Is(err, service.ErrPlaySessionNotFound):
		return http.StatusNotFound, ErrPlaySessionNotFoundMsg
	case errors.Is(err, service.ErrUsernameTaken):
		return http.StatusConflict, "Username already taken"
	case errors.Is(err, service.ErrInUse):
		return http.StatusConflict, "User still has games or results and cannot be deleted"
	case errors.Is(err, service.ErrSessionFinished):
		return http.StatusConflict, "Play session is already finished"
	case errors.Is(err, service.ErrSessionNotActive):
		return http.StatusBadRequest, "Can only submit results for active sessions"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "You are not allowed to change this resource"
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrNotAuthenticated
	}
	return http.StatusInternalServerError, ErrInternalServerError
}

// decodeJSON reads a JSON body into dst. It answers 400 itself and reports
// false when the body is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON)
		return false
	}
	return true
}

// pathID parses a positive integer path value
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryID parses an optional positive integer query parameter. An absent
// parameter yields 0.
func queryID(r *http.Request, name string) (int64, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
