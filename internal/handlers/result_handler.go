package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"gametracker/internal/models"
	"gametracker/internal/service"
)

// ResultHandler serves match results
type ResultHandler struct {
	resultService *service.ResultService
	logger        *slog.Logger
}

// NewResultHandler creates a new result handler
func NewResultHandler(resultService *service.ResultService, logger *slog.Logger) *ResultHandler {
	return &ResultHandler{resultService: resultService, logger: logger}
}

type createResultRequest struct {
	GameID   int64                 `json:"game_id"`
	Players  []models.PlayerResult `json:"players"`
	PlayedAt *time.Time            `json:"played_at"`
	Notes    string                `json:"notes"`
}

type updateResultRequest struct {
	Players  []models.PlayerResult `json:"players"`
	PlayedAt *time.Time            `json:"played_at"`
	Notes    *string               `json:"notes"`
}

// List returns result summaries, newest first
func (h *ResultHandler) List(w http.ResponseWriter, r *http.Request) {
	gameID, ok := queryID(r, "gameId")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrInvalidGameID)
		return
	}
	userID, ok := queryID(r, "userId")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrInvalidUserID)
		return
	}

	q := service.ResultQuery{
		GameID: gameID,
		UserID: userID,
		Recent: r.URL.Query().Get("recent") == "true",
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		q.Limit = limit
	}

	results, err := h.resultService.ListResults(r.Context(), q)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to list results", err)
		return
	}
	respondSuccess(w, http.StatusOK, results, "Results retrieved successfully")
}

// Create records a match result for the signed-in player
func (h *ResultHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createResultRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.GameID <= 0 {
		respondWithError(w, http.StatusBadRequest, ErrInvalidGameID)
		return
	}

	actor := GetUserFromContext(r.Context())
	result, err := h.resultService.RecordResult(r.Context(), actor.ID, service.ResultInput{
		GameID:   req.GameID,
		Players:  req.Players,
		PlayedAt: req.PlayedAt,
		Notes:    req.Notes,
	})
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to record result", err)
		return
	}
	respondSuccess(w, http.StatusCreated, result, "Result recorded successfully")
}

// Get returns one result with usernames
func (h *ResultHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrInvalidResultID)
		return
	}

	result, err := h.resultService.GetResult(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to get result", err)
		return
	}
	respondSuccess(w, http.StatusOK, result, "Result retrieved successfully")
}

// Update edits a result; the recorder or the game's creator may
func (h *ResultHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrInvalidResultID)
		return
	}
	var req updateResultRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	actor := GetUserFromContext(r.Context())
	result, err := h.resultService.UpdateResult(r.Context(), actor.ID, id, service.ResultUpdate{
		Players:  req.Players,
		PlayedAt: req.PlayedAt,
		Notes:    req.Notes,
	})
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to update result", err)
		return
	}
	respondSuccess(w, http.StatusOK, result, "Result updated successfully")
}

// Delete removes a result
func (h *ResultHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrInvalidResultID)
		return
	}

	actor := GetUserFromContext(r.Context())
	if err := h.resultService.DeleteResult(r.Context(), actor.ID, id); err != nil {
		respondServiceError(w, r, h.logger, "failed to delete result", err)
		return
	}
	respondSuccess(w, http.StatusOK, nil, "Result deleted successfully")
}
