package handlers

import (
	"log/slog"
	"net/http"

	"gametracker/internal/models"
	"gametracker/internal/service"
)

// PlaySessionHandler serves round-based play sessions
type PlaySessionHandler struct {
	playSessionService *service.PlaySessionService
	logger             *slog.Logger
}

// NewPlaySessionHandler creates a new play session handler
func NewPlaySessionHandler(playSessionService *service.PlaySessionService, logger *slog.Logger) *PlaySessionHandler {
	return &PlaySessionHandler{playSessionService: playSessionService, logger: logger}
}

type startSessionRequest struct {
	Player1ID   int64 `json:"player1_id"`
	Player2ID   int64 `json:"player2_id"`
	TotalRounds int   `json:"total_rounds"`
}

type updateSessionRequest struct {
	Status       models.PlaySessionStatus `json:"status"`
	CurrentRound *int                     `json:"current_round"`
}

type submitRoundRequest struct {
	Player1Score *float64 `json:"player1_score"`
	Player2Score *float64 `json:"player2_score"`
	Notes        string   `json:"notes"`
}

// Start opens a play session on the game in the path
func (h *PlaySessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrInvalidGameID)
		return
	}
	var req startSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	actor := GetUserFromContext(r.Context())
	session, err := h.playSessionService.StartSession(r.Context(), actor.ID, gameID, service.PlaySessionInput{
		Player1ID:   req.Player1ID,
		Player2ID:   req.Player2ID,
		TotalRounds: req.TotalRounds,
	})
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to start play session", err)
		return
	}
	respondSuccess(w, http.StatusCreated, session, "Play session created successfully")
}

// ListForGame returns a game's play sessions, newest first
func (h *PlaySessionHandler) ListForGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrInvalidGameID)
		return
	}

	sessions, err := h.playSessionService.ListSessions(r.Context(), gameID)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to list play sessions", err)
		return
	}
	respondSuccess(w, http.StatusOK, sessions, "Play sessions retrieved successfully")
}

// Get returns a play session with its rounds
func (h *PlaySessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrInvalidPlaySessionID)
		return
	}

	detail, err := h.playSessionService.GetSession(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to get play session", err)
		return
	}
	respondSuccess(w, http.StatusOK, detail, "Play session retrieved successfully")
}

// Update changes a play session's status
func (h *PlaySessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrInvalidPlaySessionID)
		return
	}
	var req updateSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	actor := GetUserFromContext(r.Context())
	session, err := h.playSessionService.UpdateStatus(r.Context(), actor.ID, id, service.PlaySessionUpdate{
		Status:       req.Status,
		CurrentRound: req.CurrentRound,
	})
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to update play session", err)
		return
	}
	respondSuccess(w, http.StatusOK, session, "Play session updated successfully")
}

// SubmitRound records the scores of the current round
func (h *PlaySessionHandler) SubmitRound(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrInvalidPlaySessionID)
		return
	}
	var req submitRoundRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Player1Score == nil || req.Player2Score == nil {
		respondWithError(w, http.StatusBadRequest, "Scores must be numbers")
		return
	}

	actor := GetUserFromContext(r.Context())
	result, completed, err := h.playSessionService.SubmitRound(r.Context(), actor.ID, id, service.RoundInput{
		Player1Score: *req.Player1Score,
		Player2Score: *req.Player2Score,
		Notes:        req.Notes,
	})
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to submit round", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message":           "Results submitted successfully",
		"result":            result,
		"session_completed": completed,
	})
}
