package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"gametracker/internal/scoreboard"
	"gametracker/internal/service"
)

// ScoreboardHandler serves the derived statistics. Responses are not
// wrapped in the CRUD envelope.
type ScoreboardHandler struct {
	scoreboardService *service.ScoreboardService
	logger            *slog.Logger
}

// NewScoreboardHandler creates a new scoreboard handler
func NewScoreboardHandler(scoreboardService *service.ScoreboardService, logger *slog.Logger) *ScoreboardHandler {
	return &ScoreboardHandler{scoreboardService: scoreboardService, logger: logger}
}

// Global returns every player's stats plus a summary
func (h *ScoreboardHandler) Global(w http.ResponseWriter, r *http.Request) {
	board, err := h.scoreboardService.Global(r.Context())
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to build scoreboard", err)
		return
	}
	respondJSON(w, http.StatusOK, board)
}

// ForGame returns the scoreboard of one game
func (h *ScoreboardHandler) ForGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrInvalidGameID)
		return
	}

	board, err := h.scoreboardService.ForGame(r.Context(), gameID)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to build game scoreboard", err)
		return
	}
	respondJSON(w, http.StatusOK, board)
}

// Top returns the best players by win rate or wins
func (h *ScoreboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	key := scoreboard.SortKey(r.URL.Query().Get("sortBy"))

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	players, err := h.scoreboardService.TopPlayers(r.Context(), key, limit)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to list top players", err)
		return
	}
	if key == "" {
		key = scoreboard.SortByWinRate
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"sort_by": key,
		"players": players,
	})
}

// Games returns play statistics for every game
func (h *ScoreboardHandler) Games(w http.ResponseWriter, r *http.Request) {
	stats, err := h.scoreboardService.GameStats(r.Context())
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to build game stats", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"games": stats})
}

// Profile returns one player's overall and per-game stats
func (h *ScoreboardHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrInvalidUserID)
		return
	}

	profile, err := h.scoreboardService.Profile(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to build player profile", err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}
