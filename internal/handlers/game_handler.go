package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"gametracker/internal/models"
	"gametracker/internal/service"
	"gametracker/internal/storage"
)

// GameHandler serves the game catalogue
type GameHandler struct {
	gameService *service.GameService
	logger      *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameService *service.GameService, logger *slog.Logger) *GameHandler {
	return &GameHandler{gameService: gameService, logger: logger}
}

type createGameRequest struct {
	Name     string          `json:"name"`
	Type     models.GameType `json:"type"`
	ImageURL string          `json:"image_url"`
}

type updateGameRequest struct {
	Name     *string          `json:"name"`
	Type     *models.GameType `json:"type"`
	ImageURL *string          `json:"image_url"`
}

// List returns games matching the type, createdBy and query filters
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	createdBy, ok := queryID(r, "createdBy")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid createdBy")
		return
	}

	q := r.URL.Query()
	filter := models.GameFilter{
		Type:      models.GameType(strings.ToLower(strings.TrimSpace(q.Get("type")))),
		CreatedBy: createdBy,
		Query:     strings.TrimSpace(q.Get("query")),
	}

	games, err := h.gameService.ListGames(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to list games", err)
		return
	}
	respondSuccess(w, http.StatusOK, games, "Games retrieved successfully")
}

// Create adds a game owned by the signed-in player
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	actor := GetUserFromContext(r.Context())
	game, err := h.gameService.CreateGame(r.Context(), actor.ID, service.GameInput{
		Name:     req.Name,
		Type:     req.Type,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to create game", err)
		return
	}
	respondSuccess(w, http.StatusCreated, game, "Game created successfully")
}

// Get returns one game
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrInvalidGameID)
		return
	}

	game, err := h.gameService.GetGame(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to get game", err)
		return
	}
	respondSuccess(w, http.StatusOK, game, "Game retrieved successfully")
}

// Update changes a game; only its creator may
func (h *GameHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrInvalidGameID)
		return
	}
	var req updateGameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	actor := GetUserFromContext(r.Context())
	game, err := h.gameService.UpdateGame(r.Context(), actor.ID, id, service.GameUpdate{
		Name:     req.Name,
		Type:     req.Type,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to update game", err)
		return
	}
	respondSuccess(w, http.StatusOK, game, "Game updated successfully")
}

// Delete removes a game with its results and play sessions
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrInvalidGameID)
		return
	}

	actor := GetUserFromContext(r.Context())
	if err := h.gameService.DeleteGame(r.Context(), actor.ID, id); err != nil {
		respondServiceError(w, r, h.logger, "failed to delete game", err)
		return
	}
	respondSuccess(w, http.StatusOK, nil, "Game deleted successfully")
}

// UploadHandler accepts game images
type UploadHandler struct {
	store   storage.ImageStore
	maxSize int64
	logger  *slog.Logger
}

// NewUploadHandler creates an upload handler writing to store
func NewUploadHandler(store storage.ImageStore, maxSize int64, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{store: store, maxSize: maxSize, logger: logger}
}

// Upload stores the multipart field "file" and returns its URL
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart framing around the file itself
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+64*1024)
	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "File is too large")
			return
		}
		respondWithError(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if header.Size > h.maxSize {
		respondWithError(w, http.StatusRequestEntityTooLarge, "File is too large")
		return
	}

	// The stored type comes from the content; the part's header is ignored
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	ext, ok := storage.ImageExtension(contentType)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Only image files are allowed")
		return
	}

	body := io.MultiReader(bytes.NewReader(head), file)
	url, err := h.store.Save(r.Context(), storage.ObjectKey(header.Filename, ext), contentType, body)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to save upload", err)
		return
	}

	h.logger.Info("image uploaded", "url", url, "size", header.Size)
	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}
