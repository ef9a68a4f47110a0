package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Middleware   *Middleware
	Auth         *AuthHandler
	Users        *UserHandler
	Games        *GameHandler
	Uploads      *UploadHandler
	Results      *ResultHandler
	PlaySessions *PlaySessionHandler
	Scoreboards  *ScoreboardHandler
	Logger       *slog.Logger

	// TrustProxy lets chi's RealIP rewrite RemoteAddr from proxy headers.
	// Rate limiting keys on RemoteAddr, so leave it off unless a proxy
	// in front sets those headers itself.
	TrustProxy bool

	// UploadDir is served under UploadPath when images are kept on local
	// disk. Leave either empty to skip.
	UploadDir  string
	UploadPath string
}

// NewRouter registers every API route and wraps the mux in the request
// middleware chain
func NewRouter(h Handlers) http.Handler {
	mw := h.Middleware
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth
	mux.HandleFunc("POST /api/auth/login", mw.RateLimit(h.Auth.Login))
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.HandleFunc("GET /api/auth/me", mw.RequireAuth(h.Auth.Me))

	// Users
	mux.HandleFunc("GET /api/users", h.Users.List)
	mux.HandleFunc("POST /api/users", h.Users.Create)
	mux.HandleFunc("GET /api/users/{id}", h.Users.Get)
	mux.HandleFunc("PUT /api/users/{id}", mw.RequireAuth(h.Users.Update))
	mux.HandleFunc("DELETE /api/users/{id}", mw.RequireAuth(h.Users.Delete))

	// Games
	mux.HandleFunc("GET /api/games", h.Games.List)
	mux.HandleFunc("POST /api/games", mw.RequireAuth(h.Games.Create))
	mux.HandleFunc("POST /api/games/upload", mw.RequireAuth(h.Uploads.Upload))
	mux.HandleFunc("GET /api/games/{id}", h.Games.Get)
	mux.HandleFunc("PUT /api/games/{id}", mw.RequireAuth(h.Games.Update))
	mux.HandleFunc("DELETE /api/games/{id}", mw.RequireAuth(h.Games.Delete))
	mux.HandleFunc("GET /api/games/{id}/scoreboard", h.Scoreboards.ForGame)

	// Play sessions
	mux.HandleFunc("POST /api/games/{id}/sessions", mw.RequireAuth(h.PlaySessions.Start))
	mux.HandleFunc("GET /api/games/{id}/sessions", h.PlaySessions.ListForGame)
	mux.HandleFunc("GET /api/play-sessions/{id}", h.PlaySessions.Get)
	mux.HandleFunc("PUT /api/play-sessions/{id}", mw.RequireAuth(h.PlaySessions.Update))
	mux.HandleFunc("POST /api/play-sessions/{id}/results", mw.RequireAuth(h.PlaySessions.SubmitRound))

	// Results
	mux.HandleFunc("GET /api/results", h.Results.List)
	mux.HandleFunc("POST /api/results", mw.RequireAuth(h.Results.Create))
	mux.HandleFunc("GET /api/results/{id}", h.Results.Get)
	mux.HandleFunc("PUT /api/results/{id}", mw.RequireAuth(h.Results.Update))
	mux.HandleFunc("DELETE /api/results/{id}", mw.RequireAuth(h.Results.Delete))

	// Scoreboards
	mux.HandleFunc("GET /api/scoreboards", h.Scoreboards.Global)
	mux.HandleFunc("GET /api/scoreboards/top", h.Scoreboards.Top)
	mux.HandleFunc("GET /api/scoreboards/games", h.Scoreboards.Games)
	mux.HandleFunc("GET /api/players/{id}/profile", h.Scoreboards.Profile)

	if h.UploadDir != "" && strings.HasPrefix(h.UploadPath, "/") {
		prefix := strings.TrimRight(h.UploadPath, "/") + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(h.UploadDir))))
	}

	var handler http.Handler = mux
	handler = middleware.Recoverer(handler)
	handler = Logging(h.Logger)(handler)
	if h.TrustProxy {
		handler = middleware.RealIP(handler)
	}
	handler = middleware.RequestID(handler)
	return handler
}
