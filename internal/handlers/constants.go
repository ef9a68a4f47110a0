package handlers

const (
	SessionCookieName = "game-tracker-session"

	// maxBodySize caps JSON request bodies; uploads have their own limit
	maxBodySize = 1 << 20

	ErrInvalidJSON            = "Invalid JSON body"
	ErrNotAuthenticated       = "Not authenticated"
	ErrInternalServerError    = "Internal server error"
	ErrTooManyRequests        = "Too many requests, please try again later"
	ErrInvalidUserID          = "Invalid user ID"
	ErrInvalidGameID          = "Invalid game ID"
	ErrInvalidResultID        = "Invalid result ID"
	ErrInvalidPlaySessionID   = "Invalid play session ID"
	ErrUserNotFoundMsg        = "User not found"
	ErrGameNotFoundMsg        = "Game not found"
	ErrResultNotFoundMsg      = "Result not found"
	ErrPlaySessionNotFoundMsg = "Play session not found"
)
