package validation

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"gametracker/internal/models"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 20
	MinGameNameLength = 2
	MaxGameNameLength = 100
	MaxNotesLength    = 500
	MaxImageURLLength = 500
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateUsername checks length and allowed characters
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ValidationError{Field: "username", Message: "Username is required"}
	}
	if n := utf8.RuneCountInString(username); n < MinUsernameLength || n > MaxUsernameLength {
		return ValidationError{Field: "username", Message: fmt.Sprintf("Username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength)}
	}
	if !usernameRegex.MatchString(username) {
		return ValidationError{Field: "username", Message: "Username can only contain letters, numbers, underscores, and hyphens"}
	}
	return nil
}

// ValidateGameName checks a game name
func ValidateGameName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "Game name is required"}
	}
	if n := utf8.RuneCountInString(name); n < MinGameNameLength || n > MaxGameNameLength {
		return ValidationError{Field: "name", Message: fmt.Sprintf("Game name must be between %d and %d characters", MinGameNameLength, MaxGameNameLength)}
	}
	return nil
}

// ValidateGameType checks that t is video, table or card
func ValidateGameType(t models.GameType) error {
	if t == "" {
		return ValidationError{Field: "type", Message: "Game type is required"}
	}
	if !t.Valid() {
		return ValidationError{Field: "type", Message: "Game type must be one of: video, table, card"}
	}
	return nil
}

// ValidateImageURL accepts an empty value, a site-relative path, or an http(s) URL
func ValidateImageURL(raw string) error {
	if raw == "" {
		return nil
	}
	if len(raw) > MaxImageURLLength {
		return ValidationError{Field: "image_url", Message: "Image URL is too long"}
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ValidationError{Field: "image_url", Message: "Image URL must be an http(s) URL or a site path"}
	}
	return nil
}

// ValidateNotes caps free-text notes
func ValidateNotes(notes string) error {
	if utf8.RuneCountInString(notes) > MaxNotesLength {
		return ValidationError{Field: "notes", Message: fmt.Sprintf("Notes cannot exceed %d characters", MaxNotesLength)}
	}
	return nil
}

// ValidatePlayedAt rejects timestamps later than now
func ValidatePlayedAt(playedAt, now time.Time) error {
	if playedAt.After(now) {
		return ValidationError{Field: "played_at", Message: "Played date cannot be in the future"}
	}
	return nil
}

// ValidatePlayers checks the participant list of a result
func ValidatePlayers(players []models.PlayerResult) error {
	if len(players) < models.MinPlayers {
		return ValidationError{Field: "players", Message: fmt.Sprintf("At least %d players are required", models.MinPlayers)}
	}
	if len(players) > models.MaxPlayers {
		return ValidationError{Field: "players", Message: fmt.Sprintf("At most %d players are allowed", models.MaxPlayers)}
	}

	seen := make(map[int64]bool, len(players))
	hasWinner := false
	for _, p := range players {
		if p.UserID <= 0 {
			return ValidationError{Field: "players", Message: "Each player must have a valid user ID"}
		}
		if seen[p.UserID] {
			return ValidationError{Field: "players", Message: "Each player can only appear once per result"}
		}
		seen[p.UserID] = true

		if math.IsNaN(p.Score) || math.IsInf(p.Score, 0) {
			return ValidationError{Field: "players", Message: "Score must be a number"}
		}
		if p.IsWinner {
			hasWinner = true
		}
	}
	if !hasWinner {
		return ValidationError{Field: "players", Message: "At least one winner is required"}
	}
	return nil
}

// ValidateTotalRounds bounds the length of a play session
func ValidateTotalRounds(rounds int) error {
	if rounds < 1 || rounds > models.MaxRounds {
		return ValidationError{Field: "total_rounds", Message: fmt.Sprintf("Total rounds must be between 1 and %d", models.MaxRounds)}
	}
	return nil
}

// ValidateRoundScores rejects negative round scores
func ValidateRoundScores(scores ...float64) error {
	for _, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return ValidationError{Field: "score", Message: "Score must be a number"}
		}
		if s < 0 {
			return ValidationError{Field: "score", Message: "Scores must be non-negative"}
		}
	}
	return nil
}
