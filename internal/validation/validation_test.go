package validation

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"gametracker/internal/models"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid username",
			input:   "alice",
			wantErr: false,
		},
		{
			name:    "underscores and hyphens",
			input:   "big_bob-99",
			wantErr: false,
		},
		{
			name:    "minimum length",
			input:   "abc",
			wantErr: false,
		},
		{
			name:    "maximum length",
			input:   strings.Repeat("a", 20),
			wantErr: false,
		},
		{
			name:    "too short",
			input:   "ab",
			wantErr: true,
		},
		{
			name:    "too long",
			input:   strings.Repeat("a", 21),
			wantErr: true,
		},
		{
			name:    "spaces inside",
			input:   "al ice",
			wantErr: true,
		},
		{
			name:    "punctuation",
			input:   "alice!",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "only whitespace",
			input:   "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUsernameMessage(t *testing.T) {
	err := ValidateUsername("")
	var vErr ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if vErr.Field != "username" || vErr.Message != "Username is required" {
		t.Errorf("got %+v", vErr)
	}
}

func TestValidateGameName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid name", "Settlers of Catan", false},
		{"two characters", "Go", false},
		{"one character", "X", true},
		{"empty", "", true},
		{"too long", strings.Repeat("x", 101), true},
		{"exactly 100", strings.Repeat("x", 100), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGameName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGameName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGameType(t *testing.T) {
	for _, valid := range []models.GameType{"video", "table", "card"} {
		if err := ValidateGameType(valid); err != nil {
			t.Errorf("ValidateGameType(%q) error = %v", valid, err)
		}
	}
	for _, invalid := range []models.GameType{"", "board", "VIDEO"} {
		if err := ValidateGameType(invalid); err == nil {
			t.Errorf("ValidateGameType(%q) expected error", invalid)
		}
	}
}

func TestValidateImageURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"", false},
		{"/uploads/games/chess-1.png", false},
		{"https://cdn.example.com/chess.png", false},
		{"http://example.com/a.jpg", false},
		{"//evil.example.com/a.png", true},
		{"javascript:alert(1)", true},
		{"ftp://example.com/a.png", true},
		{"https://" + strings.Repeat("a", 500), true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateImageURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateImageURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNotes(t *testing.T) {
	if err := ValidateNotes(strings.Repeat("n", 500)); err != nil {
		t.Errorf("500 characters should be allowed: %v", err)
	}
	if err := ValidateNotes(strings.Repeat("n", 501)); err == nil {
		t.Error("501 characters should be rejected")
	}
}

func TestValidatePlayedAt(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if err := ValidatePlayedAt(now.Add(-time.Hour), now); err != nil {
		t.Errorf("past time rejected: %v", err)
	}
	if err := ValidatePlayedAt(now, now); err != nil {
		t.Errorf("current time rejected: %v", err)
	}
	if err := ValidatePlayedAt(now.Add(time.Minute), now); err == nil {
		t.Error("future time accepted")
	}
}

func TestValidatePlayers(t *testing.T) {
	p := func(id int64, score float64, winner bool) models.PlayerResult {
		return models.PlayerResult{UserID: id, Score: score, IsWinner: winner}
	}

	tenPlayers := make([]models.PlayerResult, 0, 11)
	for i := int64(1); i <= 10; i++ {
		tenPlayers = append(tenPlayers, p(i, float64(i), i == 10))
	}

	tests := []struct {
		name    string
		players []models.PlayerResult
		wantMsg string
	}{
		{
			name:    "two players one winner",
			players: []models.PlayerResult{p(1, 10, true), p(2, 5, false)},
		},
		{
			name:    "shared win",
			players: []models.PlayerResult{p(1, 7, true), p(2, 7, true), p(3, 1, false)},
		},
		{
			name:    "ten players",
			players: tenPlayers,
		},
		{
			name:    "single player",
			players: []models.PlayerResult{p(1, 10, true)},
			wantMsg: "At least 2 players are required",
		},
		{
			name:    "eleven players",
			players: append(append([]models.PlayerResult{}, tenPlayers...), p(11, 0, false)),
			wantMsg: "At most 10 players are allowed",
		},
		{
			name:    "duplicate player",
			players: []models.PlayerResult{p(1, 10, true), p(1, 5, false)},
			wantMsg: "Each player can only appear once per result",
		},
		{
			name:    "invalid id",
			players: []models.PlayerResult{p(0, 10, true), p(2, 5, false)},
			wantMsg: "Each player must have a valid user ID",
		},
		{
			name:    "no winner",
			players: []models.PlayerResult{p(1, 10, false), p(2, 5, false)},
			wantMsg: "At least one winner is required",
		},
		{
			name:    "NaN score",
			players: []models.PlayerResult{p(1, math.NaN(), true), p(2, 5, false)},
			wantMsg: "Score must be a number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlayers(tt.players)
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("ValidatePlayers() error = %v", err)
				}
				return
			}
			var vErr ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("ValidatePlayers() error = %v, want ValidationError", err)
			}
			if vErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", vErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestValidateTotalRounds(t *testing.T) {
	for _, n := range []int{1, 5, 10} {
		if err := ValidateTotalRounds(n); err != nil {
			t.Errorf("ValidateTotalRounds(%d) error = %v", n, err)
		}
	}
	for _, n := range []int{0, -1, 11} {
		if err := ValidateTotalRounds(n); err == nil {
			t.Errorf("ValidateTotalRounds(%d) expected error", n)
		}
	}
}

func TestValidateRoundScores(t *testing.T) {
	if err := ValidateRoundScores(0, 12.5); err != nil {
		t.Errorf("non-negative scores rejected: %v", err)
	}
	if err := ValidateRoundScores(3, -1); err == nil {
		t.Error("negative score accepted")
	}
}
