package models

import (
	"testing"
	"time"
)

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiration",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
		{
			name:      "expired a month ago",
			expiresAt: time.Now().Add(-30 * 24 * time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := Session{
				ID:        1,
				TokenHash: "abc",
				UserID:    1,
				ExpiresAt: tt.expiresAt,
				CreatedAt: time.Now().Add(-1 * time.Hour),
			}
			if got := session.IsExpired(); got != tt.want {
				t.Errorf("Session.IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGameTypeValid(t *testing.T) {
	tests := []struct {
		gameType GameType
		want     bool
	}{
		{GameTypeVideo, true},
		{GameTypeTable, true},
		{GameTypeCard, true},
		{"board", false},
		{"", false},
		{"Video", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.gameType), func(t *testing.T) {
			if got := tt.gameType.Valid(); got != tt.want {
				t.Errorf("GameType(%q).Valid() = %v, want %v", tt.gameType, got, tt.want)
			}
		})
	}
}

func TestGameResultWinners(t *testing.T) {
	result := GameResult{
		Players: []PlayerResult{
			{UserID: 1, Score: 10, IsWinner: true},
			{UserID: 2, Score: 4},
			{UserID: 3, Score: 10, IsWinner: true},
		},
	}

	winners := result.Winners()
	if len(winners) != 2 {
		t.Fatalf("Winners() returned %d players, want 2", len(winners))
	}
	if winners[0].UserID != 1 || winners[1].UserID != 3 {
		t.Errorf("Winners() = %+v, want users 1 and 3 in order", winners)
	}

	empty := GameResult{}
	if len(empty.Winners()) != 0 {
		t.Error("Winners() of empty result should be empty")
	}
}

func TestPlaySessionStatus(t *testing.T) {
	tests := []struct {
		status   PlaySessionStatus
		terminal bool
		settable bool
	}{
		{PlaySessionSetup, false, false},
		{PlaySessionInProgress, false, true},
		{PlaySessionCompleted, true, true},
		{PlaySessionCancelled, true, true},
		{"paused", false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Terminal(); got != tt.terminal {
				t.Errorf("Terminal() = %v, want %v", got, tt.terminal)
			}
			if got := tt.status.Settable(); got != tt.settable {
				t.Errorf("Settable() = %v, want %v", got, tt.settable)
			}
		})
	}
}
