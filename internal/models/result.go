package models

import "time"

// MinPlayers and MaxPlayers bound the participants of one result
const (
	MinPlayers = 2
	MaxPlayers = 10
)

// PlayerResult is one participant's line in a match result
type PlayerResult struct {
	UserID   int64   `json:"user_id"`
	Username string  `json:"username,omitempty"`
	Score    float64 `json:"score"`
	IsWinner bool    `json:"is_winner"`
}

// GameResult is a recorded match between two or more players
type GameResult struct {
	ID            int64          `json:"id"`
	GameID        int64          `json:"game_id"`
	GameName      string         `json:"game_name,omitempty"`
	PlaySessionID *int64         `json:"play_session_id,omitempty"`
	Players       []PlayerResult `json:"players"`
	PlayedAt      time.Time      `json:"played_at"`
	Notes         string         `json:"notes,omitempty"`
	RecordedBy    int64          `json:"recorded_by"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Winners returns the participants flagged as winners, in player order
func (r *GameResult) Winners() []PlayerResult {
	var winners []PlayerResult
	for _, p := range r.Players {
		if p.IsWinner {
			winners = append(winners, p)
		}
	}
	return winners
}

// ResultSummary is the list form of a result
type ResultSummary struct {
	ID          int64     `json:"id"`
	GameID      int64     `json:"game_id"`
	GameName    string    `json:"game_name"`
	PlayerCount int       `json:"player_count"`
	Winners     []string  `json:"winners"`
	PlayedAt    time.Time `json:"played_at"`
	Notes       string    `json:"notes,omitempty"`
}

// ResultFilter narrows a result listing. Zero values match everything.
type ResultFilter struct {
	GameID int64
	UserID int64
	Limit  int
}

// Participation is one player's appearance in one result, the unit the
// scoreboard aggregates over.
type Participation struct {
	ResultID int64
	GameID   int64
	PlayedAt time.Time
	UserID   int64
	Username string
	Score    float64
	IsWinner bool
}
