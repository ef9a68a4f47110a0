package models

import "time"

// PlaySessionStatus tracks the lifecycle of a round-based match
type PlaySessionStatus string

const (
	PlaySessionSetup      PlaySessionStatus = "setup"
	PlaySessionInProgress PlaySessionStatus = "in_progress"
	PlaySessionCompleted  PlaySessionStatus = "completed"
	PlaySessionCancelled  PlaySessionStatus = "cancelled"
)

// MaxRounds caps total_rounds for a play session
const MaxRounds = 10

// Terminal reports whether no further changes are allowed
func (s PlaySessionStatus) Terminal() bool {
	return s == PlaySessionCompleted || s == PlaySessionCancelled
}

// Settable reports whether a client may move a session into s
func (s PlaySessionStatus) Settable() bool {
	switch s {
	case PlaySessionInProgress, PlaySessionCompleted, PlaySessionCancelled:
		return true
	}
	return false
}

// PlaySession is a head-to-head match of a fixed number of rounds. Each
// submitted round becomes a GameResult linked back to the session.
type PlaySession struct {
	ID           int64             `json:"id"`
	GameID       int64             `json:"game_id"`
	StartedBy    int64             `json:"started_by"`
	Player1ID    int64             `json:"player1_id"`
	Player2ID    int64             `json:"player2_id"`
	TotalRounds  int               `json:"total_rounds"`
	CurrentRound int               `json:"current_round"`
	Status       PlaySessionStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}
