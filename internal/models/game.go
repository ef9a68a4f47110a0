package models

import "time"

// GameType classifies a game
type GameType string

const (
	GameTypeVideo GameType = "video"
	GameTypeTable GameType = "table"
	GameTypeCard  GameType = "card"
)

// Valid reports whether t is one of the known game types
func (t GameType) Valid() bool {
	switch t {
	case GameTypeVideo, GameTypeTable, GameTypeCard:
		return true
	}
	return false
}

// Game is something players compete in. Only its creator may change it.
type Game struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Type      GameType  `json:"type"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GameFilter narrows a game listing. Zero values match everything.
type GameFilter struct {
	Type      GameType
	CreatedBy int64
	Query     string // case-insensitive name substring
}
