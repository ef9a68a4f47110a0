package models

import "time"

// PlayerStats is derived from results on every request and never stored
type PlayerStats struct {
	PlayerID      int64   `json:"player_id"`
	Username      string  `json:"username"`
	GamesPlayed   int     `json:"games_played"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	WinRate       float64 `json:"win_rate"`
	TotalScore    float64 `json:"total_score"`
	AvgScore      float64 `json:"avg_score"`
	CurrentStreak int     `json:"current_streak"`
	LongestStreak int     `json:"longest_streak"`
}

// GameStats summarises play across one game
type GameStats struct {
	GameID        int64      `json:"game_id"`
	GameName      string     `json:"game_name"`
	GameType      GameType   `json:"game_type"`
	TotalPlays    int        `json:"total_plays"`
	UniquePlayers int        `json:"unique_players"`
	AverageScore  float64    `json:"average_score"`
	HighestScore  float64    `json:"highest_score"`
	LowestScore   float64    `json:"lowest_score"`
	LastPlayed    *time.Time `json:"last_played,omitempty"`
}

// PlayerGameStats is one row of a player's per-game breakdown
type PlayerGameStats struct {
	GameID       int64   `json:"game_id"`
	GameName     string  `json:"game_name"`
	GamesPlayed  int     `json:"games_played"`
	Wins         int     `json:"wins"`
	WinRate      float64 `json:"win_rate"`
	AverageScore float64 `json:"average_score"`
	BestScore    float64 `json:"best_score"`
}
