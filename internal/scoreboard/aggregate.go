// Package scoreboard derives player statistics, streaks and rankings from
// recorded match participations. Nothing here touches storage; callers load
// the participations for a scope (everything, or one game) and hand them in.
package scoreboard

import (
	"math"
	"sort"

	"gametracker/internal/models"
)

// StreakWindow is how many of a player's most recent results feed the
// streak calculation.
const StreakWindow = 50

type accumulator struct {
	stats   models.PlayerStats
	history []models.Participation
}

// Aggregate produces one PlayerStats per distinct participant in rows,
// ranked by Rank. Each row counts as one game played for its player.
// Empty input yields an empty, non-nil slice.
func Aggregate(rows []models.Participation) []models.PlayerStats {
	byPlayer := make(map[int64]*accumulator)
	for _, row := range rows {
		acc, ok := byPlayer[row.UserID]
		if !ok {
			acc = &accumulator{stats: models.PlayerStats{PlayerID: row.UserID, Username: row.Username}}
			byPlayer[row.UserID] = acc
		}
		acc.stats.GamesPlayed++
		if row.IsWinner {
			acc.stats.Wins++
		}
		acc.stats.TotalScore += row.Score
		acc.history = append(acc.history, row)
	}

	result := make([]models.PlayerStats, 0, len(byPlayer))
	for _, acc := range byPlayer {
		s := acc.stats
		s.Losses = s.GamesPlayed - s.Wins
		s.WinRate = winRate(s.Wins, s.GamesPlayed)
		if s.GamesPlayed > 0 {
			s.AvgScore = round2(s.TotalScore / float64(s.GamesPlayed))
		}
		s.CurrentStreak, s.LongestStreak = ComputeStreak(Outcomes(acc.history))
		result = append(result, s)
	}

	// Fixed pre-order so the stable ranking below is deterministic.
	sort.Slice(result, func(i, j int) bool { return result[i].PlayerID < result[j].PlayerID })
	Rank(result)
	return result
}

// Outcomes orders one player's participations newest first (played_at, then
// result id, both descending) and returns the win flags of at most the
// StreakWindow most recent ones. rows is not modified.
func Outcomes(rows []models.Participation) []bool {
	ordered := make([]models.Participation, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].PlayedAt.Equal(ordered[j].PlayedAt) {
			return ordered[i].PlayedAt.After(ordered[j].PlayedAt)
		}
		return ordered[i].ResultID > ordered[j].ResultID
	})

	if len(ordered) > StreakWindow {
		ordered = ordered[:StreakWindow]
	}

	outcomes := make([]bool, len(ordered))
	for i, row := range ordered {
		outcomes[i] = row.IsWinner
	}
	return outcomes
}

// ComputeStreak derives the current and longest winning streak from win
// flags ordered newest first. Only the first StreakWindow entries count.
//
// The current streak takes its sign from the newest outcome (positive for
// wins, negative for losses) and grows while outcomes keep matching. The
// longest streak is the longest run of consecutive wins and is never
// negative.
func ComputeStreak(outcomes []bool) (current, longest int) {
	if len(outcomes) > StreakWindow {
		outcomes = outcomes[:StreakWindow]
	}
	if len(outcomes) == 0 {
		return 0, 0
	}

	polarity := outcomes[0]
	for _, won := range outcomes {
		if won != polarity {
			break
		}
		current++
	}
	if !polarity {
		current = -current
	}

	run := 0
	for _, won := range outcomes {
		if won {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}

	return current, longest
}

func winRate(wins, played int) float64 {
	if played == 0 {
		return 0
	}
	return round2(float64(wins) / float64(played) * 100)
}

// round2 rounds half away from zero to two decimals
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
