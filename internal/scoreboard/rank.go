package scoreboard

import (
	"sort"

	"gametracker/internal/models"
)

// SortKey selects the ordering for top-player listings
type SortKey string

const (
	SortByWinRate SortKey = "winRate"
	SortByWins    SortKey = "wins"
)

// Valid reports whether k is a known sort key
func (k SortKey) Valid() bool {
	return k == SortByWinRate || k == SortByWins
}

// Rank orders stats by wins, then win rate, then average score, all
// descending. The sort is stable, so ties keep their input order.
func Rank(stats []models.PlayerStats) {
	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		return a.AvgScore > b.AvgScore
	})
}

// Top returns at most limit players ordered by key. SortByWinRate orders by
// win rate then wins; SortByWins by wins then win rate. stats is not
// modified.
func Top(stats []models.PlayerStats, key SortKey, limit int) []models.PlayerStats {
	ordered := make([]models.PlayerStats, len(stats))
	copy(ordered, stats)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if key == SortByWins {
			if a.Wins != b.Wins {
				return a.Wins > b.Wins
			}
			return a.WinRate > b.WinRate
		}
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		return a.Wins > b.Wins
	})

	if limit >= 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}
	return ordered
}
