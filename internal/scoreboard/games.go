package scoreboard

import (
	"sort"

	"gametracker/internal/models"
)

// GroupByGame splits participations by game id, preserving row order
func GroupByGame(rows []models.Participation) map[int64][]models.Participation {
	groups := make(map[int64][]models.Participation)
	for _, row := range rows {
		groups[row.GameID] = append(groups[row.GameID], row)
	}
	return groups
}

// SummarizeGame computes play statistics for one game from its
// participations. Score figures span every participant row.
func SummarizeGame(game models.Game, rows []models.Participation) models.GameStats {
	stats := models.GameStats{
		GameID:   game.ID,
		GameName: game.Name,
		GameType: game.Type,
	}
	if len(rows) == 0 {
		return stats
	}

	results := make(map[int64]bool)
	players := make(map[int64]bool)
	total := 0.0
	stats.HighestScore = rows[0].Score
	stats.LowestScore = rows[0].Score
	last := rows[0].PlayedAt

	for _, row := range rows {
		results[row.ResultID] = true
		players[row.UserID] = true
		total += row.Score
		if row.Score > stats.HighestScore {
			stats.HighestScore = row.Score
		}
		if row.Score < stats.LowestScore {
			stats.LowestScore = row.Score
		}
		if row.PlayedAt.After(last) {
			last = row.PlayedAt
		}
	}

	stats.TotalPlays = len(results)
	stats.UniquePlayers = len(players)
	stats.AverageScore = round2(total / float64(len(rows)))
	stats.LastPlayed = &last
	return stats
}

// PlayerBreakdown groups one player's participations by game. Rows belonging
// to other players are ignored. Games are ordered by games played
// descending, then game id.
func PlayerBreakdown(rows []models.Participation, userID int64, gameNames map[int64]string) []models.PlayerGameStats {
	type acc struct {
		stats models.PlayerGameStats
		total float64
	}
	byGame := make(map[int64]*acc)

	for _, row := range rows {
		if row.UserID != userID {
			continue
		}
		a, ok := byGame[row.GameID]
		if !ok {
			a = &acc{stats: models.PlayerGameStats{
				GameID:    row.GameID,
				GameName:  gameNames[row.GameID],
				BestScore: row.Score,
			}}
			byGame[row.GameID] = a
		}
		a.stats.GamesPlayed++
		if row.IsWinner {
			a.stats.Wins++
		}
		a.total += row.Score
		if row.Score > a.stats.BestScore {
			a.stats.BestScore = row.Score
		}
	}

	breakdown := make([]models.PlayerGameStats, 0, len(byGame))
	for _, a := range byGame {
		s := a.stats
		s.WinRate = winRate(s.Wins, s.GamesPlayed)
		s.AverageScore = round2(a.total / float64(s.GamesPlayed))
		breakdown = append(breakdown, s)
	}

	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].GamesPlayed != breakdown[j].GamesPlayed {
			return breakdown[i].GamesPlayed > breakdown[j].GamesPlayed
		}
		return breakdown[i].GameID < breakdown[j].GameID
	})
	return breakdown
}
