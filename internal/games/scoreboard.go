package games

import "sort"

// ScoreboardRow is one ranked line of the standings.
type ScoreboardRow struct {
	Rank       int     `json:"rank"`
	Name       string  `json:"name"`
	TotalScore float64 `json:"totalScore"`
	Leader     bool    `json:"leader"`
}

// Scoreboard is the render model for the standings of a game.
type Scoreboard struct {
	Rows []ScoreboardRow `json:"rows"`
}

// NewScoreboard derives the standings from a roster: descending by total
// score, ties kept in join order, explicit 1-based ranks, and the single top
// scorer marked as leader.
func NewScoreboard(players []Player) Scoreboard {
	ordered := make([]Player, len(players))
	copy(ordered, players)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].TotalScore > ordered[j].TotalScore
	})

	rows := make([]ScoreboardRow, len(ordered))
	for i, p := range ordered {
		rows[i] = ScoreboardRow{
			Rank:       i + 1,
			Name:       p.Name,
			TotalScore: p.TotalScore,
			Leader:     i == 0,
		}
	}
	return Scoreboard{Rows: rows}
}
