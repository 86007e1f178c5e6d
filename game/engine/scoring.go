package engine

import (
	"fmt"

	"github.com/voltrace/voltrace/game/catalog"
)

// FinalScore is one row of the end-of-match ranking.
type FinalScore struct {
	Name          string `json:"name"`
	Score         int    `json:"score"`
	Position      int    `json:"position"`
	Energy        int    `json:"energy"`
	PM            int    `json:"pm"`
	Collisions    int    `json:"collisions"`
	Perks         int    `json:"perks"`
	Finished      bool   `json:"finished"`
	Active        bool   `json:"active"`
	ExplorerBonus bool   `json:"explorer_bonus"`
}

// FinalScores is the frozen ranking, available once the match has ended.
func (m *Match) FinalScores() []FinalScore {
	return m.finalScores
}

// finalize freezes the match and computes the deterministic ranking. Scores
// are computed exactly once.
func (m *Match) finalize() {
	if m.Ended {
		return
	}
	m.Ended = true

	maxVisited := 0
	for _, p := range m.Players {
		if n := len(p.VisitedTileKinds); n > maxVisited {
			maxVisited = n
		}
	}

	scores := make([]FinalScore, 0, len(m.Players))
	for _, p := range m.Players {
		explorer := maxVisited > 0 && len(p.VisitedTileKinds) == maxVisited
		score := p.Energy + p.Position +
			15*p.CollisionsCaused + 5*p.PM + 20*len(p.Perks)
		if p.Position >= catalog.FinishCell && p.Energy > 0 {
			score += 100
		}
		if explorer {
			score += 100
		}
		scores = append(scores, FinalScore{
			Name:          p.Name,
			Score:         score,
			Position:      p.Position,
			Energy:        p.Energy,
			PM:            p.PM,
			Collisions:    p.CollisionsCaused,
			Perks:         len(p.Perks),
			Finished:      p.Finished,
			Active:        p.Active,
			ExplorerBonus: explorer,
		})
	}
	m.finalScores = scores

	// Ties break toward the later seat.
	best := -1
	for i, s := range scores {
		if !s.Active {
			continue
		}
		if best < 0 || s.Score >= scores[best].Score {
			best = i
		}
	}
	if best >= 0 {
		m.Winner = scores[best].Name
		m.emit(EventMatchEnd, fmt.Sprintf("🏆 %s wins with %d points", m.Winner, scores[best].Score))
	} else {
		m.emit(EventMatchEnd, "🏁 The race ends with no winner")
	}
}
