package engine

import (
	"fmt"
	"math/rand"

	"github.com/voltrace/voltrace/game/catalog"
	"github.com/voltrace/voltrace/game/player"
)

// GlobalEvent is the active round-scoped rule override, if any.
type GlobalEvent struct {
	Name            string `json:"name"`
	RoundsRemaining int    `json:"rounds_remaining"`
}

// Seat names one participant and the kit they locked in at the lobby. An
// empty kit id falls back to the canonical kit order by seat index.
type Seat struct {
	Name  string
	KitID string
}

// pendingResolve records an unacknowledged phase-1 move. ByDice decides
// whether the resolve step advances the turn.
type pendingResolve struct {
	Player string
	ByDice bool
}

// Match is the authoritative state of one game. Callers serialize access.
type Match struct {
	Board      *Board
	Players    []*player.Player
	CurrentIdx int
	Round      int
	Ended      bool
	Winner     string
	Global     *GlobalEvent

	// MidGameLastPlayer tracks the trailing active player, refreshed each
	// round.
	MidGameLastPlayer string

	rng         *rand.Rand
	events      []Event
	pending     *pendingResolve
	finalScores []FinalScore
}

// NewMatch builds a match for 2..5 seats with a seeded generator.
func NewMatch(seats []Seat, packs []catalog.EnergyPack, seed int64) (*Match, error) {
	if len(seats) < 2 || len(seats) > 5 {
		return nil, fmt.Errorf("need 2 to 5 players, got %d", len(seats))
	}
	rng := rand.New(rand.NewSource(seed))

	kits := catalog.Kits()
	players := make([]*player.Player, 0, len(seats))
	for i, s := range seats {
		kitID := s.KitID
		if kitID == "" {
			kitID = kits[i%len(kits)].ID
		}
		p, err := player.New(s.Name, kitID)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}

	m := &Match{
		Board:      NewBoard(rng, packs),
		Players:    players,
		CurrentIdx: 0,
		Round:      1,
		rng:        rng,
	}
	m.refreshLastPlayer()
	return m, nil
}

// Find returns the player by name, implementing player.Roster.
func (m *Match) Find(name string) *player.Player {
	for _, p := range m.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// PlayerCount implements player.Roster.
func (m *Match) PlayerCount() int { return len(m.Players) }

// Current returns the player whose turn it is.
func (m *Match) Current() *player.Player {
	return m.Players[m.CurrentIdx]
}

// ActivePlayers returns the players still in the match.
func (m *Match) ActivePlayers() []*player.Player {
	var out []*player.Player
	for _, p := range m.Players {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}

// othersAt lists active players other than p standing on the cell.
func (m *Match) othersAt(p *player.Player, cell int) []*player.Player {
	var out []*player.Player
	for _, o := range m.Players {
		if o != p && o.Active && o.Position == cell {
			out = append(out, o)
		}
	}
	return out
}

func (m *Match) refreshLastPlayer() {
	var last *player.Player
	for _, p := range m.ActivePlayers() {
		if last == nil || p.Position < last.Position {
			last = p
		}
	}
	if last != nil {
		m.MidGameLastPlayer = last.Name
	}
}

// ResolvePending reports the player owed a resolve step, if any.
func (m *Match) ResolvePending() (string, bool) {
	if m.pending == nil {
		return "", false
	}
	return m.pending.Player, true
}

// PlayerState is the public view of one player.
type PlayerState struct {
	Name             string            `json:"name"`
	Position         int               `json:"position"`
	Energy           int               `json:"energy"`
	PM               int               `json:"pm"`
	Active           bool              `json:"active"`
	Finished         bool              `json:"finished"`
	KitID            string            `json:"kit_id"`
	Abilities        []catalog.Ability `json:"abilities"`
	Cooldowns        map[string]int    `json:"cooldowns"`
	Effects          []player.Effect   `json:"effects"`
	Perks            []string          `json:"perks"`
	IsBounty         bool              `json:"is_bounty"`
	ConsecutiveSixes int               `json:"consecutive_sixes"`
}

// State is the wire snapshot of the match.
type State struct {
	Players     []PlayerState            `json:"players"`
	CurrentTurn string                   `json:"current_turn"`
	Round       int                      `json:"round"`
	Ended       bool                     `json:"ended"`
	Winner      string                   `json:"winner,omitempty"`
	GlobalEvent *GlobalEvent             `json:"global_event,omitempty"`
	Tiles       map[int]catalog.Tile     `json:"tiles"`
	Packs       []catalog.EnergyPack     `json:"packs"`
}

// Snapshot captures the current state for fan-out.
func (m *Match) Snapshot() State {
	players := make([]PlayerState, 0, len(m.Players))
	for _, p := range m.Players {
		perks := make([]string, 0, len(p.Perks))
		for id := range p.Perks {
			perks = append(perks, id)
		}
		players = append(players, PlayerState{
			Name:             p.Name,
			Position:         p.Position,
			Energy:           p.Energy,
			PM:               p.PM,
			Active:           p.Active,
			Finished:         p.Finished,
			KitID:            p.KitID,
			Abilities:        p.Abilities,
			Cooldowns:        p.Cooldowns,
			Effects:          p.Effects,
			Perks:            perks,
			IsBounty:         p.IsBounty,
			ConsecutiveSixes: p.ConsecutiveSixes,
		})
	}
	return State{
		Players:     players,
		CurrentTurn: m.Current().Name,
		Round:       m.Round,
		Ended:       m.Ended,
		Winner:      m.Winner,
		GlobalEvent: m.Global,
		Tiles:       m.Board.Tiles,
		Packs:       m.Board.Packs,
	}
}

// applyDamage funnels an energy loss through the player pipeline, emits the
// elimination or last-breath notice, and credits the bounty when an attacker
// is responsible. Returns the delta actually applied.
func (m *Match) applyDamage(target *player.Player, delta int, attacker *player.Player) int {
	rescued := target.LastBreathUsed
	applied := target.AdjustEnergy(delta, m)
	if !target.Active {
		m.emit(EventElimination, fmt.Sprintf("💀 %s has been eliminated", target.Name))
	} else if target.LastBreathUsed && !rescued {
		m.emit(EventElimination, fmt.Sprintf("❤️‍🩹 Último Aliento saved %s: survives with 50 energy and a shield", target.Name))
	}
	if attacker != nil && attacker != target && applied < 0 {
		m.claimBounty(attacker, target)
	}
	return applied
}
