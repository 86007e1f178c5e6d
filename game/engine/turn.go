package engine

import (
	"fmt"

	"github.com/voltrace/voltrace/game/catalog"
	"github.com/voltrace/voltrace/game/player"
)

// RollResult is the phase-1 outcome sent back after a die roll.
type RollResult struct {
	Player           string  `json:"player"`
	Dice             []int   `json:"dice"`
	Steps            int     `json:"steps"`
	From             int     `json:"pos_initial"`
	To               int     `json:"pos_final"`
	FinishReached    bool    `json:"finish_reached"`
	ConsecutiveSixes int     `json:"consecutive_sixes"`
	Paused           bool    `json:"paused"`
	TurnLost         bool    `json:"turn_lost"`
	Events           []Event `json:"-"`
}

// ResolveResult is the phase-2 outcome after the client acknowledges the
// move animation.
type ResolveResult struct {
	Player       string  `json:"player"`
	TurnAdvanced bool    `json:"turn_advanced"`
	Ended        bool    `json:"ended"`
	State        State   `json:"state"`
	Events       []Event `json:"-"`
}

// Roll runs phase 1 of a turn: start-of-turn effects, then the die and the
// move. The tile under the final cell is not resolved until the client acks.
func (m *Match) Roll(name string) (*RollResult, error) {
	if m.Ended {
		return nil, ErrMatchEnded
	}
	p := m.Find(name)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if p != m.Current() {
		return nil, ErrNotYourTurn
	}
	if m.pending != nil {
		return nil, ErrResolvePending
	}
	if p.Rolled {
		return nil, ErrAlreadyRolled
	}
	if p.Offer != nil {
		return nil, ErrOfferPending
	}

	res := &RollResult{Player: name, From: p.Position}

	// A controlled player rolls their controller's stored die, or loses the
	// turn when none was stored.
	controlled := false
	controlledDie := 0
	if eff, ok := p.Effect(player.EffectControlled); ok {
		controlled = true
		controlledDie = eff.ForcedDie
		p.RemoveEffect(player.EffectControlled)
	}

	m.startTurn(p)
	if !p.Active {
		res.TurnLost = true
		m.advanceTurn()
		m.checkEnd()
		res.Events = m.takeEvents()
		return res, nil
	}

	if controlled && controlledDie == 0 {
		m.emit(EventTurn, fmt.Sprintf("🎮 %s is controlled and loses the turn", name))
		res.TurnLost = true
		m.advanceTurn()
		res.Events = m.takeEvents()
		return res, nil
	}

	if p.HasEffect(player.EffectPause) {
		p.ConsumeEffectTick(player.EffectPause)
		m.emit(EventTurn, fmt.Sprintf("⏸️ %s loses the turn while paused", name))
		res.Paused = true
		m.advanceTurn()
		res.Events = m.takeEvents()
		return res, nil
	}

	// The die. Dado Perfecto and Control Total both preempt the RNG.
	var die int
	switch {
	case controlled:
		die = controlledDie
		m.emit(EventTurn, fmt.Sprintf("🎮 %s rolls a forced %d", name, die))
	case p.ForcedDie > 0:
		die = p.ForcedDie
		p.ForcedDie = 0
		p.ConsecutiveSixes = 0
		m.emit(EventTurn, fmt.Sprintf("🎯 %s used Dado Perfecto: %d", name, die))
	default:
		die = m.rng.Intn(6) + 1
		if die == 6 {
			p.ConsecutiveSixes++
		} else {
			p.ConsecutiveSixes = 0
		}
		m.emit(EventTurn, fmt.Sprintf("%s rolled %d", name, die))
	}
	res.Dice = append(res.Dice, die)

	steps := die
	if p.HasEffect(player.EffectDoubleDice) {
		second := m.rng.Intn(6) + 1
		res.Dice = append(res.Dice, second)
		steps += second
		m.emit(EventTurn, fmt.Sprintf("🔄 Doble Turno: %s adds %d for %d", name, second, steps))
	}
	if p.HasEffect(player.EffectTurbo) {
		steps *= 2
		m.emit(EventTurn, fmt.Sprintf("⚡ Turbo: %s moves %d cells", name, steps))
	}
	if p.HasPerk(catalog.ImpulsoInestable) {
		if m.rng.Intn(2) == 0 {
			steps += 2
			m.emit(EventTurn, "🌀 Impulso Inestable: +2 cells")
		} else if steps > 0 {
			steps--
			m.emit(EventTurn, "🌀 Impulso Inestable: -1 cell")
		}
	}

	p.Position += steps
	if p.Position > catalog.FinishCell {
		p.Position = catalog.FinishCell
	}
	m.emit(EventTurn, fmt.Sprintf("%s moves to cell %d", name, p.Position))

	p.Rolled = true
	m.pending = &pendingResolve{Player: name, ByDice: true}

	res.Steps = steps
	res.To = p.Position
	res.FinishReached = p.Position >= catalog.FinishCell
	res.ConsecutiveSixes = p.ConsecutiveSixes
	res.Events = m.takeEvents()
	return res, nil
}

// startTurn applies the owner's round-start effects: cooldown ticks, the
// recarga_constante perk, energy-leak damage, and a pending sobrecarga.
func (m *Match) startTurn(p *player.Player) {
	p.TickCooldowns()

	if p.HasPerk(catalog.RecargaConstante) {
		if gained := p.AdjustEnergy(10, m); gained > 0 {
			m.emit(EventTurn, fmt.Sprintf("🔋 Recarga Constante: %s +%d energy", p.Name, gained))
		} else {
			m.emit(EventTurn, fmt.Sprintf("🚫 Recarga Constante blocked for %s", p.Name))
		}
	}

	if eff, ok := p.Effect(player.EffectEnergyLeak); ok {
		lost := m.applyDamage(p, -eff.Damage, nil)
		m.emit(EventTurn, fmt.Sprintf("🩸 Fuga de Energía: %s loses %d", p.Name, -lost))
	}

	if p.HasEffect(player.EffectSobrecargaPending) {
		p.RemoveEffect(player.EffectSobrecargaPending)
		outcomes := []int{-25, 75, 150}
		roll := outcomes[m.rng.Intn(len(outcomes))]
		if roll < 0 {
			m.applyDamage(p, roll, nil)
			m.emit(EventTurn, fmt.Sprintf("🎲 Sobrecarga: %s loses %d energy", p.Name, -roll))
		} else {
			gained := p.AdjustEnergy(roll, m)
			m.emit(EventTurn, fmt.Sprintf("🎲 Sobrecarga: %s gains %d energy", p.Name, gained))
		}
	}
}

// Resolve runs phase 2: the tile under the player's cell, collisions there,
// effect aging and, for dice-triggered moves, the turn advance.
func (m *Match) Resolve(name string) (*ResolveResult, error) {
	if m.Ended {
		return nil, ErrMatchEnded
	}
	if m.pending == nil {
		return nil, ErrNothingToResolve
	}
	if name != "" && name != m.pending.Player {
		return nil, ErrNotYourTurn
	}

	p := m.Find(m.pending.Player)
	byDice := m.pending.ByDice
	m.pending = nil

	if p.Position >= catalog.FinishCell {
		p.Finished = true
		m.emit(EventTurn, fmt.Sprintf("🏆 %s reached the finish line!", p.Name))
	} else {
		m.processPosition(p, p.Position)
		// A teleport or turbo chain can land on the finish mid-resolve.
		if p.Active && p.Position >= catalog.FinishCell {
			p.Finished = true
			m.emit(EventTurn, fmt.Sprintf("🏆 %s reached the finish line!", p.Name))
		}
	}

	if byDice {
		p.TickEffects()
		p.ClearTurnFlags()
	}

	res := &ResolveResult{Player: p.Name, TurnAdvanced: false}

	if m.anyFinished() || len(m.ActivePlayers()) < 2 {
		m.finalize()
	} else if byDice {
		m.advanceTurn()
		res.TurnAdvanced = true
	}

	res.Ended = m.Ended
	res.State = m.Snapshot()
	res.Events = m.takeEvents()
	return res, nil
}

// ForceResolve completes an abandoned turn on behalf of a player who
// disconnected or timed out, then deactivates them. Safe to call whether or
// not a resolve is pending.
func (m *Match) ForceResolve(name string) *ResolveResult {
	if m.Ended {
		return &ResolveResult{Player: name, Ended: true, State: m.Snapshot()}
	}
	p := m.Find(name)
	if p == nil {
		return &ResolveResult{Player: name, State: m.Snapshot()}
	}

	if m.pending != nil && m.pending.Player == name {
		if res, err := m.Resolve(name); err == nil {
			p.Active = false
			m.emit(EventElimination, fmt.Sprintf("🚪 %s left the race", name))
			m.checkEnd()
			res.Ended = m.Ended
			res.State = m.Snapshot()
			res.Events = append(res.Events, m.takeEvents()...)
			return res
		}
	}

	wasCurrent := p == m.Current()
	p.Active = false
	m.emit(EventElimination, fmt.Sprintf("🚪 %s left the race", name))
	if !m.checkEnd() && wasCurrent {
		m.pending = nil
		p.ClearTurnFlags()
		m.advanceTurn()
	}
	return &ResolveResult{
		Player: name,
		Ended:  m.Ended,
		State:  m.Snapshot(),
		Events: m.takeEvents(),
	}
}

func (m *Match) anyFinished() bool {
	for _, p := range m.Players {
		if p.Finished {
			return true
		}
	}
	return false
}

// checkEnd finalizes the match when fewer than two players remain. Reports
// whether the match ended.
func (m *Match) checkEnd() bool {
	if m.Ended {
		return true
	}
	if len(m.ActivePlayers()) < 2 {
		m.finalize()
		return true
	}
	return false
}

// advanceTurn hands the turn to the next active player, detecting the round
// wrap.
func (m *Match) advanceTurn() {
	if m.Ended {
		return
	}
	start := m.CurrentIdx
	for i := 1; i <= len(m.Players); i++ {
		idx := (start + i) % len(m.Players)
		if !m.Players[idx].Active {
			continue
		}
		m.CurrentIdx = idx
		if idx <= start {
			m.startRound()
		}
		return
	}
}

// startRound runs the per-round bookkeeping: the global-event clock, the
// bounty refresh, and the trailing-player marker.
func (m *Match) startRound() {
	m.Round++

	for _, p := range m.Players {
		p.BountyClaimed = false
	}

	if m.Global != nil {
		m.Global.RoundsRemaining--
		if m.Global.RoundsRemaining <= 0 {
			m.emit(EventGlobal, fmt.Sprintf("🌎 %s has ended", m.Global.Name))
			m.Global = nil
		}
	} else if m.Round >= 5 && m.Round%5 == 0 {
		m.activateGlobalEvent()
	}

	m.refreshBounty()
	m.refreshLastPlayer()
}
