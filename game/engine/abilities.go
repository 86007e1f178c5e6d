package engine

import (
	"fmt"
	"strconv"

	"github.com/voltrace/voltrace/game/catalog"
	"github.com/voltrace/voltrace/game/player"
)

// AbilityResult is the outcome of a successful ability use. Private marks
// results that only the caster may see in full; the room gets a redacted
// announcement. Pending is set when the ability moved the caster and a
// resolve ack is expected before the tile underneath fires.
type AbilityResult struct {
	Caster  string  `json:"caster"`
	Ability string  `json:"ability"`
	Target  string  `json:"target,omitempty"`
	Private bool    `json:"-"`
	Pending bool    `json:"pending"`
	Events  []Event `json:"-"`
}

// abilityHandler applies one ability. The target argument carries the
// victim's name for targeted abilities and the chosen die for dado_perfecto.
// A returned error means the use was invalid and nothing is charged.
type abilityHandler func(m *Match, caster *player.Player, a catalog.Ability, target string) error

var abilityHandlers = map[string]abilityHandler{
	catalog.Sabotaje:            handleSabotaje,
	catalog.BombaEnergetica:     handleBomba,
	catalog.Robo:                handleRobo,
	catalog.Tsunami:             handleTsunami,
	catalog.FugaDeEnergia:       handleFuga,
	catalog.EscudoTotal:         handleEscudoTotal,
	catalog.Curacion:            handleCuracion,
	catalog.Invisibilidad:       handleInvisibilidad,
	catalog.Barrera:             handleBarrera,
	catalog.TransferenciaDeFase: handleFase,
	catalog.Cohete:              handleCohete,
	catalog.IntercambioForzado:  handleIntercambio,
	catalog.Retroceso:           handleRetroceso,
	catalog.ReboteControlado:    handleRebote,
	catalog.DadoPerfecto:        handleDadoPerfecto,
	catalog.MinaDeEnergia:       handleMina,
	catalog.DobleTurno:          handleDobleTurno,
	catalog.Caos:                handleCaos,
	catalog.BloqueoEnergetico:   handleBloqueo,
	catalog.SobrecargaInestable: handleSobrecarga,
	catalog.HilosEspectrales:    handleHilos,
	catalog.TironDeCadenas:      handleTiron,
	catalog.ControlTotal:        handleControlTotal,
	catalog.TraspasoDeDolor:     handleTraspaso,
}

// UseAbility validates and dispatches one ability use by the current player.
// Slot is 1-based. The common gate order: interference, pending perk offer,
// cooldown, energy, per-turn flags. A handler error leaves the caster
// uncharged; any dispatched outcome (applied, dodged, protected, reflected)
// still consumes energy, arms the cooldown and awards PM.
func (m *Match) UseAbility(name string, slot int, target string) (*AbilityResult, error) {
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
	if m.globalActive(GlobalInterferencia) {
		return nil, ErrInterference
	}
	if p.Offer != nil {
		return nil, ErrOfferPending
	}
	a, ok := p.AbilityAt(slot)
	if !ok {
		return nil, ErrUnknownAbility
	}
	if p.Cooldowns[a.Name] > 0 {
		return nil, ErrOnCooldown
	}
	if p.Energy <= a.EnergyCost {
		return nil, ErrNotEnoughEnergy
	}
	if p.AbilityUsed || p.Rolled {
		return nil, ErrAbilityUsed
	}
	h := abilityHandlers[a.Name]
	if h == nil {
		return nil, ErrUnknownAbility
	}

	mark := len(m.events)
	if a.Name == catalog.Invisibilidad {
		m.emitCaster(name, EventAbility, fmt.Sprintf("%s You fade from sight", a.Symbol))
	} else {
		m.emit(EventAbility, fmt.Sprintf("%s %s uses %s", a.Symbol, name, a.Title))
	}

	if err := h(m, p, a, target); err != nil {
		m.events = m.events[:mark]
		return nil, err
	}

	p.Energy -= a.EnergyCost
	p.StartCooldown(a)
	p.AbilityUsed = true
	p.AbilityUses++
	pm := 1
	if p.HasPerk(catalog.MaestriaHabilidad) {
		pm += 2
	}
	p.GainPM(pm)

	res := &AbilityResult{
		Caster:  name,
		Ability: a.Name,
		Target:  target,
		Private: a.Name == catalog.Invisibilidad,
		Pending: m.pending != nil && !m.pending.ByDice,
	}

	if m.anyFinished() || len(m.ActivePlayers()) < 2 {
		m.finalize()
	}
	res.Events = m.takeEvents()
	return res, nil
}

// namedTarget resolves a required victim by name.
func (m *Match) namedTarget(caster *player.Player, name string) (*player.Player, error) {
	if name == "" || name == caster.Name {
		return nil, ErrInvalidTarget
	}
	t := m.Find(name)
	if t == nil || !t.Active {
		return nil, ErrInvalidTarget
	}
	return t, nil
}

// canBeAffected runs the dodge and invisibility gates on a victim. It emits
// the miss events itself and reports whether the ability lands. Anticipación
// only covers offensive abilities.
func (m *Match) canBeAffected(target *player.Player, a catalog.Ability) bool {
	if a.Category == catalog.Offensive && target.HasPerk(catalog.Anticipacion) && m.rng.Intn(100) < 20 {
		m.emit(EventAbility, fmt.Sprintf("🏃 %s anticipates %s and dodges", target.Name, a.Title))
		return false
	}
	if target.HasEffect(player.EffectInvisible) {
		m.emit(EventAbility, fmt.Sprintf("👻 %s is untargetable", target.Name))
		return false
	}
	return true
}

// deliverEffect pushes a status or damage application through the full
// interception chain: dodge and invisibility, then a barrier charge that
// reflects the application onto the caster (unless the caster is shielded
// or invisible), then a shield tick that absorbs it. The apply closure runs
// against whoever ends up receiving the effect.
func (m *Match) deliverEffect(caster, target *player.Player, a catalog.Ability, apply func(victim *player.Player)) {
	if !m.canBeAffected(target, a) {
		return
	}
	if target.ConsumeEffectTick(player.EffectBarrier) {
		m.emit(EventAbility, fmt.Sprintf("🔮 %s's barrier deflects %s", target.Name, a.Title))
		if caster.HasEffect(player.EffectShield) || caster.HasEffect(player.EffectInvisible) {
			m.emit(EventAbility, fmt.Sprintf("🛡️ the reflection breaks on %s's defenses", caster.Name))
			return
		}
		m.emit(EventAbility, fmt.Sprintf("↪️ %s is reflected back at %s", a.Title, caster.Name))
		apply(caster)
		return
	}
	if target.ConsumeEffectTick(player.EffectShield) {
		m.emit(EventAbility, fmt.Sprintf("🛡️ %s's shield absorbs %s", target.Name, a.Title))
		return
	}
	apply(target)
}

// moveTo relocates a player mid-turn and resolves the destination. Landing
// on the finish ends the race for them on the spot.
func (m *Match) moveTo(p *player.Player, cell int) {
	if cell < catalog.StartCell {
		cell = catalog.StartCell
	}
	if cell > catalog.FinishCell {
		cell = catalog.FinishCell
	}
	p.Position = cell
	if cell >= catalog.FinishCell {
		p.Finished = true
		m.emit(EventTurn, fmt.Sprintf("🏆 %s reached the finish line!", p.Name))
		return
	}
	m.processPosition(p, cell)
}

func handleSabotaje(m *Match, caster *player.Player, a catalog.Ability, target string) error {
	t, err := m.namedTarget(caster, target)
	if err != nil {
		return err
	}
	turns := 1
	if caster.HasPerk(catalog.SabotajePersistente) {
		turns = 2
	}
	m.deliverEffect(caster, t, a, func(v *player.Player) {
		v.AddEffect(player.Effect{Kind: player.EffectPause, Turns: turns})
		m.emit(EventAbility, fmt.Sprintf("⏸️ %s is sabotaged for %d turn(s)", v.Name, turns))
	})
	return nil
}

func handleBomba(m *Match, caster *player.Player, a catalog.Ability, _ string) error {
	radius := 3
	fragment := caster.HasPerk(catalog.BombaFragmentacion)
	if fragment {
		radius = 5
	}
	for _, o := range m.othersFor(caster) {
		dist := o.Position - caster.Position
		if dist < 0 {
			dist = -dist
		}
		if dist > radius {
			continue
		}
		if !m.canBeAffected(o, a) {
			continue
		}
		if o.ConsumeEffectTick(player.EffectBarrier) {
			m.emit(EventAbility, fmt.Sprintf("🔮 %s's barrier deflects the blast", o.Name))
			if !caster.HasEffect(player.EffectShield) && !caster.HasEffect(player.EffectInvisible) {
				lost := m.applyDamage(caster, -75, nil)
				m.emit(EventAbility, fmt.Sprintf("↪️ the blast bounces back: %s loses %d", caster.Name, -lost))
			}
			continue
		}
		if o.ConsumeEffectTick(player.EffectShield) {
			m.emit(EventAbility, fmt.Sprintf("🛡️ %s's shield absorbs the blast", o.Name))
			continue
		}
		lost := m.applyDamage(o, -75, caster)
		m.emit(EventAbility, fmt.Sprintf("💥 %s is caught in the blast: %d energy", o.Name, lost))
		if fragment && o.Active && !o.Finished {
			if o.HasPerk(catalog.DesvioCinetico) {
				m.emit(EventAbility, fmt.Sprintf("🏃 %s deflects the shockwave", o.Name))
				continue
			}
			push := o.Position + 1
			if o.Position < caster.Position {
				push = o.Position - 1
			}
			m.emit(EventAbility, fmt.Sprintf("🌪️ the shockwave throws %s", o.Name))
			m.moveTo(o, push)
		}
	}
	return nil
}

func handleRobo(m *Match, caster *player.Player, a catalog.Ability, _ string) error {
	var t *player.Player
	for _, o := range m.othersFor(caster) {
		if t == nil || o.Energy > t.Energy {
			t = o
		}
	}
	if t == nil {
		return ErrInvalidTarget
	}
	amount := 50 + m.rng.Intn(101)
	if caster.HasPerk(catalog.RoboOportunista) {
		amount += 30
	}
	m.deliverEffect(caster, t, a, func(v *player.Player) {
		take := amount
		if take > v.Energy {
			take = v.Energy
		}
		if v == caster {
			lost := m.applyDamage(caster, -take, nil)
			m.emit(EventAbility, fmt.Sprintf("💸 the theft backfires: %s loses %d", caster.Name, -lost))
			return
		}
		lost := -m.applyDamage(v, -take, caster)
		gained := caster.AdjustEnergy(lost, m)
		m.emit(EventAbility, fmt.Sprintf("🎭 %s steals %d energy from %s (kept %d)", caster.Name, lost, v.Name, gained))
	})
	return nil
}

func handleTsunami(m *Match, caster *player.Player, a catalog.Ability, _ string) error {
	push := 3
	if caster.HasPerk(catalog.Maremoto) {
		push = 5
	}
	for _, o := range m.othersFor(caster) {
		if !m.canBeAffected(o, a) {
			continue
		}
		eff := push
		if o.HasPerk(catalog.DesvioCinetico) {
			eff -= eff / 2
			m.emit(EventAbility, fmt.Sprintf("🏃 %s deflects part of the wave (push %d)", o.Name, eff))
		}
		m.emit(EventAbility, fmt.Sprintf("🌊 %s is swept back %d cells", o.Name, eff))
		m.moveTo(o, o.Position-eff)
	}
	return nil
}

func handleFuga(m *Match, caster *player.Player, a catalog.Ability, target string) error {
	t, err := m.namedTarget(caster, target)
	if err != nil {
		return err
	}
	m.deliverEffect(caster, t, a, func(v *player.Player) {
		v.AddEffect(player.Effect{Kind: player.EffectEnergyLeak, Turns: 3, Damage: 25})
		m.emit(EventAbility, fmt.Sprintf("🩸 %s leaks 25 energy per turn for 3 turns", v.Name))
	})
	return nil
}

func handleEscudoTotal(m *Match, caster *player.Player, a catalog.Ability, _ string) error {
	turns := 3
	if caster.HasPerk(catalog.EscudoDuradero) {
		turns++
	}
	caster.AddEffect(player.Effect{Kind: player.EffectShield, Turns: turns})
	m.emit(EventAbility, fmt.Sprintf("🛡️ %s raises a total shield for %d rounds", caster.Name, turns))
	return nil
}

func handleCuracion(m *Match, caster *player.Player, a catalog.Ability, _ string) error {
	gained := caster.AdjustEnergy(150, m)
	if gained > 0 {
		m.emit(EventAbility, fmt.Sprintf("🏥 %s recovers %d energy", caster.Name, gained))
	} else {
		m.emit(EventAbility, fmt.Sprintf("🚫 %s cannot absorb the healing", caster.Name))
	}
	return nil
}

func handleInvisibilidad(m *Match, caster *player.Player, a catalog.Ability, _ string) error {
	caster.AddEffect(player.Effect{Kind: player.EffectInvisible, Turns: 2})
	m.emitCaster(caster.Name, EventAbility, "👻 You are invisible for 2 turns")
	return nil
}

func handleBarrera(m *Match, caster *player.Player, a catalog.Ability, _ string) error {
	caster.AddEffect(player.Effect{Kind: player.EffectBarrier, Turns: 2})
	m.emit(EventAbility, fmt.Sprintf("🔮 %s raises a reflective barrier (2 charges)", caster.Name))
	return nil
}

func handleFase(m *Match, caster *player.Player, a catalog.Ability, _ string) error {
	caster.AddEffect(player.Effect{Kind: player.EffectPhase, Turns: 1})
	m.emit(EventAbility, fmt.Sprintf("💨 %s phases out of reach of negative tiles", caster.Name))
	return nil
}

func handleCohete(m *Match, caster *player.Player, a catalog.Ability, _ string) error {
	jump := 3 + m.rng.Intn(5)
	dest := caster.Position + jump
	if dest > catalog.FinishCell {
		dest = catalog.FinishCell
	}
	caster.Position = dest
	m.emit(EventAbility, fmt.Sprintf("🚀 %s rockets %d cells forward to %d", caster.Name, jump, dest))
	m.pending = &pendingResolve{Player: caster.Name, ByDice: false}
	return nil
}

func handleIntercambio(m *Match, caster *player.Player, a catalog.Ability, target string) error {
	t, err := m.namedTarget(caster, target)
	if err != nil {
		return err
	}
	if !m.canBeAffected(t, a) {
		return nil
	}
	caster.Position, t.Position = t.Position, caster.Position
	m.emit(EventAbility, fmt.Sprintf("🔄 %s swaps positions with %s (%d ↔ %d)", caster.Name, t.Name, caster.Position, t.Position))
	m.moveTo(t, t.Position)
	m.pending = &pendingResolve{Player: caster.Name, ByDice: false}
	return nil
}

func handleRetroceso(m *Match, caster *player.Player, a catalog.Ability, target string) error {
	t, err := m.namedTarget(caster, target)
	if err != nil {
		return err
	}
	if !m.canBeAffected(t, a) {
		return nil
	}
	push := 5
	if caster.HasPerk(catalog.RetrocesoBrutal) {
		push = 7
	}
	if t.HasPerk(catalog.DesvioCinetico) {
		push -= push / 2
		m.emit(EventAbility, fmt.Sprintf("🏃 %s deflects part of the push (reduced to %d)", t.Name, push))
	}
	m.emit(EventAbility, fmt.Sprintf("⏪ %s is pushed back %d cells", t.Name, push))
	m.moveTo(t, t.Position-push)
	return nil
}

func handleRebote(m *Match, caster *player.Player, a catalog.Ability, _ string) error {
	back := caster.Position - 2
	if back < catalog.StartCell {
		back = catalog.StartCell
	}
	dest := back + 9
	if dest > catalog.FinishCell {
		dest = catalog.FinishCell
	}
	caster.Position = dest
	m.emit(EventAbility, fmt.Sprintf("↩️ %s rebounds: back to %d, then forward to %d", caster.Name, back, dest))
	m.pending = &pendingResolve{Player: caster.Name, ByDice: false}
	return nil
}

func handleDadoPerfecto(m *Match, caster *player.Player, a catalog.Ability, target string) error {
	value, err := strconv.Atoi(target)
	if err != nil || value < 1 || value > 6 {
		return ErrInvalidTarget
	}
	caster.ForcedDie = value
	m.emit(EventAbility, fmt.Sprintf("🎯 %s loads a perfect die", caster.Name))
	if caster.HasPerk(catalog.DadoCargado) {
		if gained := caster.AdjustEnergy(20, m); gained > 0 {
			m.emit(EventAbility, fmt.Sprintf("🔋 Dado Cargado: %s +%d energy", caster.Name, gained))
		}
	}
	return nil
}

func handleMina(m *Match, caster *player.Player, a catalog.Ability, _ string) error {
	if err := m.Board.PlaceMine(caster.Position, -60, caster.Name); err != nil {
		return err
	}
	caster.MinesPlaced++
	m.emit(EventAbility, fmt.Sprintf("💣 %s arms a mine on cell %d", caster.Name, caster.Position))
	return nil
}

func handleDobleTurno(m *Match, caster *player.Player, a catalog.Ability, _ string) error {
	caster.AddEffect(player.Effect{Kind: player.EffectDoubleDice, Turns: 1})
	m.emit(EventAbility, fmt.Sprintf("⚡ %s will roll two dice this turn", caster.Name))
	return nil
}

func handleCaos(m *Match, caster *player.Player, a catalog.Ability, _ string) error {
	m.emit(EventAbility, "🎪 Chaos: everyone moves at random!")
	for _, j := range m.Players {
		if !j.Active || j.Finished {
			continue
		}
		mov := m.rng.Intn(6) + 1
		if j == caster && caster.HasPerk(catalog.MaestroDelAzar) {
			mov *= 2
		}
		m.emit(EventAbility, fmt.Sprintf("🌀 %s advances %d cells", j.Name, mov))
		m.moveTo(j, j.Position+mov)
	}
	return nil
}

func handleBloqueo(m *Match, caster *player.Player, a catalog.Ability, target string) error {
	t, err := m.namedTarget(caster, target)
	if err != nil {
		return err
	}
	m.deliverEffect(caster, t, a, func(v *player.Player) {
		v.AddEffect(player.Effect{Kind: player.EffectEnergyBlock, Turns: 2})
		m.emit(EventAbility, fmt.Sprintf("🚫 %s cannot gain energy for 2 rounds", v.Name))
	})
	return nil
}

func handleSobrecarga(m *Match, caster *player.Player, a catalog.Ability, _ string) error {
	// Two ticks so the charge survives this turn's aging and pays out at
	// the next turn start.
	caster.AddEffect(player.Effect{Kind: player.EffectSobrecargaPending, Turns: 2})
	m.emit(EventAbility, fmt.Sprintf("🎲 %s overloads their core: the surge resolves next turn", caster.Name))
	return nil
}

func handleHilos(m *Match, caster *player.Player, a catalog.Ability, target string) error {
	t, err := m.namedTarget(caster, target)
	if err != nil {
		return err
	}
	dist := t.Position - caster.Position
	if dist < 0 {
		dist = -dist
	}
	if dist > 6 {
		return ErrInvalidTarget
	}
	if !m.canBeAffected(t, a) {
		return nil
	}
	caster.RemoveEffect(player.EffectLink)
	caster.AddEffect(player.Effect{Kind: player.EffectLink, Turns: 4, Target: t.Name})
	m.emit(EventAbility, fmt.Sprintf("🕸️ %s binds %s with spectral threads", caster.Name, t.Name))
	return nil
}

func handleTiron(m *Match, caster *player.Player, a catalog.Ability, _ string) error {
	name, ok := caster.LinkedTarget()
	if !ok {
		return ErrNotLinked
	}
	t := m.Find(name)
	if t == nil || !t.Active || t.Finished {
		return ErrInvalidTarget
	}
	if !m.canBeAffected(t, a) {
		return nil
	}
	dest := t.Position
	switch {
	case t.Position > caster.Position:
		dest = t.Position - 3
		if dest < caster.Position {
			dest = caster.Position
		}
	case t.Position < caster.Position:
		dest = t.Position + 3
		if dest > caster.Position {
			dest = caster.Position
		}
	}
	m.emit(EventAbility, fmt.Sprintf("⛓️ %s drags %s to cell %d", caster.Name, t.Name, dest))
	m.moveTo(t, dest)
	return nil
}

func handleControlTotal(m *Match, caster *player.Player, a catalog.Ability, _ string) error {
	name, ok := caster.LinkedTarget()
	if !ok {
		return ErrNotLinked
	}
	t := m.Find(name)
	if t == nil || !t.Active {
		return ErrInvalidTarget
	}
	m.deliverEffect(caster, t, a, func(v *player.Player) {
		controller := caster
		if v == caster {
			controller = t
		}
		die := m.rng.Intn(6) + 1
		v.RemoveEffect(player.EffectControlled)
		v.AddEffect(player.Effect{
			Kind:       player.EffectControlled,
			Turns:      1,
			Controller: controller.Name,
			ForcedDie:  die,
		})
		m.emit(EventAbility, fmt.Sprintf("🎮 %s seizes %s's next roll", controller.Name, v.Name))
	})
	return nil
}

func handleTraspaso(m *Match, caster *player.Player, a catalog.Ability, _ string) error {
	name, ok := caster.LinkedTarget()
	if !ok {
		return ErrNotLinked
	}
	caster.RemoveEffect(player.EffectPainTransfer)
	caster.AddEffect(player.Effect{Kind: player.EffectPainTransfer, Turns: 2, Target: name})
	m.emit(EventAbility, fmt.Sprintf("🔀 %s will redirect half of the next hit to %s", caster.Name, name))
	return nil
}
