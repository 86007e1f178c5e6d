package engine

import (
	"fmt"

	"github.com/voltrace/voltrace/game/catalog"
	"github.com/voltrace/voltrace/game/player"
)

// checkCollision damages everyone sharing the mover's cell. The mover is the
// attacker for bounty purposes; shielded or shadow-cloaked players shrug the
// hit off and bank 2 PM instead.
func (m *Match) checkCollision(mover *player.Player, cell int) {
	if !mover.Active || cell >= catalog.FinishCell || mover.HasEffect(player.EffectPhase) {
		return
	}
	others := m.othersAt(mover, cell)
	if len(others) == 0 {
		return
	}

	base := 100
	if m.globalActive(GlobalCortocircuito) {
		base = 150
		m.emit(EventGlobal, "🌎 Cortocircuito intensifies the collision")
	}
	m.emit(EventCollision, fmt.Sprintf("💥 Collision at cell %d", cell))
	mover.CollisionsCaused += len(others)

	// Intimidating presence on the stationary players punishes the mover.
	extra := 0
	for _, o := range others {
		if o.HasPerk(catalog.PresenciaIntimidante) {
			extra += 25
		}
	}

	m.collide(mover, base+extra, nil)
	for _, o := range others {
		protected := m.collide(o, base, mover)
		if !protected && o.Active && mover.Active && mover.HasPerk(catalog.DrenajeColision) {
			m.applyDamage(o, -50, mover)
			mover.AdjustEnergy(50, m)
			m.emit(EventCollision, fmt.Sprintf("🧲 Drenaje de Colisión: %s siphons 50 energy from %s", mover.Name, o.Name))
		}
	}
}

// collide applies collision damage to one participant, honoring their own
// mitigation and protections. Reports whether they were protected.
func (m *Match) collide(p *player.Player, dmg int, attacker *player.Player) bool {
	if !p.Active {
		return false
	}
	if p.HasEffect(player.EffectShield) {
		p.GainPM(2)
		m.emit(EventCollision, fmt.Sprintf("🛡️ %s's shield absorbs the crash: +2 PM", p.Name))
		return true
	}
	if p.HasPerk(catalog.SombraFugaz) && p.HasEffect(player.EffectInvisible) {
		p.GainPM(2)
		m.emit(EventCollision, fmt.Sprintf("👻 %s slips through the crash: +2 PM", p.Name))
		return true
	}
	if p.HasPerk(catalog.Amortiguacion) {
		dmg = dmg * 2 / 3
		m.emit(EventCollision, fmt.Sprintf("🧽 Amortiguación softens the hit on %s", p.Name))
	}
	lost := m.applyDamage(p, -dmg, attacker)
	m.emit(EventCollision, fmt.Sprintf("💥 %s loses %d energy", p.Name, -lost))
	return false
}
