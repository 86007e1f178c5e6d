package engine

import (
	"fmt"

	"github.com/voltrace/voltrace/game/player"
)

// Global round-event names, consulted at the relevant decision points: pack
// multiplier, tile dispatch, perk pricing, collision damage, ability gate.
const (
	GlobalSobrecarga    = "Sobrecarga"
	GlobalApagon        = "Apagón"
	GlobalMercadoNegro  = "Mercado Negro"
	GlobalCortocircuito = "Cortocircuito"
	GlobalInterferencia = "Interferencia"
)

var globalEventPool = []GlobalEvent{
	{Name: GlobalSobrecarga, RoundsRemaining: 2},
	{Name: GlobalApagon, RoundsRemaining: 1},
	{Name: GlobalMercadoNegro, RoundsRemaining: 1},
	{Name: GlobalCortocircuito, RoundsRemaining: 2},
	{Name: GlobalInterferencia, RoundsRemaining: 1},
}

var globalEventBlurbs = map[string]string{
	GlobalSobrecarga:    "energy packs grant double",
	GlobalApagon:        "special tiles are offline",
	GlobalMercadoNegro:  "perk packs at half price",
	GlobalCortocircuito: "collisions hit for 150",
	GlobalInterferencia: "abilities are jammed",
}

func (m *Match) activateGlobalEvent() {
	picked := globalEventPool[m.rng.Intn(len(globalEventPool))]
	m.Global = &picked
	m.emit(EventGlobal, fmt.Sprintf("🌎 Global event: %s (%s)", picked.Name, globalEventBlurbs[picked.Name]))
}

// globalActive reports whether the named global event is running.
func (m *Match) globalActive(name string) bool {
	return m.Global != nil && m.Global.Name == name
}

// refreshBounty marks the current leader from round 5 onward. Exactly one
// active, unfinished player carries the flag.
func (m *Match) refreshBounty() {
	for _, p := range m.Players {
		p.IsBounty = false
	}
	if m.Round < 5 {
		return
	}
	var leader *player.Player
	for _, p := range m.ActivePlayers() {
		if p.Finished {
			continue
		}
		if leader == nil || p.Position > leader.Position {
			leader = p
		}
	}
	if leader != nil {
		leader.IsBounty = true
		m.emit(EventBounty, fmt.Sprintf("🎯 %s leads the race and carries the bounty", leader.Name))
	}
}

// claimBounty pays the first attacker to damage the bounty holder each
// round: +50 energy, +2 PM.
func (m *Match) claimBounty(attacker, target *player.Player) {
	if !target.IsBounty || attacker.BountyClaimed || !attacker.Active {
		return
	}
	attacker.BountyClaimed = true
	target.IsBounty = false
	attacker.AdjustEnergy(50, m)
	attacker.GainPM(2)
	m.emit(EventBounty, fmt.Sprintf("💰 %s claims the bounty on %s: +50 energy, +2 PM", attacker.Name, target.Name))
}
