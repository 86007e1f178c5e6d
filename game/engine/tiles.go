package engine

import (
	"fmt"

	"github.com/voltrace/voltrace/game/catalog"
	"github.com/voltrace/voltrace/game/player"
)

// processPosition resolves everything under a player's cell: the special
// tile (which may move them again and recurse), the energy pack, and the
// collision check. Mirrors the resolve loop: it runs until the position
// stops changing.
func (m *Match) processPosition(p *player.Player, cell int) {
	if !p.Active || cell >= catalog.FinishCell {
		return
	}

	phased := p.HasEffect(player.EffectPhase)

	if tile, ok := m.Board.TileAt(cell); ok {
		switch {
		case phased && tile.Negative():
			m.emit(EventTile, fmt.Sprintf("👻 %s phases through %s", p.Name, tile.Title))
		case m.globalActive(GlobalApagon):
			m.emit(EventGlobal, fmt.Sprintf("🌎 Apagón: %s is offline", tile.Title))
		default:
			p.MarkVisited(tile.Kind)
			m.emit(EventTile, fmt.Sprintf("🎯 %s triggered %s", p.Name, tile.Title))
			m.dispatchTile(p, cell, tile)
			if !p.Active || p.Position != cell || p.Position >= catalog.FinishCell {
				return
			}
		}
	}

	if pack, ok := m.Board.PackAt(cell); ok {
		if phased && pack.Value < 0 {
			m.emit(EventPack, fmt.Sprintf("👻 %s ignores the negative pack", p.Name))
		} else {
			m.pickUpPack(p, pack)
			if !p.Active {
				return
			}
		}
	}

	m.checkCollision(p, cell)
}

func (m *Match) dispatchTile(p *player.Player, cell int, tile catalog.Tile) {
	switch tile.Kind {
	case catalog.TileTreasure:
		gain := m.boostGain(p, tile.Value, false)
		if gained := p.AdjustEnergy(gain, m); gained > 0 {
			p.Treasures++
			p.GainPM(2)
			m.emit(EventTile, fmt.Sprintf("💰 %s gains %d energy and 2 PM", p.Name, gained))
		} else {
			m.emit(EventTile, fmt.Sprintf("🚫 %s could not collect the treasure", p.Name))
		}

	case catalog.TileTrap:
		lost := m.applyDamage(p, tile.Value, nil)
		m.emit(EventTile, fmt.Sprintf("💀 %s loses %d energy", p.Name, -lost))
		if p.HasPerk(catalog.Chatarrero) {
			p.GainPM(1)
			m.emit(EventTile, fmt.Sprintf("⚙️ Chatarrero: %s +1 PM", p.Name))
		}

	case catalog.TileMine:
		m.Board.RemoveTile(cell)
		lost := m.applyDamage(p, tile.Value, m.Find(tile.PlacedBy))
		m.emit(EventTile, fmt.Sprintf("💣 %s stepped on %s's mine: %d energy", p.Name, tile.PlacedBy, lost))
		if placer := m.Find(tile.PlacedBy); placer != nil && placer.Active && placer.HasPerk(catalog.RecompensaDeMina) {
			reward := -lost / 2
			if reward > 0 {
				placer.AdjustEnergy(reward, m)
				m.emit(EventTile, fmt.Sprintf("💰 Recompensa de Mina: %s gains %d energy", placer.Name, reward))
			}
		}
		if p.HasPerk(catalog.Chatarrero) {
			p.GainPM(1)
		}

	case catalog.TileTeleport:
		adv := tile.Min + m.rng.Intn(tile.Max-tile.Min+1)
		next := p.Position + adv
		if next > catalog.FinishCell {
			next = catalog.FinishCell
		}
		p.Position = next
		m.emit(EventTile, fmt.Sprintf("🌀 %s teleports %d cells forward to %d", p.Name, adv, next))
		m.processPosition(p, next)

	case catalog.TileMultiplier:
		p.AddEffect(player.Effect{Kind: player.EffectMultiplier, Turns: 1})
		m.emit(EventTile, fmt.Sprintf("×2 %s's next energy gain doubles", p.Name))

	case catalog.TilePauseToll:
		p.AddEffect(player.Effect{Kind: player.EffectPause, Turns: 1})
		m.emit(EventTile, fmt.Sprintf("⏸️ %s loses the next turn", p.Name))
		if tile.EnergyToll != 0 {
			m.applyDamage(p, -tile.EnergyToll, nil)
		}
		if tile.PMToll != 0 {
			p.SpendPM(tile.PMToll)
		}

	case catalog.TileTurbo:
		p.AddEffect(player.Effect{Kind: player.EffectTurbo, Turns: 1})
		m.emit(EventTile, fmt.Sprintf("⚡ %s's next move doubles", p.Name))

	case catalog.TileDrain:
		drain := p.Energy * tile.Percent / 100
		if drain > 0 {
			lost := m.applyDamage(p, -drain, nil)
			m.emit(EventTile, fmt.Sprintf("🧛 %s drained for %d energy (%d%%)", p.Name, -lost, tile.Percent))
		}

	case catalog.TileSwap:
		others := m.othersFor(p)
		if len(others) == 0 {
			m.emit(EventTile, "🔄 Nobody to swap with")
			return
		}
		other := others[m.rng.Intn(len(others))]
		p.Position, other.Position = other.Position, p.Position
		m.emit(EventTile, fmt.Sprintf("🔄 %s swaps positions with %s", p.Name, other.Name))

	case catalog.TileRebound:
		back := tile.Min + m.rng.Intn(tile.Max-tile.Min+1)
		next := p.Position - back
		if next < catalog.StartCell {
			next = catalog.StartCell
		}
		if next != p.Position {
			p.Position = next
			m.emit(EventTile, fmt.Sprintf("↩️ %s rebounds %d cells back to %d", p.Name, back, next))
			m.processPosition(p, next)
		}

	case catalog.TileBlackHole:
		next := p.Position - tile.Back
		if next < catalog.StartCell {
			next = catalog.StartCell
		}
		if next != p.Position {
			p.Position = next
			m.emit(EventTile, fmt.Sprintf("⚫ Black hole drags %s back to %d", p.Name, next))
			m.processPosition(p, next)
		}

	case catalog.TilePMWell:
		p.GainPM(3)
		m.emit(EventTile, fmt.Sprintf("⭐ %s gains 3 PM", p.Name))

	case catalog.TileMagnet:
		m.emit(EventTile, fmt.Sprintf("🧲 %s pulls everyone %d cells closer", p.Name, tile.Pull))
		for _, o := range m.othersFor(p) {
			next := o.Position
			if o.Position < p.Position {
				next = o.Position + tile.Pull
				if next > p.Position {
					next = p.Position
				}
			} else if o.Position > p.Position {
				next = o.Position - tile.Pull
				if next < p.Position {
					next = p.Position
				}
			}
			if next != o.Position {
				o.Position = next
				m.emit(EventTile, fmt.Sprintf("🧲 %s is pulled to %d", o.Name, next))
				m.processPosition(o, next)
			}
		}

	case catalog.TileScrapExchange:
		lost := m.applyDamage(p, tile.Value, nil)
		p.GainPM(3)
		m.emit(EventTile, fmt.Sprintf("⚙️ %s trades %d energy for 3 PM", p.Name, -lost))
	}
}

// pickUpPack consumes the pack under the player, applying the gain boosts
// for positive packs and the chatarrero consolation for negative ones.
func (m *Match) pickUpPack(p *player.Player, pack *catalog.EnergyPack) {
	value := m.Board.ConsumePack(pack)
	if value > 0 {
		gain := m.boostGain(p, value, true)
		if gained := p.AdjustEnergy(gain, m); gained > 0 {
			p.PacksCollected++
			p.GainPM(1)
			m.emit(EventPack, fmt.Sprintf("🔋 %s picks up %s: +%d energy", p.Name, pack.Name, gained))
		} else {
			m.emit(EventPack, fmt.Sprintf("🚫 %s could not absorb %s", p.Name, pack.Name))
		}
		return
	}

	lost := m.applyDamage(p, value, nil)
	m.emit(EventPack, fmt.Sprintf("⚠️ %s steps on %s: %d energy", p.Name, pack.Name, lost))
	if p.HasPerk(catalog.Chatarrero) {
		p.GainPM(1)
		m.emit(EventPack, fmt.Sprintf("⚙️ Chatarrero: %s +1 PM", p.Name))
	}
}

// boostGain applies the positive-gain modifiers: the one-shot multiplier
// effect, the eficiencia_energetica perk, and (packs only) the Sobrecarga
// global event.
func (m *Match) boostGain(p *player.Player, value int, isPack bool) int {
	if value <= 0 {
		return value
	}
	if isPack && m.globalActive(GlobalSobrecarga) {
		value *= 2
		m.emit(EventGlobal, "🌎 Sobrecarga doubles the pack")
	}
	if p.HasEffect(player.EffectMultiplier) {
		p.RemoveEffect(player.EffectMultiplier)
		value *= 2
		m.emit(EventPack, fmt.Sprintf("×2 Amplificador doubles %s's gain", p.Name))
	}
	if p.HasPerk(catalog.EficienciaEnergetica) {
		value = value * 120 / 100
	}
	return value
}

// othersFor lists the active players other than p.
func (m *Match) othersFor(p *player.Player) []*player.Player {
	var out []*player.Player
	for _, o := range m.Players {
		if o != p && o.Active {
			out = append(out, o)
		}
	}
	return out
}
