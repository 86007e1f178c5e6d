package player

// EffectKind is the closed set of ticking statuses a player can carry.
type EffectKind string

const (
	EffectPause             EffectKind = "pause"
	EffectShield            EffectKind = "shield"
	EffectBarrier           EffectKind = "barrier"
	EffectInvisible         EffectKind = "invisible"
	EffectPhase             EffectKind = "phase"
	EffectTurbo             EffectKind = "turbo"
	EffectMultiplier        EffectKind = "multiplier"
	EffectDoubleDice        EffectKind = "double_dice"
	EffectEnergyBlock       EffectKind = "energy_block"
	EffectSobrecargaPending EffectKind = "sobrecarga_pending"
	EffectEnergyLeak        EffectKind = "energy_leak"
	EffectLink              EffectKind = "link"
	EffectPainTransfer      EffectKind = "pain_transfer"
	EffectControlled        EffectKind = "controlled"
)

// Effect is one active status. Turns counts down at the owner's resolve step.
// Damage is the per-tick loss for energy_leak; Target names the bound peer
// for link and pain_transfer; Controller and ForcedDie belong to controlled.
type Effect struct {
	Kind       EffectKind `json:"kind"`
	Turns      int        `json:"turns"`
	Damage     int        `json:"damage,omitempty"`
	Target     string     `json:"target,omitempty"`
	Controller string     `json:"controller,omitempty"`
	ForcedDie  int        `json:"forced_die,omitempty"`
}

// HasEffect reports whether any effect of the given kind is active.
func (p *Player) HasEffect(kind EffectKind) bool {
	for i := range p.Effects {
		if p.Effects[i].Kind == kind {
			return true
		}
	}
	return false
}

// Effect returns the first active effect of the given kind.
func (p *Player) Effect(kind EffectKind) (Effect, bool) {
	for i := range p.Effects {
		if p.Effects[i].Kind == kind {
			return p.Effects[i], true
		}
	}
	return Effect{}, false
}

// AddEffect appends a status.
func (p *Player) AddEffect(e Effect) {
	p.Effects = append(p.Effects, e)
}

// RemoveEffect drops every effect of the given kind and reports whether any
// was present.
func (p *Player) RemoveEffect(kind EffectKind) bool {
	kept := p.Effects[:0]
	removed := false
	for _, e := range p.Effects {
		if e.Kind == kind {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	p.Effects = kept
	return removed
}

// ConsumeEffectTick decrements one tick from the first effect of the kind,
// dropping it when it runs out. Reports whether a tick was consumed.
func (p *Player) ConsumeEffectTick(kind EffectKind) bool {
	for i := range p.Effects {
		if p.Effects[i].Kind != kind {
			continue
		}
		p.Effects[i].Turns--
		if p.Effects[i].Turns <= 0 {
			p.Effects = append(p.Effects[:i], p.Effects[i+1:]...)
		}
		return true
	}
	return false
}

// TickEffects ages every effect by one turn and drops the expired ones.
// Barriers do not age: they persist until consumed by an interception.
func (p *Player) TickEffects() {
	kept := p.Effects[:0]
	for _, e := range p.Effects {
		if e.Kind != EffectBarrier {
			e.Turns--
		}
		if e.Turns > 0 || e.Kind == EffectBarrier {
			kept = append(kept, e)
		}
	}
	p.Effects = kept
}
