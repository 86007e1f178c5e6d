package player

import (
	"github.com/voltrace/voltrace/game/catalog"
)

// Roster gives the energy pipeline access to the rest of the match without
// importing the engine: peer lookup for pain transfer and the player count
// for rounds-based shield durations.
type Roster interface {
	Find(name string) *Player
	PlayerCount() int
}

// PerkOffer is a pending pack result awaiting select or cancel.
type PerkOffer struct {
	Tier    catalog.PerkPackTier `json:"tier"`
	Cost    int                  `json:"cost"`
	Options []string             `json:"options"`
}

// Player is the full per-player in-match state.
type Player struct {
	Name     string            `json:"name"`
	Position int               `json:"position"`
	Energy   int               `json:"energy"`
	PM       int               `json:"pm"`
	Active   bool              `json:"active"`
	KitID    string            `json:"kit_id"`
	Finished bool              `json:"finished"`

	Abilities []catalog.Ability `json:"abilities"`
	Cooldowns map[string]int    `json:"cooldowns"`
	Effects   []Effect          `json:"effects"`
	Perks     map[string]bool   `json:"perks"`

	// Per-turn flags, cleared at the resolve step.
	Rolled      bool `json:"rolled"`
	AbilityUsed bool `json:"ability_used"`

	// One-shot state.
	ForcedDie        int        `json:"forced_die,omitempty"`
	LastBreathUsed   bool       `json:"last_breath_used"`
	ConsecutiveSixes int        `json:"consecutive_sixes"`
	Offer            *PerkOffer `json:"offer,omitempty"`

	// Bounty bookkeeping.
	IsBounty      bool `json:"is_bounty"`
	BountyClaimed bool `json:"-"`

	// Match counters feeding scoring and achievements.
	CollisionsCaused int                       `json:"collisions_caused"`
	Treasures        int                       `json:"treasures"`
	MinesPlaced      int                       `json:"mines_placed"`
	AbilityUses      int                       `json:"ability_uses"`
	PacksCollected   int                       `json:"packs_collected"`
	VisitedTileKinds map[catalog.TileKind]bool `json:"-"`
}

// New builds a player at the start cell with the kit's four abilities.
func New(name, kitID string) (*Player, error) {
	abilities, err := catalog.KitAbilities(kitID)
	if err != nil {
		return nil, err
	}
	kit, _ := catalog.KitByID(kitID)
	cooldowns := make(map[string]int, len(abilities))
	for _, a := range abilities {
		cooldowns[a.Name] = 0
	}
	return &Player{
		Name:             name,
		Position:         catalog.StartCell,
		Energy:           catalog.InitialEnergy,
		Active:           true,
		KitID:            kit.ID,
		Abilities:        abilities,
		Cooldowns:        cooldowns,
		Perks:            make(map[string]bool),
		VisitedTileKinds: make(map[catalog.TileKind]bool),
	}, nil
}

// HasPerk reports perk ownership.
func (p *Player) HasPerk(id string) bool { return p.Perks[id] }

// AbilityAt returns the 1-based slot, matching the wire protocol.
func (p *Player) AbilityAt(idx int) (catalog.Ability, bool) {
	if idx < 1 || idx > len(p.Abilities) {
		return catalog.Ability{}, false
	}
	return p.Abilities[idx-1], true
}

// AdjustEnergy applies an energy delta through the full defense pipeline and
// returns the delta actually applied. Order: shield nullifies losses,
// aislamiento dampens them, pain transfer redirects half to the bound peer,
// energy block nullifies gains, then clamp at zero with the last-breath
// rescue before elimination.
func (p *Player) AdjustEnergy(delta int, roster Roster) int {
	if delta == 0 || !p.Active {
		return 0
	}

	if delta < 0 {
		if p.HasEffect(EffectShield) {
			return 0
		}
		if p.HasPerk(catalog.Aislamiento) {
			delta = delta * 80 / 100
		}
		if eff, ok := p.Effect(EffectPainTransfer); ok {
			half := delta / 2
			if roster != nil {
				if peer := roster.Find(eff.Target); peer != nil && peer.Active {
					peer.AdjustEnergy(half, roster)
				}
			}
			delta -= half
			p.RemoveEffect(EffectPainTransfer)
		}
	} else if p.HasEffect(EffectEnergyBlock) {
		return 0
	}

	before := p.Energy
	p.Energy += delta
	if p.Energy < 0 {
		p.Energy = 0
	}

	if p.Energy == 0 {
		if p.HasPerk(catalog.UltimoAliento) && !p.LastBreathUsed {
			p.LastBreathUsed = true
			p.Energy = 50
			p.AddEffect(Effect{Kind: EffectShield, Turns: p.lastBreathShieldTurns(roster)})
		} else {
			p.Active = false
		}
	}
	return p.Energy - before
}

// lastBreathShieldTurns scales the rescue shield to rounds: 3 rounds, one
// more with escudo_duradero, converted to turns by the player count.
func (p *Player) lastBreathShieldTurns(roster Roster) int {
	rounds := 3
	if p.HasPerk(catalog.EscudoDuradero) {
		rounds++
	}
	count := 1
	if roster != nil {
		if n := roster.PlayerCount(); n > 0 {
			count = n
		}
	}
	return rounds * count
}

// GainPM credits command points, honoring the acumulador_de_pm bonus, and
// returns the amount actually gained.
func (p *Player) GainPM(n int) int {
	if n <= 0 {
		return 0
	}
	if p.HasPerk(catalog.AcumuladorDePM) {
		n++
	}
	p.PM += n
	return n
}

// SpendPM debits command points if the balance allows it.
func (p *Player) SpendPM(n int) bool {
	if n < 0 || p.PM < n {
		return false
	}
	p.PM -= n
	return true
}

// TickCooldowns decrements every non-zero cooldown by one. Called exactly
// once at the owner's turn start.
func (p *Player) TickCooldowns() {
	for name, cd := range p.Cooldowns {
		if cd > 0 {
			p.Cooldowns[name] = cd - 1
		}
	}
}

// StartCooldown arms an ability's cooldown, applying the enfriamiento_rapido
// and per-ability discount perks, floored at one turn.
func (p *Player) StartCooldown(a catalog.Ability) {
	cd := a.BaseCooldown
	if p.HasPerk(catalog.EnfriamientoRapido) {
		cd--
	}
	if p.HasPerk(catalog.DiscountPerkID(a.Name)) {
		cd--
	}
	if cd < 1 {
		cd = 1
	}
	p.Cooldowns[a.Name] = cd
}

// ClearTurnFlags resets the per-turn gates after a resolve.
func (p *Player) ClearTurnFlags() {
	p.Rolled = false
	p.AbilityUsed = false
}

// LinkedTarget returns the peer bound by hilos_espectrales, if any.
func (p *Player) LinkedTarget() (string, bool) {
	if eff, ok := p.Effect(EffectLink); ok {
		return eff.Target, true
	}
	return "", false
}

// MarkVisited records a tile kind for the explorer bonus.
func (p *Player) MarkVisited(kind catalog.TileKind) {
	p.VisitedTileKinds[kind] = true
}
