package engine

import (
	"fmt"

	"github.com/voltrace/voltrace/game/catalog"
	"github.com/voltrace/voltrace/game/player"
)

// PerkPrices quotes the current pack costs, halved under Mercado Negro.
func (m *Match) PerkPrices() map[catalog.PerkPackTier]int {
	out := make(map[catalog.PerkPackTier]int, 3)
	for _, tier := range []catalog.PerkPackTier{catalog.PackBasic, catalog.PackIntermediate, catalog.PackAdvanced} {
		comp, _ := catalog.PackByTier(tier)
		out[tier] = m.packCost(comp)
	}
	return out
}

func (m *Match) packCost(comp catalog.PackComposition) int {
	cost := comp.Cost
	if m.globalActive(GlobalMercadoNegro) {
		cost /= 2
		if cost < 1 {
			cost = 1
		}
	}
	return cost
}

// BuyPerkPack charges PM and draws an offer the player must answer before
// rolling or using abilities again. A still-open offer is returned as-is so
// the client can re-render it. Buying does not require holding the turn.
func (m *Match) BuyPerkPack(name string, tier catalog.PerkPackTier) (*player.PerkOffer, error) {
	if m.Ended {
		return nil, ErrMatchEnded
	}
	p := m.Find(name)
	if p == nil || !p.Active {
		return nil, ErrUnknownPlayer
	}
	if p.Offer != nil {
		return p.Offer, nil
	}
	comp, ok := catalog.PackByTier(tier)
	if !ok {
		return nil, ErrUnknownPack
	}
	cost := m.packCost(comp)
	if !p.SpendPM(cost) {
		return nil, ErrNotEnoughPM
	}
	m.emit(EventPerk, fmt.Sprintf("💰 %s spends %d PM on a %s pack", name, cost, tier))

	options := m.drawOffer(p, comp)
	p.Offer = &player.PerkOffer{Tier: tier, Cost: cost, Options: options}
	return p.Offer, nil
}

// drawOffer samples perk ids per the pack composition, skipping owned perks
// and perks whose required ability the kit lacks, then fills any shortfall
// from the other tiers.
func (m *Match) drawOffer(p *player.Player, comp catalog.PackComposition) []string {
	eligible := func(tier catalog.PerkTier, taken map[string]bool) []string {
		var out []string
		for _, perk := range catalog.PerksByTier(tier) {
			if taken[perk.ID] || p.HasPerk(perk.ID) {
				continue
			}
			if perk.ID == catalog.DescuentoHabilidad && !m.hasDiscountCandidate(p) {
				continue
			}
			if perk.RequiresAbility != "" && !kitHasAbility(p, perk.RequiresAbility) {
				continue
			}
			out = append(out, perk.ID)
		}
		return out
	}

	total := 0
	taken := make(map[string]bool)
	var options []string
	for _, tier := range []catalog.PerkTier{catalog.TierBasic, catalog.TierMid, catalog.TierHigh} {
		want := comp.Draws[tier]
		total += want
		pool := eligible(tier, taken)
		for want > 0 && len(pool) > 0 {
			i := m.rng.Intn(len(pool))
			options = append(options, pool[i])
			taken[pool[i]] = true
			pool = append(pool[:i], pool[i+1:]...)
			want--
		}
	}

	// Backfill from any tier when a band ran dry.
	for len(options) < total {
		var pool []string
		for _, tier := range []catalog.PerkTier{catalog.TierBasic, catalog.TierMid, catalog.TierHigh} {
			pool = append(pool, eligible(tier, taken)...)
		}
		if len(pool) == 0 {
			break
		}
		pick := pool[m.rng.Intn(len(pool))]
		options = append(options, pick)
		taken[pick] = true
	}
	return options
}

func kitHasAbility(p *player.Player, name string) bool {
	for _, a := range p.Abilities {
		if a.Name == name {
			return true
		}
	}
	return false
}

// hasDiscountCandidate reports whether any of the player's abilities can
// still benefit from a cooldown discount.
func (m *Match) hasDiscountCandidate(p *player.Player) bool {
	for _, a := range p.Abilities {
		if a.BaseCooldown > 1 && !p.HasPerk(catalog.DiscountPerkID(a.Name)) {
			return true
		}
	}
	return false
}

// SelectPerk answers a pending offer. The expected cost must match what the
// offer charged, guarding against a stale client acting on old prices. The
// generic cooldown-discount perk binds to a random eligible ability here.
func (m *Match) SelectPerk(name, perkID string, expectedCost int) (string, error) {
	if m.Ended {
		return "", ErrMatchEnded
	}
	p := m.Find(name)
	if p == nil || !p.Active {
		return "", ErrUnknownPlayer
	}
	if p.Offer == nil {
		return "", ErrNoOffer
	}
	if p.Offer.Cost != expectedCost {
		return "", ErrPriceMismatch
	}
	offered := false
	for _, id := range p.Offer.Options {
		if id == perkID {
			offered = true
			break
		}
	}
	if !offered {
		return "", ErrUnknownPerk
	}
	perk, ok := catalog.PerkByID(perkID)
	if !ok {
		return "", ErrUnknownPerk
	}

	activated := perkID
	title := perk.Title
	if perkID == catalog.DescuentoHabilidad {
		var candidates []catalog.Ability
		for _, a := range p.Abilities {
			if a.BaseCooldown > 1 && !p.HasPerk(catalog.DiscountPerkID(a.Name)) {
				candidates = append(candidates, a)
			}
		}
		if len(candidates) == 0 {
			// Nothing to bind the discount to; refund and close the offer.
			// A refund is not a gain, so it skips the acumulador bonus.
			p.PM += p.Offer.Cost
			p.Offer = nil
			m.emit(EventPerk, fmt.Sprintf("⚠️ %s has no ability left to discount, PM refunded", name))
			return "", ErrPerkRequirement
		}
		bound := candidates[m.rng.Intn(len(candidates))]
		activated = catalog.DiscountPerkID(bound.Name)
		title = fmt.Sprintf("%s (%s)", perk.Title, bound.Title)
	}

	p.Perks[activated] = true
	p.Offer = nil
	m.emit(EventPerk, fmt.Sprintf("⭐ %s activates %s", name, title))
	return activated, nil
}

// CancelOffer abandons a pending offer and refunds the PM paid.
func (m *Match) CancelOffer(name string) error {
	if m.Ended {
		return ErrMatchEnded
	}
	p := m.Find(name)
	if p == nil {
		return ErrUnknownPlayer
	}
	if p.Offer == nil {
		return ErrNoOffer
	}
	p.PM += p.Offer.Cost
	p.Offer = nil
	m.emit(EventPerk, fmt.Sprintf("↩️ %s cancels the perk offer, PM refunded", name))
	return nil
}
