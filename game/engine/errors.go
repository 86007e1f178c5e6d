package engine

import "errors"

// Per-action errors. They surface to the originating client only and leave
// the match untouched.
var (
	ErrMatchEnded        = errors.New("match already ended")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrAlreadyRolled     = errors.New("die already rolled this turn")
	ErrAbilityUsed       = errors.New("ability already used this turn")
	ErrResolvePending    = errors.New("resolve pending, acknowledge the move first")
	ErrNothingToResolve  = errors.New("no move awaiting resolution")
	ErrOnCooldown        = errors.New("ability on cooldown")
	ErrNotEnoughEnergy   = errors.New("not enough energy")
	ErrNotEnoughPM       = errors.New("not enough command points")
	ErrOfferPending      = errors.New("resolve your pending perk offer first")
	ErrNoOffer           = errors.New("no perk offer pending")
	ErrInvalidTarget     = errors.New("invalid target")
	ErrInterference      = errors.New("interferencia blocks all abilities")
	ErrUnknownPlayer     = errors.New("unknown player")
	ErrUnknownAbility    = errors.New("unknown ability slot")
	ErrUnknownPerk       = errors.New("perk not in the current offer")
	ErrUnknownPack       = errors.New("unknown perk pack tier")
	ErrPriceMismatch     = errors.New("offer price changed")
	ErrNotLinked         = errors.New("no linked target")
	ErrTileCellOccupied  = errors.New("cell already carries a special tile")
	ErrPerkRequirement   = errors.New("perk requires an ability you do not have")
)
