package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voltrace/voltrace/game/catalog"
	"github.com/voltrace/voltrace/game/player"
)

func TestSabotajePausesTargetAndCharges(t *testing.T) {
	m := twoPlayers(t)
	alice, bob := m.Find("alice"), m.Find("bob")

	res, err := m.UseAbility("alice", 1, "bob")
	require.NoError(t, err)
	require.Equal(t, catalog.Sabotaje, res.Ability)
	require.False(t, res.Pending)

	require.True(t, bob.HasEffect(player.EffectPause))
	require.Equal(t, 560, alice.Energy)
	require.Equal(t, 4, alice.Cooldowns[catalog.Sabotaje])
	require.True(t, alice.AbilityUsed)
	require.Equal(t, 1, alice.PM)
	require.Equal(t, 1, alice.AbilityUses)

	// An ability does not spend the roll.
	_, err = m.Roll("alice")
	require.NoError(t, err)
}

func TestSabotajeReflectedByBarrier(t *testing.T) {
	m := twoPlayers(t)
	alice, bob := m.Find("alice"), m.Find("bob")
	bob.AddEffect(player.Effect{Kind: player.EffectBarrier, Turns: 2})

	_, err := m.UseAbility("alice", 1, "bob")
	require.NoError(t, err)

	require.True(t, alice.HasEffect(player.EffectPause))
	require.False(t, bob.HasEffect(player.EffectPause))
	eff, ok := bob.Effect(player.EffectBarrier)
	require.True(t, ok)
	require.Equal(t, 1, eff.Turns)

	// Reflection still charges the caster.
	require.Equal(t, 560, alice.Energy)
	require.Equal(t, 4, alice.Cooldowns[catalog.Sabotaje])
	require.Equal(t, 1, alice.PM)
}

func TestShieldAbsorbsSabotajeAndIsConsumed(t *testing.T) {
	m := twoPlayers(t)
	bob := m.Find("bob")
	bob.AddEffect(player.Effect{Kind: player.EffectShield, Turns: 1})

	_, err := m.UseAbility("alice", 1, "bob")
	require.NoError(t, err)
	require.False(t, bob.HasEffect(player.EffectPause))
	require.False(t, bob.HasEffect(player.EffectShield))
}

func TestBombaSparesInvisibleTarget(t *testing.T) {
	m := twoPlayers(t)
	alice, bob := m.Find("alice"), m.Find("bob")
	bob.AddEffect(player.Effect{Kind: player.EffectInvisible, Turns: 2})

	_, err := m.UseAbility("alice", 2, "")
	require.NoError(t, err)
	require.Equal(t, 600, bob.Energy)
	require.Equal(t, 555, alice.Energy)
	require.Equal(t, 5, alice.Cooldowns[catalog.BombaEnergetica])
	require.Equal(t, 1, alice.PM)
}

func TestBombaHitsEveryoneInRadius(t *testing.T) {
	m := newTestMatch(t,
		Seat{Name: "alice", KitID: catalog.KitAsalto},
		Seat{Name: "bob", KitID: catalog.KitTitan},
		Seat{Name: "carol", KitID: catalog.KitAzar},
	)
	alice, bob, carol := m.Find("alice"), m.Find("bob"), m.Find("carol")
	alice.Position, bob.Position, carol.Position = 10, 12, 20

	_, err := m.UseAbility("alice", 2, "")
	require.NoError(t, err)
	require.Equal(t, 525, bob.Energy)
	require.Equal(t, 600, carol.Energy)
}

func TestRoboTakesFromRichest(t *testing.T) {
	m := newTestMatch(t,
		Seat{Name: "alice", KitID: catalog.KitAsalto},
		Seat{Name: "bob", KitID: catalog.KitTitan},
		Seat{Name: "carol", KitID: catalog.KitAzar},
	)
	alice, bob, carol := m.Find("alice"), m.Find("bob"), m.Find("carol")
	bob.Energy = 700

	_, err := m.UseAbility("alice", 3, "")
	require.NoError(t, err)

	stolen := 700 - bob.Energy
	require.GreaterOrEqual(t, stolen, 50)
	require.LessOrEqual(t, stolen, 150)
	require.Equal(t, 600, carol.Energy)
	require.Equal(t, 600+stolen-40, alice.Energy)
}

func TestRetrocesoPushesAndDesvioHalves(t *testing.T) {
	m := twoPlayers(t)
	bob := m.Find("bob")
	bob.Position = 20

	_, err := m.UseAbility("alice", 4, "bob")
	require.NoError(t, err)
	require.Equal(t, 15, bob.Position)
}

func TestRetrocesoAgainstDesvioCinetico(t *testing.T) {
	m := twoPlayers(t)
	bob := m.Find("bob")
	bob.Position = 20
	bob.Perks[catalog.DesvioCinetico] = true

	_, err := m.UseAbility("alice", 4, "bob")
	require.NoError(t, err)
	require.Equal(t, 17, bob.Position)
}

func TestTsunamiSweepsEveryoneBack(t *testing.T) {
	m := newTestMatch(t,
		Seat{Name: "alice", KitID: catalog.KitAzar},
		Seat{Name: "bob", KitID: catalog.KitTitan},
		Seat{Name: "carol", KitID: catalog.KitAsalto},
	)
	bob, carol := m.Find("bob"), m.Find("carol")
	bob.Position = 10
	carol.Position = 2

	_, err := m.UseAbility("alice", 4, "")
	require.NoError(t, err)
	require.Equal(t, 7, bob.Position)
	require.Equal(t, 1, carol.Position)
}

func TestCoheteKeepsTurnWithPendingResolve(t *testing.T) {
	m := newTestMatch(t,
		Seat{Name: "alice", KitID: catalog.KitVelocista},
		Seat{Name: "bob", KitID: catalog.KitTitan},
	)
	alice := m.Find("alice")

	res, err := m.UseAbility("alice", 1, "")
	require.NoError(t, err)
	require.True(t, res.Pending)
	require.GreaterOrEqual(t, alice.Position, 4)
	require.LessOrEqual(t, alice.Position, 8)

	rr, err := m.Resolve("alice")
	require.NoError(t, err)
	require.False(t, rr.TurnAdvanced)
	require.Equal(t, "alice", m.Current().Name)

	// The die is still available this turn.
	_, err = m.Roll("alice")
	require.NoError(t, err)
}

func TestReboteControladoNetSevenForward(t *testing.T) {
	m := newTestMatch(t,
		Seat{Name: "alice", KitID: catalog.KitVelocista},
		Seat{Name: "bob", KitID: catalog.KitTitan},
	)
	alice := m.Find("alice")
	alice.Position = 10

	res, err := m.UseAbility("alice", 2, "")
	require.NoError(t, err)
	require.True(t, res.Pending)
	require.Equal(t, 17, alice.Position)
}

func TestIntercambioSwapsPositions(t *testing.T) {
	m := newTestMatch(t,
		Seat{Name: "alice", KitID: catalog.KitVelocista},
		Seat{Name: "bob", KitID: catalog.KitTitan},
	)
	alice, bob := m.Find("alice"), m.Find("bob")
	bob.Position = 30

	res, err := m.UseAbility("alice", 3, "bob")
	require.NoError(t, err)
	require.True(t, res.Pending)
	require.Equal(t, 30, alice.Position)
	require.Equal(t, 1, bob.Position)
}

func TestDadoPerfectoStoresDie(t *testing.T) {
	m := newTestMatch(t,
		Seat{Name: "alice", KitID: catalog.KitAzar},
		Seat{Name: "bob", KitID: catalog.KitTitan},
	)
	alice := m.Find("alice")

	_, err := m.UseAbility("alice", 2, "7")
	require.ErrorIs(t, err, ErrInvalidTarget)
	require.Equal(t, 600, alice.Energy)

	_, err = m.UseAbility("alice", 2, "4")
	require.NoError(t, err)
	require.Equal(t, 4, alice.ForcedDie)

	res, err := m.Roll("alice")
	require.NoError(t, err)
	require.Equal(t, []int{4}, res.Dice)
}

func TestMinaPlacementAndOccupiedCell(t *testing.T) {
	m := newTestMatch(t,
		Seat{Name: "alice", KitID: catalog.KitFantasma},
		Seat{Name: "bob", KitID: catalog.KitTitan},
	)
	alice := m.Find("alice")
	alice.Position = 4

	_, err := m.UseAbility("alice", 4, "")
	require.NoError(t, err)
	tile, ok := m.Board.TileAt(4)
	require.True(t, ok)
	require.Equal(t, catalog.TileMine, tile.Kind)
	require.Equal(t, "alice", tile.PlacedBy)
	require.Equal(t, 1, alice.MinesPlaced)

	// A second mine on the same cell is rejected and not charged.
	alice.AbilityUsed = false
	alice.Cooldowns[catalog.MinaDeEnergia] = 0
	spent := alice.Energy
	_, err = m.UseAbility("alice", 4, "")
	require.ErrorIs(t, err, ErrTileCellOccupied)
	require.Equal(t, spent, alice.Energy)
}

func TestMineRewardsPlacer(t *testing.T) {
	m := twoPlayers(t)
	alice, bob := m.Find("alice"), m.Find("bob")
	alice.Perks[catalog.RecompensaDeMina] = true
	require.NoError(t, m.Board.PlaceMine(6, -60, "alice"))

	m.CurrentIdx = 1
	bob.ForcedDie = 5
	_, err := m.Roll("bob")
	require.NoError(t, err)
	_, err = m.Resolve("bob")
	require.NoError(t, err)

	require.Equal(t, 540, bob.Energy)
	require.Equal(t, 630, alice.Energy)
	_, ok := m.Board.TileAt(6)
	require.False(t, ok)
}

func TestHilosRequiresRangeAndLinks(t *testing.T) {
	m := newTestMatch(t,
		Seat{Name: "alice", KitID: catalog.KitTitiritero},
		Seat{Name: "bob", KitID: catalog.KitTitan},
	)
	alice, bob := m.Find("alice"), m.Find("bob")
	bob.Position = 10

	_, err := m.UseAbility("alice", 1, "bob")
	require.ErrorIs(t, err, ErrInvalidTarget)
	require.Equal(t, 600, alice.Energy)

	bob.Position = 5
	_, err = m.UseAbility("alice", 1, "bob")
	require.NoError(t, err)
	target, ok := alice.LinkedTarget()
	require.True(t, ok)
	require.Equal(t, "bob", target)
}

func TestTironPullsLinkedTarget(t *testing.T) {
	m := newTestMatch(t,
		Seat{Name: "alice", KitID: catalog.KitTitiritero},
		Seat{Name: "bob", KitID: catalog.KitTitan},
	)
	alice, bob := m.Find("alice"), m.Find("bob")

	_, err := m.UseAbility("alice", 2, "")
	require.ErrorIs(t, err, ErrNotLinked)

	alice.AddEffect(player.Effect{Kind: player.EffectLink, Turns: 4, Target: "bob"})
	bob.Position = 8
	_, err = m.UseAbility("alice", 2, "")
	require.NoError(t, err)
	require.Equal(t, 5, bob.Position)
}

func TestControlTotalForcesNextRoll(t *testing.T) {
	m := newTestMatch(t,
		Seat{Name: "alice", KitID: catalog.KitTitiritero},
		Seat{Name: "bob", KitID: catalog.KitTitan},
	)
	alice, bob := m.Find("alice"), m.Find("bob")
	alice.AddEffect(player.Effect{Kind: player.EffectLink, Turns: 4, Target: "bob"})

	_, err := m.UseAbility("alice", 3, "")
	require.NoError(t, err)
	eff, ok := bob.Effect(player.EffectControlled)
	require.True(t, ok)
	require.Equal(t, "alice", eff.Controller)
	require.GreaterOrEqual(t, eff.ForcedDie, 1)
	require.LessOrEqual(t, eff.ForcedDie, 6)

	m.advanceTurn()
	res, err := m.Roll("bob")
	require.NoError(t, err)
	require.Equal(t, []int{eff.ForcedDie}, res.Dice)
	require.False(t, bob.HasEffect(player.EffectControlled))
}

func TestTraspasoBindsPainTransfer(t *testing.T) {
	m := newTestMatch(t,
		Seat{Name: "alice", KitID: catalog.KitTitiritero},
		Seat{Name: "bob", KitID: catalog.KitTitan},
	)
	alice := m.Find("alice")
	alice.AddEffect(player.Effect{Kind: player.EffectLink, Turns: 4, Target: "bob"})

	_, err := m.UseAbility("alice", 4, "")
	require.NoError(t, err)
	eff, ok := alice.Effect(player.EffectPainTransfer)
	require.True(t, ok)
	require.Equal(t, "bob", eff.Target)
	require.Equal(t, 2, eff.Turns)
}

func TestSelfBuffAbilities(t *testing.T) {
	m := newTestMatch(t,
		Seat{Name: "alice", KitID: catalog.KitTitan},
		Seat{Name: "bob", KitID: catalog.KitAsalto},
	)
	alice := m.Find("alice")

	_, err := m.UseAbility("alice", 1, "")
	require.NoError(t, err)
	eff, ok := alice.Effect(player.EffectShield)
	require.True(t, ok)
	require.Equal(t, 3, eff.Turns)
}

func TestEscudoDuraderoExtendsShield(t *testing.T) {
	m := newTestMatch(t,
		Seat{Name: "alice", KitID: catalog.KitTitan},
		Seat{Name: "bob", KitID: catalog.KitAsalto},
	)
	alice := m.Find("alice")
	alice.Perks[catalog.EscudoDuradero] = true

	_, err := m.UseAbility("alice", 1, "")
	require.NoError(t, err)
	eff, _ := alice.Effect(player.EffectShield)
	require.Equal(t, 4, eff.Turns)
}

func TestCuracionBlockedByEnergyBlock(t *testing.T) {
	m := newTestMatch(t,
		Seat{Name: "alice", KitID: catalog.KitTitan},
		Seat{Name: "bob", KitID: catalog.KitAsalto},
	)
	alice := m.Find("alice")
	alice.Energy = 300
	alice.AddEffect(player.Effect{Kind: player.EffectEnergyBlock, Turns: 2})

	_, err := m.UseAbility("alice", 2, "")
	require.NoError(t, err)
	// The heal is nullified, the cost still lands.
	require.Equal(t, 260, alice.Energy)
}

func TestInvisibilidadIsPrivate(t *testing.T) {
	m := newTestMatch(t,
		Seat{Name: "alice", KitID: catalog.KitFantasma},
		Seat{Name: "bob", KitID: catalog.KitTitan},
	)
	res, err := m.UseAbility("alice", 1, "")
	require.NoError(t, err)
	require.True(t, res.Private)

	private := 0
	for _, ev := range res.Events {
		if ev.Scope == ScopeCaster {
			private++
			require.Equal(t, "alice", ev.Recipient)
		}
	}
	require.Positive(t, private)
}

func TestSobrecargaArmsPendingSurge(t *testing.T) {
	m := newTestMatch(t,
		Seat{Name: "alice", KitID: catalog.KitAzar},
		Seat{Name: "bob", KitID: catalog.KitTitan},
	)
	alice := m.Find("alice")

	_, err := m.UseAbility("alice", 3, "")
	require.NoError(t, err)
	require.Equal(t, 550, alice.Energy)
	require.True(t, alice.HasEffect(player.EffectSobrecargaPending))
}

func TestCaosMovesEveryActivePlayer(t *testing.T) {
	m := newTestMatch(t,
		Seat{Name: "alice", KitID: catalog.KitAzar},
		Seat{Name: "bob", KitID: catalog.KitTitan},
	)
	alice, bob := m.Find("alice"), m.Find("bob")
	alice.Position, bob.Position = 10, 20

	_, err := m.UseAbility("alice", 1, "")
	require.NoError(t, err)
	require.Greater(t, alice.Position, 10)
	require.LessOrEqual(t, alice.Position, 16)
	require.Greater(t, bob.Position, 20)
	require.LessOrEqual(t, bob.Position, 26)
}

func TestAbilityGates(t *testing.T) {
	m := twoPlayers(t)
	alice := m.Find("alice")

	m.Global = &GlobalEvent{Name: GlobalInterferencia, RoundsRemaining: 1}
	_, err := m.UseAbility("alice", 1, "bob")
	require.ErrorIs(t, err, ErrInterference)
	m.Global = nil

	alice.Offer = &player.PerkOffer{Tier: catalog.PackBasic, Cost: 4}
	_, err = m.UseAbility("alice", 1, "bob")
	require.ErrorIs(t, err, ErrOfferPending)
	alice.Offer = nil

	alice.Cooldowns[catalog.Sabotaje] = 2
	_, err = m.UseAbility("alice", 1, "bob")
	require.ErrorIs(t, err, ErrOnCooldown)
	alice.Cooldowns[catalog.Sabotaje] = 0

	alice.Energy = 40
	_, err = m.UseAbility("alice", 1, "bob")
	require.ErrorIs(t, err, ErrNotEnoughEnergy)
	alice.Energy = 600

	_, err = m.UseAbility("bob", 1, "alice")
	require.ErrorIs(t, err, ErrNotYourTurn)

	_, err = m.UseAbility("alice", 5, "bob")
	require.ErrorIs(t, err, ErrUnknownAbility)
}

func TestOneAbilityPerTurn(t *testing.T) {
	m := twoPlayers(t)
	_, err := m.UseAbility("alice", 1, "bob")
	require.NoError(t, err)

	_, err = m.UseAbility("alice", 4, "bob")
	require.ErrorIs(t, err, ErrAbilityUsed)
}

func TestAbilityAfterRollRejected(t *testing.T) {
	m := twoPlayers(t)
	m.Find("alice").ForcedDie = 2
	_, err := m.Roll("alice")
	require.NoError(t, err)

	_, err = m.UseAbility("alice", 1, "bob")
	require.ErrorIs(t, err, ErrAbilityUsed)
}
