package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voltrace/voltrace/game/catalog"
	"github.com/voltrace/voltrace/game/player"
)

// newTestMatch builds a match on an empty board so moves only trigger what
// the test plants there.
func newTestMatch(t *testing.T, seats ...Seat) *Match {
	t.Helper()
	m, err := NewMatch(seats, nil, 42)
	require.NoError(t, err)
	m.Board.Tiles = map[int]catalog.Tile{}
	m.Board.Packs = nil
	return m
}

func twoPlayers(t *testing.T) *Match {
	return newTestMatch(t,
		Seat{Name: "alice", KitID: catalog.KitAsalto},
		Seat{Name: "bob", KitID: catalog.KitTitan},
	)
}

func TestNewMatchRejectsBadSeatCounts(t *testing.T) {
	_, err := NewMatch([]Seat{{Name: "solo"}}, nil, 1)
	require.Error(t, err)

	seats := make([]Seat, 6)
	for i := range seats {
		seats[i] = Seat{Name: string(rune('a' + i))}
	}
	_, err = NewMatch(seats, nil, 1)
	require.Error(t, err)
}

func TestRollRequiresTurn(t *testing.T) {
	m := twoPlayers(t)
	_, err := m.Roll("bob")
	require.ErrorIs(t, err, ErrNotYourTurn)

	_, err = m.Roll("nobody")
	require.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestRollThenResolveAdvancesTurn(t *testing.T) {
	m := twoPlayers(t)
	alice := m.Find("alice")
	alice.ForcedDie = 3

	res, err := m.Roll("alice")
	require.NoError(t, err)
	require.Equal(t, 3, res.Steps)
	require.Equal(t, 4, res.To)
	require.Equal(t, []int{3}, res.Dice)

	_, err = m.Roll("alice")
	require.ErrorIs(t, err, ErrResolvePending)

	rr, err := m.Resolve("alice")
	require.NoError(t, err)
	require.True(t, rr.TurnAdvanced)
	require.Equal(t, "bob", m.Current().Name)
	require.False(t, alice.Rolled)
}

func TestResolveRejectsWrongPlayer(t *testing.T) {
	m := twoPlayers(t)
	m.Find("alice").ForcedDie = 2
	_, err := m.Roll("alice")
	require.NoError(t, err)

	_, err = m.Resolve("bob")
	require.ErrorIs(t, err, ErrNotYourTurn)

	_, err = m.Resolve("")
	require.NoError(t, err)
}

func TestResolveWithoutPending(t *testing.T) {
	m := twoPlayers(t)
	_, err := m.Resolve("alice")
	require.ErrorIs(t, err, ErrNothingToResolve)
}

func TestPausedPlayerLosesTurn(t *testing.T) {
	m := twoPlayers(t)
	alice := m.Find("alice")
	alice.AddEffect(player.Effect{Kind: player.EffectPause, Turns: 1})

	res, err := m.Roll("alice")
	require.NoError(t, err)
	require.True(t, res.Paused)
	require.False(t, alice.HasEffect(player.EffectPause))
	require.Equal(t, "bob", m.Current().Name)
}

func TestForcedDieIntoFinishEndsMatch(t *testing.T) {
	m := twoPlayers(t)
	alice := m.Find("alice")
	alice.Position = 70
	alice.ForcedDie = 5

	res, err := m.Roll("alice")
	require.NoError(t, err)
	require.True(t, res.FinishReached)
	require.Equal(t, 75, res.To)

	rr, err := m.Resolve("alice")
	require.NoError(t, err)
	require.True(t, rr.Ended)
	require.True(t, alice.Finished)
	require.Equal(t, "alice", m.Winner)

	_, err = m.Roll("bob")
	require.ErrorIs(t, err, ErrMatchEnded)
}

func TestTrapLandingWithLastBreath(t *testing.T) {
	m := twoPlayers(t)
	alice := m.Find("alice")
	alice.Energy = 30
	alice.Perks[catalog.UltimoAliento] = true
	alice.ForcedDie = 4
	m.Board.Tiles[5] = catalog.Tile{Kind: catalog.TileTrap, Title: "Trampa", Value: -60}

	_, err := m.Roll("alice")
	require.NoError(t, err)
	_, err = m.Resolve("alice")
	require.NoError(t, err)

	require.True(t, alice.Active)
	require.True(t, alice.LastBreathUsed)
	require.Equal(t, 50, alice.Energy)
	// Shield armed for 3 rounds x 2 players, minus the same-turn tick.
	eff, ok := alice.Effect(player.EffectShield)
	require.True(t, ok)
	require.Equal(t, 5, eff.Turns)
}

func TestDoubleDiceAndTurboStack(t *testing.T) {
	m := twoPlayers(t)
	alice := m.Find("alice")
	alice.AddEffect(player.Effect{Kind: player.EffectDoubleDice, Turns: 1})
	alice.AddEffect(player.Effect{Kind: player.EffectTurbo, Turns: 1})

	res, err := m.Roll("alice")
	require.NoError(t, err)
	require.Len(t, res.Dice, 2)
	require.Equal(t, 2*(res.Dice[0]+res.Dice[1]), res.Steps)
}

func TestRoundWrapIncrementsRound(t *testing.T) {
	m := twoPlayers(t)
	require.Equal(t, 1, m.Round)

	for _, name := range []string{"alice", "bob"} {
		m.Find(name).ForcedDie = 2
		_, err := m.Roll(name)
		require.NoError(t, err)
		_, err = m.Resolve(name)
		require.NoError(t, err)
	}
	require.Equal(t, 2, m.Round)
	require.Equal(t, "alice", m.Current().Name)
}

func TestGlobalEventActivatesOnFifthRound(t *testing.T) {
	m := twoPlayers(t)
	m.Round = 4
	m.startRound()
	require.Equal(t, 5, m.Round)
	require.NotNil(t, m.Global)
	require.Positive(t, m.Global.RoundsRemaining)

	// The clock runs down and the event clears.
	active := m.Global.RoundsRemaining
	for i := 0; i < active; i++ {
		m.startRound()
	}
	require.Nil(t, m.Global)
}

func TestBountyOnLeaderAndClaim(t *testing.T) {
	m := twoPlayers(t)
	alice, bob := m.Find("alice"), m.Find("bob")
	m.Round = 5
	bob.Position = 40
	m.refreshBounty()
	require.True(t, bob.IsBounty)
	require.False(t, alice.IsBounty)

	before := alice.Energy
	m.applyDamage(bob, -30, alice)
	require.Equal(t, before+50, alice.Energy)
	require.Equal(t, 2, alice.PM)
	require.False(t, bob.IsBounty)
	require.True(t, alice.BountyClaimed)

	// Only the first hit pays out within a round.
	m.applyDamage(bob, -30, alice)
	require.Equal(t, before+50, alice.Energy)
}

func TestStartTurnAppliesEnergyLeak(t *testing.T) {
	m := twoPlayers(t)
	alice := m.Find("alice")
	alice.AddEffect(player.Effect{Kind: player.EffectEnergyLeak, Turns: 3, Damage: 25})

	before := alice.Energy
	m.startTurn(alice)
	require.Equal(t, before-25, alice.Energy)
}

func TestForceResolveDropsPlayerAndEndsTwoPlayerMatch(t *testing.T) {
	m := twoPlayers(t)
	res := m.ForceResolve("alice")
	require.True(t, res.Ended)
	require.False(t, m.Find("alice").Active)
	require.Equal(t, "bob", m.Winner)
}

func TestForceResolveMidTurnAppliesTile(t *testing.T) {
	m := twoPlayers(t)
	alice := m.Find("alice")
	alice.ForcedDie = 4
	m.Board.Tiles[5] = catalog.Tile{Kind: catalog.TileTrap, Title: "Trampa", Value: -60}

	_, err := m.Roll("alice")
	require.NoError(t, err)

	res := m.ForceResolve("alice")
	require.False(t, alice.Active)
	require.Equal(t, 540, alice.Energy)
	require.True(t, res.Ended)
}

func TestCollisionDamagesBothAndCountsForMover(t *testing.T) {
	m := newTestMatch(t,
		Seat{Name: "alice", KitID: catalog.KitAsalto},
		Seat{Name: "bob", KitID: catalog.KitTitan},
		Seat{Name: "carol", KitID: catalog.KitAzar},
	)
	alice, bob := m.Find("alice"), m.Find("bob")
	alice.Position, bob.Position = 10, 10

	m.checkCollision(alice, 10)
	require.Equal(t, 500, alice.Energy)
	require.Equal(t, 500, bob.Energy)
	require.Equal(t, 1, alice.CollisionsCaused)
	require.Zero(t, bob.CollisionsCaused)
}

func TestCollisionUnderCortocircuito(t *testing.T) {
	m := twoPlayers(t)
	alice, bob := m.Find("alice"), m.Find("bob")
	alice.Position, bob.Position = 20, 20
	m.Global = &GlobalEvent{Name: GlobalCortocircuito, RoundsRemaining: 2}

	m.checkCollision(alice, 20)
	require.Equal(t, 450, alice.Energy)
	require.Equal(t, 450, bob.Energy)
}

func TestPresenciaIntimidantePunishesMover(t *testing.T) {
	m := twoPlayers(t)
	alice, bob := m.Find("alice"), m.Find("bob")
	alice.Position, bob.Position = 20, 20
	bob.Perks[catalog.PresenciaIntimidante] = true

	m.checkCollision(alice, 20)
	require.Equal(t, 600-100-25, alice.Energy)
	require.Equal(t, 500, bob.Energy)
}

func TestShieldedCollisionAwardsPM(t *testing.T) {
	m := twoPlayers(t)
	alice, bob := m.Find("alice"), m.Find("bob")
	alice.Position, bob.Position = 20, 20
	bob.AddEffect(player.Effect{Kind: player.EffectShield, Turns: 2})

	m.checkCollision(alice, 20)
	require.Equal(t, 600, bob.Energy)
	require.Equal(t, 2, bob.PM)
	require.Equal(t, 500, alice.Energy)
}
