package room

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voltrace/voltrace/game/adapters"
	"github.com/voltrace/voltrace/game/catalog"
)

type sinkMsg struct {
	Target  string
	Event   string
	Payload any
}

// sinkRecorder captures fan-out for assertions. Timer callbacks deliver
// from other goroutines, so access is locked.
type sinkRecorder struct {
	mu         sync.Mutex
	broadcasts []sinkMsg
	directs    []sinkMsg
}

func (s *sinkRecorder) Broadcast(roomID, event string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcasts = append(s.broadcasts, sinkMsg{Target: roomID, Event: event, Payload: payload})
}

func (s *sinkRecorder) ToPlayer(name, event string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.directs = append(s.directs, sinkMsg{Target: name, Event: event, Payload: payload})
}

func (s *sinkRecorder) broadcastCount(event string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.broadcasts {
		if m.Event == event {
			n++
		}
	}
	return n
}

func (s *sinkRecorder) directCount(name, event string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.directs {
		if m.Target == name && m.Event == event {
			n++
		}
	}
	return n
}

func (s *sinkRecorder) lastDirect(name, event string) (sinkMsg, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.directs) - 1; i >= 0; i-- {
		if s.directs[i].Target == name && s.directs[i].Event == event {
			return s.directs[i], true
		}
	}
	return sinkMsg{}, false
}

func newTestRoom(t *testing.T, deps Deps) (*Room, *sinkRecorder) {
	t.Helper()
	sink := &sinkRecorder{}
	deps.Sink = sink
	if deps.Seed == nil {
		deps.Seed = func() int64 { return 42 }
	}
	return New("ab12cd34", deps), sink
}

func TestJoinAssignsColorsAndLimits(t *testing.T) {
	r, _ := newTestRoom(t, Deps{})

	for i := 0; i < maxSeats; i++ {
		seat, err := r.Join(fmt.Sprintf("player%d", i), "")
		require.NoError(t, err)
		require.Equal(t, seatColors[i], seat.Color)
	}
	_, err := r.Join("overflow", "")
	require.ErrorIs(t, err, ErrRoomFull)

	r2, _ := newTestRoom(t, Deps{})
	_, err = r2.Join("alice", "")
	require.NoError(t, err)
	_, err = r2.Join("alice", "")
	require.ErrorIs(t, err, ErrNameTaken)

	_, err = r2.Join("bob", "no_such_kit")
	require.Error(t, err)
}

func TestLeaveLobby(t *testing.T) {
	r, _ := newTestRoom(t, Deps{})
	_, err := r.Join("alice", "")
	require.NoError(t, err)
	_, err = r.Join("bob", "")
	require.NoError(t, err)

	require.NoError(t, r.Leave("bob"))
	require.False(t, r.Has("bob"))
	require.ErrorIs(t, r.Leave("bob"), ErrNotParticipant)

	require.NoError(t, r.Leave("alice"))
	require.True(t, r.Empty())
}

func TestStartRequiresHostAndTwoPlayers(t *testing.T) {
	r, sink := newTestRoom(t, Deps{})
	_, err := r.Join("alice", catalog.KitAsalto)
	require.NoError(t, err)

	require.ErrorIs(t, r.Start("alice"), ErrNotEnoughPlayers)

	_, err = r.Join("bob", catalog.KitTitan)
	require.NoError(t, err)
	require.ErrorIs(t, r.Start("bob"), ErrNotHost)

	require.NoError(t, r.Start("alice"))
	require.Equal(t, StatePlaying, r.State())
	require.Equal(t, 1, sink.broadcastCount("game_started"))

	require.ErrorIs(t, r.Start("alice"), ErrMatchInProgress)
	_, err = r.Join("late", "")
	require.ErrorIs(t, err, ErrMatchInProgress)
}

func TestActionsRejectedBeforeStart(t *testing.T) {
	r, _ := newTestRoom(t, Deps{})
	_, err := r.Join("alice", "")
	require.NoError(t, err)

	_, err = r.Roll("alice")
	require.ErrorIs(t, err, ErrMatchNotStarted)
	_, err = r.ResolveAck("alice")
	require.ErrorIs(t, err, ErrMatchNotStarted)
	_, err = r.UseAbility("alice", 1, "")
	require.ErrorIs(t, err, ErrMatchNotStarted)
	require.ErrorIs(t, r.BuyPerkPack("alice", catalog.PackBasic), ErrMatchNotStarted)
	require.ErrorIs(t, r.Chat("ghost", "hi"), ErrNotParticipant)
}

func TestRollResolveRoundTrip(t *testing.T) {
	r, sink := newTestRoom(t, Deps{})
	_, err := r.Join("alice", catalog.KitAsalto)
	require.NoError(t, err)
	_, err = r.Join("bob", catalog.KitTitan)
	require.NoError(t, err)
	require.NoError(t, r.Start("alice"))

	_, err = r.Roll("bob")
	require.Error(t, err)

	res, err := r.Roll("alice")
	require.NoError(t, err)
	require.Equal(t, "alice", res.Player)
	require.Equal(t, 1, sink.broadcastCount("dice_rolled"))

	ack, err := r.ResolveAck("alice")
	require.NoError(t, err)
	require.True(t, ack.TurnAdvanced)
	require.GreaterOrEqual(t, sink.broadcastCount("state_update"), 1)

	view := r.View()
	require.NotNil(t, view.Match)
	require.Equal(t, "bob", view.Match.CurrentTurn)
}

func TestPrivateAbilityIsRedacted(t *testing.T) {
	r, sink := newTestRoom(t, Deps{})
	_, err := r.Join("alice", catalog.KitFantasma)
	require.NoError(t, err)
	_, err = r.Join("bob", catalog.KitTitan)
	require.NoError(t, err)
	require.NoError(t, r.Start("alice"))

	// Slot 1 of the fantasma kit is invisibilidad.
	res, err := r.UseAbility("alice", 1, "")
	require.NoError(t, err)
	require.True(t, res.Private)

	// The caster gets the full result once; the redacted marker goes only
	// to the other seats, never room-wide and never back to the caster.
	require.Equal(t, 1, sink.directCount("alice", "ability_used"))
	require.Equal(t, 1, sink.directCount("bob", "ability_used"))
	require.Equal(t, 0, sink.broadcastCount("ability_used"))
	require.GreaterOrEqual(t, sink.directCount("alice", "game_log"), 1)

	msg, ok := sink.lastDirect("bob", "ability_used")
	require.True(t, ok)
	redacted := msg.Payload.(map[string]any)
	require.Equal(t, true, redacted["hidden"])
	require.NotContains(t, redacted, "ability")
}

func TestPerkFlowGoesPrivate(t *testing.T) {
	r, sink := newTestRoom(t, Deps{})
	_, err := r.Join("alice", "")
	require.NoError(t, err)
	_, err = r.Join("bob", "")
	require.NoError(t, err)
	require.NoError(t, r.Start("alice"))

	prices, err := r.PerkPrices("alice")
	require.NoError(t, err)
	require.NotEmpty(t, prices)
	require.Equal(t, 1, sink.directCount("alice", "perk_prices"))

	r.match.Find("alice").PM = 10

	require.NoError(t, r.BuyPerkPack("alice", catalog.PackBasic))
	require.Equal(t, 1, sink.directCount("alice", "perk_offer"))
	require.Equal(t, 0, sink.directCount("bob", "perk_offer"))

	require.NoError(t, r.CancelOffer("alice"))
}

func TestTurnTimerRetiresIdlePlayer(t *testing.T) {
	r, sink := newTestRoom(t, Deps{TurnTimeout: 20 * time.Millisecond})
	_, err := r.Join("alice", "")
	require.NoError(t, err)
	_, err = r.Join("bob", "")
	require.NoError(t, err)
	require.NoError(t, r.Start("alice"))

	require.Eventually(t, func() bool {
		return r.State() == StateTerminated
	}, 2*time.Second, 5*time.Millisecond)

	require.GreaterOrEqual(t, sink.broadcastCount("turn_expired"), 1)
	require.Equal(t, 1, sink.broadcastCount("game_terminated"))
	require.Equal(t, "bob", r.View().Match.Winner)
}

func TestDisconnectBelowTwoFinalizesAndSettles(t *testing.T) {
	accounts := adapters.NewMemoryAccounts()
	achievements := adapters.NewMemoryAchievements()
	r, sink := newTestRoom(t, Deps{
		Accounts:     accounts,
		Achievements: achievements,
	})
	_, err := r.Join("alice", "")
	require.NoError(t, err)
	_, err = r.Join("bob", "")
	require.NoError(t, err)
	require.NoError(t, r.Start("alice"))

	r.Disconnect("bob")
	require.Equal(t, StateTerminated, r.State())
	require.Equal(t, "alice", r.View().Match.Winner)

	require.Eventually(t, func() bool {
		acc, err := accounts.Find(context.Background(), "alice")
		return err == nil && acc.Counters[adapters.EventGameFinished] == 1
	}, 2*time.Second, 10*time.Millisecond)

	acc, err := accounts.Find(context.Background(), "alice")
	require.NoError(t, err)
	require.Greater(t, acc.XP, 0)
	require.Equal(t, 1, acc.ConsecutiveWins)

	require.Eventually(t, func() bool {
		return sink.directCount("alice", "achievements_unlocked") >= 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestChatAppendsToLogTail(t *testing.T) {
	r, sink := newTestRoom(t, Deps{})
	_, err := r.Join("alice", "")
	require.NoError(t, err)

	require.NoError(t, r.Chat("alice", "gl hf"))
	require.Equal(t, 1, sink.broadcastCount("chat"))
	require.Contains(t, r.View().LogTail, "alice: gl hf")
}

func TestLogTailIsBounded(t *testing.T) {
	r, _ := newTestRoom(t, Deps{})
	_, err := r.Join("alice", "")
	require.NoError(t, err)

	for i := 0; i < logTailSize+25; i++ {
		require.NoError(t, r.Chat("alice", fmt.Sprintf("msg %d", i)))
	}
	tail := r.View().LogTail
	require.Len(t, tail, logTailSize)
	require.Equal(t, fmt.Sprintf("alice: msg %d", logTailSize+24), tail[len(tail)-1])
}

// endMatchByDisconnect drives a started two-seat room to termination.
func endMatchByDisconnect(t *testing.T, r *Room, leaver string) {
	t.Helper()
	r.Disconnect(leaver)
	require.Equal(t, StateTerminated, r.State())
}

func TestRematchRequiresTerminatedRoom(t *testing.T) {
	r, _ := newTestRoom(t, Deps{})
	_, err := r.Join("alice", "")
	require.NoError(t, err)
	require.ErrorIs(t, r.RequestRematch("alice"), ErrRematchInProgress)
}

func TestRematchForkCreatesNewRoom(t *testing.T) {
	sink := &sinkRecorder{}
	reg := NewRegistry(Deps{Sink: sink, Seed: func() int64 { return 42 }})

	r, err := reg.Create("alice", catalog.KitAsalto)
	require.NoError(t, err)
	_, err = r.Join("bob", catalog.KitTitan)
	require.NoError(t, err)
	require.NoError(t, r.Start("alice"))
	endMatchByDisconnect(t, r, "bob")

	require.NoError(t, r.RequestRematch("alice"))
	// Everyone answered, so the fork fires without waiting for the window.
	require.NoError(t, r.RequestRematch("bob"))

	msg, ok := sink.lastDirect("alice", "rematch_ready")
	require.True(t, ok)
	newID := msg.Payload.(map[string]any)["room_id"].(string)
	require.NotEqual(t, r.ID(), newID)
	require.Equal(t, 1, sink.directCount("bob", "rematch_ready"))

	require.Equal(t, 2, reg.Count())
	fresh, err := reg.Get(newID)
	require.NoError(t, err)
	require.Equal(t, StateWaiting, fresh.State())
	require.True(t, fresh.Has("alice"))
	require.True(t, fresh.Has("bob"))
	seats := fresh.Seats()
	require.Equal(t, catalog.KitAsalto, seats[0].KitID)
}

func TestRematchForkReleasesOriginalRoom(t *testing.T) {
	sink := &sinkRecorder{}
	reg := NewRegistry(Deps{Sink: sink, Seed: func() int64 { return 42 }})

	r, err := reg.Create("alice", "")
	require.NoError(t, err)
	_, err = r.Join("bob", "")
	require.NoError(t, err)
	require.NoError(t, r.Start("alice"))
	endMatchByDisconnect(t, r, "bob")

	require.NoError(t, r.RequestRematch("alice"))
	require.NoError(t, r.RequestRematch("bob"))

	msg, ok := sink.lastDirect("alice", "rematch_ready")
	require.True(t, ok)
	newID := msg.Payload.(map[string]any)["room_id"].(string)

	// The players moved on, so the old room is empty and the next sweep
	// reclaims it while the fresh one stays.
	require.True(t, r.Empty())
	require.Equal(t, 1, reg.Sweep())
	_, err = reg.Get(r.ID())
	require.ErrorIs(t, err, ErrRoomNotFound)
	_, err = reg.Get(newID)
	require.NoError(t, err)
	require.Equal(t, 1, reg.Count())
}

func TestRematchCancelledWhenPlayersOffline(t *testing.T) {
	presence := adapters.NewMemoryPresence()
	sink := &sinkRecorder{}
	reg := NewRegistry(Deps{Sink: sink, Presence: presence, Seed: func() int64 { return 42 }})

	r, err := reg.Create("alice", "")
	require.NoError(t, err)
	_, err = r.Join("bob", "")
	require.NoError(t, err)
	require.NoError(t, r.Start("alice"))
	endMatchByDisconnect(t, r, "bob")

	presence.Set("alice", adapters.StatusOnline, nil)
	// bob never heartbeats, so only one requester survives the filter.
	require.NoError(t, r.RequestRematch("alice"))
	require.NoError(t, r.RequestRematch("bob"))

	require.GreaterOrEqual(t, sink.broadcastCount("rematch_cancelled"), 1)
	require.Equal(t, 0, sink.directCount("alice", "rematch_ready"))
	require.Equal(t, 1, reg.Count())
	// Nobody is racing again here either, so the room frees its seats
	// for the sweeper.
	require.True(t, r.Empty())
}

func TestRematchQueueLeaveAndDrop(t *testing.T) {
	sink := &sinkRecorder{}
	reg := NewRegistry(Deps{Sink: sink, Seed: func() int64 { return 42 }})

	r, err := reg.Create("alice", "")
	require.NoError(t, err)
	_, err = r.Join("bob", "")
	require.NoError(t, err)
	_, err = r.Join("carol", "")
	require.NoError(t, err)
	require.NoError(t, r.Start("alice"))
	r.Disconnect("bob")
	require.Equal(t, StatePlaying, r.State())
	r.Disconnect("carol")
	require.Equal(t, StateTerminated, r.State())

	require.NoError(t, r.RequestRematch("alice"))
	require.NoError(t, r.RequestRematch("bob"))
	require.NoError(t, r.LeaveRematchQueue("bob"))
	require.GreaterOrEqual(t, sink.broadcastCount("rematch_left"), 1)

	// A disconnect that shrinks the originals below two cancels outright.
	r.Disconnect("bob")
	r.Disconnect("carol")
	require.GreaterOrEqual(t, sink.broadcastCount("rematch_cancelled"), 1)
	require.ErrorIs(t, r.RequestRematch("alice"), ErrRematchInProgress)
}

func TestRematchCancelByParticipant(t *testing.T) {
	sink := &sinkRecorder{}
	reg := NewRegistry(Deps{Sink: sink, Seed: func() int64 { return 42 }})

	r, err := reg.Create("alice", "")
	require.NoError(t, err)
	_, err = r.Join("bob", "")
	require.NoError(t, err)
	require.NoError(t, r.Start("alice"))
	endMatchByDisconnect(t, r, "bob")

	require.ErrorIs(t, r.CancelRematch("mallory"), ErrNotParticipant)
	require.NoError(t, r.CancelRematch("alice"))
	require.GreaterOrEqual(t, sink.broadcastCount("rematch_cancelled"), 1)
}

func TestRegistrySweepRemovesEmptyAndIgnoresLive(t *testing.T) {
	sink := &sinkRecorder{}
	reg := NewRegistry(Deps{Sink: sink})

	r, err := reg.Create("alice", "")
	require.NoError(t, err)
	busy, err := reg.Create("bob", "")
	require.NoError(t, err)

	require.NoError(t, r.Leave("alice"))
	require.Equal(t, 1, reg.Sweep())

	_, err = reg.Get(r.ID())
	require.ErrorIs(t, err, ErrRoomNotFound)
	got, err := reg.Get(busy.ID())
	require.NoError(t, err)
	require.Equal(t, busy, got)
}

func TestRegistryGetIsCaseInsensitive(t *testing.T) {
	reg := NewRegistry(Deps{Sink: &sinkRecorder{}})
	r, err := reg.Create("alice", "")
	require.NoError(t, err)

	got, err := reg.Get(strings.ToUpper(r.ID()))
	require.NoError(t, err)
	require.Equal(t, r, got)
}
