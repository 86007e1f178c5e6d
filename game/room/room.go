// Package room coordinates lobbies and running matches. Every action from
// the transport layer funnels through a Room, which serializes access to
// the match engine, fans events out through the Sink, and drives the
// inactivity timer and rematch flow.
package room

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/voltrace/voltrace/game/adapters"
	"github.com/voltrace/voltrace/game/catalog"
	"github.com/voltrace/voltrace/game/engine"
)

var (
	ErrRoomFull          = errors.New("room is full")
	ErrNameTaken         = errors.New("name already taken in this room")
	ErrMatchInProgress   = errors.New("match already in progress")
	ErrMatchNotStarted   = errors.New("match has not started")
	ErrRoomTerminated    = errors.New("room is terminated")
	ErrNotHost           = errors.New("only the host can start the match")
	ErrNotEnoughPlayers  = errors.New("need at least 2 players")
	ErrNotParticipant    = errors.New("not a participant of this room")
	ErrRematchInProgress = errors.New("rematch queue only opens on a terminated room")
)

// Room lifecycle states.
const (
	StateWaiting    = "waiting"
	StatePlaying    = "playing"
	StateTerminated = "terminated"
)

// seatColors is the palette assigned to seats in join order.
var seatColors = []string{"#e74c3c", "#3498db", "#2ecc71", "#f1c40f", "#9b59b6"}

const (
	maxSeats       = 5
	logTailSize    = 50
	turnTimeout    = 90 * time.Second
	rematchTimeout = 45 * time.Second
	settleTimeout  = 5 * time.Second
)

// Sink is the outbound side of the transport. The gateway implements it;
// tests substitute a recorder.
type Sink interface {
	Broadcast(roomID, event string, payload any)
	ToPlayer(name, event string, payload any)
}

// Seat is one lobby slot.
type Seat struct {
	Name  string `json:"name"`
	KitID string `json:"kit_id"`
	Color string `json:"color"`
}

// Deps carries a room's collaborators. Accounts, Achievements and Presence
// may be nil, which disables settlement, unlock checks and the rematch
// presence filter respectively.
type Deps struct {
	Sink         Sink
	Logger       *zap.Logger
	Accounts     adapters.AccountStore
	Achievements adapters.AchievementChecker
	Presence     adapters.PresenceTracker

	// Seed feeds the match RNG. Defaults to the wall clock.
	Seed func() int64
	// TurnTimeout overrides the 90 second inactivity window, for tests.
	TurnTimeout time.Duration
	// Packs overrides the default energy pack content.
	Packs []catalog.EnergyPack
}

// Room is one lobby plus at most one running match.
type Room struct {
	mu    sync.Mutex
	id    string
	state string
	seats []Seat
	match *engine.Match

	createdAt  time.Time
	lastActive time.Time
	logTail    []string

	sink        Sink
	log         *zap.Logger
	deps        Deps
	turnTimeout time.Duration

	timer     *time.Timer
	timerSeq  int
	turnOwner string
	turnRound int

	rematch *rematchQueue
	// fork builds the follow-up room when a rematch completes. Wired by the
	// registry.
	fork func(seats []Seat) (string, error)
}

// New builds an empty waiting room. The registry is the usual caller.
func New(id string, deps Deps) *Room {
	if deps.Seed == nil {
		deps.Seed = func() int64 { return time.Now().UnixNano() }
	}
	tt := deps.TurnTimeout
	if tt <= 0 {
		tt = turnTimeout
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := time.Now()
	return &Room{
		id:          id,
		state:       StateWaiting,
		sink:        deps.Sink,
		log:         log.With(zap.String("room", id)),
		deps:        deps,
		turnTimeout: tt,
		createdAt:   now,
		lastActive:  now,
	}
}

// ID returns the room identifier.
func (r *Room) ID() string { return r.id }

// State returns the lifecycle state.
func (r *Room) State() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Seats returns a copy of the lobby seats.
func (r *Room) Seats() []Seat {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Seat, len(r.seats))
	copy(out, r.seats)
	return out
}

// Empty reports whether the room has no seats left.
func (r *Room) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seats) == 0
}

// Age returns how long ago the room was created.
func (r *Room) Age() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return time.Since(r.createdAt)
}

// Has reports whether name holds a seat.
func (r *Room) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seatIndex(name) >= 0
}

func (r *Room) seatIndex(name string) int {
	for i, s := range r.seats {
		if s.Name == name {
			return i
		}
	}
	return -1
}

func (r *Room) touch() { r.lastActive = time.Now() }

// Join adds a player to the lobby.
func (r *Room) Join(name, kitID string) (Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case StatePlaying:
		return Seat{}, ErrMatchInProgress
	case StateTerminated:
		return Seat{}, ErrRoomTerminated
	}
	if len(r.seats) >= maxSeats {
		return Seat{}, ErrRoomFull
	}
	if r.seatIndex(name) >= 0 {
		return Seat{}, ErrNameTaken
	}
	if kitID != "" {
		if _, err := catalog.KitByID(kitID); err != nil {
			return Seat{}, err
		}
	}
	seat := Seat{Name: name, KitID: kitID, Color: seatColors[len(r.seats)%len(seatColors)]}
	r.seats = append(r.seats, seat)
	r.touch()
	r.appendLog(fmt.Sprintf("%s joined the room", name))
	r.broadcast("player_joined", map[string]any{
		"player":   seat,
		"seats":    append([]Seat(nil), r.seats...),
		"log_tail": append([]string(nil), r.logTail...),
	})
	return seat, nil
}

// Leave removes a player from the lobby before the match starts. During a
// match, Disconnect is the path out.
func (r *Room) Leave(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateWaiting {
		return ErrMatchInProgress
	}
	i := r.seatIndex(name)
	if i < 0 {
		return ErrNotParticipant
	}
	r.seats = append(r.seats[:i], r.seats[i+1:]...)
	r.touch()
	r.broadcast("player_left", map[string]any{"player": name, "seats": append([]Seat(nil), r.seats...)})
	r.appendLog(fmt.Sprintf("%s left the room", name))
	return nil
}

// Start launches the match. Only the host, the first seat, may start.
func (r *Room) Start(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case StatePlaying:
		return ErrMatchInProgress
	case StateTerminated:
		return ErrRoomTerminated
	}
	if len(r.seats) == 0 || r.seats[0].Name != name {
		return ErrNotHost
	}
	if len(r.seats) < 2 {
		return ErrNotEnoughPlayers
	}
	seats := make([]engine.Seat, len(r.seats))
	for i, s := range r.seats {
		seats[i] = engine.Seat{Name: s.Name, KitID: s.KitID}
	}
	packs := r.deps.Packs
	if packs == nil {
		packs = catalog.DefaultEnergyPacks()
	}
	m, err := engine.NewMatch(seats, packs, r.deps.Seed())
	if err != nil {
		return err
	}
	r.match = m
	r.state = StatePlaying
	r.touch()
	r.log.Info("match started", zap.Int("players", len(seats)))
	r.broadcast("game_started", map[string]any{"state": m.Snapshot()})
	r.appendLog("the race begins")
	r.armTurnTimer()
	return nil
}

// Roll runs phase 1 for a player's turn.
func (r *Room) Roll(name string) (*engine.RollResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requirePlaying(name); err != nil {
		return nil, err
	}
	res, err := r.match.Roll(name)
	if err != nil {
		return nil, err
	}
	r.touch()
	r.broadcast("dice_rolled", res)
	r.fanOut(res.Events)
	r.afterAction()
	return res, nil
}

// ResolveAck runs phase 2 after the client finished its move animation.
func (r *Room) ResolveAck(name string) (*engine.ResolveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requirePlaying(name); err != nil {
		return nil, err
	}
	res, err := r.match.Resolve(name)
	if err != nil {
		return nil, err
	}
	r.touch()
	r.fanOut(res.Events)
	r.broadcast("state_update", res.State)
	r.afterAction()
	return res, nil
}

// UseAbility dispatches an ability. Private results go to the caster in
// full and to the room as a redacted marker.
func (r *Room) UseAbility(name string, slot int, target string) (*engine.AbilityResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requirePlaying(name); err != nil {
		return nil, err
	}
	res, err := r.match.UseAbility(name, slot, target)
	if err != nil {
		return nil, err
	}
	r.touch()
	if res.Private {
		r.sink.ToPlayer(name, "ability_used", res)
		r.fanToOthers(name, "ability_used", map[string]any{"player": name, "hidden": true})
	} else {
		r.broadcast("ability_used", res)
	}
	r.fanOut(res.Events)
	r.broadcast("state_update", r.match.Snapshot())
	r.afterAction()
	return res, nil
}

// PerkPrices quotes the pack prices for a player, sent privately.
func (r *Room) PerkPrices(name string) (map[catalog.PerkPackTier]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requirePlaying(name); err != nil {
		return nil, err
	}
	prices := r.match.PerkPrices()
	r.sink.ToPlayer(name, "perk_prices", prices)
	return prices, nil
}

// BuyPerkPack charges a pack and returns the offer, privately.
func (r *Room) BuyPerkPack(name string, tier catalog.PerkPackTier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requirePlaying(name); err != nil {
		return err
	}
	offer, err := r.match.BuyPerkPack(name, tier)
	if err != nil {
		return err
	}
	r.touch()
	r.fanOut(r.match.DrainEvents())
	r.sink.ToPlayer(name, "perk_offer", offer)
	return nil
}

// SelectPerk activates one option of the pending offer.
func (r *Room) SelectPerk(name, perkID string, expectedCost int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requirePlaying(name); err != nil {
		return err
	}
	activated, err := r.match.SelectPerk(name, perkID, expectedCost)
	if err != nil {
		return err
	}
	r.touch()
	r.fanOut(r.match.DrainEvents())
	r.sink.ToPlayer(name, "perk_selected", map[string]any{"perk": activated})
	r.broadcast("state_update", r.match.Snapshot())
	return nil
}

// CancelOffer refunds a pending offer.
func (r *Room) CancelOffer(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requirePlaying(name); err != nil {
		return err
	}
	if err := r.match.CancelOffer(name); err != nil {
		return err
	}
	r.touch()
	r.fanOut(r.match.DrainEvents())
	return nil
}

// Chat relays a lobby or table message to everyone.
func (r *Room) Chat(name, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seatIndex(name) < 0 {
		return ErrNotParticipant
	}
	r.touch()
	r.broadcast("chat", map[string]any{"from": name, "text": text})
	r.appendLog(fmt.Sprintf("%s: %s", name, text))
	return nil
}

// Disconnect handles a dropped client. Mid-match the player is retired
// through the force-resolve path so tile effects still land.
func (r *Room) Disconnect(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.seatIndex(name)
	if i < 0 {
		return
	}
	r.touch()
	switch r.state {
	case StateWaiting:
		r.seats = append(r.seats[:i], r.seats[i+1:]...)
		r.broadcast("player_left", map[string]any{"player": name, "seats": append([]Seat(nil), r.seats...)})
	case StatePlaying:
		r.retire(name)
	case StateTerminated:
		r.rematchDrop(name)
	}
}

// retire runs the force-resolve path for a leaving or timed-out player.
// Callers hold the lock.
func (r *Room) retire(name string) {
	res := r.match.ForceResolve(name)
	r.fanOut(res.Events)
	r.broadcast("state_update", res.State)
	r.appendLog(fmt.Sprintf("%s left the race", name))
	r.afterAction()
}

// Snapshot is the full room view a reconnecting client needs.
type Snapshot struct {
	ID      string        `json:"id"`
	State   string        `json:"state"`
	Seats   []Seat        `json:"seats"`
	Match   *engine.State `json:"match,omitempty"`
	LogTail []string      `json:"log_tail"`
}

// View captures the room for one client.
func (r *Room) View() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := Snapshot{
		ID:      r.id,
		State:   r.state,
		Seats:   append([]Seat(nil), r.seats...),
		LogTail: append([]string(nil), r.logTail...),
	}
	if r.match != nil {
		st := r.match.Snapshot()
		snap.Match = &st
	}
	return snap
}

func (r *Room) requirePlaying(name string) error {
	switch r.state {
	case StateWaiting:
		return ErrMatchNotStarted
	case StateTerminated:
		return ErrRoomTerminated
	}
	if r.seatIndex(name) < 0 {
		return ErrNotParticipant
	}
	return nil
}

// afterAction runs the shared tail of every match mutation: finish
// handling and timer upkeep. Callers hold the lock.
func (r *Room) afterAction() {
	if r.match.Ended {
		r.finishMatch()
		return
	}
	r.armTurnTimer()
}

// armTurnTimer (re)arms the inactivity timer against the current turn
// owner and round. Callers hold the lock.
func (r *Room) armTurnTimer() {
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timerSeq++
	seq := r.timerSeq
	r.turnOwner = r.match.Current().Name
	r.turnRound = r.match.Round
	owner, round := r.turnOwner, r.turnRound
	r.timer = time.AfterFunc(r.turnTimeout, func() {
		r.expireTurn(seq, owner, round)
	})
}

// expireTurn fires when a turn sat idle for the full window. The owner and
// round are re-checked because the timer races normal play.
func (r *Room) expireTurn(seq int, owner string, round int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StatePlaying || seq != r.timerSeq {
		return
	}
	if r.match.Ended || r.match.Current().Name != owner || r.match.Round != round {
		return
	}
	r.log.Info("turn expired", zap.String("player", owner))
	r.broadcast("turn_expired", map[string]any{"player": owner})
	r.appendLog(fmt.Sprintf("%s was removed for inactivity", owner))
	r.retire(owner)
}

// finishMatch freezes the room, publishes the ranking and settles
// accounts. Callers hold the lock.
func (r *Room) finishMatch() {
	if r.state != StatePlaying {
		return
	}
	r.state = StateTerminated
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	scores := r.match.FinalScores()
	winner := r.match.Winner
	r.log.Info("match ended", zap.String("winner", winner))
	r.broadcast("game_terminated", map[string]any{"winner": winner, "scores": scores})
	r.appendLog(fmt.Sprintf("race over, %s wins", winner))
	r.rematch = newRematchQueue(r.participantNames())
	go r.settle(scores, winner)
}

func (r *Room) participantNames() []string {
	names := make([]string, len(r.seats))
	for i, s := range r.seats {
		names[i] = s.Name
	}
	return names
}

// settle persists per-player progression and fires achievement checks.
// It runs without the room lock; everything it needs arrives as copies.
func (r *Room) settle(scores []engine.FinalScore, winner string) {
	if r.deps.Accounts == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()

	for _, sc := range scores {
		won := sc.Name == winner
		acc, err := r.deps.Accounts.Find(ctx, sc.Name)
		if err != nil {
			r.log.Warn("account lookup failed", zap.String("player", sc.Name), zap.Error(err))
			continue
		}
		update := adapters.AccountUpdate{
			XPDelta:  xpFor(sc, won),
			Counters: map[string]int{adapters.EventGameFinished: 1},
		}
		if won {
			update.ConsecutiveWins = acc.ConsecutiveWins + 1
		}
		newXP := acc.XP + update.XPDelta
		update.LevelDelta = levelFor(newXP) - acc.Level
		if err := r.deps.Accounts.Persist(ctx, acc, update); err != nil {
			r.log.Warn("account persist failed", zap.String("player", sc.Name), zap.Error(err))
		}
		if update.LevelDelta > 0 {
			r.sink.ToPlayer(sc.Name, "level_up", map[string]any{"level": acc.Level + update.LevelDelta})
		}
		r.checkAchievements(ctx, sc.Name, adapters.EventGameFinished, map[string]any{"won": won})
	}
}

// checkAchievements forwards one typed event and notifies the player of
// any unlocks.
func (r *Room) checkAchievements(ctx context.Context, name, eventType string, data map[string]any) {
	if r.deps.Achievements == nil {
		return
	}
	ids, err := r.deps.Achievements.Check(ctx, name, eventType, data)
	if err != nil {
		r.log.Warn("achievement check failed", zap.String("player", name), zap.Error(err))
		return
	}
	if len(ids) == 0 {
		return
	}
	unlocked := make([]adapters.Achievement, 0, len(ids))
	for _, id := range ids {
		if info, ok := r.deps.Achievements.Info(id); ok {
			unlocked = append(unlocked, info)
		}
	}
	r.sink.ToPlayer(name, "achievements_unlocked", map[string]any{"achievements": unlocked})
}

// xpFor converts a final score row into experience.
func xpFor(sc engine.FinalScore, won bool) int {
	xp := sc.Score / 10
	if won {
		xp += 50
	}
	if xp < 5 {
		xp = 5
	}
	return xp
}

// levelFor maps accumulated experience to a level, 500 XP apart.
func levelFor(xp int) int {
	return xp/500 + 1
}

// fanOut translates engine event scopes to transport sends. Caster-scoped
// events reach their recipient in full; the room only learns that an
// unseen ability happened.
func (r *Room) fanOut(events []engine.Event) {
	for _, ev := range events {
		switch ev.Scope {
		case engine.ScopeAll:
			r.broadcast("game_log", ev)
			r.appendLog(ev.Message)
		case engine.ScopeCaster:
			r.sink.ToPlayer(ev.Recipient, "game_log", ev)
			r.fanToOthers(ev.Recipient, "game_log", engine.Event{
				Type:    ev.Type,
				Message: fmt.Sprintf("✨ %s uses an unseen ability", ev.Recipient),
			})
		case engine.ScopePrivate:
			r.sink.ToPlayer(ev.Recipient, "game_log", ev)
		}
	}
}

// fanToOthers delivers a redacted stand-in to every seat but the one
// that already received the full event. Callers hold the lock.
func (r *Room) fanToOthers(except, event string, payload any) {
	if r.sink == nil {
		return
	}
	for _, s := range r.seats {
		if s.Name != except {
			r.sink.ToPlayer(s.Name, event, payload)
		}
	}
}

func (r *Room) broadcast(event string, payload any) {
	if r.sink != nil {
		r.sink.Broadcast(r.id, event, payload)
	}
}

func (r *Room) appendLog(line string) {
	r.logTail = append(r.logTail, line)
	if len(r.logTail) > logTailSize {
		r.logTail = r.logTail[len(r.logTail)-logTailSize:]
	}
}
