package room

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/voltrace/voltrace/game/adapters"
)

// rematchQueue tracks who of the finished match wants another round.
type rematchQueue struct {
	originals []string
	requested map[string]bool
	timer     *time.Timer
	done      bool
}

func newRematchQueue(originals []string) *rematchQueue {
	return &rematchQueue{
		originals: originals,
		requested: make(map[string]bool),
	}
}

func (q *rematchQueue) isOriginal(name string) bool {
	for _, n := range q.originals {
		if n == name {
			return true
		}
	}
	return false
}

func (q *rematchQueue) allRequested() bool {
	return len(q.requested) == len(q.originals)
}

func (q *rematchQueue) stopTimer() {
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}

// RequestRematch registers a participant's wish for another race. The
// 45 second window arms at two requests and fires early when everyone
// answers.
func (r *Room) RequestRematch(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateTerminated || r.rematch == nil {
		return ErrRematchInProgress
	}
	q := r.rematch
	if q.done {
		return ErrRematchInProgress
	}
	if !q.isOriginal(name) {
		return ErrNotParticipant
	}
	if q.requested[name] {
		return nil
	}
	q.requested[name] = true
	r.broadcast("rematch_requested", map[string]any{
		"player": name,
		"count":  len(q.requested),
		"of":     len(q.originals),
	})

	if q.allRequested() {
		r.completeRematch()
		return nil
	}
	if len(q.requested) >= 2 && q.timer == nil {
		q.timer = time.AfterFunc(rematchTimeout, r.rematchExpired)
	}
	return nil
}

// LeaveRematchQueue withdraws a request. Below two requests the window
// disarms.
func (r *Room) LeaveRematchQueue(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateTerminated || r.rematch == nil || r.rematch.done {
		return ErrRematchInProgress
	}
	q := r.rematch
	if !q.requested[name] {
		return ErrNotParticipant
	}
	delete(q.requested, name)
	r.broadcast("rematch_left", map[string]any{"player": name, "count": len(q.requested)})
	if len(q.requested) < 2 {
		q.stopTimer()
	}
	return nil
}

// CancelRematch shuts the whole queue down.
func (r *Room) CancelRematch(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateTerminated || r.rematch == nil || r.rematch.done {
		return ErrRematchInProgress
	}
	if !r.rematch.isOriginal(name) {
		return ErrNotParticipant
	}
	r.cancelRematch(fmt.Sprintf("%s cancelled the rematch", name))
	return nil
}

// rematchDrop removes a disconnected participant from the queue and, when
// the remainder cannot carry a rematch, cancels it. Callers hold the lock.
func (r *Room) rematchDrop(name string) {
	q := r.rematch
	if q == nil || q.done {
		return
	}
	delete(q.requested, name)
	for i, n := range q.originals {
		if n == name {
			q.originals = append(q.originals[:i], q.originals[i+1:]...)
			break
		}
	}
	if len(q.originals) < 2 {
		r.cancelRematch("not enough players for a rematch")
		return
	}
	if len(q.requested) < 2 {
		q.stopTimer()
	} else if q.allRequested() {
		r.completeRematch()
	}
}

func (r *Room) rematchExpired() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rematch == nil || r.rematch.done {
		return
	}
	r.completeRematch()
}

// completeRematch filters requesters by live presence and forks the
// follow-up room. Callers hold the lock.
func (r *Room) completeRematch() {
	q := r.rematch
	q.done = true
	q.stopTimer()

	var ready []Seat
	for _, name := range q.originals {
		if !q.requested[name] {
			continue
		}
		if r.deps.Presence != nil && r.deps.Presence.Get(name) == adapters.StatusOffline {
			continue
		}
		kit := ""
		if i := r.seatIndex(name); i >= 0 {
			kit = r.seats[i].KitID
		}
		ready = append(ready, Seat{Name: name, KitID: kit})
	}
	if len(ready) < 2 || r.fork == nil {
		r.cancelRematch("not enough players for a rematch")
		return
	}
	newID, err := r.fork(ready)
	if err != nil {
		r.log.Warn("rematch fork failed", zap.Error(err))
		r.cancelRematch("could not open the rematch room")
		return
	}
	r.log.Info("rematch ready", zap.String("new_room", newID), zap.Int("players", len(ready)))
	for _, s := range ready {
		r.sink.ToPlayer(s.Name, "rematch_ready", map[string]any{"room_id": newID})
	}
	// The follow-up room carries the players now; empty this one so the
	// sweeper reclaims it.
	r.seats = nil
}

// cancelRematch closes the queue with a notice and empties the room so
// the sweeper reclaims it. Callers hold the lock.
func (r *Room) cancelRematch(reason string) {
	if r.rematch != nil {
		r.rematch.done = true
		r.rematch.stopTimer()
	}
	r.broadcast("rematch_cancelled", map[string]any{"reason": reason})
	r.seats = nil
}
