package room

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrRoomNotFound is returned when a room id resolves to nothing.
var ErrRoomNotFound = errors.New("room not found")

const (
	sweepInterval = 30 * time.Minute
	maxRoomAge    = 2 * time.Hour
)

// Registry owns every live room. Lookups are case-insensitive on the id.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	deps  Deps
	log   *zap.Logger
}

// NewRegistry builds an empty registry sharing one set of collaborators
// across rooms.
func NewRegistry(deps Deps) *Registry {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		rooms: make(map[string]*Room),
		deps:  deps,
		log:   log,
	}
}

// Create opens a fresh room and seats the host in it.
func (g *Registry) Create(hostName, kitID string) (*Room, error) {
	r := g.newRoom()
	if _, err := r.Join(hostName, kitID); err != nil {
		g.Delete(r.ID())
		return nil, err
	}
	g.log.Info("room created", zap.String("room", r.ID()), zap.String("host", hostName))
	return r, nil
}

// newRoom registers an empty room with a short unique id and wires the
// rematch fork back into the registry.
func (g *Registry) newRoom() *Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	var id string
	for {
		id = strings.ToLower(uuid.NewString()[:8])
		if _, taken := g.rooms[id]; !taken {
			break
		}
	}
	r := New(id, g.deps)
	r.fork = g.forkFrom
	g.rooms[id] = r
	return r
}

// forkFrom opens the follow-up room for a completed rematch queue and
// pre-seats the returning players.
func (g *Registry) forkFrom(seats []Seat) (string, error) {
	r := g.newRoom()
	for _, s := range seats {
		if _, err := r.Join(s.Name, s.KitID); err != nil {
			g.Delete(r.ID())
			return "", err
		}
	}
	g.log.Info("rematch room created", zap.String("room", r.ID()), zap.Int("players", len(seats)))
	return r.ID(), nil
}

// Get resolves a room id.
func (g *Registry) Get(id string) (*Room, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rooms[strings.ToLower(id)]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// Delete removes a room from the registry.
func (g *Registry) Delete(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.rooms, strings.ToLower(id))
}

// List returns every live room.
func (g *Registry) List() []*Room {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		out = append(out, r)
	}
	return out
}

// Count returns the number of live rooms.
func (g *Registry) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// Sweep retires rooms with no seats left and rooms past the age cap.
// It returns how many were removed. Rooms are inspected outside the
// registry lock because a room completing a rematch re-enters the
// registry.
func (g *Registry) Sweep() int {
	var stale []string
	for _, r := range g.List() {
		if r.Empty() || r.Age() > maxRoomAge {
			stale = append(stale, r.ID())
		}
	}
	g.mu.Lock()
	removed := 0
	for _, id := range stale {
		if _, ok := g.rooms[id]; ok {
			delete(g.rooms, id)
			removed++
		}
	}
	g.mu.Unlock()
	if removed > 0 {
		g.log.Info("swept rooms", zap.Int("removed", removed))
	}
	return removed
}

// RunSweeper runs Sweep on a fixed cadence until the context ends.
func (g *Registry) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Sweep()
		}
	}
}
