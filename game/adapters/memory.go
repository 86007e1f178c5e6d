package adapters

import (
	"context"
	"sync"
	"time"
)

// MemoryAccounts is the in-process AccountStore used when no database is
// configured. Accounts are created on first lookup.
type MemoryAccounts struct {
	mu       sync.Mutex
	accounts map[string]*Account
	nextID   int64
}

// NewMemoryAccounts builds an empty in-memory store.
func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{accounts: make(map[string]*Account), nextID: 1}
}

// Find returns the account for a name, creating a level-1 profile on first
// sight.
func (s *MemoryAccounts) Find(_ context.Context, name string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[name]; ok {
		return cloneAccount(a), nil
	}
	a := &Account{ID: s.nextID, Name: name, Level: 1, Counters: make(map[string]int)}
	s.nextID++
	s.accounts[name] = a
	return cloneAccount(a), nil
}

// Persist applies an update to the stored account.
func (s *MemoryAccounts) Persist(_ context.Context, account *Account, update AccountUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.accounts[account.Name]
	if !ok {
		stored = &Account{ID: s.nextID, Name: account.Name, Level: 1, Counters: make(map[string]int)}
		s.nextID++
		s.accounts[account.Name] = stored
	}
	stored.XP += update.XPDelta
	stored.Level += update.LevelDelta
	stored.ConsecutiveWins = update.ConsecutiveWins
	for k, v := range update.Counters {
		stored.Counters[k] += v
	}
	return nil
}

func cloneAccount(a *Account) *Account {
	out := *a
	out.Counters = make(map[string]int, len(a.Counters))
	for k, v := range a.Counters {
		out.Counters[k] = v
	}
	return &out
}

// memoryAchievement pairs a display record with its unlock predicate.
type memoryAchievement struct {
	display Achievement
	unlock  func(counters map[string]int, eventType string, data map[string]any) bool
}

// MemoryAchievements is a fixed in-process achievement table keyed by
// per-player counters it maintains itself.
type MemoryAchievements struct {
	mu       sync.Mutex
	counters map[string]map[string]int
	unlocked map[string]map[string]bool
	table    []memoryAchievement
}

// NewMemoryAchievements builds the default achievement table.
func NewMemoryAchievements() *MemoryAchievements {
	return &MemoryAchievements{
		counters: make(map[string]map[string]int),
		unlocked: make(map[string]map[string]bool),
		table: []memoryAchievement{
			{
				display: Achievement{InternalID: "first_race", Title: "Primera Carrera", Description: "Finish your first race", Symbol: "🏁"},
				unlock: func(c map[string]int, et string, _ map[string]any) bool {
					return et == EventGameFinished && c[EventGameFinished] >= 1
				},
			},
			{
				display: Achievement{InternalID: "first_win", Title: "Primera Victoria", Description: "Win a race", Symbol: "🏆"},
				unlock: func(c map[string]int, et string, data map[string]any) bool {
					won, _ := data["won"].(bool)
					return et == EventGameFinished && won
				},
			},
			{
				display: Achievement{InternalID: "tactician", Title: "Táctico", Description: "Use 25 abilities", Symbol: "⚔️"},
				unlock: func(c map[string]int, et string, _ map[string]any) bool {
					return et == EventAbilityUsed && c[EventAbilityUsed] >= 25
				},
			},
			{
				display: Achievement{InternalID: "high_roller", Title: "Tirador", Description: "Roll the die 100 times", Symbol: "🎲"},
				unlock: func(c map[string]int, et string, _ map[string]any) bool {
					return et == EventDiceRolled && c[EventDiceRolled] >= 100
				},
			},
			{
				display: Achievement{InternalID: "host", Title: "Anfitrión", Description: "Create 5 rooms", Symbol: "🏠"},
				unlock: func(c map[string]int, et string, _ map[string]any) bool {
					return et == EventRoomCreated && c[EventRoomCreated] >= 5
				},
			},
		},
	}
}

// Check records the event and returns any newly unlocked achievement ids.
func (m *MemoryAchievements) Check(_ context.Context, name, eventType string, eventData map[string]any) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.counters[name] == nil {
		m.counters[name] = make(map[string]int)
	}
	if m.unlocked[name] == nil {
		m.unlocked[name] = make(map[string]bool)
	}
	m.counters[name][eventType]++

	var out []string
	for _, a := range m.table {
		if m.unlocked[name][a.display.InternalID] {
			continue
		}
		if a.unlock(m.counters[name], eventType, eventData) {
			m.unlocked[name][a.display.InternalID] = true
			out = append(out, a.display.InternalID)
		}
	}
	return out, nil
}

// Info resolves an internal id to its display record.
func (m *MemoryAchievements) Info(internalID string) (Achievement, bool) {
	for _, a := range m.table {
		if a.display.InternalID == internalID {
			return a.display, true
		}
	}
	return Achievement{}, false
}

type presenceEntry struct {
	status string
	extra  map[string]string
	seen   time.Time
}

// MemoryPresence tracks player statuses with a freshness window.
type MemoryPresence struct {
	mu      sync.Mutex
	entries map[string]presenceEntry
	now     func() time.Time
}

// NewMemoryPresence builds an empty tracker.
func NewMemoryPresence() *MemoryPresence {
	return &MemoryPresence{entries: make(map[string]presenceEntry), now: time.Now}
}

// Set records a status observation.
func (p *MemoryPresence) Set(name, status string, extra map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[name] = presenceEntry{status: status, extra: extra, seen: p.now()}
}

// Get returns the current status; stale or missing observations read as
// offline.
func (p *MemoryPresence) Get(name string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[name]
	if !ok || e.status == StatusOffline {
		return StatusOffline
	}
	if p.now().Sub(e.seen) > PresenceWindow {
		return StatusOffline
	}
	return e.status
}
