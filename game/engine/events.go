package engine

// Scope declares who may see an outbound event. The transport gateway
// enforces it and must never widen a narrower scope.
type Scope string

const (
	// ScopeAll fans out to every client in the room.
	ScopeAll Scope = "all"
	// ScopeCaster sends the full payload to the caster only; the room gets
	// a redacted marker with the same turn implications.
	ScopeCaster Scope = "caster"
	// ScopePrivate goes to a single named player and nobody else.
	ScopePrivate Scope = "private"
)

// Event is one engine emission. Recipient is set for caster and private
// scopes.
type Event struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Scope     Scope          `json:"-"`
	Recipient string         `json:"-"`
	Data      map[string]any `json:"data,omitempty"`
}

// Event types emitted by the engine.
const (
	EventTurn        = "turn"
	EventTile        = "special_tile"
	EventPack        = "energy_pack"
	EventCollision   = "collision"
	EventAbility     = "ability"
	EventGlobal      = "game_event"
	EventBounty      = "bounty"
	EventElimination = "elimination"
	EventPerk        = "perk"
	EventMatchEnd    = "match_end"
)

func (m *Match) emit(typ, msg string) {
	m.events = append(m.events, Event{Type: typ, Message: msg, Scope: ScopeAll})
}

func (m *Match) emitCaster(recipient, typ, msg string) {
	m.events = append(m.events, Event{Type: typ, Message: msg, Scope: ScopeCaster, Recipient: recipient})
}

func (m *Match) emitTo(recipient, typ, msg string) {
	m.events = append(m.events, Event{Type: typ, Message: msg, Scope: ScopePrivate, Recipient: recipient})
}

// DrainEvents hands out events buffered by operations that do not carry
// them on a result, such as the perk shop.
func (m *Match) DrainEvents() []Event {
	return m.takeEvents()
}

// takeEvents drains the buffered events accumulated by one operation.
func (m *Match) takeEvents() []Event {
	evs := m.events
	m.events = nil
	return evs
}
