package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/voltrace/voltrace/game/adapters"
	"github.com/voltrace/voltrace/game/catalog"
	"github.com/voltrace/voltrace/game/room"
	"github.com/voltrace/voltrace/validate"
)

// session is what the gateway knows about one channel.
type session struct {
	name   string
	roomID string
}

// Gateway interprets inbound actions against the room registry. It
// enforces the authentication boundary: a channel without a name may only
// authenticate.
type Gateway struct {
	hub          *Hub
	rooms        *room.Registry
	presence     adapters.PresenceTracker
	achievements adapters.AchievementChecker
	log          *zap.Logger

	mu       sync.Mutex
	sessions map[*Client]*session
}

// NewGateway wires the inbound side of the hub.
func NewGateway(hub *Hub, rooms *room.Registry, presence adapters.PresenceTracker, achievements adapters.AchievementChecker, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Gateway{
		hub:          hub,
		rooms:        rooms,
		presence:     presence,
		achievements: achievements,
		log:          log,
		sessions:     make(map[*Client]*session),
	}
	hub.SetHandler(g)
	return g
}

func (g *Gateway) session(c *Client) *session {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[c]
	if !ok {
		s = &session{}
		g.sessions[c] = s
	}
	return s
}

func (g *Gateway) fail(c *Client, action, message string) {
	c.enqueueEvent("error", "", map[string]any{"action": action, "message": message})
}

// Handle implements Handler for one inbound frame.
func (g *Gateway) Handle(c *Client, raw []byte) {
	var msg Inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		g.fail(c, "", "malformed message")
		return
	}

	if msg.Action == ActionAuthenticate {
		g.authenticate(c, msg)
		return
	}

	s := g.session(c)
	if s.name == "" {
		g.fail(c, msg.Action, "authentication required")
		return
	}

	switch msg.Action {
	case ActionHeartbeat:
		g.heartbeat(s)
	case ActionCreateRoom:
		g.createRoom(c, s, msg)
	case ActionJoinRoom:
		g.joinRoom(c, s, msg)
	case ActionLeaveRoom:
		g.leaveRoom(c, s, msg)
	default:
		g.roomAction(c, s, msg)
	}
}

// Gone implements Handler for a dropped channel.
func (g *Gateway) Gone(c *Client) {
	g.mu.Lock()
	s, ok := g.sessions[c]
	delete(g.sessions, c)
	g.mu.Unlock()
	if !ok || s.name == "" {
		return
	}
	if s.roomID != "" {
		if r, err := g.rooms.Get(s.roomID); err == nil {
			r.Disconnect(s.name)
		}
	}
	if g.presence != nil {
		g.presence.Set(s.name, adapters.StatusOffline, nil)
	}
	g.log.Info("client gone", zap.String("player", s.name))
}

func (g *Gateway) authenticate(c *Client, msg Inbound) {
	if err := validate.Username(msg.Username); err != nil {
		g.fail(c, msg.Action, err.Error())
		return
	}
	s := g.session(c)
	s.name = msg.Username
	g.hub.Identify(c, msg.Username)
	if g.presence != nil {
		g.presence.Set(msg.Username, adapters.StatusOnline, nil)
	}
	g.fireAchievement(s.name, adapters.EventLogin, nil)
	c.enqueueEvent("authenticated", "", map[string]any{"username": msg.Username})
}

func (g *Gateway) heartbeat(s *session) {
	if g.presence == nil {
		return
	}
	status := adapters.StatusOnline
	var extra map[string]string
	if s.roomID != "" {
		status = adapters.StatusInGame
		extra = map[string]string{"room": s.roomID}
	}
	g.presence.Set(s.name, status, extra)
}

func (g *Gateway) createRoom(c *Client, s *session, msg Inbound) {
	if err := validate.KitID(msg.KitID); err != nil {
		g.fail(c, msg.Action, err.Error())
		return
	}
	r, err := g.rooms.Create(s.name, msg.KitID)
	if err != nil {
		g.fail(c, msg.Action, err.Error())
		return
	}
	s.roomID = r.ID()
	g.hub.JoinRoom(c, r.ID())
	if g.presence != nil {
		g.presence.Set(s.name, adapters.StatusInGame, map[string]string{"room": r.ID()})
	}
	g.fireAchievement(s.name, adapters.EventRoomCreated, nil)
	c.enqueueEvent("room_created", r.ID(), r.View())
}

func (g *Gateway) joinRoom(c *Client, s *session, msg Inbound) {
	if err := validate.RoomID(msg.RoomID); err != nil {
		g.fail(c, msg.Action, err.Error())
		return
	}
	r, err := g.rooms.Get(msg.RoomID)
	if err != nil {
		g.fail(c, msg.Action, err.Error())
		return
	}
	// Rejoining after a rematch fork: the seat already exists.
	if !r.Has(s.name) {
		if _, err := r.Join(s.name, msg.KitID); err != nil {
			g.fail(c, msg.Action, err.Error())
			return
		}
	}
	s.roomID = r.ID()
	g.hub.JoinRoom(c, r.ID())
	if g.presence != nil {
		g.presence.Set(s.name, adapters.StatusInGame, map[string]string{"room": r.ID()})
	}
	c.enqueueEvent("joined", r.ID(), r.View())
}

func (g *Gateway) leaveRoom(c *Client, s *session, msg Inbound) {
	r, ok := g.currentRoom(c, s, msg)
	if !ok {
		return
	}
	if err := r.Leave(s.name); err != nil {
		// Mid-match there is no polite leave; it becomes a disconnect.
		r.Disconnect(s.name)
	}
	s.roomID = ""
	g.hub.JoinRoom(c, "")
	if g.presence != nil {
		g.presence.Set(s.name, adapters.StatusOnline, nil)
	}
	c.enqueueEvent("left", r.ID(), nil)
}

// currentRoom resolves the room an action addresses, preferring the
// session's membership over the message field.
func (g *Gateway) currentRoom(c *Client, s *session, msg Inbound) (*room.Room, bool) {
	id := s.roomID
	if id == "" {
		id = msg.RoomID
	}
	if id == "" {
		g.fail(c, msg.Action, "not in a room")
		return nil, false
	}
	r, err := g.rooms.Get(id)
	if err != nil {
		g.fail(c, msg.Action, err.Error())
		return nil, false
	}
	return r, true
}

func (g *Gateway) roomAction(c *Client, s *session, msg Inbound) {
	r, ok := g.currentRoom(c, s, msg)
	if !ok {
		return
	}

	var err error
	switch msg.Action {
	case ActionStartGame:
		err = r.Start(s.name)

	case ActionRollDie:
		if _, err = r.Roll(s.name); err == nil {
			g.fireAchievement(s.name, adapters.EventDiceRolled, nil)
		}

	case ActionResolveAck:
		_, err = r.ResolveAck(s.name)

	case ActionUseAbility:
		var slot int
		if slot, err = validate.AbilitySlot(msg.AbilityIdx); err == nil {
			if _, err = r.UseAbility(s.name, slot, msg.Target); err == nil {
				g.fireAchievement(s.name, adapters.EventAbilityUsed, nil)
			}
		}

	case ActionBuyPerkPack:
		var tier catalog.PerkPackTier
		if tier, err = validate.PackTier(msg.Tier); err == nil {
			err = r.BuyPerkPack(s.name, tier)
		}

	case ActionSelectPerk:
		if err = validate.PerkID(msg.PerkID); err == nil {
			err = r.SelectPerk(s.name, msg.PerkID, msg.ExpectedCost)
		}

	case ActionCancelPerkOffer:
		err = r.CancelOffer(s.name)

	case ActionPerkPrices:
		_, err = r.PerkPrices(s.name)

	case ActionSendChat:
		var text string
		if text, err = validate.Chat(msg.Text); err == nil {
			err = r.Chat(s.name, text)
		}

	case ActionRequestRematch:
		err = r.RequestRematch(s.name)

	case ActionCancelRematch:
		err = r.CancelRematch(s.name)

	case ActionLeaveRematch:
		err = r.LeaveRematchQueue(s.name)

	default:
		g.fail(c, msg.Action, "unknown action")
		return
	}

	if err != nil {
		g.fail(c, msg.Action, err.Error())
	}
}

// fireAchievement forwards a typed event and pushes any unlocks back on
// the player's channel.
func (g *Gateway) fireAchievement(name, eventType string, data map[string]any) {
	if g.achievements == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ids, err := g.achievements.Check(ctx, name, eventType, data)
	if err != nil {
		g.log.Warn("achievement check failed", zap.String("player", name), zap.Error(err))
		return
	}
	if len(ids) == 0 {
		return
	}
	unlocked := make([]adapters.Achievement, 0, len(ids))
	for _, id := range ids {
		if info, ok := g.achievements.Info(id); ok {
			unlocked = append(unlocked, info)
		}
	}
	g.hub.ToPlayer(name, "achievements_unlocked", map[string]any{"achievements": unlocked})
}
