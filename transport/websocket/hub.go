package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 2048

	// Inbound actions allowed per client: a small sustained rate with a
	// burst for UI spam.
	inboundRate  = 10
	inboundBurst = 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Client is one connected peer. Identity and room membership live in the
// hub's maps; the client itself only carries the pipes.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
}

type binding struct {
	client *Client
	name   string
	roomID string
	// setRoom distinguishes "move to roomID" (which may be empty, meaning
	// leave) from "leave room membership untouched".
	setRoom bool
}

type outboundMsg struct {
	roomID string
	name   string
	data   []byte
}

// Handler consumes inbound frames and connection drops. The Gateway
// implements it.
type Handler interface {
	Handle(c *Client, raw []byte)
	Gone(c *Client)
}

// Hub maintains the set of active clients and routes outbound traffic.
// All maps are owned by the Run loop.
type Hub struct {
	byRoom map[string]map[*Client]bool
	byName map[string]*Client
	meta   map[*Client]binding

	register   chan *Client
	unregister chan *Client
	bind       chan binding
	outbound   chan outboundMsg

	handler Handler
	log     *zap.Logger
}

// NewHub creates a hub. SetHandler must be called before serving.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		byRoom:     make(map[string]map[*Client]bool),
		byName:     make(map[string]*Client),
		meta:       make(map[*Client]binding),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		bind:       make(chan binding),
		outbound:   make(chan outboundMsg, 64),
		log:        log,
	}
}

// SetHandler wires the inbound side.
func (h *Hub) SetHandler(handler Handler) { h.handler = handler }

// Run starts the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.meta[client] = binding{client: client}

		case client := <-h.unregister:
			h.dropClient(client)

		case b := <-h.bind:
			h.applyBinding(b)

		case msg := <-h.outbound:
			h.deliver(msg)
		}
	}
}

// ServeWS upgrades an HTTP request and starts the client pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 256),
		limiter: rate.NewLimiter(rate.Limit(inboundRate), inboundBurst),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()

	client.enqueueEvent("connected", "", nil)
}

// Identify binds a client to an authenticated name.
func (h *Hub) Identify(c *Client, name string) {
	h.bind <- binding{client: c, name: name}
}

// JoinRoom moves a client into a room's fan-out set. An empty id leaves
// the current room.
func (h *Hub) JoinRoom(c *Client, roomID string) {
	h.bind <- binding{client: c, roomID: roomID, setRoom: true}
}

// Broadcast implements room.Sink for room-scoped events.
func (h *Hub) Broadcast(roomID, event string, payload any) {
	data, err := encode(event, roomID, payload)
	if err != nil {
		h.log.Error("encode broadcast", zap.String("event", event), zap.Error(err))
		return
	}
	h.outbound <- outboundMsg{roomID: roomID, data: data}
}

// ToPlayer implements room.Sink for client-scoped events.
func (h *Hub) ToPlayer(name, event string, payload any) {
	data, err := encode(event, "", payload)
	if err != nil {
		h.log.Error("encode direct", zap.String("event", event), zap.Error(err))
		return
	}
	h.outbound <- outboundMsg{name: name, data: data}
}

func (h *Hub) applyBinding(b binding) {
	old := h.meta[b.client]
	if b.name != "" && b.name != old.name {
		if old.name != "" {
			delete(h.byName, old.name)
		}
		h.byName[b.name] = b.client
		old.name = b.name
	}
	if b.setRoom && b.roomID != old.roomID {
		if old.roomID != "" {
			h.removeFromRoom(b.client, old.roomID)
		}
		if b.roomID != "" {
			if h.byRoom[b.roomID] == nil {
				h.byRoom[b.roomID] = make(map[*Client]bool)
			}
			h.byRoom[b.roomID][b.client] = true
		}
		old.roomID = b.roomID
	}
	old.client = b.client
	h.meta[b.client] = old
}

func (h *Hub) removeFromRoom(c *Client, roomID string) {
	if clients, ok := h.byRoom[roomID]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.byRoom, roomID)
		}
	}
}

func (h *Hub) dropClient(c *Client) {
	m, ok := h.meta[c]
	if !ok {
		return
	}
	if m.name != "" && h.byName[m.name] == c {
		delete(h.byName, m.name)
	}
	if m.roomID != "" {
		h.removeFromRoom(c, m.roomID)
	}
	delete(h.meta, c)
	// Closing the connection, not the channel, unwinds both pumps without
	// racing a concurrent enqueue.
	if c.conn != nil {
		c.conn.Close()
	}
	h.log.Debug("client dropped", zap.String("name", m.name), zap.String("room", m.roomID))
}

func (h *Hub) deliver(msg outboundMsg) {
	if msg.name != "" {
		if c, ok := h.byName[msg.name]; ok {
			h.push(c, msg.data)
		}
		return
	}
	for c := range h.byRoom[msg.roomID] {
		h.push(c, msg.data)
	}
}

func (h *Hub) push(c *Client, data []byte) {
	select {
	case c.send <- data:
	default:
		// The peer stopped draining; cut it loose.
		h.dropClient(c)
	}
}

// enqueueEvent sends one envelope straight to this client, bypassing the
// routing maps.
func (c *Client) enqueueEvent(event, roomID string, data any) {
	payload, err := encode(event, roomID, data)
	if err != nil {
		c.hub.log.Error("encode reply", zap.String("event", event), zap.Error(err))
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// readPump pumps inbound frames to the handler. One per connection.
func (c *Client) readPump() {
	defer func() {
		if c.hub.handler != nil {
			c.hub.handler.Gone(c)
		}
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("websocket read error", zap.Error(err))
			}
			break
		}
		if !c.limiter.Allow() {
			c.enqueueEvent("error", "", map[string]any{"message": "slow down"})
			continue
		}
		if c.hub.handler != nil {
			c.hub.handler.Handle(c, raw)
		}
	}
}

// writePump pumps outbound frames to the connection. One per connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
