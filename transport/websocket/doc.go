// Package websocket provides the real-time transport for VoltRace.
//
// The websocket package implements:
//   - Persistent bidirectional channels, one per client
//   - Room-scoped broadcast and client-scoped delivery
//   - An authentication boundary ahead of all game actions
//   - Per-client inbound rate limiting
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model. The Hub owns every routing map
// and mutates them only from its Run loop; registration, identity and
// room membership changes arrive over channels. Each connection runs a
// read pump and a write pump. Inbound frames are interpreted by the
// Gateway, which resolves the addressed room and invokes the coordinator.
//
// Message Protocol:
//
// Frames are JSON envelopes:
//   - Inbound:  {"action": "roll_die", "room_id": "ab12cd34"}
//   - Outbound: {"event": "dice_rolled", "room_id": "ab12cd34", "data": {...}}
//
// A channel must authenticate before any other action:
//
//	{"action": "authenticate", "username": "alice"}
//
// Visibility:
//
// The Hub never widens an event's audience. Room events fan out to the
// room's clients only; direct events reach exactly the named player. The
// room coordinator decides which of the two a given engine event gets.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	websocket.NewGateway(hub, registry, presence, achievements, logger)
//	go hub.Run()
//	http.HandleFunc("/ws", hub.ServeWS)
//
// Concurrency:
//
// The hub loop serializes all routing changes. Client pumps run
// independently; a peer that stops draining its send buffer is dropped
// rather than allowed to block the rest of the room.
package websocket
