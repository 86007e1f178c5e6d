// Package api provides the HTTP surface of the VoltRace server.
//
// The api package implements:
//   - A read-only REST view over the live room registry
//   - Catalog endpoints for kits and perks
//   - WebSocket upgrade handling
//   - A health probe
//
// Endpoints:
//
// Rooms:
//   - GET /api/rooms - List live rooms with state and seat counts
//   - GET /api/rooms/{id} - Full snapshot of one room
//
// Catalog:
//   - GET /api/catalog/kits - The six kits and their abilities
//   - GET /api/catalog/perks - Perks per tier and the pack tiers
//
// Operations:
//   - GET /api/health - Health probe with room count and uptime
//   - GET /ws - WebSocket upgrade; all gameplay flows over this channel
//
// All endpoints return JSON. Errors are returned as JSON with appropriate
// HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
//
// Gameplay is intentionally absent from the REST surface: actions arrive
// over the websocket channel and are documented in transport/websocket.
package api
