// Package mcp provides a Model Context Protocol window into a running
// VoltRace server.
//
// The mcp package implements:
//   - An MCP server for AI and operator tooling
//   - Read-only tools over the REST API of a live server
//   - Stdio hosting for local MCP clients
//
// MCP Tools:
//
// The package exposes the following tools:
//   - server_stats: Health probe with room count and uptime
//   - list_rooms: List live rooms with state and seat counts
//   - room_state: Full snapshot of one room, including the match
//   - list_kits: The six ability kits
//   - list_perks: The perk catalog per tier
//
// The surface is deliberately read-only. Gameplay requires a persistent
// authenticated websocket channel with server-push, which the MCP
// request/response model does not carry; agents that want to play connect
// to /ws like any other client.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
