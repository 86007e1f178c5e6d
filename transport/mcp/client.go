package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"VoltRace",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`VoltRace - MCP Admin Interface

This is a thin client that proxies read-only requests to the REST API of a
running VoltRace server. It is an operator's window, not a way to play:
gameplay happens over the websocket channel.

AVAILABLE TOOLS:
- server_stats: Health probe with room count and uptime
- list_rooms: List live rooms with state and seat counts
- room_state: Full snapshot of one room, including the match if running
- list_kits: The six ability kits
- list_perks: The perk catalog per tier`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "server_stats",
		Description: "Get server health, live room count and uptime",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleServerStats)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List all live rooms with their state and seat count",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "room_state",
		Description: "Get the full snapshot of one room, including match state and log tail",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID to inspect",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleRoomState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_kits",
		Description: "List the six ability kits and their abilities",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListKits)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_perks",
		Description: "List the perk catalog grouped by tier",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPerks)
}

// GetMCPServer exposes the underlying server for stdio or HTTP hosting.
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(path string, result interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// pretty renders a tool result as indented JSON.
func pretty(v interface{}) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Tool handlers

func (c *Client) handleServerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var stats map[string]interface{}
	if err := c.apiCall("/api/health", &stats); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := pretty(stats)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Rooms []struct {
			ID      string `json:"id"`
			State   string `json:"state"`
			Players int    `json:"players"`
		} `json:"rooms"`
		Count int `json:"count"`
	}
	if err := c.apiCall("/api/rooms", &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Live rooms: %d\n", response.Count)
	for _, r := range response.Rooms {
		fmt.Fprintf(&sb, "- %s  state=%s  players=%d\n", r.ID, r.State, r.Players)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleRoomState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	roomID, _ := args["room_id"].(string)
	if roomID == "" {
		return mcp.NewToolResultError("room_id is required"), nil
	}

	var snapshot map[string]interface{}
	if err := c.apiCall("/api/rooms/"+roomID, &snapshot); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := pretty(snapshot)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListKits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var kits []struct {
		ID        string   `json:"id"`
		Title     string   `json:"title"`
		Abilities []string `json:"abilities"`
	}
	if err := c.apiCall("/api/catalog/kits", &kits); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	for _, k := range kits {
		fmt.Fprintf(&sb, "%s (%s): %s\n", k.Title, k.ID, strings.Join(k.Abilities, ", "))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleListPerks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var perks map[string]interface{}
	if err := c.apiCall("/api/catalog/perks", &perks); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := pretty(perks)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}
