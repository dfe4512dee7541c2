package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/sandevgo/recall/internal/core"
)

// New builds the MCP server exposing the memory engine over stdio, so
// external agents can use the same session-scoped memory as the REPL.
func New(engine Engine, defaultUserID string) *mcpserver.MCPServer {
	server := mcpserver.NewMCPServer(core.RecallName, core.RecallVersion)
	handlers := &Handlers{engine: engine, defaultUserID: defaultUserID}

	server.AddTool(mcp.Tool{
		Name:        "memory_store",
		Description: "Store one user/assistant exchange as a retrievable memory.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "User message of the exchange",
				},
				"response": map[string]interface{}{
					"type":        "string",
					"description": "Assistant response of the exchange",
				},
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation session the memory belongs to",
				},
				"kind": map[string]interface{}{
					"type":        "string",
					"description": "Memory kind: conversation, web_search, document or summary (default: conversation)",
				},
			},
			Required: []string{"query", "session_id"},
		},
	}, handlers.Store)

	server.AddTool(mcp.Tool{
		Name:        "memory_search",
		Description: "Search stored memories by semantic similarity, re-ranked by recency. Scoped to one session when session_id is given.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Restrict results to this session",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results (default: 5)",
					"default":     5,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.Search)

	server.AddTool(mcp.Tool{
		Name:        "memory_list",
		Description: "List all stored memories of the user.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.List)

	server.AddTool(mcp.Tool{
		Name:        "memory_delete",
		Description: "Delete one memory by id, or every memory of a session.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"memory_id": map[string]interface{}{
					"type":        "string",
					"description": "Id of a single memory to delete",
				},
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Delete every memory of this session instead",
				},
			},
		},
	}, handlers.Delete)

	server.AddTool(mcp.Tool{
		Name:        "memory_stats",
		Description: "Report how many memories are stored, broken down by kind.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.Stats)

	return server
}
