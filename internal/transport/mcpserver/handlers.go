package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/internal/service/memory"
)

// Engine is the slice of the memory engine the MCP tools need.
type Engine interface {
	Store(ctx context.Context, in memory.StoreInput) (string, error)
	Search(ctx context.Context, query, userID string, limit int, sessionID string) ([]core.MemorySearchResult, error)
	GetUserMemories(ctx context.Context, userID string) ([]core.MemoryRecord, error)
	DeleteMemory(ctx context.Context, id string) (bool, error)
	DeleteSessionMemories(ctx context.Context, sessionID string) (int, error)
	GetStats(ctx context.Context, userID string) (*core.MemoryStats, error)
}

type Handlers struct {
	engine        Engine
	defaultUserID string
}

func (h *Handlers) Store(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id argument is required and must be a string"), nil
	}

	id, err := h.engine.Store(ctx, memory.StoreInput{
		UserID:    h.defaultUserID,
		SessionID: sessionID,
		Query:     query,
		Response:  request.GetString("response", ""),
		Kind:      core.MemoryKind(request.GetString("kind", string(core.KindConversation))),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if id == "" {
		return mcp.NewToolResultText("memory was not stored (memory subsystem unavailable)"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("stored memory %s", id)), nil
}

func (h *Handlers) Search(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	limit := request.GetInt("limit", 5)

	results, err := h.engine.Search(ctx, query, h.defaultUserID, limit, request.GetString("session_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(results)
}

func (h *Handlers) List(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := h.engine.GetUserMemories(ctx, h.defaultUserID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(records)
}

func (h *Handlers) Delete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	memoryID := request.GetString("memory_id", "")
	sessionID := request.GetString("session_id", "")

	switch {
	case memoryID != "" && sessionID != "":
		return mcp.NewToolResultError("pass either memory_id or session_id, not both"), nil

	case memoryID != "":
		deleted, err := h.engine.DeleteMemory(ctx, memoryID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !deleted {
			return mcp.NewToolResultText(fmt.Sprintf("memory %s not found", memoryID)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("deleted memory %s", memoryID)), nil

	case sessionID != "":
		n, err := h.engine.DeleteSessionMemories(ctx, sessionID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("deleted %d memories of session %s", n, sessionID)), nil

	default:
		return mcp.NewToolResultError("memory_id or session_id argument is required"), nil
	}
}

func (h *Handlers) Stats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.engine.GetStats(ctx, h.defaultUserID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(stats)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
