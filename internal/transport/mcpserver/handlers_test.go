package mcpserver

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/internal/service/memory"
)

type stubEngine struct {
	storeIn   *memory.StoreInput
	searchFor string
	deleted   []string
}

func (s *stubEngine) Store(_ context.Context, in memory.StoreInput) (string, error) {
	s.storeIn = &in
	return "m1", nil
}

func (s *stubEngine) Search(_ context.Context, query, _ string, _ int, _ string) ([]core.MemorySearchResult, error) {
	s.searchFor = query
	return []core.MemorySearchResult{}, nil
}

func (s *stubEngine) GetUserMemories(_ context.Context, _ string) ([]core.MemoryRecord, error) {
	return nil, nil
}

func (s *stubEngine) DeleteMemory(_ context.Context, id string) (bool, error) {
	s.deleted = append(s.deleted, id)
	return true, nil
}

func (s *stubEngine) DeleteSessionMemories(_ context.Context, sessionID string) (int, error) {
	s.deleted = append(s.deleted, "session:"+sessionID)
	return 3, nil
}

func (s *stubEngine) GetStats(_ context.Context, _ string) (*core.MemoryStats, error) {
	return &core.MemoryStats{Total: 0, ByKind: map[core.MemoryKind]int{}}, nil
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestStoreRequiresArguments(t *testing.T) {
	h := &Handlers{engine: &stubEngine{}, defaultUserID: "local"}

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{name: "missing query", args: map[string]interface{}{"session_id": "s1"}},
		{name: "missing session_id", args: map[string]interface{}{"query": "q"}},
		{name: "query wrong type", args: map[string]interface{}{"query": 42, "session_id": "s1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.Store(context.Background(), toolRequest(tt.args))
			if err != nil {
				t.Fatalf("Store() error = %v", err)
			}
			if !res.IsError {
				t.Error("Store() result is not an error")
			}
		})
	}
}

func TestStoreForwardsToEngine(t *testing.T) {
	engine := &stubEngine{}
	h := &Handlers{engine: engine, defaultUserID: "local"}

	res, err := h.Store(context.Background(), toolRequest(map[string]interface{}{
		"query":      "what did I say about cats",
		"session_id": "s1",
		"response":   "you like cats",
	}))
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("Store() returned tool error: %v", res.Content)
	}

	if engine.storeIn == nil {
		t.Fatal("engine.Store was not called")
	}
	if engine.storeIn.UserID != "local" {
		t.Errorf("UserID = %q, want default user", engine.storeIn.UserID)
	}
	if engine.storeIn.SessionID != "s1" || engine.storeIn.Response != "you like cats" {
		t.Errorf("StoreInput = %+v", engine.storeIn)
	}
	if engine.storeIn.Kind != core.KindConversation {
		t.Errorf("Kind = %q, want default conversation", engine.storeIn.Kind)
	}
}

func TestDeleteArgumentRouting(t *testing.T) {
	tests := []struct {
		name      string
		args      map[string]interface{}
		wantErr   bool
		wantCalls []string
	}{
		{name: "no arguments", args: map[string]interface{}{}, wantErr: true},
		{
			name:    "both arguments",
			args:    map[string]interface{}{"memory_id": "m1", "session_id": "s1"},
			wantErr: true,
		},
		{
			name:      "by memory id",
			args:      map[string]interface{}{"memory_id": "m1"},
			wantCalls: []string{"m1"},
		},
		{
			name:      "by session",
			args:      map[string]interface{}{"session_id": "s1"},
			wantCalls: []string{"session:s1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &stubEngine{}
			h := &Handlers{engine: engine, defaultUserID: "local"}

			res, err := h.Delete(context.Background(), toolRequest(tt.args))
			if err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if res.IsError != tt.wantErr {
				t.Errorf("IsError = %v, want %v", res.IsError, tt.wantErr)
			}
			if len(engine.deleted) != len(tt.wantCalls) {
				t.Fatalf("deleted = %v, want %v", engine.deleted, tt.wantCalls)
			}
			for i := range tt.wantCalls {
				if engine.deleted[i] != tt.wantCalls[i] {
					t.Errorf("deleted = %v, want %v", engine.deleted, tt.wantCalls)
				}
			}
		})
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	h := &Handlers{engine: &stubEngine{}, defaultUserID: "local"}

	res, err := h.Search(context.Background(), toolRequest(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if !res.IsError {
		t.Error("Search() without query is not an error")
	}
}
