package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/internal/service/memory"
)

type stubAI struct {
	chat func(ctx context.Context, history []core.Message) (core.Message, error)
}

func (s *stubAI) Chat(ctx context.Context, history []core.Message) (core.Message, error) {
	return s.chat(ctx, history)
}

type stubEngine struct {
	search func(ctx context.Context, query, userID string, limit int, sessionID string) ([]core.MemorySearchResult, error)
	store  func(ctx context.Context, in memory.StoreInput) (string, error)
}

func (s *stubEngine) Search(ctx context.Context, query, userID string, limit int, sessionID string) ([]core.MemorySearchResult, error) {
	if s.search == nil {
		return nil, nil
	}
	return s.search(ctx, query, userID, limit, sessionID)
}

func (s *stubEngine) Store(ctx context.Context, in memory.StoreInput) (string, error) {
	if s.store == nil {
		return "", nil
	}
	return s.store(ctx, in)
}

type stubHistory struct {
	context string
	onGet   func()
}

func (s *stubHistory) GetContext(_ context.Context, _ string) string {
	if s.onGet != nil {
		s.onGet()
	}
	return s.context
}

type stubRepo struct {
	saved  []core.Message
	addErr error
	onAdd  func()
}

func (s *stubRepo) AddMessage(_ context.Context, _ string, msg core.Message) error {
	if s.onAdd != nil {
		s.onAdd()
	}
	if s.addErr != nil {
		return s.addErr
	}
	s.saved = append(s.saved, msg)
	return nil
}

func (s *stubRepo) GetMessages(_ context.Context, _ string, _ int) ([]core.StoredMessage, error) {
	return nil, nil
}

func testCfgs() (*config.AppConfig, *config.MemoryConfig) {
	return &config.AppConfig{RuntimePath: "/nonexistent"},
		&config.MemoryConfig{SearchLimit: 5}
}

func searchResult(id, query, response string, sim float64) core.MemorySearchResult {
	return core.MemorySearchResult{
		MemoryRecord: core.MemoryRecord{
			ID:        id,
			Query:     query,
			Response:  response,
			Timestamp: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		},
		Similarity: sim,
	}
}

func TestRunOrdersContextBeforeMemories(t *testing.T) {
	appCfg, memCfg := testCfgs()
	repo := &stubRepo{}

	var gotPrompt []core.Message
	ai := &stubAI{chat: func(_ context.Context, history []core.Message) (core.Message, error) {
		gotPrompt = history
		return core.Message{Role: core.RoleAssistant, Content: "about 18 years"}, nil
	}}
	engine := &stubEngine{
		search: func(_ context.Context, _, _ string, _ int, _ string) ([]core.MemorySearchResult, error) {
			return []core.MemorySearchResult{
				searchResult("m1", "my cat is called Misha", "Nice name for a cat.", 0.91),
			}, nil
		},
	}
	history := &stubHistory{context: "Recent conversation history: 1. user: my cat is called Misha"}

	a := NewAgent(appCfg, memCfg, ai, engine, history, repo)

	out, err := a.Run(context.Background(), "s1", "u1", "how old can he get?")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "about 18 years" {
		t.Errorf("Run() = %q", out)
	}

	var transcriptIdx, memoryIdx, userIdx int = -1, -1, -1
	for i, m := range gotPrompt {
		switch {
		case strings.Contains(m.Content, "Recent conversation history"):
			transcriptIdx = i
		case strings.Contains(m.Content, "Relevant memories"):
			memoryIdx = i
		case m.Role == core.RoleUser:
			userIdx = i
		}
	}
	if transcriptIdx == -1 || memoryIdx == -1 || userIdx == -1 {
		t.Fatalf("prompt missing sections: transcript=%d memory=%d user=%d", transcriptIdx, memoryIdx, userIdx)
	}
	if !(transcriptIdx < memoryIdx && memoryIdx < userIdx) {
		t.Errorf("prompt order = transcript %d, memory %d, user %d; want transcript < memory < user",
			transcriptIdx, memoryIdx, userIdx)
	}
}

// The history block is loaded before the input is written to the
// transcript; saving first would repeat the current message inside the
// rendered history.
func TestRunLoadsHistoryBeforePersistingInput(t *testing.T) {
	appCfg, memCfg := testCfgs()

	var calls []string
	repo := &stubRepo{onAdd: func() { calls = append(calls, "save") }}
	history := &stubHistory{onGet: func() { calls = append(calls, "history") }}
	ai := &stubAI{chat: func(_ context.Context, _ []core.Message) (core.Message, error) {
		return core.Message{Role: core.RoleAssistant, Content: "ok"}, nil
	}}

	a := NewAgent(appCfg, memCfg, ai, &stubEngine{}, history, repo)

	if _, err := a.Run(context.Background(), "s1", "u1", "hello"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(calls) < 2 || calls[0] != "history" || calls[1] != "save" {
		t.Errorf("call order = %v, want history before save", calls)
	}
}

func TestRunStoresExchangeAfterResponse(t *testing.T) {
	appCfg, memCfg := testCfgs()
	repo := &stubRepo{}

	var stored *memory.StoreInput
	ai := &stubAI{chat: func(_ context.Context, _ []core.Message) (core.Message, error) {
		return core.Message{Role: core.RoleAssistant, Content: "Paris"}, nil
	}}
	engine := &stubEngine{
		store: func(_ context.Context, in memory.StoreInput) (string, error) {
			stored = &in
			return "m1", nil
		},
	}

	a := NewAgent(appCfg, memCfg, ai, engine, &stubHistory{}, repo)

	if _, err := a.Run(context.Background(), "s1", "u1", "capital of France?"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stored == nil {
		t.Fatal("exchange was not stored as memory")
	}
	if stored.UserID != "u1" || stored.SessionID != "s1" {
		t.Errorf("stored scoping = (%q, %q)", stored.UserID, stored.SessionID)
	}
	if stored.Query != "capital of France?" || stored.Response != "Paris" {
		t.Errorf("stored exchange = (%q, %q)", stored.Query, stored.Response)
	}

	if len(repo.saved) != 2 {
		t.Fatalf("saved %d transcript messages, want 2", len(repo.saved))
	}
	if repo.saved[0].Role != core.RoleUser || repo.saved[1].Role != core.RoleAssistant {
		t.Errorf("transcript roles = (%s, %s)", repo.saved[0].Role, repo.saved[1].Role)
	}
}

func TestRunContinuesWhenMemoryFails(t *testing.T) {
	appCfg, memCfg := testCfgs()

	ai := &stubAI{chat: func(_ context.Context, history []core.Message) (core.Message, error) {
		for _, m := range history {
			if strings.Contains(m.Content, "Relevant memories") {
				return core.Message{}, errors.New("memory block leaked into prompt")
			}
		}
		return core.Message{Role: core.RoleAssistant, Content: "ok"}, nil
	}}
	engine := &stubEngine{
		search: func(_ context.Context, _, _ string, _ int, _ string) ([]core.MemorySearchResult, error) {
			return nil, errors.New("search blew up")
		},
	}

	a := NewAgent(appCfg, memCfg, ai, engine, &stubHistory{}, &stubRepo{})

	out, err := a.Run(context.Background(), "s1", "u1", "hello")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "ok" {
		t.Errorf("Run() = %q", out)
	}
}

func TestRunFailsWhenTranscriptWriteFails(t *testing.T) {
	appCfg, memCfg := testCfgs()
	repo := &stubRepo{addErr: errors.New("db locked")}

	ai := &stubAI{chat: func(_ context.Context, _ []core.Message) (core.Message, error) {
		t.Fatal("chat should not be reached")
		return core.Message{}, nil
	}}

	a := NewAgent(appCfg, memCfg, ai, &stubEngine{}, &stubHistory{}, repo)

	if _, err := a.Run(context.Background(), "s1", "u1", "hello"); err == nil {
		t.Error("Run() error = nil, want save failure")
	}
}

func TestPreviewTruncates(t *testing.T) {
	long := strings.Repeat("я", responsePreviewLen+50)
	got := preview(long)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("preview() = %q, want ... suffix", got)
	}
	if gotRunes := len([]rune(got)); gotRunes != responsePreviewLen+3 {
		t.Errorf("preview() length = %d runes, want %d", gotRunes, responsePreviewLen+3)
	}

	short := "short answer"
	if preview(short) != short {
		t.Errorf("preview(%q) modified a short string", short)
	}
}
