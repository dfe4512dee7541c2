package agent

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/internal/service/memory"
	"github.com/sandevgo/recall/pkg/log"
)

const responsePreviewLen = 200

// MemoryEngine is the slice of the memory engine the agent needs. Search
// and Store degrade internally, so the agent never branches on memory
// availability.
type MemoryEngine interface {
	Search(ctx context.Context, query, userID string, limit int, sessionID string) ([]core.MemorySearchResult, error)
	Store(ctx context.Context, in memory.StoreInput) (string, error)
}

// HistoryContext renders the transcript tail for prompt injection.
type HistoryContext interface {
	GetContext(ctx context.Context, sessionID string) string
}

// Agent turns one user input into one assistant response. Per turn it
// assembles the prompt (system file, then transcript context, then
// retrieved memories), saves the input to the transcript, calls the
// model, saves the response, and stores the exchange as a new memory.
type Agent struct {
	appCfg  *config.AppConfig
	memCfg  *config.MemoryConfig
	ai      core.AIProvider
	engine  MemoryEngine
	history HistoryContext
	repo    core.MessagesRepository
}

func NewAgent(
	appCfg *config.AppConfig,
	memCfg *config.MemoryConfig,
	ai core.AIProvider,
	engine MemoryEngine,
	history HistoryContext,
	repo core.MessagesRepository,
) *Agent {
	return &Agent{
		appCfg:  appCfg,
		memCfg:  memCfg,
		ai:      ai,
		engine:  engine,
		history: history,
		repo:    repo,
	}
}

func (a *Agent) Run(ctx context.Context, sessionID, userID, input string) (string, error) {
	logger := log.FromCtx(ctx)

	// Assemble the context before persisting the input, otherwise the
	// current message shows up twice: inside the rendered history block
	// and again as the trailing user message.
	messages := a.buildPrompt(ctx, sessionID, userID, input)

	userMsg := core.Message{Role: core.RoleUser, Content: input}
	if err := a.repo.AddMessage(ctx, sessionID, userMsg); err != nil {
		return "", fmt.Errorf("failed to save user message: %w", err)
	}
	messages = append(messages, userMsg)

	responseMsg, err := a.ai.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("ai chat error: %w", err)
	}

	if err := a.repo.AddMessage(ctx, sessionID, responseMsg); err != nil {
		logger.Error().Err(err).Msg("failed to save assistant message")
	}

	// Persist the exchange after responding so memory latency and memory
	// failures never delay or break the answer.
	if _, err := a.engine.Store(ctx, memory.StoreInput{
		UserID:    userID,
		SessionID: sessionID,
		Query:     input,
		Response:  responseMsg.Content,
	}); err != nil {
		logger.Warn().Err(err).Msg("failed to store exchange as memory")
	}

	return responseMsg.Content, nil
}

// buildPrompt assembles the system messages for one turn. The transcript
// context always precedes retrieved memories: the model should trust the
// live conversation over recalled fragments when they disagree.
func (a *Agent) buildPrompt(ctx context.Context, sessionID, userID, input string) []core.Message {
	messages := make([]core.Message, 0, 4)

	if content := a.readSystemPrompt(); content != "" {
		messages = append(messages, core.Message{Role: core.RoleSystem, Content: content})
	}

	if transcript := a.history.GetContext(ctx, sessionID); transcript != "" {
		messages = append(messages, core.Message{Role: core.RoleSystem, Content: transcript})
	}

	results, err := a.engine.Search(ctx, input, userID, a.memCfg.SearchLimit, sessionID)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("memory search failed, continuing without memories")
	} else if block := renderMemories(results); block != "" {
		messages = append(messages, core.Message{Role: core.RoleSystem, Content: block})
	}

	return messages
}

func (a *Agent) readSystemPrompt() string {
	content, err := os.ReadFile(a.appCfg.GetSystemPromptPath())
	if err != nil {
		return ""
	}
	return string(content)
}

func renderMemories(results []core.MemorySearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Relevant memories from earlier in this conversation, most relevant first:\n")
	for _, r := range results {
		fmt.Fprintf(&b, "\n- [%s, similarity %.2f] Q: %s\n  A: %s\n",
			r.Timestamp.Format(time.DateTime), r.Similarity, r.Query, preview(r.Response))
	}
	return b.String()
}

func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= responsePreviewLen {
		return s
	}
	return string(runes[:responsePreviewLen]) + "..."
}
