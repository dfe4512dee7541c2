package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/log"
)

const historyInstruction = "Recent conversation history, oldest first. " +
	"Resolve pronouns and follow-up questions against these messages:"

// History renders the tail of a session transcript as bounded textual
// context. It has no ranking logic; it always returns the trailing window,
// trimmed from the oldest end to fit the token budget. Its output is
// placed before the ranked memory context in the final prompt.
type History struct {
	repo core.MessagesRepository
	cfg  *config.MemoryConfig

	encOnce sync.Once
	enc     *tiktoken.Tiktoken
}

func NewHistory(repo core.MessagesRepository, cfg *config.MemoryConfig) *History {
	return &History{repo: repo, cfg: cfg}
}

// GetContext returns the formatted transcript tail for the session, or an
// empty string when there is no history or the store is unavailable —
// failures here must never block response generation.
func (h *History) GetContext(ctx context.Context, sessionID string) string {
	if sessionID == "" {
		return ""
	}

	msgs, err := h.repo.GetMessages(ctx, sessionID, h.cfg.HistoryWindow)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("session_id", sessionID).Msg("failed to load history")
		return ""
	}
	if len(msgs) == 0 {
		return ""
	}

	// Drop the oldest messages until the rendered context fits the budget.
	for len(msgs) > 0 {
		rendered := h.render(msgs)
		if h.countTokens(rendered) <= h.cfg.HistoryTokenBudget {
			return rendered
		}
		msgs = msgs[1:]
	}
	return ""
}

func (h *History) render(msgs []core.StoredMessage) string {
	lines := make([]string, len(msgs))
	for i, m := range msgs {
		lines[i] = fmt.Sprintf("%d. %s (%s): %s", i+1, m.Role, m.CreatedAt.Format(time.DateTime), m.Content)
	}
	return historyInstruction + "\n\n" + strings.Join(lines, "\n\n")
}

func (h *History) countTokens(s string) int {
	h.encOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			h.enc = enc
		}
	})

	if h.enc == nil {
		// No encoder available; rough byte-based estimate.
		return len(s) / 4
	}
	return len(h.enc.Encode(s, nil, nil))
}
