package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/internal/service/agent"
	"github.com/sandevgo/recall/internal/service/ui"
	"github.com/sandevgo/recall/pkg/log"
)

// ReadLine is the interactive chat surface. Each Start creates one fresh
// session, so every REPL run is an isolated conversation: memories stored
// in an earlier run never surface unless the user asks across sessions.
type ReadLine struct {
	cfg      *config.AppConfig
	agent    *agent.Agent
	sessions core.SessionsRepository
	rl       *readline.Instance

	sessionID string
}

func NewReadLine(agent *agent.Agent, sessions core.SessionsRepository, cfg *config.AppConfig) (*ReadLine, error) {
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:      cfg,
		agent:    agent,
		sessions: sessions,
		rl:       rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)

	session, err := r.sessions.CreateSession(ctx, r.cfg.DefaultUserID, "")
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	r.sessionID = session.ID

	logger.Info().Str("session_id", r.sessionID).Msg("chat started, type 'exit' to quit")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					return nil
				}
				continue
			} else if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		response, err := r.agent.Run(ctx, r.sessionID, r.cfg.DefaultUserID, line)
		if err != nil {
			logger.Error().Err(err).Msg("agent run failed")
			fmt.Fprintln(r.rl.Stdout(), ui.ErrorStyle.Render(fmt.Sprintf("Error: %v", err)))
			continue
		}

		fmt.Fprintf(r.rl.Stdout(), "%s\n", response)
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
