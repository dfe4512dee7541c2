package main

import (
	"context"
	"database/sql"
	"os"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/internal/service/memory"
	"github.com/sandevgo/recall/internal/storage/sqlite"
)

// adminEnv is the reduced wiring for one-shot management commands: no LLM
// provider, no REPL, and memory failures are reported instead of hidden.
type adminEnv struct {
	appCfg   *config.AppConfig
	engine   *memory.Engine
	sessions core.SessionsRepository
	db       *sql.DB
}

func newAdminEnv(ctx context.Context) (*adminEnv, error) {
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return nil, err
	}

	appCfg := config.NewAppConfig(ctx)
	memCfg := config.NewMemoryConfig(ctx)
	embCfg := config.NewEmbeddingConfig(ctx)

	engine, err := initMemory(ctx, appCfg, memCfg, embCfg, os.Getenv("OPENAI_API_KEY"))
	if err != nil {
		return nil, err
	}

	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		return nil, err
	}

	return &adminEnv{
		appCfg:   appCfg,
		engine:   engine,
		sessions: sqlite.NewSessionsRepo(db),
		db:       db,
	}, nil
}

func (e *adminEnv) Close() error {
	return e.db.Close()
}
