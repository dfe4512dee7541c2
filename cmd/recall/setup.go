package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/internal/providers/embed"
	"github.com/sandevgo/recall/internal/providers/llm"
	"github.com/sandevgo/recall/internal/service/agent"
	"github.com/sandevgo/recall/internal/service/memory"
	"github.com/sandevgo/recall/internal/storage/sqlite"
	"github.com/sandevgo/recall/internal/storage/vecstore"
	"github.com/sandevgo/recall/internal/transport/cli"
	"github.com/sandevgo/recall/pkg/log"
	"github.com/sandevgo/recall/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	memCfg := config.NewMemoryConfig(ctx)
	embCfg := config.NewEmbeddingConfig(ctx)
	openaiCfg := config.NewOpenAIConfig(ctx)

	// 2. Storage
	db, messagesRepo, sessionsRepo, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	// 3. AI Provider
	aiProvider, err := llm.NewProvider(ctx, appCfg, openaiCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	// 4. Memory Engine
	engine, err := initMemory(ctx, appCfg, memCfg, embCfg, openaiCfg.APIKey)
	if err != nil {
		// Chat still works without memory, the engine just stays not ready.
		logger.Warn().Err(err).Msg("memory engine unavailable, continuing without memory")
	}

	history := memory.NewHistory(messagesRepo, memCfg)

	// 5. Agent Service
	ag := agent.NewAgent(appCfg, memCfg, aiProvider, engine, history, messagesRepo)

	// 6. Transport
	repl, err := cli.NewReadLine(ag, sessionsRepo, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize chat transport")
	}
	services = append(services, repl)

	return services
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (*sql.DB, core.MessagesRepository, core.SessionsRepository, error) {
	db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, nil, nil, err
	}
	return db, sqlite.NewMessagesRepo(db), sqlite.NewSessionsRepo(db), nil
}

// initMemory wires embedder, vector store and engine. It always returns a
// usable engine; on failure the engine is simply never marked ready and
// every hot-path call degrades to "no memory".
func initMemory(ctx context.Context, appCfg *config.AppConfig, memCfg *config.MemoryConfig, embCfg *config.EmbeddingConfig, openAIKey string) (*memory.Engine, error) {
	embedder, err := embed.New(ctx, embCfg, openAIKey)
	if err != nil {
		return memory.NewEngine(vecstore.NewFake(), nil, memCfg), err
	}

	store, err := vecstore.NewChromem(appCfg.GetVectorStorePath(), embCfg.Dimensions)
	if err != nil {
		return memory.NewEngine(vecstore.NewFake(), embedder, memCfg), err
	}

	engine := memory.NewEngine(store, embedder, memCfg)
	if err := engine.Init(ctx); err != nil {
		return engine, err
	}
	return engine, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
