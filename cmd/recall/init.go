package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/pkg/env"
	"github.com/sandevgo/recall/pkg/log"
)

var initCmd = &cobra.Command{
	Use:          "init",
	Short:        "Create the runtime directory and a default .env",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()
		logger := log.FromCtx(ctx)

		runtimePath := config.GetRuntimePath()
		if err := os.MkdirAll(runtimePath, 0755); err != nil {
			return fmt.Errorf("failed to create runtime directory: %w", err)
		}

		envPath := filepath.Join(runtimePath, ".env")
		if _, err := os.Stat(envPath); err == nil {
			logger.Info().Str("path", envPath).Msg(".env already exists, leaving it untouched")
			return nil
		}

		var b strings.Builder
		for _, cfg := range []any{
			config.NewAppConfig(ctx),
			config.NewMemoryConfig(ctx),
			config.NewEmbeddingConfig(ctx),
		} {
			content, err := env.MarshalEnv(cfg)
			if err != nil {
				return fmt.Errorf("failed to render config: %w", err)
			}
			b.WriteString(content)
		}
		b.WriteString("# OPENAI_API_KEY=\n")

		if err := os.WriteFile(envPath, []byte(b.String()), 0600); err != nil {
			return fmt.Errorf("failed to write .env: %w", err)
		}

		logger.Info().Str("path", envPath).Msg("runtime initialized, you can now run 'recall start'")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
