package main

import (
	"github.com/spf13/cobra"

	mcpgo "github.com/mark3labs/mcp-go/server"

	"github.com/sandevgo/recall/internal/transport/mcpserver"
	"github.com/sandevgo/recall/pkg/log"
)

var mcpCmd = &cobra.Command{
	Use:          "mcp",
	Short:        "Serve the memory engine over MCP stdio",
	Long:         `Exposes memory tools over the Model Context Protocol so external agents share the same session-scoped memory.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		env, err := newAdminEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		server := mcpserver.New(env.engine, env.appCfg.DefaultUserID)

		log.FromCtx(ctx).Info().Msg("mcp server listening on stdio")
		return mcpgo.ServeStdio(server)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
