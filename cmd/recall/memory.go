package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandevgo/recall/internal/core"
)

var (
	memoryUserID    string
	memorySessionID string
	memoryLimit     int
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect and manage stored memories",
}

var memoryListCmd = &cobra.Command{
	Use:          "list",
	Short:        "List all stored memories of a user",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		env, err := newAdminEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		records, err := env.engine.GetUserMemories(ctx, memoryUser(env))
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSESSION\tKIND\tSTORED\tQUERY")
		for _, rec := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				rec.ID, rec.SessionID, rec.Kind, rec.Timestamp.Format(time.DateTime), rec.Query)
		}
		return w.Flush()
	},
}

var memorySearchCmd = &cobra.Command{
	Use:          "search <query>",
	Short:        "Search memories by meaning",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		env, err := newAdminEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		results, err := env.engine.Search(ctx, args[0], memoryUser(env), memoryLimit, memorySessionID)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("no matching memories")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SCORE\tSIMILARITY\tSESSION\tSTORED\tQUERY")
		for _, r := range results {
			fmt.Fprintf(w, "%.3f\t%.3f\t%s\t%s\t%s\n",
				r.Score, r.Similarity, r.SessionID, r.Timestamp.Format(time.DateTime), r.Query)
		}
		return w.Flush()
	},
}

var memoryDeleteCmd = &cobra.Command{
	Use:          "delete [memory-id]",
	Short:        "Delete one memory by id, or a whole session with --session",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if len(args) == 0 && memorySessionID == "" {
			return fmt.Errorf("pass a memory id or --session")
		}

		env, err := newAdminEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if memorySessionID != "" {
			n, err := env.engine.DeleteSessionMemories(ctx, memorySessionID)
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d memories of session %s\n", n, memorySessionID)
			return nil
		}

		deleted, err := env.engine.DeleteMemory(ctx, args[0])
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Printf("memory %s not found\n", args[0])
			return nil
		}
		fmt.Printf("deleted memory %s\n", args[0])
		return nil
	},
}

var memoryStatsCmd = &cobra.Command{
	Use:          "stats",
	Short:        "Show memory counts by kind",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		env, err := newAdminEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		stats, err := env.engine.GetStats(ctx, memoryUserID)
		if err != nil {
			return err
		}

		fmt.Printf("total: %d\n", stats.Total)

		kinds := make([]string, 0, len(stats.ByKind))
		for kind := range stats.ByKind {
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, kind := range kinds {
			name := kind
			if name == "" {
				name = "(untagged)"
			}
			fmt.Fprintf(w, "%s\t%d\n", name, stats.ByKind[core.MemoryKind(kind)])
		}
		return w.Flush()
	},
}

func memoryUser(env *adminEnv) string {
	if memoryUserID != "" {
		return memoryUserID
	}
	return env.appCfg.DefaultUserID
}

func init() {
	memoryCmd.PersistentFlags().StringVarP(&memoryUserID, "user", "u", "", "user id (default: configured user)")

	memorySearchCmd.Flags().StringVarP(&memorySessionID, "session", "s", "", "restrict to one session")
	memorySearchCmd.Flags().IntVarP(&memoryLimit, "limit", "n", 5, "maximum number of results")
	memoryDeleteCmd.Flags().StringVarP(&memorySessionID, "session", "s", "", "delete every memory of this session")

	memoryCmd.AddCommand(memoryListCmd, memorySearchCmd, memoryDeleteCmd, memoryStatsCmd)
	rootCmd.AddCommand(memoryCmd)
}
