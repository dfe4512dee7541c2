package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage conversation sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:          "list",
	Short:        "List conversation sessions",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		env, err := newAdminEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		sessions, err := env.sessions.ListSessions(ctx, memoryUser(env))
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tUPDATED\tTITLE")
		for _, s := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				s.ID, s.CreatedAt.Format(time.DateTime), s.UpdatedAt.Format(time.DateTime), s.Title)
		}
		return w.Flush()
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:          "delete <session-id>",
	Short:        "Delete a session, its transcript and its memories",
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

		sessionID := args[0]
		if err := env.sessions.DeleteSession(ctx, sessionID); err != nil {
			return err
		}

		// Drop the session's memories too so nothing dangles in the vector
		// store after the transcript is gone.
		n, err := env.engine.DeleteSessionMemories(ctx, sessionID)
		if err != nil {
			return err
		}

		fmt.Printf("deleted session %s and %d memories\n", sessionID, n)
		return nil
	},
}

var sessionsRenameCmd = &cobra.Command{
	Use:          "rename <session-id> <title>",
	Short:        "Rename a session",
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		env, err := newAdminEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.sessions.RenameSession(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("renamed session %s\n", args[0])
		return nil
	},
}

func init() {
	sessionsCmd.PersistentFlags().StringVarP(&memoryUserID, "user", "u", "", "user id (default: configured user)")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsRenameCmd, sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}
