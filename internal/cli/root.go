package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mkanban",
	Short: "Personal kanban board with backups and AI prompt generation",
	Long: `mkanban is a personal kanban board for coding tasks.

Keep projects and their tasks in a local libsql file, Turso or Postgres,
snapshot everything to a directory or Azure Blob Storage, and turn a task
into a ready-to-paste prompt for a coding agent.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cmdContext returns the command's context, which is nil when run outside Execute.
func cmdContext(cmd *cobra.Command) context.Context {
	if c := cmd.Context(); c != nil {
		return c
	}
	return context.Background()
}
