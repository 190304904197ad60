package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mkanban/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the board, backup and prompt-generation HTTP API.

Examples:
  mkanban serve              # Start on KANBAN_PORT (default 8080)
  mkanban serve --port 3000  # Start on port 3000`,
	RunE: runServe,
}

var servePort int

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides KANBAN_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return withApp(ctx, func(app *AppContext) error {
		port := app.Config.Server.Port
		if servePort != 0 {
			port = servePort
		}
		if app.Config.Backup.Secret == "" {
			app.Logger.Warn("BACKUP_SECRET is not set; /api/backup will reject every request")
		}

		server := web.NewServer(port, app.Boards, app.Backups, app.Generator, app.Config.Backup.Secret, app.Logger)
		return server.Start(ctx)
	})
}
