package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mkanban/internal/adapters/turso"
	"github.com/emiliopalmerini/mkanban/internal/infrastructure/config"
	"github.com/emiliopalmerini/mkanban/internal/infrastructure/logging"
	"github.com/emiliopalmerini/mkanban/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run database migrations",
	Long: `Run libsql database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).
The Postgres store manages its own schema and needs no migrations.

Examples:
  mkanban migrate      # Run all pending migrations
  mkanban migrate 1    # Migrate to version 1
  mkanban migrate 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	target := -1
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return fmt.Errorf("invalid version number: %s", args[0])
		}
		target = v
	}

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Store.Driver != config.DriverLibSQL {
		return fmt.Errorf("migrations apply to the libsql store only (KANBAN_STORE_DRIVER=%s)", cfg.Store.Driver)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	db, err := turso.NewDB(ctx, cfg.Store.DatabaseURL, cfg.Store.AuthToken)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	m := migrate.New(db, logger)
	current, dirty, err := m.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in dirty state at version %d, manual intervention required", current)
	}
	fmt.Fprintf(out, "Current version: %d\n", current)

	var n int
	switch {
	case target < 0:
		n, err = m.Up(ctx)
	case target > current:
		n, err = m.UpTo(ctx, target)
	case target < current:
		n, err = m.DownTo(ctx, target)
	default:
		fmt.Fprintln(out, "Already at target version")
		return nil
	}
	if err != nil {
		return err
	}

	if n == 0 {
		fmt.Fprintln(out, "No migrations to run")
		return nil
	}
	version, _, _ := m.Version(ctx)
	fmt.Fprintf(out, "Migrated to version %d (%d migrations applied)\n", version, n)
	return nil
}
