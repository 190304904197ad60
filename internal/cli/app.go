package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/emiliopalmerini/mkanban/internal/adapters/claude"
	"github.com/emiliopalmerini/mkanban/internal/adapters/otel"
	"github.com/emiliopalmerini/mkanban/internal/adapters/postgres"
	"github.com/emiliopalmerini/mkanban/internal/adapters/storage"
	"github.com/emiliopalmerini/mkanban/internal/adapters/turso"
	"github.com/emiliopalmerini/mkanban/internal/backup"
	"github.com/emiliopalmerini/mkanban/internal/board"
	"github.com/emiliopalmerini/mkanban/internal/infrastructure/config"
	"github.com/emiliopalmerini/mkanban/internal/infrastructure/logging"
	"github.com/emiliopalmerini/mkanban/internal/migrate"
	"github.com/emiliopalmerini/mkanban/internal/ports"
	"github.com/emiliopalmerini/mkanban/internal/prompt"
)

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Projects  ports.ProjectRepository
	Tasks     ports.TaskRepository
	Blobs     ports.BlobStore
	Metrics   ports.MetricsExporter
	Boards    *board.Service
	Backups   *backup.Service
	Generator *prompt.Generator

	closers []func() error
}

// NewAppContext loads configuration from the environment and .env files
// and creates an AppContext with all dependencies initialized.
func NewAppContext(ctx context.Context) (*AppContext, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	return newAppContext(ctx, cfg, logger)
}

func newAppContext(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*AppContext, error) {
	a := &AppContext{Config: cfg, Logger: logger}

	if err := a.openStore(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	if err := a.openBlobs(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	a.openMetrics(ctx)

	chain := prompt.NewChain(logger,
		claude.NewCLITransport(cliPaths(cfg.LLM), cfg.LLM.Model, cfg.LLM.CLITimeout, logger),
		claude.NewAPITransport(cfg.LLM.APIKey, cfg.LLM.Model),
	)

	a.Boards = board.NewService(a.Projects, a.Tasks, logger)
	a.Backups = backup.NewService(a.Projects, a.Tasks, a.Blobs, a.Metrics, logger, cfg.Backup.Retention)
	a.Generator = prompt.NewGenerator(chain, a.Metrics, logger)
	return a, nil
}

func cliPaths(cfg config.LLM) []string {
	if len(cfg.ClaudePaths) > 0 {
		return cfg.ClaudePaths
	}
	return claude.DefaultCLIPaths()
}

// openStore connects the configured record store and brings its schema
// up to date.
func (a *AppContext) openStore(ctx context.Context) error {
	store := a.Config.Store
	switch store.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, store.PostgresDSN)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		a.Projects = postgres.NewProjectRepository(pool)
		a.Tasks = postgres.NewTaskRepository(pool)
	default:
		db, err := turso.NewDB(ctx, store.DatabaseURL, store.AuthToken)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if _, err := migrate.New(db, a.Logger).Up(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		a.Projects = turso.NewProjectRepository(db)
		a.Tasks = turso.NewTaskRepository(db)
	}
	a.Logger.WithField("driver", store.Driver).Debug("record store ready")
	return nil
}

func (a *AppContext) openBlobs(ctx context.Context) error {
	blob := a.Config.Blob
	switch blob.Driver {
	case config.BlobAzure:
		store, err := storage.NewAzureBlobStore(ctx, blob.AzureConnStr, blob.AzureContainer)
		if err != nil {
			return fmt.Errorf("failed to initialize azure blob store: %w", err)
		}
		a.Blobs = store
	default:
		store, err := storage.NewFileBlobStore(blob.Dir)
		if err != nil {
			return fmt.Errorf("failed to initialize backup storage: %w", err)
		}
		a.Blobs = store
	}
	return nil
}

// openMetrics uses the OTEL exporter when configured and degrades to a
// no-op exporter otherwise.
func (a *AppContext) openMetrics(ctx context.Context) {
	if !a.Config.OTel.Enabled {
		a.Metrics = otel.NewNoOpExporter()
		return
	}
	exp, err := otel.NewExporter(ctx, a.Config.OTel)
	if err != nil {
		a.Logger.WithError(err).Warn("metrics export disabled")
		a.Metrics = otel.NewNoOpExporter()
		return
	}
	a.Metrics = exp
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close() error {
	var errs []error
	if a.Metrics != nil {
		errs = append(errs, a.Metrics.Close(context.Background()))
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// withApp runs fn with a fresh AppContext and closes it afterwards.
func withApp(ctx context.Context, fn func(*AppContext) error) error {
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(app)
}

// newApp is swapped in tests.
var newApp = NewAppContext
