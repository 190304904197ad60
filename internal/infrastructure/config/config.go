package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/emiliopalmerini/mkanban/internal/adapters/otel"
	"github.com/emiliopalmerini/mkanban/internal/util"
)

const (
	DriverLibSQL   = "libsql"
	DriverPostgres = "postgres"

	BlobFS    = "fs"
	BlobAzure = "azure"
)

// Store selects and configures the record store.
type Store struct {
	Driver      string `envconfig:"KANBAN_STORE_DRIVER" default:"libsql"`
	DatabaseURL string `envconfig:"KANBAN_DATABASE_URL"`
	AuthToken   string `envconfig:"KANBAN_AUTH_TOKEN"`
	PostgresDSN string `envconfig:"KANBAN_POSTGRES_DSN"`
}

// Blob selects and configures where backup artifacts go.
type Blob struct {
	Driver         string `envconfig:"KANBAN_BLOB_DRIVER" default:"fs"`
	Dir            string `envconfig:"KANBAN_BLOB_DIR"`
	AzureConnStr   string `envconfig:"KANBAN_AZURE_STORAGE_CONNECTION_STRING"`
	AzureContainer string `envconfig:"KANBAN_AZURE_CONTAINER" default:"backups"`
}

type Backup struct {
	Secret    string `envconfig:"BACKUP_SECRET"`
	Retention int    `envconfig:"KANBAN_BACKUP_RETENTION" default:"30"`
}

type LLM struct {
	APIKey     string        `envconfig:"ANTHROPIC_API_KEY"`
	Model      string        `envconfig:"KANBAN_LLM_MODEL" default:"claude-sonnet-4-20250514"`
	CLITimeout time.Duration `envconfig:"KANBAN_CLI_TIMEOUT" default:"30s"`
	// ClaudePaths overrides the CLI lookup order, comma separated.
	ClaudePaths []string `envconfig:"KANBAN_CLAUDE_PATHS"`
}

type Server struct {
	Port int `envconfig:"KANBAN_PORT" default:"8080"`
}

type Log struct {
	Level  string `envconfig:"KANBAN_LOG_LEVEL" default:"info"`
	Format string `envconfig:"KANBAN_LOG_FORMAT" default:"text"`
}

type Config struct {
	Store  Store
	Blob   Blob
	Backup Backup
	LLM    LLM
	Server Server
	Log    Log
	OTel   otel.Config
}

// LoadDotEnv loads .env.local and then .env from the working directory.
// Variables already set in the environment win, and missing files are
// ignored.
func LoadDotEnv() error {
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	return nil
}

// Load reads every section from the environment.
func Load() (*Config, error) {
	var cfg Config
	sections := []any{&cfg.Store, &cfg.Blob, &cfg.Backup, &cfg.LLM, &cfg.Server, &cfg.Log, &cfg.OTel}
	for _, s := range sections {
		if err := envconfig.Process("", s); err != nil {
			return nil, err
		}
	}

	if err := cfg.Store.resolve(); err != nil {
		return nil, err
	}
	if err := cfg.Blob.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Store) resolve() error {
	switch s.Driver {
	case DriverLibSQL:
		if s.DatabaseURL == "" {
			dir, err := util.GetXDGDataDir()
			if err != nil {
				return err
			}
			s.DatabaseURL = "file:" + filepath.Join(dir, "mkanban.db")
		}
	case DriverPostgres:
		if s.PostgresDSN == "" {
			return fmt.Errorf("KANBAN_POSTGRES_DSN is required when KANBAN_STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown store driver %q (want %s or %s)", s.Driver, DriverLibSQL, DriverPostgres)
	}
	return nil
}

func (b *Blob) validate() error {
	switch b.Driver {
	case BlobFS:
	case BlobAzure:
		if b.AzureConnStr == "" {
			return fmt.Errorf("KANBAN_AZURE_STORAGE_CONNECTION_STRING is required when KANBAN_BLOB_DRIVER=azure")
		}
	default:
		return fmt.Errorf("unknown blob driver %q (want %s or %s)", b.Driver, BlobFS, BlobAzure)
	}
	return nil
}
