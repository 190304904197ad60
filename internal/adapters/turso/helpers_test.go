package turso_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/emiliopalmerini/mkanban/internal/adapters/turso"
	"github.com/emiliopalmerini/mkanban/internal/domain"
	"github.com/emiliopalmerini/mkanban/internal/migrate"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := turso.NewDB(ctx, "file:"+filepath.Join(t.TempDir(), "kanban.db"), "")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	if err := migrate.RunAll(ctx, db); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func seedProject(t *testing.T, db *sql.DB, name string, createdAt time.Time) *domain.Project {
	t.Helper()

	p, err := domain.NewProject(name, createdAt)
	if err != nil {
		t.Fatalf("NewProject failed: %v", err)
	}
	if err := turso.NewProjectRepository(db).Create(context.Background(), p); err != nil {
		t.Fatalf("Create project failed: %v", err)
	}
	return p
}
