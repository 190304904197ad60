package backup

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/mkanban/internal/adapters/turso"
	"github.com/emiliopalmerini/mkanban/internal/migrate"
	"github.com/emiliopalmerini/mkanban/internal/ports"
)

// memBlobs is an in-memory BlobStore whose creation times advance one
// second per new blob. The func fields override single operations.
type memBlobs struct {
	mu      sync.Mutex
	data    map[string][]byte
	created map[string]time.Time
	clock   time.Time

	UploadFunc func(path string, upsert bool) error
	ListFunc   func() error
	RemoveFunc func(paths []string) error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{
		data:    map[string][]byte{},
		created: map[string]time.Time{},
		clock:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memBlobs) Upload(_ context.Context, path string, data []byte, _ string, upsert bool) error {
	if m.UploadFunc != nil {
		if err := m.UploadFunc(path, upsert); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[path]; ok {
		if !upsert {
			return fmt.Errorf("%s: %w", path, ports.ErrBlobExists)
		}
	} else {
		m.clock = m.clock.Add(time.Second)
		m.created[path] = m.clock
	}
	m.data[path] = append([]byte(nil), data...)
	return nil
}

func (m *memBlobs) List(_ context.Context, prefix string, order ports.SortOrder) ([]ports.BlobInfo, error) {
	if m.ListFunc != nil {
		if err := m.ListFunc(); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ports.BlobInfo
	for name, data := range m.data {
		if strings.HasPrefix(name, prefix) {
			out = append(out, ports.BlobInfo{Name: name, Size: int64(len(data)), CreatedAt: m.created[name]})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if order == ports.SortDescending {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memBlobs) Download(_ context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ports.ErrBlobNotFound)
	}
	return data, nil
}

func (m *memBlobs) Remove(_ context.Context, paths []string) error {
	if m.RemoveFunc != nil {
		if err := m.RemoveFunc(paths); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range paths {
		delete(m.data, p)
		delete(m.created, p)
	}
	return nil
}

func (m *memBlobs) snapshots() []string {
	infos, _ := m.List(context.Background(), filePrefix, ports.SortAscending)
	var names []string
	for _, b := range infos {
		if IsSnapshot(b.Name) {
			names = append(names, b.Name)
		}
	}
	return names
}

type recordingMetrics struct {
	mu     sync.Mutex
	backup []ports.BackupMetrics
}

func (r *recordingMetrics) ExportBackupMetrics(_ context.Context, m *ports.BackupMetrics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backup = append(r.backup, *m)
	return nil
}

func (r *recordingMetrics) ExportPromptMetrics(context.Context, *ports.PromptMetrics) error {
	return nil
}

func (r *recordingMetrics) Close(context.Context) error { return nil }

type fixture struct {
	db       *sql.DB
	svc      *Service
	blobs    *memBlobs
	metrics  *recordingMetrics
	projects *turso.ProjectRepository
	tasks    *turso.TaskRepository
}

// newFixture wires a service to a temp libsql store and in-memory blobs.
// Every call to the service clock advances it by one minute.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	db, err := turso.NewDB(ctx, "file:"+filepath.Join(t.TempDir(), "backup.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrate.RunAll(ctx, db))

	f := &fixture{
		db:       db,
		blobs:    newMemBlobs(),
		metrics:  &recordingMetrics{},
		projects: turso.NewProjectRepository(db),
		tasks:    turso.NewTaskRepository(db),
	}
	f.svc = NewService(f.projects, f.tasks, f.blobs, f.metrics, nil, 0)

	clock := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return f
}
