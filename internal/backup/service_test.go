package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/mkanban/internal/domain"
	"github.com/emiliopalmerini/mkanban/internal/ports"
)

var seedTime = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

// seed stores two projects, the second one newer, with tasks.
func (f *fixture) seed(t *testing.T) (older, newer *domain.Project) {
	t.Helper()
	ctx := context.Background()

	older, err := domain.NewProject("Older", seedTime)
	require.NoError(t, err)
	newer, err = domain.NewProject("Newer", seedTime.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, f.projects.Create(ctx, older))
	require.NoError(t, f.projects.Create(ctx, newer))

	add := func(p *domain.Project, title string, order *int) {
		task := domain.NewTask(p.ID, title, seedTime)
		task.Order = order
		require.NoError(t, f.tasks.Upsert(ctx, task))
	}
	add(older, "unordered", nil)
	add(older, "second", domain.IntPtr(1))
	add(older, "first", domain.IntPtr(0))
	add(newer, "only", domain.IntPtr(0))
	return older, newer
}

func TestHash(t *testing.T) {
	p, err := domain.NewProject("P", seedTime)
	require.NoError(t, err)
	task := domain.NewTask(p.ID, "T", seedTime)

	h1, err := Hash([]*domain.Project{p}, []*domain.Task{task})
	require.NoError(t, err)
	h2, err := Hash([]*domain.Project{p}, []*domain.Task{task.Clone()})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	empty1, _ := Hash(nil, nil)
	empty2, _ := Hash([]*domain.Project{}, []*domain.Task{})
	assert.Equal(t, empty1, empty2)

	changed := task.Clone()
	changed.Status = domain.ColumnDone
	h3, err := Hash([]*domain.Project{p}, []*domain.Task{changed})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestCreate_WritesSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	older, newer := f.seed(t)

	meta, err := f.svc.Create(ctx, CreateOptions{SkipIfUnchanged: true})
	require.NoError(t, err)
	assert.False(t, meta.Skipped)
	assert.Equal(t, "backup-2026-02-01T08-01-00.json", meta.Filename)
	assert.Equal(t, 2, meta.ProjectCount)
	assert.Equal(t, 4, meta.TaskCount)

	data, err := f.blobs.Download(ctx, meta.Filename)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), meta.Size)

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	require.Len(t, snap.Projects, 2)
	assert.Equal(t, newer.ID, snap.Projects[0].ID, "projects are newest first")
	assert.Equal(t, older.ID, snap.Projects[1].ID)

	var titles []string
	for _, task := range snap.Tasks {
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{"only", "first", "second", "unordered"}, titles)

	sum, err := f.blobs.Download(ctx, ChecksumFile)
	require.NoError(t, err)
	hash, err := Hash(snap.Projects, snap.Tasks)
	require.NoError(t, err)
	assert.Equal(t, hash, string(sum))

	require.Len(t, f.metrics.backup, 1)
	assert.Equal(t, ports.BackupCreated, f.metrics.backup[0].Result)
	assert.Equal(t, meta.Size, f.metrics.backup[0].Bytes)
}

func TestCreate_SkipsUnchangedData(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	_, err := f.svc.Create(ctx, CreateOptions{SkipIfUnchanged: true})
	require.NoError(t, err)

	meta, err := f.svc.Create(ctx, CreateOptions{SkipIfUnchanged: true})
	require.NoError(t, err)
	assert.True(t, meta.Skipped)
	assert.Equal(t, SkipReasonUnchanged, meta.Reason)
	assert.Empty(t, meta.Filename)
	assert.Equal(t, 4, meta.TaskCount)
	assert.Len(t, f.blobs.snapshots(), 1, "a skipped run writes nothing")

	forced, err := f.svc.Create(ctx, CreateOptions{SkipIfUnchanged: false})
	require.NoError(t, err)
	assert.False(t, forced.Skipped)
	assert.Len(t, f.blobs.snapshots(), 2)

	require.Len(t, f.metrics.backup, 3)
	assert.Equal(t, ports.BackupSkipped, f.metrics.backup[1].Result)
}

func TestCreate_DetectsChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	older, _ := f.seed(t)

	_, err := f.svc.Create(ctx, CreateOptions{SkipIfUnchanged: true})
	require.NoError(t, err)

	older.Name = "Renamed"
	require.NoError(t, f.projects.Update(ctx, older))

	meta, err := f.svc.Create(ctx, CreateOptions{SkipIfUnchanged: true})
	require.NoError(t, err)
	assert.False(t, meta.Skipped)
	assert.Len(t, f.blobs.snapshots(), 2)
}

func TestCreate_EmptyStore(t *testing.T) {
	f := newFixture(t)

	meta, err := f.svc.Create(context.Background(), CreateOptions{SkipIfUnchanged: true})
	require.NoError(t, err)
	assert.Equal(t, 0, meta.ProjectCount)

	data, err := f.blobs.Download(context.Background(), meta.Filename)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"projects": []`)
	assert.Contains(t, string(data), `"tasks": []`)
}

func TestCreate_Prune(t *testing.T) {
	tests := []struct {
		name       string
		existing   int
		wantPruned int
	}{
		{name: "below retention", existing: 10, wantPruned: 0},
		{name: "reaches retention", existing: 29, wantPruned: 0},
		{name: "five over", existing: 34, wantPruned: 5},
		{name: "six over", existing: 35, wantPruned: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)

			var existing []string
			for i := range tt.existing {
				name := fmt.Sprintf("backup-2025-12-01T%02d-%02d-00.json", i/60, i%60)
				require.NoError(t, f.blobs.Upload(ctx, name, []byte("{}"), "application/json", false))
				existing = append(existing, name)
			}

			meta, err := f.svc.Create(ctx, CreateOptions{})
			require.NoError(t, err)

			remaining := f.blobs.snapshots()
			assert.Len(t, remaining, min(tt.existing+1, DefaultRetention))
			assert.Contains(t, remaining, meta.Filename)
			if tt.wantPruned > 0 {
				assert.NotContains(t, remaining, existing[0])
				assert.NotContains(t, remaining, existing[tt.wantPruned-1])
				assert.Contains(t, remaining, existing[tt.wantPruned])
			}
			_, err = f.blobs.Download(ctx, ChecksumFile)
			assert.NoError(t, err, "the checksum artifact is never pruned")

			require.Len(t, f.metrics.backup, 1)
			assert.Equal(t, tt.wantPruned, f.metrics.backup[0].Pruned)
		})
	}
}

func TestCreate_PruneFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for i := range 31 {
		require.NoError(t, f.blobs.Upload(ctx, fmt.Sprintf("backup-2025-12-01T00-%02d-00.json", i), []byte("{}"), "", false))
	}
	f.blobs.RemoveFunc = func([]string) error { return errors.New("permission denied") }

	meta, err := f.svc.Create(ctx, CreateOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, meta.Filename)
	assert.Len(t, f.blobs.snapshots(), 32)
}

func TestCreate_ChecksumFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)
	f.blobs.UploadFunc = func(path string, _ bool) error {
		if path == ChecksumFile {
			return errors.New("quota exceeded")
		}
		return nil
	}

	_, err := f.svc.Create(ctx, CreateOptions{SkipIfUnchanged: true})
	require.NoError(t, err)

	meta, err := f.svc.Create(ctx, CreateOptions{SkipIfUnchanged: true})
	require.NoError(t, err)
	assert.False(t, meta.Skipped, "without a checksum the next run cannot skip")
}

func TestCreate_UploadFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)
	f.blobs.UploadFunc = func(path string, _ bool) error {
		if IsSnapshot(path) {
			return errors.New("network down")
		}
		return nil
	}

	_, err := f.svc.Create(ctx, CreateOptions{SkipIfUnchanged: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload backup")

	_, err = f.blobs.Download(ctx, ChecksumFile)
	assert.ErrorIs(t, err, ports.ErrBlobNotFound, "checksum is only written after the snapshot")

	require.Len(t, f.metrics.backup, 1)
	assert.Equal(t, ports.BackupFailed, f.metrics.backup[0].Result)
}

func TestCreate_LoadFailure(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Close())

	_, err := f.svc.Create(context.Background(), CreateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load projects")
}

func TestList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	first, err := f.svc.Create(ctx, CreateOptions{})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, CreateOptions{})
	require.NoError(t, err)
	require.NoError(t, f.blobs.Upload(ctx, "backup-notes.txt", []byte("x"), "text/plain", false))

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.Filename, list[0].Filename)
	assert.Equal(t, first.Filename, list[1].Filename)
	assert.Equal(t, -1, list[0].ProjectCount)
	assert.Equal(t, -1, list[0].TaskCount)
	assert.Equal(t, second.Size, list[0].Size)

	f.blobs.ListFunc = func() error { return errors.New("boom") }
	_, err = f.svc.List(ctx)
	assert.ErrorContains(t, err, "failed to list backups")
}
