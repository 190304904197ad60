package backup

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/mkanban/internal/domain"
	"github.com/emiliopalmerini/mkanban/internal/ports"
)

const (
	// ChecksumFile holds the hash of the data in the most recent snapshot.
	ChecksumFile = "latest-checksum.txt"
	// DefaultRetention is how many snapshots survive a prune.
	DefaultRetention = 30

	filePrefix    = "backup-"
	fileSuffix    = ".json"
	fileTimestamp = "2006-01-02T15-04-05"

	// maxConcurrentLoads bounds the per-project task queries of one run.
	maxConcurrentLoads = 4
)

// SkipReasonUnchanged is reported when the data matches the last snapshot.
const SkipReasonUnchanged = "no changes"

type CreateOptions struct {
	SkipIfUnchanged bool
}

type Service struct {
	projects  ports.ProjectRepository
	tasks     ports.TaskRepository
	blobs     ports.BlobStore
	metrics   ports.MetricsExporter
	logger    logrus.FieldLogger
	retention int
	now       func() time.Time
}

// NewService builds a backup service. A retention below one falls back
// to DefaultRetention; metrics may be nil.
func NewService(
	projects ports.ProjectRepository,
	tasks ports.TaskRepository,
	blobs ports.BlobStore,
	metrics ports.MetricsExporter,
	logger logrus.FieldLogger,
	retention int,
) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if retention < 1 {
		retention = DefaultRetention
	}
	return &Service{
		projects:  projects,
		tasks:     tasks,
		blobs:     blobs,
		metrics:   metrics,
		logger:    logger,
		retention: retention,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// IsSnapshot reports whether name is a snapshot artifact.
func IsSnapshot(name string) bool {
	return strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileSuffix)
}

// Filename returns the snapshot name for a run started at t.
func Filename(t time.Time) string {
	return filePrefix + t.UTC().Format(fileTimestamp) + fileSuffix
}

// Create exports every project and task into a new snapshot and prunes
// old ones.
func (s *Service) Create(ctx context.Context, opts CreateOptions) (*domain.BackupMetadata, error) {
	start := time.Now()
	m := &ports.BackupMetrics{Result: ports.BackupFailed}
	defer func() {
		m.Duration = time.Since(start)
		s.export(ctx, m)
	}()

	projects, tasks, err := s.load(ctx)
	if err != nil {
		s.logger.WithError(err).Error("backup failed")
		return nil, err
	}
	m.ProjectCount = len(projects)
	m.TaskCount = len(tasks)

	hash, err := Hash(projects, tasks)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if opts.SkipIfUnchanged && s.unchanged(ctx, hash) {
		m.Result = ports.BackupSkipped
		s.logger.WithField("hash", hash).Info("backup skipped, data unchanged")
		return &domain.BackupMetadata{
			CreatedAt:    now,
			ProjectCount: len(projects),
			TaskCount:    len(tasks),
			Skipped:      true,
			Reason:       SkipReasonUnchanged,
		}, nil
	}

	data, err := json.MarshalIndent(domain.Snapshot{
		ExportDate: now,
		Projects:   projects,
		Tasks:      tasks,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	filename := Filename(now)
	log := s.logger.WithField("filename", filename)
	if err := s.blobs.Upload(ctx, filename, data, "application/json", false); err != nil {
		err = fmt.Errorf("failed to upload backup: %w", err)
		log.WithError(err).Error("backup failed")
		return nil, err
	}

	if err := s.blobs.Upload(ctx, ChecksumFile, []byte(hash), "text/plain", true); err != nil {
		log.WithError(err).Warn("failed to update backup checksum")
	}

	pruned, err := s.prune(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to prune old backups")
	}

	m.Result = ports.BackupCreated
	m.Bytes = int64(len(data))
	m.Pruned = pruned
	log.WithFields(logrus.Fields{
		"bytes":    len(data),
		"projects": len(projects),
		"tasks":    len(tasks),
		"pruned":   pruned,
	}).Info("backup created")

	return &domain.BackupMetadata{
		Filename:     filename,
		Size:         int64(len(data)),
		CreatedAt:    now,
		ProjectCount: len(projects),
		TaskCount:    len(tasks),
	}, nil
}

// load reads all projects newest first and their tasks in board order.
// Task lists are fetched concurrently and concatenated in project order.
func (s *Service) load(ctx context.Context) ([]*domain.Project, []*domain.Task, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load projects: %w", err)
	}

	perProject := make([][]*domain.Task, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, p := range projects {
		g.Go(func() error {
			tasks, err := s.tasks.ListByProject(gctx, p.ID)
			if err != nil {
				return fmt.Errorf("failed to load tasks for project %s: %w", p.ID, err)
			}
			perProject[i] = tasks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if projects == nil {
		projects = []*domain.Project{}
	}
	tasks := []*domain.Task{}
	for _, ts := range perProject {
		tasks = append(tasks, ts...)
	}
	return projects, tasks, nil
}

// Hash returns the SHA-256 hex digest of the projects and tasks as JSON.
// Fields are encoded in declaration order, so equal data gives an equal
// digest. Nil and empty lists hash the same.
func Hash(projects []*domain.Project, tasks []*domain.Task) (string, error) {
	if projects == nil {
		projects = []*domain.Project{}
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	data, err := json.Marshal(struct {
		Projects []*domain.Project `json:"projects"`
		Tasks    []*domain.Task    `json:"tasks"`
	}{projects, tasks})
	if err != nil {
		return "", fmt.Errorf("failed to encode backup data: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// unchanged reports whether the stored checksum equals hash. A missing or
// unreadable checksum counts as changed.
func (s *Service) unchanged(ctx context.Context, hash string) bool {
	prev, err := s.blobs.Download(ctx, ChecksumFile)
	if err != nil {
		if !errors.Is(err, ports.ErrBlobNotFound) {
			s.logger.WithError(err).Warn("failed to read backup checksum")
		}
		return false
	}
	return string(bytes.TrimSpace(prev)) == hash
}

// prune deletes the oldest snapshots until at most retention remain.
func (s *Service) prune(ctx context.Context) (int, error) {
	blobs, err := s.blobs.List(ctx, filePrefix, ports.SortAscending)
	if err != nil {
		return 0, err
	}

	var snapshots []string
	for _, b := range blobs {
		if IsSnapshot(b.Name) {
			snapshots = append(snapshots, b.Name)
		}
	}
	if len(snapshots) <= s.retention {
		return 0, nil
	}

	stale := snapshots[:len(snapshots)-s.retention]
	if err := s.blobs.Remove(ctx, stale); err != nil {
		return 0, err
	}
	return len(stale), nil
}

// List returns snapshots newest first. Counts are -1 because they are
// only known after downloading a snapshot.
func (s *Service) List(ctx context.Context) ([]domain.BackupMetadata, error) {
	blobs, err := s.blobs.List(ctx, filePrefix, ports.SortDescending)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	out := []domain.BackupMetadata{}
	for _, b := range blobs {
		if !IsSnapshot(b.Name) {
			continue
		}
		out = append(out, domain.BackupMetadata{
			Filename:     b.Name,
			Size:         b.Size,
			CreatedAt:    b.CreatedAt,
			ProjectCount: -1,
			TaskCount:    -1,
		})
	}
	return out, nil
}

func (s *Service) export(ctx context.Context, m *ports.BackupMetrics) {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.ExportBackupMetrics(ctx, m); err != nil {
		s.logger.WithError(err).Debug("failed to export backup metrics")
	}
}
