package backup

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/emiliopalmerini/mkanban/internal/domain"
)

// RestoreResult counts the records written and rejected by a restore.
type RestoreResult struct {
	ProjectsRestored int `json:"projectsRestored"`
	ProjectsFailed   int `json:"projectsFailed"`
	TasksRestored    int `json:"tasksRestored"`
	TasksFailed      int `json:"tasksFailed"`
}

// Restore upserts every record of a snapshot, projects before tasks.
// A record that fails validation or storage is counted and skipped.
func (s *Service) Restore(ctx context.Context, filename string) (*RestoreResult, error) {
	log := s.logger.WithField("filename", filename)

	if !IsSnapshot(filename) {
		return nil, fmt.Errorf("%w: %q is not a backup file", domain.ErrValidation, filename)
	}

	data, err := s.blobs.Download(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to download backup: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: failed to decode backup %s: %v", domain.ErrValidation, filename, err)
	}
	log.WithFields(logrus.Fields{
		"export_date": snap.ExportDate,
		"projects":    len(snap.Projects),
		"tasks":       len(snap.Tasks),
	}).Info("restoring backup")

	res := &RestoreResult{}
	for _, p := range snap.Projects {
		if p == nil {
			res.ProjectsFailed++
			continue
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = p.CreatedAt
		}
		if err := s.restoreProject(ctx, p); err != nil {
			log.WithError(err).WithField("project_id", p.ID).Warn("failed to restore project")
			res.ProjectsFailed++
			continue
		}
		res.ProjectsRestored++
	}

	for _, t := range snap.Tasks {
		if t == nil {
			res.TasksFailed++
			continue
		}
		t.Normalize()
		if t.UpdatedAt.IsZero() {
			t.UpdatedAt = t.CreatedAt
		}
		if err := s.restoreTask(ctx, t); err != nil {
			log.WithError(err).WithField("task_id", t.ID).Warn("failed to restore task")
			res.TasksFailed++
			continue
		}
		res.TasksRestored++
	}

	log.WithFields(logrus.Fields{
		"projects_restored": res.ProjectsRestored,
		"projects_failed":   res.ProjectsFailed,
		"tasks_restored":    res.TasksRestored,
		"tasks_failed":      res.TasksFailed,
	}).Info("restore complete")
	return res, nil
}

func (s *Service) restoreProject(ctx context.Context, p *domain.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.projects.Upsert(ctx, p)
}

func (s *Service) restoreTask(ctx context.Context, t *domain.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return s.tasks.Upsert(ctx, t)
}
