package board

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/emiliopalmerini/mkanban/internal/domain"
	"github.com/emiliopalmerini/mkanban/internal/ports"
)

// Result summarizes what a save wrote.
type Result struct {
	Upserted int    `json:"upserted"`
	Deleted  int64  `json:"deleted"`
	Warning  string `json:"warning,omitempty"`
}

// Service persists boards through the reconciler.
type Service struct {
	projects ports.ProjectRepository
	tasks    ports.TaskRepository
	logger   logrus.FieldLogger
	now      func() time.Time
}

func NewService(projects ports.ProjectRepository, tasks ports.TaskRepository, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		projects: projects,
		tasks:    tasks,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) requireProject(ctx context.Context, projectID string) (*domain.Project, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}
	return p, nil
}

// Board returns the project's tasks in display order.
func (s *Service) Board(ctx context.Context, projectID string) ([]*domain.Task, error) {
	if _, err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.tasks.ListByProject(ctx, projectID)
}

// Save makes the stored tasks of projectID match desired: order follows
// list position, changed tasks are upserted and missing ones deleted.
func (s *Service) Save(ctx context.Context, projectID string, desired []*domain.Task) (Result, error) {
	log := s.logger.WithField("project_id", projectID)

	if _, err := s.requireProject(ctx, projectID); err != nil {
		log.WithError(err).Error("refusing to save board")
		return Result{}, err
	}

	current, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return Result{}, err
	}

	stored := make(map[string]*domain.Task, len(current))
	for _, t := range current {
		stored[t.ID] = t
	}

	now := s.now()
	prepared := make([]*domain.Task, len(desired))
	for i, t := range desired {
		t = t.Clone()
		if existing, ok := stored[t.ID]; ok {
			// Creation time belongs to the stored record.
			t.CreatedAt = existing.CreatedAt
		} else if t.ID == "" {
			t.ID = uuid.NewString()
		} else if err := s.checkNotForeign(ctx, projectID, t.ID); err != nil {
			return Result{}, err
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		prepared[i] = t
	}

	plan, err := Reconcile(projectID, prepared, current)
	if err != nil {
		return Result{}, err
	}
	if plan.Warning != "" {
		log.WithField("stored_tasks", len(current)).Warn(plan.Warning)
	}

	for _, t := range plan.Upserts {
		t.UpdatedAt = now
		if err := s.tasks.Upsert(ctx, t); err != nil {
			return Result{}, err
		}
	}

	deleted, err := s.tasks.DeleteMany(ctx, plan.Deletes)
	if err != nil {
		return Result{}, err
	}

	res := Result{Upserted: len(plan.Upserts), Deleted: deleted, Warning: plan.Warning}
	log.WithFields(logrus.Fields{"upserted": res.Upserted, "deleted": res.Deleted}).Debug("board saved")
	return res, nil
}

// checkNotForeign rejects ids that already exist under another project.
func (s *Service) checkNotForeign(ctx context.Context, projectID, taskID string) error {
	existing, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if existing != nil && existing.ProjectID != projectID {
		return fmt.Errorf("%w: task %s is in project %s", ErrForeignTask, taskID, existing.ProjectID)
	}
	return nil
}

// Move applies a drag-and-drop and saves the resulting board.
func (s *Service) Move(ctx context.Context, projectID string, mv Move) ([]*domain.Task, Result, error) {
	current, err := s.Board(ctx, projectID)
	if err != nil {
		return nil, Result{}, err
	}

	next, changed, err := ApplyMove(current, mv)
	if err != nil {
		return nil, Result{}, err
	}
	if !changed {
		return next, Result{}, nil
	}

	res, err := s.Save(ctx, projectID, next)
	if err != nil {
		return nil, Result{}, err
	}
	saved, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, Result{}, err
	}
	return saved, res, nil
}
