package board

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/mkanban/internal/domain"
)

func (s *Service) ListProjects(ctx context.Context) ([]*domain.Project, error) {
	return s.projects.List(ctx)
}

func (s *Service) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	return s.requireProject(ctx, id)
}

func (s *Service) CreateProject(ctx context.Context, name string) (*domain.Project, error) {
	p, err := domain.NewProject(name, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.WithField("project_id", p.ID).Info("project created")
	return p, nil
}

func (s *Service) RenameProject(ctx context.Context, id, name string) (*domain.Project, error) {
	p, err := s.requireProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Rename(name, s.now()); err != nil {
		return nil, err
	}
	if err := s.projects.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProject removes the project together with its tasks.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if _, err := s.requireProject(ctx, id); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("project_id", id).Info("project deleted")
	return nil
}

// AddTask appends a task to the end of its project's order.
func (s *Service) AddTask(ctx context.Context, projectID string, task *domain.Task) (*domain.Task, error) {
	if _, err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	current, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	t := task.Clone()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.ProjectID != "" && t.ProjectID != projectID {
		return nil, fmt.Errorf("%w: task %s is in project %s", ErrForeignTask, t.ID, t.ProjectID)
	}
	t.ProjectID = projectID
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	}
	if t.Status == "" {
		t.Status = domain.ColumnPlanning
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	t.Order = domain.IntPtr(len(current))

	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkNotForeign(ctx, projectID, t.ID); err != nil {
		return nil, err
	}
	if err := s.tasks.Upsert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return t, nil
}

// UpdateTask replaces a stored task. The id, project and creation time
// of the stored record are kept, and so is its order when none is given.
func (s *Service) UpdateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	existing, err := s.GetTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	t := task.Clone()
	t.ProjectID = existing.ProjectID
	t.CreatedAt = existing.CreatedAt
	if t.Order == nil {
		t.Order = existing.Order
	}
	t.UpdatedAt = s.now()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.tasks.Upsert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// SetPrompt stores a generated prompt on the task.
func (s *Service) SetPrompt(ctx context.Context, taskID, prompt string) (*domain.Task, error) {
	t, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	t.Prompt = domain.StringPtr(prompt)
	return s.UpdateTask(ctx, t)
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	return s.tasks.Delete(ctx, id)
}
