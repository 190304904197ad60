package ports

import (
	"context"

	"github.com/emiliopalmerini/mkanban/internal/domain"
)

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	// ListByProject returns the project's tasks by order ascending, nulls last.
	ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error)
	Upsert(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
	// DeleteMany removes the given ids and reports how many rows went away.
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}
