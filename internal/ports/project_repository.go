package ports

import (
	"context"

	"github.com/emiliopalmerini/mkanban/internal/domain"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	// List returns projects newest first.
	List(ctx context.Context) ([]*domain.Project, error)
	Update(ctx context.Context, project *domain.Project) error
	Upsert(ctx context.Context, project *domain.Project) error
	// Delete removes the project and all of its tasks.
	Delete(ctx context.Context, id string) error
}
