package ports

import (
	"context"

	"github.com/emiliopalmerini/mkanban/internal/domain"
)

type LLMRequest struct {
	System  string
	Content []domain.ContentBlock
}

// LLMTransport is one strategy for reaching the model. Attempt is called
// at most once per request.
type LLMTransport interface {
	Name() string
	Attempt(ctx context.Context, req LLMRequest) (string, error)
}
