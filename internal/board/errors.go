package board

import (
	"errors"
	"fmt"

	"github.com/emiliopalmerini/mkanban/internal/domain"
)

var (
	ErrProjectNotFound = fmt.Errorf("project %w", domain.ErrNotFound)
	ErrTaskNotFound    = fmt.Errorf("task %w", domain.ErrNotFound)

	// ErrForeignTask marks a task that belongs to a different project than
	// the one being saved.
	ErrForeignTask = errors.New("task belongs to another project")
	// ErrDuplicateTask marks a task id that appears twice in one list.
	ErrDuplicateTask = errors.New("duplicate task in list")
)
