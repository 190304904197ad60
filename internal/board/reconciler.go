package board

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/emiliopalmerini/mkanban/internal/domain"
)

// EmptyListWarning is reported when an empty list would wipe a non-empty project.
const EmptyListWarning = "empty task list for a project that has stored tasks; deletes skipped"

// Plan is the set of store mutations that makes a project match a desired list.
type Plan struct {
	Upserts []*domain.Task
	Deletes []string
	Warning string
}

func (p Plan) Empty() bool {
	return len(p.Upserts) == 0 && len(p.Deletes) == 0
}

// UpdatedAt is bumped by the writer, so it does not count as a change.
var taskComparer = cmpopts.IgnoreFields(domain.Task{}, "UpdatedAt")

// Reconcile assigns each desired task its list position as order and
// returns only the upserts that change a stored record, plus deletes for
// stored tasks missing from the list. Inputs are not modified.
func Reconcile(projectID string, desired, current []*domain.Task) (Plan, error) {
	stored := make(map[string]*domain.Task, len(current))
	for _, t := range current {
		stored[t.ID] = t
	}

	var plan Plan
	seen := make(map[string]bool, len(desired))
	for i, in := range desired {
		if seen[in.ID] {
			return Plan{}, fmt.Errorf("%w: %s", ErrDuplicateTask, in.ID)
		}
		seen[in.ID] = true

		t := in.Clone()
		if t.ProjectID == "" {
			t.ProjectID = projectID
		}
		if t.ProjectID != projectID {
			return Plan{}, fmt.Errorf("%w: task %s is in project %s, not %s", ErrForeignTask, t.ID, t.ProjectID, projectID)
		}
		t.Order = domain.IntPtr(i)
		if err := t.Validate(); err != nil {
			return Plan{}, err
		}

		if prev, ok := stored[t.ID]; ok && cmp.Equal(prev.Clone(), t, taskComparer) {
			continue
		}
		plan.Upserts = append(plan.Upserts, t)
	}

	if len(desired) == 0 && len(current) > 0 {
		plan.Warning = EmptyListWarning
		return plan, nil
	}

	for _, t := range current {
		if !seen[t.ID] {
			plan.Deletes = append(plan.Deletes, t.ID)
		}
	}
	return plan, nil
}
