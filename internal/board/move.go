package board

import (
	"fmt"
	"slices"

	"github.com/emiliopalmerini/mkanban/internal/domain"
)

// Move is one drag-and-drop: put TaskID at Index among the tasks of Column.
type Move struct {
	TaskID string          `json:"taskId"`
	Column domain.ColumnID `json:"column"`
	Index  int             `json:"index"`
}

// Position reports a task's column and its index among that column's tasks.
func Position(tasks []*domain.Task, taskID string) (domain.ColumnID, int, bool) {
	counts := make(map[domain.ColumnID]int)
	for _, t := range tasks {
		if t.ID == taskID {
			return t.Status, counts[t.Status], true
		}
		counts[t.Status]++
	}
	return "", 0, false
}

// ApplyMove returns a new flat list with the move applied and whether
// anything changed. The task's new flat position is found by walking the
// list and counting only tasks already in the destination column.
func ApplyMove(tasks []*domain.Task, mv Move) ([]*domain.Task, bool, error) {
	if !mv.Column.Valid() {
		return nil, false, fmt.Errorf("%w: unknown column %q", domain.ErrValidation, mv.Column)
	}
	if mv.Index < 0 {
		return nil, false, fmt.Errorf("%w: negative index %d", domain.ErrValidation, mv.Index)
	}

	col, idx, ok := Position(tasks, mv.TaskID)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrTaskNotFound, mv.TaskID)
	}

	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Clone())
	}
	if col == mv.Column && idx == mv.Index {
		return out, false, nil
	}

	from := slices.IndexFunc(out, func(t *domain.Task) bool { return t.ID == mv.TaskID })
	moved := out[from]
	out = slices.Delete(out, from, from+1)
	moved.Status = mv.Column

	at, seen := 0, 0
	for i, t := range out {
		if t.Status == mv.Column {
			if seen == mv.Index {
				at = i
				break
			}
			seen++
		}
		at = i + 1
	}

	return slices.Insert(out, at, moved), true, nil
}
