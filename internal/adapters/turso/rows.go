package turso

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/emiliopalmerini/mkanban/internal/domain"
	"github.com/emiliopalmerini/mkanban/internal/util"
)

const projectColumns = `id, name, created_at, updated_at`

const taskColumns = `id, project_id, title, description, priority, tags, prompt, attachments, status, "order", created_at, updated_at`

// projectRow mirrors the projects table column for column.
type projectRow struct {
	ID        string
	Name      string
	CreatedAt string
	UpdatedAt string
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (projectRow, error) {
	var row projectRow
	err := s.Scan(&row.ID, &row.Name, &row.CreatedAt, &row.UpdatedAt)
	return row, err
}

func projectFromRow(row projectRow) (*domain.Project, error) {
	createdAt, err := parseTime(row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: project %s created_at: %v", domain.ErrValidation, row.ID, err)
	}
	updatedAt, err := parseTime(row.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: project %s updated_at: %v", domain.ErrValidation, row.ID, err)
	}

	p := &domain.Project{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// taskRow mirrors the tasks table. Tags and attachments are JSON text.
type taskRow struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	Priority    string
	Tags        string
	Prompt      sql.NullString
	Attachments string
	Status      string
	Order       sql.NullInt64
	CreatedAt   string
	UpdatedAt   string
}

func scanTask(s scanner) (taskRow, error) {
	var row taskRow
	err := s.Scan(
		&row.ID, &row.ProjectID, &row.Title, &row.Description, &row.Priority,
		&row.Tags, &row.Prompt, &row.Attachments, &row.Status, &row.Order,
		&row.CreatedAt, &row.UpdatedAt,
	)
	return row, err
}

// taskFromRow rejects rows that do not satisfy the task schema instead of
// coercing them.
func taskFromRow(row taskRow) (*domain.Task, error) {
	t := &domain.Task{
		ID:          row.ID,
		ProjectID:   row.ProjectID,
		Title:       row.Title,
		Description: row.Description,
		Priority:    domain.Priority(row.Priority),
		Prompt:      util.NullStringToPtr(row.Prompt),
		Status:      domain.ColumnID(row.Status),
		Order:       util.NullInt64ToIntPtr(row.Order),
	}

	if err := json.Unmarshal([]byte(row.Tags), &t.Tags); err != nil {
		return nil, fmt.Errorf("%w: task %s tags: %v", domain.ErrValidation, row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.Attachments), &t.Attachments); err != nil {
		return nil, fmt.Errorf("%w: task %s attachments: %v", domain.ErrValidation, row.ID, err)
	}

	var err error
	if t.CreatedAt, err = parseTime(row.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: task %s created_at: %v", domain.ErrValidation, row.ID, err)
	}
	if t.UpdatedAt, err = parseTime(row.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: task %s updated_at: %v", domain.ErrValidation, row.ID, err)
	}

	t.Normalize()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func taskArgs(t *domain.Task) ([]any, error) {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	attachments := t.Attachments
	if attachments == nil {
		attachments = []domain.Attachment{}
	}
	attachmentsJSON, err := json.Marshal(attachments)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attachments: %w", err)
	}

	return []any{
		t.ID,
		t.ProjectID,
		t.Title,
		t.Description,
		string(t.Priority),
		string(tagsJSON),
		util.NullStringPtr(t.Prompt),
		string(attachmentsJSON),
		string(t.Status),
		util.NullIntPtr(t.Order),
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	}, nil
}

// timeLayout is fixed width so that text comparison in SQL matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
