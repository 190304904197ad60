package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/emiliopalmerini/mkanban/internal/domain"
)

const projectColumns = `id, name, created_at, updated_at`

// Enum columns are cast to text so they scan into plain strings.
const taskColumns = `id, project_id, title, description, priority::text, tags, prompt, attachments, status::text, "order", created_at, updated_at`

type projectRow struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func scanProject(row pgx.Row) (projectRow, error) {
	var r projectRow
	err := row.Scan(&r.ID, &r.Name, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func projectFromRow(r projectRow) (*domain.Project, error) {
	p := &domain.Project{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

type taskRow struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	Priority    string
	Tags        []string
	Prompt      pgtype.Text
	Attachments []byte
	Status      string
	Order       pgtype.Int4
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func scanTask(row pgx.Row) (taskRow, error) {
	var r taskRow
	err := row.Scan(
		&r.ID, &r.ProjectID, &r.Title, &r.Description, &r.Priority,
		&r.Tags, &r.Prompt, &r.Attachments, &r.Status, &r.Order,
		&r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func taskFromRow(r taskRow) (*domain.Task, error) {
	t := &domain.Task{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		Title:       r.Title,
		Description: r.Description,
		Priority:    domain.Priority(r.Priority),
		Tags:        r.Tags,
		Status:      domain.ColumnID(r.Status),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.Prompt.Valid {
		t.Prompt = domain.StringPtr(r.Prompt.String)
	}
	if r.Order.Valid {
		t.Order = domain.IntPtr(int(r.Order.Int32))
	}
	if err := json.Unmarshal(r.Attachments, &t.Attachments); err != nil {
		return nil, fmt.Errorf("%w: task %s attachments: %v", domain.ErrValidation, r.ID, err)
	}

	t.Normalize()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func taskArgs(t *domain.Task) ([]any, error) {
	c := t.Clone()
	attachments, err := json.Marshal(c.Attachments)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attachments: %w", err)
	}

	var order pgtype.Int4
	if v, ok := c.OrderValue(); ok {
		order = pgtype.Int4{Int32: int32(v), Valid: true}
	}
	var prompt pgtype.Text
	if c.Prompt != nil {
		prompt = pgtype.Text{String: *c.Prompt, Valid: true}
	}

	return []any{
		c.ID, c.ProjectID, c.Title, c.Description, string(c.Priority),
		c.Tags, prompt, string(attachments), string(c.Status), order,
		c.CreatedAt, c.UpdatedAt,
	}, nil
}
