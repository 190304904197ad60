package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ColumnID identifies one of the fixed kanban stages.
type ColumnID string

const (
	ColumnPlanning    ColumnID = "planning"
	ColumnError       ColumnID = "error"
	ColumnInProgress  ColumnID = "in-progress"
	ColumnHumanReview ColumnID = "human-review"
	ColumnAIReview    ColumnID = "ai-review"
	ColumnToVerify    ColumnID = "to-verify"
	ColumnDone        ColumnID = "done"
)

type Column struct {
	ID    ColumnID `json:"id"`
	Title string   `json:"title"`
}

// Columns lists the board stages in display order.
var Columns = []Column{
	{ID: ColumnPlanning, Title: "Planning"},
	{ID: ColumnError, Title: "Error to Fix"},
	{ID: ColumnInProgress, Title: "In Progress"},
	{ID: ColumnHumanReview, Title: "Human Review"},
	{ID: ColumnAIReview, Title: "AI Review"},
	{ID: ColumnToVerify, Title: "To Verify"},
	{ID: ColumnDone, Title: "Done"},
}

func (c ColumnID) Valid() bool {
	return slices.ContainsFunc(Columns, func(col Column) bool { return col.ID == c })
}

// ParseColumnID rejects anything outside the closed set of columns.
func ParseColumnID(s string) (ColumnID, error) {
	c := ColumnID(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown column %q", ErrValidation, s)
	}
	return c, nil
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: unknown priority %q", ErrValidation, s)
	}
	return p, nil
}

type AttachmentType string

const (
	AttachmentFile  AttachmentType = "file"
	AttachmentImage AttachmentType = "image"
)

// Attachment is owned by exactly one task and is stored inline with it.
// URL is either a base64 data-URI or a storage URL.
type Attachment struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Type AttachmentType `json:"type"`
	URL  string         `json:"url"`
}

type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    Priority     `json:"priority"`
	Tags        []string     `json:"tags"`
	Prompt      *string      `json:"prompt,omitempty"`
	Attachments []Attachment `json:"attachments"`
	Status      ColumnID     `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	ProjectID   string       `json:"projectId"`
	Order       *int         `json:"order,omitempty"`
}

// NewTask builds a task with defaults for the optional fields.
func NewTask(projectID, title string, now time.Time) *Task {
	now = now.UTC()
	return &Task{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(title),
		Priority:    PriorityMedium,
		Tags:        []string{},
		Attachments: []Attachment{},
		Status:      ColumnPlanning,
		CreatedAt:   now,
		UpdatedAt:   now,
		ProjectID:   projectID,
	}
}

func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: task id is required", ErrValidation)
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: task %s has no title", ErrValidation, t.ID)
	}
	if t.ProjectID == "" {
		return fmt.Errorf("%w: task %s has no project", ErrValidation, t.ID)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("%w: task %s has unknown priority %q", ErrValidation, t.ID, t.Priority)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: task %s has unknown status %q", ErrValidation, t.ID, t.Status)
	}
	for _, a := range t.Attachments {
		if a.Type != AttachmentFile && a.Type != AttachmentImage {
			return fmt.Errorf("%w: attachment %s of task %s has unknown type %q", ErrValidation, a.ID, t.ID, a.Type)
		}
	}
	return nil
}

// Normalize replaces nil collections with empty ones so that
// serialized tasks are stable regardless of where they were loaded from.
func (t *Task) Normalize() {
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.Attachments == nil {
		t.Attachments = []Attachment{}
	}
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	c.Tags = slices.Clone(t.Tags)
	c.Attachments = slices.Clone(t.Attachments)
	if t.Prompt != nil {
		p := *t.Prompt
		c.Prompt = &p
	}
	if t.Order != nil {
		o := *t.Order
		c.Order = &o
	}
	c.Normalize()
	return &c
}

// OrderValue returns the order key and whether one is set.
func (t *Task) OrderValue() (int, bool) {
	if t.Order == nil {
		return 0, false
	}
	return *t.Order, true
}

func IntPtr(i int) *int {
	return &i
}

func StringPtr(s string) *string {
	return &s
}
