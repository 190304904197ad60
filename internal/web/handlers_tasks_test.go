package web

import (
	"net/http"
	"testing"

	"github.com/emiliopalmerini/mkanban/internal/board"
	"github.com/emiliopalmerini/mkanban/internal/domain"
)

func taskWithTitle(title string) domain.Task {
	return domain.Task{Title: title}
}

func titlesOf(tasks []*domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBoard_AddAndList(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, "Board")

	a := env.addTask(t, p.ID, taskWithTitle("A"))
	b := env.addTask(t, p.ID, taskWithTitle("B"))
	if *a.Order != 0 || *b.Order != 1 {
		t.Errorf("expected appended orders 0 and 1, got %d and %d", *a.Order, *b.Order)
	}

	var got boardResponse
	if code := env.do(t, http.MethodGet, "/api/projects/"+p.ID+"/tasks", nil, &got); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(got.Columns) != len(domain.Columns) {
		t.Errorf("expected %d columns, got %d", len(domain.Columns), len(got.Columns))
	}
	if !equalStrings(titlesOf(got.Tasks), []string{"A", "B"}) {
		t.Errorf("unexpected tasks %v", titlesOf(got.Tasks))
	}

	if code := env.do(t, http.MethodPost, "/api/projects/missing/tasks", taskWithTitle("x"), nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown project, got %d", code)
	}
	if code := env.do(t, http.MethodPost, "/api/projects/"+p.ID+"/tasks", domain.Task{Title: "x", Priority: "someday"}, nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad priority, got %d", code)
	}
}

func TestBoard_Save(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, "Board")
	a := env.addTask(t, p.ID, taskWithTitle("A"))
	env.addTask(t, p.ID, taskWithTitle("B"))
	c := env.addTask(t, p.ID, taskWithTitle("C"))

	var saved saveBoardResponse
	path := "/api/projects/" + p.ID + "/tasks"
	if code := env.do(t, http.MethodPut, path, saveBoardRequest{Tasks: []*domain.Task{c, a}}, &saved); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !equalStrings(titlesOf(saved.Tasks), []string{"C", "A"}) {
		t.Errorf("unexpected board %v", titlesOf(saved.Tasks))
	}
	if saved.Result.Deleted != 1 {
		t.Errorf("expected B deleted, got %+v", saved.Result)
	}

	var empty saveBoardResponse
	if code := env.do(t, http.MethodPut, path, saveBoardRequest{}, &empty); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if empty.Result.Warning != board.EmptyListWarning || len(empty.Tasks) != 2 {
		t.Errorf("empty save should warn and keep tasks, got %+v", empty)
	}

	if code := env.do(t, http.MethodPut, path, saveBoardRequest{Tasks: []*domain.Task{a, a}}, nil); code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate task, got %d", code)
	}

	other := env.createProject(t, "Other")
	if code := env.do(t, http.MethodPut, "/api/projects/"+other.ID+"/tasks", saveBoardRequest{Tasks: []*domain.Task{a}}, nil); code != http.StatusConflict {
		t.Errorf("expected 409 for foreign task, got %d", code)
	}
}

func TestBoard_Move(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, "Board")
	env.addTask(t, p.ID, taskWithTitle("A"))
	b := env.addTask(t, p.ID, taskWithTitle("B"))

	var moved saveBoardResponse
	path := "/api/projects/" + p.ID + "/tasks/move"
	mv := board.Move{TaskID: b.ID, Column: domain.ColumnDone, Index: 0}
	if code := env.do(t, http.MethodPost, path, mv, &moved); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	col, idx, ok := board.Position(moved.Tasks, b.ID)
	if !ok || col != domain.ColumnDone || idx != 0 {
		t.Errorf("unexpected position %s/%d/%v", col, idx, ok)
	}

	if code := env.do(t, http.MethodPost, path, board.Move{TaskID: b.ID, Column: "backlog"}, nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown column, got %d", code)
	}
	if code := env.do(t, http.MethodPost, path, board.Move{TaskID: "missing", Column: domain.ColumnDone}, nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown task, got %d", code)
	}
}

func TestTasks_GetUpdateDelete(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, "Board")
	a := env.addTask(t, p.ID, taskWithTitle("A"))

	edit := *a
	edit.Title = "A2"
	edit.Tags = []string{"frontend"}
	var updated domain.Task
	if code := env.do(t, http.MethodPut, "/api/tasks/"+a.ID, edit, &updated); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if updated.Title != "A2" || len(updated.Tags) != 1 || !updated.CreatedAt.Equal(a.CreatedAt) {
		t.Errorf("unexpected update %+v", updated)
	}

	var got domain.Task
	if code := env.do(t, http.MethodGet, "/api/tasks/"+a.ID, nil, &got); code != http.StatusOK || got.Title != "A2" {
		t.Errorf("unexpected get %d %+v", code, got)
	}

	if code := env.do(t, http.MethodDelete, "/api/tasks/"+a.ID, nil, nil); code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
	if code := env.do(t, http.MethodDelete, "/api/tasks/"+a.ID, nil, nil); code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", code)
	}
	if code := env.do(t, http.MethodGet, "/api/tasks/"+a.ID, nil, nil); code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", code)
	}
}
