package turso_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/emiliopalmerini/mkanban/internal/adapters/turso"
	"github.com/emiliopalmerini/mkanban/internal/domain"
)

func TestProjectRepository_CreateGetList(t *testing.T) {
	db := testDB(t)
	repo := turso.NewProjectRepository(db)
	ctx := context.Background()

	older := seedProject(t, db, "Older", baseTime)
	newer := seedProject(t, db, "Newer", baseTime.Add(90*time.Millisecond))

	got, err := repo.GetByID(ctx, older.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil || got.Name != "Older" || !got.CreatedAt.Equal(baseTime) {
		t.Errorf("unexpected project: %+v", got)
	}

	missing, err := repo.GetByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("expected (nil, nil) for missing project, got (%v, %v)", missing, err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(list))
	}
	if list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Errorf("expected newest first, got %s then %s", list[0].Name, list[1].Name)
	}
}

func TestProjectRepository_UpdateAndUpsert(t *testing.T) {
	db := testDB(t)
	repo := turso.NewProjectRepository(db)
	ctx := context.Background()

	p := seedProject(t, db, "Draft", baseTime)
	if err := p.Rename("Final", baseTime.Add(time.Hour)); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if err := repo.Update(ctx, p); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, p.ID)
	if got.Name != "Final" || !got.UpdatedAt.Equal(baseTime.Add(time.Hour)) {
		t.Errorf("update not persisted: %+v", got)
	}

	ghost := &domain.Project{ID: "ghost", Name: "Ghost", CreatedAt: baseTime, UpdatedAt: baseTime}
	if err := repo.Update(ctx, ghost); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound updating missing project, got %v", err)
	}

	if err := repo.Upsert(ctx, ghost); err != nil {
		t.Fatalf("Upsert insert failed: %v", err)
	}
	ghost.Name = "Ghost 2"
	if err := repo.Upsert(ctx, ghost); err != nil {
		t.Fatalf("Upsert update failed: %v", err)
	}
	got, _ = repo.GetByID(ctx, "ghost")
	if got == nil || got.Name != "Ghost 2" {
		t.Errorf("expected upserted project, got %+v", got)
	}
}

func TestProjectRepository_DeleteRemovesTasks(t *testing.T) {
	db := testDB(t)
	projects := turso.NewProjectRepository(db)
	tasks := turso.NewTaskRepository(db)
	ctx := context.Background()

	p := seedProject(t, db, "Doomed", baseTime)
	keep := seedProject(t, db, "Keeper", baseTime)

	for _, pid := range []string{p.ID, p.ID, keep.ID} {
		if err := tasks.Upsert(ctx, domain.NewTask(pid, "work", baseTime)); err != nil {
			t.Fatalf("Upsert task failed: %v", err)
		}
	}

	if err := projects.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	left, err := tasks.ListByProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListByProject failed: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("expected tasks of deleted project to be gone, got %d", len(left))
	}
	kept, _ := tasks.ListByProject(ctx, keep.ID)
	if len(kept) != 1 {
		t.Errorf("expected other project's task to remain, got %d", len(kept))
	}

	if err := projects.Delete(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}
