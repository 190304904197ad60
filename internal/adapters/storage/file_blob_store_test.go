package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/emiliopalmerini/mkanban/internal/ports"
)

func TestFileBlobStore_UploadAndDownload(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBlobStore failed: %v", err)
	}

	if err := store.Upload(ctx, "backup-a.json", []byte(`{"a":1}`), "application/json", false); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	err = store.Upload(ctx, "backup-a.json", []byte(`{"a":2}`), "application/json", false)
	if !errors.Is(err, ports.ErrBlobExists) {
		t.Errorf("expected ErrBlobExists, got %v", err)
	}

	data, err := store.Download(ctx, "backup-a.json")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("expected original content, got %s", data)
	}

	if err := store.Upload(ctx, "latest-checksum.txt", []byte("one"), "text/plain", true); err != nil {
		t.Fatalf("Upload upsert failed: %v", err)
	}
	if err := store.Upload(ctx, "latest-checksum.txt", []byte("two"), "text/plain", true); err != nil {
		t.Fatalf("Upload overwrite failed: %v", err)
	}
	data, _ = store.Download(ctx, "latest-checksum.txt")
	if string(data) != "two" {
		t.Errorf("expected overwritten content, got %s", data)
	}

	if _, err := store.Download(ctx, "missing.json"); !errors.Is(err, ports.ErrBlobNotFound) {
		t.Errorf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestFileBlobStore_ListOrderAndPrefix(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileBlobStore(dir)
	if err != nil {
		t.Fatalf("NewFileBlobStore failed: %v", err)
	}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"backup-2.json", "backup-1.json", "backup-3.json", "latest-checksum.txt"} {
		if err := store.Upload(ctx, name, []byte("x"), "application/json", false); err != nil {
			t.Fatalf("Upload failed: %v", err)
		}
		mod := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(filepath.Join(dir, name), mod, mod); err != nil {
			t.Fatalf("Chtimes failed: %v", err)
		}
	}

	asc, err := store.List(ctx, "backup-", ports.SortAscending)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"backup-2.json", "backup-1.json", "backup-3.json"}
	if len(asc) != len(want) {
		t.Fatalf("expected %d blobs, got %d", len(want), len(asc))
	}
	for i, name := range want {
		if asc[i].Name != name {
			t.Errorf("asc[%d] = %s, want %s", i, asc[i].Name, name)
		}
	}

	desc, _ := store.List(ctx, "backup-", ports.SortDescending)
	if desc[0].Name != "backup-3.json" || desc[2].Name != "backup-2.json" {
		t.Errorf("unexpected descending order: %v", desc)
	}
}

func TestFileBlobStore_Remove(t *testing.T) {
	ctx := context.Background()
	store, _ := NewFileBlobStore(t.TempDir())
	_ = store.Upload(ctx, "a.json", []byte("x"), "", false)

	if err := store.Remove(ctx, []string{"a.json", "never-existed.json"}); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := store.Download(ctx, "a.json"); !errors.Is(err, ports.ErrBlobNotFound) {
		t.Errorf("expected blob to be gone, got %v", err)
	}
}

func TestFileBlobStore_RejectsPathEscapes(t *testing.T) {
	ctx := context.Background()
	store, _ := NewFileBlobStore(t.TempDir())

	for _, name := range []string{"../x.json", "sub/x.json", "", ".hidden"} {
		if err := store.Upload(ctx, name, []byte("x"), "", true); err == nil {
			t.Errorf("expected error for name %q", name)
		}
	}
}

func TestNewFileBlobStore_DefaultsToXDGDir(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	store, err := NewFileBlobStore("")
	if err != nil {
		t.Fatalf("NewFileBlobStore failed: %v", err)
	}
	want := filepath.Join(dataHome, "mkanban", "backups")
	if store.baseDir != want {
		t.Errorf("expected %s, got %s", want, store.baseDir)
	}
}
