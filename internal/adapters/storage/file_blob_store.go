package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/emiliopalmerini/mkanban/internal/ports"
	"github.com/emiliopalmerini/mkanban/internal/util"
)

// FileBlobStore keeps blobs as flat files in one directory.
type FileBlobStore struct {
	baseDir string
}

// NewFileBlobStore uses dir, or <XDG data>/backups when dir is empty.
func NewFileBlobStore(dir string) (*FileBlobStore, error) {
	if dir == "" {
		dataDir, err := util.GetXDGDataDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(dataDir, "backups")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backups directory: %w", err)
	}

	return &FileBlobStore{baseDir: dir}, nil
}

func (s *FileBlobStore) Upload(ctx context.Context, name string, data []byte, contentType string, upsert bool) error {
	path, err := s.getPath(name)
	if err != nil {
		return err
	}

	if !upsert {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s: %w", name, ports.ErrBlobExists)
		}
		if err != nil {
			return fmt.Errorf("failed to create blob: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write blob: %w", err)
		}
		return f.Close()
	}

	// Write then rename so readers never see a half-written file.
	tmp, err := os.CreateTemp(s.baseDir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move blob into place: %w", err)
	}
	return nil
}

// List sorts by modification time, then name. Hidden files are skipped.
func (s *FileBlobStore) List(ctx context.Context, prefix string, order ports.SortOrder) ([]ports.BlobInfo, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backups directory: %w", err)
	}

	var blobs []ports.BlobInfo
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasPrefix(name, prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", name, err)
		}
		blobs = append(blobs, ports.BlobInfo{
			Name:      name,
			Size:      info.Size(),
			CreatedAt: info.ModTime().UTC(),
		})
	}

	sort.Slice(blobs, func(i, j int) bool {
		a, b := blobs[i], blobs[j]
		if order == ports.SortDescending {
			a, b = b, a
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Name < b.Name
	})
	return blobs, nil
}

func (s *FileBlobStore) Download(ctx context.Context, name string) ([]byte, error) {
	path, err := s.getPath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ports.ErrBlobNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

// Remove ignores names that are already gone.
func (s *FileBlobStore) Remove(ctx context.Context, names []string) error {
	var errs []error
	for _, name := range names {
		path, err := s.getPath(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (s *FileBlobStore) getPath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid blob name %q", name)
	}
	return filepath.Join(s.baseDir, name), nil
}
