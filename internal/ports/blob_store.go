package ports

import (
	"context"
	"errors"
	"time"
)

var (
	ErrBlobNotFound = errors.New("blob not found")
	ErrBlobExists   = errors.New("blob already exists")
)

type SortOrder int

const (
	SortAscending SortOrder = iota
	SortDescending
)

type BlobInfo struct {
	Name      string
	Size      int64
	CreatedAt time.Time
}

// BlobStore is a flat object store used for backup artifacts.
type BlobStore interface {
	// Upload writes data under path. With upsert=false an existing blob
	// is left alone and ErrBlobExists is returned.
	Upload(ctx context.Context, path string, data []byte, contentType string, upsert bool) error
	// List returns blobs whose name starts with prefix, sorted by creation time.
	List(ctx context.Context, prefix string, order SortOrder) ([]BlobInfo, error)
	// Download returns ErrBlobNotFound when path does not exist.
	Download(ctx context.Context, path string) ([]byte, error)
	Remove(ctx context.Context, paths []string) error
}
