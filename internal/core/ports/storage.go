// internal/core/ports/storage.go
package ports

import (
	"context"
	"io"
	"time"
)

// StoredObject describes a stored file
type StoredObject struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// FileStore keeps uploaded import files and generated exports
type FileStore interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	// PresignedURL returns a time-limited download link for key.
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	List(ctx context.Context, prefix string) ([]StoredObject, error)
}
