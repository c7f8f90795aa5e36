// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup:
// the MinIO implementation works with any S3-compatible provider (MinIO,
// Aliyun OSS, AWS S3), and the in-memory implementation backs tests.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when an object does not exist at the given key.
var ErrNotFound = errors.New("object not found")

// ObjectStore is the interface for storing and serving image artifacts.
type ObjectStore interface {
	// Upload streams data to the store under the given key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Delete removes an object identified by key.
	Delete(ctx context.Context, key string) error
	// SignedURL issues a time-limited GET URL scoped to exactly one key.
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	// PublicURL constructs the permanent browser-accessible URL for a key.
	// Only safe to hand out for objects that are meant to be public.
	PublicURL(key string) string
	// Stat returns the stored object's size in bytes.
	Stat(ctx context.Context, key string) (int64, error)
}
