// Package artifact manages the lifecycle of stored image artifact pairs:
// the only path by which an original/thumbnail pair enters or leaves the
// object store.
package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/lumapix/service/internal/storage"
	"github.com/lumapix/service/internal/thumbnail"
)

// Storage key namespaces. An original and its thumbnail share an identifier
// and differ only in prefix (and the thumbnail is always JPEG).
const (
	originalPrefix  = "photos/"
	thumbnailPrefix = "thumbnails/"
)

// ErrInvalidFileType mirrors thumbnail.ErrInvalidFileType at this package's
// boundary so callers depend on one error surface.
var ErrInvalidFileType = thumbnail.ErrInvalidFileType

// ErrUploadFailed is returned when the storage backend rejected the original
// or thumbnail write.
var ErrUploadFailed = errors.New("upload to storage failed")

// ErrThumbnailGeneration is returned when decode/resize/encode failed. The
// already-stored original has been removed by the time this is returned.
var ErrThumbnailGeneration = errors.New("thumbnail generation failed")

// StorageDescriptor locates a freshly stored artifact pair. It is transient:
// the caller persists it into a photo record, the coordinator never does.
type StorageDescriptor struct {
	OriginalKey  string
	ThumbnailKey string
	ByteSize     int64
	MimeType     string
}

// Coordinator orchestrates validation, original storage, thumbnail
// derivation, and thumbnail storage.
type Coordinator struct {
	store             storage.ObjectStore
	allowedExtensions []string
	thumbMaxWidth     int
	thumbMaxHeight    int
}

// NewCoordinator creates a Coordinator writing through the given store.
func NewCoordinator(store storage.ObjectStore, allowedExtensions []string, thumbMaxWidth, thumbMaxHeight int) *Coordinator {
	return &Coordinator{
		store:             store,
		allowedExtensions: allowedExtensions,
		thumbMaxWidth:     thumbMaxWidth,
		thumbMaxHeight:    thumbMaxHeight,
	}
}

// Upload validates the declared filename, stores the raw bytes, derives a
// thumbnail, stores it, and returns the resulting descriptor.
//
// Every call produces a fresh key pair, even for byte-identical input; the
// keys are derived from a random identifier, never from the caller-supplied
// filename. On any failure after the original write, the original is deleted
// so no orphaned artifact survives without a record.
func (c *Coordinator) Upload(ctx context.Context, data []byte, filename string) (*StorageDescriptor, error) {
	if !thumbnail.AllowedExtension(filename, c.allowedExtensions) {
		return nil, ErrInvalidFileType
	}

	ext := strings.ToLower(filepath.Ext(filename))
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id := uuid.NewString()
	originalKey := originalPrefix + id + ext
	thumbnailKey := thumbnailPrefix + id + ".jpg"

	// The original must be durably stored before any thumbnail work begins.
	if err := c.store.Upload(ctx, originalKey, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, fmt.Errorf("%w: store original: %v", ErrUploadFailed, err)
	}

	thumb, err := thumbnail.Generate(data, c.thumbMaxWidth, c.thumbMaxHeight)
	if err != nil {
		c.removeOrphan(ctx, originalKey)
		return nil, fmt.Errorf("%w: %w", ErrThumbnailGeneration, err)
	}

	if err := c.store.Upload(ctx, thumbnailKey, bytes.NewReader(thumb), int64(len(thumb)), "image/jpeg"); err != nil {
		c.removeOrphan(ctx, originalKey)
		return nil, fmt.Errorf("%w: store thumbnail: %v", ErrUploadFailed, err)
	}

	return &StorageDescriptor{
		OriginalKey:  originalKey,
		ThumbnailKey: thumbnailKey,
		ByteSize:     int64(len(data)),
		MimeType:     contentType,
	}, nil
}

// removeOrphan deletes a half-written original. Best effort: a failure here
// leaves a dangling object, which is preferable to masking the upload error.
func (c *Coordinator) removeOrphan(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		log.Printf("artifact: failed to clean up orphaned original %q: %v", key, err)
	}
}
