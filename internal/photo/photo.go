// Package photo manages photo records and the request paths that gate
// access to their stored artifacts.
package photo

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Photo represents one uploaded image and its metadata. The storage keys are
// set once at upload and never renamed; both are non-empty on every persisted
// record.
type Photo struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"-"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	TakenOn      string    `json:"date"` // YYYY-MM-DD, caller-supplied
	IsPublic     bool      `json:"isPublic"`
	OriginalKey  string    `json:"-"`
	ThumbnailKey string    `json:"-"`
	ByteSize     int64     `json:"-"`
	Size         string    `json:"size"` // human-readable, derived from ByteSize
	FileName     string    `json:"fileName"`
	MimeType     string    `json:"mimeType"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ErrNotFound is returned when a photo does not exist, or exists but the
// caller has no standing to know that it does.
var ErrNotFound = errors.New("photo not found")

// ListParams control pagination and ordering of photo listings.
type ListParams struct {
	Page  int
	Size  int
	Sort  string // "date", "title", or "size"
	Order string // "asc" or "desc"
}

// Normalize clamps paging values and falls back to default ordering.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 || p.Size > 100 {
		p.Size = 10
	}
	switch p.Sort {
	case "date", "title", "size":
	default:
		p.Sort = "date"
	}
	if p.Order != "asc" {
		p.Order = "desc"
	}
	return p
}

// Page is one page of a photo listing.
type Page struct {
	Photos []*Photo `json:"photos"`
	Page   int      `json:"page"`
	Size   int      `json:"size"`
	Total  int      `json:"total"`
	Pages  int      `json:"pages"`
}

// OwnerStats summarizes one user's library for the dashboard.
type OwnerStats struct {
	TotalPhotos   int    `json:"totalPhotos"`
	PublicPhotos  int    `json:"publicPhotos"`
	PrivatePhotos int    `json:"privatePhotos"`
	ThisMonth     int    `json:"thisMonth"`
	TotalBytes    int64  `json:"-"`
	TotalSize     string `json:"totalSize"`
	StorageUsed   string `json:"storageUsed"`
	StorageLimit  string `json:"storageLimit"`
}

// Repository is the metadata store consumed by the service. The postgres
// implementation lives in this package; tests substitute an in-memory fake.
type Repository interface {
	Create(ctx context.Context, p *Photo) (*Photo, error)
	GetByID(ctx context.Context, id string) (*Photo, error)
	ListByOwner(ctx context.Context, ownerID string, params ListParams) (*Page, error)
	ListPublic(ctx context.Context, params ListParams) (*Page, error)
	Update(ctx context.Context, p *Photo) (*Photo, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, ownerID string) (*OwnerStats, error)
}

// SizeString renders a byte count the way the dashboard displays it.
func SizeString(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}
