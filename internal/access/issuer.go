package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lumapix/service/internal/storage"
)

// ArtifactKind distinguishes the two artifacts a photo owns. Thumbnails are
// lower-sensitivity previews; originals are the full uploaded bytes.
type ArtifactKind int

const (
	// Original is the unmodified uploaded image as stored.
	Original ArtifactKind = iota
	// Thumbnail is the derived, bounded-size JPEG preview.
	Thumbnail
)

// ErrDenied is returned when the decision grants no access. The caller maps
// it to 401 or 403 depending on whether any credential was presented.
var ErrDenied = errors.New("access denied")

// ErrStorageUnavailable is returned when the backend cannot produce a URL.
// Safe to retry; no state is affected.
var ErrStorageUnavailable = errors.New("storage backend unavailable")

// SignedLink is a deliverable redirect target. Transient: emitted as a
// redirect and discarded, never persisted. ExpiresAt is zero for permanent
// public URLs.
type SignedLink struct {
	URL       string
	ExpiresAt time.Time
}

// Issuer turns access decisions plus storage keys into deliverable URLs.
// It never fetches or proxies image bytes itself.
type Issuer struct {
	store storage.ObjectStore
	ttl   time.Duration
	now   func() time.Time
}

// NewIssuer creates an Issuer producing signed links valid for ttl.
func NewIssuer(store storage.ObjectStore, ttl time.Duration) *Issuer {
	return &Issuer{store: store, ttl: ttl, now: time.Now}
}

// WithClock substitutes the time source. Tests use this to pin expiries.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// IssueLink produces the URL a caller should be redirected to for one
// artifact.
//
// Thumbnails of public photos get a permanent public URL, safe to cache and
// share; a public URL is never issued for a private photo. Everything else
// gets a presigned URL whose expiry is freshly computed as now + ttl on
// every call; expiries are never cached or reused across requests. A Denied
// decision is refused before any storage interaction.
func (i *Issuer) IssueLink(ctx context.Context, decision Decision, key string, isPublic bool, kind ArtifactKind) (*SignedLink, error) {
	if !decision.Allowed() {
		return nil, ErrDenied
	}

	// PublicVisitor only ever arises from a public photo; a private artifact
	// requires Owner or SharedViewer standing.
	if !isPublic && decision == PublicVisitor {
		return nil, ErrDenied
	}

	if isPublic && kind == Thumbnail {
		return &SignedLink{URL: i.store.PublicURL(key)}, nil
	}

	expiresAt := i.now().Add(i.ttl)
	url, err := i.store.SignedURL(ctx, key, i.ttl)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &SignedLink{URL: url, ExpiresAt: expiresAt}, nil
}
