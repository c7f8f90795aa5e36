package access_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumapix/service/internal/access"
	"github.com/lumapix/service/internal/storage"
)

func storeWithObject(t *testing.T, key string) *storage.MemoryStore {
	t.Helper()
	store := storage.NewMemoryStore()
	data := []byte("image bytes")
	require.NoError(t, store.Upload(context.Background(), key, bytes.NewReader(data), int64(len(data)), "image/jpeg"))
	return store
}

func TestIssueLinkDeniedNeverTouchesStorage(t *testing.T) {
	store := storeWithObject(t, "photos/a.jpg")
	issuer := access.NewIssuer(store, time.Hour)
	putCalls, signCalls := store.PutCalls, store.SignCalls

	_, err := issuer.IssueLink(context.Background(), access.Denied, "photos/a.jpg", false, access.Original)
	require.Error(t, err)
	assert.ErrorIs(t, err, access.ErrDenied)
	assert.Equal(t, putCalls, store.PutCalls)
	assert.Equal(t, signCalls, store.SignCalls)
}

func TestIssueLinkSignedForPrivateOriginal(t *testing.T) {
	store := storeWithObject(t, "photos/a.jpg")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := access.NewIssuer(store, time.Hour).WithClock(func() time.Time { return base })

	for _, decision := range []access.Decision{access.Owner, access.SharedViewer} {
		link, err := issuer.IssueLink(context.Background(), decision, "photos/a.jpg", false, access.Original)
		require.NoError(t, err)
		assert.NotEmpty(t, link.URL)
		assert.Equal(t, base.Add(time.Hour), link.ExpiresAt)
	}
	assert.Equal(t, 2, store.SignCalls)
}

func TestIssueLinkExpiryIsFreshPerCall(t *testing.T) {
	store := storeWithObject(t, "photos/a.jpg")
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := access.NewIssuer(store, time.Hour).WithClock(func() time.Time { return clock })

	first, err := issuer.IssueLink(context.Background(), access.Owner, "photos/a.jpg", false, access.Original)
	require.NoError(t, err)

	clock = clock.Add(time.Minute)
	second, err := issuer.IssueLink(context.Background(), access.Owner, "photos/a.jpg", false, access.Original)
	require.NoError(t, err)

	assert.Equal(t, time.Minute, second.ExpiresAt.Sub(first.ExpiresAt),
		"two calls a minute apart must not share an expiry")
}

func TestIssueLinkPublicThumbnailGetsPermanentURL(t *testing.T) {
	store := storeWithObject(t, "thumbnails/a.jpg")
	issuer := access.NewIssuer(store, time.Hour)

	link, err := issuer.IssueLink(context.Background(), access.PublicVisitor, "thumbnails/a.jpg", true, access.Thumbnail)
	require.NoError(t, err)
	assert.Equal(t, store.PublicURL("thumbnails/a.jpg"), link.URL)
	assert.True(t, link.ExpiresAt.IsZero(), "public URLs carry no expiry")
	assert.Equal(t, 0, store.SignCalls)
}

func TestIssueLinkPublicOriginalIsSigned(t *testing.T) {
	store := storeWithObject(t, "photos/a.jpg")
	issuer := access.NewIssuer(store, time.Hour)

	link, err := issuer.IssueLink(context.Background(), access.PublicVisitor, "photos/a.jpg", true, access.Original)
	require.NoError(t, err)
	assert.False(t, link.ExpiresAt.IsZero())
	assert.Equal(t, 1, store.SignCalls)
}

func TestIssueLinkNeverIssuesPublicURLForPrivatePhoto(t *testing.T) {
	store := storeWithObject(t, "thumbnails/a.jpg")
	issuer := access.NewIssuer(store, time.Hour)

	link, err := issuer.IssueLink(context.Background(), access.Owner, "thumbnails/a.jpg", false, access.Thumbnail)
	require.NoError(t, err)
	assert.NotEqual(t, store.PublicURL("thumbnails/a.jpg"), link.URL)
	assert.False(t, link.ExpiresAt.IsZero())
}

func TestIssueLinkPublicVisitorOnPrivatePhotoDenied(t *testing.T) {
	// PublicVisitor can only arise from a public photo; if visibility was
	// flipped between resolution and issuance, refuse.
	store := storeWithObject(t, "photos/a.jpg")
	issuer := access.NewIssuer(store, time.Hour)

	_, err := issuer.IssueLink(context.Background(), access.PublicVisitor, "photos/a.jpg", false, access.Original)
	assert.ErrorIs(t, err, access.ErrDenied)
	assert.Equal(t, 0, store.SignCalls)
}

func TestIssueLinkStorageUnavailable(t *testing.T) {
	store := storeWithObject(t, "photos/a.jpg")
	store.FailSign = true
	issuer := access.NewIssuer(store, time.Hour)

	_, err := issuer.IssueLink(context.Background(), access.Owner, "photos/a.jpg", false, access.Original)
	require.Error(t, err)
	assert.ErrorIs(t, err, access.ErrStorageUnavailable)
}
