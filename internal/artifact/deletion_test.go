package artifact_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumapix/service/internal/artifact"
	"github.com/lumapix/service/internal/storage"
)

func putObject(t *testing.T, store *storage.MemoryStore, key string) {
	t.Helper()
	data := []byte("artifact bytes")
	require.NoError(t, store.Upload(context.Background(), key, bytes.NewReader(data), int64(len(data)), "image/jpeg"))
}

func TestDeleteRemovesBothArtifacts(t *testing.T) {
	store := storage.NewMemoryStore()
	c := newCoordinator(store)
	putObject(t, store, "photos/a.jpg")
	putObject(t, store, "thumbnails/a.jpg")

	err := c.Delete(context.Background(), "photos/a.jpg", "thumbnails/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestDeleteMissingKeysReportsPartialFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	c := newCoordinator(store)

	err := c.Delete(context.Background(), "photos/ghost.jpg", "thumbnails/ghost.jpg")
	require.Error(t, err)

	var partial *artifact.PartialFailure
	require.ErrorAs(t, err, &partial)
	assert.Len(t, partial.Failed, 2)
	// Both keys were still attempted independently.
	assert.Equal(t, 2, store.DeleteCalls)
}

func TestDeleteAttemptsSecondKeyAfterFirstFails(t *testing.T) {
	store := storage.NewMemoryStore()
	c := newCoordinator(store)
	putObject(t, store, "thumbnails/b.jpg")

	err := c.Delete(context.Background(), "photos/missing.jpg", "thumbnails/b.jpg")
	require.Error(t, err)

	var partial *artifact.PartialFailure
	require.ErrorAs(t, err, &partial)
	assert.Len(t, partial.Failed, 1)
	assert.Contains(t, partial.Failed, "photos/missing.jpg")
	assert.False(t, store.Has("thumbnails/b.jpg"), "the second delete must still run")
}

func TestDeleteSkipsEmptyKeys(t *testing.T) {
	store := storage.NewMemoryStore()
	c := newCoordinator(store)

	err := c.Delete(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, 0, store.DeleteCalls)
}
