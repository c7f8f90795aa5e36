package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

// MemoryStore is an in-memory ObjectStore used by tests and local development.
// It counts calls and supports fault injection so callers can assert on
// exactly which storage operations a code path performed.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// PutCalls, DeleteCalls and SignCalls count invocations, including failed ones.
	PutCalls    int
	DeleteCalls int
	SignCalls   int

	// FailPutAfter makes the (n+1)th and later Upload calls fail when set to n >= 0.
	FailPutAfter int
	// FailDelete makes every Delete call fail.
	FailDelete bool
	// FailSign makes every SignedURL call fail.
	FailSign bool

	// Err is returned by injected failures; defaults to ErrUnavailable.
	Err error
}

// ErrUnavailable is the default injected backend failure.
var ErrUnavailable = errors.New("storage backend unavailable")

// NewMemoryStore creates an empty MemoryStore with fault injection disabled.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects:      make(map[string][]byte),
		FailPutAfter: -1,
	}
}

func (m *MemoryStore) failure() error {
	if m.Err != nil {
		return m.Err
	}
	return ErrUnavailable
}

// Upload stores the reader's bytes under key.
func (m *MemoryStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PutCalls++
	if m.FailPutAfter >= 0 && m.PutCalls > m.FailPutAfter {
		return m.failure()
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return err
	}
	m.objects[key] = buf.Bytes()
	return nil
}

// Delete removes the object at key. Deleting a missing key reports ErrNotFound.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls++
	if m.FailDelete {
		return m.failure()
	}
	if _, ok := m.objects[key]; !ok {
		return ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

// SignedURL fabricates a deterministic URL carrying the key and expiry.
func (m *MemoryStore) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SignCalls++
	if m.FailSign {
		return "", m.failure()
	}
	if _, ok := m.objects[key]; !ok {
		return "", ErrNotFound
	}
	return "https://memory.invalid/" + key + "?expires=" + expiry.String(), nil
}

// PublicURL returns a stable fake public URL for key.
func (m *MemoryStore) PublicURL(key string) string {
	return "https://memory.invalid/public/" + key
}

// Stat returns the stored size of the object at key.
func (m *MemoryStore) Stat(ctx context.Context, key string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[key]
	if !ok {
		return 0, ErrNotFound
	}
	return int64(len(data)), nil
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// Has reports whether an object exists at key.
func (m *MemoryStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok
}

// Get returns a copy of the object bytes at key.
func (m *MemoryStore) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true
}
