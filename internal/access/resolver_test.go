package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumapix/service/internal/access"
)

const secret = "open-sesame"

func TestResolvePrecedence(t *testing.T) {
	tests := []struct {
		name     string
		isPublic bool
		ownerID  string
		callerID string
		shared   string
		want     access.Decision
	}{
		{"owner of private photo", false, "alice", "alice", "", access.Owner},
		{"owner of public photo", true, "alice", "alice", "", access.Owner},
		{"owner wins over shared secret", false, "alice", "alice", secret, access.Owner},
		{"correct secret without identity", false, "alice", "", secret, access.SharedViewer},
		{"correct secret with non-owner identity", false, "alice", "bob", secret, access.SharedViewer},
		{"wrong secret on private photo", false, "alice", "bob", "guess", access.Denied},
		{"anonymous on public photo", true, "alice", "", "", access.PublicVisitor},
		{"non-owner on public photo", true, "alice", "bob", "", access.PublicVisitor},
		{"anonymous on private photo", false, "alice", "", "", access.Denied},
		{"authenticated non-owner on private photo", false, "alice", "bob", "", access.Denied},
		{"wrong secret on public photo still public", true, "alice", "", "guess", access.PublicVisitor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := access.Resolve(tt.isPublic, tt.ownerID, tt.callerID, tt.shared, secret)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.Equal(t, access.SharedViewer, access.Resolve(false, "alice", "", secret, secret))
	}
}

func TestResolveEmptyConfiguredSecretNeverMatches(t *testing.T) {
	// A deployment without a configured secret must not grant viewer access
	// to callers sending an empty or arbitrary header.
	assert.Equal(t, access.Denied, access.Resolve(false, "alice", "", "", ""))
	assert.Equal(t, access.Denied, access.Resolve(false, "alice", "", "anything", ""))
}

func TestDecisionAllowed(t *testing.T) {
	assert.True(t, access.Owner.Allowed())
	assert.True(t, access.SharedViewer.Allowed())
	assert.True(t, access.PublicVisitor.Allowed())
	assert.False(t, access.Denied.Allowed())
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "owner", access.Owner.String())
	assert.Equal(t, "shared_viewer", access.SharedViewer.String())
	assert.Equal(t, "public_visitor", access.PublicVisitor.String())
	assert.Equal(t, "denied", access.Denied.String())
}
