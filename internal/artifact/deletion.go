package artifact

import (
	"context"
	"fmt"
	"strings"
)

// PartialFailure reports which artifact deletions failed. It is deliberately
// non-fatal: a dangling object in storage is less harmful than a metadata
// record the user cannot delete, so callers log it and proceed.
type PartialFailure struct {
	Failed map[string]error
}

// Error lists the keys that could not be deleted.
func (p *PartialFailure) Error() string {
	keys := make([]string, 0, len(p.Failed))
	for k := range p.Failed {
		keys = append(keys, k)
	}
	return fmt.Sprintf("failed to delete %d artifact(s): %s", len(keys), strings.Join(keys, ", "))
}

// Delete removes both artifacts for a photo. The two deletions are attempted
// independently: a failure on one key never prevents attempting the other.
// Returns nil when both succeed, or a *PartialFailure describing what failed.
//
// Ownership must already be confirmed by the caller.
func (c *Coordinator) Delete(ctx context.Context, originalKey, thumbnailKey string) error {
	failed := make(map[string]error)

	for _, key := range []string{originalKey, thumbnailKey} {
		if key == "" {
			continue
		}
		if err := c.store.Delete(ctx, key); err != nil {
			failed[key] = err
		}
	}

	if len(failed) > 0 {
		return &PartialFailure{Failed: failed}
	}
	return nil
}
