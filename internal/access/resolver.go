// Package access decides, per request, whether a caller may see a photo's
// artifacts and what kind of URL to hand back.
package access

import "crypto/subtle"

// Decision classifies the caller's relationship to a photo. It carries no
// mutable state and is recomputed on every request so it always reflects the
// current visibility flag and the current validity of credentials.
type Decision int

const (
	// Denied means the caller may not see the artifact.
	Denied Decision = iota
	// Owner is the photo's uploading user, presenting a valid identity.
	Owner
	// SharedViewer presented the pre-shared passphrase granting read access
	// to all private content.
	SharedViewer
	// PublicVisitor is anyone at all looking at a public photo.
	PublicVisitor
)

// String returns the decision name for logs.
func (d Decision) String() string {
	switch d {
	case Owner:
		return "owner"
	case SharedViewer:
		return "shared_viewer"
	case PublicVisitor:
		return "public_visitor"
	default:
		return "denied"
	}
}

// Allowed reports whether the decision grants any access at all.
func (d Decision) Allowed() bool {
	return d != Denied
}

// Resolve computes the access decision for one photo. Precedence, first
// match wins:
//
//  1. caller is the owner
//  2. the shared secret matches (constant-time comparison)
//  3. the photo is public
//  4. denied
//
// An authenticated non-owner gets no special treatment: private artifacts
// require ownership or the shared secret, regardless of login state.
//
// Pure function: no I/O, never errors. Absent credentials are normal input,
// passed as empty strings.
func Resolve(isPublic bool, ownerID, callerID, sharedSecret, configuredSecret string) Decision {
	if callerID != "" && callerID == ownerID {
		return Owner
	}
	if sharedSecret != "" && configuredSecret != "" &&
		subtle.ConstantTimeCompare([]byte(sharedSecret), []byte(configuredSecret)) == 1 {
		return SharedViewer
	}
	if isPublic {
		return PublicVisitor
	}
	return Denied
}
