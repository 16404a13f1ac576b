// Package identity defines the boundary to the external identity provider.
// The core only needs a verified (subject id, email, name?, picture?) tuple;
// everything about the provider protocol stays behind the Verifier interface.
package identity

import "context"

// UserInfo is the verified identity tuple returned by a provider. Name and
// Picture are optional in the provider payload and therefore pointers here;
// the Normalized helpers collapse them to the empty-string "absent"
// representation used by the rest of the system.
type UserInfo struct {
	SubjectID string
	Email     string
	Name      *string
	Picture   *string
}

// NormalizedName returns the display name or "" when the provider omitted it.
func (u *UserInfo) NormalizedName() string {
	if u.Name == nil {
		return ""
	}
	return *u.Name
}

// NormalizedPicture returns the avatar URL or "" when the provider omitted it.
func (u *UserInfo) NormalizedPicture() string {
	if u.Picture == nil {
		return ""
	}
	return *u.Picture
}

// Verifier validates a provider-issued credential and yields the verified
// identity tuple. Implementations must fail with common.ErrVerificationFailed
// when the provider rejects the credential or is unreachable.
type Verifier interface {
	Verify(ctx context.Context, credential string) (*UserInfo, error)
}
