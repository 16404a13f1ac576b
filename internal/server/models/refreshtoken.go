package models

import "time"

// RefreshToken is a single-use session credential record. Token is an opaque
// unguessable capability string, globally unique. Revoked transitions only
// from false to true: set by rotation (consumed), lazily on read after
// natural expiry, or by explicit/mass revocation.
type RefreshToken struct {
	ID        int64
	Token     string
	UserID    int64
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}
