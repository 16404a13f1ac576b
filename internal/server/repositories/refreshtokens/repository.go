// Package refreshtokens declares the repository contract for the durable
// refresh token store.
package refreshtokens

import (
	"context"
	"time"

	"github.com/okutsen/authsvc/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking
// refresh tokens. The revoked flag is monotone: implementations only ever
// flip it from false to true.
type Repository interface {
	// Create stores a new refresh token for userID expiring at expiresAt.
	Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error

	// Find looks up a token by its opaque string with no filter on the
	// revoked flag: revoked rows must be found too, so that reuse of a
	// consumed token is detectable. Absent tokens yield common.ErrorNotFound.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Revoke conditionally marks the token revoked and reports whether this
	// call performed the transition. false with a nil error means the row
	// was absent or already revoked; under a transaction this is the
	// compare-and-set that makes rotation single-use.
	Revoke(ctx context.Context, token string) (bool, error)

	// RevokeAllForUser marks every non-revoked token of the user revoked.
	// Already-revoked rows are untouched; zero active tokens is not an error.
	RevokeAllForUser(ctx context.Context, userID int64) error
}
