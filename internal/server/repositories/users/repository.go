// Package users declares the repository contract for local user identities.
package users

import (
	"context"

	"github.com/okutsen/authsvc/internal/server/models"
)

// Repository defines persistence operations over user records.
type Repository interface {
	// Create inserts a new user and fills in its generated id and
	// timestamps. A duplicate email or subject id yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// FindByID returns the user with the given id, or common.ErrorNotFound.
	FindByID(ctx context.Context, id int64) (*models.User, error)

	// FindByGoogleSub returns the user owning the given provider subject id,
	// or common.ErrorNotFound.
	FindByGoogleSub(ctx context.Context, sub string) (*models.User, error)

	// FindByEmail returns the user with the given email, or common.ErrorNotFound.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// Update persists the mutable fields (email, name, google_sub, picture)
	// of an existing user and bumps updated_at.
	Update(ctx context.Context, user *models.User) error
}
