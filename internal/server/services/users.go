// Package services contains the server-side business logic: the user
// directory and the session/token lifecycle (issuance, rotation, revocation).
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/okutsen/authsvc/internal/common"
	"github.com/okutsen/authsvc/internal/server/identity"
	"github.com/okutsen/authsvc/internal/server/models"
	"github.com/okutsen/authsvc/internal/server/repositories/repomanager"
)

// UserService is the user directory: it resolves or creates a local user
// identity keyed by the Google subject id, with email as a secondary key.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewUserService constructs a UserService over the given database handle.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, repomanager: m}
}

// FindOrCreate resolves the verified identity tuple to a local user:
//
//  1. by subject id: reconcile mutable fields (email, name, picture) and
//     persist only if something changed;
//  2. else by email: adopt the subject id onto that record (first-time
//     linking) plus reconcile;
//  3. else create a new user.
//
// Repeated calls with identical input perform no redundant writes.
// A uniqueness race surfaces as common.ErrorAlreadyExists, not retried here.
func (s *UserService) FindOrCreate(ctx context.Context, info *identity.UserInfo) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByGoogleSub(ctx, info.SubjectID)
	if err == nil {
		return s.reconcile(ctx, user, info, false)
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching user by subject: %w", err)
	}

	user, err = repo.FindByEmail(ctx, info.Email)
	if err == nil {
		return s.reconcile(ctx, user, info, true)
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching user by email: %w", err)
	}

	user = &models.User{
		Email:     info.Email,
		Name:      info.NormalizedName(),
		GoogleSub: info.SubjectID,
		Picture:   info.NormalizedPicture(),
	}
	created, err := repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// reconcile updates the stored record from provider-supplied fields,
// writing only when something actually differs. adoptSub marks the
// found-by-email path where the subject id is linked for the first time.
func (s *UserService) reconcile(ctx context.Context, user *models.User, info *identity.UserInfo, adoptSub bool) (*models.User, error) {
	changed := false

	if adoptSub && user.GoogleSub == "" {
		user.GoogleSub = info.SubjectID
		changed = true
	}
	if name := info.NormalizedName(); name != "" && user.Name != name {
		user.Name = name
		changed = true
	}
	if picture := info.NormalizedPicture(); user.Picture != picture {
		user.Picture = picture
		changed = true
	}
	if user.Email != info.Email {
		user.Email = info.Email
		changed = true
	}

	if !changed {
		return user, nil
	}

	if err := s.repomanager.Users(s.db).Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID returns the user with the given id. An absent user is reported
// as common.ErrUserNotFound.
func (s *UserService) FindByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return user, nil
}
