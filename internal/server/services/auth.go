package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okutsen/authsvc/internal/common"
	"github.com/okutsen/authsvc/internal/dbx"
	"github.com/okutsen/authsvc/internal/logging"
	"github.com/okutsen/authsvc/internal/obs"
	"github.com/okutsen/authsvc/internal/server/auth"
	"github.com/okutsen/authsvc/internal/server/config"
	"github.com/okutsen/authsvc/internal/server/identity"
	"github.com/okutsen/authsvc/internal/server/models"
	"github.com/okutsen/authsvc/internal/server/repositories/repomanager"
)

// AuthResult bundles the authenticated user with a freshly minted
// access/refresh token pair.
type AuthResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// errRotationLost marks the loser of a concurrent rotation race: the token
// passed the pre-checks but another request consumed it first.
var errRotationLost = errors.New("rotation lost to concurrent consumer")

// AuthService governs the session/token lifecycle: issuing paired
// credentials on login, rotating the refresh token on every refresh,
// detecting reuse of consumed tokens, and revoking sessions.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	users       *UserService
	verifier    identity.Verifier
	logger      logging.Logger

	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration

	now func() time.Time
}

// NewAuthService constructs an AuthService from its collaborators and the
// server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, users *UserService,
	verifier identity.Verifier, logger logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                           db,
		repomanager:                  m,
		users:                        users,
		verifier:                     verifier,
		logger:                       logger,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		now:                          time.Now,
	}
}

// Login verifies the provider credential, resolves the local user, and
// issues a fresh token pair.
func (s *AuthService) Login(ctx context.Context, providerCredential string) (*AuthResult, error) {
	info, err := s.verifier.Verify(ctx, providerCredential)
	if err != nil {
		if errors.Is(err, common.ErrVerificationFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrVerificationFailed, err)
	}

	user, err := s.users.FindOrCreate(ctx, info)
	if err != nil {
		return nil, err
	}

	result, err := s.issuePair(ctx, user, s.db)
	if err != nil {
		return nil, err
	}

	obs.LoginsTotal.Inc()
	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return result, nil
}

// Refresh exchanges a valid refresh token for a new credential pair,
// retiring the presented token. The checks run in a fixed order:
//
//  1. unknown token                     -> ErrInvalidRefreshToken
//  2. revoked token (reuse signal)      -> revoke all the user's active
//     tokens, then ErrSessionCompromised
//  3. expired token                     -> lazily mark revoked, then
//     ErrRefreshTokenExpired
//  4. active token                      -> consume it and mint a new pair
//
// Expiry is checked only after reuse so that a consumed token still reports
// as abuse once it has also aged past its expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	record, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			obs.RefreshTotal.WithLabelValues("invalid").Inc()
			return nil, common.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if record.Revoked {
		return nil, s.handleReuse(ctx, record.UserID)
	}

	if record.ExpiresAt.Before(s.now()) {
		// Keep the stored state consistent: an expired token is terminal.
		if _, err := repo.Revoke(ctx, refreshToken); err != nil {
			return nil, fmt.Errorf("error revoking expired token: %w", err)
		}
		obs.RefreshTotal.WithLabelValues("expired").Inc()
		s.logger.Info(ctx, "refresh token expired", "user_id", record.UserID)
		return nil, common.ErrRefreshTokenExpired
	}

	user, err := s.users.FindByID(ctx, record.UserID)
	if err != nil {
		return nil, err
	}

	var result *AuthResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		// The conditional revoke is the one-time-use guarantee: of two
		// concurrent rotations of the same token, exactly one observes
		// the transition.
		consumed, err := s.repomanager.RefreshTokens(tx).Revoke(ctx, refreshToken)
		if err != nil {
			return err
		}
		if !consumed {
			return errRotationLost
		}
		result, err = s.issuePair(ctx, user, tx)
		return err
	})
	if err != nil {
		if errors.Is(err, errRotationLost) {
			return nil, s.handleReuse(ctx, record.UserID)
		}
		return nil, err
	}

	obs.RefreshTotal.WithLabelValues("success").Inc()
	return result, nil
}

// handleReuse is the mandatory side effect of reuse detection: every active
// token of the affected user is revoked before the error surfaces, forcing
// a full re-authentication on all devices.
func (s *AuthService) handleReuse(ctx context.Context, userID int64) error {
	obs.RefreshTotal.WithLabelValues("reuse").Inc()
	obs.ReuseDetectedTotal.Inc()
	s.logger.Warn(ctx, "refresh token reuse detected, revoking all sessions", "user_id", userID)

	if err := s.repomanager.RefreshTokens(s.db).RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("error revoking user sessions: %w", err)
	}
	obs.RevocationsTotal.WithLabelValues("user").Inc()

	return common.ErrSessionCompromised
}

// Logout revokes the presented refresh token. Unknown or already-revoked
// tokens are a silent no-op, so logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	revoked, err := s.repomanager.RefreshTokens(s.db).Revoke(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	if revoked {
		obs.RevocationsTotal.WithLabelValues("single").Inc()
		s.logger.Info(ctx, "refresh token revoked on logout")
	}
	return nil
}

// RevokeAllForUser revokes every active refresh token of the user
// (logout everywhere).
func (s *AuthService) RevokeAllForUser(ctx context.Context, userID int64) error {
	if err := s.repomanager.RefreshTokens(s.db).RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("error revoking user sessions: %w", err)
	}
	obs.RevocationsTotal.WithLabelValues("user").Inc()
	return nil
}

// VerifyAccess checks an access token's signature and expiry. Purely
// stateless, no store access.
func (s *AuthService) VerifyAccess(tokenString string) (*auth.Claims, error) {
	return auth.ParseToken(tokenString, s.jwtSecret)
}

// issuePair mints a signed access token and a stored opaque refresh token
// for the user. The db handle may be a transaction so that rotation retires
// the old token and stores the new one atomically.
func (s *AuthService) issuePair(ctx context.Context, user *models.User, db dbx.DBTX) (*AuthResult, error) {
	accessToken, err := auth.GenerateToken(user.Email, user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken := uuid.NewString()
	expiresAt := s.now().Add(s.refreshTokenValidityDuration)

	if err := s.repomanager.RefreshTokens(db).Create(ctx, user.ID, refreshToken, expiresAt); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &AuthResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
