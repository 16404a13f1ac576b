// Package common defines shared constants and sentinel errors used across
// the layers of authsvc. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Access token errors (invalid signature, malformed, or expired).
	ErrInvalidToken = errors.New("invalid token")

	// Refresh token lifecycle errors. ErrInvalidRefreshToken covers both
	// never-issued and long-since-deleted tokens so that callers cannot
	// probe which of the two it was.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrSessionCompromised signals reuse of an already-consumed refresh
	// token. Raising it is always preceded by revoking every active
	// refresh token of the affected user.
	ErrSessionCompromised = errors.New("session compromised")

	// Identity provider errors.
	ErrVerificationFailed = errors.New("identity verification failed")

	// ErrUserNotFound reports a lookup of a user id that no longer exists.
	ErrUserNotFound = errors.New("user not found")
)
