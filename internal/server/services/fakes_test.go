package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/okutsen/authsvc/internal/common"
	"github.com/okutsen/authsvc/internal/dbx"
	"github.com/okutsen/authsvc/internal/logging"
	"github.com/okutsen/authsvc/internal/server/config"
	"github.com/okutsen/authsvc/internal/server/identity"
	"github.com/okutsen/authsvc/internal/server/models"
	refreshtokensrepo "github.com/okutsen/authsvc/internal/server/repositories/refreshtokens"
	usersrepo "github.com/okutsen/authsvc/internal/server/repositories/users"
)

// --- in-memory fakes ---

type memUsersRepo struct {
	mu      sync.Mutex
	rows    map[int64]*models.User
	nextID  int64
	creates int
	updates int

	findErr error
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{rows: map[int64]*models.User{}, nextID: 1}
}

func (f *memUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.Email == user.Email || (user.GoogleSub != "" && u.GoogleSub == user.GoogleSub) {
			return nil, common.ErrorAlreadyExists
		}
	}
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	f.rows[user.ID] = &cp
	f.creates++
	return user, nil
}

func (f *memUsersRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	if u, ok := f.rows[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (f *memUsersRepo) FindByGoogleSub(ctx context.Context, sub string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.GoogleSub == sub && sub != "" {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *memUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *memUsersRepo) Update(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[user.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *user
	f.rows[user.ID] = &cp
	f.updates++
	return nil
}

type memTokensRepo struct {
	mu     sync.Mutex
	rows   map[string]*models.RefreshToken
	nextID int64

	// failNextCAS makes the next Revoke report no transition, simulating a
	// concurrent rotation winning the race.
	failNextCAS bool

	revokeAllCalls int
}

func newMemTokensRepo() *memTokensRepo {
	return &memTokensRepo{rows: map[string]*models.RefreshToken{}, nextID: 1}
}

func (f *memTokensRepo) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[token] = &models.RefreshToken{
		ID:        f.nextID,
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	f.nextID++
	return nil
}

func (f *memTokensRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.rows[token]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (f *memTokensRepo) Revoke(ctx context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNextCAS {
		f.failNextCAS = false
		return false, nil
	}
	rec, ok := f.rows[token]
	if !ok || rec.Revoked {
		return false, nil
	}
	rec.Revoked = true
	return true, nil
}

func (f *memTokensRepo) RevokeAllForUser(ctx context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revokeAllCalls++
	for _, rec := range f.rows {
		if rec.UserID == userID {
			rec.Revoked = true
		}
	}
	return nil
}

func (f *memTokensRepo) activeCount(userID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, rec := range f.rows {
		if rec.UserID == userID && !rec.Revoked {
			n++
		}
	}
	return n
}

func (f *memTokensRepo) get(token string) *models.RefreshToken {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.rows[token]; ok {
		cp := *rec
		return &cp
	}
	return nil
}

type fakeRepoManager struct {
	u *memUsersRepo
	r *memTokensRepo
}

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return m.r
}
func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

type fakeVerifier struct {
	info *identity.UserInfo
	err  error
}

func (f *fakeVerifier) Verify(ctx context.Context, credential string) (*identity.UserInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

// --- construction helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newTestConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
}

func discardLogger(t *testing.T) logging.Logger {
	t.Helper()
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func strPtr(s string) *string { return &s }
