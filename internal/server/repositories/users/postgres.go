package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/okutsen/authsvc/internal/common"
	"github.com/okutsen/authsvc/internal/dbx"
	"github.com/okutsen/authsvc/internal/server/models"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint failures.
const pgUniqueViolation = "23505"

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a user. Empty optional fields are stored as NULL.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (email, name, google_sub, picture)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''))
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.Name, user.GoogleSub, user.Picture).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.findBy(ctx, `WHERE id = $1`, id)
}

func (r *PostgresRepository) FindByGoogleSub(ctx context.Context, sub string) (*models.User, error) {
	return r.findBy(ctx, `WHERE google_sub = $1`, sub)
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findBy(ctx, `WHERE email = $1`, email)
}

func (r *PostgresRepository) findBy(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `
		SELECT id, email, COALESCE(name, ''), COALESCE(google_sub, ''), COALESCE(picture, ''), created_at, updated_at
		FROM users ` + where

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.Name, &user.GoogleSub, &user.Picture,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// Update rewrites the mutable fields of an existing user row.
func (r *PostgresRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $2, name = NULLIF($3, ''), google_sub = NULLIF($4, ''), picture = NULLIF($5, ''), updated_at = now()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.GoogleSub, user.Picture); err != nil {
		if isUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
