// Package repomanager wires concrete repositories to database handles.
// Services obtain repositories through the manager so that the same code
// path works against *sql.DB and against an open transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/okutsen/authsvc/internal/dbx"
	"github.com/okutsen/authsvc/internal/server/repositories/refreshtokens"
	"github.com/okutsen/authsvc/internal/server/repositories/users"
)

// RepositoryManager builds repositories bound to the given DBTX and applies
// schema migrations.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
