// Package repomanager hands out repositories bound to either a *sql.DB or an
// open transaction, and owns the schema migrations for the backend.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/devfeed/internal/dbx"
	"github.com/dmitrijs2005/devfeed/internal/server/repositories/documents"
	"github.com/dmitrijs2005/devfeed/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(q dbx.DBTX) users.Repository
	Documents(q dbx.DBTX) documents.Repository
}
