package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/devfeed/internal/dbx"
	"github.com/dmitrijs2005/devfeed/internal/server/migrations"
	"github.com/dmitrijs2005/devfeed/internal/server/repositories/documents"
	"github.com/dmitrijs2005/devfeed/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

// migrateUp applies every pending migration in fsys and returns the applied
// file names in order.
var migrateUp = func(ctx context.Context, db *sql.DB, fsys fs.FS) ([]string, error) {
	p, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return nil, err
	}
	results, err := p.Up(ctx)
	if err != nil {
		return nil, err
	}
	applied := make([]string, 0, len(results))
	for _, r := range results {
		applied = append(applied, r.Source.Path)
	}
	return applied, nil
}

type postgresManager struct{}

// NewPostgresRepositoryManager returns the PostgreSQL-backed manager.
func NewPostgresRepositoryManager() RepositoryManager {
	return postgresManager{}
}

func (postgresManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (postgresManager) Documents(db dbx.DBTX) documents.Repository {
	return documents.NewPostgresRepository(db)
}

// RunMigrations brings the schema up to date from the embedded SQL files.
func (postgresManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := migrateUp(ctx, db, migrations.Migrations); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
