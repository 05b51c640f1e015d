package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/devfeed/internal/common"
	"github.com/dmitrijs2005/devfeed/internal/dbx"
	"github.com/dmitrijs2005/devfeed/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, doc *models.Document) error {
	query :=
		`INSERT INTO documents (collection, id, data)
		 VALUES ($1, $2, $3)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, doc.Collection, doc.ID, []byte(doc.Data)).
		Scan(&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Upsert replaces the document's data. xmax is zero only for a freshly
// inserted tuple, which tells creation apart from update.
func (r *PostgresRepository) Upsert(ctx context.Context, doc *models.Document) (bool, error) {
	query :=
		`INSERT INTO documents (collection, id, data)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()
		 RETURNING created_at, updated_at, (xmax = 0) AS inserted`

	var inserted bool
	err := r.db.QueryRowContext(ctx, query, doc.Collection, doc.ID, []byte(doc.Data)).
		Scan(&doc.CreatedAt, &doc.UpdatedAt, &inserted)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return inserted, nil
}

func (r *PostgresRepository) Get(ctx context.Context, collection, id string) (*models.Document, error) {
	query :=
		`SELECT collection, id, data, created_at, updated_at FROM documents
		 WHERE collection = $1 AND id = $2`

	return scanOne(r.db.QueryRowContext(ctx, query, collection, id))
}

// List returns every document of collection, oldest first.
func (r *PostgresRepository) List(ctx context.Context, collection string) ([]*models.Document, error) {
	query :=
		`SELECT collection, id, data, created_at, updated_at FROM documents
		 WHERE collection = $1
		 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		var data []byte
		if err := rows.Scan(&doc.Collection, &doc.ID, &data, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		doc.Data = data
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return docs, nil
}

// Delete removes a document and returns what was stored.
func (r *PostgresRepository) Delete(ctx context.Context, collection, id string) (*models.Document, error) {
	query :=
		`DELETE FROM documents WHERE collection = $1 AND id = $2
		 RETURNING collection, id, data, created_at, updated_at`

	return scanOne(r.db.QueryRowContext(ctx, query, collection, id))
}

func scanOne(row *sql.Row) (*models.Document, error) {
	doc := &models.Document{}
	var data []byte
	if err := row.Scan(&doc.Collection, &doc.ID, &data, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	doc.Data = data
	return doc, nil
}
