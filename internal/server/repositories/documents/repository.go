// Package documents persists JSON documents grouped into collections.
package documents

import (
	"context"

	"github.com/dmitrijs2005/devfeed/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, doc *models.Document) error
	// Upsert reports whether the row was newly created.
	Upsert(ctx context.Context, doc *models.Document) (bool, error)
	Get(ctx context.Context, collection, id string) (*models.Document, error)
	List(ctx context.Context, collection string) ([]*models.Document, error)
	Delete(ctx context.Context, collection, id string) (*models.Document, error)
}
