// Package events carries document changes from writers to watchers.
package events

import (
	"context"

	"github.com/dmitrijs2005/devfeed/internal/server/models"
)

// Bus fans document changes out per collection. The channel returned by
// Subscribe is never closed; callers stop reading once they call cancel.
type Bus interface {
	Publish(ctx context.Context, change models.Change) error
	Subscribe(ctx context.Context, collection string) (<-chan models.Change, func(), error)
}

// subscriberBuffer bounds how far a slow watcher may lag before changes
// are dropped for it.
const subscriberBuffer = 64

// Subject returns the NATS subject for a collection.
func Subject(collection string) string { return "documents." + collection }
