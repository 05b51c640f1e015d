// Package notifications keeps the list of uploaded files announced by the
// files collection stream.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/devfeed/internal/client/client"
	"github.com/dmitrijs2005/devfeed/internal/client/models"
	"github.com/dmitrijs2005/devfeed/internal/common"
	"github.com/dmitrijs2005/devfeed/internal/logging"
)

type Subscription interface {
	Close()
	Done() <-chan struct{}
}

// WatchFunc opens a snapshot listener on a collection.
type WatchFunc func(ctx context.Context, collection string, fn func(client.Change)) (Subscription, error)

// Watch adapts a document store to WatchFunc.
func Watch(ds client.DocumentStore) WatchFunc {
	return func(ctx context.Context, collection string, fn func(client.Change)) (Subscription, error) {
		sub, err := ds.OnSnapshot(ctx, collection, fn)
		if err != nil {
			return nil, err
		}
		return sub, nil
	}
}

type Inbox struct {
	watch  WatchFunc
	logger logging.Logger

	mu    sync.Mutex
	items []models.FileRecord
	seen  map[string]struct{}
}

func NewInbox(w WatchFunc, l logging.Logger) *Inbox {
	return &Inbox{watch: w, logger: l.With("module", "notifications"), seen: map[string]struct{}{}}
}

// Run listens until ctx ends or the stream stops, and always releases the
// subscription before returning.
func (in *Inbox) Run(ctx context.Context) error {
	sub, err := in.watch(ctx, common.FilesCollection, func(ch client.Change) { in.handle(ctx, ch) })
	if err != nil {
		return fmt.Errorf("watch %s: %w", common.FilesCollection, err)
	}
	defer sub.Close()

	select {
	case <-ctx.Done():
	case <-sub.Done():
	}
	return nil
}

func (in *Inbox) handle(ctx context.Context, ch client.Change) {
	if ch.Type != client.ChangeAdded {
		return
	}

	var rec models.FileRecord
	if err := json.Unmarshal(ch.Data, &rec); err != nil {
		in.logger.Warn(ctx, "skipping malformed file record", "id", ch.ID, "error", err)
		return
	}
	rec.ID = ch.ID

	in.mu.Lock()
	defer in.mu.Unlock()
	// a reopened stream replays the snapshot
	if _, ok := in.seen[ch.ID]; ok {
		return
	}
	in.seen[ch.ID] = struct{}{}
	in.items = append(in.items, rec)
}

// Items returns the files in arrival order.
func (in *Inbox) Items() []models.FileRecord {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]models.FileRecord, len(in.items))
	copy(out, in.items)
	return out
}
