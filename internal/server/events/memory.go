package events

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/devfeed/internal/logging"
	"github.com/dmitrijs2005/devfeed/internal/server/models"
)

type memorySub struct {
	ch   chan models.Change
	done chan struct{}
}

// MemoryBus is an in-process Bus for single-node deployments and tests.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[string]map[*memorySub]struct{}
	logger logging.Logger
}

func NewMemoryBus(l logging.Logger) *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[*memorySub]struct{}), logger: l.With("module", "memory_bus")}
}

func (b *MemoryBus) Publish(ctx context.Context, change models.Change) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs[change.Document.Collection] {
		select {
		case sub.ch <- change:
		case <-sub.done:
		default:
			b.logger.Warn(ctx, "subscriber lagging, change dropped",
				"collection", change.Document.Collection, "id", change.Document.ID)
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(_ context.Context, collection string) (<-chan models.Change, func(), error) {
	sub := &memorySub{ch: make(chan models.Change, subscriberBuffer), done: make(chan struct{})}

	b.mu.Lock()
	if b.subs[collection] == nil {
		b.subs[collection] = make(map[*memorySub]struct{})
	}
	b.subs[collection][sub] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[collection], sub)
			if len(b.subs[collection]) == 0 {
				delete(b.subs, collection)
			}
			b.mu.Unlock()
			close(sub.done)
		})
	}
	return sub.ch, cancel, nil
}
