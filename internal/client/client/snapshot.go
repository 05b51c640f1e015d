package client

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/devfeed/internal/rpc"
	"google.golang.org/grpc"
)

// Subscription is a live OnSnapshot listener.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Close stops delivery and waits for the delivery goroutine to exit; no
// callback runs after Close returns.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
	<-s.done
}

// Done is closed once delivery has stopped, whether through Close or because
// the stream ended.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// OnSnapshot streams changes to collection. The first deliveries replay the
// existing documents as added. If the access token expires mid-stream the
// token is refreshed and the stream reopened, which replays the snapshot
// again; consumers should key documents by ID.
func (c *GRPCClient) OnSnapshot(ctx context.Context, collection string, fn func(Change)) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	stream, err := c.api.WatchCollection(ctx, &rpc.WatchCollectionRequest{Collection: collection})
	if err != nil {
		cancel()
		return nil, mapError(err)
	}

	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		defer cancel()
		c.deliver(ctx, collection, stream, fn)
	}()
	return sub, nil
}

const maxStreamReopens = 3

func (c *GRPCClient) deliver(ctx context.Context, collection string, stream grpc.ServerStreamingClient[rpc.Change], fn func(Change)) {
	reopens := 0
	for {
		ch, err := stream.Recv()
		if err == nil {
			if ctx.Err() != nil {
				return
			}
			fn(Change{Type: string(ch.Type), Collection: ch.Document.Collection, ID: ch.Document.ID, Data: ch.Document.Data})
			continue
		}

		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			return
		}
		if !isTokenExpired(err) || reopens >= maxStreamReopens {
			c.logger.Warn(ctx, "snapshot stream ended", "collection", collection, "error", mapError(err))
			return
		}

		reopens++
		access, _ := c.tokens()
		if rerr := c.refresh(ctx, access); rerr != nil {
			c.logger.Warn(ctx, "snapshot stream: refresh failed", "collection", collection, "error", rerr)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(reopens) * 100 * time.Millisecond):
		}

		stream, err = c.api.WatchCollection(ctx, &rpc.WatchCollectionRequest{Collection: collection})
		if err != nil {
			c.logger.Warn(ctx, "snapshot stream: reopen failed", "collection", collection, "error", mapError(err))
			return
		}
	}
}
