package interaction

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/devfeed/internal/logging"
)

var ErrUnmounted = errors.New("card unmounted")

// Confirmer asks the user to approve a destructive action. false means the
// user picked cancel.
type Confirmer interface {
	Confirm(ctx context.Context, title, message, destructiveLabel string) (bool, error)
}

// Remover takes a post out of the feed.
type Remover interface {
	Remove(ctx context.Context, id int64) error
}

// Card is the live view of one post. Operations run one at a time in the
// order they were called; after Unmount every operation returns
// ErrUnmounted and no in-flight operation updates the card any more.
type Card struct {
	id        int64
	store     *Store
	remover   Remover
	confirmer Confirmer
	swipe     Swipe
	logger    logging.Logger

	queue fifo

	mu      sync.Mutex
	state   State
	mounted bool
}

type CardOption func(*Card)

func WithSwipe(s Swipe) CardOption {
	return func(c *Card) { c.swipe = s }
}

// Mount loads the stored state for post id and returns its card.
func (s *Store) Mount(ctx context.Context, id int64, r Remover, cf Confirmer, opts ...CardOption) *Card {
	c := &Card{
		id:        id,
		store:     s,
		remover:   r,
		confirmer: cf,
		swipe:     DefaultSwipe,
		logger:    s.logger.With("post_id", id),
		state:     s.Load(ctx, id),
		mounted:   true,
	}
	c.queue.init()
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Card) ID() int64 { return c.id }

func (c *Card) State() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted {
		return State{}, ErrUnmounted
	}
	return c.state, nil
}

func (c *Card) Unmount() {
	c.mu.Lock()
	c.mounted = false
	c.mu.Unlock()
}

// begin enters the card's queue and returns the current state.
func (c *Card) begin() (State, error) {
	c.queue.acquire()
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted {
		c.queue.release()
		return State{}, ErrUnmounted
	}
	return c.state, nil
}

// ToggleLike flips the liked flag and moves the count by one, never below
// zero. The new state is shown at once; if it cannot be stored the card goes
// back to the previous state and the error is returned.
func (c *Card) ToggleLike(ctx context.Context) (State, error) {
	prev, err := c.begin()
	if err != nil {
		return State{}, err
	}
	defer c.queue.release()

	next := State{Liked: !prev.Liked, LikeCount: prev.LikeCount}
	if next.Liked {
		next.LikeCount++
	} else if next.LikeCount > 0 {
		next.LikeCount--
	}

	if !c.apply(next) {
		return State{}, ErrUnmounted
	}

	if err := c.store.Save(ctx, c.id, next); err != nil {
		c.logger.Error(ctx, "persist like state, reverted", "error", err)
		if !c.apply(prev) {
			return State{}, ErrUnmounted
		}
		return prev, fmt.Errorf("save like state: %w", err)
	}
	return next, nil
}

// apply sets the state unless the card is gone.
func (c *Card) apply(st State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted {
		return false
	}
	c.state = st
	return true
}

// RequestDelete asks for confirmation and, if given, drops the post's like
// state and then the post itself. It reports whether the post was deleted.
// When the feed refuses the removal the like state is written back.
func (c *Card) RequestDelete(ctx context.Context) (bool, error) {
	st, err := c.begin()
	if err != nil {
		return false, err
	}
	defer c.queue.release()

	ok, err := c.confirmer.Confirm(ctx, "Delete Post", "Are you sure you want to delete this post?", "Delete")
	if err != nil {
		return false, fmt.Errorf("confirm: %w", err)
	}
	if !ok {
		return false, nil
	}

	if err := c.store.Delete(ctx, c.id); err != nil {
		c.logger.Error(ctx, "delete like state", "error", err)
		return false, fmt.Errorf("delete like state: %w", err)
	}

	if err := c.remover.Remove(ctx, c.id); err != nil {
		c.logger.Error(ctx, "remove post, restoring like state", "error", err)
		if rerr := c.store.Save(ctx, c.id, st); rerr != nil {
			c.logger.Error(ctx, "restore like state", "error", rerr)
		}
		return false, fmt.Errorf("remove post: %w", err)
	}

	c.Unmount()
	return true, nil
}

// Move reports whether dragging to dx reveals the delete affordance.
func (c *Card) Move(dx float64) (bool, error) {
	if _, err := c.State(); err != nil {
		return false, err
	}
	return c.swipe.Move(dx), nil
}

// Release ends a drag at dx. Past the delete threshold it runs
// RequestDelete; otherwise the card snaps back.
func (c *Card) Release(ctx context.Context, dx float64) (SwipeOutcome, bool, error) {
	if _, err := c.State(); err != nil {
		return SwipeSnapBack, false, err
	}
	if c.swipe.Release(dx) == SwipeSnapBack {
		return SwipeSnapBack, false, nil
	}
	deleted, err := c.RequestDelete(ctx)
	return SwipeDelete, deleted, err
}
