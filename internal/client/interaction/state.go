// Package interaction holds the per-post like state and the post card that
// mutates it: like toggling, confirmed deletion and the swipe-to-delete
// affordance.
//
// The pair post_<id>_liked / post_<id>_like_count is the only like counter
// in the app; posts themselves carry none.
package interaction

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/devfeed/internal/client/kv"
	"github.com/dmitrijs2005/devfeed/internal/logging"
)

type State struct {
	Liked     bool
	LikeCount int
}

// DefaultState is shown for a post that has never been liked.
var DefaultState = State{Liked: false, LikeCount: 1}

func LikedKey(id int64) string { return fmt.Sprintf("post_%d_liked", id) }
func CountKey(id int64) string { return fmt.Sprintf("post_%d_like_count", id) }

type Store struct {
	kv     kv.Store
	logger logging.Logger
}

func NewStore(s kv.Store, l logging.Logger) *Store {
	return &Store{kv: s, logger: l.With("module", "interaction")}
}

// Load reads the state of post id. The count is only consulted when the
// liked flag exists; anything missing or unreadable falls back to
// DefaultState.
func (s *Store) Load(ctx context.Context, id int64) State {
	st := DefaultState

	raw, err := s.kv.Get(ctx, LikedKey(id))
	if err != nil {
		s.logger.Error(ctx, "read like flag", "post_id", id, "error", err)
		return st
	}
	if raw == nil {
		return st
	}

	var liked bool
	if err := json.Unmarshal(raw, &liked); err != nil {
		s.logger.Warn(ctx, "ignoring malformed like flag", "post_id", id, "error", err)
		return st
	}
	st.Liked = liked

	raw, err = s.kv.Get(ctx, CountKey(id))
	if err != nil {
		s.logger.Error(ctx, "read like count", "post_id", id, "error", err)
		return st
	}
	if raw == nil {
		return st
	}

	var count int
	if err := json.Unmarshal(raw, &count); err != nil || count < 0 {
		s.logger.Warn(ctx, "ignoring malformed like count", "post_id", id, "value", string(raw))
		return st
	}
	st.LikeCount = count
	return st
}

// Save writes both keys in one transaction.
func (s *Store) Save(ctx context.Context, id int64, st State) error {
	return s.kv.SetMany(ctx, map[string][]byte{
		LikedKey(id): []byte(strconv.FormatBool(st.Liked)),
		CountKey(id): []byte(strconv.Itoa(st.LikeCount)),
	})
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.kv.DeleteMany(ctx, LikedKey(id), CountKey(id))
}
