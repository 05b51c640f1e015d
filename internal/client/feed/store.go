// Package feed keeps the ordered list of local posts and mirrors it to the
// kv store on every change.
package feed

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/devfeed/internal/client/kv"
	"github.com/dmitrijs2005/devfeed/internal/client/models"
	"github.com/dmitrijs2005/devfeed/internal/logging"
)

const (
	StorageKey = "posts"
	version    = 1
)

var errInvalidFeed = errors.New("invalid feed document")

// document is the persisted form. LastID survives deletions so ids are
// never reused.
type document struct {
	LastID int64         `json:"last_id"`
	Posts  []models.Post `json:"posts"`
}

// Store is safe for concurrent use; changes are applied and persisted one at
// a time in call order.
type Store struct {
	kv     kv.Store
	logger logging.Logger

	mu     sync.Mutex
	posts  []models.Post
	lastID int64
}

func NewStore(s kv.Store, l logging.Logger) *Store {
	return &Store{kv: s, logger: l.With("module", "feed")}
}

// Load replaces the in-memory list with the stored one. A missing, unreadable
// or invalid document yields an empty feed.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts, s.lastID = nil, 0

	data, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		s.logger.Error(ctx, "read feed", "error", err)
		return
	}
	if data == nil {
		return
	}

	var doc document
	if err := models.Unwrap(data, version, &doc); err != nil {
		s.logger.Warn(ctx, "ignoring stored feed", "error", err)
		return
	}
	if err := validate(&doc); err != nil {
		s.logger.Warn(ctx, "ignoring stored feed", "error", err)
		return
	}

	s.posts, s.lastID = doc.Posts, doc.LastID
}

func validate(doc *document) error {
	seen := make(map[int64]struct{}, len(doc.Posts))
	var maxID int64
	for _, p := range doc.Posts {
		if p.ID <= 0 {
			return fmt.Errorf("%w: non-positive id %d", errInvalidFeed, p.ID)
		}
		if p.CommentCount < 0 {
			return fmt.Errorf("%w: post %d has negative comment count", errInvalidFeed, p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate id %d", errInvalidFeed, p.ID)
		}
		seen[p.ID] = struct{}{}
		maxID = max(maxID, p.ID)
	}
	if doc.LastID < 0 {
		return fmt.Errorf("%w: negative last id", errInvalidFeed)
	}
	doc.LastID = max(doc.LastID, maxID)
	return nil
}

// persist must be called with mu held.
func (s *Store) persist(ctx context.Context) error {
	data, err := models.Wrap(version, document{LastID: s.lastID, Posts: s.posts})
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, StorageKey, data)
}

// Append adds a post with the next id at the end of the feed. If the write
// fails the feed is left exactly as it was.
func (s *Store) Append(ctx context.Context, username, caption, imageURL string) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevPosts, prevID := s.posts, s.lastID

	p := models.Post{ID: s.lastID + 1, Username: username, Caption: caption, ImageURL: imageURL}
	s.posts = append(slices.Clip(s.posts), p)
	s.lastID = p.ID

	if err := s.persist(ctx); err != nil {
		s.posts, s.lastID = prevPosts, prevID
		s.logger.Error(ctx, "persist feed, append reverted", "error", err)
		return models.Post{}, fmt.Errorf("save feed: %w", err)
	}
	return p, nil
}

// Remove drops the post with id. Removing an unknown id is a no-op.
func (s *Store) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.posts, func(p models.Post) bool { return p.ID == id })
	if idx < 0 {
		return nil
	}

	prev := s.posts
	s.posts = slices.Delete(slices.Clone(s.posts), idx, idx+1)

	if err := s.persist(ctx); err != nil {
		s.posts = prev
		s.logger.Error(ctx, "persist feed, removal reverted", "post_id", id, "error", err)
		return fmt.Errorf("save feed: %w", err)
	}
	return nil
}

// Posts returns a copy of the feed, oldest first.
func (s *Store) Posts() []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.posts)
}

func (s *Store) Get(id int64) (models.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}
