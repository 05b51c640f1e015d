// Package composer keeps the draft of the post being written.
package composer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/devfeed/internal/client/media"
	"github.com/dmitrijs2005/devfeed/internal/client/models"
	"github.com/dmitrijs2005/devfeed/internal/logging"
)

type Uploader interface {
	Upload(ctx context.Context, path string, onProgress media.ProgressFunc) (string, error)
}

type Feed interface {
	Append(ctx context.Context, username, caption, imageURL string) (models.Post, error)
}

// Author names the signed-in user on new posts.
type Author interface {
	DisplayName(ctx context.Context) string
}

// Draft is a snapshot of the composer.
type Draft struct {
	Caption  string
	ImageURL string
	Progress int
}

type Composer struct {
	uploader Uploader
	feed     Feed
	author   Author
	logger   logging.Logger

	mu    sync.Mutex
	draft Draft
}

func New(u Uploader, f Feed, a Author, l logging.Logger) *Composer {
	return &Composer{uploader: u, feed: f, author: a, logger: l.With("module", "composer")}
}

func (c *Composer) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *Composer) SetCaption(s string) {
	c.mu.Lock()
	c.draft.Caption = s
	c.mu.Unlock()
}

func (c *Composer) setProgress(p int) {
	c.mu.Lock()
	c.draft.Progress = p
	c.mu.Unlock()
}

// AttachImage uploads the image at path and makes it the pending image,
// replacing any earlier one. onProgress, if set, sees every percentage step.
func (c *Composer) AttachImage(ctx context.Context, path string, onProgress media.ProgressFunc) (string, error) {
	c.setProgress(0)

	url, err := c.uploader.Upload(ctx, path, func(p int) {
		c.setProgress(p)
		if onProgress != nil {
			onProgress(p)
		}
	})
	if err != nil {
		c.setProgress(0)
		c.logger.Error(ctx, "image upload", "path", path, "error", err)
		return "", fmt.Errorf("attach image: %w", err)
	}

	c.mu.Lock()
	c.draft.ImageURL = url
	c.draft.Progress = 100
	c.mu.Unlock()
	return url, nil
}

// Submit publishes the draft. A caption that is empty after trimming does
// nothing and reports false. On success the draft is cleared; on failure
// it is kept so the user can retry.
func (c *Composer) Submit(ctx context.Context) (models.Post, bool, error) {
	d := c.Draft()
	if strings.TrimSpace(d.Caption) == "" {
		return models.Post{}, false, nil
	}

	p, err := c.feed.Append(ctx, c.author.DisplayName(ctx), d.Caption, d.ImageURL)
	if err != nil {
		return models.Post{}, false, fmt.Errorf("publish post: %w", err)
	}

	c.mu.Lock()
	c.draft = Draft{}
	c.mu.Unlock()
	return p, true, nil
}
