package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/devfeed/internal/client/interaction"
	"github.com/dmitrijs2005/devfeed/internal/client/models"
)

// card returns the mounted card of a post that is in the feed.
func (a *App) card(ctx context.Context, id int64) (*interaction.Card, bool) {
	if c, ok := a.cards[id]; ok {
		return c, true
	}
	if _, ok := a.feed.Get(id); !ok {
		a.printf("No post #%d\n", id)
		return nil, false
	}
	c := a.interactions.Mount(ctx, id, a.feed, confirmer{a})
	a.cards[id] = c
	return c, true
}

func (a *App) forget(id int64) {
	if c, ok := a.cards[id]; ok {
		c.Unmount()
		delete(a.cards, id)
	}
}

func (a *App) Feed(ctx context.Context) error {
	posts := a.feed.Posts()
	if len(posts) == 0 {
		a.println("No posts yet. Type 'post' to write one.")
		return nil
	}

	// newest first, as the home screen shows them
	for i := len(posts) - 1; i >= 0; i-- {
		p := posts[i]
		c, ok := a.card(ctx, p.ID)
		if !ok {
			continue
		}
		st, err := c.State()
		if err != nil {
			continue
		}
		a.printPost(p, st)
	}
	return nil
}

func (a *App) printPost(p models.Post, st interaction.State) {
	heart := "♡"
	if st.Liked {
		heart = "♥"
	}
	a.printf("#%d @%s\n", p.ID, p.Username)
	a.printf("    %s\n", p.Caption)
	if p.ImageURL != "" {
		a.printf("    image: %s\n", p.ImageURL)
	}
	a.printf("    %s %d   comments: %d\n", heart, st.LikeCount, p.CommentCount)
}

// Post asks for the caption and publishes the draft with any attached
// image. A blank caption does nothing.
func (a *App) Post(ctx context.Context) error {
	d := a.composer.Draft()
	if d.ImageURL != "" {
		a.println("Attached image:", d.ImageURL)
	}

	caption, err := getTextWithDefault(a.reader, "What's on your mind?", d.Caption, a.out)
	if err != nil {
		return err
	}
	a.composer.SetCaption(caption)

	p, ok, err := a.composer.Submit(ctx)
	if err != nil {
		a.showError(err)
		return err
	}
	if ok {
		a.printf("Posted #%d\n", p.ID)
	}
	return nil
}

func (a *App) Attach(ctx context.Context, path string) error {
	last := -1
	url, err := a.composer.AttachImage(ctx, path, func(p int) {
		// one line per ten percent
		if p/10 != last/10 || p == 100 {
			last = p
			a.printf("Uploading... %d%%\n", p)
		}
	})
	if err != nil {
		a.showError(err)
		return err
	}
	a.println("Image attached:", url)
	return nil
}

func (a *App) Like(ctx context.Context, id int64) error {
	c, ok := a.card(ctx, id)
	if !ok {
		return nil
	}
	st, err := c.ToggleLike(ctx)
	if err != nil {
		a.showError(err)
		return err
	}
	if st.Liked {
		a.printf("Liked #%d (%d)\n", id, st.LikeCount)
	} else {
		a.printf("Unliked #%d (%d)\n", id, st.LikeCount)
	}
	return nil
}

func (a *App) Delete(ctx context.Context, id int64) error {
	c, ok := a.card(ctx, id)
	if !ok {
		return nil
	}
	deleted, err := c.RequestDelete(ctx)
	return a.afterDelete(id, deleted, err)
}

// Swipe drags the card of post id to dx and lets go.
func (a *App) Swipe(ctx context.Context, id int64, dx float64) error {
	c, ok := a.card(ctx, id)
	if !ok {
		return nil
	}
	if shown, err := c.Move(dx); err == nil && shown {
		a.println("[ Delete ]")
	}

	out, deleted, err := c.Release(ctx, dx)
	if out == interaction.SwipeSnapBack && err == nil {
		return nil
	}
	return a.afterDelete(id, deleted, err)
}

func (a *App) afterDelete(id int64, deleted bool, err error) error {
	if err != nil {
		if !errors.Is(err, interaction.ErrUnmounted) {
			a.showError(err)
		}
		return err
	}
	if deleted {
		a.forget(id)
		a.printf("Deleted #%d\n", id)
	}
	return nil
}

// confirmer asks through the terminal. Only an explicit "delete" (or d)
// confirms.
type confirmer struct {
	a *App
}

func (c confirmer) Confirm(_ context.Context, title, message, label string) (bool, error) {
	prompt := fmt.Sprintf("%s\n%s [Cancel/%s]", title, message, label)
	v, err := getSimpleText(c.a.reader, prompt, c.a.out)
	if err != nil {
		return false, err
	}
	v = strings.ToLower(v)
	return v == strings.ToLower(label) || v == "d", nil
}
