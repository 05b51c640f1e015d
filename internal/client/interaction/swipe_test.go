package interaction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwipe_Thresholds(t *testing.T) {
	tests := []struct {
		dx      float64
		reveal  bool
		outcome SwipeOutcome
	}{
		{0, false, SwipeSnapBack},
		{-50, false, SwipeSnapBack},
		{-51, true, SwipeSnapBack},
		{-100, true, SwipeSnapBack},
		{-101, true, SwipeDelete},
		{40, false, SwipeSnapBack},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.reveal, DefaultSwipe.Move(tt.dx), "move %v", tt.dx)
		assert.Equal(t, tt.outcome, DefaultSwipe.Release(tt.dx), "release %v", tt.dx)
	}
}

func TestRelease_PastThresholdAsks(t *testing.T) {
	s, _ := newFixture(t)
	ctx := context.Background()
	a := &answer{ok: false}
	c := s.Mount(ctx, 1, removerFunc(noRemove), a)

	out, deleted, err := c.Release(ctx, -30)
	require.NoError(t, err)
	assert.Equal(t, SwipeSnapBack, out)
	assert.False(t, deleted)
	assert.Empty(t, a.asked)

	out, deleted, err = c.Release(ctx, -120)
	require.NoError(t, err)
	assert.Equal(t, SwipeDelete, out)
	assert.False(t, deleted)
	assert.Len(t, a.asked, 1)
}

func TestWithSwipe(t *testing.T) {
	s, _ := newFixture(t)
	c := s.Mount(context.Background(), 1, removerFunc(noRemove), &answer{}, WithSwipe(Swipe{RevealAt: -10, DeleteAt: -20}))

	shown, err := c.Move(-15)
	require.NoError(t, err)
	assert.True(t, shown)
}
