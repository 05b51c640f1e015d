package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewText_LevelsFilterOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewText(&buf, "warn")
	require.NoError(t, err)

	ctx := context.Background()
	log.Debug(ctx, "dbg")
	log.Info(ctx, "inf")
	log.Warn(ctx, "wrn", "key", "posts")
	log.Error(ctx, "err", "post_id", 7)

	out := buf.String()
	assert.NotContains(t, out, "msg=dbg")
	assert.NotContains(t, out, "msg=inf")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "key=posts")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "post_id=7")
}

func TestWith_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewJSON(&buf, "debug")
	require.NoError(t, err)

	log.With("module", "feed").Debug(context.Background(), "loaded", "count", 3)

	out := buf.String()
	for _, s := range []string{`"level":"DEBUG"`, `"module":"feed"`, `"count":3`, `"msg":"loaded"`} {
		assert.True(t, strings.Contains(out, s), "expected %s in %s", s, out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		err  bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
		{in: " warning ", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := Nop()
	ctx := context.TODO()
	assert.NotPanics(t, func() {
		l.Info(ctx, "x")
		l.With("a", 1).Error(ctx, "y")
	})
}
