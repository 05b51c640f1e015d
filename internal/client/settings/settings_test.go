package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/devfeed/internal/client/kv/kvtest"
	"github.com/dmitrijs2005/devfeed/internal/common"
	"github.com/dmitrijs2005/devfeed/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfile struct {
	err   error
	calls []map[string]string
}

func (f *fakeProfile) UpdateProfile(_ context.Context, attrs map[string]string) error {
	f.calls = append(f.calls, attrs)
	return f.err
}

func newStore(t *testing.T) (*Store, *kvtest.Faulty, *fakeProfile) {
	t.Helper()
	f := kvtest.NewFaulty(kvtest.Open(t))
	p := &fakeProfile{}
	s := NewStore(f, p, logging.Nop())
	s.Load(context.Background())
	return s, f, p
}

func TestDefaults(t *testing.T) {
	s, _, _ := newStore(t)
	assert.Equal(t, Preferences{EmailNotifications: true}, s.Get())
}

func TestToggle_Persists(t *testing.T) {
	s, f, p := newStore(t)
	ctx := context.Background()

	got, err := s.Toggle(ctx, DarkMode)
	require.NoError(t, err)
	assert.True(t, got.DarkMode)
	assert.Empty(t, p.calls)

	fresh := NewStore(f, p, logging.Nop())
	fresh.Load(ctx)
	assert.Equal(t, got, fresh.Get())
}

func TestToggle_Unknown(t *testing.T) {
	s, _, _ := newStore(t)
	_, err := s.Toggle(context.Background(), "vibration")
	require.ErrorIs(t, err, ErrUnknownPreference)
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestToggle_WriteFailureReverts(t *testing.T) {
	s, f, _ := newStore(t)
	f.FailWrites(true)

	got, err := s.Toggle(context.Background(), PushNotifications)
	require.ErrorIs(t, err, kvtest.ErrInjected)
	assert.Equal(t, Defaults(), got)
	assert.Equal(t, Defaults(), s.Get())
}

func TestToggle_TwoStepUpdatesProfile(t *testing.T) {
	s, _, p := newStore(t)

	got, err := s.Toggle(context.Background(), TwoStepVerification)
	require.NoError(t, err)
	assert.True(t, got.TwoStepVerification)
	assert.Equal(t, []map[string]string{{TwoStepAttribute: "true"}}, p.calls)
}

func TestToggle_TwoStepProviderFailureReverts(t *testing.T) {
	s, f, p := newStore(t)
	ctx := context.Background()
	p.err = errors.New("network")

	got, err := s.Toggle(ctx, TwoStepVerification)
	require.ErrorIs(t, err, p.err)
	assert.False(t, got.TwoStepVerification)
	assert.False(t, s.Get().TwoStepVerification)

	fresh := NewStore(f, p, logging.Nop())
	fresh.Load(ctx)
	assert.False(t, fresh.Get().TwoStepVerification)
}

func TestLoad_Malformed(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{`nope`, `{"version":9,"payload":{"darkMode":true}}`, `{"version":1}`} {
		s, f, _ := newStore(t)
		require.NoError(t, f.Set(ctx, StorageKey, []byte(raw)))
		s.Load(ctx)
		assert.Equal(t, Defaults(), s.Get(), raw)
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"darkMode", "emailNotifications", "pushNotifications", "twoStepVerification"}, Names())
	assert.Len(t, Defaults().Map(), 4)
}
