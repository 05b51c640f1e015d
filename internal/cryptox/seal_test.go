package cryptox

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/dmitrijs2005/devfeed/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := common.GenerateRandByteArray(KeySize)
	in := record{Identifier: "ann@example.com", Secret: "hunter2"}

	sealed, err := Seal(in, key)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "hunter2")

	var out record
	require.NoError(t, Open(sealed, key, &out))
	assert.Equal(t, in, out)
}

func TestSeal_FreshNonce(t *testing.T) {
	key := common.GenerateRandByteArray(KeySize)
	a, err := Seal("x", key)
	require.NoError(t, err)
	b, err := Seal("x", key)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestOpen_Failures(t *testing.T) {
	key := common.GenerateRandByteArray(KeySize)
	sealed, err := Seal(record{Identifier: "a"}, key)
	require.NoError(t, err)

	var out record

	t.Run("wrong key", func(t *testing.T) {
		require.Error(t, Open(sealed, common.GenerateRandByteArray(KeySize), &out))
	})

	t.Run("tampered", func(t *testing.T) {
		bad := append([]byte(nil), sealed...)
		bad[len(bad)-1] ^= 0xff
		require.Error(t, Open(bad, key, &out))
	})

	t.Run("short", func(t *testing.T) {
		require.ErrorIs(t, Open([]byte{1, 2}, key, &out), ErrShortCiphertext)
	})

	t.Run("bad key size", func(t *testing.T) {
		require.Error(t, Open(sealed, []byte("short"), &out))
	})
}

func TestLoadOrCreateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "device.key")

	k1, err := LoadOrCreateKey(path)
	require.NoError(t, err)
	require.Len(t, k1, KeySize)

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	}

	k2, err := LoadOrCreateKey(path)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestLoadOrCreateKey_RejectsWrongLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.key")
	require.NoError(t, os.WriteFile(path, []byte("too short"), 0o600))

	_, err := LoadOrCreateKey(path)
	require.Error(t, err)
}
