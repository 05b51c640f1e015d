package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, "~/.devfeed", c.DataDir)
	assert.Equal(t, "warn", c.LogLevel)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeConfig(t, `{"server_endpoint_addr":"json:1","online_check_interval":"10s","data_dir":"/var/devfeed"}`)

	tests := []struct {
		name string
		args []string
		want Config
	}{
		{
			name: "defaults only",
			args: nil,
			want: Config{ServerEndpointAddr: "127.0.0.1:50051", OnlineCheckInterval: 3 * time.Second, DataDir: "~/.devfeed", LogLevel: "warn"},
		},
		{
			name: "json overrides defaults",
			args: []string{"-c", path},
			want: Config{ServerEndpointAddr: "json:1", OnlineCheckInterval: 10 * time.Second, DataDir: "/var/devfeed", LogLevel: "warn"},
		},
		{
			name: "flags override json",
			args: []string{"-config", path, "-a", "flag:2", "-i", "7", "-l", "debug"},
			want: Config{ServerEndpointAddr: "flag:2", OnlineCheckInterval: 7 * time.Second, DataDir: "/var/devfeed", LogLevel: "debug"},
		},
		{
			name: "unknown flags ignored",
			args: []string{"-x", "1", "-d=/tmp/df"},
			want: Config{ServerEndpointAddr: "127.0.0.1:50051", OnlineCheckInterval: 3 * time.Second, DataDir: "/tmp/df", LogLevel: "warn"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(tt.args)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.want, *cfg))
		})
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("bad interval", func(t *testing.T) {
		_, err := LoadConfig([]string{"-i", "abc"})
		require.Error(t, err)
	})

	t.Run("missing json file", func(t *testing.T) {
		_, err := LoadConfig([]string{"-c", filepath.Join(t.TempDir(), "nope.json")})
		require.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := LoadConfig([]string{"-c", writeConfig(t, `{ not json`)})
		require.Error(t, err)
	})

	t.Run("invalid duration", func(t *testing.T) {
		_, err := LoadConfig([]string{"-c", writeConfig(t, `{"online_check_interval":"soon"}`)})
		require.Error(t, err)
	})
}
