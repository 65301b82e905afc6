package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "burrow.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
relay_address: wss://relay.internal.example/ws
api_key: bk_test_key
local_port: 8000
heartbeat_interval: 10s
forward_timeout: 1m30s
`), 0o644))

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "wss://relay.internal.example/ws", conf.RelayAddress)
	assert.Equal(t, "bk_test_key", conf.APIKey)
	assert.Equal(t, 8000, conf.LocalPort)
	assert.Equal(t, Duration(10*time.Second), conf.HeartbeatInterval)
	assert.Equal(t, Duration(90*time.Second), conf.ForwardTimeout)
	assert.Zero(t, conf.HandshakeTimeout)
}

func Test_Load_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func Test_Load_InvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "burrow.yml")
	require.NoError(t, os.WriteFile(path, []byte("heartbeat_interval: often\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func Test_Config_Validate(t *testing.T) {
	for _, test := range []struct {
		name        string
		conf        Config
		expectedErr string
	}{
		{
			name: "valid",
			conf: Config{APIKey: "bk_test_key", LocalPort: 8000},
		},
		{
			name:        "missing api key",
			conf:        Config{LocalPort: 8000},
			expectedErr: "api-key must be non-empty string",
		},
		{
			name:        "missing port",
			conf:        Config{APIKey: "bk_test_key"},
			expectedErr: "port must be in range",
		},
		{
			name:        "port out of range",
			conf:        Config{APIKey: "bk_test_key", LocalPort: 70000},
			expectedErr: "port must be in range",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			err := test.conf.Validate()
			if test.expectedErr == "" {
				require.NoError(t, err)
				return
			}

			assert.ErrorContains(t, err, test.expectedErr)
		})
	}
}

func Test_Level_Set(t *testing.T) {
	var level Level
	require.NoError(t, level.Set("debug"))
	assert.Equal(t, slog.LevelDebug, slog.Level(level))
	assert.Equal(t, "DEBUG", level.String())

	require.Error(t, level.Set("noisy"))
}
