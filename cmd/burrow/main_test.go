package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_conf_resolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "burrow.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
relay_address: wss://relay.internal.example/ws
api_key: bk_file_key
local_port: 9000
`), 0o644))

	const defaultRelay = "wss://relay.burrow.dev/ws"

	for _, test := range []struct {
		name          string
		conf          conf
		relaySet      bool
		expectedRelay string
		expectedKey   string
		expectedPort  int
	}{
		{
			name:          "file relay wins over flag default",
			conf:          conf{RelayAddress: defaultRelay, ConfigPath: path},
			expectedRelay: "wss://relay.internal.example/ws",
			expectedKey:   "bk_file_key",
			expectedPort:  9000,
		},
		{
			name:          "explicitly set relay flag wins over file",
			conf:          conf{RelayAddress: "wss://relay.other.example/ws", ConfigPath: path},
			relaySet:      true,
			expectedRelay: "wss://relay.other.example/ws",
			expectedKey:   "bk_file_key",
			expectedPort:  9000,
		},
		{
			name:          "key and port flags win over file",
			conf:          conf{APIKey: "bk_flag_key", LocalPort: 8000, RelayAddress: defaultRelay, ConfigPath: path},
			expectedRelay: "wss://relay.internal.example/ws",
			expectedKey:   "bk_flag_key",
			expectedPort:  8000,
		},
		{
			name:          "flag default applies without a file",
			conf:          conf{APIKey: "bk_flag_key", LocalPort: 8000, RelayAddress: defaultRelay},
			expectedRelay: defaultRelay,
			expectedKey:   "bk_flag_key",
			expectedPort:  8000,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := test.conf.resolve(test.relaySet)
			require.NoError(t, err)

			assert.Equal(t, test.expectedRelay, cfg.RelayAddress)
			assert.Equal(t, test.expectedKey, cfg.APIKey)
			assert.Equal(t, test.expectedPort, cfg.LocalPort)
		})
	}
}

func Test_conf_resolve_Invalid(t *testing.T) {
	_, err := conf{LocalPort: 8000}.resolve(false)
	assert.ErrorContains(t, err, "api-key must be non-empty string")

	_, err = conf{ConfigPath: filepath.Join(t.TempDir(), "nope.yml")}.resolve(false)
	assert.ErrorContains(t, err, "loading configuration")
}
