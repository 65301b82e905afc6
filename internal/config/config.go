package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Level slog.Level

func (l Level) String() string {
	return slog.Level(l).String()
}

func (l *Level) Set(v string) error {
	level := slog.Level(*l)
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return err
	}

	*l = Level(level)
	return nil
}

// Duration is a time.Duration which unmarshals from yaml strings such as
// "25s" or "1m30s".
type Duration time.Duration

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var v string
	if err := value.Decode(&v); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(v)
	if err != nil {
		return err
	}

	*d = Duration(parsed)
	return nil
}

// Config is the file-backed configuration for the burrow tunnel client.
// Values supplied as command-line flags take precedence over it.
type Config struct {
	RelayAddress string `json:"relay_address,omitempty" yaml:"relay_address,omitempty"`
	APIKey       string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	LocalPort    int    `json:"local_port,omitempty" yaml:"local_port,omitempty"`

	HandshakeTimeout  Duration `json:"handshake_timeout,omitempty" yaml:"handshake_timeout,omitempty"`
	HeartbeatInterval Duration `json:"heartbeat_interval,omitempty" yaml:"heartbeat_interval,omitempty"`
	ForwardTimeout    Duration `json:"forward_timeout,omitempty" yaml:"forward_timeout,omitempty"`
}

// Load reads a Config from the yaml document at path.
func Load(path string) (Config, error) {
	var conf Config

	fi, err := os.Open(path)
	if err != nil {
		return conf, fmt.Errorf("loading configuration: %w", err)
	}

	defer fi.Close()

	if err := yaml.NewDecoder(fi).Decode(&conf); err != nil {
		return conf, fmt.Errorf("loading configuration: %w", err)
	}

	return conf, nil
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("api-key must be non-empty string")
	}

	if c.LocalPort <= 0 || c.LocalPort > 65535 {
		return fmt.Errorf("port must be in range 1-65535, got %d", c.LocalPort)
	}

	return nil
}
