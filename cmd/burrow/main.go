package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"golang.org/x/sync/errgroup"

	"go.burrow.dev/burrow/client"
	"go.burrow.dev/burrow/internal/config"
)

type conf struct {
	Level        config.Level `ff:" short=l | long=log           |                                    usage: 'debug, info, warn or error'                  "`
	APIKey       string       `ff:" short=k | long=api-key       |                                    usage: API key identifying this agent (required)     "`
	LocalPort    int          `ff:" short=p | long=port          |                                    usage: port of the local service to expose (required)"`
	RelayAddress string       `ff:" short=a | long=relay-address | default='wss://relay.burrow.dev/ws' | usage: websocket address of the relay            "`
	ConfigPath   string       `ff:" short=c | long=config        |                                    usage: path to optional yaml configuration file      "`
}

func main() {
	flags := ff.NewFlagSet("burrow")

	var conf conf
	if err := flags.AddStruct(&conf); err != nil {
		panic(err)
	}

	cmd := &ff.Command{
		Name:  "burrow",
		Usage: "burrow [FLAGS]",
		Flags: flags,
		Exec: func(ctx context.Context, args []string) error {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.Level(conf.Level),
			})))

			relaySet := false
			if f, ok := flags.GetFlag("relay-address"); ok {
				relaySet = f.IsSet()
			}

			cfg, err := conf.resolve(relaySet)
			if err != nil {
				return err
			}

			return runClient(ctx, cfg)
		},
	}

	if err := cmd.ParseAndRun(context.Background(), os.Args[1:],
		ff.WithEnvVarPrefix("BURROW"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Command(cmd))
		if !errors.Is(err, ff.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}

		os.Exit(1)
	}
}

// resolve merges the optional configuration file with the parsed flags.
// Flags win over file values; the relay-address flag's built-in default only
// applies when neither the flag nor the file set an address, which is why
// the flag's set-state is threaded through as relaySet.
func (c conf) resolve(relaySet bool) (config.Config, error) {
	var cfg config.Config

	if c.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(c.ConfigPath); err != nil {
			return cfg, err
		}
	}

	if c.APIKey != "" {
		cfg.APIKey = c.APIKey
	}

	if c.LocalPort != 0 {
		cfg.LocalPort = c.LocalPort
	}

	if c.RelayAddress != "" && (relaySet || cfg.RelayAddress == "") {
		cfg.RelayAddress = c.RelayAddress
	}

	return cfg, cfg.Validate()
}

func runClient(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &client.Client{
		LocalAddr:         fmt.Sprintf("http://127.0.0.1:%d", cfg.LocalPort),
		Authenticator:     client.KeyAuthenticator(cfg.APIKey),
		HandshakeTimeout:  time.Duration(cfg.HandshakeTimeout),
		HeartbeatInterval: time.Duration(cfg.HeartbeatInterval),
		ForwardTimeout:    time.Duration(cfg.ForwardTimeout),
		OnSessionReady: func(s client.Session) {
			slog.Info("Tunnel established",
				"agent", s.AgentName,
				"service", s.ServiceCode,
				"url", s.TunnelURL,
			)
		},
	}

	slog.Info("Connecting to relay", "addr", cfg.RelayAddress, "target_port", cfg.LocalPort)

	var group errgroup.Group
	group.Go(func() error {
		return c.Run(ctx, cfg.RelayAddress)
	})

	return group.Wait()
}
