package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"go.burrow.dev/burrow/pkg/protocol"
)

// ErrAuthRejected is returned by Run when the relay explicitly rejects the
// client's credentials. A rejected credential will not become valid by
// retrying, so no reconnect is attempted.
var ErrAuthRejected = errors.New("authentication rejected")

var (
	// DefaultDialer is the default websocket dialer used for establishing
	// the relay channel.
	DefaultDialer = &websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	// DefaultHandshakeTimeout bounds the wait for the relay's auth result.
	DefaultHandshakeTimeout = 10 * time.Second

	// DefaultHeartbeatInterval is the period between pings while the
	// connection is ready. The relay considers a connection dead after
	// 90 seconds of silence, so this must stay well under that.
	DefaultHeartbeatInterval = 25 * time.Second

	// DefaultForwardTimeout bounds each request replayed against the
	// local service.
	DefaultForwardTimeout = 25 * time.Second
)

// Session describes an authenticated relay connection. It is only valid for
// the lifetime of the connection that produced it.
type Session struct {
	AgentName   string
	ServiceCode string
	TunnelURL   string
}

// Client dials out to a burrow relay and exposes a service running on the
// operator's local machine through it. Given the connection is established
// and authenticated, the client replays each request delivered by the relay
// against the local service and returns the result over the same channel.
// On connection loss it reconnects with a capped backoff schedule.
type Client struct {
	// LocalAddr is the base URL of the local service requests are
	// forwarded to, e.g. "http://127.0.0.1:8000".
	LocalAddr string

	// Authenticator adds credentials to the outbound auth message.
	Authenticator Authenticator

	// Logger allows the caller to configure a custom *slog.Logger instance.
	// If not defined then Client uses the default instance returned by slog.Default.
	Logger *slog.Logger

	// Dialer is used to establish the websocket channel.
	// See DefaultDialer for the parameters used when this is nil.
	Dialer *websocket.Dialer

	// HandshakeTimeout, HeartbeatInterval and ForwardTimeout override
	// their package-level defaults when positive.
	HandshakeTimeout  time.Duration
	HeartbeatInterval time.Duration
	ForwardTimeout    time.Duration

	// Backoff is the reconnect delay schedule.
	// See DefaultSchedule for the delays used when this is empty.
	Backoff Schedule

	// OnSessionReady is called each time the client has successfully
	// authenticated with the relay.
	OnSessionReady func(Session)
}

func coallesce[T any](v, d *T) *T {
	if v == nil {
		return d
	}

	return v
}

// Run dials the relay at addr and serves the tunnel until ctx is cancelled
// or the relay rejects the client's credentials. Connection loss and
// handshake timeouts are retried with the configured backoff schedule; only
// an explicit authentication rejection is fatal.
func (c *Client) Run(ctx context.Context, addr string) error {
	attrs := []slog.Attr{slog.String("addr", addr)}
	if u, err := url.Parse(addr); err == nil && u.Host != "" {
		attrs = []slog.Attr{slog.String("relay", u.Host)}
	}

	log := slog.New(coallesce(c.Logger, slog.Default()).Handler().WithAttrs(attrs))

	schedule := c.Backoff
	if len(schedule) == 0 {
		schedule = DefaultSchedule
	}

	var attempt int
	for {
		authed, err := c.dialAndServe(ctx, log, addr)
		if errors.Is(err, ErrAuthRejected) {
			return err
		}

		if ctx.Err() != nil {
			return nil
		}

		if authed {
			// the counter resets on successful authentication,
			// not merely on successful connection
			attempt = 0
			log.Info("Connection lost", "error", err)
		} else {
			log.Debug("Error while attempting to connect", "error", err)
		}

		delay := schedule.Delay(attempt)
		attempt++

		log.Info("Reconnecting", "delay", delay)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

// dialAndServe runs a single connection to completion. The returned bool
// reports whether the handshake succeeded before the connection ended.
func (c *Client) dialAndServe(ctx context.Context, log *slog.Logger, addr string) (authed bool, err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Debug("Dialing relay")

	ch, err := dialChannel(ctx, coallesce(c.Dialer, DefaultDialer), addr)
	if err != nil {
		return false, err
	}

	defer ch.Close()

	session, err := c.handshake(ctx, ch)
	if err != nil {
		return false, err
	}

	log.Info("Authenticated", "agent", session.AgentName, "service", session.ServiceCode)
	log.Info("Tunnel ready", "url", session.TunnelURL, "target", c.LocalAddr)

	if c.OnSessionReady != nil {
		c.OnSessionReady(session)
	}

	hbctx, stopHeartbeat := context.WithCancel(ctx)

	hbdone := make(chan struct{})
	go func() {
		defer close(hbdone)

		c.heartbeat(hbctx, log, ch)
	}()

	// the heartbeat is stopped and joined before this connection is
	// replaced, so no ping can outlive the connection that carried it
	defer func() {
		stopHeartbeat()
		_ = ch.Close()
		<-hbdone
	}()

	return true, c.serve(ctx, log, ch)
}

// handshake sends a single auth message and awaits exactly one reply.
// It is never retried internally: retrying means a full reconnect, which is
// Run's responsibility. Timeouts, disconnects and malformed replies are all
// retryable; only a well-formed reply that is not auth_ok is fatal.
func (c *Client) handshake(ctx context.Context, ch *channel) (Session, error) {
	msg := protocol.Message{Type: protocol.TypeAuth}

	auth := defaultAuthenticator
	if c.Authenticator != nil {
		auth = c.Authenticator
	}

	if err := auth.Authenticate(ctx, &msg); err != nil {
		return Session{}, fmt.Errorf("authenticating session: %w", err)
	}

	if err := ch.Write(&msg); err != nil {
		return Session{}, fmt.Errorf("sending auth request: %w", err)
	}

	timeout := c.HandshakeTimeout
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}

	resp, err := ch.ReadWithin(timeout)
	if err != nil {
		return Session{}, fmt.Errorf("awaiting auth result: %w", err)
	}

	if resp.Type != protocol.TypeAuthOK {
		return Session{}, fmt.Errorf("%w: %s", ErrAuthRejected, resp.Reason)
	}

	return Session{
		AgentName:   resp.AgentName,
		ServiceCode: resp.ServiceCode,
		TunnelURL:   resp.TunnelURL,
	}, nil
}

// serve runs the receive loop for an authenticated connection. Requests are
// handled sequentially: the response for each request envelope is sent
// before the next inbound message is read.
func (c *Client) serve(ctx context.Context, log *slog.Logger, ch *channel) error {
	timeout := c.ForwardTimeout
	if timeout <= 0 {
		timeout = DefaultForwardTimeout
	}

	fwd := NewForwarder(c.LocalAddr, timeout)

	for {
		msg, err := ch.Read()
		if err != nil {
			if errors.Is(err, ErrMalformedMessage) {
				return err
			}

			return fmt.Errorf("reading channel: %w", err)
		}

		switch msg.Type {
		case protocol.TypePong:
		case protocol.TypeRequest:
			log.Debug("Forwarding request", "id", msg.ID, "method", msg.Method, "path", msg.Path)

			resp := fwd.Forward(ctx, &msg)
			if err := ch.Write(&resp); err != nil {
				return fmt.Errorf("sending response: %w", err)
			}

			log.Debug("Forwarded request", "id", msg.ID, "status", resp.Status)
		default:
			log.Debug("Ignoring unexpected message", "type", msg.Type)
		}
	}
}

// heartbeat pings the relay on a fixed interval while the connection is
// ready. If a send fails the task ends silently: the receive loop observes
// the channel failure independently and drives reconnection.
func (c *Client) heartbeat(ctx context.Context, log *slog.Logger, ch *channel) {
	interval := c.HeartbeatInterval
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}

			if err := ch.Write(&protocol.Message{Type: protocol.TypePing}); err != nil {
				log.Debug("Heartbeat send failed", "error", err)
				return
			}
		}
	}
}
