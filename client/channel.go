package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"go.burrow.dev/burrow/pkg/protocol"
)

// ErrMalformedMessage wraps decode failures on inbound frames so they can
// be told apart from connection-level read errors.
var ErrMalformedMessage = errors.New("malformed message")

// channel is the single bidirectional message stream to the relay.
// Reads happen from one goroutine only (the receive loop); writes come from
// both the receive loop and the heartbeat, so they are serialized here.
type channel struct {
	conn *websocket.Conn

	// wmu guards writes: gorilla websocket connections support at most
	// one concurrent writer.
	wmu sync.Mutex
}

// dialChannel establishes a websocket connection to the relay. The
// connection is closed when ctx is cancelled, which unblocks any pending
// read or write.
func dialChannel(ctx context.Context, dialer *websocket.Dialer, addr string) (*channel, error) {
	conn, resp, err := dialer.DialContext(ctx, addr, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dialing relay: %w (status %d)", err, resp.StatusCode)
		}

		return nil, fmt.Errorf("dialing relay: %w", err)
	}

	go func() {
		<-ctx.Done()

		_ = conn.Close()
	}()

	return &channel{conn: conn}, nil
}

func (c *channel) Write(m *protocol.Message) error {
	data, err := protocol.Encode(m)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *channel) Read() (protocol.Message, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return protocol.Message{}, err
	}

	m, err := protocol.Decode(data)
	if err != nil {
		return protocol.Message{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	return m, nil
}

// ReadWithin reads a single message, failing if none arrives within d.
// A read that times out leaves the connection unusable, which is fine for
// the one place this is called (the handshake) as the caller tears the
// connection down on error.
func (c *channel) ReadWithin(d time.Duration) (protocol.Message, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(d)); err != nil {
		return protocol.Message{}, err
	}

	m, err := c.Read()
	if err != nil {
		return protocol.Message{}, err
	}

	// clear the deadline for the receive loop
	return m, c.conn.SetReadDeadline(time.Time{})
}

func (c *channel) Close() error {
	return c.conn.Close()
}
