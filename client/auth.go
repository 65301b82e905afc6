package client

import (
	"context"
	"log/slog"

	"go.burrow.dev/burrow/pkg/protocol"
)

// Authenticator is a type which adds authentication credentials to the
// outbound auth message. It is called before the message is serialized and
// written to the channel.
type Authenticator interface {
	Authenticate(context.Context, *protocol.Message) error
}

// AuthenticatorFunc is a function which implements the Authenticator interface
type AuthenticatorFunc func(context.Context, *protocol.Message) error

// Authenticate delegates to the underlying AuthenticatorFunc
func (a AuthenticatorFunc) Authenticate(ctx context.Context, m *protocol.Message) error {
	return a(ctx, m)
}

var defaultAuthenticator Authenticator = AuthenticatorFunc(func(ctx context.Context, m *protocol.Message) error {
	slog.Warn("No authenticator provided, attempting to authenticate without credentials")
	return nil
})

// KeyAuthenticator returns an instance of Authenticator which sets the
// provided API key on auth messages passed to Authenticate.
func KeyAuthenticator(key string) Authenticator {
	return AuthenticatorFunc(func(ctx context.Context, m *protocol.Message) error {
		m.APIKey = key
		return nil
	})
}
