package protocol

import (
	"github.com/goccy/go-json"
)

// Type tags every message exchanged over the relay channel.
type Type string

const (
	// TypeAuth is sent by the client immediately after the channel is
	// established to authenticate the session.
	TypeAuth Type = "auth"
	// TypeAuthOK is the relay's positive reply to an auth message. Any
	// other reply to an auth message is an authentication rejection.
	TypeAuthOK Type = "auth_ok"

	TypePing Type = "ping"
	TypePong Type = "pong"

	// TypeRequest carries an inbound HTTP request captured by the relay.
	TypeRequest Type = "request"
	// TypeResponse carries the matching result back to the relay.
	TypeResponse Type = "response"
)

// Message is the envelope for every frame on the relay channel.
// Which fields are populated depends on Type.
type Message struct {
	Type Type `json:"type"`

	// auth
	APIKey string `json:"api_key,omitempty"`

	// auth result
	AgentName   string `json:"agent_name,omitempty"`
	ServiceCode string `json:"service_code,omitempty"`
	TunnelURL   string `json:"tunnel_url,omitempty"`
	Reason      string `json:"message,omitempty"`

	// request / response
	// ID correlates a response with the request it answers. It is
	// assigned by the relay and echoed back verbatim.
	ID          string            `json:"id,omitempty"`
	Method      string            `json:"method,omitempty"`
	Path        string            `json:"path,omitempty"`
	QueryString string            `json:"query_string,omitempty"`
	Status      int               `json:"status,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Body        string            `json:"body,omitempty"`
}

// Encode serializes a message for transmission on the channel.
func Encode(m *Message) ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses a single message frame received from the channel.
func Decode(data []byte) (m Message, _ error) {
	return m, json.Unmarshal(data, &m)
}
