package client

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"go.burrow.dev/burrow/pkg/protocol"
)

// Forwarder replays request envelopes received from the relay against the
// local service and converts the outcome into a response envelope.
// It never returns an error: every failure mode maps onto a well-formed
// response so the relay is never left waiting on a request it delivered.
type Forwarder struct {
	base string
	http *http.Client
}

// NewForwarder constructs a Forwarder targeting the local service at base
// (e.g. "http://127.0.0.1:8000"). Requests which take longer than timeout
// are reported to the relay as a gateway timeout.
func NewForwarder(base string, timeout time.Duration) *Forwarder {
	return &Forwarder{
		base: strings.TrimSuffix(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// Forward issues req against the local service and returns the response
// envelope to send back over the channel, correlated by the request id.
func (f *Forwarder) Forward(ctx context.Context, req *protocol.Message) protocol.Message {
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	path := req.Path
	if path == "" {
		path = "/"
	}

	url := f.base + path
	if req.QueryString != "" {
		url += "?" + req.QueryString
	}

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	hreq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return errorResponse(req.ID, http.StatusInternalServerError, err.Error())
	}

	for name, value := range req.Headers {
		// connection-specific headers must not be replayed to the
		// local service
		switch strings.ToLower(name) {
		case "host", "connection":
			continue
		}

		hreq.Header.Set(name, value)
	}

	resp, err := f.http.Do(hreq)
	if err != nil {
		switch {
		case isTimeout(err):
			return errorResponse(req.ID, http.StatusGatewayTimeout, "Local service timed out")
		case isUnreachable(err):
			return errorResponse(req.ID, http.StatusBadGateway, "Cannot reach local service")
		default:
			return errorResponse(req.ID, http.StatusInternalServerError, err.Error())
		}
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorResponse(req.ID, http.StatusInternalServerError, err.Error())
	}

	headers := make(map[string]string, len(resp.Header))
	for name := range resp.Header {
		headers[name] = resp.Header.Get(name)
	}

	return protocol.Message{
		Type:    protocol.TypeResponse,
		ID:      req.ID,
		Status:  resp.StatusCode,
		Headers: headers,
		Body:    string(data),
	}
}

func errorResponse(id string, status int, reason string) protocol.Message {
	body, _ := json.Marshal(map[string]string{"error": reason})

	return protocol.Message{
		Type:    protocol.TypeResponse,
		ID:      id,
		Status:  status,
		Headers: map[string]string{},
		Body:    string(body),
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

func isUnreachable(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
