// package client
//
// The client package contains the client-side types for interfacing with burrow relays.
// The client dials out to a relay over a single persistent websocket channel, performs
// a handshake to authenticate the session, and then serves requests delivered over the
// channel by replaying them against a service on the operator's local machine. No
// inbound network access to the local machine is required.
//
// # Example
//
//	package main
//
//	import (
//	    "context"
//
//	    "go.burrow.dev/burrow/client"
//	)
//
//	func main() {
//	    c := &client.Client{
//	        LocalAddr:     "http://127.0.0.1:8000",
//	        Authenticator: client.KeyAuthenticator("bk_live_xxx"),
//	    }
//
//	    c.Run(context.Background(), "wss://relay.burrow.dev/ws")
//	}
package client
