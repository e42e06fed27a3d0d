// Package transport dials the collaboration server and carries wire
// envelopes back and forth over a WebSocket connection.
package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/driftdoc/client/internal/wire"
)

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	WriteJSON(v any) error
	ReadJSON(v any) error
	Close() error
}

// gorillaConn adapts *websocket.Conn to Conn.
type gorillaConn struct {
	ws *websocket.Conn
}

func (g *gorillaConn) WriteJSON(v any) error { return g.ws.WriteJSON(v) }
func (g *gorillaConn) ReadJSON(v any) error  { return g.ws.ReadJSON(v) }
func (g *gorillaConn) Close() error          { return g.ws.Close() }

// Dial connects to a collaboration server at url.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	return NewClient(&gorillaConn{ws: conn}), nil
}

// Client wraps a Conn with the envelope framing the server expects.
// Safe for concurrent Send calls; Receive is meant to be called from a
// single reader goroutine, as is conventional for a WebSocket client.
type Client struct {
	conn Conn

	mu sync.Mutex
}

// NewClient wraps an already-established Conn. Exposed so tests (and
// alternate transports) can supply a fake Conn instead of dialing out.
func NewClient(conn Conn) *Client {
	return &Client{conn: conn}
}

// Send writes one envelope to the wire.
func (c *Client) Send(env wire.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn.WriteJSON(env)
}

// Receive blocks for the next envelope from the server.
func (c *Client) Receive() (wire.Envelope, error) {
	var env wire.Envelope
	if err := c.conn.ReadJSON(&env); err != nil {
		return wire.Envelope{}, err
	}

	return env, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
