// Package ws adapts a websocket connection to the showdown.Transport
// interface.
package ws

import (
	"context"
	"fmt"

	"github.com/coder/websocket"
)

// Conn is a websocket-backed transport. Frames are sent as text; binary
// frames from the server are decoded as UTF-8 text before being handed
// to the session.
type Conn struct {
	conn *websocket.Conn
}

// Dial connects to the given websocket URL.
func Dial(ctx context.Context, url string) (*Conn, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	// Protocol frames can carry large roominfo payloads.
	conn.SetReadLimit(1 << 20)
	return &Conn{conn: conn}, nil
}

// Send writes one text frame.
func (c *Conn) Send(ctx context.Context, text string) error {
	return c.conn.Write(ctx, websocket.MessageText, []byte(text))
}

// ReadFrame blocks for the next frame and returns it as text.
func (c *Conn) ReadFrame(ctx context.Context) (string, error) {
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			return "", fmt.Errorf("connection closed: %w", err)
		}
		return "", err
	}
	return string(data), nil
}

// Close performs a normal websocket closure.
func (c *Conn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "bye")
}
