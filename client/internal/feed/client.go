package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/RihoKanda/Abandoned/shared/protocol"
)

var ErrClosed = errors.New("feed: write on closed connection")

// Client is a presentation side connection to a running feed.
type Client struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	inCh   chan protocol.MsgEnvelope
	closed bool
}

// Dial connects to a feed websocket, e.g. ws://127.0.0.1:8090/ws.
func Dial(ctx context.Context, wsURL string) (*Client, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
		Proxy: func(*http.Request) (*url.URL, error) {
			return nil, nil // the feed is local
		},
	}
	conn, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	c := &Client{conn: conn, inCh: make(chan protocol.MsgEnvelope, 128)}
	go c.reader()
	return c, nil
}

// Events yields every envelope the feed pushes. It is closed when the
// connection ends.
func (c *Client) Events() <-chan protocol.MsgEnvelope { return c.inCh }

func (c *Client) reader() {
	defer close(c.inCh)
	for {
		var env protocol.MsgEnvelope
		if err := c.conn.ReadJSON(&env); err != nil {
			c.mu.Lock()
			c.closed = true
			c.mu.Unlock()
			return
		}
		c.inCh <- env
	}
}

// Send issues a command such as "LevelUp" or "Upgrade".
func (c *Client) Send(typ string, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(protocol.MsgEnvelope{Type: typ, Data: b}); err != nil {
		c.closed = true
		return err
	}
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return c.conn.Close()
}
