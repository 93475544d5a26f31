package chat

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = 54 * time.Second

	// Maximum inbound frame size in bytes.
	maxMessageSize = 8192
)

// Client ties a Session to its WebSocket. The read pump serializes inbound
// frames into the session; the write pump drains the session's delivery
// handle.
type Client struct {
	conn    *websocket.Conn
	session *Session
	log     zerolog.Logger
	done    chan struct{}
}

// NewClient wraps an upgraded connection.
func NewClient(conn *websocket.Conn, session *Session, log zerolog.Logger) *Client {
	return &Client{
		conn:    conn,
		session: session,
		log:     log,
		done:    make(chan struct{}),
	}
}

// Run opens the session and pumps until the connection closes. It blocks
// for the lifetime of the connection.
func (c *Client) Run(ctx context.Context) {
	c.session.Open(ctx)
	go c.writePump()
	c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.session.Close(ctx)
		close(c.done)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}
		// Binary frames are out of scope.
		if msgType != websocket.TextMessage {
			continue
		}
		c.session.HandleFrame(ctx, frame)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.session.Deliveries():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
