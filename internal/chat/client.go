package chat

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second    // deadline for a single frame write
	pongWait       = 60 * time.Second    // a peer silent for this long is gone
	pingPeriod     = (pongWait * 9) / 10 // must stay below pongWait
	maxMessageSize = 64 << 10            // largest inbound frame
	sendBufferSize = 256                 // outbound frames queued before dropping
)

// Client is a middleman between one user's websocket connection and the
// registry.
type Client struct {
	UserID int64

	conn *websocket.Conn
	// Buffered channel of outbound messages. Never closed; done stops the writer.
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(userID int64, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// enqueue hands msg to the writer without blocking. It reports false when
// the client is closed or its buffer is full, in which case msg is dropped.
func (c *Client) enqueue(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Close stops the writer and closes the transport. Safe to call repeatedly.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// goAway tells the peer the server is going away, then closes.
func (c *Client) goAway() {
	if c.conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	}
	c.Close()
}

// readPump pumps frames from the websocket connection into handle until the
// transport fails or handle returns an error.
func (c *Client) readPump(handle func([]byte) error) error {
	c.conn.SetReadLimit(maxMessageSize)

	// Every pong pushes the read deadline forward; a peer that stops
	// answering pings fails the next ReadMessage.
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return err
		}
		if err := handle(message); err != nil {
			return err
		}
	}
}

// writePump pumps queued frames to the websocket connection. Only this
// goroutine writes data frames, so writes never interleave.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}
