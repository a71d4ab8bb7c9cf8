package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 1024
	sendQueueSize  = 256
)

// command is what a connected client may send us: join or leave a wallet feed.
type command struct {
	Action   string `json:"action"`
	WalletID string `json:"wallet_id"`
}

type controlMessage struct {
	Type  string `json:"type"`
	Topic string `json:"topic,omitempty"`
	Error string `json:"error,omitempty"`
}

// Client is one websocket connection pinned to an authenticated user.
// topics is owned by the hub's Run goroutine; send and done are the only
// fields other goroutines touch.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID int64

	send   chan []byte
	done   chan struct{}
	closer sync.Once

	topics map[string]bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
		topics: make(map[string]bool),
	}
}

// Run registers the client and serves it until the connection drops.
// It blocks, so call it from the connection's handler goroutine.
func (c *Client) Run() {
	select {
	case c.hub.register <- c:
	case <-c.hub.quit:
		c.conn.Close()
		return
	}
	go c.writePump()
	c.readPump()
}

// enqueue hands a payload to the write pump without ever blocking the hub.
func (c *Client) enqueue(payload []byte) error {
	select {
	case <-c.done:
		return ErrClientGone
	default:
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return ErrQueueFull
	}
}

func (c *Client) enqueueControl(msgType, topic string) {
	payload, err := json.Marshal(controlMessage{Type: msgType, Topic: topic})
	if err != nil {
		return
	}
	c.enqueue(payload)
}

func (c *Client) enqueueError(msg string) {
	payload, err := json.Marshal(controlMessage{Type: "error", Error: msg})
	if err != nil {
		return
	}
	c.enqueue(payload)
}

// shutdown is idempotent; the hub calls it on unregister and Stop.
func (c *Client) shutdown() {
	c.closer.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// readPump consumes subscribe/unsubscribe commands until the peer goes
// away, then unregisters the client.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.quit:
		}
		c.shutdown()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Error(fmt.Sprintf("Websocket read for user %d: %v", c.userID, err))
			}
			return
		}

		var cmd command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			c.enqueueError("malformed command")
			continue
		}
		c.handleCommand(cmd)
	}
}

// handleCommand runs on the read goroutine, so the membership check may
// safely hit the database before the hub is involved.
func (c *Client) handleCommand(cmd command) {
	switch cmd.Action {
	case "subscribe":
		if cmd.WalletID == "" {
			c.enqueueError("wallet_id is required")
			return
		}
		if c.hub.authorize != nil && !c.hub.authorize(c.userID, cmd.WalletID) {
			c.enqueueError(ErrNotPermitted.Error())
			return
		}
		c.request(subscription{client: c, topic: WalletTopic(cmd.WalletID), join: true})
	case "unsubscribe":
		if cmd.WalletID == "" {
			c.enqueueError("wallet_id is required")
			return
		}
		c.request(subscription{client: c, topic: WalletTopic(cmd.WalletID), join: false})
	default:
		c.enqueueError(fmt.Sprintf("unknown action %q", cmd.Action))
	}
}

func (c *Client) request(sub subscription) {
	select {
	case c.hub.subscribe <- sub:
	case <-c.hub.quit:
	case <-c.done:
	}
}

// writePump drains the send queue onto the wire and keeps the connection
// alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
