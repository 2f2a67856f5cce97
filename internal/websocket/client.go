package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// CloseReasonExpired is sent with the close frame when the token that
	// opened the connection runs out.
	CloseReasonExpired = "session expired"
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	Topic    string
	Username string
	Send     chan []byte

	// zero means the connection never expires
	expiresAt time.Time
	now       func() time.Time
}

// NewClient creates a client subscribed to topic. The connection is closed
// once now reaches expiresAt; a zero expiresAt disables the check.
func NewClient(hub *Hub, conn *websocket.Conn, topic, username string, expiresAt time.Time, now func() time.Time) *Client {
	if now == nil {
		now = time.Now
	}
	return &Client{
		hub:       hub,
		conn:      conn,
		Topic:     topic,
		Username:  username,
		Send:      make(chan []byte, 256),
		expiresAt: expiresAt,
		now:       now,
	}
}

// Expired reports whether the token behind the connection has run out.
func (c *Client) Expired() bool {
	return !c.expiresAt.IsZero() && !c.now().Before(c.expiresAt)
}

// ReadPump pumps messages from the websocket connection to handle until the
// connection fails.
func (c *Client) ReadPump(handle func(*Client, []byte)) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("username", c.Username).Msg("Unexpected websocket close")
			}
			return
		}
		if handle != nil {
			handle(c, message)
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection. It
// sends a close frame and returns once the client's token expires.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	var (
		timer  *time.Timer
		expiry <-chan time.Time
	)
	if !c.expiresAt.IsZero() {
		timer = time.NewTimer(c.expiresAt.Sub(c.now()))
		defer timer.Stop()
		expiry = timer.C
	}
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if c.Expired() {
				c.closeExpired()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-expiry:
			if !c.Expired() {
				// The clock disagrees with the timer; wait for the rest.
				timer.Reset(c.expiresAt.Sub(c.now()))
				continue
			}
			c.closeExpired()
			return
		case <-ticker.C:
			if c.Expired() {
				c.closeExpired()
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) closeExpired() {
	log.Info().Str("username", c.Username).Msg("Closing websocket for expired session")
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, CloseReasonExpired)
	if err := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		log.Debug().Err(err).Str("username", c.Username).Msg("Failed to send close frame")
	}
}
