package signaling

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// WebRTC SDP offers can run a few tens of KB.
	maxMessageSize = 128 * 1024
)

// Signal types relayed between peers. Anything else is dropped.
const (
	SignalOffer     = "offer"
	SignalAnswer    = "answer"
	SignalCandidate = "ice-candidate"
	SignalChat      = "chat"
	SignalUserJoin  = "user_joined"
	SignalUserLeave = "user_left"
)

// Envelope is the minimal shape every signaling message must have. The
// payload is relayed verbatim; only the type and sender are inspected.
type Envelope struct {
	Type     string `json:"type"`
	UserID   uint   `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
}

// Client is one websocket connection inside a room.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	roomID   string
	userID   uint
	username string

	outbound chan []byte
	once     sync.Once
	done     chan struct{}
}

// ServeClient registers the connection in the hub and runs its read and
// write pumps. Blocks until the client disconnects, then runs onClose.
func (h *Hub) ServeClient(conn *websocket.Conn, roomID string, userID uint, username string, onClose func()) {
	c := &Client{
		hub:      h,
		conn:     conn,
		roomID:   roomID,
		userID:   userID,
		username: username,
		outbound: make(chan []byte, 32),
		done:     make(chan struct{}),
	}

	if !h.add(c) {
		conn.Close()
		return
	}

	c.announce(SignalUserJoin)

	go c.writePump()
	c.readPump()

	h.remove(c)
	c.announce(SignalUserLeave)
	c.stop()
	if onClose != nil {
		onClose()
	}
}

// announce tells the peers a user joined or left.
func (c *Client) announce(signalType string) {
	msg, err := json.Marshal(Envelope{
		Type:     signalType,
		UserID:   c.userID,
		Username: c.username,
	})
	if err != nil {
		return
	}
	c.hub.broadcast(c, msg)
}

// send queues a message; slow clients get disconnected instead of blocking
// the room.
func (c *Client) send(message []byte) {
	select {
	case c.outbound <- message:
	case <-c.done:
	default:
		log.Printf("Dropping slow signaling client (user %d, room %s)", c.userID, c.roomID)
		c.stop()
	}
}

func (c *Client) stop() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// readPump relays inbound signals to the room. Malformed JSON and unknown
// types are dropped without closing the connection.
func (c *Client) readPump() {
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
				log.Printf("Signaling read error (user %d, room %s): %v", c.userID, c.roomID, err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		switch env.Type {
		case SignalOffer, SignalAnswer, SignalCandidate, SignalChat:
		default:
			continue
		}

		// Stamp the sender so peers never have to trust client-supplied ids.
		var full map[string]json.RawMessage
		if err := json.Unmarshal(raw, &full); err != nil {
			continue
		}
		idJSON, _ := json.Marshal(c.userID)
		nameJSON, _ := json.Marshal(c.username)
		full["user_id"] = idJSON
		full["username"] = nameJSON
		stamped, err := json.Marshal(full)
		if err != nil {
			continue
		}

		c.hub.broadcast(c, stamped)
	}
}

// writePump drains the outbound queue and keeps the connection alive with
// pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message := <-c.outbound:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.stop()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.stop()
				return
			}
		case <-c.done:
			return
		}
	}
}
