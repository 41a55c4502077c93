// Package signaling relays WebRTC offer/answer/candidate messages between the
// participants of a video call room.
package signaling

import (
	"sync"
)

// Hub holds the live signaling rooms. Database state (rooms, participants) is
// owned by the video call service; the hub only tracks open connections.
type Hub struct {
	rooms map[string]map[*Client]bool
	sync.RWMutex
	closed bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]bool),
	}
}

// add registers a client and returns false when the hub is shutting down.
func (h *Hub) add(c *Client) bool {
	h.Lock()
	defer h.Unlock()

	if h.closed {
		return false
	}
	room, exists := h.rooms[c.roomID]
	if !exists {
		room = make(map[*Client]bool)
		h.rooms[c.roomID] = room
	}
	room[c] = true
	return true
}

// remove unregisters a client, dropping the room when it empties.
func (h *Hub) remove(c *Client) {
	h.Lock()
	defer h.Unlock()

	room, exists := h.rooms[c.roomID]
	if !exists {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.roomID)
	}
}

// peers returns the other clients in a room. The slice is built under the
// read lock so sends can happen outside it.
func (h *Hub) peers(c *Client) []*Client {
	h.RLock()
	defer h.RUnlock()

	room := h.rooms[c.roomID]
	out := make([]*Client, 0, len(room))
	for peer := range room {
		if peer != c {
			out = append(out, peer)
		}
	}
	return out
}

// broadcast forwards a message to everyone in the sender's room except the
// sender itself.
func (h *Hub) broadcast(from *Client, message []byte) {
	for _, peer := range h.peers(from) {
		peer.send(message)
	}
}

// Stats returns the current room and client counts.
func (h *Hub) Stats() (rooms, clients int) {
	h.RLock()
	defer h.RUnlock()

	rooms = len(h.rooms)
	for _, room := range h.rooms {
		clients += len(room)
	}
	return rooms, clients
}

// Close disconnects every client. Clients are collected under the lock and
// stopped outside it to avoid deadlocks with their write pumps.
func (h *Hub) Close() {
	h.Lock()
	h.closed = true
	var all []*Client
	for _, room := range h.rooms {
		for c := range room {
			all = append(all, c)
		}
	}
	h.rooms = make(map[string]map[*Client]bool)
	h.Unlock()

	for _, c := range all {
		c.stop()
	}
}
