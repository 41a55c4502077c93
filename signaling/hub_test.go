package signaling

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		room := r.URL.Query().Get("room")
		userID, _ := strconv.ParseUint(r.URL.Query().Get("user"), 10, 32)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		hub.ServeClient(conn, room, uint(userID), "user"+r.URL.Query().Get("user"), nil)
	}))
}

func dial(t *testing.T, server *httptest.Server, room string, user uint) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") +
		"/?room=" + room + "&user=" + strconv.FormatUint(uint64(user), 10)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg map[string]any
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal %q: %v", raw, err)
	}
	return msg
}

func TestOfferRelayedToPeerOnly(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	server := newTestServer(t, hub)
	defer server.Close()

	alice := dial(t, server, "room-a", 1)
	defer alice.Close()
	bob := dial(t, server, "room-a", 2)
	defer bob.Close()

	// alice sees bob join
	join := readEnvelope(t, alice)
	if join["type"] != SignalUserJoin || join["user_id"] != float64(2) {
		t.Fatalf("expected user_joined from user 2, got %v", join)
	}

	offer := map[string]any{
		"type": SignalOffer,
		"sdp":  "v=0 fake-offer",
		// client-supplied identity must be overwritten by the server
		"user_id": 999,
	}
	if err := alice.WriteJSON(offer); err != nil {
		t.Fatalf("write offer: %v", err)
	}

	got := readEnvelope(t, bob)
	if got["type"] != SignalOffer {
		t.Fatalf("expected offer, got %v", got)
	}
	if got["sdp"] != "v=0 fake-offer" {
		t.Fatalf("payload not relayed verbatim: %v", got)
	}
	if got["user_id"] != float64(1) || got["username"] != "user1" {
		t.Fatalf("expected server-stamped sender identity, got %v", got)
	}

	// the sender must not receive its own offer
	alice.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := alice.ReadMessage(); err == nil {
		t.Fatalf("sender received its own message")
	}
}

func TestRoomsAreIsolated(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	server := newTestServer(t, hub)
	defer server.Close()

	alice := dial(t, server, "room-a", 1)
	defer alice.Close()
	carol := dial(t, server, "room-b", 3)
	defer carol.Close()

	if err := alice.WriteJSON(map[string]any{"type": SignalChat, "text": "hello"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	carol.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := carol.ReadMessage(); err == nil {
		t.Fatalf("message leaked across rooms")
	}
}

func TestMalformedAndUnknownMessagesDropped(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	server := newTestServer(t, hub)
	defer server.Close()

	alice := dial(t, server, "room-a", 1)
	defer alice.Close()
	bob := dial(t, server, "room-a", 2)
	defer bob.Close()
	readEnvelope(t, alice) // bob's join

	if err := alice.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write malformed: %v", err)
	}
	if err := alice.WriteJSON(map[string]any{"type": "shutdown-server"}); err != nil {
		t.Fatalf("write unknown type: %v", err)
	}
	if err := alice.WriteJSON(map[string]any{"type": SignalAnswer, "sdp": "v=0 answer"}); err != nil {
		t.Fatalf("write answer: %v", err)
	}

	// only the valid answer arrives
	got := readEnvelope(t, bob)
	if got["type"] != SignalAnswer {
		t.Fatalf("expected answer after dropped messages, got %v", got)
	}
}

func TestStatsAndLeaveAnnouncement(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	server := newTestServer(t, hub)
	defer server.Close()

	alice := dial(t, server, "room-a", 1)
	defer alice.Close()
	bob := dial(t, server, "room-a", 2)
	readEnvelope(t, alice) // bob's join

	waitForStats(t, hub, 1, 2)

	bob.Close()

	left := readEnvelope(t, alice)
	if left["type"] != SignalUserLeave || left["user_id"] != float64(2) {
		t.Fatalf("expected user_left from user 2, got %v", left)
	}

	waitForStats(t, hub, 1, 1)
}

func waitForStats(t *testing.T, hub *Hub, wantRooms, wantClients int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rooms, clients := hub.Stats()
		if rooms == wantRooms && clients == wantClients {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	rooms, clients := hub.Stats()
	t.Fatalf("expected %d rooms / %d clients, got %d / %d", wantRooms, wantClients, rooms, clients)
}
