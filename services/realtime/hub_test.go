package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialTestHub(t *testing.T, h *Hub, uid string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.Upgrade(w, r, uid); err != nil {
			t.Errorf("Upgrade: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitConnected(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.ConnectedUsers() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("connected users = %d, want %d", h.ConnectedUsers(), want)
}

func TestSendToUserDeliversEvent(t *testing.T) {
	h := NewHub()
	conn := dialTestHub(t, h, "u1")
	waitConnected(t, h, 1)

	h.SendToUser("u1", Event{Type: EventNotification, Payload: map[string]string{"title": "Salut"}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var got Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Type != EventNotification {
		t.Errorf("event type = %q, want %q", got.Type, EventNotification)
	}
}

func TestSendToUserConcurrentWritesSameConnection(t *testing.T) {
	h := NewHub()
	conn := dialTestHub(t, h, "u1")
	waitConnected(t, h, 1)

	const events = 50
	var wg sync.WaitGroup
	for i := 0; i < events; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.SendToUser("u1", Event{Type: EventNewMessage, Payload: "ping"})
		}()
	}
	wg.Wait()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < events; i++ {
		if _, _, err := conn.ReadMessage(); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
	}
}

func TestSendToUnknownUserIsNoOp(t *testing.T) {
	h := NewHub()
	h.SendToUser("nobody", Event{Type: EventNotification})
	if h.ConnectedUsers() != 0 {
		t.Errorf("connected users = %d, want 0", h.ConnectedUsers())
	}
}
