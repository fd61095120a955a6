package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"campusride/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event types pushed to connected clients.
const (
	EventNewMessage        = "NEW_MESSAGE"
	EventReservationUpdate = "RESERVATION_UPDATE"
	EventNotification      = "NOTIFICATION"
)

// Event is the envelope written to websocket clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// client wraps a connection with a write lock; gorilla/websocket supports at
// most one concurrent writer per connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub tracks the open websocket connections per user. A user may hold several
// connections (multiple devices).
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[*client]bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]map[*client]bool)}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Token auth happens before the upgrade; origin is not the gate.
		return true
	},
}

// Upgrade turns an authenticated HTTP request into a tracked websocket
// connection and blocks reading it until the client goes away.
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request, uid string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	cl := &client{conn: conn}
	h.register(uid, cl)

	go func() {
		defer h.unregister(uid, cl)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

func (h *Hub) register(uid string, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[uid]; !ok {
		h.conns[uid] = make(map[*client]bool)
	}
	h.conns[uid][cl] = true
}

func (h *Hub) unregister(uid string, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.conns[uid]; ok {
		if set[cl] {
			delete(set, cl)
			cl.conn.Close()
		}
		if len(set) == 0 {
			delete(h.conns, uid)
		}
	}
}

// SendToUser writes an event to every open connection of a user. Missing or
// broken connections are not an error; the persisted notification is the
// source of truth.
func (h *Hub) SendToUser(uid string, event Event) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.conns[uid]))
	for c := range h.conns[uid] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		utils.GetLogger().Error("failed to marshal websocket event", zap.Error(err))
		return
	}

	for _, c := range clients {
		if err := c.write(data); err != nil {
			h.unregister(uid, c)
		}
	}
}

// ConnectedUsers returns the number of users with at least one connection.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
