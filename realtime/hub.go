package realtime

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event names pushed over the per-user channel
const (
	EventOrderCreated       = "orderCreated"
	EventOrderAssigned      = "orderAssigned"
	EventNewOrderAssigned   = "newOrderAssigned"
	EventOrderStatusUpdated = "orderStatusUpdated"
	EventOrderCancelled     = "orderCancelled"
	EventSystem             = "system"
)

// Event is a typed realtime message delivered to one user's room
type Event struct {
	Type    string `json:"type"`
	OrderID uint   `json:"order_id,omitempty"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

type userEvent struct {
	UserID uint
	Event  Event
}

type subscription struct {
	Conn   *websocket.Conn
	UserID uint
}

// Hub fans typed events out to every open connection of a user. Each user id
// is a room; a user may hold several connections (multiple tabs/devices).
type Hub struct {
	clients    map[uint]map[*websocket.Conn]bool // userID -> set of clients
	broadcast  chan userEvent
	register   chan subscription
	unregister chan subscription
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*websocket.Conn]bool),
		broadcast:  make(chan userEvent, 64),
		register:   make(chan subscription),
		unregister: make(chan subscription),
	}
}

// Run processes register/unregister/broadcast until the process exits
func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			if h.clients[sub.UserID] == nil {
				h.clients[sub.UserID] = make(map[*websocket.Conn]bool)
			}
			h.clients[sub.UserID][sub.Conn] = true
			h.mu.Unlock()

		case sub := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[sub.UserID][sub.Conn]; ok {
				delete(h.clients[sub.UserID], sub.Conn)
				sub.Conn.Close()
			}
			h.mu.Unlock()

		case ev := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients[ev.UserID] {
				if err := conn.WriteJSON(ev.Event); err != nil {
					log.Warn().Err(err).Uint("user_id", ev.UserID).Msg("ws write failed")
					conn.Close()
					delete(h.clients[ev.UserID], conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues an event for one user. Best-effort: if the hub is saturated
// the event is dropped rather than blocking the request path.
func (h *Hub) Publish(userID uint, ev Event) {
	if h == nil {
		return
	}
	select {
	case h.broadcast <- userEvent{UserID: userID, Event: ev}:
	default:
		log.Warn().Uint("user_id", userID).Str("event", ev.Type).Msg("realtime event dropped")
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket upgrades an authenticated request and joins the caller's
// room. Route: GET /ws (behind auth middleware).
func (h *Hub) HandleWebSocket(c *gin.Context) {
	userIDVal, ok := c.Get("userID")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	userID := userIDVal.(uint)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}

	sub := subscription{Conn: conn, UserID: userID}
	h.register <- sub

	// Drain reads so pings/closes are handled; clients never send data
	go func() {
		defer func() { h.unregister <- sub }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
