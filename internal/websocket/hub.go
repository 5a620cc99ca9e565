package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/habitforge/habitforge-web/internal/auth"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin for development
		// In production, implement proper origin checking
		return true
	},
}

// Event is the envelope every realtime message travels in.
type Event struct {
	ID        string      `json:"id"`
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

type userMessage struct {
	userID  int
	payload []byte
}

type Hub struct {
	clients    map[*Client]bool
	byUser     map[int]map[*Client]bool
	broadcast  chan []byte
	direct     chan userMessage
	register   chan *Client
	unregister chan *Client
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID int
	send   chan []byte
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		direct:     make(chan userMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		byUser:     make(map[int]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			if h.byUser[client.userID] == nil {
				h.byUser[client.userID] = make(map[*Client]bool)
			}
			h.byUser[client.userID][client] = true
			log.Printf("Client connected for user %d. Total: %d", client.userID, len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.dropClient(client)
				log.Printf("Client disconnected for user %d. Total: %d", client.userID, len(h.clients))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.dropClient(client)
				}
			}

		case msg := <-h.direct:
			for client := range h.byUser[msg.userID] {
				select {
				case client.send <- msg.payload:
				default:
					h.dropClient(client)
				}
			}
		}
	}
}

func (h *Hub) dropClient(client *Client) {
	delete(h.clients, client)
	if clients, ok := h.byUser[client.userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.byUser, client.userID)
		}
	}
	close(client.send)
}

// SendToUser delivers an event to every open connection of one user. Fire-and-forget:
// a slow or missing recipient never blocks or fails the caller.
func (h *Hub) SendToUser(userID int, event string, data interface{}) {
	payload, err := json.Marshal(Event{
		ID:        uuid.NewString(),
		Event:     event,
		Data:      data,
		Timestamp: time.Now(),
	})
	if err != nil {
		log.Printf("WebSocket marshal error for event %q: %v", event, err)
		return
	}

	select {
	case h.direct <- userMessage{userID: userID, payload: payload}:
	default:
		log.Printf("WebSocket delivery queue full, dropping %q for user %d", event, userID)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}

	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func handleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromSession(r)
	if userID == 0 {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{hub: hub, conn: conn, userID: userID, send: make(chan []byte, 256)}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

func RegisterRoutes(r *mux.Router, hub *Hub) {
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(hub, w, r)
	})
}
