package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"sa-birth-backend/internal/models"
	"sa-birth-backend/internal/services"
)

var _ services.Broadcaster = (*WebSocketHandler)(nil)

// writeWait bounds each write so one stalled client cannot hold up the hub.
var writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub *WebSocketHub
}

// WebSocketHub owns every connection; all writes happen on its goroutine.
type WebSocketHub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
}

type Client struct {
	Player string
	Conn   *websocket.Conn
}

type Message struct {
	ID        string           `json:"id"`
	Type      models.EventType `json:"type"`
	Player    string           `json:"player,omitempty"`
	Data      interface{}      `json:"data"`
	Timestamp int64            `json:"timestamp"`

	// target restricts delivery to one player's connections.
	target string
}

func NewWebSocketHandler() *WebSocketHandler {
	hub := &WebSocketHub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 100),
		done:       make(chan struct{}),
	}

	go hub.run()

	return &WebSocketHandler{hub: hub}
}

func (h *WebSocketHandler) Close() {
	close(h.hub.done)
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	player := c.GetString("player_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	client := &Client{
		Player: player,
		Conn:   conn,
	}

	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	defer func() {
		select {
		case h.hub.unregister <- client:
		case <-h.hub.done:
		}
		conn.Close()
	}()

	for {
		var msg struct {
			Type string `json:"type"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		if msg.Type == "PING" {
			h.publish(&Message{
				Type:   "PONG",
				target: player,
			})
		}
	}
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.clients[client] = true
			log.Printf("Client registered: %s", client.Player)

		case client := <-hub.unregister:
			if _, ok := hub.clients[client]; ok {
				delete(hub.clients, client)
				log.Printf("Client unregistered: %s", client.Player)
			}

		case message := <-hub.broadcast:
			hub.broadcastMessage(message)

		case <-hub.done:
			for client := range hub.clients {
				client.Conn.Close()
			}
			return
		}
	}
}

func (hub *WebSocketHub) broadcastMessage(message *Message) {
	for client := range hub.clients {
		if message.target != "" && client.Player != message.target {
			continue
		}
		client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.Conn.WriteJSON(message); err != nil {
			log.Printf("Dropping client %s after failed write: %v", client.Player, err)
			delete(hub.clients, client)
			client.Conn.Close()
		}
	}
}

// publish never blocks: lifecycle operations must not wait on slow observers.
func (h *WebSocketHandler) publish(msg *Message) {
	msg.ID = models.GenerateEventID()
	msg.Timestamp = time.Now().Unix()

	select {
	case h.hub.broadcast <- msg:
	default:
		log.Printf("Notification buffer full, dropping %s for %s", msg.Type, msg.Player)
	}
}

func (h *WebSocketHandler) BroadcastSessionStarted(player string, event models.SessionStartedEvent) {
	h.publish(&Message{Type: models.EventSessionStarted, Player: player, Data: event})
}

func (h *WebSocketHandler) BroadcastSenseCompleted(player string, event models.SenseCompletedEvent) {
	h.publish(&Message{Type: models.EventSenseCompleted, Player: player, Data: event})
}

func (h *WebSocketHandler) BroadcastComplete(player string, event models.OutcomeEvent) {
	h.publish(&Message{Type: models.EventComplete, Player: player, Data: event})
}

func (h *WebSocketHandler) BroadcastOverload(player string, event models.OutcomeEvent) {
	h.publish(&Message{Type: models.EventOverload, Player: player, Data: event})
}
