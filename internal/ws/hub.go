package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Dashboard origin enforcement happens at the JWT layer.
		return true
	},
}

// Client represents a connected dashboard session.
type Client struct {
	hub      *Hub
	tenantID string
	conn     *websocket.Conn
	send     chan []byte
}

// Hub maintains the set of active dashboard clients and delivers live
// events scoped to each client's tenant.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan tenantEvent
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
}

type tenantEvent struct {
	tenantID string
	payload  []byte
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan tenantEvent),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logrus.WithField("tenant_id", client.tenantID).Debug("dashboard client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case event := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if client.tenantID != event.tenantID {
					continue
				}
				select {
				case client.send <- event.payload:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Event is the wire shape sent to dashboard clients.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// BroadcastEvent delivers an event to every session of the given tenant.
func (h *Hub) BroadcastEvent(tenantID, eventType string, data interface{}) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		logrus.WithError(err).Error("failed marshaling ws event")
		return
	}
	h.broadcast <- tenantEvent{tenantID: tenantID, payload: payload}
}

// ServeWs upgrades the connection for an authenticated tenant session.
func (h *Hub) ServeWs(tenantID string, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}
	client := &Client{hub: h, tenantID: tenantID, conn: conn, send: make(chan []byte, 256)}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
		// Clients only listen; inbound frames are heartbeats at most.
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
