package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client represents a connected admin console session
type Client struct {
	Hub  *Hub
	ID   uint
	Conn *websocket.Conn
	Send chan []byte
}

// Event is a booking lifecycle event pushed to connected admin consoles.
type Event struct {
	Type      string      `json:"type"` // booking_created, booking_status, ping
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Hub fans booking events out to every connected admin console.
type Hub struct {
	// Registered clients
	Clients map[uint]*Client

	// Broadcast channel for events to all clients
	Broadcast chan *Event

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a new event hub
func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[uint]*Client),
		Broadcast:  make(chan *Event, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client.ID] = client
			h.mu.Unlock()
			log.Printf("🔌 Admin console %d connected to event feed", client.ID)

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Clients[client.ID]; ok {
				delete(h.Clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			log.Printf("🔌 Admin console %d disconnected from event feed", client.ID)

		case event := <-h.Broadcast:
			payload, err := json.Marshal(event)
			if err != nil {
				log.Printf("❌ Failed to marshal event: %v", err)
				continue
			}
			h.mu.RLock()
			for id, client := range h.Clients {
				select {
				case client.Send <- payload:
				default:
					// Slow consumer, drop the event for this client
					log.Printf("⚠️ Event buffer full for admin console %d", id)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish queues an event for broadcast without blocking the caller
func (h *Hub) Publish(eventType string, data interface{}) {
	event := &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
	select {
	case h.Broadcast <- event:
	default:
		log.Printf("⚠️ Event broadcast channel is full, dropping %s event", eventType)
	}
}
