package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"aid-relief-server/models"
)

// Client represents a connected viewer watching one delivery
type Client struct {
	Hub        *Hub
	UserID     string
	DeliveryID string
	Conn       *websocket.Conn
	Send       chan []byte
}

// Update is a tracking event pushed to viewers of a delivery
type Update struct {
	Type       string      `json:"type"` // "location" or "status"
	DeliveryID string      `json:"delivery_id"`
	Data       interface{} `json:"data,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// Hub manages viewer connections, grouped per delivery
type Hub struct {
	// Viewers keyed by delivery ID
	viewers map[string]map[*Client]bool

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// Updates fanned out to the delivery's viewers
	Updates chan *Update

	mu sync.RWMutex
}

// NewHub creates a new tracking hub
func NewHub() *Hub {
	return &Hub{
		viewers:    make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Updates:    make(chan *Update, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.viewers[client.DeliveryID] == nil {
				h.viewers[client.DeliveryID] = make(map[*Client]bool)
			}
			h.viewers[client.DeliveryID][client] = true
			h.mu.Unlock()
			log.Printf("🔌 Viewer connected: user=%s delivery=%s", client.UserID, client.DeliveryID)

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.viewers[client.DeliveryID]; ok {
				if clients[client] {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.viewers, client.DeliveryID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("🔌 Viewer disconnected: user=%s delivery=%s", client.UserID, client.DeliveryID)

		case update := <-h.Updates:
			h.fanOut(update)
		}
	}
}

// fanOut sends an update to all viewers of its delivery
func (h *Hub) fanOut(update *Update) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.viewers[update.DeliveryID]
	if len(clients) == 0 {
		return
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("❌ Error marshaling update: %v", err)
		return
	}

	for client := range clients {
		select {
		case client.Send <- data:
		default:
			// Slow viewer; drop the update rather than block the hub.
			log.Printf("⚠️ Viewer buffer full, dropping update: user=%s delivery=%s", client.UserID, update.DeliveryID)
		}
	}
}

// PublishLocation pushes a fresh position to the delivery's viewers
func (h *Hub) PublishLocation(deliveryID string, loc models.DeliveryLocation) {
	h.publish(&Update{
		Type:       "location",
		DeliveryID: deliveryID,
		Data:       loc,
		Timestamp:  time.Now().UTC(),
	})
}

// PublishStatus pushes a status change to the delivery's viewers
func (h *Hub) PublishStatus(deliveryID string, status models.DeliveryStatus) {
	h.publish(&Update{
		Type:       "status",
		DeliveryID: deliveryID,
		Data:       map[string]interface{}{"status": status},
		Timestamp:  time.Now().UTC(),
	})
}

func (h *Hub) publish(update *Update) {
	select {
	case h.Updates <- update:
	default:
		log.Printf("⚠️ Tracking update channel full, dropping update for delivery %s", update.DeliveryID)
	}
}
