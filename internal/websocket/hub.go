package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/logger"
)

// Event types pushed over the live feed.
const (
	EventMasterpieceCreated  = "MASTERPIECE_CREATED"
	EventMasterpieceReserved = "MASTERPIECE_RESERVED"
	EventPieceAssigned       = "PIECE_ASSIGNED"
	EventPurchaseReviewed    = "PURCHASE_REVIEWED"
	EventWorkflowUpdated     = "WORKFLOW_UPDATED"
	EventPaymentConfirmed    = "PAYMENT_CONFIRMED"
	EventCertificateIssued   = "CERTIFICATE_GENERATED"
	EventContractSigned      = "CONTRACT_SIGNED"
	EventNewBid              = "NEW_BID"
	EventAuctionCreated      = "AUCTION_CREATED"
	EventResaleRequested     = "RESALE_REQUESTED"
	EventResaleReviewed      = "RESALE_REVIEWED"
	EventResaleAccepted      = "RESALE_ACCEPTED"
	EventResaleCompleted     = "RESALE_COMPLETED"
	EventProductionUpdated   = "PRODUCTION_UPDATED"
	EventDeliveryUpdated     = "DELIVERY_UPDATED"
	EventNewMoment           = "NEW_MOMENT"
	EventTokenMinted         = "NFT_MINTED"
	EventNotification        = "NOTIFICATION"
)

// Envelope is the wire format of every pushed event.
type Envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	SentAt  time.Time   `json:"sent_at"`
}

// Client is one WebSocket session.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Send   chan []byte
}

// Hub manages WebSocket connections. A user may hold several sessions
// at once; broadcasts reach every session.
type Hub struct {
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan []byte, 1024),
	}
}

// Run processes hub events until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": len(h.clients[client.UserID]),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clientList, ok := h.clients[client.UserID]; ok {
				newList := make([]*Client, 0, len(clientList))
				for _, c := range clientList {
					if c != client {
						newList = append(newList, c)
					}
				}
				if len(newList) == 0 {
					delete(h.clients, client.UserID)
				} else {
					h.clients[client.UserID] = newList
				}
				close(client.Send)
			}
			h.mu.Unlock()
			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"user_id": client.UserID,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for userID, clientList := range h.clients {
				for _, client := range clientList {
					select {
					case client.Send <- message:
					default:
						// Send buffer full, drop the session
						go h.Unregister(client)
						logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
							"user_id": userID,
						})
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register registers a client
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister unregisters a client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast pushes an event to every connected session. Delivery is
// best effort; a full broadcast queue drops the event.
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	data, err := json.Marshal(Envelope{Type: eventType, Payload: payload, SentAt: time.Now()})
	if err != nil {
		logger.Error("Failed to marshal event", err, map[string]interface{}{
			"type": eventType,
		})
		return
	}

	select {
	case h.broadcast <- data:
	default:
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"type": eventType,
		})
	}
}

// SendToUser pushes an event to every session of one user.
func (h *Hub) SendToUser(userID uint, eventType string, payload interface{}) {
	data, err := json.Marshal(Envelope{Type: eventType, Payload: payload, SentAt: time.Now()})
	if err != nil {
		logger.Error("Failed to marshal event", err, map[string]interface{}{
			"type": eventType,
		})
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients[userID] {
		select {
		case client.Send <- data:
		default:
			go h.Unregister(client)
			logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
				"user_id": userID,
			})
		}
	}
}

// IsUserOnline reports whether a user has at least one live session.
func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}
