package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/vigia/internal/alert"
)

var ErrBroadcastQueueFull = errors.New("websocket broadcast queue full")

// Hub streams alert events to websocket clients. A client subscribed with
// uuid.Nil receives events from every camera.
type Hub struct {
	clients    map[*Client]bool
	cameras    map[uuid.UUID]map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		cameras:    make(map[uuid.UUID]map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	if h.cameras[client.cameraID] == nil {
		h.cameras[client.cameraID] = make(map[*Client]bool)
	}
	h.cameras[client.cameraID][client] = true
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropLocked(client)
}

func (h *Hub) dropLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)
	delete(h.cameras[client.cameraID], client)
	if len(h.cameras[client.cameraID]) == 0 {
		delete(h.cameras, client.cameraID)
	}
	close(client.send)
}

func (h *Hub) deliver(event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, scope := range []uuid.UUID{event.CameraID, uuid.Nil} {
		for client := range h.cameras[scope] {
			select {
			case client.send <- message:
			default:
				// Slow consumer
				h.dropLocked(client)
			}
		}
		if event.CameraID == uuid.Nil {
			break
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		h.dropLocked(client)
	}
}

// Broadcast queues an event without blocking
func (h *Hub) Broadcast(cameraID uuid.UUID, eventType EventType, data interface{}) error {
	return h.enqueue(Event{
		CameraID:  cameraID,
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func (h *Hub) enqueue(event Event) error {
	select {
	case h.broadcast <- event:
		return nil
	default:
		return ErrBroadcastQueueFull
	}
}

func (h *Hub) Name() string {
	return "websocket"
}

// Publish makes the hub an alert notification sink
func (h *Hub) Publish(_ context.Context, event alert.Event) error {
	return h.enqueue(eventFromAlert(event))
}

// ConnectedClients counts clients subscribed to a camera; uuid.Nil counts
// the clients following every camera.
func (h *Hub) ConnectedClients(cameraID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.cameras[cameraID])
}
