package ws

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Hub manages all active WebSocket connections of the admin activity stream
// and fans activity events out to subscribers of the affected instance.
type Hub struct {
	// clients maps connection ID → client. A user may hold several
	// connections (multiple tabs), so clients are keyed per connection.
	clients map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMsg
}

type broadcastMsg struct {
	instanceID int64
	data       []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMsg, 256),
	}
}

// Run starts the Hub's main event loop. Call this in a goroutine; it exits
// when ctx is cancelled, closing every remaining client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.send)
				close(client.done)
			}
			return

		case client := <-h.register:
			h.clients[client.id] = client
			logrus.WithFields(logrus.Fields{
				"user_id": client.userID,
				"total":   len(h.clients),
			}).Debug("ws hub: client connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
				close(client.done)
				logrus.WithFields(logrus.Fields{
					"user_id": client.userID,
					"total":   len(h.clients),
				}).Debug("ws hub: client disconnected")
			}

		case msg := <-h.broadcast:
			for id, client := range h.clients {
				if !client.IsSubscribed(msg.instanceID) {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					// Client buffer full - disconnect
					delete(h.clients, id)
					close(client.send)
					close(client.done)
				}
			}
		}
	}
}

// BroadcastActivity sends an activity event to every subscriber of its instance.
func (h *Hub) BroadcastActivity(instanceID int64, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).Error("ws hub: marshal error")
		return
	}
	h.broadcast <- &broadcastMsg{
		instanceID: instanceID,
		data:       data,
	}
}
