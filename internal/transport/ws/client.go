package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// AdminChecker decides whether a user may watch an instance's activity stream.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID, instanceID int64) (bool, error)
}

// Client represents a single WebSocket connection.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	id      uuid.UUID
	userID  int64
	checker AdminChecker

	// instances tracks which instance streams this client listens to.
	instances map[int64]struct{}
	mu        sync.RWMutex

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64, checker AdminChecker) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		id:        uuid.New(),
		userID:    userID,
		checker:   checker,
		instances: make(map[int64]struct{}),
		send:      make(chan []byte, sendBufSize),
		done:      make(chan struct{}),
	}
}

// IsSubscribed checks if this client watches an instance's stream.
func (c *Client) IsSubscribed(instanceID int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[instanceID]
	return ok
}

func (c *Client) subscribe(instanceID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instances[instanceID] = struct{}{}
}

func (c *Client) unsubscribe(instanceID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.instances, instanceID)
}

// ReadPump reads messages from the WebSocket and routes them to the Hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				logrus.WithField("user_id", c.userID).Debug("ws: client disconnected")
			} else {
				logrus.WithField("user_id", c.userID).WithError(err).Debug("ws: read error")
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes messages from the send channel to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				logrus.WithField("user_id", c.userID).WithError(err).Debug("ws: write error")
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeInstanceSubscribe:
		var p InstancePayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid instance.subscribe payload")
			return
		}
		ok, err := c.checker.IsAdmin(context.Background(), c.userID, p.InstanceID)
		if err != nil {
			c.sendError("INTERNAL", "subscription check failed")
			return
		}
		if !ok {
			c.sendError("FORBIDDEN", "only the instance admin can watch its activity stream")
			return
		}
		c.subscribe(p.InstanceID)
		c.sendAck(p.InstanceID)

	case EventTypeInstanceUnsubscribe:
		var p InstancePayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid instance.unsubscribe payload")
			return
		}
		c.unsubscribe(p.InstanceID)

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) sendAck(instanceID int64) {
	evt, err := NewEvent(EventTypeSubscribed, &instanceID, InstancePayload{InstanceID: instanceID})
	if err != nil {
		return
	}
	data, _ := json.Marshal(evt)
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, nil, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
