package ws

import (
	"encoding/json"
	"time"

	"github.com/commune-hq/commune/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeInstanceSubscribe   = "instance.subscribe"
	EventTypeInstanceUnsubscribe = "instance.unsubscribe"
	EventTypePing                = "ping"
)

// Event types - Server → Client
const (
	EventTypeActivity   = "activity.new"
	EventTypeSubscribed = "subscribed"
	EventTypePong       = "pong"
	EventTypeError      = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type       string          `json:"type"`
	InstanceID *int64          `json:"instance_id,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Timestamp  int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type InstancePayload struct {
	InstanceID int64 `json:"instance_id"`
}

// --- Server → Client payloads ---

type ActivityPayload struct {
	domain.Activity
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, instanceID *int64, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:       eventType,
		InstanceID: instanceID,
		Payload:    data,
		Timestamp:  time.Now().Unix(),
	}, nil
}
