package domain

import (
	"encoding/json"
	"time"
)

// Activity log entry types.
const (
	ActivityInstanceCreated     = "instance.created"
	ActivitySettingsUpdated     = "instance.settings_updated"
	ActivityFederationRequested = "federation.requested"
	ActivityFederationAccepted  = "federation.accepted"
	ActivityFederationUpdated   = "federation.updated"
	ActivityFederationRemoved   = "federation.removed"
)

// Activity is an append-only log entry scoped to one instance. ActorID is
// nulled when the actor is deleted, the entry itself is kept.
type Activity struct {
	ID         int64           `json:"id"`
	InstanceID int64           `json:"instance_id"`
	ActorID    *int64          `json:"actor_id,omitempty"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
