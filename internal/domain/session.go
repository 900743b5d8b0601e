package domain

import (
	"time"
)

// Session is a server-side record of an authenticated client, keyed by the
// opaque token held in the client's cookie. Expiry is advisory at the schema
// level and enforced by the session manager and its reaper.
type Session struct {
	ID        string            `json:"id"`
	UserID    int64             `json:"user_id"`
	Data      map[string]string `json:"data,omitempty"`
	ExpiresAt time.Time         `json:"expires_at"`
}
