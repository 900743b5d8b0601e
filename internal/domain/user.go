package domain

import (
	"time"
)

type User struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"`
	Name         *string `json:"name,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	Headline     *string `json:"headline,omitempty"`
	ImageURL     *string `json:"image_url,omitempty"`
	// Federation identity. Populated once the user is addressable from
	// other instances, nil for purely local accounts.
	ActivityPubID *string   `json:"activity_pub_id,omitempty"`
	ActorURL      *string   `json:"actor_url,omitempty"`
	InboxURL      *string   `json:"inbox_url,omitempty"`
	OutboxURL     *string   `json:"outbox_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
