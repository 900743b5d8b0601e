package domain

import (
	"time"
)

type Post struct {
	ID       int64   `json:"id"`
	UserID   int64   `json:"user_id"`
	Content  string  `json:"content"`
	MediaURL *string `json:"media_url,omitempty"`
	// ActivityID is the post's federation identifier, assigned on creation
	// so remote instances can reference it.
	ActivityID *string   `json:"activity_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	// Joined fields
	AuthorUsername string `json:"author_username,omitempty"`
	AuthorName     string `json:"author_name,omitempty"`
}

type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	// Joined field
	AuthorUsername string `json:"author_username,omitempty"`
}

// Reaction types accepted by the post service.
const (
	ReactionLike       = "like"
	ReactionCelebrate  = "celebrate"
	ReactionSupport    = "support"
	ReactionInsightful = "insightful"
)

type Reaction struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}
