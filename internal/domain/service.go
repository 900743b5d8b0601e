package domain

import (
	"time"
)

type Category struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color,omitempty"`
}

type Service struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Price       *string   `json:"price,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	// Joined fields
	OwnerUsername string `json:"owner_username,omitempty"`
	CategoryName  string `json:"category_name,omitempty"`
}
