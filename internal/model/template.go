package model

import "time"

// Template is the greeting-card template a share is created from.
// The admin CRUD surface for templates lives outside this service; only
// resolution (existence, active flag, title) is needed here.
type Template struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
