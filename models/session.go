package models

import (
	"time"

	"github.com/google/uuid"
)

// Session represents one bearer credential. A user holds one row per active
// device; logout revokes exactly the presented token.
type Session struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	TokenHash  string     `json:"-"`
	Name       string     `json:"name"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
