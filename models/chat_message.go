package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage represents one turn of a chat exchange. Messages are append-only:
// created once, never edited, deleted only when the owning user is deleted.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	IsUser    bool      `json:"is_user"`
	AudioURL  *string   `json:"audio_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
