package models

import (
	"time"

	"github.com/google/uuid"
)

// Room is a persistent chat scope. The live online roster is tracked
// separately by the presence package; the store only records the room itself.
type Room struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	MessageCount int64     `json:"message_count"`
}
