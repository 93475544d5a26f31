package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity bound to a connection. Anonymous visitors carry a
// valid User with Authenticated false; they may watch a room but are
// excluded from the roster and from private messaging.
type User struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	Authenticated bool      `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// Anonymous returns the identity used when a connection presents no valid token.
func Anonymous() *User {
	return &User{Username: "anonymous"}
}
