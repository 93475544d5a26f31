package models

// Message is an immutable record of one broadcast chat message.
// Private messages are never persisted and have no Message record.
type Message struct {
	ID        string `json:"id"` // ULID
	Room      string `json:"room"`
	From      string `json:"from"` // username
	Body      string `json:"body"`
	Timestamp int64  `json:"ts"` // Unix ms
}
