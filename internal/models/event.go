package models

// Event type discriminators. Every frame sent to a client is a JSON object
// carrying one of these in its "type" field so clients can dispatch on it.
const (
	EventUserList                = "user_list"
	EventUserJoin                = "user_join"
	EventUserLeave               = "user_leave"
	EventChatMessage             = "chat_message"
	EventPrivateMessage          = "private_message"
	EventPrivateMessageDelivered = "private_message_delivered"
	EventError                   = "error"
)

// UserListEvent is the roster snapshot sent once to a newly opened connection.
type UserListEvent struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

// PresenceEvent announces a user joining or leaving a room.
type PresenceEvent struct {
	Type string `json:"type"` // user_join or user_leave
	User string `json:"user"`
}

// ChatMessageEvent is a broadcast chat message fanned out to a room group.
type ChatMessageEvent struct {
	Type    string `json:"type"`
	User    string `json:"user"`
	Message string `json:"message"`
}

// PrivateMessageEvent is a direct message delivered to a user's inbox group.
type PrivateMessageEvent struct {
	Type    string `json:"type"`
	User    string `json:"user"` // sender
	Message string `json:"message"`
}

// DeliveryReceiptEvent acknowledges a private message to its sender. It fires
// whether or not the target was online; there is no inbox buffering.
type DeliveryReceiptEvent struct {
	Type    string `json:"type"`
	Target  string `json:"target"`
	Message string `json:"message"`
}

// ErrorEvent reports a recoverable per-frame error back to the sender
// without closing the connection.
type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Inbound is the only frame shape clients may send. Message is a pointer so
// a frame that parses as JSON but lacks the field can be told apart from an
// empty message.
type Inbound struct {
	Message *string `json:"message"`
}
