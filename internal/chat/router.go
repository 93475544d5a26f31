package chat

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/models"
)

// pmPrefix marks a private-message command: "/pm <username> <message>".
const pmPrefix = "/pm"

// HandleFrame classifies one inbound text frame and dispatches it. Frames
// for a single connection arrive strictly serialized, so no locking is
// needed here.
func (s *Session) HandleFrame(ctx context.Context, frame []byte) {
	if s.state != StateActive {
		return
	}

	var in models.Inbound
	if err := json.Unmarshal(frame, &in); err != nil || in.Message == nil {
		s.sendError(`malformed payload: expected {"message": <string>}`)
		return
	}

	// Unidentified senders are dropped silently.
	if !s.user.Authenticated {
		return
	}

	text := *in.Message
	if strings.HasPrefix(text, pmPrefix) {
		s.handlePrivate(text)
		return
	}
	s.handleBroadcast(ctx, text)
}

// handlePrivate parses "/pm <username> <message>" and publishes the message
// to the target's inbox group. The body is everything after the second
// space, taken verbatim. Delivery happens only if the target is currently
// online; the sender's receipt fires either way.
func (s *Session) handlePrivate(text string) {
	parts := strings.SplitN(text, " ", 3)
	if len(parts) < 3 || parts[1] == "" {
		s.sendError("usage: /pm <username> <message>")
		return
	}
	target, body := parts[1], parts[2]

	s.publish(inboxGroupName(target), models.EventPrivateMessage, models.PrivateMessageEvent{
		Type:    models.EventPrivateMessage,
		User:    s.user.Username,
		Message: body,
	})

	s.sendEvent(models.DeliveryReceiptEvent{
		Type:    models.EventPrivateMessageDelivered,
		Target:  target,
		Message: body,
	})
}

// handleBroadcast fans a chat message out to the room group, then appends it
// to the store in the background.
func (s *Session) handleBroadcast(_ context.Context, text string) {
	s.publish(s.roomGroup, models.EventChatMessage, models.ChatMessageEvent{
		Type:    models.EventChatMessage,
		User:    s.user.Username,
		Message: text,
	})

	msg := &models.Message{
		Room: s.room.Name,
		From: s.user.Username,
		Body: text,
	}
	go s.persist(msg)
}
