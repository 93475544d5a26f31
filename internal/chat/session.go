// Package chat implements the connection lifecycle and message-routing core:
// one Session per open WebSocket, the command routing that splits broadcast
// chat from private messages, and the pumps that tie a Session to its
// transport.
package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/bus"
	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/metrics"
	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/models"
	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/presence"
	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/store"
)

// State is the lifecycle phase of a Session.
type State int

const (
	StateOpening State = iota
	StateActive
	StateClosed
)

// persistTimeout bounds the detached store append started for each
// broadcast message.
const persistTimeout = 5 * time.Second

func roomGroupName(room string) string {
	return "chat_" + room
}

func inboxGroupName(username string) string {
	return "inbox_" + username
}

// Session is the live state of one open connection from accept to close.
// It is owned exclusively by that connection's goroutines: inbound frames
// are handled strictly in order by the read side, and only the write side
// drains the delivery handle.
type Session struct {
	log    zerolog.Logger
	bus    *bus.Bus
	roster presence.Roster
	store  store.MessageAppender

	user *models.User
	room *models.Room

	roomGroup  string
	inboxGroup string // empty for anonymous users

	handle    bus.Handle
	state     State
	closeOnce sync.Once
}

// NewSession binds a resolved user identity to a resolved room. The session
// starts in StateOpening; Open performs the join protocol.
func NewSession(log zerolog.Logger, b *bus.Bus, roster presence.Roster, appender store.MessageAppender, user *models.User, room *models.Room) *Session {
	s := &Session{
		log:       log.With().Str("room", room.Name).Str("user", user.Username).Logger(),
		bus:       b,
		roster:    roster,
		store:     appender,
		user:      user,
		room:      room,
		roomGroup: roomGroupName(room.Name),
		handle:    bus.NewHandle(),
		state:     StateOpening,
	}
	if user.Authenticated {
		s.inboxGroup = inboxGroupName(user.Username)
	}
	return s
}

// Deliveries exposes the channel the write pump drains. Everything sent to
// this connection, whether published to one of its groups or addressed to it
// directly, arrives here.
func (s *Session) Deliveries() <-chan []byte {
	return s.handle
}

// State reports the session's current lifecycle phase.
func (s *Session) State() State {
	return s.state
}

// Open runs the join protocol: send the roster snapshot to the caller,
// subscribe to the room group, and for identified users subscribe the
// private inbox, mark the user online, and announce the join to the room.
func (s *Session) Open(ctx context.Context) {
	users, err := s.roster.List(ctx, s.room.Name)
	if err != nil {
		s.log.Error().Err(err).Msg("roster snapshot failed")
		users = []string{}
	}
	s.sendEvent(models.UserListEvent{Type: models.EventUserList, Users: users})

	s.bus.Subscribe(s.roomGroup, s.handle)

	if s.user.Authenticated {
		s.bus.Subscribe(s.inboxGroup, s.handle)
		if err := s.roster.Add(ctx, s.room.Name, s.user.Username); err != nil {
			s.log.Error().Err(err).Msg("roster add failed")
		}
		s.publish(s.roomGroup, models.EventUserJoin, models.PresenceEvent{
			Type: models.EventUserJoin,
			User: s.user.Username,
		})
	}

	s.state = StateActive
	metrics.ConnectionsActive.Inc()
	metrics.ConnectionsTotal.Inc()
	s.log.Info().Msg("session opened")
}

// Close leaves all groups, announces the departure, and takes the user off
// the roster. Every cleanup step is independent: a failing step is logged
// and the rest still run, so neither a subscription nor a roster entry can
// leak. Safe to call more than once.
func (s *Session) Close(ctx context.Context) {
	s.closeOnce.Do(func() {
		s.bus.Unsubscribe(s.roomGroup, s.handle)

		if s.user.Authenticated {
			s.bus.Unsubscribe(s.inboxGroup, s.handle)
			s.publish(s.roomGroup, models.EventUserLeave, models.PresenceEvent{
				Type: models.EventUserLeave,
				User: s.user.Username,
			})
			if err := s.roster.Remove(ctx, s.room.Name, s.user.Username); err != nil {
				s.log.Error().Err(err).Msg("roster remove failed")
			}
		}

		s.state = StateClosed
		metrics.ConnectionsActive.Dec()
		s.log.Info().Msg("session closed")
	})
}

// publish marshals an event and fans it out to a group.
func (s *Session) publish(group, eventType string, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.log.Error().Err(err).Str("event", eventType).Msg("event marshal failed")
		return
	}
	s.bus.Publish(group, payload)
	metrics.EventsPublished.WithLabelValues(eventType).Inc()
}

// sendEvent queues an event for this connection only.
func (s *Session) sendEvent(event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.log.Error().Err(err).Msg("event marshal failed")
		return
	}
	select {
	case s.handle <- payload:
	default:
		metrics.DeliveriesDropped.Inc()
	}
}

// sendError reports a recoverable per-frame error back on the same
// connection without closing it.
func (s *Session) sendError(msg string) {
	s.sendEvent(models.ErrorEvent{Type: models.EventError, Error: msg})
}

// persist appends a broadcast message to the store. It runs detached from
// the frame that produced the message: delivery never waits on persistence,
// and failures are surfaced to operators only.
func (s *Session) persist(msg *models.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := s.store.AppendMessage(ctx, msg); err != nil {
		metrics.PersistenceFailures.Inc()
		s.log.Error().Err(err).Msg("message append failed")
		return
	}
	metrics.MessagesPersisted.Inc()
}
