package chat

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/bus"
	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/models"
	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/presence"
)

// captureStore records appended messages on a channel so tests can wait for
// the detached persist goroutine.
type captureStore struct {
	appended chan *models.Message
}

func newCaptureStore() *captureStore {
	return &captureStore{appended: make(chan *models.Message, 16)}
}

func (c *captureStore) AppendMessage(_ context.Context, msg *models.Message) error {
	c.appended <- msg
	return nil
}

type fixture struct {
	bus    *bus.Bus
	roster *presence.Memory
	store  *captureStore
}

func newFixture() *fixture {
	return &fixture{
		bus:    bus.New(),
		roster: presence.NewMemory(),
		store:  newCaptureStore(),
	}
}

func (f *fixture) session(username string, authenticated bool, room string) *Session {
	user := &models.User{Username: username, Authenticated: authenticated}
	return NewSession(zerolog.Nop(), f.bus, f.roster, f.store, user, &models.Room{Name: room})
}

// recvEvent waits for the next delivery on a session's handle.
func recvEvent(t *testing.T, s *Session) map[string]interface{} {
	t.Helper()
	select {
	case payload := <-s.Deliveries():
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal(payload, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
		return nil
	}
}

// requireNoEvent asserts nothing is delivered to a session for a short window.
func requireNoEvent(t *testing.T, s *Session) {
	t.Helper()
	select {
	case payload := <-s.Deliveries():
		t.Fatalf("unexpected delivery: %s", payload)
	case <-time.After(100 * time.Millisecond):
	}
}

// requireNoAppend asserts the store saw no write for a short window.
func requireNoAppend(t *testing.T, c *captureStore) {
	t.Helper()
	select {
	case msg := <-c.appended:
		t.Fatalf("unexpected store append: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

// drain discards everything queued for a session so far.
func drain(s *Session) {
	for {
		select {
		case <-s.Deliveries():
		default:
			return
		}
	}
}

func frame(t *testing.T, text string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"message": text})
	require.NoError(t, err)
	return payload
}

func TestOpenSendsSnapshotThenJoin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	alice := f.session("alice", true, "general")
	alice.Open(ctx)

	snapshot := recvEvent(t, alice)
	require.Equal(t, models.EventUserList, snapshot["type"])
	require.Empty(t, snapshot["users"])

	// Broadcast is not sender-excluding: alice sees her own join.
	join := recvEvent(t, alice)
	require.Equal(t, models.EventUserJoin, join["type"])
	require.Equal(t, "alice", join["user"])

	users, err := f.roster.List(ctx, "general")
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, users)
	require.Equal(t, StateActive, alice.State())
}

func TestSnapshotListsUsersAlreadyOnline(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for _, name := range []string{"alice", "bob", "carol"} {
		s := f.session(name, true, "general")
		s.Open(ctx)
	}

	dave := f.session("dave", true, "general")
	dave.Open(ctx)

	snapshot := recvEvent(t, dave)
	require.Equal(t, models.EventUserList, snapshot["type"])
	require.ElementsMatch(t, []interface{}{"alice", "bob", "carol"}, snapshot["users"])
}

func TestAnonymousUserExcludedFromRoster(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	anon := f.session("anonymous", false, "general")
	anon.Open(ctx)

	snapshot := recvEvent(t, anon)
	require.Equal(t, models.EventUserList, snapshot["type"])

	users, err := f.roster.List(ctx, "general")
	require.NoError(t, err)
	require.Empty(t, users)

	// No join announcement for anonymous connections.
	requireNoEvent(t, anon)
}

func TestRosterTracksOpenAndClose(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sessions := make([]*Session, 0, 3)
	for _, name := range []string{"alice", "bob", "carol"} {
		s := f.session(name, true, "general")
		s.Open(ctx)
		sessions = append(sessions, s)
	}

	users, err := f.roster.List(ctx, "general")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alice", "bob", "carol"}, users)

	sessions[1].Close(ctx)

	users, err = f.roster.List(ctx, "general")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alice", "carol"}, users)
}

func TestBroadcastReachesEveryoneIncludingSender(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	alice := f.session("alice", true, "general")
	bob := f.session("bob", true, "general")
	alice.Open(ctx)
	bob.Open(ctx)
	drain(alice)
	drain(bob)

	alice.HandleFrame(ctx, frame(t, "hi all"))

	for _, s := range []*Session{alice, bob} {
		event := recvEvent(t, s)
		require.Equal(t, models.EventChatMessage, event["type"])
		require.Equal(t, "alice", event["user"])
		require.Equal(t, "hi all", event["message"])
	}

	select {
	case msg := <-f.store.appended:
		require.Equal(t, "general", msg.Room)
		require.Equal(t, "alice", msg.From)
		require.Equal(t, "hi all", msg.Body)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for store append")
	}
}

func TestBroadcastScopedToRoomGroup(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	alice := f.session("alice", true, "general")
	eve := f.session("eve", true, "random")
	alice.Open(ctx)
	eve.Open(ctx)
	drain(alice)
	drain(eve)

	alice.HandleFrame(ctx, frame(t, "hi all"))

	event := recvEvent(t, alice)
	require.Equal(t, models.EventChatMessage, event["type"])
	requireNoEvent(t, eve)
}

func TestPrivateMessageDeliveredToInboxOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	alice := f.session("alice", true, "general")
	bob := f.session("bob", true, "random") // different room: inbox works regardless
	carol := f.session("carol", true, "general")
	alice.Open(ctx)
	bob.Open(ctx)
	carol.Open(ctx)
	drain(alice)
	drain(bob)
	drain(carol)

	alice.HandleFrame(ctx, frame(t, "/pm bob hello there"))

	pm := recvEvent(t, bob)
	require.Equal(t, models.EventPrivateMessage, pm["type"])
	require.Equal(t, "alice", pm["user"])
	require.Equal(t, "hello there", pm["message"])

	ack := recvEvent(t, alice)
	require.Equal(t, models.EventPrivateMessageDelivered, ack["type"])
	require.Equal(t, "bob", ack["target"])
	require.Equal(t, "hello there", ack["message"])

	// Room subscribers see nothing, and private messages are never persisted.
	requireNoEvent(t, carol)
	requireNoAppend(t, f.store)
}

func TestPrivateMessageToOfflineTargetStillAcked(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	alice := f.session("alice", true, "general")
	alice.Open(ctx)
	drain(alice)

	alice.HandleFrame(ctx, frame(t, "/pm ghost are you there"))

	ack := recvEvent(t, alice)
	require.Equal(t, models.EventPrivateMessageDelivered, ack["type"])
	require.Equal(t, "ghost", ack["target"])
	requireNoEvent(t, alice)
}

func TestMalformedPrivateCommandReturnsError(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	alice := f.session("alice", true, "general")
	alice.Open(ctx)
	drain(alice)

	for _, text := range []string{"/pm", "/pm bob"} {
		alice.HandleFrame(ctx, frame(t, text))
		event := recvEvent(t, alice)
		require.Equal(t, models.EventError, event["type"], "input %q", text)
	}

	// The connection stays alive.
	require.Equal(t, StateActive, alice.State())
	requireNoAppend(t, f.store)
}

func TestMalformedPayloadReturnsError(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	alice := f.session("alice", true, "general")
	alice.Open(ctx)
	drain(alice)

	for _, payload := range [][]byte{
		[]byte("not json"),
		[]byte(`{"wrong":"field"}`),
		[]byte(`{"message":42}`),
	} {
		alice.HandleFrame(ctx, payload)
		event := recvEvent(t, alice)
		require.Equal(t, models.EventError, event["type"], "payload %s", payload)
	}

	require.Equal(t, StateActive, alice.State())
}

func TestUnidentifiedSenderDroppedSilently(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	anon := f.session("anonymous", false, "general")
	bob := f.session("bob", true, "general")
	anon.Open(ctx)
	bob.Open(ctx)
	drain(anon)
	drain(bob)

	anon.HandleFrame(ctx, frame(t, "hello?"))
	anon.HandleFrame(ctx, frame(t, "/pm bob psst"))

	requireNoEvent(t, anon)
	requireNoEvent(t, bob)
	requireNoAppend(t, f.store)
}

func TestCloseAnnouncesLeaveToRemainingSubscribers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	alice := f.session("alice", true, "general")
	bob := f.session("bob", true, "general")
	alice.Open(ctx)
	bob.Open(ctx)
	drain(alice)
	drain(bob)

	alice.Close(ctx)

	leave := recvEvent(t, bob)
	require.Equal(t, models.EventUserLeave, leave["type"])
	require.Equal(t, "alice", leave["user"])

	// Alice unsubscribed before the announcement went out.
	requireNoEvent(t, alice)

	users, err := f.roster.List(ctx, "general")
	require.NoError(t, err)
	require.Equal(t, []string{"bob"}, users)
}

func TestCloseIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	alice := f.session("alice", true, "general")
	bob := f.session("bob", true, "general")
	alice.Open(ctx)
	bob.Open(ctx)
	drain(alice)
	drain(bob)

	alice.Close(ctx)
	alice.Close(ctx)

	leave := recvEvent(t, bob)
	require.Equal(t, models.EventUserLeave, leave["type"])
	requireNoEvent(t, bob)
	require.Equal(t, StateClosed, alice.State())
}

func TestClosedSessionIgnoresFrames(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	alice := f.session("alice", true, "general")
	alice.Open(ctx)
	drain(alice)
	alice.Close(ctx)

	alice.HandleFrame(ctx, frame(t, "anyone?"))

	requireNoEvent(t, alice)
	requireNoAppend(t, f.store)
}

func TestPrivateBodyTakenVerbatim(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	alice := f.session("alice", true, "general")
	bob := f.session("bob", true, "general")
	alice.Open(ctx)
	bob.Open(ctx)
	drain(alice)
	drain(bob)

	alice.HandleFrame(ctx, frame(t, "/pm bob  leading space and  gaps "))

	pm := recvEvent(t, bob)
	require.Equal(t, " leading space and  gaps ", pm["message"])
}
