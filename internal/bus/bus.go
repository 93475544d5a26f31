// Package bus implements the group broadcast primitive: named subscriber
// groups with best-effort fan-out delivery. It is the only structure shared
// by all connections, so every group keeps its own lock and unrelated groups
// never serialize against each other.
package bus

import (
	"sync"

	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/metrics"
)

// subscriberBuffer is the per-handle delivery queue depth. A subscriber whose
// queue is full misses the delivery rather than blocking the publisher.
const subscriberBuffer = 256

// Handle is one subscriber's delivery channel. The write pump of a single
// connection is the only reader.
type Handle chan []byte

// NewHandle creates a buffered delivery channel for one subscriber.
func NewHandle() Handle {
	return make(Handle, subscriberBuffer)
}

type group struct {
	mu sync.Mutex
	// dead is set under mu when reclaim removes the group from the map.
	// A Subscribe holding a stale pointer must not add members to it.
	dead    bool
	members map[Handle]struct{}
}

// Bus maintains named subscriber groups and fans published payloads out to
// every current member. All methods are safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	groups map[string]*group
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{groups: make(map[string]*group)}
}

// Subscribe adds h to the named group, creating the group on first use.
// Subscribing an already-subscribed handle is a no-op.
func (b *Bus) Subscribe(name string, h Handle) {
	for {
		g := b.getOrCreate(name)
		g.mu.Lock()
		if g.dead {
			// reclaim removed this group between getOrCreate and here.
			// Retry so the membership lands in a registered group.
			g.mu.Unlock()
			continue
		}
		g.members[h] = struct{}{}
		g.mu.Unlock()
		return
	}
}

// Unsubscribe removes h from the named group. It is a no-op if h is not
// currently subscribed. Empty groups are reclaimed.
func (b *Bus) Unsubscribe(name string, h Handle) {
	b.mu.RLock()
	g, ok := b.groups[name]
	b.mu.RUnlock()
	if !ok {
		return
	}

	g.mu.Lock()
	delete(g.members, h)
	empty := len(g.members) == 0
	g.mu.Unlock()

	if empty {
		b.reclaim(name)
	}
}

// Publish delivers payload to every handle subscribed to the named group at
// the moment of the call. Delivery is at-most-once per subscriber and
// best-effort: a subscriber whose buffer is full misses the payload.
// It returns the number of deliveries made.
func (b *Bus) Publish(name string, payload []byte) int {
	b.mu.RLock()
	g, ok := b.groups[name]
	b.mu.RUnlock()
	if !ok {
		return 0
	}

	g.mu.Lock()
	targets := make([]Handle, 0, len(g.members))
	for h := range g.members {
		targets = append(targets, h)
	}
	g.mu.Unlock()

	delivered := 0
	for _, h := range targets {
		select {
		case h <- payload:
			delivered++
		default:
			metrics.DeliveriesDropped.Inc()
		}
	}
	return delivered
}

// Subscribers reports the current member count of a group.
func (b *Bus) Subscribers(name string) int {
	b.mu.RLock()
	g, ok := b.groups[name]
	b.mu.RUnlock()
	if !ok {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.members)
}

func (b *Bus) getOrCreate(name string) *group {
	b.mu.RLock()
	g, ok := b.groups[name]
	b.mu.RUnlock()
	if ok {
		return g
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if g, ok = b.groups[name]; ok {
		return g
	}
	g = &group{members: make(map[Handle]struct{})}
	b.groups[name] = g
	return g
}

// reclaim drops a group if it is still empty once the map lock is held.
// The removed group is marked dead under its own lock, so a Subscribe that
// already resolved the stale pointer retries against the map instead of
// landing its membership in an unreachable group.
func (b *Bus) reclaim(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g, ok := b.groups[name]
	if !ok {
		return
	}
	g.mu.Lock()
	if len(g.members) == 0 {
		g.dead = true
		delete(b.groups, name)
	}
	g.mu.Unlock()
}
