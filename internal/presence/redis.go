package presence

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// Redis is a Roster backed by Redis sets, for deployments where several
// instances share presence state.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed roster from a Redis URL.
func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Redis{client: client}, nil
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Ping checks the Redis connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// onlineKey returns the key for a room's online set.
func onlineKey(room string) string {
	return fmt.Sprintf("room:%s:online", room)
}

// Add marks username online in room. SADD is idempotent.
func (r *Redis) Add(ctx context.Context, room, username string) error {
	return r.client.SAdd(ctx, onlineKey(room), username).Err()
}

// Remove marks username offline in room. SREM of an absent member is a no-op.
func (r *Redis) Remove(ctx context.Context, room, username string) error {
	return r.client.SRem(ctx, onlineKey(room), username).Err()
}

// List returns the usernames currently online in room, sorted.
func (r *Redis) List(ctx context.Context, room string) ([]string, error) {
	users, err := r.client.SMembers(ctx, onlineKey(room)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(users)
	return users, nil
}
