package store

import (
	"context"

	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/models"
)

// DataStore defines the interface for persistent storage of users, rooms,
// and messages. Both PostgresStore and SQLiteStore implement this interface.
// Lookups return (nil, nil) when the record does not exist.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// User operations
	CreateUser(ctx context.Context, username string) (*models.User, error)
	GetUserByName(ctx context.Context, username string) (*models.User, error)

	// Room operations
	CreateRoom(ctx context.Context, name string) (*models.Room, error)
	GetRoomByName(ctx context.Context, name string) (*models.Room, error)
	ListRooms(ctx context.Context, limit, offset int) ([]models.Room, int, error)

	// Message operations
	AppendMessage(ctx context.Context, msg *models.Message) error
}

// RoomFinder is the narrow lookup a connection needs at open time.
type RoomFinder interface {
	GetRoomByName(ctx context.Context, name string) (*models.Room, error)
}

// MessageAppender is the narrow persistence capability of the relay path.
// Appends are fire-and-forget from the connection's perspective.
type MessageAppender interface {
	AppendMessage(ctx context.Context, msg *models.Message) error
}
