package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	store := &PostgresStore{pool: pool}

	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist. Statements run one at a
// time: pgx's extended protocol rejects multi-statement commands.
func (s *PostgresStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username TEXT UNIQUE NOT NULL,
			created_at TIMESTAMPTZ DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS rooms (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT UNIQUE NOT NULL,
			created_at TIMESTAMPTZ DEFAULT now(),
			last_active_at TIMESTAMPTZ DEFAULT now(),
			message_count BIGINT DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			room TEXT NOT NULL,
			sender TEXT NOT NULL,
			body TEXT NOT NULL,
			ts BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_room_ts ON messages(room, ts)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CreateUser creates a new user record.
func (s *PostgresStore) CreateUser(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (username)
		VALUES ($1)
		RETURNING id, username, created_at
	`, username).Scan(
		&user.ID,
		&user.Username,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByName retrieves a user by username.
func (s *PostgresStore) GetUserByName(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, created_at
		FROM users WHERE username = $1
	`, username).Scan(
		&user.ID,
		&user.Username,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// CreateRoom creates a new room.
func (s *PostgresStore) CreateRoom(ctx context.Context, name string) (*models.Room, error) {
	room := &models.Room{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO rooms (name)
		VALUES ($1)
		RETURNING id, name, created_at, last_active_at, message_count
	`, name).Scan(
		&room.ID,
		&room.Name,
		&room.CreatedAt,
		&room.LastActiveAt,
		&room.MessageCount,
	)
	if err != nil {
		return nil, err
	}
	return room, nil
}

// GetRoomByName retrieves a room by name.
func (s *PostgresStore) GetRoomByName(ctx context.Context, name string) (*models.Room, error) {
	room := &models.Room{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, created_at, last_active_at, message_count
		FROM rooms WHERE name = $1
	`, name).Scan(
		&room.ID,
		&room.Name,
		&room.CreatedAt,
		&room.LastActiveAt,
		&room.MessageCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// ListRooms retrieves rooms with pagination, most recently active first.
func (s *PostgresStore) ListRooms(ctx context.Context, limit, offset int) ([]models.Room, int, error) {
	var total int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, name, created_at, last_active_at, message_count
		FROM rooms
		ORDER BY last_active_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		var room models.Room
		err := rows.Scan(
			&room.ID,
			&room.Name,
			&room.CreatedAt,
			&room.LastActiveAt,
			&room.MessageCount,
		)
		if err != nil {
			return nil, 0, err
		}
		rooms = append(rooms, room)
	}

	return rooms, total, rows.Err()
}

// AppendMessage stores a broadcast message. A ULID and timestamp are
// assigned if not already set.
func (s *PostgresStore) AppendMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO messages (id, room, sender, body, ts)
		VALUES ($1, $2, $3, $4, $5)
	`, msg.ID, msg.Room, msg.From, msg.Body, msg.Timestamp)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE rooms
		SET message_count = message_count + 1, last_active_at = now()
		WHERE name = $1
	`, msg.Room)
	return err
}
