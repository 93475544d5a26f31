package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/models"
)

// SQLiteStore handles SQLite database operations. It is the default store
// for development and single-node deployments.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/chat.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/chat.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_active_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		message_count INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		room TEXT NOT NULL,
		sender TEXT NOT NULL,
		body TEXT NOT NULL,
		ts INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
	CREATE INDEX IF NOT EXISTS idx_rooms_name ON rooms(name);
	CREATE INDEX IF NOT EXISTS idx_messages_room_ts ON messages(room, ts);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateUser creates a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, username string) (*models.User, error) {
	id := uuid.New().String()
	now := time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, created_at)
		VALUES (?, ?, ?)
	`, id, username, now)
	if err != nil {
		return nil, err
	}

	return s.GetUserByName(ctx, username)
}

// GetUserByName retrieves a user by username.
func (s *SQLiteStore) GetUserByName(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	var idStr string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, created_at
		FROM users WHERE username = ?
	`, username).Scan(
		&idStr,
		&user.Username,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	user.ID = uuid.MustParse(idStr)
	return user, nil
}

// CreateRoom creates a new room.
func (s *SQLiteStore) CreateRoom(ctx context.Context, name string) (*models.Room, error) {
	id := uuid.New().String()
	now := time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rooms (id, name, created_at, last_active_at, message_count)
		VALUES (?, ?, ?, ?, 0)
	`, id, name, now, now)
	if err != nil {
		return nil, err
	}

	return s.GetRoomByName(ctx, name)
}

// GetRoomByName retrieves a room by name.
func (s *SQLiteStore) GetRoomByName(ctx context.Context, name string) (*models.Room, error) {
	room := &models.Room{}
	var idStr string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, last_active_at, message_count
		FROM rooms WHERE name = ?
	`, name).Scan(
		&idStr,
		&room.Name,
		&room.CreatedAt,
		&room.LastActiveAt,
		&room.MessageCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	room.ID = uuid.MustParse(idStr)
	return room, nil
}

// ListRooms retrieves rooms with pagination, most recently active first.
func (s *SQLiteStore) ListRooms(ctx context.Context, limit, offset int) ([]models.Room, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at, last_active_at, message_count
		FROM rooms
		ORDER BY last_active_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		var room models.Room
		var idStr string

		err := rows.Scan(
			&idStr,
			&room.Name,
			&room.CreatedAt,
			&room.LastActiveAt,
			&room.MessageCount,
		)
		if err != nil {
			return nil, 0, err
		}

		room.ID = uuid.MustParse(idStr)
		rooms = append(rooms, room)
	}

	return rooms, total, rows.Err()
}

// AppendMessage stores a broadcast message. A ULID and timestamp are
// assigned if not already set.
func (s *SQLiteStore) AppendMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, room, sender, body, ts)
		VALUES (?, ?, ?, ?, ?)
	`, msg.ID, msg.Room, msg.From, msg.Body, msg.Timestamp)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE rooms
		SET message_count = message_count + 1, last_active_at = CURRENT_TIMESTAMP
		WHERE name = ?
	`, msg.Room)
	return err
}
