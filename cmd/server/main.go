package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/api"
	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/bus"
	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/config"
	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/presence"
	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/store"
	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/token"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Initialize the data store: Postgres when configured, SQLite otherwise
	var db store.DataStore
	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		db = pgStore
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		sqliteStore, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		db = sqliteStore
		logger.Info().Msg("using SQLite store")
	}
	defer db.Close()

	// Initialize the presence roster: Redis when configured, in-process otherwise
	var roster presence.Roster
	if cfg.RedisURL != "" {
		redisRoster, err := presence.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisRoster.Close()
		roster = redisRoster
		logger.Info().Msg("connected to Redis")
	} else {
		roster = presence.NewMemory()
	}

	// Seed configured rooms
	for _, name := range cfg.SeedRooms {
		room, err := db.GetRoomByName(ctx, name)
		if err != nil {
			logger.Fatal().Err(err).Str("room", name).Msg("room lookup failed")
		}
		if room == nil {
			if _, err := db.CreateRoom(ctx, name); err != nil {
				logger.Fatal().Err(err).Str("room", name).Msg("room seed failed")
			}
			logger.Info().Str("room", name).Msg("seeded room")
		}
	}

	signer := token.NewSigner(cfg.JWTSecret, token.DefaultTTL)
	broadcast := bus.New()

	// Create router
	router := api.NewRouter(logger, db, roster, broadcast, signer)

	// Create server
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: WebSocket connections outlive any fixed deadline.
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting chat server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
