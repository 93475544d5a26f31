package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/api/middleware"
	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/bus"
	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/handlers"
	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/presence"
	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/store"
	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/token"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, db store.DataStore, roster presence.Roster, b *bus.Bus, signer *token.Signer) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(8 * 1024)) // 8KB max body
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// CORS - clients connect from anywhere
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Identity resolution: binds a user to the request, anonymous by default
	r.Use(middleware.Identity(signer))

	h := handlers.NewHandler(db, roster, b, signer, logger)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Post("/register", h.Register)
	r.Get("/rooms", h.ListRooms)
	r.Post("/rooms", h.CreateRoom)
	r.Get("/rooms/{name}/online", h.RoomOnline)

	// The chat relay itself
	r.Get("/ws/chat/{room}", h.ChatSocket)

	return r
}
