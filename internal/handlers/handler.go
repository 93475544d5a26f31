package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/bus"
	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/presence"
	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/store"
	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/token"
)

// usernameRegex validates usernames: alphanumeric plus dot, hyphen,
// underscore, 1-32 chars.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,32}$`)

// roomNameRegex validates room names: alphanumeric, hyphens, underscores,
// 1-50 chars. Room names appear in group names and URL paths.
var roomNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,50}$`)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	db     store.DataStore
	roster presence.Roster
	bus    *bus.Bus
	signer *token.Signer
	log    zerolog.Logger
}

// NewHandler creates a new Handler with the given dependencies.
func NewHandler(db store.DataStore, roster presence.Roster, b *bus.Bus, signer *token.Signer, log zerolog.Logger) *Handler {
	return &Handler{db: db, roster: roster, bus: b, signer: signer, log: log}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}
