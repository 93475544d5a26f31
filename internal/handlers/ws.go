package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/api/middleware"
	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/chat"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Identity comes from the signed token, not the Origin header, and the
	// HTTP API is already open to all origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ChatSocket upgrades GET /ws/chat/{room} to a WebSocket and runs the
// connection until it closes. The room must exist before the upgrade; an
// unknown room is rejected with 404 while the connection is still plain
// HTTP.
func (h *Handler) ChatSocket(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "room")

	room, err := h.db.GetRoomByName(r.Context(), name)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if room == nil {
		h.Error(w, http.StatusNotFound, "room not found")
		return
	}

	user := middleware.GetUserFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.log.Warn().Err(err).Str("room", name).Msg("websocket upgrade failed")
		return
	}

	session := chat.NewSession(h.log, h.bus, h.roster, h.db, user, room)
	client := chat.NewClient(conn, session, h.log)
	client.Run(r.Context())
}
