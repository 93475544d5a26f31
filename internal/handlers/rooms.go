package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// CreateRoomRequest represents the room creation request.
type CreateRoomRequest struct {
	Name string `json:"name"`
}

// RoomInfo represents a room in list responses.
type RoomInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MessageCount int64  `json:"message_count"`
	LastActive   string `json:"last_active"`
}

// RoomListResponse represents the rooms list response.
type RoomListResponse struct {
	Rooms []RoomInfo `json:"rooms"`
	Total int        `json:"total"`
}

// OnlineResponse represents the roster snapshot for one room.
type OnlineResponse struct {
	Room  string   `json:"room"`
	Users []string `json:"users"`
}

// CreateRoom handles room creation.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if !roomNameRegex.MatchString(req.Name) {
		h.Error(w, http.StatusBadRequest, "name must be 1-50 characters, alphanumeric with hyphens and underscores only")
		return
	}

	existing, err := h.db.GetRoomByName(r.Context(), req.Name)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if existing != nil {
		h.Error(w, http.StatusConflict, "room already exists")
		return
	}

	room, err := h.db.CreateRoom(r.Context(), req.Name)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to create room")
		return
	}

	h.JSON(w, http.StatusCreated, RoomInfo{
		ID:           room.ID.String(),
		Name:         room.Name,
		MessageCount: room.MessageCount,
		LastActive:   room.LastActiveAt.UTC().Format("2006-01-02T15:04:05Z"),
	})
}

// ListRooms handles listing rooms.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	limit := 20
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	rooms, total, err := h.db.ListRooms(r.Context(), limit, offset)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	infos := make([]RoomInfo, len(rooms))
	for i, room := range rooms {
		infos[i] = RoomInfo{
			ID:           room.ID.String(),
			Name:         room.Name,
			MessageCount: room.MessageCount,
			LastActive:   room.LastActiveAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}

	h.JSON(w, http.StatusOK, RoomListResponse{
		Rooms: infos,
		Total: total,
	})
}

// RoomOnline handles the roster snapshot endpoint for one room.
func (h *Handler) RoomOnline(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	room, err := h.db.GetRoomByName(r.Context(), name)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if room == nil {
		h.Error(w, http.StatusNotFound, "room not found")
		return
	}

	users, err := h.roster.List(r.Context(), room.Name)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "presence error")
		return
	}

	h.JSON(w, http.StatusOK, OnlineResponse{
		Room:  room.Name,
		Users: users,
	})
}
