package handlers

import (
	"encoding/json"
	"net/http"
)

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Username string `json:"username"`
}

// RegisterResponse represents the registration response. The token binds
// the username to subsequent WebSocket connections.
type RegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// Register handles user registration and token issuance. Registration is
// idempotent: an already-registered username gets a fresh token, so knowing
// a username is enough to obtain a token for it. There are no credentials
// here — identity is claimed, not proven, and deployments that need real
// authentication must front this endpoint with their own.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Username == "" {
		h.Error(w, http.StatusBadRequest, "username is required")
		return
	}
	if !usernameRegex.MatchString(req.Username) {
		h.Error(w, http.StatusBadRequest, "username must be 1-32 characters, alphanumeric with dots, hyphens and underscores only")
		return
	}

	user, err := h.db.GetUserByName(r.Context(), req.Username)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	status := http.StatusOK
	if user == nil {
		user, err = h.db.CreateUser(r.Context(), req.Username)
		if err != nil {
			h.Error(w, http.StatusInternalServerError, "failed to create user")
			return
		}
		status = http.StatusCreated
	}

	tok, err := h.signer.Generate(user.Username)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	h.JSON(w, status, RegisterResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Token:    tok,
	})
}
