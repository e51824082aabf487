package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bellamoda/salon-bookings/internal/domain"
)

// Register creates a user account. Validation failures and duplicate emails
// map to 400 and 409 respectively.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	user, err := h.auth.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			writeError(w, http.StatusConflict, domain.ErrEmailTaken.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login verifies credentials and mints an access token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	resp, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Me returns the authenticated user's own profile.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	user, err := h.auth.GetUser(r.Context(), actor.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, domain.ErrNotFound.Error())
		return
	}

	writeJSON(w, http.StatusOK, user)
}
