package handlers

import (
	"net/http"

	"github.com/unera/backend/internal/models"
)

// EventHandler serves events.
type EventHandler struct {
	Roster Roster
	Events EventService
}

type joinEventResponse struct {
	Joined bool         `json:"joined"`
	Event  models.Event `json:"event"`
}

// List handles GET /api/v1/events.
func (h EventHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(r.Context(), w, http.StatusOK, list(h.Events.Events()))
}

// Create handles POST /api/v1/events.
func (h EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	var req models.CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, "invalid request body")
		return
	}
	event, err := h.Events.CreateEvent(ctx, a, req)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, event)
}

// Join handles POST /api/v1/events/{eventID}/attendees.
func (h EventHandler) Join(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	id, err := pathID(r, "eventID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	event, joined, err := h.Events.JoinEvent(ctx, a, id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, joinEventResponse{Joined: joined, Event: event})
}
