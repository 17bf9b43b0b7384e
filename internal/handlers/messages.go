package handlers

import (
	"net/http"

	"github.com/unera/backend/internal/models"
)

// MessageHandler serves direct messages and notifications.
type MessageHandler struct {
	Roster   Roster
	Messages MessageService
}

type sendMessageRequest struct {
	Text      string `json:"text"`
	ProductID int64  `json:"productId"`
}

type notificationsResponse struct {
	Items  []models.Notification `json:"items"`
	Unread int                   `json:"unread"`
}

type markedResponse struct {
	Marked int `json:"marked"`
}

// Conversation handles GET /api/v1/messages/{userID}.
func (h MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	other, err := pathID(r, "userID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	respondJSON(ctx, w, http.StatusOK, list(h.Messages.Conversation(a, other)))
}

// Send handles POST /api/v1/messages/{userID}.
func (h MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	receiver, err := pathID(r, "userID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	var req sendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, "invalid request body")
		return
	}
	msg, err := h.Messages.SendMessage(ctx, a, receiver, req.Text, req.ProductID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, msg)
}

// Notifications handles GET /api/v1/notifications.
func (h MessageHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	items := h.Messages.Notifications(a)
	if items == nil {
		items = []models.Notification{}
	}
	respondJSON(ctx, w, http.StatusOK, notificationsResponse{Items: items, Unread: h.Messages.UnreadCount(a)})
}

// MarkAllRead handles POST /api/v1/notifications/read.
func (h MessageHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, markedResponse{Marked: h.Messages.MarkAllRead(ctx, a)})
}

// MarkRead handles POST /api/v1/notifications/{notificationID}/read.
func (h MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	id, err := pathID(r, "notificationID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	if err := h.Messages.MarkNotificationRead(ctx, a, id); err != nil {
		respondError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
