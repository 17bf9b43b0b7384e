package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/unera/backend/internal/engagement"
	"github.com/unera/backend/internal/graph"
	"github.com/unera/backend/internal/guard"
	"github.com/unera/backend/internal/logging"
	"github.com/unera/backend/internal/media"
	"github.com/unera/backend/internal/models"
	"github.com/unera/backend/internal/music"
	"github.com/unera/backend/internal/notify"
	"github.com/unera/backend/internal/session"
	"github.com/unera/backend/internal/social"
	"github.com/unera/backend/internal/store"
)

const maxJSONBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

// respondError maps service errors onto HTTP statuses.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	var validation *models.ValidationError
	switch {
	case errors.As(err, &validation):
		respondJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: validation.Error(), Field: validation.Field})
	case errors.Is(err, engagement.ErrInvalidReaction),
		errors.Is(err, engagement.ErrEmptyComment),
		errors.Is(err, graph.ErrSelfFollow),
		errors.Is(err, social.ErrInvalidRating),
		errors.Is(err, social.ErrEmptyMessage),
		errors.Is(err, social.ErrMessageSelf),
		errors.Is(err, social.ErrUploadRequired):
		respondJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: rootMessage(err)})
	case errors.Is(err, social.ErrInvalidCredentials), errors.Is(err, session.ErrUnauthenticated):
		respondJSON(ctx, w, http.StatusUnauthorized, errorResponse{Error: rootMessage(err)})
	case errors.Is(err, social.ErrForbidden), errors.Is(err, notify.ErrNotRecipient):
		respondJSON(ctx, w, http.StatusForbidden, errorResponse{Error: rootMessage(err)})
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, graph.ErrUserNotFound),
		errors.Is(err, engagement.ErrCommentNotFound),
		errors.Is(err, notify.ErrNotFound),
		errors.Is(err, music.ErrNotFound):
		respondJSON(ctx, w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, social.ErrEmailTaken), errors.Is(err, guard.ErrInFlight):
		respondJSON(ctx, w, http.StatusConflict, errorResponse{Error: rootMessage(err)})
	case errors.Is(err, media.ErrStorageUnavailable):
		respondJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{Error: "media storage unavailable"})
	default:
		logging.FromContext(ctx).Error("unhandled service error", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func badRequest(ctx context.Context, w http.ResponseWriter, message string) {
	respondJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

// actor resolves the signed-in user of the request against the roster.
func actor(r *http.Request, roster Roster) (session.Authenticated, error) {
	id := logging.UserIDFromContext(r.Context())
	if id == 0 || roster == nil {
		return session.Authenticated{}, session.ErrUnauthenticated
	}
	user, ok := roster.User(id)
	if !ok {
		return session.Authenticated{}, session.ErrUnauthenticated
	}
	return session.Authenticated{User: user.Public()}, nil
}

// viewer is the session used for feed reads; anonymous callers see public content only.
func viewer(r *http.Request, roster Roster) session.Session {
	a, err := actor(r, roster)
	if err != nil {
		return session.Anonymous{}
	}
	return a
}
