package handlers

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/unera/backend/internal/logging"
	"github.com/unera/backend/internal/models"
	"github.com/unera/backend/internal/session"
)

const maxUploadMemory = 32 << 20

// UserHandler serves profiles and the follow graph.
type UserHandler struct {
	Accounts AccountService
	Posts    PostService
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

func list[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items}
}

// List handles GET /api/v1/users.
func (h UserHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(r.Context(), w, http.StatusOK, list(h.Accounts.Users()))
}

// Get handles GET /api/v1/users/{userID}.
func (h UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "userID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	user, ok := h.Accounts.User(id)
	if !ok {
		respondJSON(ctx, w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}
	respondJSON(ctx, w, http.StatusOK, user)
}

// Search handles GET /api/v1/search?q=.
func (h UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	results := h.Accounts.Search(viewer(r, h.Accounts), r.URL.Query().Get("q"))
	respondJSON(r.Context(), w, http.StatusOK, list(results))
}

// Me handles GET /api/v1/me.
func (h UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r, h.Accounts)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, a.User)
}

// ProfilePosts handles GET /api/v1/users/{userID}/posts.
func (h UserHandler) ProfilePosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "userID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	posts, err := h.Posts.ProfileFeed(viewer(r, h.Accounts), id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, list(posts))
}

// Follow handles POST /api/v1/users/{userID}/follow.
func (h UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	h.relate(w, r, h.Accounts.Follow)
}

// Unfollow handles DELETE /api/v1/users/{userID}/follow.
func (h UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.relate(w, r, h.Accounts.Unfollow)
}

func (h UserHandler) relate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, actor session.Authenticated, targetID int64) (models.User, error)) {
	ctx := r.Context()
	a, err := actor(r, h.Accounts)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	target, err := pathID(r, "userID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	user, err := op(ctx, a, target)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, user)
}

// Suggestions handles GET /api/v1/me/suggestions.
func (h UserHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Accounts)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	suggestions, err := h.Accounts.Suggestions(a)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, list(suggestions))
}

// Birthdays handles GET /api/v1/me/birthdays.
func (h UserHandler) Birthdays(w http.ResponseWriter, r *http.Request) {
	h.people(w, r, h.Accounts.Birthdays)
}

// Contacts handles GET /api/v1/me/contacts.
func (h UserHandler) Contacts(w http.ResponseWriter, r *http.Request) {
	h.people(w, r, h.Accounts.Contacts)
}

func (h UserHandler) people(w http.ResponseWriter, r *http.Request, op func(session.Authenticated) ([]models.User, error)) {
	ctx := r.Context()
	a, err := actor(r, h.Accounts)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	users, err := op(a)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, list(users))
}

// UpdateProfile handles PATCH /api/v1/me.
func (h UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Accounts)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	var update models.ProfileUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		badRequest(ctx, w, "invalid request body")
		return
	}
	user, err := h.Accounts.UpdateProfile(ctx, a, update)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, user)
}

// UpdateAvatar handles PUT /api/v1/me/avatar with a multipart "image" file.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, h.Accounts.UpdateProfileImage)
}

// UpdateCover handles PUT /api/v1/me/cover with a multipart "image" file.
func (h UserHandler) UpdateCover(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, h.Accounts.UpdateCoverImage)
}

func (h UserHandler) updateImage(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, actor session.Authenticated, name string, r io.Reader) (models.User, error)) {
	ctx := r.Context()
	a, err := actor(r, h.Accounts)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	file, header, err := formFile(r, "image")
	if err != nil {
		logging.FromContext(ctx).Warn("invalid image upload", "error", err)
		badRequest(ctx, w, "image file is required")
		return
	}
	defer file.Close()

	user, err := op(ctx, a, header.Filename, file)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, user)
}

func formFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, nil, err
	}
	return r.FormFile(field)
}
