package handlers

import (
	"net/http"

	"github.com/unera/backend/internal/models"
)

// PostHandler serves the home feed, posts, stories and media uploads.
type PostHandler struct {
	Roster Roster
	Posts  PostService
}

type editPostRequest struct {
	Content    string            `json:"content"`
	Visibility models.Visibility `json:"visibility"`
}

type reactRequest struct {
	Type models.ReactionType `json:"type"`
}

type reactResponse struct {
	Outcome string `json:"outcome"`
	Target  any    `json:"target"`
}

type commentRequest struct {
	Text       string             `json:"text"`
	Attachment *models.Attachment `json:"attachment"`
}

type likeResponse struct {
	Liked  bool `json:"liked"`
	Target any  `json:"target"`
}

type storyRequest struct {
	Image string `json:"image"`
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Home handles GET /api/v1/feed/home.
func (h PostHandler) Home(w http.ResponseWriter, r *http.Request) {
	respondJSON(r.Context(), w, http.StatusOK, list(h.Posts.HomeFeed(viewer(r, h.Roster))))
}

// Get handles GET /api/v1/posts/{postID}.
func (h PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "postID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	post, err := h.Posts.Post(viewer(r, h.Roster), id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, post)
}

// Create handles POST /api/v1/posts.
func (h PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	var req models.CreatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, "invalid request body")
		return
	}
	post, err := h.Posts.CreatePost(ctx, a, req)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, post)
}

// Edit handles PATCH /api/v1/posts/{postID}.
func (h PostHandler) Edit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	id, err := pathID(r, "postID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	var req editPostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, "invalid request body")
		return
	}
	post, err := h.Posts.EditPost(ctx, a, id, req.Content, req.Visibility)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, post)
}

// Delete handles DELETE /api/v1/posts/{postID}.
func (h PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	id, err := pathID(r, "postID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	if err := h.Posts.DeletePost(ctx, a, id); err != nil {
		respondError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Share handles POST /api/v1/posts/{postID}/share.
func (h PostHandler) Share(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	id, err := pathID(r, "postID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	var req editPostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, "invalid request body")
		return
	}
	post, err := h.Posts.SharePost(ctx, a, id, req.Content, req.Visibility)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, post)
}

// React handles POST /api/v1/posts/{postID}/reactions.
func (h PostHandler) React(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	id, err := pathID(r, "postID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	var req reactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, "invalid request body")
		return
	}
	post, outcome, err := h.Posts.ReactToPost(ctx, a, id, req.Type)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, reactResponse{Outcome: outcome.String(), Target: post})
}

// Comment handles POST /api/v1/posts/{postID}/comments.
func (h PostHandler) Comment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	id, err := pathID(r, "postID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, "invalid request body")
		return
	}
	comment, err := h.Posts.CommentOnPost(ctx, a, id, req.Text, req.Attachment)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, comment)
}

// LikeComment handles POST /api/v1/posts/{postID}/comments/{commentID}/like.
func (h PostHandler) LikeComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	postID, err := pathID(r, "postID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	commentID, err := pathID(r, "commentID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	comment, liked, err := h.Posts.LikePostComment(ctx, a, postID, commentID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, likeResponse{Liked: liked, Target: comment})
}

// Stories handles GET /api/v1/stories.
func (h PostHandler) Stories(w http.ResponseWriter, r *http.Request) {
	respondJSON(r.Context(), w, http.StatusOK, list(h.Posts.Stories()))
}

// CreateStory handles POST /api/v1/stories.
func (h PostHandler) CreateStory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	var req storyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, "invalid request body")
		return
	}
	story, err := h.Posts.CreateStory(ctx, a, req.Image)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, story)
}

// Upload handles POST /api/v1/media with a multipart "file" and answers with its URL.
func (h PostHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	file, header, err := formFile(r, "file")
	if err != nil {
		badRequest(ctx, w, "file is required")
		return
	}
	defer file.Close()

	url, err := h.Posts.UploadMedia(ctx, a, header.Filename, file)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, uploadResponse{URL: url})
}
