package handlers

import (
	"net/http"

	"github.com/unera/backend/internal/feed"
	"github.com/unera/backend/internal/models"
)

// GroupHandler serves groups and their feeds.
type GroupHandler struct {
	Roster Roster
	Groups GroupService
}

type groupPostRequest struct {
	Content string `json:"content"`
	Image   string `json:"image"`
}

type groupResponse struct {
	models.Group
	Feed []feed.GroupPostView `json:"feed"`
}

// List handles GET /api/v1/groups.
func (h GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(r.Context(), w, http.StatusOK, list(h.Groups.Groups()))
}

// Get handles GET /api/v1/groups/{groupID} and answers with the group and its feed.
func (h GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "groupID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	group, err := h.Groups.Group(id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	posts, err := h.Groups.GroupFeed(id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if posts == nil {
		posts = []feed.GroupPostView{}
	}
	respondJSON(ctx, w, http.StatusOK, groupResponse{Group: group, Feed: posts})
}

// Create handles POST /api/v1/groups.
func (h GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	var req models.CreateGroupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, "invalid request body")
		return
	}
	group, err := h.Groups.CreateGroup(ctx, a, req)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, group)
}

// Join handles POST /api/v1/groups/{groupID}/members.
func (h GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, true)
}

// Leave handles DELETE /api/v1/groups/{groupID}/members.
func (h GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, false)
}

func (h GroupHandler) membership(w http.ResponseWriter, r *http.Request, join bool) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	id, err := pathID(r, "groupID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	var group models.Group
	if join {
		group, err = h.Groups.JoinGroup(ctx, a, id)
	} else {
		group, err = h.Groups.LeaveGroup(ctx, a, id)
	}
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, group)
}

// Post handles POST /api/v1/groups/{groupID}/posts.
func (h GroupHandler) Post(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	id, err := pathID(r, "groupID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	var req groupPostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, "invalid request body")
		return
	}
	post, err := h.Groups.PostToGroup(ctx, a, id, req.Content, req.Image)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, post)
}

// Like handles POST /api/v1/groups/{groupID}/posts/{postID}/like.
func (h GroupHandler) Like(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	groupID, postID, err := groupPostIDs(r)
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	post, liked, err := h.Groups.LikeGroupPost(ctx, a, groupID, postID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, likeResponse{Liked: liked, Target: post})
}

// Comment handles POST /api/v1/groups/{groupID}/posts/{postID}/comments.
func (h GroupHandler) Comment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	groupID, postID, err := groupPostIDs(r)
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, "invalid request body")
		return
	}
	comment, err := h.Groups.CommentOnGroupPost(ctx, a, groupID, postID, req.Text, req.Attachment)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, comment)
}

func groupPostIDs(r *http.Request) (int64, int64, error) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		return 0, 0, err
	}
	postID, err := pathID(r, "postID")
	if err != nil {
		return 0, 0, err
	}
	return groupID, postID, nil
}
