package handlers

import (
	"net/http"

	"github.com/unera/backend/internal/models"
)

const defaultReelPage = 10

// ReelHandler serves the reels feed.
type ReelHandler struct {
	Roster Roster
	Reels  ReelService
}

// Feed handles GET /api/v1/reels?offset=&limit=.
func (h ReelHandler) Feed(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", defaultReelPage)
	respondJSON(r.Context(), w, http.StatusOK, list(h.Reels.ReelsFeed(offset, limit)))
}

// Get handles GET /api/v1/reels/{reelID}.
func (h ReelHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "reelID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	reel, err := h.Reels.Reel(id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, reel)
}

// Create handles POST /api/v1/reels as a multipart form with a "video" file and the caption,
// songName and effectName fields. The reel is answered while its video is still ingesting.
func (h ReelHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	file, header, err := formFile(r, "video")
	if err != nil {
		badRequest(ctx, w, "video file is required")
		return
	}
	defer file.Close()

	req := models.CreateReelRequest{
		Caption:    r.FormValue("caption"),
		SongName:   r.FormValue("songName"),
		EffectName: r.FormValue("effectName"),
		FileName:   header.Filename,
	}
	reel, err := h.Reels.CreateReel(ctx, a, req, file)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	status := http.StatusCreated
	if reel.AssetStatus == models.AssetStatusPending {
		status = http.StatusAccepted
	}
	respondJSON(ctx, w, status, reel)
}

// React handles POST /api/v1/reels/{reelID}/reactions.
func (h ReelHandler) React(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	id, err := pathID(r, "reelID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	var req reactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, "invalid request body")
		return
	}
	reel, outcome, err := h.Reels.ReactToReel(ctx, a, id, req.Type)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, reactResponse{Outcome: outcome.String(), Target: reel})
}

// Comment handles POST /api/v1/reels/{reelID}/comments.
func (h ReelHandler) Comment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	id, err := pathID(r, "reelID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, "invalid request body")
		return
	}
	comment, err := h.Reels.CommentOnReel(ctx, a, id, req.Text, req.Attachment)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, comment)
}

// Share handles POST /api/v1/reels/{reelID}/share.
func (h ReelHandler) Share(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	id, err := pathID(r, "reelID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	reel, err := h.Reels.ShareReel(ctx, a, id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, reel)
}
