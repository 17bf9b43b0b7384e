package engagement

import (
	"slices"
	"strings"
	"time"

	"github.com/unera/backend/internal/models"
)

// NewComment builds a comment authored by userID. Either the text or the attachment must be
// present.
func NewComment(id, userID int64, text string, attachment *models.Attachment, now time.Time) (models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" && attachment == nil {
		return models.Comment{}, ErrEmptyComment
	}
	return models.Comment{
		ID:         id,
		UserID:     userID,
		Text:       text,
		Label:      models.JustNow,
		CreatedAt:  now,
		Attachment: attachment,
	}, nil
}

// AppendComment returns a new list with c at the end. Comment lists are append-only, so
// insertion order is chronological order.
func AppendComment(comments []models.Comment, c models.Comment) []models.Comment {
	out := make([]models.Comment, 0, len(comments)+1)
	out = append(out, comments...)
	return append(out, c)
}

// LikeComment toggles userID's like on the comment. Likes are tracked per user so repeated
// calls by the same user alternate rather than accumulate. The flag reports whether the user
// likes the comment afterwards.
func LikeComment(comments []models.Comment, commentID, userID int64) ([]models.Comment, bool, error) {
	idx := slices.IndexFunc(comments, func(c models.Comment) bool { return c.ID == commentID })
	if idx < 0 {
		return comments, false, ErrCommentNotFound
	}

	out := slices.Clone(comments)
	c := out[idx]
	var liked bool
	c.LikedBy, liked = ToggleMember(c.LikedBy, userID)
	c.Likes = len(c.LikedBy)
	out[idx] = c
	return out, liked, nil
}
