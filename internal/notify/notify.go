package notify

import (
	"sort"
	"time"

	"github.com/unera/backend/internal/models"
)

// IDSource hands out identifiers for new notifications.
type IDSource interface {
	Next() int64
}

// Draft describes a notification before it is addressed and stamped.
type Draft struct {
	RecipientID int64
	SenderID    int64
	Type        models.NotificationType
	Content     string
	PostID      int64
	ReelID      int64
}

// Dispatcher turns drafts into notifications.
type Dispatcher struct {
	ids IDSource
	now func() time.Time
}

// NewDispatcher constructs a Dispatcher stamping notifications with ids from ids.
func NewDispatcher(ids IDSource) *Dispatcher {
	return &Dispatcher{ids: ids, now: time.Now}
}

// WithClock overrides the clock used to stamp notifications.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Notify prepends the notification described by draft to list. Actions a user performs on their
// own content produce nothing, in which case list is returned unchanged with a nil notification.
func (d *Dispatcher) Notify(list []models.Notification, draft Draft) ([]models.Notification, *models.Notification) {
	if draft.RecipientID == 0 || draft.RecipientID == draft.SenderID {
		return list, nil
	}
	n := models.Notification{
		ID:        d.ids.Next(),
		UserID:    draft.RecipientID,
		SenderID:  draft.SenderID,
		Type:      draft.Type,
		Content:   draft.Content,
		PostID:    draft.PostID,
		ReelID:    draft.ReelID,
		CreatedAt: d.now(),
	}
	out := make([]models.Notification, 0, len(list)+1)
	out = append(out, n)
	out = append(out, list...)
	return out, &n
}

// MarkAllRead marks every notification addressed to userID as read.
func MarkAllRead(list []models.Notification, userID int64) ([]models.Notification, int) {
	out := make([]models.Notification, len(list))
	changed := 0
	for i, n := range list {
		if n.UserID == userID && !n.Read {
			n.Read = true
			changed++
		}
		out[i] = n
	}
	if changed == 0 {
		return list, 0
	}
	return out, changed
}

// MarkRead marks a single notification as read. Only its recipient may do so.
func MarkRead(list []models.Notification, userID, id int64) ([]models.Notification, error) {
	for i, n := range list {
		if n.ID != id {
			continue
		}
		if n.UserID != userID {
			return list, ErrNotRecipient
		}
		if n.Read {
			return list, nil
		}
		out := make([]models.Notification, len(list))
		copy(out, list)
		out[i].Read = true
		return out, nil
	}
	return list, ErrNotFound
}

// ForUser lists the notifications addressed to userID, newest first.
func ForUser(list []models.Notification, userID int64) []models.Notification {
	out := make([]models.Notification, 0)
	for _, n := range list {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// UnreadCount counts the unread notifications addressed to userID.
func UnreadCount(list []models.Notification, userID int64) int {
	count := 0
	for _, n := range list {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count
}
