package messaging

import (
	"context"
	"time"
)

// Subjects carrying domain events.
const (
	SubjectPostCreated         = "post.created"
	SubjectPostReacted         = "post.reacted"
	SubjectCommentAdded        = "comment.added"
	SubjectUserFollowed        = "user.followed"
	SubjectNotificationCreated = "notification.created"
	SubjectReelReady           = "reel.ready"
	SubjectMessageSent         = "message.sent"
)

// Publisher emits domain events after a state change has been committed.
type Publisher interface {
	Publish(ctx context.Context, subject string, event any) error
}

// PostCreatedEvent announces a new home-feed post.
type PostCreatedEvent struct {
	PostID    int64  `json:"post_id"`
	AuthorID  int64  `json:"author_id"`
	Content   string `json:"content"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// PostReactedEvent announces a reaction change on a post.
type PostReactedEvent struct {
	PostID    int64  `json:"post_id"`
	UserID    int64  `json:"user_id"`
	Reaction  string `json:"reaction"`
	Outcome   string `json:"outcome"`
	Reactions int    `json:"reactions"`
	Timestamp string `json:"timestamp"`
}

// CommentAddedEvent announces a new comment on a post, reel or group post.
type CommentAddedEvent struct {
	TargetType string `json:"target_type"`
	TargetID   int64  `json:"target_id"`
	CommentID  int64  `json:"comment_id"`
	UserID     int64  `json:"user_id"`
	Timestamp  string `json:"timestamp"`
}

// UserFollowedEvent announces a new follow edge.
type UserFollowedEvent struct {
	FollowerID int64  `json:"follower_id"`
	FolloweeID int64  `json:"followee_id"`
	Timestamp  string `json:"timestamp"`
}

// NotificationCreatedEvent mirrors a notification handed to its recipient.
type NotificationCreatedEvent struct {
	NotificationID int64  `json:"notification_id"`
	RecipientID    int64  `json:"recipient_id"`
	SenderID       int64  `json:"sender_id"`
	Type           string `json:"type"`
	Content        string `json:"content"`
	Timestamp      string `json:"timestamp"`
}

// ReelReadyEvent announces the outcome of a reel upload.
type ReelReadyEvent struct {
	ReelID    int64  `json:"reel_id"`
	Status    string `json:"status"`
	VideoURL  string `json:"video_url,omitempty"`
	Timestamp string `json:"timestamp"`
}

// MessageSentEvent announces a direct message.
type MessageSentEvent struct {
	MessageID  int64  `json:"message_id"`
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id"`
	Timestamp  string `json:"timestamp"`
}

// Timestamp formats t the way every event carries it.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// Nop discards every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, string, any) error { return nil }
