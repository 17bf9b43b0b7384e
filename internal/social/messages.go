package social

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/unera/backend/internal/logging"
	"github.com/unera/backend/internal/messaging"
	"github.com/unera/backend/internal/models"
	"github.com/unera/backend/internal/notify"
	"github.com/unera/backend/internal/session"
	"github.com/unera/backend/internal/store"
)

// SendMessage delivers a direct message from the actor. A non-zero productID ties the message
// to a marketplace listing.
func (s *Service) SendMessage(ctx context.Context, actor session.Authenticated, receiverID int64, text string, productID int64) (models.Message, error) {
	ctx, span := logging.StartSpan(ctx, "social.send_message")
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, span.Fail(ErrEmptyMessage)
	}
	if receiverID == actor.UserID() {
		return models.Message{}, span.Fail(ErrMessageSelf)
	}

	var msg models.Message
	err := s.submit(actor.UserID(), fmt.Sprintf("message:%d", receiverID), func() error {
		_, err := s.store.Update(func(st store.State) (store.State, error) {
			if _, err := requireUser(st, actor.UserID()); err != nil {
				return st, err
			}
			if _, err := requireUser(st, receiverID); err != nil {
				return st, err
			}
			msg = models.Message{
				ID:         s.store.NextID(),
				SenderID:   actor.UserID(),
				ReceiverID: receiverID,
				Text:       text,
				CreatedAt:  s.now(),
			}
			if productID != 0 {
				p, ok := store.Find(st.Products, productID, store.ProductKey)
				if !ok {
					return st, ErrProductNotFound
				}
				msg.ProductID, msg.ProductTitle = p.ID, p.Title
			}
			st.Messages = store.Append(st.Messages, msg)
			return st, nil
		})
		return err
	})
	if err != nil {
		return models.Message{}, span.Fail(fmt.Errorf("send message: %w", err))
	}

	s.publish(ctx, messaging.SubjectMessageSent, messaging.MessageSentEvent{
		MessageID:  msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Timestamp:  messaging.Timestamp(msg.CreatedAt),
	})
	return msg, nil
}

// Conversation lists the messages exchanged between the actor and otherID, oldest first.
func (s *Service) Conversation(actor session.Authenticated, otherID int64) []models.Message {
	me := actor.UserID()
	out := make([]models.Message, 0)
	for _, m := range s.store.Messages() {
		if (m.SenderID == me && m.ReceiverID == otherID) || (m.SenderID == otherID && m.ReceiverID == me) {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Message) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Notifications lists the actor's notifications, newest first.
func (s *Service) Notifications(actor session.Authenticated) []models.Notification {
	return notify.ForUser(s.store.Notifications(), actor.UserID())
}

// UnreadCount reports how many of the actor's notifications are unread.
func (s *Service) UnreadCount(actor session.Authenticated) int {
	return notify.UnreadCount(s.store.Notifications(), actor.UserID())
}

// MarkAllRead marks every notification of the actor as read and reports how many changed.
func (s *Service) MarkAllRead(ctx context.Context, actor session.Authenticated) int {
	_, span := logging.StartSpan(ctx, "social.mark_all_read")
	defer span.End()

	var changed int
	_, _ = s.store.Update(func(st store.State) (store.State, error) {
		st.Notifications, changed = notify.MarkAllRead(st.Notifications, actor.UserID())
		return st, nil
	})
	return changed
}

// MarkNotificationRead marks a single notification of the actor as read.
func (s *Service) MarkNotificationRead(ctx context.Context, actor session.Authenticated, id int64) error {
	_, span := logging.StartSpan(ctx, "social.mark_notification_read")
	defer span.End()

	_, err := s.store.Update(func(st store.State) (store.State, error) {
		next, err := notify.MarkRead(st.Notifications, actor.UserID(), id)
		if err != nil {
			return st, err
		}
		st.Notifications = next
		return st, nil
	})
	if err != nil {
		return span.Fail(fmt.Errorf("mark notification read: %w", err))
	}
	return nil
}
