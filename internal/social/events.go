package social

import (
	"context"
	"fmt"

	"github.com/unera/backend/internal/engagement"
	"github.com/unera/backend/internal/feed"
	"github.com/unera/backend/internal/logging"
	"github.com/unera/backend/internal/messaging"
	"github.com/unera/backend/internal/models"
	"github.com/unera/backend/internal/notify"
	"github.com/unera/backend/internal/session"
	"github.com/unera/backend/internal/store"
)

// CreateEvent schedules an event organized by the actor and announces it on the home feed.
func (s *Service) CreateEvent(ctx context.Context, actor session.Authenticated, req models.CreateEventRequest) (models.Event, error) {
	ctx, span := logging.StartSpan(ctx, "social.create_event")
	defer span.End()

	if err := req.Validate(); err != nil {
		return models.Event{}, span.Fail(err)
	}

	var (
		event        models.Event
		announcement models.Post
	)
	err := s.submit(actor.UserID(), "create_event", func() error {
		_, err := s.store.Update(func(st store.State) (store.State, error) {
			if _, err := requireUser(st, actor.UserID()); err != nil {
				return st, err
			}
			event = models.Event{
				ID:          s.store.NextID(),
				OrganizerID: actor.UserID(),
				Title:       req.Title,
				Description: req.Description,
				Date:        req.Date,
				Time:        req.Time,
				Location:    req.Location,
				Image:       req.Image,
				Attendees:   []int64{actor.UserID()},
			}
			st.Events = store.Append(st.Events, event)

			announcement = s.newPost(actor.UserID(), models.CreatePostRequest{
				Content:    fmt.Sprintf("I created a new event: %s", event.Title),
				Visibility: models.VisibilityPublic,
				EventID:    event.ID,
			})
			st.Posts = store.Prepend(st.Posts, announcement)
			return st, nil
		})
		return err
	})
	if err != nil {
		return models.Event{}, span.Fail(fmt.Errorf("create event: %w", err))
	}

	s.publish(ctx, messaging.SubjectPostCreated, messaging.PostCreatedEvent{
		PostID:    announcement.ID,
		AuthorID:  announcement.AuthorID,
		Content:   announcement.Content,
		Type:      string(announcement.Type),
		Timestamp: messaging.Timestamp(announcement.CreatedAt),
	})
	return event, nil
}

// JoinEvent marks the actor as attending. The flag is false when the actor already attended.
func (s *Service) JoinEvent(ctx context.Context, actor session.Authenticated, eventID int64) (models.Event, bool, error) {
	ctx, span := logging.StartSpan(ctx, "social.join_event")
	defer span.End()

	var (
		updated models.Event
		joined  bool
		n       *models.Notification
	)
	_, err := s.store.Update(func(st store.State) (store.State, error) {
		me, err := requireUser(st, actor.UserID())
		if err != nil {
			return st, err
		}
		event, ok := store.Find(st.Events, eventID, store.EventKey)
		if !ok {
			return st, ErrEventNotFound
		}
		updated = event
		if feed.Attending(event, me.ID) {
			return st, nil
		}
		event.Attendees, joined = engagement.AddMember(event.Attendees, me.ID)
		updated = event
		st.Events, _ = store.Replace(st.Events, event, store.EventKey)
		st.Notifications, n = s.notifier.Notify(st.Notifications, notify.Draft{
			RecipientID: event.OrganizerID,
			SenderID:    me.ID,
			Type:        models.NotificationEvent,
			Content:     fmt.Sprintf("is going to %s", event.Title),
		})
		return st, nil
	})
	if err != nil {
		return models.Event{}, false, span.Fail(fmt.Errorf("join event: %w", err))
	}
	s.publishNotification(ctx, n)
	return updated, joined, nil
}

// Events lists events in date order.
func (s *Service) Events() []feed.EventView {
	st := s.store.Snapshot()
	return feed.Events(st.Events, st.Users)
}
