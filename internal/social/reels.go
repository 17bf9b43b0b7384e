package social

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/unera/backend/internal/engagement"
	"github.com/unera/backend/internal/feed"
	"github.com/unera/backend/internal/logging"
	"github.com/unera/backend/internal/media"
	"github.com/unera/backend/internal/messaging"
	"github.com/unera/backend/internal/models"
	"github.com/unera/backend/internal/notify"
	"github.com/unera/backend/internal/session"
	"github.com/unera/backend/internal/store"
)

const reelViewsCeiling = 50000

// ReelViews is the view count shown for a reel that has no tracked views.
func ReelViews(id int64) int {
	return engagement.DerivedStat(id, "reel-views", reelViewsCeiling)
}

// CreateReel records a new reel and hands its video to the ingestor. The reel stays hidden from
// the reels feed until the upload completes.
func (s *Service) CreateReel(ctx context.Context, actor session.Authenticated, req models.CreateReelRequest, video io.Reader) (models.Reel, error) {
	ctx, span := logging.StartSpan(ctx, "social.create_reel")
	defer span.End()

	if err := req.Validate(); err != nil {
		return models.Reel{}, span.Fail(err)
	}
	if video == nil {
		return models.Reel{}, span.Fail(ErrUploadRequired)
	}
	content, err := io.ReadAll(video)
	if err != nil {
		return models.Reel{}, span.Fail(fmt.Errorf("read reel video: %w", err))
	}
	if len(content) == 0 {
		return models.Reel{}, span.Fail(ErrUploadRequired)
	}

	var reel models.Reel
	err = s.submit(actor.UserID(), "create_reel", func() error {
		_, err := s.store.Update(func(st store.State) (store.State, error) {
			if _, err := requireUser(st, actor.UserID()); err != nil {
				return st, err
			}
			id := s.store.NextID()
			reel = models.Reel{
				ID:          id,
				UserID:      actor.UserID(),
				Caption:     req.Caption,
				SongName:    req.SongName,
				EffectName:  req.EffectName,
				Reactions:   []models.Reaction{},
				Comments:    []models.Comment{},
				Views:       ReelViews(id),
				AssetStatus: models.AssetStatusPending,
				CreatedAt:   s.now(),
			}
			st.Reels = store.Prepend(st.Reels, reel)
			return st, nil
		})
		return err
	})
	if err != nil {
		return models.Reel{}, span.Fail(fmt.Errorf("create reel: %w", err))
	}

	if s.ingestor == nil {
		url, err := media.Upload(ctx, s.media, fmt.Sprintf("reels/%d", reel.ID), req.FileName, bytes.NewReader(content))
		if err != nil {
			_ = s.MarkReelFailed(ctx, reel.ID)
			return models.Reel{}, span.Fail(fmt.Errorf("store reel video: %w", err))
		}
		if err := s.MarkReelReady(ctx, reel.ID, url); err != nil {
			return models.Reel{}, span.Fail(err)
		}
		reel.VideoURL, reel.AssetStatus = url, models.AssetStatusReady
		return reel, nil
	}

	if err := s.ingestor.Enqueue(ctx, media.Job{ReelID: reel.ID, FileName: req.FileName, Content: content}); err != nil {
		_ = s.MarkReelFailed(ctx, reel.ID)
		return models.Reel{}, span.Fail(fmt.Errorf("enqueue reel video: %w", err))
	}
	return reel, nil
}

// MarkReelReady publishes a reel once its video is stored.
func (s *Service) MarkReelReady(ctx context.Context, reelID int64, videoURL string) error {
	if strings.TrimSpace(videoURL) == "" {
		return fmt.Errorf("mark reel ready: empty video url")
	}
	if err := s.setReelAsset(reelID, videoURL, models.AssetStatusReady); err != nil {
		return err
	}
	s.publish(ctx, messaging.SubjectReelReady, messaging.ReelReadyEvent{
		ReelID:    reelID,
		Status:    models.AssetStatusReady,
		VideoURL:  videoURL,
		Timestamp: messaging.Timestamp(s.now()),
	})
	return nil
}

// MarkReelFailed records that a reel's video could not be stored.
func (s *Service) MarkReelFailed(ctx context.Context, reelID int64) error {
	if err := s.setReelAsset(reelID, "", models.AssetStatusFailed); err != nil {
		return err
	}
	logging.FromContext(ctx).Warn("reel upload failed", "reelId", reelID)
	s.publish(ctx, messaging.SubjectReelReady, messaging.ReelReadyEvent{
		ReelID:    reelID,
		Status:    models.AssetStatusFailed,
		Timestamp: messaging.Timestamp(s.now()),
	})
	return nil
}

func (s *Service) setReelAsset(reelID int64, videoURL, status string) error {
	_, err := s.store.Update(func(st store.State) (store.State, error) {
		reel, ok := store.Find(st.Reels, reelID, store.ReelKey)
		if !ok {
			return st, ErrReelNotFound
		}
		reel.AssetStatus = status
		if videoURL != "" {
			reel.VideoURL = videoURL
		}
		st.Reels, _ = store.Replace(st.Reels, reel, store.ReelKey)
		return st, nil
	})
	if err != nil {
		return fmt.Errorf("mark reel %s: %w", status, err)
	}
	return nil
}

// ReactToReel applies the actor's reaction to a reel.
func (s *Service) ReactToReel(ctx context.Context, actor session.Authenticated, reelID int64, reaction models.ReactionType) (models.Reel, engagement.Outcome, error) {
	ctx, span := logging.StartSpan(ctx, "social.react_reel")
	defer span.End()

	var (
		updated models.Reel
		outcome engagement.Outcome
		n       *models.Notification
	)
	_, err := s.store.Update(func(st store.State) (store.State, error) {
		if _, err := requireUser(st, actor.UserID()); err != nil {
			return st, err
		}
		reel, ok := store.Find(st.Reels, reelID, store.ReelKey)
		if !ok {
			return st, ErrReelNotFound
		}
		var err error
		reel.Reactions, outcome, err = engagement.React(reel.Reactions, actor.UserID(), reaction)
		if err != nil {
			return st, err
		}
		updated = reel
		st.Reels, _ = store.Replace(st.Reels, reel, store.ReelKey)
		if outcome == engagement.Added {
			st.Notifications, n = s.notifier.Notify(st.Notifications, notify.Draft{
				RecipientID: reel.UserID,
				SenderID:    actor.UserID(),
				Type:        models.NotificationReaction,
				Content:     fmt.Sprintf("reacted %s to your reel", reaction),
				ReelID:      reel.ID,
			})
		}
		return st, nil
	})
	if err != nil {
		return models.Reel{}, 0, span.Fail(fmt.Errorf("react to reel: %w", err))
	}
	s.publishNotification(ctx, n)
	return updated, outcome, nil
}

// CommentOnReel appends the actor's comment to a reel.
func (s *Service) CommentOnReel(ctx context.Context, actor session.Authenticated, reelID int64, text string, attachment *models.Attachment) (models.Comment, error) {
	ctx, span := logging.StartSpan(ctx, "social.comment_reel")
	defer span.End()

	var (
		comment models.Comment
		n       *models.Notification
	)
	err := s.submit(actor.UserID(), fmt.Sprintf("comment_reel:%d", reelID), func() error {
		_, err := s.store.Update(func(st store.State) (store.State, error) {
			if _, err := requireUser(st, actor.UserID()); err != nil {
				return st, err
			}
			reel, ok := store.Find(st.Reels, reelID, store.ReelKey)
			if !ok {
				return st, ErrReelNotFound
			}
			var err error
			comment, err = engagement.NewComment(s.store.NextID(), actor.UserID(), text, attachment, s.now())
			if err != nil {
				return st, err
			}
			reel.Comments = engagement.AppendComment(reel.Comments, comment)
			st.Reels, _ = store.Replace(st.Reels, reel, store.ReelKey)
			st.Notifications, n = s.notifier.Notify(st.Notifications, notify.Draft{
				RecipientID: reel.UserID,
				SenderID:    actor.UserID(),
				Type:        models.NotificationComment,
				Content:     "commented on your reel",
				ReelID:      reel.ID,
			})
			return st, nil
		})
		return err
	})
	if err != nil {
		return models.Comment{}, span.Fail(fmt.Errorf("comment on reel: %w", err))
	}
	s.publishComment(ctx, "reel", reelID, comment)
	s.publishNotification(ctx, n)
	return comment, nil
}

// ShareReel bumps the share counter of a reel and notifies its author.
func (s *Service) ShareReel(ctx context.Context, actor session.Authenticated, reelID int64) (models.Reel, error) {
	ctx, span := logging.StartSpan(ctx, "social.share_reel")
	defer span.End()

	var (
		updated models.Reel
		n       *models.Notification
	)
	_, err := s.store.Update(func(st store.State) (store.State, error) {
		if _, err := requireUser(st, actor.UserID()); err != nil {
			return st, err
		}
		reel, ok := store.Find(st.Reels, reelID, store.ReelKey)
		if !ok {
			return st, ErrReelNotFound
		}
		reel.Shares++
		updated = reel
		st.Reels, _ = store.Replace(st.Reels, reel, store.ReelKey)
		st.Notifications, n = s.notifier.Notify(st.Notifications, notify.Draft{
			RecipientID: reel.UserID,
			SenderID:    actor.UserID(),
			Type:        models.NotificationShare,
			Content:     "shared your reel",
			ReelID:      reel.ID,
		})
		return st, nil
	})
	if err != nil {
		return models.Reel{}, span.Fail(fmt.Errorf("share reel: %w", err))
	}
	s.publishNotification(ctx, n)
	return updated, nil
}

// Reel looks up a single reel with its author.
func (s *Service) Reel(reelID int64) (feed.ReelView, error) {
	st := s.store.Snapshot()
	reel, ok := store.Find(st.Reels, reelID, store.ReelKey)
	if !ok {
		return feed.ReelView{}, ErrReelNotFound
	}
	author, ok := store.Find(st.Users, reel.UserID, store.UserKey)
	if !ok {
		return feed.ReelView{}, ErrReelNotFound
	}
	return feed.ReelView{Reel: reel, Author: author.Public()}, nil
}

// ReelsFeed returns a window of the reels feed.
func (s *Service) ReelsFeed(offset, limit int) []feed.ReelView {
	st := s.store.Snapshot()
	return feed.Page(feed.Reels(st.Reels, st.Users), offset, limit)
}

// CreateStory posts a story image for the actor.
func (s *Service) CreateStory(ctx context.Context, actor session.Authenticated, image string) (models.Story, error) {
	_, span := logging.StartSpan(ctx, "social.create_story")
	defer span.End()

	image = strings.TrimSpace(image)
	if image == "" {
		return models.Story{}, span.Fail(&models.ValidationError{Field: "image", Message: "is required"})
	}

	var story models.Story
	err := s.submit(actor.UserID(), "create_story", func() error {
		_, err := s.store.Update(func(st store.State) (store.State, error) {
			if _, err := requireUser(st, actor.UserID()); err != nil {
				return st, err
			}
			story = models.Story{ID: s.store.NextID(), UserID: actor.UserID(), Image: image, CreatedAt: s.now()}
			st.Stories = store.Prepend(st.Stories, story)
			return st, nil
		})
		return err
	})
	if err != nil {
		return models.Story{}, span.Fail(fmt.Errorf("create story: %w", err))
	}
	return story, nil
}

// Stories lists the stories that have not expired yet.
func (s *Service) Stories() []feed.StoryView {
	st := s.store.Snapshot()
	return feed.Stories(st.Stories, st.Users, s.now(), s.storyTTL)
}

var _ media.ReelAssetUpdater = (*Service)(nil)
