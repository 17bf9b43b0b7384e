package social

import (
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

// UploadMedia stores a file attached to a post, comment or listing and returns its URL.
func (s *Service) UploadMedia(ctx context.Context, actor session.Authenticated, name string, r io.Reader) (string, error) {
	ctx, span := logging.StartSpan(ctx, "social.upload_media")
	defer span.End()

	if r == nil {
		return "", span.Fail(ErrUploadRequired)
	}
	url, err := media.Upload(ctx, s.media, fmt.Sprintf("uploads/%d", actor.UserID()), name, r)
	if err != nil {
		return "", span.Fail(fmt.Errorf("upload media: %w", err))
	}
	return url, nil
}

// CreatePost publishes a new post authored by the actor at the top of the home feed.
func (s *Service) CreatePost(ctx context.Context, actor session.Authenticated, req models.CreatePostRequest) (models.Post, error) {
	ctx, span := logging.StartSpan(ctx, "social.create_post")
	defer span.End()

	if err := req.Validate(); err != nil {
		return models.Post{}, span.Fail(err)
	}

	var post models.Post
	err := s.submit(actor.UserID(), "create_post", func() error {
		_, err := s.store.Update(func(st store.State) (store.State, error) {
			if _, err := requireUser(st, actor.UserID()); err != nil {
				return st, err
			}
			if req.EventID != 0 {
				if _, ok := store.Find(st.Events, req.EventID, store.EventKey); !ok {
					return st, ErrEventNotFound
				}
			}
			if req.ProductID != 0 {
				if _, ok := store.Find(st.Products, req.ProductID, store.ProductKey); !ok {
					return st, ErrProductNotFound
				}
			}
			post = s.newPost(actor.UserID(), req)
			st.Posts = store.Prepend(st.Posts, post)
			return st, nil
		})
		return err
	})
	if err != nil {
		return models.Post{}, span.Fail(fmt.Errorf("create post: %w", err))
	}

	s.publish(ctx, messaging.SubjectPostCreated, messaging.PostCreatedEvent{
		PostID:    post.ID,
		AuthorID:  post.AuthorID,
		Content:   post.Content,
		Type:      string(post.Type),
		Timestamp: messaging.Timestamp(post.CreatedAt),
	})
	return post, nil
}

func (s *Service) newPost(authorID int64, req models.CreatePostRequest) models.Post {
	post := models.Post{
		ID:          s.store.NextID(),
		AuthorID:    authorID,
		Content:     req.Content,
		Label:       models.JustNow,
		CreatedAt:   s.now(),
		Reactions:   []models.Reaction{},
		Comments:    []models.Comment{},
		Type:        req.Type(),
		Visibility:  req.Visibility,
		Location:    req.Location,
		Feeling:     req.Feeling,
		TaggedUsers: req.TaggedUsers,
		Background:  req.Background,
		EventID:     req.EventID,
		ProductID:   req.ProductID,
		LinkPreview: req.LinkPreview,
	}
	switch req.MediaKind {
	case models.MediaImage:
		post.Image = req.MediaURL
	case models.MediaVideo:
		post.Video = req.MediaURL
	}
	return post
}

// EditPost replaces the content and, when set, the visibility of the actor's post.
func (s *Service) EditPost(ctx context.Context, actor session.Authenticated, postID int64, content string, visibility models.Visibility) (models.Post, error) {
	_, span := logging.StartSpan(ctx, "social.edit_post")
	defer span.End()

	if visibility != "" && !visibility.Valid() {
		return models.Post{}, span.Fail(&models.ValidationError{Field: "visibility", Message: "must be Public, Friends or Only Me"})
	}
	content = strings.TrimSpace(content)

	var edited models.Post
	_, err := s.store.Update(func(st store.State) (store.State, error) {
		post, ok := store.Find(st.Posts, postID, store.PostKey)
		if !ok {
			return st, ErrPostNotFound
		}
		if post.AuthorID != actor.UserID() {
			return st, ErrForbidden
		}
		if content == "" && post.Image == "" && post.Video == "" && post.SharedPostID == 0 && post.LinkPreview == nil {
			return st, &models.ValidationError{Field: "content", Message: "post must not be empty"}
		}
		post.Content = content
		if visibility != "" {
			post.Visibility = visibility
		}
		edited = post
		st.Posts, _ = store.Replace(st.Posts, post, store.PostKey)
		return st, nil
	})
	if err != nil {
		return models.Post{}, span.Fail(fmt.Errorf("edit post: %w", err))
	}
	return edited, nil
}

// DeletePost removes a post. Authors may delete their own posts; admins and moderators may
// delete any post.
func (s *Service) DeletePost(ctx context.Context, actor session.Authenticated, postID int64) error {
	_, span := logging.StartSpan(ctx, "social.delete_post")
	defer span.End()

	_, err := s.store.Update(func(st store.State) (store.State, error) {
		post, ok := store.Find(st.Posts, postID, store.PostKey)
		if !ok {
			return st, ErrPostNotFound
		}
		me, err := requireUser(st, actor.UserID())
		if err != nil {
			return st, err
		}
		if post.AuthorID != me.ID && me.Role != models.RoleAdmin && me.Role != models.RoleModerator {
			return st, ErrForbidden
		}
		st.Posts, _ = store.Remove(st.Posts, postID, store.PostKey)
		return st, nil
	})
	if err != nil {
		return span.Fail(fmt.Errorf("delete post: %w", err))
	}
	return nil
}

// SharePost publishes a new post referencing postID and bumps the original's share counter.
// Sharing a share references the original post.
func (s *Service) SharePost(ctx context.Context, actor session.Authenticated, postID int64, content string, visibility models.Visibility) (models.Post, error) {
	ctx, span := logging.StartSpan(ctx, "social.share_post")
	defer span.End()

	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if !visibility.Valid() {
		return models.Post{}, span.Fail(&models.ValidationError{Field: "visibility", Message: "must be Public, Friends or Only Me"})
	}

	var (
		shared models.Post
		n      *models.Notification
	)
	err := s.submit(actor.UserID(), "share_post", func() error {
		_, err := s.store.Update(func(st store.State) (store.State, error) {
			me, err := requireUser(st, actor.UserID())
			if err != nil {
				return st, err
			}
			original, err := visiblePost(st, postID, &me)
			if err != nil {
				return st, err
			}
			if original.SharedPostID != 0 {
				if original, err = visiblePost(st, original.SharedPostID, &me); err != nil {
					return st, err
				}
			}
			original.Shares++
			st.Posts, _ = store.Replace(st.Posts, original, store.PostKey)

			shared = models.Post{
				ID:           s.store.NextID(),
				AuthorID:     me.ID,
				Content:      strings.TrimSpace(content),
				Label:        models.JustNow,
				CreatedAt:    s.now(),
				Reactions:    []models.Reaction{},
				Comments:     []models.Comment{},
				Type:         models.PostText,
				Visibility:   visibility,
				SharedPostID: original.ID,
			}
			st.Posts = store.Prepend(st.Posts, shared)
			st.Notifications, n = s.notifier.Notify(st.Notifications, notify.Draft{
				RecipientID: original.AuthorID,
				SenderID:    me.ID,
				Type:        models.NotificationShare,
				Content:     "shared your post",
				PostID:      original.ID,
			})
			return st, nil
		})
		return err
	})
	if err != nil {
		return models.Post{}, span.Fail(fmt.Errorf("share post: %w", err))
	}

	s.publish(ctx, messaging.SubjectPostCreated, messaging.PostCreatedEvent{
		PostID:    shared.ID,
		AuthorID:  shared.AuthorID,
		Content:   shared.Content,
		Type:      "share",
		Timestamp: messaging.Timestamp(shared.CreatedAt),
	})
	s.publishNotification(ctx, n)
	return shared, nil
}

// ReactToPost applies the actor's reaction to a post. Only a first reaction notifies the author.
func (s *Service) ReactToPost(ctx context.Context, actor session.Authenticated, postID int64, reaction models.ReactionType) (models.Post, engagement.Outcome, error) {
	ctx, span := logging.StartSpan(ctx, "social.react_post")
	defer span.End()

	var (
		updated models.Post
		outcome engagement.Outcome
		n       *models.Notification
	)
	_, err := s.store.Update(func(st store.State) (store.State, error) {
		me, err := requireUser(st, actor.UserID())
		if err != nil {
			return st, err
		}
		post, err := visiblePost(st, postID, &me)
		if err != nil {
			return st, err
		}
		post.Reactions, outcome, err = engagement.React(post.Reactions, me.ID, reaction)
		if err != nil {
			return st, err
		}
		updated = post
		st.Posts, _ = store.Replace(st.Posts, post, store.PostKey)
		if outcome == engagement.Added {
			st.Notifications, n = s.notifier.Notify(st.Notifications, notify.Draft{
				RecipientID: post.AuthorID,
				SenderID:    me.ID,
				Type:        models.NotificationReaction,
				Content:     fmt.Sprintf("reacted %s to your post", reaction),
				PostID:      post.ID,
			})
		}
		return st, nil
	})
	if err != nil {
		return models.Post{}, 0, span.Fail(fmt.Errorf("react to post: %w", err))
	}

	s.publish(ctx, messaging.SubjectPostReacted, messaging.PostReactedEvent{
		PostID:    updated.ID,
		UserID:    actor.UserID(),
		Reaction:  string(reaction),
		Outcome:   outcome.String(),
		Reactions: len(updated.Reactions),
		Timestamp: messaging.Timestamp(s.now()),
	})
	s.publishNotification(ctx, n)
	return updated, outcome, nil
}

// CommentOnPost appends the actor's comment to a post and notifies the author.
func (s *Service) CommentOnPost(ctx context.Context, actor session.Authenticated, postID int64, text string, attachment *models.Attachment) (models.Comment, error) {
	ctx, span := logging.StartSpan(ctx, "social.comment_post")
	defer span.End()

	var (
		comment models.Comment
		n       *models.Notification
	)
	err := s.submit(actor.UserID(), fmt.Sprintf("comment_post:%d", postID), func() error {
		_, err := s.store.Update(func(st store.State) (store.State, error) {
			me, err := requireUser(st, actor.UserID())
			if err != nil {
				return st, err
			}
			post, err := visiblePost(st, postID, &me)
			if err != nil {
				return st, err
			}
			comment, err = engagement.NewComment(s.store.NextID(), me.ID, text, attachment, s.now())
			if err != nil {
				return st, err
			}
			post.Comments = engagement.AppendComment(post.Comments, comment)
			st.Posts, _ = store.Replace(st.Posts, post, store.PostKey)
			st.Notifications, n = s.notifier.Notify(st.Notifications, notify.Draft{
				RecipientID: post.AuthorID,
				SenderID:    me.ID,
				Type:        models.NotificationComment,
				Content:     "commented on your post",
				PostID:      post.ID,
			})
			return st, nil
		})
		return err
	})
	if err != nil {
		return models.Comment{}, span.Fail(fmt.Errorf("comment on post: %w", err))
	}

	s.publishComment(ctx, "post", postID, comment)
	s.publishNotification(ctx, n)
	return comment, nil
}

// LikePostComment toggles the actor's like on a comment of a post. The flag reports whether the
// actor likes the comment afterwards.
func (s *Service) LikePostComment(ctx context.Context, actor session.Authenticated, postID, commentID int64) (models.Comment, bool, error) {
	ctx, span := logging.StartSpan(ctx, "social.like_comment")
	defer span.End()

	var (
		liked   bool
		comment models.Comment
		n       *models.Notification
	)
	_, err := s.store.Update(func(st store.State) (store.State, error) {
		me, err := requireUser(st, actor.UserID())
		if err != nil {
			return st, err
		}
		post, err := visiblePost(st, postID, &me)
		if err != nil {
			return st, err
		}
		post.Comments, liked, err = engagement.LikeComment(post.Comments, commentID, me.ID)
		if err != nil {
			return st, err
		}
		comment, _ = store.Find(post.Comments, commentID, func(c models.Comment) int64 { return c.ID })
		st.Posts, _ = store.Replace(st.Posts, post, store.PostKey)
		if liked {
			st.Notifications, n = s.notifier.Notify(st.Notifications, notify.Draft{
				RecipientID: comment.UserID,
				SenderID:    me.ID,
				Type:        models.NotificationLike,
				Content:     "liked your comment",
				PostID:      post.ID,
			})
		}
		return st, nil
	})
	if err != nil {
		return models.Comment{}, false, span.Fail(fmt.Errorf("like comment: %w", err))
	}
	s.publishNotification(ctx, n)
	return comment, liked, nil
}

// Post resolves a single post as seen by sess.
func (s *Service) Post(sess session.Session, postID int64) (feed.PostView, error) {
	st := s.store.Snapshot()
	view, ok := feed.Lookup(st, postID, viewerOf(st, sess))
	if !ok {
		return feed.PostView{}, ErrPostNotFound
	}
	return view, nil
}

// HomeFeed composes the home feed as seen by sess.
func (s *Service) HomeFeed(sess session.Session) []feed.PostView {
	st := s.store.Snapshot()
	return feed.Home(st.Posts, st.Users, viewerOf(st, sess))
}

// ProfileFeed composes the posts of ownerID as seen by sess.
func (s *Service) ProfileFeed(sess session.Session, ownerID int64) ([]feed.PostView, error) {
	st := s.store.Snapshot()
	if _, ok := store.Find(st.Users, ownerID, store.UserKey); !ok {
		return nil, ErrUserNotFound
	}
	return feed.Profile(st.Posts, st.Users, ownerID, viewerOf(st, sess)), nil
}

// visiblePost returns postID when its author resolves and viewer may see it. Hidden posts are
// reported as missing.
func visiblePost(st store.State, postID int64, viewer *models.User) (models.Post, error) {
	post, ok := store.Find(st.Posts, postID, store.PostKey)
	if !ok {
		return models.Post{}, ErrPostNotFound
	}
	author, ok := store.Find(st.Users, post.AuthorID, store.UserKey)
	if !ok || !feed.CanView(post, author, viewer) {
		return models.Post{}, ErrPostNotFound
	}
	return post, nil
}

func viewerOf(st store.State, sess session.Session) *models.User {
	actor, ok := session.As(sess)
	if !ok {
		return nil
	}
	u, ok := store.Find(st.Users, actor.UserID(), store.UserKey)
	if !ok {
		return nil
	}
	return &u
}
