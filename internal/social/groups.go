package social

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/unera/backend/internal/engagement"
	"github.com/unera/backend/internal/feed"
	"github.com/unera/backend/internal/logging"
	"github.com/unera/backend/internal/messaging"
	"github.com/unera/backend/internal/models"
	"github.com/unera/backend/internal/notify"
	"github.com/unera/backend/internal/session"
	"github.com/unera/backend/internal/store"
)

// CreateGroup creates a group administered by the actor and announces it on the home feed.
func (s *Service) CreateGroup(ctx context.Context, actor session.Authenticated, req models.CreateGroupRequest) (models.Group, error) {
	ctx, span := logging.StartSpan(ctx, "social.create_group")
	defer span.End()

	if err := req.Validate(); err != nil {
		return models.Group{}, span.Fail(err)
	}

	var (
		group        models.Group
		announcement models.Post
	)
	err := s.submit(actor.UserID(), "create_group", func() error {
		_, err := s.store.Update(func(st store.State) (store.State, error) {
			if _, err := requireUser(st, actor.UserID()); err != nil {
				return st, err
			}
			group = models.Group{
				ID:          s.store.NextID(),
				Name:        req.Name,
				Description: strings.TrimSpace(req.Description),
				Type:        req.Type,
				Image:       req.Image,
				CoverImage:  req.CoverImage,
				AdminID:     actor.UserID(),
				Members:     []int64{actor.UserID()},
				Posts:       []models.GroupPost{},
				CreatedAt:   s.now(),
			}
			st.Groups = store.Prepend(st.Groups, group)

			announcement = s.newPost(actor.UserID(), models.CreatePostRequest{
				Content:    fmt.Sprintf("I created a new group: %s", group.Name),
				Visibility: models.VisibilityPublic,
			})
			st.Posts = store.Prepend(st.Posts, announcement)
			return st, nil
		})
		return err
	})
	if err != nil {
		return models.Group{}, span.Fail(fmt.Errorf("create group: %w", err))
	}

	s.publish(ctx, messaging.SubjectPostCreated, messaging.PostCreatedEvent{
		PostID:    announcement.ID,
		AuthorID:  announcement.AuthorID,
		Content:   announcement.Content,
		Type:      string(announcement.Type),
		Timestamp: messaging.Timestamp(announcement.CreatedAt),
	})
	return group, nil
}

// JoinGroup adds the actor to a group. Joining twice is a no-op.
func (s *Service) JoinGroup(ctx context.Context, actor session.Authenticated, groupID int64) (models.Group, error) {
	_, span := logging.StartSpan(ctx, "social.join_group")
	defer span.End()

	group, err := s.updateGroup(groupID, func(st store.State, g models.Group) (models.Group, error) {
		if _, err := requireUser(st, actor.UserID()); err != nil {
			return g, err
		}
		if g.HasMember(actor.UserID()) {
			return g, nil
		}
		g.Members, _ = engagement.AddMember(g.Members, actor.UserID())
		return g, nil
	})
	if err != nil {
		return models.Group{}, span.Fail(fmt.Errorf("join group: %w", err))
	}
	return group, nil
}

// LeaveGroup removes the actor from a group. The admin cannot leave their own group.
func (s *Service) LeaveGroup(ctx context.Context, actor session.Authenticated, groupID int64) (models.Group, error) {
	_, span := logging.StartSpan(ctx, "social.leave_group")
	defer span.End()

	group, err := s.updateGroup(groupID, func(_ store.State, g models.Group) (models.Group, error) {
		if g.AdminID == actor.UserID() {
			return g, ErrForbidden
		}
		g.Members = slices.DeleteFunc(slices.Clone(g.Members), func(id int64) bool { return id == actor.UserID() })
		return g, nil
	})
	if err != nil {
		return models.Group{}, span.Fail(fmt.Errorf("leave group: %w", err))
	}
	return group, nil
}

// PostToGroup publishes a post inside a group. Only members may post.
func (s *Service) PostToGroup(ctx context.Context, actor session.Authenticated, groupID int64, content, image string) (models.GroupPost, error) {
	_, span := logging.StartSpan(ctx, "social.post_to_group")
	defer span.End()

	content, image = strings.TrimSpace(content), strings.TrimSpace(image)
	if content == "" && image == "" {
		return models.GroupPost{}, span.Fail(&models.ValidationError{Field: "content", Message: "post must not be empty"})
	}

	var post models.GroupPost
	err := s.submit(actor.UserID(), fmt.Sprintf("group_post:%d", groupID), func() error {
		_, err := s.updateGroup(groupID, func(st store.State, g models.Group) (models.Group, error) {
			if _, err := requireUser(st, actor.UserID()); err != nil {
				return g, err
			}
			if !g.HasMember(actor.UserID()) {
				return g, ErrForbidden
			}
			post = models.GroupPost{
				ID:        s.store.NextID(),
				AuthorID:  actor.UserID(),
				Content:   content,
				Image:     image,
				CreatedAt: s.now(),
				Likes:     []int64{},
				Comments:  []models.Comment{},
			}
			g.Posts = store.Prepend(g.Posts, post)
			return g, nil
		})
		return err
	})
	if err != nil {
		return models.GroupPost{}, span.Fail(fmt.Errorf("post to group: %w", err))
	}
	return post, nil
}

// LikeGroupPost toggles the actor's like on a group post. The flag reports whether the actor
// likes the post afterwards.
func (s *Service) LikeGroupPost(ctx context.Context, actor session.Authenticated, groupID, postID int64) (models.GroupPost, bool, error) {
	ctx, span := logging.StartSpan(ctx, "social.like_group_post")
	defer span.End()

	var (
		updated models.GroupPost
		liked   bool
		n       *models.Notification
	)
	_, err := s.store.Update(func(st store.State) (store.State, error) {
		group, post, err := groupPost(st, groupID, postID)
		if err != nil {
			return st, err
		}
		post.Likes, liked = engagement.ToggleMember(post.Likes, actor.UserID())
		updated = post
		group.Posts, _ = store.Replace(group.Posts, post, groupPostKey)
		st.Groups, _ = store.Replace(st.Groups, group, store.GroupKey)
		if liked {
			st.Notifications, n = s.notifier.Notify(st.Notifications, notify.Draft{
				RecipientID: post.AuthorID,
				SenderID:    actor.UserID(),
				Type:        models.NotificationLike,
				Content:     fmt.Sprintf("liked your post in %s", group.Name),
			})
		}
		return st, nil
	})
	if err != nil {
		return models.GroupPost{}, false, span.Fail(fmt.Errorf("like group post: %w", err))
	}
	s.publishNotification(ctx, n)
	return updated, liked, nil
}

// CommentOnGroupPost appends the actor's comment to a group post.
func (s *Service) CommentOnGroupPost(ctx context.Context, actor session.Authenticated, groupID, postID int64, text string, attachment *models.Attachment) (models.Comment, error) {
	ctx, span := logging.StartSpan(ctx, "social.comment_group_post")
	defer span.End()

	var (
		comment models.Comment
		n       *models.Notification
	)
	_, err := s.store.Update(func(st store.State) (store.State, error) {
		if _, err := requireUser(st, actor.UserID()); err != nil {
			return st, err
		}
		group, post, err := groupPost(st, groupID, postID)
		if err != nil {
			return st, err
		}
		comment, err = engagement.NewComment(s.store.NextID(), actor.UserID(), text, attachment, s.now())
		if err != nil {
			return st, err
		}
		post.Comments = engagement.AppendComment(post.Comments, comment)
		group.Posts, _ = store.Replace(group.Posts, post, groupPostKey)
		st.Groups, _ = store.Replace(st.Groups, group, store.GroupKey)
		st.Notifications, n = s.notifier.Notify(st.Notifications, notify.Draft{
			RecipientID: post.AuthorID,
			SenderID:    actor.UserID(),
			Type:        models.NotificationComment,
			Content:     fmt.Sprintf("commented on your post in %s", group.Name),
		})
		return st, nil
	})
	if err != nil {
		return models.Comment{}, span.Fail(fmt.Errorf("comment on group post: %w", err))
	}
	s.publishComment(ctx, "group_post", postID, comment)
	s.publishNotification(ctx, n)
	return comment, nil
}

// Groups lists every group, newest first.
func (s *Service) Groups() []models.Group {
	groups := slices.Clone(s.store.Groups())
	slices.SortStableFunc(groups, func(a, b models.Group) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return groups
}

// Group looks up a group.
func (s *Service) Group(groupID int64) (models.Group, error) {
	g, ok := s.store.Group(groupID)
	if !ok {
		return models.Group{}, ErrGroupNotFound
	}
	return g, nil
}

// GroupFeed composes the posts of a group.
func (s *Service) GroupFeed(groupID int64) ([]feed.GroupPostView, error) {
	st := s.store.Snapshot()
	g, ok := store.Find(st.Groups, groupID, store.GroupKey)
	if !ok {
		return nil, ErrGroupNotFound
	}
	return feed.Group(g, st.Users), nil
}

func (s *Service) updateGroup(groupID int64, fn func(store.State, models.Group) (models.Group, error)) (models.Group, error) {
	var updated models.Group
	_, err := s.store.Update(func(st store.State) (store.State, error) {
		g, ok := store.Find(st.Groups, groupID, store.GroupKey)
		if !ok {
			return st, ErrGroupNotFound
		}
		next, err := fn(st, g)
		if err != nil {
			return st, err
		}
		updated = next
		st.Groups, _ = store.Replace(st.Groups, next, store.GroupKey)
		return st, nil
	})
	return updated, err
}

func groupPostKey(p models.GroupPost) int64 { return p.ID }

func groupPost(st store.State, groupID, postID int64) (models.Group, models.GroupPost, error) {
	g, ok := store.Find(st.Groups, groupID, store.GroupKey)
	if !ok {
		return models.Group{}, models.GroupPost{}, ErrGroupNotFound
	}
	p, ok := store.Find(g.Posts, postID, groupPostKey)
	if !ok {
		return models.Group{}, models.GroupPost{}, ErrPostNotFound
	}
	return g, p, nil
}
