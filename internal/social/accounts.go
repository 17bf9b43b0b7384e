package social

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/unera/backend/internal/graph"
	"github.com/unera/backend/internal/logging"
	"github.com/unera/backend/internal/media"
	"github.com/unera/backend/internal/messaging"
	"github.com/unera/backend/internal/models"
	"github.com/unera/backend/internal/notify"
	"github.com/unera/backend/internal/session"
	"github.com/unera/backend/internal/store"
)

const defaultAvatar = "https://i.pravatar.cc/150?u="

// Register creates an account and returns its public view.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (user models.User, err error) {
	ctx, span := logging.StartSpan(ctx, "social.register")
	defer span.End()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return models.User{}, span.Fail(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return models.User{}, span.Fail(fmt.Errorf("hash password: %w", err))
	}

	err = s.submit(0, "register:"+req.Email, func() error {
		_, err := s.store.Update(func(st store.State) (store.State, error) {
			for _, u := range st.Users {
				if strings.EqualFold(u.Email, req.Email) {
					return st, ErrEmailTaken
				}
			}
			id := s.store.NextID()
			user = models.User{
				ID:           id,
				Name:         req.FirstName + " " + req.LastName,
				FirstName:    req.FirstName,
				LastName:     req.LastName,
				Email:        req.Email,
				PasswordHash: string(hash),
				BirthDate:    req.BirthDate,
				Gender:       req.Gender,
				Nationality:  req.Nationality,
				Location:     req.Location,
				Phone:        req.Phone,
				ProfileImage: fmt.Sprintf("%s%d", defaultAvatar, id),
				Followers:    []int64{},
				Following:    []int64{},
				Role:         models.RoleUser,
				IsOnline:     true,
			}
			st.Users = store.Append(st.Users, user)
			return st, nil
		})
		if err != nil {
			return err
		}
		s.saveRoster(ctx)
		return nil
	})
	if err != nil {
		return models.User{}, span.Fail(fmt.Errorf("register user: %w", err))
	}
	return user.Public(), nil
}

// Authenticate resolves an email/password pair to the matching account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	_, span := logging.StartSpan(ctx, "social.authenticate")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.store.Users() {
		if !strings.EqualFold(u.Email, email) || u.PasswordHash == "" {
			continue
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
			return models.User{}, span.Fail(ErrInvalidCredentials)
		}
		return u.Public(), nil
	}
	return models.User{}, span.Fail(ErrInvalidCredentials)
}

// User looks up the public view of a user.
func (s *Service) User(id int64) (models.User, bool) {
	u, ok := s.store.User(id)
	if !ok {
		return models.User{}, false
	}
	return u.Public(), true
}

// Users lists the public view of every user.
func (s *Service) Users() []models.User {
	return publicAll(s.store.Users())
}

// Follow makes the actor follow targetID and notifies the target on a new edge.
func (s *Service) Follow(ctx context.Context, actor session.Authenticated, targetID int64) (models.User, error) {
	ctx, span := logging.StartSpan(ctx, "social.follow")
	defer span.End()

	var (
		created bool
		n       *models.Notification
	)
	next, err := s.store.Update(func(st store.State) (store.State, error) {
		users, changed, err := graph.Follow(st.Users, actor.UserID(), targetID)
		if err != nil {
			return st, err
		}
		created = changed
		if !changed {
			return st, nil
		}
		st.Users = users
		st.Notifications, n = s.notifier.Notify(st.Notifications, notify.Draft{
			RecipientID: targetID,
			SenderID:    actor.UserID(),
			Type:        models.NotificationFollow,
			Content:     "started following you",
		})
		return st, nil
	})
	if err != nil {
		return models.User{}, span.Fail(fmt.Errorf("follow user: %w", err))
	}

	if created {
		s.saveRoster(ctx)
		s.publish(ctx, messaging.SubjectUserFollowed, messaging.UserFollowedEvent{
			FollowerID: actor.UserID(),
			FolloweeID: targetID,
			Timestamp:  messaging.Timestamp(s.now()),
		})
		s.publishNotification(ctx, n)
	}
	me, _ := store.Find(next.Users, actor.UserID(), store.UserKey)
	return me.Public(), nil
}

// Unfollow removes the actor's follow edge to targetID.
func (s *Service) Unfollow(ctx context.Context, actor session.Authenticated, targetID int64) (models.User, error) {
	ctx, span := logging.StartSpan(ctx, "social.unfollow")
	defer span.End()

	var removed bool
	next, err := s.store.Update(func(st store.State) (store.State, error) {
		users, changed, err := graph.Unfollow(st.Users, actor.UserID(), targetID)
		if err != nil {
			return st, err
		}
		removed = changed
		st.Users = users
		return st, nil
	})
	if err != nil {
		return models.User{}, span.Fail(fmt.Errorf("unfollow user: %w", err))
	}
	if removed {
		s.saveRoster(ctx)
	}
	me, _ := store.Find(next.Users, actor.UserID(), store.UserKey)
	return me.Public(), nil
}

// Suggestions ranks users the actor might want to follow.
func (s *Service) Suggestions(actor session.Authenticated) ([]graph.Suggestion, error) {
	users := s.store.Users()
	me, ok := store.Find(users, actor.UserID(), store.UserKey)
	if !ok {
		return nil, ErrUserNotFound
	}
	suggestions := graph.SuggestProfiles(me, users)
	for i := range suggestions {
		suggestions[i].User = suggestions[i].User.Public()
	}
	return suggestions, nil
}

// Search ranks accounts against a free-text query. Signed-in viewers also get credit for
// shared followers and never see themselves.
func (s *Service) Search(sess session.Session, query string) []graph.SearchResult {
	st := s.store.Snapshot()
	return graph.Search(st.Users, viewerOf(st, sess), query)
}

// Birthdays lists the actor's connections celebrating today.
func (s *Service) Birthdays(actor session.Authenticated) ([]models.User, error) {
	users := s.store.Users()
	me, ok := store.Find(users, actor.UserID(), store.UserKey)
	if !ok {
		return nil, ErrUserNotFound
	}
	return graph.Birthdays(me, users, s.now()), nil
}

// Contacts lists the users the actor follows or is followed by.
func (s *Service) Contacts(actor session.Authenticated) ([]models.User, error) {
	users := s.store.Users()
	me, ok := store.Find(users, actor.UserID(), store.UserKey)
	if !ok {
		return nil, ErrUserNotFound
	}
	return graph.Contacts(me, users), nil
}

// UpdateProfile applies editable profile details to the actor.
func (s *Service) UpdateProfile(ctx context.Context, actor session.Authenticated, update models.ProfileUpdate) (models.User, error) {
	ctx, span := logging.StartSpan(ctx, "social.update_profile")
	defer span.End()

	if err := update.Validate(); err != nil {
		return models.User{}, span.Fail(err)
	}
	user, err := s.updateUser(ctx, actor.UserID(), update.Apply)
	if err != nil {
		return models.User{}, span.Fail(fmt.Errorf("update profile: %w", err))
	}
	return user, nil
}

// UpdateProfileImage uploads a new avatar for the actor.
func (s *Service) UpdateProfileImage(ctx context.Context, actor session.Authenticated, name string, r io.Reader) (models.User, error) {
	return s.updateImage(ctx, actor, "avatars", name, r, func(u models.User, url string) models.User {
		u.ProfileImage = url
		return u
	})
}

// UpdateCoverImage uploads a new cover photo for the actor.
func (s *Service) UpdateCoverImage(ctx context.Context, actor session.Authenticated, name string, r io.Reader) (models.User, error) {
	return s.updateImage(ctx, actor, "covers", name, r, func(u models.User, url string) models.User {
		u.CoverImage = url
		return u
	})
}

func (s *Service) updateImage(ctx context.Context, actor session.Authenticated, prefix, name string, r io.Reader, set func(models.User, string) models.User) (models.User, error) {
	ctx, span := logging.StartSpan(ctx, "social.update_"+strings.TrimSuffix(prefix, "s"))
	defer span.End()

	if r == nil {
		return models.User{}, span.Fail(ErrUploadRequired)
	}
	if _, ok := s.store.User(actor.UserID()); !ok {
		return models.User{}, span.Fail(ErrUserNotFound)
	}
	url, err := media.Upload(ctx, s.media, prefix, name, r)
	if err != nil {
		return models.User{}, span.Fail(fmt.Errorf("upload %s: %w", prefix, err))
	}
	user, err := s.updateUser(ctx, actor.UserID(), func(u models.User) models.User { return set(u, url) })
	if err != nil {
		return models.User{}, span.Fail(err)
	}
	return user, nil
}

func (s *Service) updateUser(ctx context.Context, id int64, fn func(models.User) models.User) (models.User, error) {
	var updated models.User
	_, err := s.store.Update(func(st store.State) (store.State, error) {
		u, err := requireUser(st, id)
		if err != nil {
			return st, err
		}
		updated = fn(u)
		updated.ID, updated.Followers, updated.Following = u.ID, u.Followers, u.Following
		users, _ := store.Replace(st.Users, updated, store.UserKey)
		st.Users = users
		return st, nil
	})
	if err != nil {
		return models.User{}, err
	}
	s.saveRoster(ctx)
	return updated.Public(), nil
}

// IsNotFound reports whether err stems from a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound) || errors.Is(err, graph.ErrUserNotFound)
}

func publicAll(users []models.User) []models.User {
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}
