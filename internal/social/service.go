package social

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/unera/backend/internal/guard"
	"github.com/unera/backend/internal/logging"
	"github.com/unera/backend/internal/media"
	"github.com/unera/backend/internal/messaging"
	"github.com/unera/backend/internal/models"
	"github.com/unera/backend/internal/notify"
	"github.com/unera/backend/internal/store"
)

// RosterWriter persists the user roster after it changed.
type RosterWriter interface {
	SaveUsers(ctx context.Context, users []models.User) error
}

// ReelIngestor stores reel videos asynchronously.
type ReelIngestor interface {
	Enqueue(ctx context.Context, job media.Job) error
}

// Deps groups the collaborators of a Service. Only Store is required.
type Deps struct {
	Store        *store.Store
	Roster       RosterWriter
	Media        media.Storage
	Ingestor     ReelIngestor
	Publisher    messaging.Publisher
	Guard        *guard.Guard
	Now          func() time.Time
	PasswordCost int
	StoryTTL     time.Duration
}

// Service applies user actions to the store and derives notifications and events from them.
type Service struct {
	store     *store.Store
	roster    RosterWriter
	media     media.Storage
	ingestor  ReelIngestor
	publisher messaging.Publisher
	guard     *guard.Guard
	notifier  *notify.Dispatcher
	now       func() time.Time
	cost      int
	storyTTL  time.Duration

	saveMu sync.Mutex
}

// New constructs a Service.
func New(deps Deps) *Service {
	if deps.Store == nil {
		panic("social: store is required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Publisher == nil {
		deps.Publisher = messaging.Nop{}
	}
	if deps.Guard == nil {
		deps.Guard = guard.New()
	}
	if deps.PasswordCost == 0 {
		deps.PasswordCost = bcrypt.DefaultCost
	}
	return &Service{
		store:     deps.Store,
		roster:    deps.Roster,
		media:     deps.Media,
		ingestor:  deps.Ingestor,
		publisher: deps.Publisher,
		guard:     deps.Guard,
		notifier:  notify.NewDispatcher(deps.Store.Sequence()).WithClock(deps.Now),
		now:       deps.Now,
		cost:      deps.PasswordCost,
		storyTTL:  deps.StoryTTL,
	}
}

// submit runs fn under the in-flight guard of (userID, action).
func (s *Service) submit(userID int64, action string, fn func() error) error {
	return s.guard.Do(fmt.Sprintf("%d:%s", userID, action), fn)
}

// saveRoster writes the user collection to persisted state. Saves are serialised and always
// write the store's current roster, so a slow save can never overwrite a newer one. Failures
// are logged and do not undo the committed transition.
func (s *Service) saveRoster(ctx context.Context) {
	if s.roster == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if err := s.roster.SaveUsers(ctx, s.store.Users()); err != nil {
		logging.FromContext(ctx).Error("persist user roster", slog.Any("error", err))
	}
}

func (s *Service) publish(ctx context.Context, subject string, event any) {
	if err := s.publisher.Publish(ctx, subject, event); err != nil {
		logging.FromContext(ctx).Warn("publish event", slog.String("subject", subject), slog.Any("error", err))
	}
}

func (s *Service) publishNotification(ctx context.Context, n *models.Notification) {
	if n == nil {
		return
	}
	s.publish(ctx, messaging.SubjectNotificationCreated, messaging.NotificationCreatedEvent{
		NotificationID: n.ID,
		RecipientID:    n.UserID,
		SenderID:       n.SenderID,
		Type:           string(n.Type),
		Content:        n.Content,
		Timestamp:      messaging.Timestamp(n.CreatedAt),
	})
}

func (s *Service) publishComment(ctx context.Context, target string, targetID int64, c models.Comment) {
	s.publish(ctx, messaging.SubjectCommentAdded, messaging.CommentAddedEvent{
		TargetType: target,
		TargetID:   targetID,
		CommentID:  c.ID,
		UserID:     c.UserID,
		Timestamp:  messaging.Timestamp(c.CreatedAt),
	})
}

func requireUser(st store.State, id int64) (models.User, error) {
	u, ok := store.Find(st.Users, id, store.UserKey)
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

// Snapshot exposes the current state for read-only views.
func (s *Service) Snapshot() store.State {
	return s.store.Snapshot()
}

// UseIngestor routes reel uploads through ingestor. The ingestor reports back through
// MarkReelReady and MarkReelFailed, so it is attached after construction.
func (s *Service) UseIngestor(ingestor ReelIngestor) {
	s.ingestor = ingestor
}
