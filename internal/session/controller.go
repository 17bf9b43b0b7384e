package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/unera/backend/internal/logging"
	"github.com/unera/backend/internal/models"
	"github.com/unera/backend/internal/persist"
	"github.com/unera/backend/internal/schedule"
)

// ErrUnauthenticated indicates an action that needs a signed-in user.
var ErrUnauthenticated = errors.New("sign in required")

// Authenticator checks credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (models.User, error)
}

// Roster resolves users by id.
type Roster interface {
	User(id int64) (models.User, bool)
}

// StateStore persists the signed-in user.
type StateStore interface {
	CurrentUser(ctx context.Context) (models.User, error)
	SaveCurrentUser(ctx context.Context, user models.User) error
	ClearCurrentUser(ctx context.Context) error
}

// Controller owns the session, the active screen, the modal stack and the audio player of a
// single client.
type Controller struct {
	mu sync.Mutex

	session      Session
	screen       Screen
	modals       []ModalEntry
	loginError   string
	selectedUser int64
	track        *models.AudioTrack
	playing      bool

	state  StateStore
	roster Roster
	timers *schedule.Scheduler
}

// NewController constructs a Controller in the loading state.
func NewController(state StateStore, roster Roster, timers *schedule.Scheduler) *Controller {
	if timers == nil {
		timers = schedule.New()
	}
	return &Controller{
		session: Anonymous{},
		screen:  Screen{Name: ScreenLoading},
		state:   state,
		roster:  roster,
		timers:  timers,
	}
}

// Restore resumes the persisted session. Missing, corrupt or stale data yields the login screen.
func (c *Controller) Restore(ctx context.Context) Session {
	logger := logging.FromContext(ctx)

	stored, err := c.state.CurrentUser(ctx)
	if err != nil {
		if !errors.Is(err, persist.ErrNotFound) {
			logger.Warn("discarding persisted session", slog.Any("error", err))
			c.clearPersisted(ctx)
		}
		return c.signedOut()
	}

	fresh, ok := c.roster.User(stored.ID)
	if !ok {
		logger.Warn("persisted user no longer exists", slog.Int64("user_id", stored.ID))
		c.clearPersisted(ctx)
		return c.signedOut()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = Authenticated{User: fresh.Public()}
	c.screen = Screen{Name: ScreenHome}
	return c.session
}

func (c *Controller) signedOut() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = Anonymous{}
	c.screen = Screen{Name: ScreenLogin}
	return c.session
}

// Login authenticates the credentials. A failure keeps the login screen with an error message
// that stays until the next submit.
func (c *Controller) Login(ctx context.Context, authenticator Authenticator, email, password string) error {
	c.mu.Lock()
	c.loginError = ""
	c.mu.Unlock()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return c.failLogin(errors.New("email and password are required"))
	}

	user, err := authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return c.failLogin(err)
	}
	return c.SignIn(ctx, user)
}

func (c *Controller) failLogin(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loginError = err.Error()
	c.screen = Screen{Name: ScreenLogin}
	return err
}

// SignIn starts an authenticated session for user and persists it.
func (c *Controller) SignIn(ctx context.Context, user models.User) error {
	c.mu.Lock()
	c.session = Authenticated{User: user.Public()}
	c.screen = Screen{Name: ScreenHome}
	c.loginError = ""
	c.mu.Unlock()

	if err := c.state.SaveCurrentUser(ctx, user); err != nil {
		logging.FromContext(ctx).Error("persist current user", slog.Any("error", err))
		return err
	}
	return nil
}

// Logout ends the session and resets everything scoped to it.
func (c *Controller) Logout(ctx context.Context) {
	c.timers.CancelAll()

	c.mu.Lock()
	c.session = Anonymous{}
	c.screen = Screen{Name: ScreenLogin}
	c.modals = nil
	c.loginError = ""
	c.selectedUser = 0
	c.track = nil
	c.playing = false
	c.mu.Unlock()

	c.clearPersisted(ctx)
}

func (c *Controller) clearPersisted(ctx context.Context) {
	if err := c.state.ClearCurrentUser(ctx); err != nil {
		logging.FromContext(ctx).Error("clear persisted user", slog.Any("error", err))
	}
}

// Refresh replaces the signed-in user's copy after the roster changed and persists it.
func (c *Controller) Refresh(ctx context.Context, user models.User) error {
	c.mu.Lock()
	current, ok := c.session.(Authenticated)
	if !ok || current.User.ID != user.ID {
		c.mu.Unlock()
		return nil
	}
	c.session = Authenticated{User: user.Public()}
	c.mu.Unlock()
	return c.state.SaveCurrentUser(ctx, user)
}

// Current returns the session.
func (c *Controller) Current() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// RequireUser returns the authenticated session or ErrUnauthenticated.
func (c *Controller) RequireUser() (Authenticated, error) {
	a, ok := As(c.Current())
	if !ok {
		return Authenticated{}, ErrUnauthenticated
	}
	return a, nil
}

// Screen returns the active screen.
func (c *Controller) Screen() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen
}

// LoginError returns the message of the last failed login.
func (c *Controller) LoginError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginError
}

// Navigate switches to name. Destinations that need a signed-in user redirect anonymous sessions
// to the login screen. Navigating closes the full menu.
func (c *Controller) Navigate(name ScreenName) Screen {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeLocked(ModalFullMenu)
	if name == ScreenProfile {
		if a, ok := c.session.(Authenticated); ok {
			c.selectedUser = a.User.ID
			c.screen = Screen{Name: ScreenProfile, UserID: a.User.ID}
			return c.screen
		}
	}
	c.screen = c.guardLocked(Screen{Name: name})
	return c.screen
}

// ViewProfile opens the profile of userID.
func (c *Controller) ViewProfile(userID int64) Screen {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeLocked(ModalFullMenu)
	c.screen = c.guardLocked(Screen{Name: ScreenProfile, UserID: userID})
	if c.screen.Name == ScreenProfile {
		c.selectedUser = userID
	}
	return c.screen
}

// SelectedUser returns the user whose profile was last opened.
func (c *Controller) SelectedUser() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedUser
}

func (c *Controller) guardLocked(next Screen) Screen {
	if !next.Name.RequiresAuth() {
		return next
	}
	if _, ok := c.session.(Authenticated); !ok {
		return Screen{Name: ScreenLogin}
	}
	return next
}

// OpenModal pushes entry onto the modal stack. An already open modal of the same kind is
// brought to the top with the new target.
func (c *Controller) OpenModal(entry ModalEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry.Modal.RequiresAuth() {
		if _, ok := c.session.(Authenticated); !ok {
			c.screen = Screen{Name: ScreenLogin}
			return ErrUnauthenticated
		}
	}
	c.closeLocked(entry.Modal)
	c.modals = append(c.modals, entry)
	return nil
}

// CloseModal closes the modal of the given kind.
func (c *Controller) CloseModal(m Modal) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked(m)
}

// CloseTop closes the topmost modal.
func (c *Controller) CloseTop() (ModalEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.modals) == 0 {
		return ModalEntry{}, false
	}
	top := c.modals[len(c.modals)-1]
	c.modals = c.modals[:len(c.modals)-1]
	return top, true
}

func (c *Controller) closeLocked(m Modal) bool {
	for i := len(c.modals) - 1; i >= 0; i-- {
		if c.modals[i].Modal == m {
			next := make([]ModalEntry, 0, len(c.modals)-1)
			next = append(next, c.modals[:i]...)
			c.modals = append(next, c.modals[i+1:]...)
			return true
		}
	}
	return false
}

// TopModal returns the modal that receives input.
func (c *Controller) TopModal() (ModalEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.modals) == 0 {
		return ModalEntry{}, false
	}
	return c.modals[len(c.modals)-1], true
}

// Modals returns the open modals, bottom first.
func (c *Controller) Modals() []ModalEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ModalEntry, len(c.modals))
	copy(out, c.modals)
	return out
}

// PlayTrack hands track to the audio player. Playing the current track again toggles it.
func (c *Controller) PlayTrack(track models.AudioTrack) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.track != nil && c.track.ID == track.ID {
		c.playing = !c.playing
		return
	}
	t := track
	c.track = &t
	c.playing = true
}

// TogglePlay pauses or resumes the current track.
func (c *Controller) TogglePlay() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.track == nil {
		return false
	}
	c.playing = !c.playing
	return c.playing
}

// NowPlaying returns the current track and whether it is playing.
func (c *Controller) NowPlaying() (models.AudioTrack, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.track == nil {
		return models.AudioTrack{}, false, false
	}
	return *c.track, c.playing, true
}

// Schedule runs fn after delay unless the session ends first. Scheduling again under key
// replaces the pending action.
func (c *Controller) Schedule(key string, delay time.Duration, fn func()) bool {
	return c.timers.Schedule(key, delay, fn)
}
