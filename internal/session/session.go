package session

import "github.com/unera/backend/internal/models"

// Session is either Anonymous or Authenticated.
type Session interface {
	isSession()
}

// Anonymous is the signed-out session.
type Anonymous struct{}

// Authenticated is the session of a signed-in user.
type Authenticated struct {
	User models.User
}

func (Anonymous) isSession()     {}
func (Authenticated) isSession() {}

// UserID returns the signed-in user's id.
func (a Authenticated) UserID() int64 { return a.User.ID }

// As returns the authenticated variant of s.
func As(s Session) (Authenticated, bool) {
	a, ok := s.(Authenticated)
	return a, ok
}

// ScreenName identifies a top-level view.
type ScreenName string

const (
	ScreenLoading           ScreenName = "loading"
	ScreenLogin             ScreenName = "login"
	ScreenRegister          ScreenName = "register"
	ScreenHome              ScreenName = "home"
	ScreenProfile           ScreenName = "profile"
	ScreenMarketplace       ScreenName = "marketplace"
	ScreenReels             ScreenName = "reels"
	ScreenGroups            ScreenName = "groups"
	ScreenMusic             ScreenName = "music"
	ScreenEvents            ScreenName = "events"
	ScreenBirthdays         ScreenName = "birthdays"
	ScreenSuggestedProfiles ScreenName = "suggested-profiles"
)

// RequiresAuth reports whether the screen is only reachable by a signed-in user.
func (n ScreenName) RequiresAuth() bool {
	switch n {
	case ScreenProfile, ScreenGroups, ScreenEvents, ScreenBirthdays, ScreenSuggestedProfiles:
		return true
	}
	return false
}

// Screen is the active view. UserID is set for the profile screen.
type Screen struct {
	Name   ScreenName `json:"name"`
	UserID int64      `json:"userId,omitempty"`
}

// Modal identifies an overlay.
type Modal string

const (
	ModalCreatePost  Modal = "create-post"
	ModalCreateEvent Modal = "create-event"
	ModalCreateReel  Modal = "create-reel"
	ModalComments    Modal = "comments"
	ModalShare       Modal = "share"
	ModalChat        Modal = "chat"
	ModalImageViewer Modal = "image-viewer"
	ModalFullMenu    Modal = "full-menu"
)

// RequiresAuth reports whether the modal acts on behalf of a signed-in user.
func (m Modal) RequiresAuth() bool {
	return m != ModalImageViewer && m != ModalFullMenu
}

// ModalEntry is an open overlay with the entity it targets.
type ModalEntry struct {
	Modal  Modal  `json:"modal"`
	PostID int64  `json:"postId,omitempty"`
	ReelID int64  `json:"reelId,omitempty"`
	UserID int64  `json:"userId,omitempty"`
	Image  string `json:"image,omitempty"`
}
