package store

import (
	"sync"

	"github.com/unera/backend/internal/models"
)

// State is the full set of normalized collections. Collections are never modified in place:
// a transition builds new slices and the store swaps the whole State at once.
type State struct {
	Users         []models.User
	Posts         []models.Post
	Stories       []models.Story
	Reels         []models.Reel
	Events        []models.Event
	Groups        []models.Group
	Products      []models.Product
	Messages      []models.Message
	Notifications []models.Notification
}

// Transition computes the next state from the current one. Returning an error aborts the swap.
type Transition func(State) (State, error)

// Store holds the application state and serializes transitions.
type Store struct {
	mu    sync.RWMutex
	state State
	seq   *Sequence
}

// New constructs a Store seeded with initial. The id sequence is advanced past every id found
// in the seed so that new entities never collide with loaded ones.
func New(initial State) *Store {
	seq := NewSequence()
	observeAll(seq, initial)
	return &Store{state: initial, seq: seq}
}

// NextID returns a fresh process-unique identifier.
func (s *Store) NextID() int64 {
	return s.seq.Next()
}

// Sequence exposes the id generator shared by the engines.
func (s *Store) Sequence() *Sequence {
	return s.seq
}

// Snapshot returns the current state. Callers must treat the collections as read-only.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Update applies fn atomically. When fn fails the state is left untouched.
func (s *Store) Update(fn Transition) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.state)
	if err != nil {
		return s.state, err
	}
	s.state = next
	return next, nil
}

// Users lists every user.
func (s *Store) Users() []models.User { return s.Snapshot().Users }

// Posts lists every post.
func (s *Store) Posts() []models.Post { return s.Snapshot().Posts }

// Stories lists every story.
func (s *Store) Stories() []models.Story { return s.Snapshot().Stories }

// Reels lists every reel.
func (s *Store) Reels() []models.Reel { return s.Snapshot().Reels }

// Events lists every event.
func (s *Store) Events() []models.Event { return s.Snapshot().Events }

// Groups lists every group.
func (s *Store) Groups() []models.Group { return s.Snapshot().Groups }

// Products lists every marketplace listing.
func (s *Store) Products() []models.Product { return s.Snapshot().Products }

// Messages lists every direct message.
func (s *Store) Messages() []models.Message { return s.Snapshot().Messages }

// Notifications lists every notification.
func (s *Store) Notifications() []models.Notification { return s.Snapshot().Notifications }

// User looks up a user by id.
func (s *Store) User(id int64) (models.User, bool) { return Find(s.Users(), id, UserKey) }

// Post looks up a post by id.
func (s *Store) Post(id int64) (models.Post, bool) { return Find(s.Posts(), id, PostKey) }

// Reel looks up a reel by id.
func (s *Store) Reel(id int64) (models.Reel, bool) { return Find(s.Reels(), id, ReelKey) }

// Event looks up an event by id.
func (s *Store) Event(id int64) (models.Event, bool) { return Find(s.Events(), id, EventKey) }

// Group looks up a group by id.
func (s *Store) Group(id int64) (models.Group, bool) { return Find(s.Groups(), id, GroupKey) }

// Product looks up a listing by id.
func (s *Store) Product(id int64) (models.Product, bool) {
	return Find(s.Products(), id, ProductKey)
}

// ReplaceUsers swaps the user collection.
func (s *Store) ReplaceUsers(users []models.User) {
	s.replace(func(st *State) { st.Users = users })
	for _, u := range users {
		s.seq.Observe(u.ID)
	}
}

// ReplacePosts swaps the post collection.
func (s *Store) ReplacePosts(posts []models.Post) { s.replace(func(st *State) { st.Posts = posts }) }

// ReplaceStories swaps the story collection.
func (s *Store) ReplaceStories(stories []models.Story) {
	s.replace(func(st *State) { st.Stories = stories })
}

// ReplaceReels swaps the reel collection.
func (s *Store) ReplaceReels(reels []models.Reel) { s.replace(func(st *State) { st.Reels = reels }) }

// ReplaceEvents swaps the event collection.
func (s *Store) ReplaceEvents(events []models.Event) {
	s.replace(func(st *State) { st.Events = events })
}

// ReplaceGroups swaps the group collection.
func (s *Store) ReplaceGroups(groups []models.Group) {
	s.replace(func(st *State) { st.Groups = groups })
}

// ReplaceProducts swaps the marketplace collection.
func (s *Store) ReplaceProducts(products []models.Product) {
	s.replace(func(st *State) { st.Products = products })
}

// ReplaceMessages swaps the message collection.
func (s *Store) ReplaceMessages(messages []models.Message) {
	s.replace(func(st *State) { st.Messages = messages })
}

// ReplaceNotifications swaps the notification collection.
func (s *Store) ReplaceNotifications(notifications []models.Notification) {
	s.replace(func(st *State) { st.Notifications = notifications })
}

func (s *Store) replace(set func(*State)) {
	s.mu.Lock()
	next := s.state
	set(&next)
	s.state = next
	s.mu.Unlock()
}

func observeAll(seq *Sequence, st State) {
	for _, u := range st.Users {
		seq.Observe(u.ID)
	}
	for _, p := range st.Posts {
		seq.Observe(p.ID)
		for _, c := range p.Comments {
			seq.Observe(c.ID)
		}
	}
	for _, s := range st.Stories {
		seq.Observe(s.ID)
	}
	for _, r := range st.Reels {
		seq.Observe(r.ID)
		for _, c := range r.Comments {
			seq.Observe(c.ID)
		}
	}
	for _, e := range st.Events {
		seq.Observe(e.ID)
	}
	for _, g := range st.Groups {
		seq.Observe(g.ID)
		for _, p := range g.Posts {
			seq.Observe(p.ID)
		}
	}
	for _, p := range st.Products {
		seq.Observe(p.ID)
	}
	for _, m := range st.Messages {
		seq.Observe(m.ID)
	}
	for _, n := range st.Notifications {
		seq.Observe(n.ID)
	}
}
