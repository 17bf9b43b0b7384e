package feed

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/unera/backend/internal/graph"
	"github.com/unera/backend/internal/models"
	"github.com/unera/backend/internal/store"
)

// DefaultStoryTTL is how long a story stays visible after it was posted.
const DefaultStoryTTL = 24 * time.Hour

// AllFilter disables a marketplace facet.
const AllFilter = "all"

// PostView is a post joined with its author and, for shares, the original post.
type PostView struct {
	models.Post
	Author models.User `json:"author"`
	Shared *PostView   `json:"sharedPost,omitempty"`
}

// GroupPostView is a group post joined with its author.
type GroupPostView struct {
	models.GroupPost
	Author models.User `json:"author"`
}

// ProductView is a listing joined with its seller.
type ProductView struct {
	models.Product
	Seller models.User `json:"seller"`
}

// ReelView is a reel joined with its author.
type ReelView struct {
	models.Reel
	Author models.User `json:"author"`
}

// StoryView is a story joined with its author.
type StoryView struct {
	models.Story
	Author models.User `json:"author"`
}

// EventView is an event joined with its organizer.
type EventView struct {
	models.Event
	Organizer models.User `json:"organizer"`
}

// Filter narrows the marketplace listing.
type Filter struct {
	Country  string `json:"country"`
	Category string `json:"category"`
	Query    string `json:"query"`
}

type roster map[int64]models.User

func index(users []models.User) roster {
	r := make(roster, len(users))
	for _, u := range users {
		r[u.ID] = u.Public()
	}
	return r
}

// CanView reports whether viewer may see post. A nil viewer is an anonymous reader.
func CanView(post models.Post, author models.User, viewer *models.User) bool {
	switch post.Visibility {
	case models.VisibilityPublic, "":
		return true
	case models.VisibilityFriends:
		if viewer == nil {
			return false
		}
		return viewer.ID == author.ID || graph.Connected(*viewer, author)
	case models.VisibilityOnlyMe:
		return viewer != nil && viewer.ID == post.AuthorID
	}
	return false
}

// Home composes the home feed for viewer, newest first. Posts whose author or shared original
// no longer resolves are dropped.
func Home(posts []models.Post, users []models.User, viewer *models.User) []PostView {
	people := index(users)
	byID := make(map[int64]models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}

	out := make([]PostView, 0, len(posts))
	for _, p := range posts {
		view, ok := joinPost(p, people, byID, viewer)
		if ok {
			out = append(out, view)
		}
	}
	sortNewest(out, func(v PostView) (time.Time, int64) { return v.CreatedAt, v.ID })
	return out
}

// Profile composes the posts authored by ownerID as seen by viewer.
func Profile(posts []models.Post, users []models.User, ownerID int64, viewer *models.User) []PostView {
	owned := make([]models.Post, 0)
	for _, p := range posts {
		if p.AuthorID == ownerID {
			owned = append(owned, p)
		}
	}
	people := index(users)
	byID := make(map[int64]models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}

	out := make([]PostView, 0, len(owned))
	for _, p := range owned {
		view, ok := joinPost(p, people, byID, viewer)
		if ok {
			out = append(out, view)
		}
	}
	sortNewest(out, func(v PostView) (time.Time, int64) { return v.CreatedAt, v.ID })
	return out
}

func joinPost(p models.Post, people roster, byID map[int64]models.Post, viewer *models.User) (PostView, bool) {
	author, ok := people[p.AuthorID]
	if !ok || !CanView(p, author, viewer) {
		return PostView{}, false
	}
	view := PostView{Post: p, Author: author}
	if p.SharedPostID == 0 {
		return view, true
	}

	original, ok := byID[p.SharedPostID]
	if !ok {
		return PostView{}, false
	}
	originalAuthor, ok := people[original.AuthorID]
	if !ok || !CanView(original, originalAuthor, viewer) {
		return PostView{}, false
	}
	view.Shared = &PostView{Post: original, Author: originalAuthor}
	return view, true
}

// Group composes a group's posts, newest first, with their authors.
func Group(group models.Group, users []models.User) []GroupPostView {
	people := index(users)
	out := make([]GroupPostView, 0, len(group.Posts))
	for _, p := range group.Posts {
		author, ok := people[p.AuthorID]
		if !ok {
			continue
		}
		out = append(out, GroupPostView{GroupPost: p, Author: author})
	}
	sortNewest(out, func(v GroupPostView) (time.Time, int64) { return v.CreatedAt, v.ID })
	return out
}

// Marketplace lists the products matching f, newest first. Country and category are exact
// matches disabled by "" or "all"; the query is a case-insensitive title substring.
func Marketplace(products []models.Product, users []models.User, f Filter) []ProductView {
	people := index(users)
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]ProductView, 0)
	for _, p := range products {
		if active(f.Country) && !strings.EqualFold(p.Country, f.Country) {
			continue
		}
		if active(f.Category) && p.Category != f.Category {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Title), query) {
			continue
		}
		seller, ok := people[p.SellerID]
		if !ok {
			continue
		}
		out = append(out, ProductView{Product: p, Seller: seller})
	}
	sortNewest(out, func(v ProductView) (time.Time, int64) { return v.CreatedAt, v.ID })
	return out
}

func active(facet string) bool {
	facet = strings.TrimSpace(facet)
	return facet != "" && !strings.EqualFold(facet, AllFilter)
}

// Reels lists reels newest first with their authors. Reels still being ingested are hidden.
func Reels(reels []models.Reel, users []models.User) []ReelView {
	people := index(users)
	out := make([]ReelView, 0, len(reels))
	for _, r := range reels {
		if r.AssetStatus == models.AssetStatusPending || r.AssetStatus == models.AssetStatusFailed {
			continue
		}
		author, ok := people[r.UserID]
		if !ok {
			continue
		}
		out = append(out, ReelView{Reel: r, Author: author})
	}
	sortNewest(out, func(v ReelView) (time.Time, int64) { return v.CreatedAt, v.ID })
	return out
}

// Stories lists the stories posted within ttl of now, newest first.
func Stories(stories []models.Story, users []models.User, now time.Time, ttl time.Duration) []StoryView {
	if ttl <= 0 {
		ttl = DefaultStoryTTL
	}
	people := index(users)
	cutoff := now.Add(-ttl)
	out := make([]StoryView, 0, len(stories))
	for _, s := range stories {
		if !s.CreatedAt.After(cutoff) {
			continue
		}
		author, ok := people[s.UserID]
		if !ok {
			continue
		}
		out = append(out, StoryView{Story: s, Author: author})
	}
	sortNewest(out, func(v StoryView) (time.Time, int64) { return v.CreatedAt, v.ID })
	return out
}

// Events lists events in date order with their organizers.
func Events(events []models.Event, users []models.User) []EventView {
	people := index(users)
	out := make([]EventView, 0, len(events))
	for _, e := range events {
		organizer, ok := people[e.OrganizerID]
		if !ok {
			continue
		}
		out = append(out, EventView{Event: e, Organizer: organizer})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Date+" "+out[i].Time, out[j].Date+" "+out[j].Time
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Attending reports whether userID attends the event. The organizer always attends.
func Attending(e models.Event, userID int64) bool {
	return e.OrganizerID == userID || slices.Contains(e.Attendees, userID)
}

// Page returns the window [offset, offset+limit) of items. A non-positive limit returns the rest.
func Page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func sortNewest[T any](items []T, key func(T) (time.Time, int64)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return idi > idj
	})
}

// Lookup resolves a single post into its feed view for viewer.
func Lookup(st store.State, postID int64, viewer *models.User) (PostView, bool) {
	post, ok := store.Find(st.Posts, postID, store.PostKey)
	if !ok {
		return PostView{}, false
	}
	byID := make(map[int64]models.Post, len(st.Posts))
	for _, p := range st.Posts {
		byID[p.ID] = p
	}
	return joinPost(post, index(st.Users), byID, viewer)
}
