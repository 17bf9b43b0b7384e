package store

import "github.com/unera/backend/internal/models"

// Key extracts the identifier of a collection element.
type Key[T any] func(T) int64

// UserKey keys users by id.
func UserKey(u models.User) int64 { return u.ID }

// PostKey keys feed posts by id.
func PostKey(p models.Post) int64 { return p.ID }

// StoryKey keys stories by id.
func StoryKey(s models.Story) int64 { return s.ID }

// ReelKey keys reels by id.
func ReelKey(r models.Reel) int64 { return r.ID }

// EventKey keys events by id.
func EventKey(e models.Event) int64 { return e.ID }

// GroupKey keys groups by id.
func GroupKey(g models.Group) int64 { return g.ID }

// ProductKey keys marketplace listings by id.
func ProductKey(p models.Product) int64 { return p.ID }

// MessageKey keys direct messages by id.
func MessageKey(m models.Message) int64 { return m.ID }

// NotificationKey keys notifications by id.
func NotificationKey(n models.Notification) int64 { return n.ID }

// Find returns the element with the given id.
func Find[T any](items []T, id int64, key Key[T]) (T, bool) {
	for _, item := range items {
		if key(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Replace returns a copy of items with the element sharing next's id swapped for next.
// The input slice is not modified.
func Replace[T any](items []T, next T, key Key[T]) ([]T, bool) {
	id := key(next)
	for i, item := range items {
		if key(item) == id {
			out := make([]T, len(items))
			copy(out, items)
			out[i] = next
			return out, true
		}
	}
	return items, false
}

// Remove returns a copy of items without the element carrying id.
func Remove[T any](items []T, id int64, key Key[T]) ([]T, bool) {
	out := make([]T, 0, len(items))
	found := false
	for _, item := range items {
		if key(item) == id {
			found = true
			continue
		}
		out = append(out, item)
	}
	if !found {
		return items, false
	}
	return out, true
}

// Prepend returns a new slice with item in front of items.
func Prepend[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, item)
	return append(out, items...)
}

// Append returns a new slice with item after items.
func Append[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, items...)
	return append(out, item)
}
