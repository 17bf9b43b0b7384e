package graph

import (
	"slices"

	"github.com/unera/backend/internal/models"
)

// Follow records that sourceID follows targetID. Both sides of the edge are written so
// target.Followers and source.Following stay complementary. The returned flag is false when
// the edge already existed. A self-follow is rejected and leaves users unchanged.
func Follow(users []models.User, sourceID, targetID int64) ([]models.User, bool, error) {
	if sourceID == targetID {
		return users, false, ErrSelfFollow
	}
	si, ti := indexOf(users, sourceID), indexOf(users, targetID)
	if si < 0 || ti < 0 {
		return users, false, ErrUserNotFound
	}

	source, target := users[si], users[ti]
	changed := false
	if !slices.Contains(source.Following, targetID) {
		source.Following = append(slices.Clone(source.Following), targetID)
		changed = true
	}
	if !slices.Contains(target.Followers, sourceID) {
		target.Followers = append(slices.Clone(target.Followers), sourceID)
		changed = true
	}
	if !changed {
		return users, false, nil
	}

	out := slices.Clone(users)
	out[si], out[ti] = source, target
	return out, true, nil
}

// Unfollow removes the edge created by Follow. Removing a missing edge is a no-op.
func Unfollow(users []models.User, sourceID, targetID int64) ([]models.User, bool, error) {
	if sourceID == targetID {
		return users, false, ErrSelfFollow
	}
	si, ti := indexOf(users, sourceID), indexOf(users, targetID)
	if si < 0 || ti < 0 {
		return users, false, ErrUserNotFound
	}

	source, target := users[si], users[ti]
	if !slices.Contains(source.Following, targetID) && !slices.Contains(target.Followers, sourceID) {
		return users, false, nil
	}
	source.Following = without(source.Following, targetID)
	target.Followers = without(target.Followers, sourceID)

	out := slices.Clone(users)
	out[si], out[ti] = source, target
	return out, true, nil
}

// IsFollowing reports whether source follows targetID.
func IsFollowing(source models.User, targetID int64) bool {
	return slices.Contains(source.Following, targetID)
}

// Connected reports whether either user follows the other.
func Connected(a, b models.User) bool {
	return slices.Contains(a.Following, b.ID) || slices.Contains(b.Following, a.ID)
}

// MutualConnections counts the accounts both users follow.
func MutualConnections(a, b models.User) int {
	count := 0
	for _, id := range a.Following {
		if id != a.ID && id != b.ID && slices.Contains(b.Following, id) {
			count++
		}
	}
	return count
}

// Contacts lists the users connected to user in either direction, in roster order.
func Contacts(user models.User, all []models.User) []models.User {
	var out []models.User
	for _, u := range all {
		if u.ID == user.ID {
			continue
		}
		if Connected(user, u) {
			out = append(out, u.Public())
		}
	}
	return out
}

func indexOf(users []models.User, id int64) int {
	return slices.IndexFunc(users, func(u models.User) bool { return u.ID == id })
}

func without(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
