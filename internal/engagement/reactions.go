package engagement

import (
	"hash/fnv"
	"slices"
	"strconv"

	"github.com/unera/backend/internal/models"
)

// Outcome reports what React did to the reaction list.
type Outcome int

const (
	// Added means the user had no reaction and one was appended.
	Added Outcome = iota + 1
	// Removed means the user repeated their reaction type, toggling it off.
	Removed
	// Replaced means the user switched to a different reaction type.
	Replaced
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Replaced:
		return "replaced"
	}
	return "unknown"
}

// React applies userID's reaction of type t to reactions and returns a new list. A user holds at
// most one reaction per target: reacting again with the same type removes it and reacting with a
// different type replaces it in place.
func React(reactions []models.Reaction, userID int64, t models.ReactionType) ([]models.Reaction, Outcome, error) {
	if !t.Valid() {
		return reactions, 0, ErrInvalidReaction
	}

	idx := slices.IndexFunc(reactions, func(r models.Reaction) bool { return r.UserID == userID })
	if idx < 0 {
		out := make([]models.Reaction, 0, len(reactions)+1)
		out = append(out, reactions...)
		return append(out, models.Reaction{UserID: userID, Type: t}), Added, nil
	}

	if reactions[idx].Type == t {
		out := make([]models.Reaction, 0, len(reactions)-1)
		out = append(out, reactions[:idx]...)
		return append(out, reactions[idx+1:]...), Removed, nil
	}

	out := slices.Clone(reactions)
	out[idx].Type = t
	return out, Replaced, nil
}

// ReactionOf returns userID's current reaction, if any.
func ReactionOf(reactions []models.Reaction, userID int64) (models.ReactionType, bool) {
	for _, r := range reactions {
		if r.UserID == userID {
			return r.Type, true
		}
	}
	return "", false
}

// Summary counts reactions per type.
func Summary(reactions []models.Reaction) map[models.ReactionType]int {
	out := make(map[models.ReactionType]int)
	for _, r := range reactions {
		out[r.Type]++
	}
	return out
}

// ToggleMember adds userID to set when absent and removes it otherwise. The returned flag is
// true when userID is a member after the call.
func ToggleMember(set []int64, userID int64) ([]int64, bool) {
	if slices.Contains(set, userID) {
		out := make([]int64, 0, len(set))
		for _, id := range set {
			if id != userID {
				out = append(out, id)
			}
		}
		return out, false
	}
	out := make([]int64, 0, len(set)+1)
	out = append(out, set...)
	return append(out, userID), true
}

// AddMember adds userID to set when absent.
func AddMember(set []int64, userID int64) ([]int64, bool) {
	if slices.Contains(set, userID) {
		return set, false
	}
	out := make([]int64, 0, len(set)+1)
	out = append(out, set...)
	return append(out, userID), true
}

// DerivedStat returns a stable pseudo-random engagement figure in [0, ceiling) for an entity id.
// It is computed once at creation so repeated reads show the same number.
func DerivedStat(id int64, salt string, ceiling int) int {
	if ceiling <= 0 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(salt))
	_, _ = h.Write([]byte(strconv.FormatInt(id, 10)))
	return int(h.Sum32() % uint32(ceiling))
}
