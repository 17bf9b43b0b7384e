package graph

import (
	"slices"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/unera/backend/internal/models"
)

// Signal weights used when ranking suggested profiles.
const (
	WeightSchool   = 20
	WeightCity     = 15
	WeightInterest = 8
	WeightCountry  = 5
	WeightPopular  = 3

	// PopularFollowerCount is the follower count a profile must exceed to count as popular.
	PopularFollowerCount = 5
)

// InterestKeywords is the fixed vocabulary matched against both users' bios.
var InterestKeywords = []string{
	"tech", "travel", "food", "music", "art", "design", "nature", "hiking",
	"photography", "fitness", "gaming", "business", "fashion", "sports", "movies",
}

// DefaultReason labels a suggestion when no signal produced a display reason.
const DefaultReason = "Suggested for you"

// Suggestion is a ranked candidate for the current user to follow.
type Suggestion struct {
	User   models.User `json:"user"`
	Score  int         `json:"score"`
	Reason string      `json:"reason"`
	Mutual int         `json:"mutualConnections"`
}

var educationFiller = map[string]struct{}{
	"studied": {}, "at": {}, "university": {}, "college": {}, "high": {},
	"school": {}, "of": {}, "the": {},
}

type signal struct {
	weight int
	reason string
}

// SuggestProfiles scores every user that is neither user, already followed by user, nor an
// admin account. Candidates scoring zero are dropped. The result is sorted by descending score
// and keeps roster order among equal scores.
func SuggestProfiles(user models.User, all []models.User) []Suggestion {
	var out []Suggestion
	for _, candidate := range all {
		if candidate.ID == user.ID || candidate.Role == models.RoleAdmin || slices.Contains(user.Following, candidate.ID) {
			continue
		}
		score, reason := scoreCandidate(user, candidate)
		if score == 0 {
			continue
		}
		out = append(out, Suggestion{
			User:   candidate.Public(),
			Score:  score,
			Reason: reason,
			Mutual: MutualConnections(user, candidate),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func scoreCandidate(user, candidate models.User) (int, string) {
	var matched []signal

	if s, ok := locationSignal(user.Location, candidate.Location); ok {
		matched = append(matched, s)
	}
	if sameInstitution(user.Education, candidate.Education) {
		matched = append(matched, signal{weight: WeightSchool, reason: "Schooled together"})
	}
	if len(candidate.Followers) > PopularFollowerCount {
		matched = append(matched, signal{weight: WeightPopular, reason: "Popular profile"})
	}
	if keyword, ok := sharedInterest(user.Bio, candidate.Bio); ok {
		matched = append(matched, signal{weight: WeightInterest, reason: "Likes " + keyword})
	}

	score := 0
	best := signal{reason: DefaultReason}
	for _, s := range matched {
		score += s.weight
		if s.weight > best.weight {
			best = s
		}
	}
	return score, best.reason
}

// locationSignal compares "City, Country" strings. Either city appearing anywhere in the other
// full location counts as a city match, so "Tanzania" matches "Dar es Salaam, Tanzania". A
// city match outranks a country match and the two never stack.
func locationSignal(mine, theirs string) (signal, bool) {
	myCity, myCountry := splitLocation(mine)
	theirCity, theirCountry := splitLocation(theirs)
	myLoc, theirLoc := strings.ToLower(mine), strings.ToLower(theirs)

	if myCity != "" && theirCity != "" &&
		(myCity == theirCity || strings.Contains(myLoc, theirCity) || strings.Contains(theirLoc, myCity)) {
		display := strings.TrimSpace(strings.Split(theirs, ",")[0])
		return signal{weight: WeightCity, reason: "From " + display}, true
	}
	if myCountry != "" && theirCountry != "" && myCountry == theirCountry {
		return signal{weight: WeightCountry, reason: "From " + capitalize(myCountry)}, true
	}
	return signal{}, false
}

// splitLocation returns the lower-cased city (first segment) and country (last segment).
// A single-segment location is treated as a city only.
func splitLocation(location string) (city, country string) {
	location = strings.ToLower(strings.TrimSpace(location))
	if location == "" {
		return "", ""
	}
	parts := strings.Split(location, ",")
	city = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		country = strings.TrimSpace(parts[len(parts)-1])
	}
	return city, country
}

func sameInstitution(mine, theirs string) bool {
	a, b := cleanEducation(mine), cleanEducation(theirs)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func cleanEducation(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	kept := words[:0]
	for _, w := range words {
		if _, filler := educationFiller[w]; !filler {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func sharedInterest(mine, theirs string) (string, bool) {
	if mine == "" || theirs == "" {
		return "", false
	}
	a, b := strings.ToLower(mine), strings.ToLower(theirs)
	for _, keyword := range InterestKeywords {
		if strings.Contains(a, keyword) && strings.Contains(b, keyword) {
			return keyword, true
		}
	}
	return "", false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Birthdays lists the followers and followees of user whose birthday falls on day.
func Birthdays(user models.User, all []models.User, day time.Time) []models.User {
	var out []models.User
	for _, u := range all {
		if u.ID == user.ID || u.BirthDate == "" || !Connected(user, u) {
			continue
		}
		born, err := time.Parse("2006-01-02", u.BirthDate)
		if err != nil {
			continue
		}
		if born.Month() == day.Month() && born.Day() == day.Day() {
			out = append(out, u.Public())
		}
	}
	return out
}
