package graph

import (
	"slices"
	"sort"
	"strings"

	"github.com/unera/backend/internal/models"
)

// Search weights for the people search box.
const (
	SearchWeightName   = 10
	SearchWeightWork   = 8
	SearchWeightBio    = 3
	SearchWeightMutual = 2
)

// SearchResult is one ranked match of Search.
type SearchResult struct {
	User  models.User `json:"user"`
	Score int         `json:"score"`
}

// SharedFollowers counts the accounts that follow both a and b.
func SharedFollowers(a, b models.User) int {
	count := 0
	for _, id := range a.Followers {
		if slices.Contains(b.Followers, id) {
			count++
		}
	}
	return count
}

// Search ranks users against a case-insensitive query: a name hit scores 10, work 8, bio 3,
// and every follower shared with the viewer adds 2. The viewer is never listed and a nil
// viewer searches anonymously. An empty query matches nobody.
func Search(all []models.User, viewer *models.User, query string) []SearchResult {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var out []SearchResult
	for _, u := range all {
		if viewer != nil && u.ID == viewer.ID {
			continue
		}
		score := 0
		if strings.Contains(strings.ToLower(u.Name), query) {
			score += SearchWeightName
		}
		if strings.Contains(strings.ToLower(u.Work), query) {
			score += SearchWeightWork
		}
		if strings.Contains(strings.ToLower(u.Bio), query) {
			score += SearchWeightBio
		}
		if viewer != nil {
			score += SearchWeightMutual * SharedFollowers(u, *viewer)
		}
		if score > 0 {
			out = append(out, SearchResult{User: u.Public(), Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
