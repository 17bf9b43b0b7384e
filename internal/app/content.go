package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/unera/backend/internal/models"
	"github.com/unera/backend/internal/social"
	"github.com/unera/backend/internal/store"
)

const eventDateLayout = "2006-01-02"

// seedContent is the initial feed content. Timestamps are written as ages relative to boot
// ("2h", "1d") and event dates as a day offset, so the seeded content never goes stale.
type seedContent struct {
	Posts   []models.Post `json:"posts"`
	Stories []struct {
		models.Story
		Age string `json:"age"`
	} `json:"stories"`
	Reels []struct {
		models.Reel
		Age string `json:"age"`
	} `json:"reels"`
	Events []struct {
		models.Event
		InDays int `json:"inDays"`
	} `json:"events"`
	Groups []struct {
		models.Group
		Age string `json:"age"`
	} `json:"groups"`
}

// parseAge converts a display age such as "30m", "2h", "1d" or "1w" into a duration.
// "Just now" and the empty string are zero.
func parseAge(label string) (time.Duration, error) {
	label = strings.TrimSpace(label)
	if label == "" || label == models.JustNow {
		return 0, nil
	}
	unit := label[len(label)-1]
	n, err := strconv.Atoi(label[:len(label)-1])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid age %q", label)
	}
	switch unit {
	case 's':
		return time.Duration(n) * time.Second, nil
	case 'm':
		return time.Duration(n) * time.Minute, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("invalid age %q", label)
}

type idSet map[int64]struct{}

func (s idSet) claim(kind string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("seed %s: id must be positive", kind)
	}
	if _, dup := s[id]; dup {
		return fmt.Errorf("seed %s %d: duplicate id", kind, id)
	}
	s[id] = struct{}{}
	return nil
}

// parseContent reads the initial feed content against a roster. Every referenced user must
// exist. Comment like counts are derived from their likers and seeded reels are ready to play.
func parseContent(r io.Reader, users []models.User, now time.Time) (store.State, error) {
	var raw seedContent
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return store.State{}, fmt.Errorf("decode seed content: %w", err)
	}

	known := make(idSet, len(users))
	for _, u := range users {
		known[u.ID] = struct{}{}
	}
	checkUsers := func(kind string, id int64, refs ...int64) error {
		for _, ref := range refs {
			if _, ok := known[ref]; !ok {
				return fmt.Errorf("seed %s %d: unknown user %d", kind, id, ref)
			}
		}
		return nil
	}
	reactors := func(reactions []models.Reaction) []int64 {
		ids := make([]int64, 0, len(reactions))
		for _, r := range reactions {
			ids = append(ids, r.UserID)
		}
		return ids
	}

	var st store.State

	postIDs := idSet{}
	for _, p := range raw.Posts {
		if err := postIDs.claim("post", p.ID); err != nil {
			return store.State{}, err
		}
		if err := checkUsers("post", p.ID, append([]int64{p.AuthorID}, reactors(p.Reactions)...)...); err != nil {
			return store.State{}, err
		}
		for _, r := range p.Reactions {
			if !r.Type.Valid() {
				return store.State{}, fmt.Errorf("seed post %d: invalid reaction %q", p.ID, r.Type)
			}
		}
		age, err := parseAge(p.Label)
		if err != nil {
			return store.State{}, fmt.Errorf("seed post %d: %w", p.ID, err)
		}
		p.CreatedAt = now.Add(-age)
		if p.Visibility == "" {
			p.Visibility = models.VisibilityPublic
		}
		if !p.Visibility.Valid() {
			return store.State{}, fmt.Errorf("seed post %d: invalid visibility %q", p.ID, p.Visibility)
		}
		if p.Type == "" {
			p.Type = models.PostText
		}
		if p.Reactions == nil {
			p.Reactions = []models.Reaction{}
		}
		comments, err := seedComments(p.ID, p.Comments, now, checkUsers)
		if err != nil {
			return store.State{}, err
		}
		p.Comments = comments
		st.Posts = append(st.Posts, p)
	}

	storyIDs := idSet{}
	for _, s := range raw.Stories {
		if err := storyIDs.claim("story", s.ID); err != nil {
			return store.State{}, err
		}
		if err := checkUsers("story", s.ID, s.UserID); err != nil {
			return store.State{}, err
		}
		age, err := parseAge(s.Age)
		if err != nil {
			return store.State{}, fmt.Errorf("seed story %d: %w", s.ID, err)
		}
		story := s.Story
		story.CreatedAt = now.Add(-age)
		st.Stories = append(st.Stories, story)
	}

	reelIDs := idSet{}
	for _, rl := range raw.Reels {
		if err := reelIDs.claim("reel", rl.ID); err != nil {
			return store.State{}, err
		}
		if err := checkUsers("reel", rl.ID, append([]int64{rl.UserID}, reactors(rl.Reactions)...)...); err != nil {
			return store.State{}, err
		}
		age, err := parseAge(rl.Age)
		if err != nil {
			return store.State{}, fmt.Errorf("seed reel %d: %w", rl.ID, err)
		}
		reel := rl.Reel
		reel.CreatedAt = now.Add(-age)
		reel.AssetStatus = models.AssetStatusReady
		if reel.Views == 0 {
			reel.Views = social.ReelViews(reel.ID)
		}
		if reel.Reactions == nil {
			reel.Reactions = []models.Reaction{}
		}
		comments, err := seedComments(reel.ID, reel.Comments, now, checkUsers)
		if err != nil {
			return store.State{}, err
		}
		reel.Comments = comments
		st.Reels = append(st.Reels, reel)
	}

	eventIDs := idSet{}
	for _, e := range raw.Events {
		if err := eventIDs.claim("event", e.ID); err != nil {
			return store.State{}, err
		}
		if err := checkUsers("event", e.ID, append([]int64{e.OrganizerID}, e.Attendees...)...); err != nil {
			return store.State{}, err
		}
		event := e.Event
		event.Date = now.AddDate(0, 0, e.InDays).Format(eventDateLayout)
		if !slices.Contains(event.Attendees, event.OrganizerID) {
			event.Attendees = append([]int64{event.OrganizerID}, event.Attendees...)
		}
		st.Events = append(st.Events, event)
	}

	groupIDs := idSet{}
	for _, g := range raw.Groups {
		if err := groupIDs.claim("group", g.ID); err != nil {
			return store.State{}, err
		}
		if err := checkUsers("group", g.ID, append([]int64{g.AdminID}, g.Members...)...); err != nil {
			return store.State{}, err
		}
		age, err := parseAge(g.Age)
		if err != nil {
			return store.State{}, fmt.Errorf("seed group %d: %w", g.ID, err)
		}
		group := g.Group
		group.CreatedAt = now.Add(-age)
		if group.Type == "" {
			group.Type = models.GroupPublic
		}
		if !slices.Contains(group.Members, group.AdminID) {
			group.Members = append([]int64{group.AdminID}, group.Members...)
		}
		if group.Posts == nil {
			group.Posts = []models.GroupPost{}
		}
		st.Groups = append(st.Groups, group)
	}

	return st, nil
}

func seedComments(parentID int64, comments []models.Comment, now time.Time, checkUsers func(string, int64, ...int64) error) ([]models.Comment, error) {
	out := make([]models.Comment, 0, len(comments))
	ids := idSet{}
	for _, c := range comments {
		if err := ids.claim(fmt.Sprintf("comment on %d", parentID), c.ID); err != nil {
			return nil, err
		}
		if err := checkUsers("comment", c.ID, append([]int64{c.UserID}, c.LikedBy...)...); err != nil {
			return nil, err
		}
		age, err := parseAge(c.Label)
		if err != nil {
			return nil, fmt.Errorf("seed comment %d: %w", c.ID, err)
		}
		c.CreatedAt = now.Add(-age)
		c.Likes = len(c.LikedBy)
		out = append(out, c)
	}
	return out, nil
}

// loadContent reads the content seed file. A missing or unset file yields no content.
func loadContent(path string, users []models.User, now time.Time) (store.State, error) {
	if path == "" {
		return store.State{}, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return store.State{}, nil
	}
	if err != nil {
		return store.State{}, fmt.Errorf("open content seed: %w", err)
	}
	defer f.Close()
	return parseContent(f, users, now)
}
