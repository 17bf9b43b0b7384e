package music

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/unera/backend/internal/models"
)

// ErrNotFound indicates an unknown song, album, podcast or episode id.
var ErrNotFound = errors.New("audio item not found")

//go:embed catalog.json
var defaultCatalog []byte

// Song is a playable music track.
type Song struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Cover    string `json:"cover"`
	Duration string `json:"duration"`
	AudioURL string `json:"audioUrl"`
	Plays    int    `json:"plays"`
}

// Album groups songs by id.
type Album struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Artist  string   `json:"artist"`
	Year    string   `json:"year"`
	Cover   string   `json:"cover"`
	SongIDs []string `json:"songs"`
}

// Podcast is a show with episodes.
type Podcast struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Host        string `json:"host"`
	Category    string `json:"category"`
	Followers   int    `json:"followers"`
	Description string `json:"description"`
	Cover       string `json:"cover"`
}

// Episode is a playable podcast episode.
type Episode struct {
	ID          string `json:"id"`
	PodcastID   string `json:"podcastId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Duration    string `json:"duration"`
	Thumbnail   string `json:"thumbnail"`
	AudioURL    string `json:"audioUrl"`
}

// AlbumView is an album with its songs resolved in album order.
type AlbumView struct {
	Album
	Songs []Song `json:"tracks"`
}

// PodcastView is a podcast with its episodes.
type PodcastView struct {
	Podcast
	Episodes []Episode `json:"episodes"`
}

// Catalog is a read-only music and podcast library. Song and episode ids share one namespace
// so a track id alone resolves to something playable.
type Catalog struct {
	Songs    []Song    `json:"songs"`
	Albums   []Album   `json:"albums"`
	Podcasts []Podcast `json:"podcasts"`
	Episodes []Episode `json:"episodes"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Load(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(fmt.Sprintf("music: built-in catalog: %v", err))
	}
	return c
}

// Load decodes a catalog and checks its references.
func Load(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	playable := make(map[string]struct{}, len(c.Songs)+len(c.Episodes))
	for _, s := range c.Songs {
		if _, dup := playable[s.ID]; dup || s.ID == "" {
			return fmt.Errorf("catalog song %q: empty or duplicate id", s.ID)
		}
		playable[s.ID] = struct{}{}
	}
	for _, a := range c.Albums {
		for _, id := range a.SongIDs {
			if _, ok := c.song(id); !ok {
				return fmt.Errorf("catalog album %s: unknown song %s", a.ID, id)
			}
		}
	}
	for _, e := range c.Episodes {
		if _, dup := playable[e.ID]; dup || e.ID == "" {
			return fmt.Errorf("catalog episode %q: empty or duplicate id", e.ID)
		}
		playable[e.ID] = struct{}{}
		if _, ok := c.podcast(e.PodcastID); !ok {
			return fmt.Errorf("catalog episode %s: unknown podcast %s", e.ID, e.PodcastID)
		}
	}
	return nil
}

func (c *Catalog) song(id string) (Song, bool) {
	i := slices.IndexFunc(c.Songs, func(s Song) bool { return s.ID == id })
	if i < 0 {
		return Song{}, false
	}
	return c.Songs[i], true
}

func (c *Catalog) podcast(id string) (Podcast, bool) {
	i := slices.IndexFunc(c.Podcasts, func(p Podcast) bool { return p.ID == id })
	if i < 0 {
		return Podcast{}, false
	}
	return c.Podcasts[i], true
}

// TopSongs lists songs by descending play count.
func (c *Catalog) TopSongs() []Song {
	out := slices.Clone(c.Songs)
	slices.SortStableFunc(out, func(a, b Song) int { return b.Plays - a.Plays })
	return out
}

// Album resolves an album and its songs.
func (c *Catalog) Album(id string) (AlbumView, error) {
	i := slices.IndexFunc(c.Albums, func(a Album) bool { return a.ID == id })
	if i < 0 {
		return AlbumView{}, ErrNotFound
	}
	view := AlbumView{Album: c.Albums[i], Songs: make([]Song, 0, len(c.Albums[i].SongIDs))}
	for _, sid := range view.SongIDs {
		if s, ok := c.song(sid); ok {
			view.Songs = append(view.Songs, s)
		}
	}
	return view, nil
}

// Podcast resolves a podcast and its episodes in catalog order.
func (c *Catalog) Podcast(id string) (PodcastView, error) {
	p, ok := c.podcast(id)
	if !ok {
		return PodcastView{}, ErrNotFound
	}
	view := PodcastView{Podcast: p, Episodes: []Episode{}}
	for _, e := range c.Episodes {
		if e.PodcastID == id {
			view.Episodes = append(view.Episodes, e)
		}
	}
	return view, nil
}

// Track converts a song or episode id into the unit handed to the audio player.
func (c *Catalog) Track(id string) (models.AudioTrack, error) {
	if s, ok := c.song(id); ok {
		return models.AudioTrack{ID: s.ID, URL: s.AudioURL, Title: s.Title, Artist: s.Artist, Cover: s.Cover, Kind: models.TrackMusic}, nil
	}
	i := slices.IndexFunc(c.Episodes, func(e Episode) bool { return e.ID == id })
	if i < 0 {
		return models.AudioTrack{}, ErrNotFound
	}
	e := c.Episodes[i]
	host := ""
	if p, ok := c.podcast(e.PodcastID); ok {
		host = p.Host
	}
	return models.AudioTrack{ID: e.ID, URL: e.AudioURL, Title: e.Title, Artist: host, Cover: e.Thumbnail, Kind: models.TrackPodcast}, nil
}

// Search matches songs by title, artist or album and podcasts by title, host or category,
// case-insensitively.
func (c *Catalog) Search(query string) ([]Song, []Podcast) {
	query = strings.ToLower(strings.TrimSpace(query))
	songs, podcasts := []Song{}, []Podcast{}
	if query == "" {
		return songs, podcasts
	}
	for _, s := range c.Songs {
		if containsAny(query, s.Title, s.Artist, s.Album) {
			songs = append(songs, s)
		}
	}
	for _, p := range c.Podcasts {
		if containsAny(query, p.Title, p.Host, p.Category) {
			podcasts = append(podcasts, p)
		}
	}
	return songs, podcasts
}

func containsAny(query string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}
