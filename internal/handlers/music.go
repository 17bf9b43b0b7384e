package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unera/backend/internal/music"
)

// MusicHandler serves the song and podcast library.
type MusicHandler struct {
	Catalog *music.Catalog
}

type musicSearchResponse struct {
	Songs    []music.Song    `json:"songs"`
	Podcasts []music.Podcast `json:"podcasts"`
}

func (h MusicHandler) catalog() *music.Catalog {
	if h.Catalog == nil {
		return music.Default()
	}
	return h.Catalog
}

// Songs handles GET /api/v1/music/songs. A q parameter narrows songs and podcasts together.
func (h MusicHandler) Songs(w http.ResponseWriter, r *http.Request) {
	c := h.catalog()
	if q := r.URL.Query().Get("q"); q != "" {
		songs, podcasts := c.Search(q)
		respondJSON(r.Context(), w, http.StatusOK, musicSearchResponse{Songs: songs, Podcasts: podcasts})
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, list(c.TopSongs()))
}

// Albums handles GET /api/v1/music/albums.
func (h MusicHandler) Albums(w http.ResponseWriter, r *http.Request) {
	respondJSON(r.Context(), w, http.StatusOK, list(h.catalog().Albums))
}

// Album handles GET /api/v1/music/albums/{albumID}.
func (h MusicHandler) Album(w http.ResponseWriter, r *http.Request) {
	album, err := h.catalog().Album(chi.URLParam(r, "albumID"))
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, album)
}

// Podcasts handles GET /api/v1/podcasts.
func (h MusicHandler) Podcasts(w http.ResponseWriter, r *http.Request) {
	respondJSON(r.Context(), w, http.StatusOK, list(h.catalog().Podcasts))
}

// Podcast handles GET /api/v1/podcasts/{podcastID}.
func (h MusicHandler) Podcast(w http.ResponseWriter, r *http.Request) {
	podcast, err := h.catalog().Podcast(chi.URLParam(r, "podcastID"))
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, podcast)
}

// Track handles GET /api/v1/tracks/{trackID}.
func (h MusicHandler) Track(w http.ResponseWriter, r *http.Request) {
	track, err := h.catalog().Track(chi.URLParam(r, "trackID"))
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, track)
}
