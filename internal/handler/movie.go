package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type movieResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Type       string `json:"type"`
	Year       string `json:"year,omitempty"`
	Rated      string `json:"rating,omitempty"`
	Released   string `json:"dateReleased,omitempty"`
	Plot       string `json:"plotDescription,omitempty"`
	PosterURL  string `json:"posterUrl,omitempty"`
	Metascore  string `json:"metascore,omitempty"`
	ImdbRating string `json:"imdbRating,omitempty"`
}

type movieSummaryResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	Year      string `json:"year,omitempty"`
	PosterURL string `json:"posterUrl,omitempty"`
}

// GetMovie handles GET /movies/{movieID}.
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	m, err := h.movies.Get(r.Context(), chi.URLParam(r, "movieID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, movieResponse{
		ID:         m.ID,
		Title:      m.Title,
		Type:       m.Type,
		Year:       m.Year,
		Rated:      m.Rated,
		Released:   m.Released,
		Plot:       m.Plot,
		PosterURL:  m.PosterURL,
		Metascore:  m.Metascore,
		ImdbRating: m.ImdbRating,
	})
}

// SearchMovies handles GET /movies?title=.
func (h *Handler) SearchMovies(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		writeBadRequest(w, "title query parameter is required")
		return
	}

	found, err := h.movies.Search(r.Context(), title)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]movieSummaryResponse, len(found))
	for i, m := range found {
		resp[i] = movieSummaryResponse{
			ID:        m.ID,
			Title:     m.Title,
			Type:      m.Type,
			Year:      m.Year,
			PosterURL: m.PosterURL,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
