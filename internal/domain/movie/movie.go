package movie

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested movie id does not exist in
	// the catalog.
	ErrNotFound = errors.New("movie not found")
	// ErrSearchTooBroad is returned when a title search matches too many
	// catalog entries to return.
	ErrSearchTooBroad = errors.New("movie search too broad")
)

// Movie holds the catalog facts for a single title. Year and Metascore come
// from the upstream catalog as raw strings and may be empty or non-numeric;
// pricing degrades gracefully in that case.
type Movie struct {
	ID         string
	Title      string
	Type       string
	Year       string
	Rated      string
	Released   string
	Plot       string
	PosterURL  string
	Metascore  string
	ImdbRating string
}

// Summary is the shortened movie representation returned by title searches.
type Summary struct {
	ID        string
	Title     string
	Type      string
	Year      string
	PosterURL string
}

// Repository defines read operations against the movie catalog.
type Repository interface {
	Get(ctx context.Context, id string) (*Movie, error)
	Search(ctx context.Context, title string) ([]Summary, error)
}
