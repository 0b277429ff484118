// Package omdb implements the movie catalog repository against the OMDB
// HTTP API (https://www.omdbapi.com/).
package omdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-faster/errors"

	"github.com/xenking/movie-orders/internal/domain/movie"
)

// Upstream error strings OMDB returns with Response=False.
const (
	responseFalse      = "False"
	errIncorrectImdbID = "Incorrect IMDb ID."
	errTooManyResults  = "Too many results."
)

var _ movie.Repository = (*Client)(nil)

// Client talks to the OMDB API and adapts its responses to the movie domain.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates an OMDB client. A nil httpClient falls back to
// http.DefaultClient.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    httpClient,
	}
}

// getMovieResponse mirrors the OMDB "get by id" payload. Response/Error
// double as the API's error channel.
type getMovieResponse struct {
	ImdbID     string `json:"imdbID"`
	Title      string `json:"Title"`
	Type       string `json:"Type"`
	Year       string `json:"Year"`
	Rated      string `json:"Rated"`
	Released   string `json:"Released"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	Metascore  string `json:"Metascore"`
	ImdbRating string `json:"imdbRating"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

type searchMoviesResponse struct {
	Search []struct {
		ImdbID string `json:"imdbID"`
		Title  string `json:"Title"`
		Type   string `json:"Type"`
		Year   string `json:"Year"`
		Poster string `json:"Poster"`
	} `json:"Search"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// Get fetches a movie by its IMDb id. An "Incorrect IMDb ID." upstream error
// maps to movie.ErrNotFound.
func (c *Client) Get(ctx context.Context, id string) (*movie.Movie, error) {
	var resp getMovieResponse
	if err := c.get(ctx, url.Values{"i": {id}}, &resp); err != nil {
		return nil, err
	}

	if resp.Response == responseFalse {
		if resp.Error == errIncorrectImdbID {
			return nil, movie.ErrNotFound
		}
		return nil, errors.Errorf("omdb: %s", resp.Error)
	}

	return &movie.Movie{
		ID:         resp.ImdbID,
		Title:      resp.Title,
		Type:       resp.Type,
		Year:       resp.Year,
		Rated:      resp.Rated,
		Released:   resp.Released,
		Plot:       resp.Plot,
		PosterURL:  resp.Poster,
		Metascore:  resp.Metascore,
		ImdbRating: resp.ImdbRating,
	}, nil
}

// Search looks up movie summaries by title. A "Too many results." upstream
// error maps to movie.ErrSearchTooBroad; other upstream failures (including
// no matches) yield an empty result set.
func (c *Client) Search(ctx context.Context, title string) ([]movie.Summary, error) {
	var resp searchMoviesResponse
	if err := c.get(ctx, url.Values{"s": {title}}, &resp); err != nil {
		return nil, err
	}

	if resp.Response == responseFalse && resp.Error == errTooManyResults {
		return nil, movie.ErrSearchTooBroad
	}

	summaries := make([]movie.Summary, len(resp.Search))
	for i, m := range resp.Search {
		summaries[i] = movie.Summary{
			ID:        m.ImdbID,
			Title:     m.Title,
			Type:      m.Type,
			Year:      m.Year,
			PosterURL: m.Poster,
		}
	}
	return summaries, nil
}

func (c *Client) get(ctx context.Context, query url.Values, out any) error {
	query.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+query.Encode(), nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "omdb request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("omdb: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode omdb response")
	}
	return nil
}
