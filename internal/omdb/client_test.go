package omdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/movie-orders/internal/domain/movie"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", srv.Client())
}

func TestGet_OK(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		assert.Equal(t, "tt0111161", r.URL.Query().Get("i"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"imdbID": "tt0111161",
			"Title": "The Shawshank Redemption",
			"Type": "movie",
			"Year": "1994",
			"Rated": "R",
			"Released": "14 Oct 1994",
			"Plot": "Two imprisoned men bond over a number of years.",
			"Poster": "https://example.com/poster.jpg",
			"Metascore": "82",
			"imdbRating": "9.3",
			"Response": "True"
		}`))
	})

	m, err := c.Get(context.Background(), "tt0111161")

	require.NoError(t, err)
	assert.Equal(t, "tt0111161", m.ID)
	assert.Equal(t, "The Shawshank Redemption", m.Title)
	assert.Equal(t, "1994", m.Year)
	assert.Equal(t, "82", m.Metascore)
	assert.Equal(t, "https://example.com/poster.jpg", m.PosterURL)
}

func TestGet_NotFound(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Response": "False", "Error": "Incorrect IMDb ID."}`))
	})

	_, err := c.Get(context.Background(), "tt0000000")
	require.ErrorIs(t, err, movie.ErrNotFound)
}

func TestGet_OtherUpstreamError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Response": "False", "Error": "Invalid API key!"}`))
	})

	_, err := c.Get(context.Background(), "tt0111161")
	require.Error(t, err)
	assert.NotErrorIs(t, err, movie.ErrNotFound)
	assert.Contains(t, err.Error(), "Invalid API key!")
}

func TestGet_UnexpectedStatus(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Get(context.Background(), "tt0111161")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestSearch_OK(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "star wars", r.URL.Query().Get("s"))

		_, _ = w.Write([]byte(`{
			"Search": [
				{"imdbID": "tt0076759", "Title": "Star Wars", "Type": "movie", "Year": "1977", "Poster": "sw.jpg"},
				{"imdbID": "tt0080684", "Title": "The Empire Strikes Back", "Type": "movie", "Year": "1980", "Poster": "esb.jpg"}
			],
			"Response": "True"
		}`))
	})

	results, err := c.Search(context.Background(), "star wars")

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "tt0076759", results[0].ID)
	assert.Equal(t, "Star Wars", results[0].Title)
	assert.Equal(t, "1977", results[0].Year)
}

func TestSearch_TooBroad(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Response": "False", "Error": "Too many results."}`))
	})

	_, err := c.Search(context.Background(), "a")
	require.ErrorIs(t, err, movie.ErrSearchTooBroad)
}

func TestSearch_NoMatches(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Response": "False", "Error": "Movie not found!"}`))
	})

	results, err := c.Search(context.Background(), "zzzzzz")

	require.NoError(t, err)
	assert.Empty(t, results)
}
