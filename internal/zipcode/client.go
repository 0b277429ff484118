// Package zipcode implements the shipping ZIP code directory against the
// Zipwise HTTP API.
package zipcode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/movie-orders/internal/domain/shipping"
)

var _ shipping.Directory = (*Client)(nil)

// Client resolves ZIP codes through the Zipwise API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a Zipwise client. A nil httpClient falls back to
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

type zipInfoResponse struct {
	Results struct {
		Zip    string `json:"zip"`
		State  string `json:"state"`
		Cities []struct {
			City string `json:"city"`
		} `json:"cities"`
		Error string `json:"error"`
	} `json:"results"`
}

// Lookup resolves a ZIP code to its state and cities. Unknown codes return
// (nil, nil); any other upstream error is surfaced as a failure.
func (c *Client) Lookup(ctx context.Context, code string) (*shipping.ZipCodeInfo, error) {
	query := url.Values{
		"key":    {c.apiKey},
		"zip":    {code},
		"format": {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "zipwise request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("zipwise: unexpected status %d", resp.StatusCode)
	}

	var body zipInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "decode zipwise response")
	}

	if body.Results.Error != "" {
		if strings.Contains(strings.ToLower(body.Results.Error), "is not a valid zip code") {
			return nil, nil
		}
		return nil, errors.Errorf("zipwise: %s", body.Results.Error)
	}

	cities := make([]string, len(body.Results.Cities))
	for i, city := range body.Results.Cities {
		cities[i] = city.City
	}
	return &shipping.ZipCodeInfo{
		Code:   body.Results.Zip,
		State:  body.Results.State,
		Cities: cities,
	}, nil
}
