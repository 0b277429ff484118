// Package moviecache adds a Redis read-through cache in front of the movie
// catalog. Catalog facts change rarely and order placement reads them on
// every AddItem, so even a short TTL removes most upstream calls.
package moviecache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xenking/movie-orders/internal/domain/movie"
)

var _ movie.Repository = (*Cache)(nil)

// Cache decorates a movie.Repository with Redis caching of Get lookups.
// Searches pass through uncached. Cache failures degrade to the upstream
// repository rather than failing the request.
type Cache struct {
	upstream movie.Repository
	client   *redis.Client
	ttl      time.Duration
}

// New creates a Cache over the given upstream repository.
func New(upstream movie.Repository, client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		upstream: upstream,
		client:   client,
		ttl:      ttl,
	}
}

func cacheKey(id string) string {
	return "movie:" + id
}

// Get returns the cached movie when present, otherwise fetches it upstream
// and stores it. Only successful lookups are cached; not-found is always
// re-checked upstream so newly listed titles appear without waiting out a
// negative TTL.
func (c *Cache) Get(ctx context.Context, id string) (*movie.Movie, error) {
	key := cacheKey(id)

	cached, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var m movie.Movie
		if err := json.Unmarshal(cached, &m); err == nil {
			return &m, nil
		}
		// Unreadable entry: fall through and overwrite it.
	case !errors.Is(err, redis.Nil):
		zctx.From(ctx).Warn("movie cache read failed", zap.String("movie_id", id), zap.Error(err))
	}

	m, err := c.upstream.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(m); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			zctx.From(ctx).Warn("movie cache write failed", zap.String("movie_id", id), zap.Error(err))
		}
	}
	return m, nil
}

// Search passes through to the upstream repository.
func (c *Cache) Search(ctx context.Context, title string) ([]movie.Summary, error) {
	return c.upstream.Search(ctx, title)
}
