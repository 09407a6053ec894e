package geocode

import (
	"context"
	"log/slog"

	"memograph/internal/logging"
)

// Resolver fronts the remote client with the coordinate cache. Cache write
// failures are logged and swallowed: a dead cache degrades to slower lookups,
// never to a failed stage.
type Resolver struct {
	cache  *Cache
	client *Client
	logger *slog.Logger
}

// NewResolver builds a caching resolver. A nil cache disables caching.
func NewResolver(cache *Cache, client *Client, logger *slog.Logger) *Resolver {
	return &Resolver{
		cache:  cache,
		client: client,
		logger: logging.NewComponentLogger(logger, "geocode"),
	}
}

// Resolve returns the place name for the coordinates, consulting the cache
// before the remote geocoder.
func (r *Resolver) Resolve(ctx context.Context, lat, lon float64) (string, error) {
	place, hit, err := r.cache.Lookup(ctx, lat, lon)
	if err != nil {
		r.logger.Warn("geocode cache lookup failed", logging.Error(err))
	} else if hit {
		return place, nil
	}

	place, err = r.client.Reverse(ctx, lat, lon)
	if err != nil {
		return "", err
	}
	if err := r.cache.Store(ctx, lat, lon, place); err != nil {
		r.logger.Warn("geocode cache store failed", logging.Error(err))
	}
	return place, nil
}
