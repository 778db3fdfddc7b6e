package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fieldline/dispatch/internal/core"
	"github.com/fieldline/dispatch/internal/domain/model"
)

const (
	defaultLocationKey = "dispatch:device_locations"
	defaultLocationTTL = 60 * time.Second
)

// LocationCache wraps a LocationProvider with a short-TTL Redis snapshot so
// back-to-back replan triggers do not hammer the provider. Cache failures
// degrade to a direct provider call.
type LocationCache struct {
	client   redis.UniversalClient
	provider core.LocationProvider
	key      string
	ttl      time.Duration
	logger   *slog.Logger
}

// LocationCacheOptions holds the dependencies for NewLocationCache.
type LocationCacheOptions struct {
	Client   redis.UniversalClient
	Provider core.LocationProvider
	Key      string
	TTL      time.Duration
	Logger   *slog.Logger
}

// NewLocationCache creates a LocationCache.
func NewLocationCache(opts LocationCacheOptions) *LocationCache {
	if opts.Key == "" {
		opts.Key = defaultLocationKey
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultLocationTTL
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &LocationCache{
		client:   opts.Client,
		provider: opts.Provider,
		key:      opts.Key,
		ttl:      opts.TTL,
		logger:   opts.Logger,
	}
}

// CurrentLocations returns the cached snapshot when fresh, otherwise fetches
// from the provider and refreshes the cache.
func (c *LocationCache) CurrentLocations(ctx context.Context) (map[string]model.DeviceLocation, error) {
	data, err := c.client.Get(ctx, c.key).Result()
	if err == nil {
		var snapshot map[string]model.DeviceLocation
		if unmarshalErr := json.Unmarshal([]byte(data), &snapshot); unmarshalErr == nil {
			return snapshot, nil
		}
		c.logger.WarnContext(ctx, "corrupt device-location snapshot, refetching", "key", c.key)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "device-location snapshot read failed", "error", err)
	}

	locations, err := c.provider.CurrentLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch device locations: %w", err)
	}

	if payload, marshalErr := json.Marshal(locations); marshalErr == nil {
		if setErr := c.client.Set(ctx, c.key, payload, c.ttl).Err(); setErr != nil {
			c.logger.WarnContext(ctx, "device-location snapshot write failed", "error", setErr)
		}
	}
	return locations, nil
}
