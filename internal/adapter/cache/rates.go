package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"socialbooster/internal/core/port"
)

const keyPrefix = "socialbooster:rates:"

// RateCache is a read-through Redis cache in front of a port.RateProvider.
// Redis failures never fail a lookup; they are logged and the upstream is
// queried directly. Upstream errors are not cached.
type RateCache struct {
	next   port.RateProvider
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRateCache wraps next. source identifies the upstream (usually its URL)
// and becomes part of the cache key.
func NewRateCache(next port.RateProvider, client *redis.Client, source string, ttl time.Duration, logger *slog.Logger) *RateCache {
	return &RateCache{
		next:   next,
		client: client,
		key:    keyPrefix + source,
		ttl:    ttl,
		logger: logger,
	}
}

type entry struct {
	Rates map[string]float64 `json:"rates"`
}

// Rates returns cached rates when present, otherwise asks the upstream and
// stores its answer for the configured TTL.
func (c *RateCache) Rates(ctx context.Context) (map[string]float64, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		var e entry
		if err = json.Unmarshal(raw, &e); err == nil {
			return e.Rates, nil
		}
		c.logger.Warn("discarding corrupt rate cache entry", slog.String("key", c.key), slog.Any("error", err))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("rate cache read failed", slog.String("key", c.key), slog.Any("error", err))
	}

	rates, err := c.next.Rates(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(entry{Rates: rates})
	if err != nil {
		return rates, nil
	}
	if err = c.client.Set(ctx, c.key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("rate cache write failed", slog.String("key", c.key), slog.Any("error", err))
	}
	return rates, nil
}
