package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"parcel-hub/internal/earnings/domain"
)

const tierKey = "pricing:driver_tiers"

// RedisTierCache stores the pricing-tier list in Redis with a TTL, so the
// dashboards' 30-60s poll loops do not refetch a table that changes maybe
// once a week.
type RedisTierCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTierCache(client *redis.Client, ttl time.Duration) domain.TierCache {
	return &RedisTierCache{client: client, ttl: ttl}
}

// GetTiers returns the cached list, or domain.ErrTiersNotCached when the
// key is missing or expired.
func (c *RedisTierCache) GetTiers(ctx context.Context) ([]domain.DriverPricingTier, error) {
	payload, err := c.client.Get(ctx, tierKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrTiersNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tier cache: %w", err)
	}

	var tiers []domain.DriverPricingTier
	if err := json.Unmarshal(payload, &tiers); err != nil {
		// A corrupt entry behaves like a miss; the next write repairs it.
		return nil, domain.ErrTiersNotCached
	}
	return tiers, nil
}

// SetTiers stores the list for the configured TTL.
func (c *RedisTierCache) SetTiers(ctx context.Context, tiers []domain.DriverPricingTier) error {
	payload, err := json.Marshal(tiers)
	if err != nil {
		return fmt.Errorf("failed to marshal tiers: %w", err)
	}

	if err := c.client.Set(ctx, tierKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write tier cache: %w", err)
	}
	return nil
}
