package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/engineq/engineq/models"
	"github.com/go-redis/redis/v8"
)

// LicenseCache caches license -> subscriber lookups so the auth middleware
// does not hit postgres on every request. Entries expire on their own; they
// are also invalidated explicitly when a subscriber record changes.
type LicenseCache interface {
	Save(ctx context.Context, license string, subscriber *models.SubscriberDBModel) error
	Get(ctx context.Context, license string) (*models.SubscriberDBModel, error)
	Invalidate(ctx context.Context, license string) error
}

type licenseCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewLicenseCache(client *redis.Client, prefix string, ttl time.Duration) LicenseCache {
	return &licenseCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (lc *licenseCache) Save(ctx context.Context, license string, subscriber *models.SubscriberDBModel) error {
	key := fmt.Sprintf("%s:%s", lc.prefix, license)

	data, err := json.Marshal(subscriber)
	if err != nil {
		return fmt.Errorf("failed to marshal subscriber: %w", err)
	}

	if err := lc.client.Set(ctx, key, data, lc.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache subscriber: %w", err)
	}

	return nil
}

func (lc *licenseCache) Get(ctx context.Context, license string) (*models.SubscriberDBModel, error) {
	key := fmt.Sprintf("%s:%s", lc.prefix, license)

	result, err := lc.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil // cache miss
	} else if err != nil {
		return nil, fmt.Errorf("failed to get cached subscriber: %w", err)
	}

	var subscriber models.SubscriberDBModel
	if err := json.Unmarshal([]byte(result), &subscriber); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subscriber: %w", err)
	}

	return &subscriber, nil
}

func (lc *licenseCache) Invalidate(ctx context.Context, license string) error {
	key := fmt.Sprintf("%s:%s", lc.prefix, license)

	if err := lc.client.Del(ctx, key).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to invalidate cached subscriber: %w", err)
	}

	return nil
}
