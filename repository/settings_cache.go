package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/TechbroSam/jogiloran/models"

	"github.com/redis/go-redis/v9"
)

const settingsCacheKey = "cache:site_settings"

// SettingsCache keeps the content store's site settings in Redis for a short
// TTL so every checkout doesn't re-query the discount.
type SettingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSettingsCache(client *redis.Client, ttl time.Duration) *SettingsCache {
	return &SettingsCache{client: client, ttl: ttl}
}

// Get returns the cached settings, or nil on a miss.
func (c *SettingsCache) Get(ctx context.Context) (*models.SiteSettings, error) {
	data, err := c.client.Get(ctx, settingsCacheKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var settings models.SiteSettings
	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (c *SettingsCache) Set(ctx context.Context, settings *models.SiteSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, settingsCacheKey, data, c.ttl).Err()
}
