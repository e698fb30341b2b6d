package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const customizationKey = "settings:customization"

// SettingsCache handles Redis operations for the operator's free-text
// customization string. It is a single scalar with last-write-wins semantics;
// an absent value reads as the empty string.
type SettingsCache interface {
	GetCustomization(ctx context.Context) (string, error)
	SetCustomization(ctx context.Context, value string) error
}

type settingsCache struct {
	client *redis.Client
}

// NewSettingsCache creates a new settings cache
func NewSettingsCache(client *redis.Client) SettingsCache {
	return &settingsCache{client: client}
}

func (c *settingsCache) GetCustomization(ctx context.Context) (string, error) {
	value, err := c.client.Get(ctx, customizationKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (c *settingsCache) SetCustomization(ctx context.Context, value string) error {
	return c.client.Set(ctx, customizationKey, value, 0).Err()
}
