package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DurgaPrasad-54/helpline104-feedback/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// ErrCacheMiss is returned by Get* methods when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache keys
const (
	CategoriesKey   = "feedback:categories:%s"
	SystemHealthKey = "system:health"
)

// Cache is a small JSON-over-redis cache.
type Cache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewCache(client *redis.Client, logger *logrus.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

func (c *Cache) setJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

func (c *Cache) getJSON(ctx context.Context, key string, out interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// CacheCategories stores the category list of a service line.
func (c *Cache) CacheCategories(ctx context.Context, line models.ServiceLine, categories []models.CategoryDto, expiration time.Duration) error {
	return c.setJSON(ctx, fmt.Sprintf(CategoriesKey, line), categories, expiration)
}

// GetCachedCategories returns ErrCacheMiss when nothing is cached.
func (c *Cache) GetCachedCategories(ctx context.Context, line models.ServiceLine) ([]models.CategoryDto, error) {
	var categories []models.CategoryDto
	if err := c.getJSON(ctx, fmt.Sprintf(CategoriesKey, line), &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// InvalidateCategories drops the cached list of the given lines.
func (c *Cache) InvalidateCategories(ctx context.Context, lines ...models.ServiceLine) error {
	if len(lines) == 0 {
		return nil
	}
	keys := make([]string, 0, len(lines))
	for _, line := range lines {
		keys = append(keys, fmt.Sprintf(CategoriesKey, line))
	}
	return c.client.Del(ctx, keys...).Err()
}

// CacheSystemHealth caches the last health report
func (c *Cache) CacheSystemHealth(ctx context.Context, health map[string]string, expiration time.Duration) error {
	return c.setJSON(ctx, SystemHealthKey, health, expiration)
}

func (c *Cache) GetCachedSystemHealth(ctx context.Context) (map[string]string, error) {
	var health map[string]string
	if err := c.getJSON(ctx, SystemHealthKey, &health); err != nil {
		return nil, err
	}
	return health, nil
}
