// internal/repository/cache.go
package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"talent-pipeline/internal/common/logger"
	"talent-pipeline/internal/models"
)

// CachedRepository is a read-through cache decorator over an
// ApplicationRepository. GetByID is served from Redis when possible; every
// write invalidates the cached entry before delegating. Cache failures
// degrade to the underlying store and are logged, never surfaced.
type CachedRepository struct {
	inner  ApplicationRepository
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedRepository(inner ApplicationRepository, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedRepository {
	return &CachedRepository{
		inner:  inner,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "application-cache"}),
	}
}

func cacheKey(id string) string {
	return "application:" + id
}

func (c *CachedRepository) Create(ctx context.Context, app models.Application) (models.Application, error) {
	created, err := c.inner.Create(ctx, app)
	if err != nil {
		return models.Application{}, err
	}
	c.invalidate(ctx, created.ID)
	return created, nil
}

func (c *CachedRepository) GetByID(ctx context.Context, id string) (models.Application, error) {
	if val, err := c.redis.Get(ctx, cacheKey(id)).Result(); err == nil {
		var app models.Application
		if err := json.Unmarshal([]byte(val), &app); err == nil {
			return app, nil
		}
	}

	app, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return models.Application{}, err
	}

	if data, err := json.Marshal(app); err == nil {
		if err := c.redis.Set(ctx, cacheKey(id), data, c.ttl).Err(); err != nil {
			c.logger.Warn("cache set failed", map[string]interface{}{
				"error":         err,
				"applicationId": id,
			})
		}
	}
	return app, nil
}

func (c *CachedRepository) Update(ctx context.Context, app models.Application) (models.Application, error) {
	// Invalidate before the write so a racing read cannot re-cache the old row.
	c.invalidate(ctx, app.ID)

	updated, err := c.inner.Update(ctx, app)
	if err != nil {
		return models.Application{}, err
	}
	c.invalidate(ctx, updated.ID)
	return updated, nil
}

func (c *CachedRepository) List(ctx context.Context, filter Filter) ([]models.Application, error) {
	return c.inner.List(ctx, filter)
}

func (c *CachedRepository) ActiveExists(ctx context.Context, candidateID, jobID string) (bool, error) {
	return c.inner.ActiveExists(ctx, candidateID, jobID)
}

func (c *CachedRepository) invalidate(ctx context.Context, id string) {
	if err := c.redis.Del(ctx, cacheKey(id)).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", map[string]interface{}{
			"error":         err,
			"applicationId": id,
		})
	}
}
