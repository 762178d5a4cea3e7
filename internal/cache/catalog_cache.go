package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lshigami/attempt-engine/internal/model"
	"github.com/lshigami/attempt-engine/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const catalogKeyPrefix = "attempt-engine:catalog:template:"

// CatalogCache is a read-through Redis cache in front of the question
// repository. Templates are read-only to the engine, so entries only expire.
// Redis failures fall back to the database.
type CatalogCache struct {
	client *redis.Client
	next   repository.QuestionRepository
	ttl    time.Duration
}

// NewCatalogCache wraps next. A nil client returns next unchanged.
func NewCatalogCache(client *redis.Client, next repository.QuestionRepository, ttl time.Duration) repository.QuestionRepository {
	if client == nil {
		return next
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogCache{client: client, next: next, ttl: ttl}
}

func catalogKey(templateID uint) string {
	return fmt.Sprintf("%s%d", catalogKeyPrefix, templateID)
}

func (c *CatalogCache) FindByTemplateID(ctx context.Context, templateID uint) ([]model.Question, error) {
	var questions []model.Question
	err := c.cacheOrExecute(ctx, catalogKey(templateID), &questions, func() (interface{}, error) {
		return c.next.FindByTemplateID(ctx, templateID)
	})
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// Invalidate drops the cached questions of a template.
func (c *CatalogCache) Invalidate(ctx context.Context, templateID uint) error {
	return c.client.Del(ctx, catalogKey(templateID)).Err()
}

// cacheOrExecute decodes the cached value into dest, or runs fn, stores its
// JSON and decodes that into dest.
func (c *CatalogCache) cacheOrExecute(ctx context.Context, key string, dest interface{}, fn func() (interface{}, error)) error {
	cached, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		jsonErr := json.Unmarshal(cached, dest)
		if jsonErr == nil {
			return nil
		}
		log.Warn().Err(jsonErr).Str("key", key).Msg("CatalogCache: dropping undecodable entry")
	case errors.Is(err, redis.Nil):
	default:
		log.Warn().Err(err).Str("key", key).Msg("CatalogCache: redis read failed, using database")
	}

	value, err := fn()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value for %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("CatalogCache: redis write failed")
	}
	return json.Unmarshal(payload, dest)
}
