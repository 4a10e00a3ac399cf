package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/solutionsheet-api/internal/observability"
)

// pluginConfigCache keeps plugin config maps in redis. A nil client turns
// every call into a miss or a no-op.
type pluginConfigCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func newPluginConfigCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *pluginConfigCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &pluginConfigCache{client: client, ttl: ttl, logger: logger}
}

func pluginConfigCacheKey(pluginName string, assignmentID uint) string {
	return fmt.Sprintf("%s:config:v1:%d", pluginName, assignmentID)
}

func (c *pluginConfigCache) get(ctx context.Context, pluginName string, assignmentID uint) (map[string]string, bool) {
	if c.client == nil {
		return nil, false
	}

	cached, err := c.client.Get(ctx, pluginConfigCacheKey(pluginName, assignmentID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Uint("assignment_id", assignmentID).Msg("failed to read plugin config cache")
		}
		observability.ConfigCache().WithLabelValues("miss").Inc()
		return nil, false
	}

	var values map[string]string
	if err := json.Unmarshal([]byte(cached), &values); err != nil {
		observability.ConfigCache().WithLabelValues("miss").Inc()
		return nil, false
	}

	observability.ConfigCache().WithLabelValues("hit").Inc()
	return values, true
}

// fill caches values read from the database. It never replaces an existing
// entry, so a slow read cannot overwrite a newer write.
func (c *pluginConfigCache) fill(ctx context.Context, pluginName string, assignmentID uint, values map[string]string) {
	if c.client == nil {
		return
	}
	payload, err := json.Marshal(values)
	if err != nil {
		return
	}
	if err := c.client.SetNX(ctx, pluginConfigCacheKey(pluginName, assignmentID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Uint("assignment_id", assignmentID).Msg("failed to cache plugin config")
	}
}

// store writes freshly saved values through to the cache. When that fails the
// entry is dropped so readers go back to the database.
func (c *pluginConfigCache) store(ctx context.Context, pluginName string, assignmentID uint, values map[string]string) {
	if c.client == nil {
		return
	}
	key := pluginConfigCacheKey(pluginName, assignmentID)
	payload, err := json.Marshal(values)
	if err == nil {
		err = c.client.Set(ctx, key, payload, c.ttl).Err()
	}
	if err == nil {
		return
	}

	c.logger.Warn().Err(err).Uint("assignment_id", assignmentID).Msg("failed to write plugin config cache")
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn().Err(err).Uint("assignment_id", assignmentID).Msg("failed to invalidate plugin config cache")
	}
}
