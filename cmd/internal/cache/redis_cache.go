package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ganiszulfa/okblog/search/cmd/internal/models"
)

const keyPrefix = "search:v1"

type RedisCache struct {
	client *redis.Client
	scope  string
	ttl    time.Duration
}

// NewRedisCache stores responses for one index and query mode; both are part
// of every key so a config change never serves stale shapes.
func NewRedisCache(client *redis.Client, index, mode string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		scope:  index + ":" + mode,
		ttl:    ttl,
	}
}

// Key derives the cache key of a request from its normalized form.
func (c *RedisCache) Key(req models.SearchRequest) string {
	normalized, _ := json.Marshal(struct {
		Query  string   `json:"q"`
		Fields []string `json:"f"`
		From   int      `json:"o"`
		Size   int      `json:"s"`
	}{req.Query, req.MatchFields(), req.Offset(), req.Limit()})

	sum := sha256.Sum256(normalized)
	return fmt.Sprintf("%s:%s:%s", keyPrefix, c.scope, hex.EncodeToString(sum[:]))
}

// Get retrieves a search response from cache
func (c *RedisCache) Get(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	data, err := c.client.Get(ctx, c.Key(req)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var resp models.SearchResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached data: %w", err)
	}
	if resp.Hits == nil {
		resp.Hits = []models.Post{}
	}

	return &resp, nil
}

// Set stores a search response in cache with the configured TTL
func (c *RedisCache) Set(ctx context.Context, req models.SearchRequest, resp *models.SearchResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal search response: %w", err)
	}

	if err := c.client.Set(ctx, c.Key(req), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

// Ping checks if Redis is available
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
