package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/ganiszulfa/okblog/search/cmd/internal/models"
)

func intPtr(n int) *int { return &n }

func newTestCache(index, mode string) *RedisCache {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	return NewRedisCache(client, index, mode, time.Minute)
}

func TestKeyAppliesRequestDefaults(t *testing.T) {
	c := newTestCache("posts", "hybrid")

	implicit := models.SearchRequest{Query: "go"}
	explicit := models.SearchRequest{
		Query:  "go",
		Fields: []string{"title", "content"},
		From:   intPtr(0),
		Size:   intPtr(10),
	}

	assert.Equal(t, c.Key(implicit), c.Key(explicit))
	assert.True(t, strings.HasPrefix(c.Key(implicit), "search:v1:posts:hybrid:"))
}

func TestKeyDistinguishesRequests(t *testing.T) {
	c := newTestCache("posts", "hybrid")
	base := models.SearchRequest{Query: "go"}

	variants := []models.SearchRequest{
		{Query: "rust"},
		{Query: "go", Fields: []string{"title"}},
		{Query: "go", From: intPtr(10)},
		{Query: "go", Size: intPtr(5)},
	}
	for _, v := range variants {
		assert.NotEqual(t, c.Key(base), c.Key(v))
	}

	other := newTestCache("posts", "multi_match")
	assert.NotEqual(t, c.Key(base), other.Key(base))
}

func TestGetUnavailableRedis(t *testing.T) {
	c := newTestCache("posts", "hybrid")

	resp, err := c.Get(context.Background(), models.SearchRequest{Query: "go"})
	assert.Error(t, err)
	assert.Nil(t, resp)

	assert.Error(t, c.Ping(context.Background()))
}
