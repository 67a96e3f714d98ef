package redis

import (
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"story-weaver-api/internal/config"
)

func TestOptions(t *testing.T) {
	opts := options(&config.RedisConfig{
		Host:        "cache",
		Port:        6380,
		DB:          2,
		PoolSize:    8,
		DialTimeout: 3 * time.Second,
	})
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 8, opts.PoolSize)
	assert.Equal(t, 3*time.Second, opts.DialTimeout)
}

func TestIsNil(t *testing.T) {
	assert.True(t, IsNil(redis.Nil))
	assert.True(t, IsNil(fmt.Errorf("get: %w", redis.Nil)))
	assert.False(t, IsNil(fmt.Errorf("timeout")))
}
