package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docverify/internal/platform/config"
)

func TestOpen_NotConfigured(t *testing.T) {
	c, err := Open(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestOpen_BadURL(t *testing.T) {
	_, err := Open(context.Background(), config.RedisConfig{URL: "http://cache:6379"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis url")
}

func TestOptions(t *testing.T) {
	opts, err := options(config.RedisConfig{
		URL:         "redis://cache.internal:6380/2",
		PoolSize:    25,
		DialTimeout: 750 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 25, opts.PoolSize)
	assert.Equal(t, 750*time.Millisecond, opts.DialTimeout)

	defaults, err := options(config.RedisConfig{URL: "redis://cache.internal:6379"})
	require.NoError(t, err)
	assert.Zero(t, defaults.MinIdleConns, "zero settings keep the go-redis defaults")
}
