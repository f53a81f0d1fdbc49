package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_PASSWORD", "pw")
	t.Setenv("REDIS_DB", "2")

	cfg := LoadConfig()
	assert.Equal(t, Config{Host: "cache.internal", Port: "6380", Password: "pw", DB: 2}, cfg)
	assert.Equal(t, "cache.internal:6380", cfg.Addr())
}

func TestConfig_AddrDefaultsPort(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "localhost:6379", Config{Host: "localhost"}.Addr())
}

func TestNewRedisClient_NotConfigured(t *testing.T) {
	t.Parallel()

	rdb, err := NewRedisClient(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Nil(t, rdb)
}
