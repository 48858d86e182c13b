package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Alijeyrad/pms_backend/config"
)

func TestOptionsDefaults(t *testing.T) {
	opts := Options(config.RedisConfig{Addr: "localhost:6379"})
	assert.Equal(t, 10, opts.PoolSize)
	assert.Equal(t, 2, opts.MinIdleConns)
	assert.Equal(t, 5*time.Second, opts.DialTimeout)
	assert.Equal(t, 3*time.Second, opts.ReadTimeout)

	opts = Options(config.RedisConfig{Addr: "r:6379", PoolSize: 50, ReadTimeoutSeconds: 1, DB: 2})
	assert.Equal(t, 50, opts.PoolSize)
	assert.Equal(t, time.Second, opts.ReadTimeout)
	assert.Equal(t, 2, opts.DB)
}

func TestNewRedisRequiresAddr(t *testing.T) {
	_, err := NewRedis(context.Background(), config.RedisConfig{})
	assert.Error(t, err)
}
