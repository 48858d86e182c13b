// Package redis opens the go-redis client backing sessions and the rate
// limiter.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Alijeyrad/pms_backend/config"
)

func seconds(n, def int) time.Duration {
	if n <= 0 {
		n = def
	}
	return time.Duration(n) * time.Second
}

// Options maps the central config onto go-redis options, filling defaults.
func Options(c config.RedisConfig) *goredis.Options {
	opts := &goredis.Options{
		Addr:         c.Addr,
		Username:     c.Username,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  seconds(c.DialTimeoutSeconds, 5),
		ReadTimeout:  seconds(c.ReadTimeoutSeconds, 3),
		WriteTimeout: seconds(c.WriteTimeoutSeconds, 3),
	}
	if c.PoolSize > 0 {
		opts.PoolSize = c.PoolSize
	}
	if c.MinIdleConns > 0 {
		opts.MinIdleConns = c.MinIdleConns
	}
	return opts
}

// NewRedis connects and pings.
func NewRedis(ctx context.Context, c config.RedisConfig) (*goredis.Client, error) {
	if c.Addr == "" {
		return nil, fmt.Errorf("redis addr is empty")
	}

	rdb := goredis.NewClient(Options(c))
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}
