package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberredis "github.com/gofiber/storage/redis/v3"
	"github.com/redis/go-redis/v9"

	"github.com/Alijeyrad/pms_backend/config"
)

// NewLimiterWithRedis shares limiter counters across instances through Redis.
func NewLimiterWithRedis(rdb *redis.Client, cfg config.RateLimitConfig) fiber.Handler {
	max := cfg.RequestsPerWindow
	if max <= 0 {
		max = 20
	}
	window := time.Duration(cfg.WindowSeconds) * time.Second
	if window <= 0 {
		window = 30 * time.Second
	}

	storage := fiberredis.NewFromConnection(rdb)
	return limiter.New(limiter.Config{
		Storage: storage,

		// sliding window
		Max:               max,
		Expiration:        window,
		LimiterMiddleware: limiter.SlidingWindow{},
		LimitReached: func(c fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Request was throttled.")
		},
	})
}
