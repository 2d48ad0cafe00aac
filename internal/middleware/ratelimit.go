package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"workbridge/api/internal/config"
)

// RateLimit applies a fixed-window request count per client IP, backed by
// redis so the window survives restarts and is shared across replicas.
// Paths on the exemption list (health check, API docs) are never limited.
// A redis failure fails open with a warning: degraded limiting beats a
// full outage of legitimate traffic.
func RateLimit(cfg config.RateLimitConfig, client *redis.Client, log zerolog.Logger) gin.HandlerFunc {
	exempt := make(map[string]struct{}, len(cfg.ExemptPaths))
	for _, path := range cfg.ExemptPaths {
		exempt[path] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := exempt[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s", c.ClientIP())
		ctx := c.Request.Context()

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("rate limit counter unavailable")
			c.Next()
			return
		}
		if count == 1 {
			if err := client.Expire(ctx, key, cfg.TTL).Err(); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("rate limit expiry not set")
			}
		}

		if count > int64(cfg.Limit) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "rate_limited"})
			return
		}

		c.Next()
	}
}
