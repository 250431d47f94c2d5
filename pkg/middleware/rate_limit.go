package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/queue-buddy/pkg/logger"
	"github.com/prohmpiriya/queue-buddy/pkg/response"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig configures the fixed-window limiter
type RateLimitConfig struct {
	Requests  int
	Window    time.Duration
	KeyPrefix string
	// KeyFunc identifies the caller. Defaults to the session_id path param, then client IP.
	KeyFunc func(c *gin.Context) string
}

func defaultRateLimitKey(c *gin.Context) string {
	if id := c.Param("session_id"); id != "" {
		return "session:" + id
	}
	return "ip:" + c.ClientIP()
}

// RateLimit counts requests per caller in Redis with INCR and EXPIRE.
// Redis failures let the request through.
func RateLimit(rdb redis.Cmdable, cfg RateLimitConfig, log *logger.Logger) gin.HandlerFunc {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "ratelimit:"
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = defaultRateLimitKey
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := cfg.KeyPrefix + cfg.KeyFunc(c)

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Warn("Rate limit check failed", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			if err := rdb.Expire(ctx, key, cfg.Window).Err(); err != nil {
				log.Warn("Rate limit expire failed", zap.String("key", key), zap.Error(err))
			}
		}

		remaining := int64(cfg.Requests) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(cfg.Requests) {
			c.Header("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
			response.Error(c, http.StatusTooManyRequests, "RATE_LIMITED",
				"Too many requests", fmt.Sprintf("limit is %d per %s", cfg.Requests, cfg.Window))
			c.Abort()
			return
		}

		c.Next()
	}
}
