package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"finance_webapp/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis for rate limiting. It returns nil when addr
// is empty or the server does not answer, and the limiter then falls back to
// in-process counters.
func NewRedisClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, using in-process rate limiting", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// RateLimiter is a fixed-window limiter backed by Redis INCR/EXPIRE.
// Key format: rl:<scope>:<window_seconds>:<identifier>
type RateLimiter struct {
	redis    *redis.Client
	fallback *memoryWindow
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{redis: client, fallback: newMemoryWindow()}
}

// PerIP limits by client address. Used in front of identity resolution.
func (l *RateLimiter) PerIP(maxRequests int, window time.Duration) gin.HandlerFunc {
	return l.limit("ip", maxRequests, window, func(c *gin.Context) (string, bool) {
		return c.ClientIP(), true
	})
}

// PerUser limits by the resolved user id. RequireUser must run first.
func (l *RateLimiter) PerUser(maxRequests int, window time.Duration) gin.HandlerFunc {
	return l.limit("user", maxRequests, window, func(c *gin.Context) (string, bool) {
		uid := c.GetString(ContextUserID)
		return uid, uid != ""
	})
}

func (l *RateLimiter) limit(scope string, maxRequests int, window time.Duration, ident func(*gin.Context) (string, bool)) gin.HandlerFunc {
	windowSecs := strconv.FormatInt(int64(window.Seconds()), 10)

	return func(c *gin.Context) {
		id, ok := ident(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		key := "rl:" + scope + ":" + windowSecs + ":" + id

		count, err := l.incr(c.Request.Context(), key, window)
		if err != nil {
			// fail-open on Redis errors
			c.Header("X-RateLimit-Error", "redis-error")
			logger.Warn("rate limiter error", "key", key, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-count), 10))

		if count > int64(maxRequests) {
			RLBlocked.WithLabelValues(scope + ":" + c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues(scope + ":" + c.FullPath()).Inc()
		c.Next()
	}
}

func (l *RateLimiter) incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	if l.redis == nil {
		return l.fallback.incr(key, window), nil
	}

	val, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if val == 1 {
		// first increment, set expiry
		l.redis.Expire(ctx, key, window)
	}
	return val, nil
}
