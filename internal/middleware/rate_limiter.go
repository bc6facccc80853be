package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"
)

// RateLimiterConfig holds configuration for rate limiting
type RateLimiterConfig struct {
	RPS         float64
	Burst       int
	Window      time.Duration
	RedisClient *redis.Client
}

// RateLimiterMiddleware limits request rates per client IP. With Redis the
// limit is shared across instances; without it a process-local token
// bucket per IP is used.
type RateLimiterMiddleware struct {
	config *RateLimiterConfig

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRateLimiterMiddleware creates a new rate limiter middleware
func NewRateLimiterMiddleware(config *RateLimiterConfig) *RateLimiterMiddleware {
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	return &RateLimiterMiddleware{
		config:   config,
		limiters: make(map[string]*rate.Limiter),
	}
}

// limiterFor returns the token bucket for one client IP, creating it on
// first sight.
func (m *RateLimiterMiddleware) limiterFor(ip string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	limiter, ok := m.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(m.config.RPS), m.config.Burst)
		m.limiters[ip] = limiter
	}
	return limiter
}

// Limit returns the Gin middleware handler
func (m *RateLimiterMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.config.RedisClient == nil {
			if !m.limiterFor(c.ClientIP()).Allow() {
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
					"message": "Rate limit exceeded",
				})
				return
			}
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s", c.ClientIP())
		ctx := c.Request.Context()

		count, err := m.config.RedisClient.Incr(ctx, key).Result()
		if err != nil {
			// Redis being down must not take the API down with it.
			c.Next()
			return
		}
		if count == 1 {
			m.config.RedisClient.Expire(ctx, key, m.config.Window)
		}

		if count > int64(m.config.Burst) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
