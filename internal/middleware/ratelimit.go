// ratelimit.go implements per-client-IP rate limiting using a token bucket.
//
// How token bucket works:
// - Each client IP gets a "bucket" with N tokens
// - Each request consumes 1 token
// - Tokens refill at a steady rate (N per minute)
// - An empty bucket means 429 Too Many Requests
//
// Smoother than a plain counter: short bursts are absorbed, sustained
// hammering is not. Summary generation costs real money per request, so the
// limiter sits in front of every non-health endpoint.
package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clipdigest/clipdigest-api/internal/models"
)

// RateLimiter tracks request rates per client IP.
type RateLimiter struct {
	// Go Pattern: sync.Mutex guards the bucket map; contention is tiny at
	// this scale.
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   float64 // requests per minute
}

// bucket tracks the token state for a single client.
type bucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewRateLimiter creates a limiter allowing perMinute requests per client IP.
func NewRateLimiter(perMinute int) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   float64(perMinute),
	}

	// Background cleanup so one-off clients don't accumulate forever
	go rl.cleanup()

	return rl
}

// RateLimit returns Gin middleware that enforces the per-IP limit.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining := rl.allow(c.ClientIP())

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%.0f", rl.limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%.0f", remaining))

		if !allowed {
			c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:   "rate_limit_exceeded",
				Message: "Rate limit exceeded. Try again later.",
				Code:    http.StatusTooManyRequests,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// allow checks whether a request from clientIP may proceed, consuming a
// token if so.
func (rl *RateLimiter) allow(clientIP string) (bool, float64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[clientIP]
	if !exists {
		b = &bucket{
			tokens:     rl.limit,
			maxTokens:  rl.limit,
			refillRate: rl.limit / 60.0,
			lastRefill: time.Now(),
		}
		rl.buckets[clientIP] = b
	}

	// Refill tokens based on elapsed time
	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	if b.tokens < 1.0 {
		return false, 0
	}

	b.tokens--
	return true, b.tokens
}

// cleanup periodically removes stale buckets to prevent memory leaks.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for ip, b := range rl.buckets {
			if now.Sub(b.lastRefill) > time.Hour {
				delete(rl.buckets, ip)
			}
		}
		rl.mu.Unlock()
	}
}
