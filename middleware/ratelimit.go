package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"specter-vision/models"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client key
type RateLimiter struct {
	limiters  map[string]*visitor
	mutex     sync.Mutex
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows limit requests per window for each key.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*visitor),
		limit:    rate.Limit(float64(limit) / window.Seconds()),
		burst:    limit,
		idle:     window * 3,
	}
}

// Allow checks if a request from the given key should be allowed
func (rl *RateLimiter) Allow(key string) bool {
	return rl.allowAt(key, time.Now())
}

func (rl *RateLimiter) allowAt(key string, now time.Time) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	// Forget clients that have been quiet long enough to have a full bucket
	// again. The scan runs at most once per idle interval.
	if now.Sub(rl.lastSweep) > rl.idle {
		for k, v := range rl.limiters {
			if now.Sub(v.lastSeen) > rl.idle {
				delete(rl.limiters, k)
			}
		}
		rl.lastSweep = now
	}

	v, exists := rl.limiters[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// RateLimitMiddleware limits requests per client IP. A non-positive limit
// disables limiting.
func RateLimitMiddleware(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := NewRateLimiter(limit, window)
	retryAfter := strconv.Itoa(retryAfterSeconds(limit, window))

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		if !limiter.Allow(clientIP) {
			log.Warnf("Rate limit exceeded for IP: %s", clientIP)
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.AnalysisError{
				Success: false,
				Error:   "RateLimitExceeded",
				Message: "Too many requests, try again later",
			})
			return
		}

		c.Next()
	}
}

// retryAfterSeconds is the time for one token to refill, rounded up.
func retryAfterSeconds(limit int, window time.Duration) int {
	return max(1, int(math.Ceil(window.Seconds()/float64(limit))))
}
