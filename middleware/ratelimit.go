package middleware

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/roamio/discovery-api/utils"
	"golang.org/x/time/rate"
)

// KeyedLimiter hands out one token bucket per key (user ID, client IP).
// Buckets are process-local; under a multi-instance deployment the effective
// rate is per instance, which is documented as best-effort.
type KeyedLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	perSec  rate.Limit
	burst   int
}

// NewKeyedLimiter allows ratePerMinute sustained events with the given burst.
func NewKeyedLimiter(ratePerMinute, burst int) *KeyedLimiter {
	if ratePerMinute <= 0 {
		ratePerMinute = 10
	}
	if burst <= 0 {
		burst = 1
	}
	return &KeyedLimiter{
		buckets: make(map[string]*rate.Limiter),
		perSec:  rate.Limit(float64(ratePerMinute) / 60.0),
		burst:   burst,
	}
}

func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	bucket, ok := l.buckets[key]
	if !ok {
		bucket = rate.NewLimiter(l.perSec, l.burst)
		l.buckets[key] = bucket
	}
	l.mu.Unlock()
	return bucket.Allow()
}

// RateLimitPerUser bounds write amplification from a single session. Must run
// after AuthMiddleware.
func RateLimitPerUser(limiter *KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := utils.GetUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
			c.Abort()
			return
		}
		if !limiter.Allow(strconv.FormatUint(uint64(user.UserID), 10)) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimitPerIP protects the public discovery surface.
func RateLimitPerIP(limiter *KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
