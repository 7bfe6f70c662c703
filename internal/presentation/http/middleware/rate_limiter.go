package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/presentation/http/dto/response"
	"golang.org/x/time/rate"
)

// TenantRateLimiter gives every organization its own token bucket so one
// busy organization cannot starve the others.
type TenantRateLimiter struct {
	mu       sync.Mutex
	buckets  map[uuid.UUID]*bucket
	rate     rate.Limit
	burst    int
	cleanup  time.Duration
	entryTTL time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterConfig holds configuration for the rate limiter
type RateLimiterConfig struct {
	RequestsPerSecond float64       // sustained rate per organization
	BurstSize         int           // requests allowed at once
	CleanupInterval   time.Duration // how often idle buckets are dropped
	EntryTTL          time.Duration // idle time before a bucket is dropped
}

// DefaultRateLimiterConfig returns sensible defaults
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
		CleanupInterval:   5 * time.Minute,
		EntryTTL:          10 * time.Minute,
	}
}

// NewTenantRateLimiter creates a new per-organization rate limiter. Quote
// numbering and PDF rendering are the costly paths it protects.
func NewTenantRateLimiter(cfg RateLimiterConfig) *TenantRateLimiter {
	rl := &TenantRateLimiter{
		buckets:  make(map[uuid.UUID]*bucket),
		rate:     rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.BurstSize,
		cleanup:  cfg.CleanupInterval,
		entryTTL: cfg.EntryTTL,
		done:     make(chan struct{}),
	}
	go rl.evictLoop()
	return rl
}

// Close stops the eviction loop
func (rl *TenantRateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *TenantRateLimiter) limiterFor(tenantID uuid.UUID) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[tenantID]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.buckets[tenantID] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

func (rl *TenantRateLimiter) evictLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case now := <-ticker.C:
			rl.evictIdle(now)
		}
	}
}

func (rl *TenantRateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.entryTTL)
	for id, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, id)
		}
	}
}

// Middleware applies the limit of the caller's organization. Requests
// without an organization are not limited. A throttled request gets a 429
// whose Retry-After says when the next token is due.
func (rl *TenantRateLimiter) Middleware() gin.HandlerFunc {
	limit := strconv.Itoa(rl.burst)

	return func(c *gin.Context) {
		tenantID := GetTenantID(c)
		if tenantID == uuid.Nil {
			c.Next()
			return
		}

		limiter := rl.limiterFor(tenantID)
		c.Header("X-RateLimit-Limit", limit)

		reservation := limiter.Reserve()
		if delay := reservation.Delay(); !reservation.OK() || delay > 0 {
			reservation.Cancel()
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(delay)))
			response.ErrorWithCode(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(int(limiter.Tokens()), 0)))
		c.Next()
	}
}

func retryAfterSeconds(delay time.Duration) int {
	if delay <= 0 || delay == rate.InfDuration {
		return 1
	}
	return int(math.Ceil(delay.Seconds()))
}

// Stats returns current statistics about the rate limiter
func (rl *TenantRateLimiter) Stats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]interface{}{
		"active_tenants":      len(rl.buckets),
		"rate_per_second":     float64(rl.rate),
		"burst_size":          rl.burst,
		"cleanup_interval_ms": rl.cleanup.Milliseconds(),
		"entry_ttl_ms":        rl.entryTTL.Milliseconds(),
	}
}
