package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

type ipLimiter struct {
	limiter *rate.Limiter
	last    time.Time
}

// RateLimiter keeps one token bucket per client IP. Buckets idle for longer
// than the idle window are dropped by Run.
type RateLimiter struct {
	rps    rate.Limit
	burst  int
	idle   time.Duration
	logger zerolog.Logger

	mu       sync.Mutex
	limiters map[string]*ipLimiter
}

func NewRateLimiter(rps float64, burst int, logger zerolog.Logger) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		idle:     3 * time.Minute,
		logger:   logger.With().Str("component", "rate_limiter").Logger(),
		limiters: make(map[string]*ipLimiter),
	}
}

func (l *RateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[ip] = entry
	}
	entry.last = time.Now()
	return entry.limiter.Allow()
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.rps <= 0 {
			c.Next()
			return
		}
		if !l.Allow(c.ClientIP()) {
			l.logger.Warn().Str("client_ip", c.ClientIP()).Str("path", c.FullPath()).Msg("Rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, domain.ApiResponse{
				Message:   "rate limit exceeded",
				Success:   false,
				Status:    http.StatusTooManyRequests,
				RequestID: c.GetString(RequestIDKey),
			})
			return
		}
		c.Next()
	}
}

// Run evicts idle buckets every minute until ctx is done.
func (l *RateLimiter) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.evict(time.Now().Add(-l.idle))
		}
	}
}

func (l *RateLimiter) evict(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for ip, entry := range l.limiters {
		if entry.last.Before(cutoff) {
			delete(l.limiters, ip)
		}
	}
}
