package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ipLimiter is a sliding-window counter keyed by client IP.
type ipLimiter struct {
	mu      sync.Mutex
	entries map[string]*ipWindow
	limit   int
	window  time.Duration
	message string
}

type ipWindow struct {
	count     int
	windowEnd time.Time
}

func newIPLimiter(limit int, window time.Duration, message string) *ipLimiter {
	l := &ipLimiter{
		entries: make(map[string]*ipWindow),
		limit:   limit,
		window:  window,
		message: message,
	}
	go l.purgeLoop()
	return l
}

func (l *ipLimiter) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		l.mu.Lock()
		entry, ok := l.entries[ip]
		if !ok || now.After(entry.windowEnd) {
			entry = &ipWindow{windowEnd: now.Add(l.window)}
			l.entries[ip] = entry
		}
		entry.count++
		exceeded := entry.count > l.limit
		retryAfter := entry.windowEnd
		l.mu.Unlock()

		if exceeded {
			c.Header("Retry-After", retryAfter.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.message))
			return
		}
		c.Next()
	}
}

// purgeLoop drops expired windows so IPs that never return do not
// accumulate forever.
func (l *ipLimiter) purgeLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		l.mu.Lock()
		purged := 0
		for ip, entry := range l.entries {
			if now.After(entry.windowEnd) {
				delete(l.entries, ip)
				purged++
			}
		}
		remaining := len(l.entries)
		l.mu.Unlock()

		if purged > 0 {
			log.Debug().
				Int("purged", purged).
				Int("remaining", remaining).
				Msg("rate limiter entries purged")
		}
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newIPLimiter(20, time.Minute, "Too many login attempts. Try again in a minute.").handler()
}

// CheckinRateLimiter caps the public check-in endpoint per scanner device.
// Generous enough for a busy registration desk, tight enough to blunt
// brute-force guessing of QR payloads.
func CheckinRateLimiter() gin.HandlerFunc {
	return newIPLimiter(120, time.Minute, "Too many check-in attempts. Slow down and retry.").handler()
}

// RateLimiter is the general-purpose API limiter applied to every route.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newIPLimiter(limit, window, "Too many requests. Try again shortly.").handler()
}
