package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipLimiter holds one client's token bucket and its last access time so
// stale entries can be swept.
type ipLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// loginRateLimiter throttles login attempts per client IP.
type loginRateLimiter struct {
	mu          sync.Mutex
	perIP       map[string]*ipLimiter
	rate        rate.Limit
	burst       int
	lastCleanup time.Time
}

const limiterTTL = 10 * time.Minute

func newLoginRateLimiter(perMinute, burst int) *loginRateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 5
	}
	return &loginRateLimiter{
		perIP:       make(map[string]*ipLimiter),
		rate:        rate.Limit(float64(perMinute) / 60.0),
		burst:       burst,
		lastCleanup: time.Now(),
	}
}

func (l *loginRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastCleanup) > limiterTTL {
		for key, entry := range l.perIP {
			if now.Sub(entry.lastAccess) > limiterTTL {
				delete(l.perIP, key)
			}
		}
		l.lastCleanup = now
	}

	entry, ok := l.perIP[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.perIP[ip] = entry
	}
	entry.lastAccess = now

	return entry.limiter.Allow()
}

// LoginRateLimitMiddleware answers 429 when a client exceeds its login
// attempt allowance.
func (s *Server) LoginRateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.loginLimiter.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeJSONError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many login attempts. Please try again later.")
			return
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, found := strings.Cut(forwarded, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
