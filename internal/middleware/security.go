package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/AnshRaj112/decision-journal-backend/pkg/clientip"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerXXSSProtection          = "X-XSS-Protection"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerXContentTypeOptions, "nosniff")
		w.Header().Set(headerXFrameOptions, "DENY")
		w.Header().Set(headerXXSSProtection, "1; mode=block")
		w.Header().Set(headerContentSecurityPolicy, "default-src 'self'")
		w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// HostCheck returns 403 when r.Host does not match allowedHost (e.g. api.journal.example).
// allowedHost should be the bare hostname without scheme or port. Empty disables the check.
func HostCheck(allowedHost string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowedHost == "" {
				next.ServeHTTP(w, r)
				return
			}
			reqHost := r.Host
			if host, _, err := net.SplitHostPort(reqHost); err == nil {
				reqHost = host
			}
			if !strings.EqualFold(strings.TrimSpace(reqHost), strings.TrimSpace(allowedHost)) {
				writeError(w, http.StatusForbidden, "forbidden", "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

const (
	globalRateLimitRPS    = 1
	globalRateLimitBurst  = 10
	loginRateLimitEvery   = 5 * time.Second
	loginRateLimitBurst   = 2
	limiterCleanupPeriod  = 5 * time.Minute
	limiterIdleExpiration = 30 * time.Minute
)

var loginPaths = map[string]bool{
	"/auth/login":    true,
	"/auth/register": true,
}

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// limiterSet keeps one token bucket per client IP and forgets idle ones.
type limiterSet struct {
	mu         sync.Mutex
	entries    map[string]*limiterEntry
	newLimiter func() *rate.Limiter
	sweeper    sync.Once
}

func newLimiterSet(newLimiter func() *rate.Limiter) *limiterSet {
	return &limiterSet{entries: make(map[string]*limiterEntry), newLimiter: newLimiter}
}

func (s *limiterSet) allow(ip string) bool {
	s.sweeper.Do(func() { go s.sweep() })

	s.mu.Lock()
	e, ok := s.entries[ip]
	if !ok {
		e = &limiterEntry{limiter: s.newLimiter()}
		s.entries[ip] = e
	}
	e.lastUse = time.Now()
	s.mu.Unlock()

	return e.limiter.Allow()
}

func (s *limiterSet) sweep() {
	ticker := time.NewTicker(limiterCleanupPeriod)
	defer ticker.Stop()
	for range ticker.C {
		s.prune(time.Now())
	}
}

func (s *limiterSet) prune(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ip, e := range s.entries {
		if now.Sub(e.lastUse) > limiterIdleExpiration {
			delete(s.entries, ip)
		}
	}
}

// GlobalRateLimit limits each IP to 1 req/s, burst 10. Returns 429 when exceeded.
func GlobalRateLimit() func(http.Handler) http.Handler {
	limiters := newLimiterSet(func() *rate.Limiter {
		return rate.NewLimiter(rate.Limit(globalRateLimitRPS), globalRateLimitBurst)
	})
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.allow(clientip.RealClientIP(r)) {
				writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please slow down.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginRateLimit applies a stricter limit (1 req/5s, burst 2) to login and
// register only. Use after GlobalRateLimit.
func LoginRateLimit() func(http.Handler) http.Handler {
	limiters := newLimiterSet(func() *rate.Limiter {
		return rate.NewLimiter(rate.Every(loginRateLimitEvery), loginRateLimitBurst)
	})
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !loginPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			if !limiters.allow(clientip.RealClientIP(r)) {
				writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many login attempts. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ProductionSecurity returns middlewares for production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit.
func ProductionSecurity(allowedHost string) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders,
		HostCheck(allowedHost),
		GlobalRateLimit(),
		LoginRateLimit(),
	}
}
