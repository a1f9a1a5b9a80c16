package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AnshRaj112/decision-journal-backend/pkg/clientip"
)

const (
	// RateLimitWindow is the counting window per IP.
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the maximum number of requests allowed in the window
	RateLimitMaxRequests = 120
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
	// BlockedIPKeyPrefix is the Redis key prefix for blocked IPs
	BlockedIPKeyPrefix = "blocked_ip:"
	// BlockedIPDuration is how long an IP stays blocked after exceeding the limit.
	BlockedIPDuration = 15 * time.Minute
)

// RedisRateLimiter counts requests per IP in Redis and blocks IPs that go
// over the limit. Redis failures let the request through.
type RedisRateLimiter struct {
	client   *redis.Client
	limit    int
	window   time.Duration
	blockFor time.Duration
	log      *zap.Logger
}

// NewRedisRateLimiter creates a limiter with the package defaults.
func NewRedisRateLimiter(client *redis.Client, log *zap.Logger) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:   client,
		limit:    RateLimitMaxRequests,
		window:   RateLimitWindow,
		blockFor: BlockedIPDuration,
		log:      log.Named("ratelimit"),
	}
}

// WithLimit overrides the request budget per window.
func (l *RedisRateLimiter) WithLimit(limit int, window time.Duration) *RedisRateLimiter {
	l.limit = limit
	l.window = window
	return l
}

// Middleware enforces the limit.
func (l *RedisRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := clientip.ForwardedClientIP(r)

		blocked, err := l.IsBlocked(ctx, ip)
		if err == nil && blocked {
			writeError(w, http.StatusTooManyRequests, "rate_limited",
				"Your IP has been temporarily blocked due to excessive requests. Please try again later.")
			return
		}

		count, err := l.hit(ctx, ip)
		if err != nil {
			l.log.Debug("rate limit unavailable, allowing request", zap.String("ip", ip), zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		if count > int64(l.limit) {
			if err := l.client.Set(ctx, BlockedIPKeyPrefix+ip, "1", l.blockFor).Err(); err != nil {
				l.log.Warn("block ip", zap.String("ip", ip), zap.Error(err))
			}
			l.log.Info("ip blocked", zap.String("ip", ip), zap.Int64("count", count))
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			writeError(w, http.StatusTooManyRequests, "rate_limited",
				"Rate limit exceeded. Your IP has been temporarily blocked. Please try again later.")
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(l.limit)-count, 10))
		next.ServeHTTP(w, r)
	})
}

// IsBlocked checks if an IP is currently blocked.
func (l *RedisRateLimiter) IsBlocked(ctx context.Context, ip string) (bool, error) {
	n, err := l.client.Exists(ctx, BlockedIPKeyPrefix+ip).Result()
	return n > 0, err
}

func (l *RedisRateLimiter) hit(ctx context.Context, ip string) (int64, error) {
	key := RateLimitKeyPrefix + ip
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return 0, err
		}
	}
	return count, nil
}
