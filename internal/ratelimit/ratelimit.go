// Package ratelimit provides a fixed-window request limiter backed by a
// swappable counter store.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bellamoda/salon-bookings/pkg/logger"
)

// CounterStore increments a window-scoped counter and reports its value.
// Implementations own expiry of the window.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

type Limiter struct {
	store    CounterStore
	requests int
	window   time.Duration
}

func NewLimiter(store CounterStore, requests int, window time.Duration) *Limiter {
	return &Limiter{
		store:    store,
		requests: requests,
		window:   window,
	}
}

// Middleware limits by client IP. Store errors fail open: rate limiting is
// protection, not a correctness gate.
func (l *Limiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(r.Context(), clientIP(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"Too many requests. Try again later."}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (l *Limiter) allow(ctx context.Context, key string) bool {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	// Hash the key for privacy
	hashed := fmt.Sprintf("ratelimit:%x", sha256.Sum256([]byte(key)))

	count, err := l.store.Incr(ctx, hashed, l.window)
	if err != nil {
		logger.WarnContext(ctx, "Rate limit store error, failing open", "error", err)
		return true
	}
	return count <= int64(l.requests)
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
