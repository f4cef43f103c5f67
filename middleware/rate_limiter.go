package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"gripinvest/utils"

	"github.com/redis/go-redis/v9"
)

// Store counts hits per key in fixed windows. The window starts at the first
// hit and the key expires with it.
type Store interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
	Count(ctx context.Context, key string) (count int64, ttl time.Duration, err error)
	Reset(ctx context.Context, key string) error
}

// NewStore returns a redis store when a client is given and an in-memory one otherwise.
func NewStore(rdb *redis.Client) Store {
	if rdb == nil {
		return NewMemoryStore()
	}
	return &RedisStore{rdb: rdb, prefix: "rl:"}
}

type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func (s *RedisStore) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	k := s.prefix + key
	n, err := s.rdb.Incr(ctx, k).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("incr %s: %w", k, err)
	}
	if n == 1 {
		if err := s.rdb.PExpire(ctx, k, window).Err(); err != nil {
			return n, window, fmt.Errorf("expire %s: %w", k, err)
		}
		return n, window, nil
	}
	ttl, err := s.rdb.PTTL(ctx, k).Result()
	if err != nil {
		return n, window, fmt.Errorf("pttl %s: %w", k, err)
	}
	if ttl < 0 {
		// counter lost its expiry; restart the window
		_ = s.rdb.PExpire(ctx, k, window).Err()
		ttl = window
	}
	return n, ttl, nil
}

func (s *RedisStore) Count(ctx context.Context, key string) (int64, time.Duration, error) {
	k := s.prefix + key
	v, err := s.rdb.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("get %s: %w", k, err)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse %s: %w", k, err)
	}
	ttl, err := s.rdb.PTTL(ctx, k).Result()
	if err != nil {
		return n, 0, fmt.Errorf("pttl %s: %w", k, err)
	}
	if ttl < 0 {
		ttl = 0
	}
	return n, ttl, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.prefix+key).Err()
}

type memoryWindow struct {
	count   int64
	resetAt time.Time
}

// MemoryStore is the single-instance fallback used when redis is not configured.
type MemoryStore struct {
	mu        sync.Mutex
	state     map[string]memoryWindow
	now       func() time.Time
	lastSweep time.Time
	sweep     time.Duration
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: make(map[string]memoryWindow), now: time.Now, sweep: time.Minute}
}

func (s *MemoryStore) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.cleanup(now)
	w, ok := s.state[key]
	if !ok || !now.Before(w.resetAt) {
		w = memoryWindow{resetAt: now.Add(window)}
	}
	w.count++
	s.state[key] = w
	return w.count, w.resetAt.Sub(now), nil
}

func (s *MemoryStore) Count(_ context.Context, key string) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	w, ok := s.state[key]
	if !ok || !now.Before(w.resetAt) {
		return 0, 0, nil
	}
	return w.count, w.resetAt.Sub(now), nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.state, key)
	s.mu.Unlock()
	return nil
}

// cleanup drops expired windows at most once per sweep interval. Caller holds mu.
func (s *MemoryStore) cleanup(now time.Time) {
	if now.Sub(s.lastSweep) < s.sweep {
		return
	}
	s.lastSweep = now
	for k, w := range s.state {
		if !now.Before(w.resetAt) {
			delete(s.state, k)
		}
	}
}

// Decision is the outcome of one rate-limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter allows Max hits per key within Window.
type Limiter struct {
	Store          Store
	Scope          string
	Max            int
	Window         time.Duration
	TrustedProxies []string
	Metrics        *Metrics
	Log            *slog.Logger
}

// Allow records a hit for key. Store failures let the request through.
func (l *Limiter) Allow(ctx context.Context, key string) Decision {
	if l == nil || l.Max <= 0 {
		return Decision{Allowed: true}
	}
	count, ttl, err := l.Store.Hit(ctx, l.Scope+":"+key, l.Window)
	if err != nil {
		l.logger().Warn("rate limiter store failed", "scope", l.Scope, "error", err)
		return Decision{Allowed: true, Limit: l.Max, Remaining: l.Max}
	}
	d := Decision{Limit: l.Max, Remaining: l.Max - int(count), Allowed: count <= int64(l.Max)}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if !d.Allowed {
		d.RetryAfter = ttl
		l.Metrics.RateLimited(l.Scope)
	}
	return d
}

// Middleware limits requests per client IP.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := l.Allow(r.Context(), clientIPGeneric(r, l.TrustedProxies))
		if d.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		}
		if !d.Allowed {
			WriteTooManyRequests(w, d.RetryAfter)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP resolves the caller address honoring the limiter's trusted proxies.
func (l *Limiter) ClientIP(r *http.Request) string {
	if l == nil {
		return clientIPGeneric(r, nil)
	}
	return clientIPGeneric(r, l.TrustedProxies)
}

func (l *Limiter) logger() *slog.Logger {
	if l.Log != nil {
		return l.Log
	}
	return slog.Default()
}

// WriteTooManyRequests writes the 429 envelope with Retry-After in whole seconds.
func WriteTooManyRequests(w http.ResponseWriter, retryAfter time.Duration) {
	secs := int(math.Ceil(retryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
		Success: false,
		Message: "Too many requests, please try again later.",
		Data:    map[string]int{"retry_after_seconds": secs},
	})
}

// clientIPGeneric returns the client IP string. If trustedCIDR is provided,
// X-Forwarded-For / X-Real-IP headers are honored when remote addr is inside
// one of the trusted CIDRs or IPs.
func clientIPGeneric(r *http.Request, trustedCIDR []string) string {
	remoteHost, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteHost = r.RemoteAddr
	}
	if isTrustedProxy(net.ParseIP(remoteHost), trustedCIDR) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
		if xr := strings.TrimSpace(r.Header.Get("X-Real-IP")); xr != "" {
			return xr
		}
	}
	return remoteHost
}

func isTrustedProxy(remote net.IP, trusted []string) bool {
	if remote == nil {
		return false
	}
	for _, entry := range trusted {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			if _, ipnet, err := net.ParseCIDR(entry); err == nil && ipnet.Contains(remote) {
				return true
			}
			continue
		}
		if ip := net.ParseIP(entry); ip != nil && ip.Equal(remote) {
			return true
		}
	}
	return false
}
