package fast

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the RateLimit middleware.
type RateLimitConfig struct {
	Rate            float64                                      // requests per second
	Burst           int                                          // max burst
	KeyFunc         func(r *http.Request) string                 // default: remote IP
	OnLimit         func(w http.ResponseWriter, r *http.Request) // default: 429 response
	CleanupInterval time.Duration                                // how often to prune idle limiters, default 1m
	MaxIdle         time.Duration                                // drop limiters idle longer than this, default 5m
}

// RateLimit returns middleware enforcing a token-bucket limit per key.
// Buckets are pruned lazily on request, so no background goroutine runs.
func RateLimit(cfg RateLimitConfig) Middleware {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = remoteIP
	}
	if cfg.OnLimit == nil {
		cfg.OnLimit = func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}
	}
	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	maxIdle := cfg.MaxIdle
	if maxIdle <= 0 {
		maxIdle = 5 * time.Minute
	}

	buckets := &limiterPool{
		limiters: make(map[string]*limiterEntry),
		interval: cleanupInterval,
		maxIdle:  maxIdle,
		newLimiter: func() *rate.Limiter {
			return rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst)
		},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := buckets.get(cfg.KeyFunc(r))
			if !limiter.Allow() {
				retryAfter := strconv.FormatFloat(1/cfg.Rate, 'f', 0, 64)
				w.Header().Set("Retry-After", retryAfter)
				cfg.OnLimit(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterPool struct {
	mu          sync.Mutex
	limiters    map[string]*limiterEntry
	lastCleanup time.Time
	interval    time.Duration
	maxIdle     time.Duration
	newLimiter  func() *rate.Limiter
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if now.Sub(p.lastCleanup) >= p.interval {
		for k, e := range p.limiters {
			if now.Sub(e.lastSeen) > p.maxIdle {
				delete(p.limiters, k)
			}
		}
		p.lastCleanup = now
	}

	entry, ok := p.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: p.newLimiter()}
		p.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
