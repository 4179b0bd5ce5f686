package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"serverrewards/pkg/apierror"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures the per-user limiter.
type RateLimitConfig struct {
	RPS   float64
	Burst int
	// Param is the path parameter naming the user, "user_id" by default.
	Param string
	// IdleTTL drops limiters for users that have been quiet this long.
	IdleTTL time.Duration
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per path user.
type RateLimiter struct {
	cfg RateLimitConfig

	mu       sync.Mutex
	limiters map[string]*userLimiter
	lastGC   time.Time
	now      func() time.Time
}

// NewRateLimiter creates a limiter. A non-positive RPS disables limiting.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Param == "" {
		cfg.Param = "user_id"
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{
		cfg:      cfg,
		limiters: make(map[string]*userLimiter),
		now:      time.Now,
	}
}

// Allow reports whether key may make another request now.
func (l *RateLimiter) Allow(key string) bool {
	if l.cfg.RPS <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastGC) > l.cfg.IdleTTL {
		for k, ul := range l.limiters {
			if now.Sub(ul.lastSeen) > l.cfg.IdleTTL {
				delete(l.limiters, k)
			}
		}
		l.lastGC = now
	}

	ul, ok := l.limiters[key]
	if !ok {
		ul = &userLimiter{limiter: rate.NewLimiter(rate.Limit(l.cfg.RPS), l.cfg.Burst)}
		l.limiters[key] = ul
	}
	ul.lastSeen = now
	return ul.limiter.AllowN(now, 1)
}

// Len returns the number of tracked users.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Middleware rejects requests over the user's rate with 429.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, l.cfg.Param)
		if key == "" {
			key = r.RemoteAddr
		}

		if !l.Allow(key) {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter(l.cfg.RPS)))
			writeError(w, &apierror.Error{
				StatusCode: http.StatusTooManyRequests,
				Code:       "RATE_LIMITED",
				Message:    "Too many commands, slow down",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func retryAfter(rps float64) int {
	if rps >= 1 {
		return 1
	}
	return int(1/rps + 0.5)
}
