package middleware

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"showcase/internal/api/response"
	apperror "showcase/internal/errors"
	"showcase/internal/pkg/cache"
	"showcase/internal/pkg/logger"
)

const rateLimitKeyPrefix = "rate-limit:"

// RateLimiter limita requisições por IP numa janela fixa contada no Redis.
// Sem Redis (cache.ErrCacheDisabled) ou com o Redis fora do ar, cai para um
// token bucket local por IP com a mesma vazão média.
func RateLimiter(client cache.Client, limit int, period time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	local := newLocalLimiter(limit, period)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			count, err := client.Incr(r.Context(), rateLimitKeyPrefix+ip, period)
			if err != nil {
				if !errors.Is(err, cache.ErrCacheDisabled) {
					log.Warn("Rate limit distribuído indisponível, usando limite local.", map[string]interface{}{"error": err.Error()})
				}
				if !local.allow(ip) {
					rejectRateLimited(w, r, log, period)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			remaining := int64(limit) - count
			if remaining < 0 {
				rejectRateLimited(w, r, log, period)
				return
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			next.ServeHTTP(w, r)
		})
	}
}

func rejectRateLimited(w http.ResponseWriter, r *http.Request, log logger.Logger, period time.Duration) {
	w.Header().Set("Retry-After", strconv.Itoa(int(period.Seconds())))
	response.Error(w, r, log, apperror.NewRateLimitError("Muitas requisições. Tente novamente mais tarde."))
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localLimiter guarda um token bucket por IP; visitantes ociosos por mais de
// uma janela são descartados na varredura seguinte.
type localLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	every     rate.Limit
	burst     int
	period    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newLocalLimiter(limit int, period time.Duration) *localLimiter {
	if limit < 1 {
		limit = 1
	}
	return &localLimiter{
		visitors:  make(map[string]*visitor),
		every:     rate.Every(period / time.Duration(limit)),
		burst:     limit,
		period:    period,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *localLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.period {
		for key, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.period {
				delete(l.visitors, key)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}
