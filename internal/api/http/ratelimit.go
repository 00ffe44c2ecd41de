package http

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL    = 10 * time.Minute
	limiterSweepEvery = time.Minute
)

type clientLimiter struct {
	lim  *rate.Limiter
	last time.Time
}

// ipLimiter hands out one token bucket per client IP and evicts buckets
// idle past limiterIdleTTL, so a scan across many source addresses cannot
// grow the map for the life of the process.
type ipLimiter struct {
	mu        sync.Mutex
	perMinute int
	clients   map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time
}

func newIPLimiter(perMinute int, now func() time.Time) *ipLimiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	return &ipLimiter{
		perMinute: perMinute,
		clients:   map[string]*clientLimiter{},
		lastSweep: now(),
		now:       now,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.lastSweep) >= limiterSweepEvery {
		for k, c := range l.clients {
			if now.Sub(c.last) > limiterIdleTTL {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}
	c, ok := l.clients[ip]
	if !ok {
		c = &clientLimiter{lim: rate.NewLimiter(rate.Limit(float64(l.perMinute)/60.0), l.perMinute)}
		l.clients[ip] = c
	}
	c.last = now
	return c.lim.Allow()
}

// RateLimit caps requests per client IP on the wrapped routes. Grading
// is CPU-bound work on attacker-supplied archives, so the cap is low
// compared to typical API limits.
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	l := newIPLimiter(perMinute, time.Now)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			if !l.allow(ip) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
