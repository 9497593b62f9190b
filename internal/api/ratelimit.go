package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// visitorLimiter keeps one token bucket per client IP. Idle entries are
// evicted so the map does not grow without bound.
type visitorLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	ttl      time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newVisitorLimiter(rps float64, burst int) *visitorLimiter {
	return &visitorLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		ttl:      3 * time.Minute,
	}
}

func (vl *visitorLimiter) allow(ip string) bool {
	vl.mu.Lock()
	defer vl.mu.Unlock()

	v, ok := vl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(vl.rps, vl.burst)}
		vl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

func (vl *visitorLimiter) cleanup(now time.Time) {
	vl.mu.Lock()
	defer vl.mu.Unlock()
	for ip, v := range vl.visitors {
		if now.Sub(v.lastSeen) > vl.ttl {
			delete(vl.visitors, ip)
		}
	}
}

func (vl *visitorLimiter) runCleanup(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			vl.cleanup(now)
		}
	}
}

// RateLimit rejects requests over the per-IP budget with 429.
func RateLimit(vl *visitorLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			if !vl.allow(ip) {
				return c.JSON(http.StatusTooManyRequests, errorBody{
					Error:   "too_many_requests",
					Message: "rate limit exceeded",
				})
			}
			return next(c)
		}
	}
}
