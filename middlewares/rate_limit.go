package middlewares

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// FixedWindowLimiter counts requests per key in fixed windows starting at the
// key's first request.
type FixedWindowLimiter struct {
	mu        sync.Mutex
	windows   map[string]*window
	max       int
	length    time.Duration
	now       func() time.Time
	lastSweep time.Time
}

type window struct {
	start time.Time
	count int
}

func NewFixedWindowLimiter(max int, length time.Duration) *FixedWindowLimiter {
	if max <= 0 {
		max = 100
	}
	if length <= 0 {
		length = 15 * time.Minute
	}
	return &FixedWindowLimiter{
		windows: make(map[string]*window),
		max:     max,
		length:  length,
		now:     time.Now,
	}
}

// Allow reports whether key may make another request, and how long until its
// window resets.
func (l *FixedWindowLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.length {
		w = &window{start: now}
		l.windows[key] = w
	}

	reset := w.start.Add(l.length).Sub(now)
	if w.count >= l.max {
		return false, reset
	}
	w.count++
	return true, reset
}

// sweep drops expired windows at most once per window length.
func (l *FixedWindowLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.length {
		return
	}
	for k, w := range l.windows {
		if now.Sub(w.start) >= l.length {
			delete(l.windows, k)
		}
	}
	l.lastSweep = now
}

// ForwardedClientIP returns the address hops proxies away from the server:
// the hops-th X-Forwarded-For entry counted from the right, or the leftmost
// entry when the chain is shorter. With hops <= 0 or no header it is the peer address.
func ForwardedClientIP(hops int) func(*gin.Context) string {
	return func(c *gin.Context) string {
		if hops <= 0 {
			return c.RemoteIP()
		}
		var chain []string
		for _, part := range strings.Split(c.GetHeader("X-Forwarded-For"), ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				chain = append(chain, ip)
			}
		}
		if len(chain) == 0 {
			return c.RemoteIP()
		}
		return chain[max(len(chain)-hops, 0)]
	}
}

// RateLimit rejects clients that exceed the limiter with a plain-text 429.
// key picks the client identity; nil means gin's ClientIP.
func RateLimit(l *FixedWindowLimiter, message string, key func(*gin.Context) string) gin.HandlerFunc {
	if key == nil {
		key = (*gin.Context).ClientIP
	}
	return func(c *gin.Context) {
		ok, reset := l.Allow(key(c))
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(reset.Seconds()))))
			c.String(http.StatusTooManyRequests, message)
			c.Abort()
			return
		}
		c.Next()
	}
}
