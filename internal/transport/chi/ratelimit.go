package chi

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// exemptPaths are routes that bypass rate limiting (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// clientIdleTTL is how long an idle client's limiter is kept.
const clientIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiters hands out one token bucket per client address.
type clientLimiters struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newClientLimiters(rps float64, burst int) *clientLimiters {
	if burst <= 0 {
		burst = max(1, int(math.Ceil(rps)))
	}
	return &clientLimiters{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// reserve takes a token for client. When none is available it returns false and the
// delay until the next token.
func (c *clientLimiters) reserve(client string) (bool, time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.lastSweep) > clientIdleTTL {
		for k, cl := range c.clients {
			if now.Sub(cl.lastSeen) > clientIdleTTL {
				delete(c.clients, k)
			}
		}
		c.lastSweep = now
	}

	cl, ok := c.clients[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.clients[client] = cl
	}
	cl.lastSeen = now

	r := cl.limiter.ReserveN(now, 1)
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}

// RateLimitMiddleware throttles each client address to rps requests per second with the
// given burst. rps <= 0 disables limiting (pass-through).
func RateLimitMiddleware(rps float64, burst int) func(http.Handler) http.Handler {
	return rateLimit(rps, burst, nil)
}

func rateLimit(rps float64, burst int, clock func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		// Limiting disabled, pass everything through
		if rps <= 0 {
			return next
		}

		limiters := newClientLimiters(rps, burst)
		if clock != nil {
			limiters.now = clock
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			ok, wait := limiters.reserve(clientKey(r))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				writeError(w, http.StatusTooManyRequests, CodeRateLimited, "too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller by remote IP. chi's RealIP middleware, when installed,
// has already replaced RemoteAddr with the forwarded address.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
