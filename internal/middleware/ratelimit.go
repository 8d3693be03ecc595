package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// pruneAbove is the number of tracked clients after which expired windows
// are swept on the next request.
const pruneAbove = 1024

type window struct {
	hits    int
	resetAt time.Time
}

type limiter struct {
	limit int
	per   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	clients map[string]*window
}

// allow records a hit for key and reports whether it fits the current window.
// When it does not, wait is the time until the window resets.
func (l *limiter) allow(key string) (ok bool, wait time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.clients) > pruneAbove {
		for k, w := range l.clients {
			if !now.Before(w.resetAt) {
				delete(l.clients, k)
			}
		}
	}

	w, found := l.clients[key]
	if !found || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(l.per)}
		l.clients[key] = w
	}
	if w.hits >= l.limit {
		return false, w.resetAt.Sub(now)
	}
	w.hits++
	return true, 0
}

// RateLimit allows limit requests per client in each fixed window of per.
// Clients are keyed by RemoteAddr host, so mount it after chi's RealIP.
// A non-positive limit disables it.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	return rateLimit(limit, per, time.Now)
}

func rateLimit(limit int, per time.Duration, now func() time.Time) func(http.Handler) http.Handler {
	l := &limiter{limit: limit, per: per, now: now, clients: make(map[string]*window)}
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := l.allow(clientKey(r))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(wait/time.Second)+1))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"success":false,"message":"rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
