package mockapi

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/therapyassist/dashboard-go/internal/httputil"
)

const (
	maxJSONBodyBytes   = 1 << 20
	loginWindow        = time.Minute
	loginCleanupPeriod = 5 * time.Minute

	tooManyLoginsMessage = "Too many login attempts. Please try again later."
)

type loginAttempt struct {
	count       int
	windowStart time.Time
}

// loginLimiter caps login and verify-code attempts per client address
// within a fixed one-minute window.
type loginLimiter struct {
	max int
	now func() time.Time

	mu          sync.Mutex
	attempts    map[string]*loginAttempt
	lastCleanup time.Time
}

func newLoginLimiter(max int, now func() time.Time) *loginLimiter {
	return &loginLimiter{
		max:         max,
		now:         now,
		attempts:    make(map[string]*loginAttempt),
		lastCleanup: now(),
	}
}

func (l *loginLimiter) cleanupLocked(now time.Time) {
	if now.Sub(l.lastCleanup) < loginCleanupPeriod {
		return
	}
	l.lastCleanup = now

	for addr, attempt := range l.attempts {
		if now.Sub(attempt.windowStart) > loginWindow {
			delete(l.attempts, addr)
		}
	}
}

func (l *loginLimiter) allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.cleanupLocked(now)

	attempt, ok := l.attempts[addr]
	if !ok || now.Sub(attempt.windowStart) > loginWindow {
		l.attempts[addr] = &loginAttempt{count: 1, windowStart: now}
		return true
	}
	if attempt.count >= l.max {
		return false
	}
	attempt.count++
	return true
}

func (l *loginLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientAddr(r)) {
			w.Header().Set("Retry-After", "60")
			httputil.WriteDetail(w, http.StatusTooManyRequests, tooManyLoginsMessage)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientAddr strips the port so repeated connections from one host share
// a bucket. RealIP has already folded X-Forwarded-For into RemoteAddr.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// limitBody rejects requests whose body exceeds max bytes.
func limitBody(max int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.ContentLength > max {
				httputil.WriteDetail(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, max)
			}
			next.ServeHTTP(w, r)
		})
	}
}
