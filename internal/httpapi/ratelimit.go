package httpapi

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/yourorg/loancheck/internal/auth"
)

// idleClientTTL drops the bucket of a client that has been quiet this long.
const idleClientTTL = 10 * time.Minute

// clientLimiter keeps one token bucket per caller.
type clientLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients *cache.Cache
}

// newClientLimiter returns nil, which allows everything, when rps is not positive.
func newClientLimiter(rps float64, burst int) *clientLimiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &clientLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		clients: cache.New(idleClientTTL, idleClientTTL),
	}
}

// Allow takes a token for client. When the bucket is empty it reports how long
// until the next token.
func (l *clientLimiter) Allow(client string) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	l.mu.Lock()
	var lim *rate.Limiter
	if v, ok := l.clients.Get(client); ok {
		lim = v.(*rate.Limiter)
	} else {
		lim = rate.NewLimiter(l.limit, l.burst)
	}
	l.clients.SetDefault(client, lim)
	l.mu.Unlock()

	res := lim.Reserve()
	if !res.OK() {
		return false, time.Second
	}
	if d := res.Delay(); d > 0 {
		res.Cancel()
		return false, d
	}
	return true, 0
}

// clientKey prefers the authenticated operator over the remote address.
func clientKey(r *http.Request) string {
	if op, ok := auth.OperatorFromContext(r.Context()); ok {
		return "op:" + op.KeyID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retryAfter := s.limiter.Allow(clientKey(r))
		if !ok {
			corrID := correlationID(r.Context())
			s.logger.Warn("rate limit exceeded", "corrId", corrID, "method", r.Method, "path", r.URL.Path, "remoteAddr", r.RemoteAddr)
			body := RateLimitError{
				Code:              "RATE_LIMITED",
				Message:           "too many requests",
				CorrId:            corrID,
				Retryable:         true,
				RetryAfterSeconds: toRetrySeconds(retryAfter),
			}
			writeJSON(w, http.StatusTooManyRequests, corrID, body, map[string]string{"Retry-After": formatRetryAfter(retryAfter)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func formatRetryAfter(d time.Duration) string {
	return strconv.Itoa(toRetrySeconds(d))
}

// toRetrySeconds rounds up so a client never retries early.
func toRetrySeconds(d time.Duration) int {
	if d <= 0 {
		return 1
	}
	s := int((d + time.Second - 1) / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}
