// Package middleware holds the HTTP middleware of rein-server.
package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"

	"golang.org/x/time/rate"

	"github.com/rein-network/rein-node/internal/api"
	"github.com/rein-network/rein-node/internal/logger"
)

// BodyLimit rejects request bodies larger than maxBytes with a 413.
//
// A request that declares a larger Content-Length is rejected before the handler runs. Otherwise the
// body is wrapped in http.MaxBytesReader and the handler gets an error once it reads past the limit.
//
// Routes can nest a smaller limit inside a larger one (armored documents are much smaller than a
// batch of postings). The innermost limit is the one reported in the X-Max-Request-Size header.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	limit := strconv.FormatInt(maxBytes, 10)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Max-Request-Size", limit)

			if r.ContentLength > maxBytes {
				api.RespondWithError(w, r, api.NewRequestTooLargeError(
					fmt.Sprintf("request body is %d bytes, %s accepts at most %d bytes", r.ContentLength, r.URL.Path, maxBytes),
				))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"X-XSS-Protection", "1; mode=block"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
}

// SecurityHeaders adds security-related headers to all responses.
// HSTS is only sent in prod and staging.
func SecurityHeaders(environment string) func(http.Handler) http.Handler {
	hsts := environment == "prod" || environment == "staging"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, h := range securityHeaders {
				w.Header().Set(h[0], h[1])
			}
			if hsts {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Limit configures a RateLimit middleware.
type Limit struct {
	// Scope names the limit in logs and error messages, e.g. "api" or "oracle"
	Scope string

	// RequestsPerSecond <= 0 disables the limit
	RequestsPerSecond int32
	Burst             int32

	// PerClient gives every client address its own token bucket instead of sharing one.
	// The routes that fan out to the block oracles use this so that one client cannot use up
	// the oracle budget of everyone else.
	PerClient bool
}

// maxTrackedClients bounds the number of per-client buckets held in memory
const maxTrackedClients = 10000

type limiterSet struct {
	limit   Limit
	shared  *rate.Limiter
	mu      sync.Mutex
	clients map[string]*rate.Limiter
}

func newLimiterSet(limit Limit) *limiterSet {
	s := &limiterSet{limit: limit}
	if limit.PerClient {
		s.clients = make(map[string]*rate.Limiter)
	} else {
		s.shared = s.newLimiter()
	}
	return s
}

func (s *limiterSet) newLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(s.limit.RequestsPerSecond), int(max(s.limit.Burst, 1)))
}

func (s *limiterSet) get(client string) *rate.Limiter {
	if !s.limit.PerClient {
		return s.shared
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.clients[client]
	if !ok {
		if len(s.clients) >= maxTrackedClients {
			s.pruneIdle()
		}
		l = s.newLimiter()
		s.clients[client] = l
	}
	return l
}

// pruneIdle drops the clients whose bucket has refilled. If every client is still active the
// buckets are all dropped. Callers hold s.mu.
func (s *limiterSet) pruneIdle() {
	full := float64(max(s.limit.Burst, 1))
	for client, l := range s.clients {
		if l.Tokens() >= full {
			delete(s.clients, client)
		}
	}
	if len(s.clients) >= maxTrackedClients {
		clear(s.clients)
	}
}

// clientAddress is the host part of r.RemoteAddr (chi's RealIP has already applied any
// X-Forwarded-For or X-Real-IP header).
func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit limits the request rate of the routes it wraps and responds 429 with a Retry-After
// header when the limit is exceeded.
func RateLimit(limit Limit) func(http.Handler) http.Handler {
	if limit.RequestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	limiters := newLimiterSet(limit)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientAddress(r)

			if limiters.get(client).Allow() {
				next.ServeHTTP(w, r)
				return
			}

			logger.ContextRequestLogger(r.Context()).Warn("rate limit exceeded",
				slog.String("component", "RateLimit"),
				slog.String("scope", limit.Scope),
				slog.String("client", client),
			)
			logger.ContextWithLogAttrs(r.Context(),
				slog.String("rate_limit_scope", limit.Scope),
				slog.String("remote_addr", r.RemoteAddr),
			)

			w.Header().Set("Retry-After", "1")
			api.RespondWithError(w, r, api.NewRateLimitError(
				fmt.Sprintf("too many %s requests, please try again later", limit.Scope),
			))
		})
	}
}
