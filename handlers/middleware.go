package handlers

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/danevairena/Bookstore/models"
	"github.com/danevairena/Bookstore/monitoring"
)

// RequestID tags every request with an id, reusing X-Request-ID when the
// client sent a valid one.
func (a *App) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		entry := a.Log.WithField("request_id", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		ctx = context.WithValue(ctx, loggerKey, entry)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LogRequests writes one log line per request.
func (a *App) LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := monitoring.NewStatusRecordingWriter(w)
		next.ServeHTTP(rw, r)

		a.logger(r).WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.StatusCode,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("Handled request")
	})
}

// Identify resolves the caller from a bearer token or, failing that, the
// session cookie. Identified users get their last_seen refreshed.
func (a *App) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.identify(r)
		if err != nil {
			a.serverError(w, r, err)
			return
		}
		if user != nil {
			now := a.Now()
			if err := a.Users.UpdateLastSeen(r.Context(), user.ID, now); err != nil {
				a.logger(r).WithError(err).Warn("Failed to update last seen")
			} else {
				user.LastSeen = now.UTC()
			}
			r = withUser(r, user)
		}
		next.ServeHTTP(w, r)
	})
}

func (a *App) identify(r *http.Request) (*models.User, error) {
	if token, ok := bearerToken(r); ok {
		return a.Tokens.Check(r.Context(), token)
	}

	session, err := a.Sessions.Get(r, sessionName)
	if err != nil {
		// A cookie signed with an old key is treated as logged out
		return nil, nil
	}
	id, ok := session.Values[sessionUserID].(uint)
	if !ok {
		return nil, nil
	}
	return a.Users.FindByID(r.Context(), id)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r) == nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="bookstore"`)
			errorResponse(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r)
	}
}

// RateLimiter hands out a token bucket per client address. X-Forwarded-For
// is only consulted when trustProxy is set.
type RateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*client
	limit      rate.Limit
	burst      int
	idle       time.Duration
	swept      time.Time
	trustProxy bool
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(rps float64, burst int, trustProxy bool) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		clients:    make(map[string]*client),
		limit:      rate.Limit(rps),
		burst:      burst,
		idle:       10 * time.Minute,
		swept:      time.Now(),
		trustProxy: trustProxy,
	}
}

// Allow reports whether key may make another request now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.swept) > rl.idle {
		for k, c := range rl.clients {
			if now.Sub(c.lastSeen) > rl.idle {
				delete(rl.clients, k)
			}
		}
		rl.swept = now
	}

	c, ok := rl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// Limit answers 429 once a client exceeds its budget.
func (rl *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(rl.clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			errorResponse(w, http.StatusTooManyRequests, "too many requests, slow down")
			return
		}
		next(w, r)
	}
}

func (rl *RateLimiter) clientIP(r *http.Request) string {
	if rl.trustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
