package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/services/auth"

	"golang.org/x/time/rate"
)

func (app *Application) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				w.Header().Set("Connection", "close")
				app.Http.ServerError(w, r, err, "")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *Application) RateLimiter(next http.Handler) http.Handler {
	if !app.cfg.Limiter.Enabled {
		return next
	}
	const op = "middlewares.RateLimiter"
	log := app.log.With("op", op)
	limiter := newIPLimiter(app.cfg.Limiter.Rps, app.cfg.Limiter.Burst, time.Now)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			// chi RealIP leaves a bare address without a port
			ip = r.RemoteAddr
		}
		if !limiter.allow(ip) {
			log.Warn("rate limit exceeded", "ip", ip)
			app.Http.Error(w, r, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const (
	limiterSweepInterval = time.Minute
	limiterIdleTimeout   = 3 * time.Minute
)

type limitedClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter keeps one token bucket per client ip. Idle clients are swept
// inline on requests at most once per limiterSweepInterval.
type ipLimiter struct {
	mu        sync.Mutex
	clients   map[string]*limitedClient
	rps       float64
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

func newIPLimiter(rps float64, burst int, now func() time.Time) *ipLimiter {
	return &ipLimiter{
		clients:   make(map[string]*limitedClient),
		rps:       rps,
		burst:     burst,
		now:       now,
		lastSweep: now(),
	}
}

func (l *ipLimiter) allow(ip string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(now)
	c, ok := l.clients[ip]
	if !ok {
		c = &limitedClient{limiter: rate.NewLimiter(rate.Limit(l.rps), l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// sweep must be called with l.mu held.
func (l *ipLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < limiterSweepInterval {
		return
	}
	for ip, c := range l.clients {
		if now.Sub(c.lastSeen) > limiterIdleTimeout {
			delete(l.clients, ip)
		}
	}
	l.lastSweep = now
}

type CtxKey string

const CtxKeyAdmin CtxKey = "admin"

// requireAdmin rejects the request with 401 unless it carries a valid bearer
// token. The resolved admin is stored in the request context.
func (app *Application) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.ParseBearer(r.Header.Get("Authorization"))
		if err != nil {
			app.log.Debug("missing or malformed auth header", "path", r.URL.Path)
			app.Http.Unauthorized(w, r, "Authentication required")
			return
		}
		admin, err := app.Services.Auth.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				app.Http.Unauthorized(w, r, "Invalid token")
				return
			}
			app.Http.ServerError(w, r, err, "")
			return
		}
		r = r.WithContext(context.WithValue(r.Context(), CtxKeyAdmin, admin))
		next.ServeHTTP(w, r)
	})
}

func contextGetAdmin(r *http.Request) (*models.Admin, bool) {
	admin, ok := r.Context().Value(CtxKeyAdmin).(*models.Admin)
	return admin, ok && admin != nil
}
