package chi

import (
	"bytes"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/dannythehat/eerie-escapes/internal/logger"
	"github.com/dannythehat/eerie-escapes/internal/metrics"
	"github.com/dannythehat/eerie-escapes/internal/repository/ratelimit"
	"github.com/dannythehat/eerie-escapes/internal/repository/respcache"
)

// ClientID identifies the caller for rate limiting and analytics.
// Authenticated callers send X-User-ID; everyone else is bucketed
// by source address.
func ClientID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// cacheRecorder buffers a downstream response so it can be stored
// after a successful request.
type cacheRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *cacheRecorder) WriteHeader(status int) {
	c.status = status
	c.ResponseWriter.WriteHeader(status)
}

func (c *cacheRecorder) Write(p []byte) (int, error) {
	c.body.Write(p)
	return c.ResponseWriter.Write(p)
}

// CacheMiddleware serves GET responses from the response cache and
// stores successful ones. Cache failures are logged and ignored so a
// degraded cache never takes the API down.
func CacheMiddleware(cache *respcache.Cache, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key := respcache.Key(r.URL.Path, r.URL.Query())

			body, err := cache.Get(r.Context(), key)
			switch {
			case err == nil:
				metrics.CacheTotal.WithLabelValues("hit").Inc()
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(body)
				return
			case errors.Is(err, respcache.ErrMiss):
				metrics.CacheTotal.WithLabelValues("miss").Inc()
			default:
				metrics.CacheTotal.WithLabelValues("error").Inc()
				logger.FromContext(r.Context()).Warn("response cache read failed", zap.Error(err))
			}

			w.Header().Set("X-Cache", "MISS")
			rec := &cacheRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status != http.StatusOK {
				return
			}
			if err := cache.Set(r.Context(), key, rec.body.Bytes(), ttl); err != nil {
				logger.FromContext(r.Context()).Warn("response cache write failed", zap.Error(err))
			}
		})
	}
}

// RateLimitMiddleware enforces a fixed-window per-caller request
// budget. Limiter failures are logged and the request is let through.
func RateLimitMiddleware(limiter *ratelimit.Limiter, maxRequests int64, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Check(r.Context(), ClientID(r), maxRequests, window)
			if err != nil {
				metrics.RateLimitTotal.WithLabelValues("error").Inc()
				logger.FromContext(r.Context()).Warn("rate limit check failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(maxRequests, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				metrics.RateLimitTotal.WithLabelValues("rejected").Inc()
				writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests, slow down")
				return
			}
			metrics.RateLimitTotal.WithLabelValues("allowed").Inc()
			next.ServeHTTP(w, r)
		})
	}
}
