package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dannythehat/eerie-escapes/internal/config"
	dbRedis "github.com/dannythehat/eerie-escapes/internal/db/redis"
	logpkg "github.com/dannythehat/eerie-escapes/internal/logger"
	"github.com/dannythehat/eerie-escapes/internal/metrics"
	analyticsrepo "github.com/dannythehat/eerie-escapes/internal/repository/analytics"
	catalogrepo "github.com/dannythehat/eerie-escapes/internal/repository/catalog"
	"github.com/dannythehat/eerie-escapes/internal/repository/ratelimit"
	"github.com/dannythehat/eerie-escapes/internal/repository/respcache"
	chiTransport "github.com/dannythehat/eerie-escapes/internal/transport/chi"
	analyticsuc "github.com/dannythehat/eerie-escapes/internal/usecase/analytics"
	discoveryuc "github.com/dannythehat/eerie-escapes/internal/usecase/discovery"
	healthuc "github.com/dannythehat/eerie-escapes/internal/usecase/health"
	holidayuc "github.com/dannythehat/eerie-escapes/internal/usecase/holiday"
	suggestuc "github.com/dannythehat/eerie-escapes/internal/usecase/suggest"
	"github.com/dannythehat/eerie-escapes/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting eerie-escapes API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register discovery metrics explicitly (no init())
	metrics.RegisterDiscoveryMetrics()

	// Create repositories (domain-native, no adapters)
	catalogRepo := catalogrepo.New(store)
	analyticsRepo := analyticsrepo.New(store, time.Duration(cfg.Analytics.RetentionDays)*24*time.Hour)
	cache := respcache.New(store)
	limiter := ratelimit.New(store)

	// Create use case services
	analyticsSvc := analyticsuc.New(analyticsRepo)
	discoverySvc := discoveryuc.New(catalogRepo, analyticsSvc).
		WithQueryTimeout(time.Duration(cfg.Search.QueryTimeoutSec) * time.Second)
	suggestSvc := suggestuc.New(catalogRepo)
	holidaySvc := holidayuc.New(catalogRepo, cache)
	healthSvc := healthuc.New(store)

	// Create chi server
	server := chiTransport.NewServer(
		discoverySvc, suggestSvc, analyticsSvc, holidaySvc, healthSvc,
		cfg.Search.SuggestionLimit, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())

	cached := func(ttl time.Duration) func(http.Handler) http.Handler {
		return chiTransport.CacheMiddleware(cache, ttl)
	}
	limited := chiTransport.RateLimitMiddleware(
		limiter, cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
	)
	adminAuth := chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys)

	server.Routes(r, cached, limited, adminAuth)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// Flush any in-flight analytics writes before closing the store.
	analyticsSvc.Drain()

	logger.Info("Server stopped")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
