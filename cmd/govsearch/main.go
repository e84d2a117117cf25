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

	"github.com/kailas-cloud/govsearch/internal/config"
	"github.com/kailas-cloud/govsearch/internal/domain"
	"github.com/kailas-cloud/govsearch/internal/index"
	logpkg "github.com/kailas-cloud/govsearch/internal/logger"
	"github.com/kailas-cloud/govsearch/internal/metrics"
	"github.com/kailas-cloud/govsearch/internal/providers/redishash"
	"github.com/kailas-cloud/govsearch/internal/providers/staticfile"
	chiTransport "github.com/kailas-cloud/govsearch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/govsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/govsearch/internal/usecase/search"
	"github.com/kailas-cloud/govsearch/internal/version"
	"github.com/kailas-cloud/govsearch/internal/watch"
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

	logger.Info("Starting govsearch API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("static_file_provider", cfg.Providers.StaticFile.Enabled),
		zap.Bool("redis_provider", cfg.Providers.Redis.Enabled),
	)

	// Register index metrics explicitly (no init())
	metrics.RegisterIndexMetrics()

	ctx := context.Background()

	// Assemble providers in configuration order; registration order is the
	// tie-break order in search results.
	var providers []domain.SearchProvider

	if cfg.Providers.StaticFile.Enabled {
		providers = append(providers, staticfile.New(cfg.Providers.StaticFile.Dir))
		logger.Info("Static file provider enabled", zap.String("dir", cfg.Providers.StaticFile.Dir))
	}

	var redisStore *redishash.RedisStore
	if cfg.Providers.Redis.Enabled {
		redisStore, err = redishash.NewStore(redishash.Config{
			Addrs:    cfg.Providers.Redis.Addrs,
			Password: cfg.Providers.Redis.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create redis store", zap.Error(err))
		}
		defer redisStore.Close()

		readiness := time.Duration(cfg.Providers.Redis.ReadinessTimeout) * time.Second
		if err := redisStore.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Redis not ready", zap.Error(err))
		}
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Providers.Redis.Addrs))

		providers = append(providers, redishash.New(redisStore, cfg.Providers.Redis.KeyPrefix))
	}

	// Build the search service and publish the first snapshot before serving.
	providerTimeout := time.Duration(cfg.Index.ProviderTimeoutSec) * time.Second
	builder := index.NewBuilder(providerTimeout, logger)
	searchSvc := searchuc.New(builder, providers, logger)
	healthSvc := healthuc.New(searchSvc)
	if redisStore != nil {
		healthSvc.WithBackend("redis", redisStore)
	}

	stats := searchSvc.Rebuild(ctx)
	logger.Info("Initial index built",
		zap.Int("records", stats.Records),
		zap.Duration("duration", stats.Duration),
	)

	// Rebuild when static exports change on disk.
	if cfg.Providers.StaticFile.Enabled && cfg.Providers.StaticFile.Watch {
		watcher := watch.New(cfg.Providers.StaticFile.Dir, func() {
			s := searchSvc.Rebuild(context.Background())
			logger.Info("Index rebuilt after export change",
				zap.Uint64("generation", s.Generation),
				zap.Int("records", s.Records),
			)
		}, logger)
		if err := watcher.Start(ctx); err != nil {
			logger.Fatal("Failed to start export watcher", zap.Error(err))
		}
		defer watcher.Stop()
	}

	// Periodic rebuild keeps remote providers fresh without relying on the
	// manual endpoint.
	if cfg.Index.RebuildIntervalSec > 0 {
		interval := time.Duration(cfg.Index.RebuildIntervalSec) * time.Second
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		go func() {
			for range ticker.C {
				s := searchSvc.Rebuild(context.Background())
				logger.Info("Scheduled index rebuild",
					zap.Uint64("generation", s.Generation),
					zap.Int("records", s.Records),
				)
			}
		}()
		logger.Info("Periodic rebuild enabled", zap.Duration("interval", interval))
	}

	// Create chi server
	rebuildTimeout := providerTimeout * time.Duration(max(len(providers), 1))
	server := chiTransport.NewServer(searchSvc, healthSvc, rebuildTimeout, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

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
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
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

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request. Probe endpoints are
			// polled constantly, keep their lines at debug.
			logAt := reqLogger.Info
			if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
				logAt = reqLogger.Debug
			}
			logAt("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
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
