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
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/alr-main/better-beans-server/internal/cache"
	"github.com/alr-main/better-beans-server/internal/config"
	"github.com/alr-main/better-beans-server/internal/domain"
	domflavor "github.com/alr-main/better-beans-server/internal/domain/flavor"
	logpkg "github.com/alr-main/better-beans-server/internal/logger"
	"github.com/alr-main/better-beans-server/internal/metrics"
	catalogrepo "github.com/alr-main/better-beans-server/internal/repository/catalog"
	openaiEmb "github.com/alr-main/better-beans-server/internal/transport/openai"
	rpcTransport "github.com/alr-main/better-beans-server/internal/transport/rpc"
	embeddinguc "github.com/alr-main/better-beans-server/internal/usecase/embedding"
	flavoruc "github.com/alr-main/better-beans-server/internal/usecase/flavor"
	healthuc "github.com/alr-main/better-beans-server/internal/usecase/health"
	productuc "github.com/alr-main/better-beans-server/internal/usecase/product"
	roasteruc "github.com/alr-main/better-beans-server/internal/usecase/roaster"
	"github.com/alr-main/better-beans-server/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting better-beans API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
	)

	ctx := context.Background()

	pool, err := newPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := waitForReady(ctx, pool, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	// Embedding chain: hosted provider when a key is configured, offline
	// generator always present as the degraded path.
	var provider *openaiEmb.Embedder
	if cfg.Embedding.APIKey != "" {
		provider = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
			Logger:     logger,
		})
	} else {
		logger.Warn("No embedding API key configured, every query uses the offline generator")
	}

	// Pass nil interface (not typed nil pointer!) when no provider is
	// configured.
	var hosted domain.Embedder
	if provider != nil {
		hosted = provider
	}
	embedSvc := embeddinguc.New(hosted, embeddinguc.NewOffline(cfg.Embedding.Dimensions), logger)
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("hosted", provider != nil),
	)

	results, err := cache.NewResults(
		cfg.Search.CacheSize,
		time.Duration(cfg.Search.CacheTTLSec)*time.Second,
		time.Now,
	)
	if err != nil {
		logger.Fatal("Failed to create result cache", zap.Error(err))
	}

	repo := catalogrepo.New(pool)

	flavorSvc := flavoruc.New(repo, embedSvc, results, flavoruc.Config{
		DefaultThreshold: cfg.Search.DefaultThreshold,
		RelaxedThreshold: cfg.Search.RelaxedThreshold,
		MinimalThreshold: cfg.Search.MinimalThreshold,
		FallbackLimit:    cfg.Search.FallbackLimit,
		Pinned:           pinnedRules(cfg.Search.Pinned, logger),
	}, logger)
	roasterSvc := roasteruc.New(repo)
	productSvc := productuc.New(repo)

	var embChecker healthuc.EmbeddingChecker
	if provider != nil {
		embChecker = provider
	}
	healthSvc := healthuc.New(repo, embChecker)

	server := rpcTransport.NewServer(flavorSvc, roasterSvc, productSvc, healthSvc).
		WithStreamDelay(time.Duration(cfg.Search.StreamDelayMs) * time.Millisecond)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(rpcTransport.CORSMiddleware(cfg.HTTP.AllowedOrigins))
	r.Use(rpcTransport.BearerAuthMiddleware(cfg.Auth.APIKeyDigests))
	r.Use(metrics.Middleware())

	r.Post("/rpc", server.HandleRPC)
	r.Post("/rpc/stream", server.HandleStream)
	r.Get("/healthz", server.Healthz)
	r.Get("/manifest", server.Manifest)
	r.Get("/metrics", server.Metrics)

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

func newPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return pool, nil
}

// waitForReady pings the database until it answers or timeout elapses.
func waitForReady(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		pingCtx, cancel := context.WithTimeout(ctx, time.Second)
		err := pool.Ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("database not ready after %s: %w", timeout, err)
		}
		time.Sleep(500 * time.Millisecond)
	}
}

// pinnedRules normalizes configured pin rules onto canonical cache keys.
// A rule with unusable tags is logged and skipped rather than failing boot.
func pinnedRules(rules []config.PinnedRule, logger *zap.Logger) map[string]string {
	if len(rules) == 0 {
		return nil
	}
	pinned := make(map[string]string, len(rules))
	for _, rule := range rules {
		q, err := domflavor.New(rule.Tags, 0, 0, 0, false)
		if err != nil {
			logger.Warn("Skipping invalid pinned rule",
				zap.Strings("tags", rule.Tags),
				zap.Error(err),
			)
			continue
		}
		pinned[q.CacheKey()] = rule.ProductID
	}
	return pinned
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
					_ = json.NewEncoder(w).Encode(map[string]any{
						"jsonrpc": "2.0",
						"id":      nil,
						"error":   map[string]any{"code": -32603, "message": "internal error"},
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
