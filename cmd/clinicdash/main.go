package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/spectrum-health/clinicdash/internal/auth"
	"github.com/spectrum-health/clinicdash/internal/clinic"
	"github.com/spectrum-health/clinicdash/internal/config"
	"github.com/spectrum-health/clinicdash/internal/handlers"
	"github.com/spectrum-health/clinicdash/internal/httpx"
	"github.com/spectrum-health/clinicdash/internal/otelx"
	"github.com/spectrum-health/clinicdash/internal/runtime"
	"github.com/spectrum-health/clinicdash/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(cfg.ServiceName)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(cfg.ServiceName))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	client := clinic.NewClient(cfg.BackendURL, logger)

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()
	}

	var store session.Store
	if rdb != nil {
		store = session.NewRedisStore(rdb, logger)
		logger.Info("session store: redis")
	} else {
		store = session.NewMemoryStore()
		logger.Info("session store: in-memory")
	}
	gateway := auth.NewGateway(store, client, logger)
	gateway.SetTTLs(cfg.SessionTTL, cfg.RememberMeTTL)

	mux := runtime.NewBaseMuxWithReady(runtime.ReadyCheck{
		Name:  "clinic-backend",
		Check: client.ReadyCheck(),
	})
	handlers.New(gateway, client, logger, cfg.LoginPath).Register(mux)

	var rateLimitMW httpx.Middleware
	if rdb != nil {
		rl := httpx.NewRedisRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute, cfg.RateLimitPrefix)
		rateLimitMW = rl.Middleware(logger, cfg.RateLimitFailOpen)
		logger.Info("rate limiting enabled (redis)", "per_minute", cfg.RateLimitPerMinute)
	} else {
		rl := httpx.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
		rateLimitMW = rl.Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", cfg.RateLimitPerMinute)
	}

	handler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   cfg.CORSAllowedMethods,
			AllowedHeaders:   cfg.CORSAllowedHeaders,
			AllowCredentials: cfg.CORSAllowCredentials,
			MaxAge:           cfg.CORSMaxAge,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(cfg.BodyLimitBytes),
		httpx.WithTimeout(cfg.RequestTimeout),
		rateLimitMW,
	)
	handler = otelhttp.NewHandler(handler, "clinicdash")

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr, "backend", cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
