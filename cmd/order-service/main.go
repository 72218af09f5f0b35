package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcmexdev/ecommerce-storefront/internal/order-service/adapters/rest"
	"github.com/jcmexdev/ecommerce-storefront/internal/order-service/app"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/cache"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/telemetry"
)

func main() {
	serviceName := getEnv("OTEL_SERVICE_NAME", "order-service")
	telemetry.InitLogger(serviceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, serviceName)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	var idempotency cache.Cache
	if redisAddr := getEnv("REDIS_ADDR", ""); redisAddr != "" {
		idempotency = cache.NewRedisCache(redisAddr, "order")
		if err := idempotency.Ping(ctx); err != nil {
			slog.Warn("redis not reachable yet", "addr", redisAddr, "error", err)
		}
	} else {
		slog.Warn("REDIS_ADDR not set, idempotent replay disabled")
	}

	orderSrv := app.NewOrderServer(idempotency)
	router := rest.NewRouter(rest.NewHandler(orderSrv))

	addr := ":" + getEnv("PORT", "3000")
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown error", "error", err)
		}
	}()

	slog.Info("order service HTTP running", "addr", addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("failed to serve", "error", err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
