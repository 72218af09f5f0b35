package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/catalog"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/checkoutlog"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/checkoutlog/sqlite"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/checkout"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/session"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/infra/adapters/service"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/infra/httpx"
)

func main() {
	serviceName := getEnv("OTEL_SERVICE_NAME", "storefront")
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

	customerID := getEnv("CUSTOMER_ID", checkout.DefaultCustomerID)
	opts := []checkout.Option{checkout.WithCustomerID(customerID)}

	var journalReader checkoutlog.Reader
	if logPath := getEnv("CHECKOUT_LOG_PATH", "checkout_log.db"); logPath != "off" {
		journal, err := sqlite.Open(logPath)
		if err != nil {
			slog.Error("failed to open checkout log", "path", logPath, "error", err)
			os.Exit(1)
		}
		defer journal.Close()
		opts = append(opts, checkout.WithJournal(journal))
		journalReader = journal
	}

	var orders ports.OrderService
	orderURL := getEnv("ORDER_SERVICE_URL", "http://localhost:3000/api/orders")
	if orderURL == "fake" {
		slog.Warn("using in-process fake order service")
		orders = service.NewFakeOrderService()
	} else {
		timeout, err := time.ParseDuration(getEnv("ORDER_SERVICE_TIMEOUT", "30s"))
		if err != nil {
			slog.Error("invalid ORDER_SERVICE_TIMEOUT", "error", err)
			os.Exit(1)
		}
		orders = service.NewHTTPOrderClient(orderURL, nil, timeout)
	}

	limits := session.DefaultLimits
	if v := getEnv("SESSION_IDLE_TTL", ""); v != "" {
		if limits.IdleTTL, err = time.ParseDuration(v); err != nil {
			slog.Error("invalid SESSION_IDLE_TTL", "error", err)
			os.Exit(1)
		}
	}
	if v := getEnv("SESSION_MAX", ""); v != "" {
		if limits.MaxSessions, err = strconv.Atoi(v); err != nil {
			slog.Error("invalid SESSION_MAX", "error", err)
			os.Exit(1)
		}
	}

	registry := session.NewRegistry(orders, limits, opts...)
	go registry.Run(ctx, time.Minute)

	handler := httpx.NewHandler(catalog.Default(), journalReader, customerID)
	router := httpx.NewRouter(handler, registry)

	addr := getEnv("HTTP_ADDR", ":8080")
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

	slog.Info("storefront running", "addr", addr, "order_service", orderURL)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
