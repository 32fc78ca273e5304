package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kevin07696/payway-gateway/internal/adapters/payway"
	"github.com/kevin07696/payway-gateway/internal/adapters/postgres"
	"github.com/kevin07696/payway-gateway/internal/adapters/secrets"
	"github.com/kevin07696/payway-gateway/internal/config"
	"github.com/kevin07696/payway-gateway/internal/handlers/checkout"
	"github.com/kevin07696/payway-gateway/internal/services/gateway"
	httpclient "github.com/kevin07696/payway-gateway/pkg/http"
	"github.com/kevin07696/payway-gateway/pkg/idgen"
	"github.com/kevin07696/payway-gateway/pkg/middleware"
	"github.com/kevin07696/payway-gateway/pkg/observability"
	"github.com/kevin07696/payway-gateway/pkg/security"
	"github.com/kevin07696/payway-gateway/pkg/shutdown"
	"github.com/kevin07696/payway-gateway/pkg/timeutil"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger := initLogger(cfg.Logger)
	defer zapLogger.Sync()
	logger := security.NewZapLogger(zapLogger)

	zapLogger.Info("Starting PayWay gateway",
		zap.String("environment", cfg.Environment),
		zap.String("mode", string(cfg.Gateway.Mode)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Resolve keys not supplied through the environment
	manager, err := secrets.NewFromConfig(ctx, cfg.Secrets, logger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize secret manager", zap.Error(err))
	}
	if err := secrets.LoadGatewayKeys(ctx, manager, cfg.Secrets, &cfg.Gateway, logger); err != nil {
		zapLogger.Fatal("Failed to load PayWay keys", zap.Error(err))
	}
	if err := cfg.Gateway.Validate(); err != nil {
		zapLogger.Fatal("Invalid PayWay configuration", zap.Error(err))
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	zapLogger.Info("Database connection established",
		zap.String("database", cfg.Database.Database),
	)

	client := payway.NewRestAPIClient(
		cfg.Gateway,
		httpclient.NewHTTPClient(httpclient.PayWayClientConfig(), cfg.Gateway.Timeout),
		idgen.UUIDGenerator{},
		logger,
	)

	service := gateway.NewGatewayService(
		cfg.Gateway,
		client,
		postgres.NewPaymentRepository(pool),
		postgres.NewPaymentMethodRepository(pool),
		postgres.NewOrderRepository(pool),
		timeutil.SystemClock{},
		logger,
	)

	ips, err := middleware.NewIPResolver(cfg.Server.TrustedProxies)
	if err != nil {
		zapLogger.Fatal("Invalid TRUSTED_PROXIES", zap.Error(err))
	}

	mux := http.NewServeMux()
	checkout.NewHandler(service, idgen.UUIDGenerator{}, ips, logger).Register(mux)

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, ips, logger)
	inflight := shutdown.NewInFlightTracker("checkout", logger)

	server := &http.Server{
		Addr: ":" + strconv.Itoa(cfg.Server.Port),
		Handler: middleware.Chain(mux,
			middleware.Recovery(logger),
			middleware.Logging(logger),
			middleware.SecurityHeaders(cfg.Environment == "development"),
			inflight.Middleware,
			limiter.Middleware,
		),
		ReadHeaderTimeout: 10 * time.Second,
		// PayWay calls may take the full client timeout
		WriteTimeout: cfg.Gateway.Timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	health := observability.NewHealthChecker(pool, client.Healthy)
	metricsServer := observability.NewMetricsServer(":"+strconv.Itoa(cfg.Server.MetricsPort), health)

	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		zapLogger.Info("Checkout server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Checkout server failed", zap.Error(err))
		}
	}()

	// Shut down in reverse order: servers first, database last
	sm := shutdown.NewManager(logger, 30*time.Second)
	sm.RegisterNoErr("database", pool.Close)
	sm.RegisterNoErr("rate-limiter", limiter.Shutdown)
	sm.RegisterHTTPServer("metrics", metricsServer)
	sm.Register("checkout-inflight", inflight.Shutdown)
	sm.RegisterHTTPServer("checkout", server)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	if err := sm.Shutdown(); err != nil {
		zapLogger.Error("Shutdown completed with errors", zap.Error(err))
	}
}

// initLogger builds a JSON production logger or a console development logger
func initLogger(cfg config.LoggerConfig) *zap.Logger {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}
