package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/FreshMarket/pkg/auth"
	"github.com/utafrali/FreshMarket/pkg/database"
	"github.com/utafrali/FreshMarket/pkg/health"
	"github.com/utafrali/FreshMarket/pkg/httpclient"
	pkgkafka "github.com/utafrali/FreshMarket/pkg/kafka"
	"github.com/utafrali/FreshMarket/pkg/middleware"
	"github.com/utafrali/FreshMarket/pkg/tracing"
	"github.com/utafrali/FreshMarket/services/storefront/internal/apiclient"
	"github.com/utafrali/FreshMarket/services/storefront/internal/config"
	"github.com/utafrali/FreshMarket/services/storefront/internal/event"
	handler "github.com/utafrali/FreshMarket/services/storefront/internal/handler/http"
	"github.com/utafrali/FreshMarket/services/storefront/internal/repository"
	memoryrepo "github.com/utafrali/FreshMarket/services/storefront/internal/repository/memory"
	redisrepo "github.com/utafrali/FreshMarket/services/storefront/internal/repository/redis"
	"github.com/utafrali/FreshMarket/services/storefront/internal/service"
)

const (
	serviceName    = "storefront"
	jwtExpiry      = 24 * time.Hour
	evictionPeriod = time.Minute
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	service        *service.StorefrontService
	httpServer     *http.Server
	shutdownTracer func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
// ctx bounds background workers such as the rate limiter cleanup.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Tracing.
	tracingCfg := tracing.DefaultConfig(serviceName)
	tracingCfg.Environment = cfg.Environment
	tracingCfg.OTLPEndpoint = cfg.OTELEndpoint
	tracingCfg.SampleRate = cfg.OTELSampleRate
	tracingCfg.Enabled = cfg.OTELEnabled
	shutdownTracer, err := tracing.InitTracer(initCtx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	healthHandler := health.NewHandler()

	// Snapshot storage.
	var (
		rdb  *redis.Client
		repo repository.SnapshotRepository
	)
	switch cfg.StorageDriver {
	case config.StorageRedis:
		redisCfg := database.DefaultRedisConfig()
		redisCfg.Addr = cfg.RedisAddr
		redisCfg.Password = cfg.RedisPass
		redisCfg.DB = cfg.RedisDB
		rdb, err = database.NewRedisClient(initCtx, redisCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, rdb, serviceName); err != nil {
			logger.Warn("failed to register redis pool metrics", slog.String("error", err.Error()))
		}
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		repo = redisrepo.NewSnapshotRepository(rdb, cfg.SnapshotTTLDuration())
		healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	default:
		logger.Warn("using in-memory snapshot storage, sessions will not survive a restart")
		repo = memoryrepo.NewSnapshotRepository(cfg.SnapshotTTLDuration())
	}

	// Kafka producer.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	healthHandler.RegisterNonCritical("kafka", producer.Ping)

	// Marketplace API client.
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.MarketplaceTimeoutDuration()
	cbCfg := httpclient.CircuitBreakerConfig{
		Name:         "marketplace",
		MaxRequests:  cfg.CBMaxRequests,
		Interval:     time.Duration(cfg.CBInterval) * time.Second,
		Timeout:      time.Duration(cfg.CBTimeout) * time.Second,
		FailureRatio: cfg.CBFailureRatio,
		MinRequests:  cfg.CBMinRequests,
	}
	cb := httpclient.NewCircuitBreakerClient(httpclient.New(httpCfg), cbCfg, logger)
	api := apiclient.New(cfg.MarketplaceURL, cb, logger)
	healthHandler.RegisterNonCritical("marketplace", api.Healthy)

	// Build the dependency graph.
	svc := service.NewStorefrontService(
		repo,
		api,
		event.NewProducer(producer, logger),
		nil,
		logger,
		service.Config{
			NotificationLimit: cfg.NotificationLimit,
			ComparisonLimit:   cfg.ComparisonLimit,
		},
	)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, jwtExpiry)

	// HTTP router.
	router := handler.NewRouter(svc, healthHandler, handler.RouterConfig{
		TokenValidator: jwtManager.TokenValidator(),
		CORS:           cfg.CORS(),
		RateLimit:      middleware.RateLimit(ctx, float64(cfg.RateLimitRPS), cfg.RateLimitBurst, logger),
	}, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		rdb:            rdb,
		producer:       producer,
		service:        svc,
		httpServer:     httpServer,
		shutdownTracer: shutdownTracer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go a.evictIdleSessions(ctx)

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// evictIdleSessions periodically drops sessions that have been idle longer
// than the configured window.
func (a *App) evictIdleSessions(ctx context.Context) {
	ticker := time.NewTicker(evictionPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.service.EvictIdle(a.cfg.SessionIdle())
		}
	}
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
