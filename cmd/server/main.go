package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/txledger/internal/adapter/http"
	"github.com/iho/txledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/txledger/internal/adapter/http/middleware"
	"github.com/iho/txledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/txledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/txledger/internal/adapter/repository/redis"
	"github.com/iho/txledger/internal/infrastructure/auth"
	"github.com/iho/txledger/internal/infrastructure/config"
	"github.com/iho/txledger/internal/infrastructure/eventpublisher"
	"github.com/iho/txledger/internal/infrastructure/logger"
	"github.com/iho/txledger/internal/infrastructure/metrics"
	"github.com/iho/txledger/internal/infrastructure/postgres"
	"github.com/iho/txledger/internal/infrastructure/redis"
	"github.com/iho/txledger/internal/usecase"
)

// limiterIdleTTL is how long a client's rate limiter survives without traffic.
const limiterIdleTTL = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(log.WithContext(ctx), cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// run starts the service and blocks until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	var redisClient *goredis.Client
	if cfg.RedisEnabled {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		store.checks["redis"] = redis.HealthCheck(redisClient)
		log.Info().Msg("connected to redis")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, err := newApp(cfg, log, store, registry, redisClient)
	if err != nil {
		return err
	}

	if app.publisher != nil {
		go func() {
			if err := app.publisher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("event publisher stopped")
			}
		}()
	}

	if app.rateLimiter != nil {
		go cleanupLimiters(ctx, app.rateLimiter, log)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      app.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("store", cfg.StoreDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// ledgerStore groups the repositories behind one store driver.
type ledgerStore struct {
	txManager    usecase.TxManager
	accounts     usecase.AccountRepository
	transactions usecase.TransactionRepository
	ledger       usecase.LedgerRepository
	outbox       usecase.OutboxRepository
	checks       map[string]handler.HealthCheck
	close        func()
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*ledgerStore, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		mem := memory.NewStore(cfg.LedgerLockTimeout)
		return &ledgerStore{
			txManager:    mem.TxManager(),
			accounts:     mem.Accounts(),
			transactions: mem.Transactions(),
			ledger:       mem.Ledger(),
			outbox:       mem.Outbox(),
			checks:       map[string]handler.HealthCheck{},
			close:        func() {},
		}, nil

	case config.StoreDriverPostgres:
		if cfg.RunMigrations {
			if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
				return nil, err
			}
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseConnectTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		log.Info().Msg("connected to postgres")

		return &ledgerStore{
			txManager:    postgresRepo.NewTxManager(pool),
			accounts:     postgresRepo.NewAccountRepository(pool, cfg.LedgerLockTimeout),
			transactions: postgresRepo.NewTransactionRepository(pool),
			ledger:       postgresRepo.NewLedgerRepository(pool),
			outbox:       postgresRepo.NewOutboxRepository(pool),
			checks:       map[string]handler.HealthCheck{"postgres": pool.Ping},
			close:        pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// app is the wired HTTP service.
type app struct {
	handler     http.Handler
	publisher   *eventpublisher.EventPublisher
	rateLimiter *apimiddleware.RateLimiter
}

func newApp(cfg *config.Config, log zerolog.Logger, store *ledgerStore, registry *prometheus.Registry, redisClient *goredis.Client) (*app, error) {
	m := metrics.New(registry)
	idGen := postgresRepo.NewULIDGenerator()

	ledgerUC := usecase.NewLedgerUseCase(store.txManager, store.accounts, store.ledger, store.outbox, idGen, m)
	recorderUC := usecase.NewRecorderUseCase(store.txManager, ledgerUC, store.transactions, store.outbox, idGen, m)

	routerCfg := httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(ledgerUC),
		TransactionHandler: handler.NewTransactionHandler(recorderUC),
		LedgerHandler:      handler.NewLedgerHandler(ledgerUC),
		HealthHandler:      handler.NewHealthHandler(store.checks),
		Logger:             log,
		Metrics:            m,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		IdempotencyTTL:     cfg.IdempotencyTTL,
	}

	if cfg.RateLimitRPS > 0 {
		routerCfg.RateLimiter = apimiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithHitCounter(m.RateLimitHits)
	}

	if cfg.AuthEnabled {
		if cfg.JWTSecret == "" {
			return nil, errors.New("JWT_SECRET is required when AUTH_ENABLED is true")
		}
		routerCfg.JWTManager = auth.NewJWTManager(cfg.JWTSecret, time.Hour)
	}

	var publisher eventpublisher.Publisher = eventpublisher.NewLogPublisher(log)
	if redisClient != nil {
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		publisher = eventpublisher.NewRedisStreamPublisher(redisClient, cfg.OutboxStream, 0)
	}

	a := &app{
		handler:     httpAdapter.NewRouter(routerCfg),
		rateLimiter: routerCfg.RateLimiter,
	}

	if cfg.OutboxEnabled {
		a.publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: store.outbox,
			Publisher:  publisher,
			Logger:     log,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
		})
	}

	return a, nil
}

func cleanupLimiters(ctx context.Context, rl *apimiddleware.RateLimiter, log zerolog.Logger) {
	ticker := time.NewTicker(limiterIdleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := rl.CleanupLimiters(limiterIdleTTL); removed > 0 {
				log.Debug().Int("removed", removed).Msg("dropped idle rate limiters")
			}
		}
	}
}
