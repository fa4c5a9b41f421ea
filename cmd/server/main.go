package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/estateledger/internal/adapter/http"
	"github.com/iho/estateledger/internal/adapter/http/handler"
	"github.com/iho/estateledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/estateledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/estateledger/internal/adapter/repository/redis"
	"github.com/iho/estateledger/internal/domain"
	"github.com/iho/estateledger/internal/infrastructure/config"
	"github.com/iho/estateledger/internal/infrastructure/logger"
	"github.com/iho/estateledger/internal/infrastructure/metrics"
	"github.com/iho/estateledger/internal/infrastructure/postgres"
	"github.com/iho/estateledger/internal/infrastructure/redis"
	"github.com/iho/estateledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = l

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a, err := newApp(ctx, cfg, l, reg)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to start")
	}
	defer a.Close()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      a.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		l.Info().Str("port", cfg.HTTPPort).Str("store", cfg.StoreDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	l.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("server forced to shutdown")
	}

	l.Info().Msg("server stopped")
}

// registry both registers collectors and serves them on /metrics.
type registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// app is the wired service.
type app struct {
	handler http.Handler
	closers []func()
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp wires the store, cache, use cases and router from cfg.
func newApp(ctx context.Context, cfg *config.Config, l zerolog.Logger, reg registry) (*app, error) {
	a := &app{}
	m := metrics.New(reg)
	health := handler.NewHealthHandler()

	var store usecase.DocumentStore
	switch cfg.StoreDriver {
	case config.StorePostgres:
		if cfg.AutoMigrate {
			if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, l); err != nil {
				return nil, err
			}
		}
		connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
		pool, err := postgres.NewPool(connectCtx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		health.With("postgres", pool)
		store = postgresRepo.NewDocumentStore(pool, postgresRepo.NewRetrier(l))
		l.Info().Msg("connected to postgres")
	default:
		store = memory.NewDocumentStore()
		l.Warn().Msg("using in-memory document store; data is lost on restart")
	}
	store = m.InstrumentStore(store)

	var (
		cache       usecase.Cache
		idempotency usecase.IdempotencyStore
	)
	if cfg.RedisEnabled() {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { client.Close() })
		health.With("redis", handler.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}))
		cache = redisRepo.NewCache(client)
		idempotency = redisRepo.NewIdempotencyStore(client)
		l.Info().Msg("connected to redis")
	}

	idGen := postgresRepo.NewULIDGenerator()

	reports := usecase.NewReportUseCase(store, cache, cfg.ReportCacheTTL, l)
	ledger := usecase.NewLedgerUseCase(store, l, m)
	parties := usecase.NewPartyUseCase(store, idGen, ledger, l)
	transactions := usecase.NewTransactionUseCase(store, idGen, reports, l, m)
	sales := usecase.NewSaleUseCase(store, idGen, reports, l, m)
	invoices := usecase.NewInvoiceUseCase(store, idGen, reports, l, m)
	expenses := usecase.NewExpenseUseCase(store, idGen, reports, l, m)

	project := cfg.DefaultProjectID
	a.handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     handler.NewPartyHandler(domain.PartyAccount, parties, ledger, project),
		ClientHandler:      handler.NewPartyHandler(domain.PartyClient, parties, ledger, project),
		SupplierHandler:    handler.NewPartyHandler(domain.PartySupplier, parties, ledger, project),
		AgentHandler:       handler.NewPartyHandler(domain.PartyAgent, parties, ledger, project),
		TransactionHandler: handler.NewTransactionHandler(transactions, project),
		SaleHandler:        handler.NewSaleHandler(sales, project),
		InvoiceHandler:     handler.NewInvoiceHandler(invoices, project),
		ExpenseHandler:     handler.NewExpenseHandler(expenses, project),
		ReportHandler:      handler.NewReportHandler(reports, project).WithReconciler(ledger),
		HealthHandler:      health,
		IdempotencyStore:   idempotency,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		Metrics:            m,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:             l,
	})

	return a, nil
}
