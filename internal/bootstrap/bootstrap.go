package bootstrap

import (
	"context"
	"fmt"

	"quotes-service/internal/application"
	"quotes-service/internal/config"
	infraconfig "quotes-service/internal/infrastructure/config"
	"quotes-service/internal/infrastructure/httpx"
	"quotes-service/internal/infrastructure/memory"
	"quotes-service/internal/infrastructure/metrics"
	"quotes-service/internal/infrastructure/pg"
	"quotes-service/internal/infrastructure/provider"
	redisstore "quotes-service/internal/infrastructure/redis"
	"quotes-service/internal/infrastructure/sqlite"
	"quotes-service/internal/infrastructure/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store is a QuoteStore that can also report reachability.
type Store interface {
	application.QuoteStore
	application.Pinger
}

// App is everything a process needs, built once from Config.
type App struct {
	Config   config.Config
	Log      *zap.Logger
	Store    Store
	Gateway  application.ProviderGateway
	Quotes   *application.QuoteService
	Health   *application.HealthService
	Metrics  *metrics.Recorder
	Registry *prometheus.Registry

	redis *redis.Client
}

// BuildStore opens the backend named by cfg.Storage.
func BuildStore(ctx context.Context, cfg config.Config, log *zap.Logger) (Store, *redis.Client, func(), error) {
	switch cfg.Storage {
	case "", "memory":
		log.Info("storage.memory")
		return memory.NewQuoteStore(), nil, func() {}, nil

	case "pg":
		if cfg.DatabaseURL == "" {
			return nil, nil, func() {}, fmt.Errorf("DATABASE_URL is required for STORAGE=pg")
		}
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, func() {}, err
		}
		if err := pg.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, nil, func() {}, err
		}
		log.Info("storage.pg")
		return pg.NewQuoteStore(db, log), nil, func() {
			log.Info("closing pg")
			db.Close()
		}, nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		log.Info("storage.redis", zap.String("addr", cfg.RedisAddr))
		return redisstore.NewQuoteStore(rdb, cfg.RedisKeyPrefix), rdb, func() {
			log.Info("closing redis")
			_ = rdb.Close()
		}, nil

	case "sqlite":
		st, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, func() {}, err
		}
		log.Info("storage.sqlite", zap.String("path", cfg.SQLitePath))
		return st, nil, func() {
			log.Info("closing sqlite")
			_ = st.Close()
		}, nil

	default:
		return nil, nil, func() {}, fmt.Errorf("unsupported STORAGE=%q", cfg.Storage)
	}
}

// BuildGateway returns the provider gateway and whether it has a target to
// talk to.
func BuildGateway(cfg config.Config, log *zap.Logger) (application.ProviderGateway, bool, error) {
	switch cfg.Provider {
	case "fake":
		return provider.NewFake(decimal.RequireFromString("123.45"), cfg.MarketDefaultCurrency), true, nil
	case "", "alphavantage":
		return &provider.MarketDataProvider{
			BaseURL:         cfg.MarketBaseURL,
			APIKey:          cfg.MarketAPIKey,
			DefaultCurrency: cfg.MarketDefaultCurrency,
			Timeout:         cfg.MarketTimeout,
			Client:          httpx.New(cfg.MarketTimeout),
			Log:             log,
		}, cfg.MarketBaseURL != "", nil
	default:
		return nil, false, fmt.Errorf("unsupported PROVIDER=%q", cfg.Provider)
	}
}

// Init wires the application. The returned cleanup is never nil.
func Init(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, func(), error) {
	store, rdb, cleanup, err := BuildStore(ctx, cfg, log)
	if err != nil {
		return nil, func() {}, fmt.Errorf("bootstrap store: %w", err)
	}
	gateway, configured, err := BuildGateway(cfg, log)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("bootstrap gateway: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(reg)

	app := &App{
		Config:   cfg,
		Log:      log,
		Store:    store,
		Gateway:  gateway,
		Metrics:  rec,
		Registry: reg,
		redis:    rdb,
		Quotes: application.NewQuoteService(store, gateway, application.NewPolicy(cfg.StaleAfterSeconds),
			application.WithLogger(log),
			application.WithMetrics(rec),
		),
		Health: application.NewHealthService(store, gateway, configured, cfg.HealthPingTimeout, log),
	}

	if cfg.SeedDemoData {
		n, err := Seed(ctx, store)
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("seed: %w", err)
		}
		log.Info("seed.done", zap.Int("inserted", n))
	}
	return app, cleanup, nil
}

// RefreshWorker builds the scheduled refresher for cfg.WatchSymbols. With the
// redis backend, replicas share a claim per symbol.
func (a *App) RefreshWorker() (*worker.RefreshWorker, error) {
	var lock worker.Locker = redisstore.NoopLock{}
	if a.redis != nil {
		lock = redisstore.NewRefreshLock(a.redis, a.Config.RedisKeyPrefix, infraconfig.DefaultRefreshLockTTL)
	}
	return worker.NewRefreshWorker(a.Quotes, a.Config.WatchSymbols, a.Config.RefreshSchedule,
		worker.WithLocker(lock),
		worker.WithRecorder(a.Metrics),
		worker.WithLogger(a.Log.With(zap.String("worker", "refresh"))),
	)
}
