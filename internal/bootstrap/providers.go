package bootstrap

import (
	"context"
	"errors"
	"net/http"

	"assetquotes-service/internal/application"
	"assetquotes-service/internal/config"
	"assetquotes-service/internal/domain"
	"assetquotes-service/internal/infrastructure/httpx"
	"assetquotes-service/internal/infrastructure/logx"
	"assetquotes-service/internal/infrastructure/memstore"
	"assetquotes-service/internal/infrastructure/metrics"
	"assetquotes-service/internal/infrastructure/pg"
	"assetquotes-service/internal/infrastructure/provider"
	redisstore "assetquotes-service/internal/infrastructure/redis"
	"assetquotes-service/internal/infrastructure/sqlite"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrMissingDBURL = errors.New("DATABASE_URL is required for STORAGE=pg")

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideConfig() config.Config { return config.Load() }

// ProvideStore opens the quote store selected by STORAGE and bootstraps its
// schema.
func ProvideStore(ctx context.Context, log *zap.Logger, cfg config.Config) (application.QuoteStore, func(), error) {
	const op = "bootstrap.ProvideStore"
	switch cfg.Storage {
	case "pg":
		if cfg.DatabaseURL == "" {
			return nil, func() {}, application.E(application.KindConfiguration, op, ErrMissingDBURL)
		}
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, func() {}, err
		}
		if err := pg.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, func() {}, err
		}
		cleanup := func() {
			log.Info("closing pg")
			db.Close()
		}
		return pg.NewQuoteStore(db), cleanup, nil
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLiteDSN)
		if err != nil {
			return nil, func() {}, err
		}
		cleanup := func() {
			log.Info("closing sqlite")
			_ = db.Close()
		}
		return sqlite.NewQuoteStore(db), cleanup, nil
	case "memory":
		return memstore.NewQuoteStore(), func() {}, nil
	default:
		return nil, func() {}, application.Errorf(application.KindConfiguration, op, "unsupported STORAGE=%q", cfg.Storage)
	}
}

func ProvideQuoteSource(cfg config.Config) (application.QuoteSource, error) {
	switch cfg.Provider {
	case "goldapi":
		return &provider.GoldAPIProvider{
			BaseURL: cfg.UpstreamBaseURL,
			Client: &httpx.Client{
				HTTP:       &http.Client{Timeout: cfg.UpstreamTimeout},
				MaxRetries: 1,
			},
		}, nil
	case "fake":
		return provider.NewFake("1.2345"), nil
	default:
		return nil, application.Errorf(application.KindConfiguration, "bootstrap.ProvideQuoteSource", "unsupported UPSTREAM_PROVIDER=%q", cfg.Provider)
	}
}

// ProvideAssets narrows the universe to ASSET_SYMBOLS when set.
func ProvideAssets(cfg config.Config) ([]domain.Asset, error) {
	assets, err := domain.SelectUniverse(cfg.AssetSymbols)
	if err != nil {
		return nil, application.E(application.KindConfiguration, "bootstrap.ProvideAssets", err)
	}
	return assets, nil
}

// ProvideRunLock returns the Redis overlap guard, or a no-op lock when
// RUN_LOCK_BACKEND is not redis.
func ProvideRunLock(cfg config.Config) (application.RunLock, func(), error) {
	if cfg.RunLockBackend != "redis" {
		return application.NoopRunLock{}, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return redisstore.New(client, cfg.RunLockTTL), func() { _ = client.Close() }, nil
}

// ProvideMetrics builds a private registry carrying the runtime collectors
// and the service metrics.
func ProvideMetrics() (*metrics.Recorder, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return metrics.New(reg), reg
}

func ProvideIngestionService(store application.QuoteStore, src application.QuoteSource, assets []domain.Asset,
	lock application.RunLock, m application.Metrics, log *zap.Logger, cfg config.Config,
) *application.IngestionService {
	return application.NewIngestionService(store, src, assets,
		application.WithRunLock(lock),
		application.WithIngestionMetrics(m),
		application.WithIngestionLogger(log),
		application.WithConcurrency(cfg.IngestConcurrency),
		application.WithTimeouts(cfg.UpstreamTimeout, cfg.StoreTimeout),
	)
}

func ProvideQueryService(store application.QuoteStore, m application.Metrics, log *zap.Logger, cfg config.Config) *application.QueryService {
	return application.NewQueryService(store,
		application.WithQueryMetrics(m),
		application.WithQueryLogger(log),
		application.WithPageSize(cfg.QueryPageSize),
	)
}
