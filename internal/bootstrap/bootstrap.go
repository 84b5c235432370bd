package bootstrap

import (
	"context"
	"net/http"

	"assetquotes-service/internal/application"
	"assetquotes-service/internal/config"
	"assetquotes-service/internal/infrastructure/grpc/queryclient"
	"assetquotes-service/internal/infrastructure/grpc/queryserver"
	httpserver "assetquotes-service/internal/infrastructure/http"
)

// API is everything cmd/api serves.
type API struct {
	Handler http.Handler
	Query   *application.QueryService
	Ingest  *application.IngestionService
	// RunGRPC serves the query service on GRPC_ADDR until ctx is done.
	RunGRPC func(ctx context.Context) error
}

// cleanups runs registered cleanup funcs in reverse order.
type cleanups []func()

func (c *cleanups) add(fn func()) { *c = append(*c, fn) }

func (c cleanups) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// core is the shared object graph of the API and worker processes.
type core struct {
	store  application.QuoteStore
	ingest *application.IngestionService
	query  *application.QueryService
}

func initCore(ctx context.Context, cfg config.Config, m application.Metrics, cl *cleanups) (core, error) {
	log := ProvideLogger()
	store, closeStore, err := ProvideStore(ctx, log, cfg)
	cl.add(closeStore)
	if err != nil {
		return core{}, err
	}
	src, err := ProvideQuoteSource(cfg)
	if err != nil {
		return core{}, err
	}
	assets, err := ProvideAssets(cfg)
	if err != nil {
		return core{}, err
	}
	lock, closeLock, err := ProvideRunLock(cfg)
	cl.add(closeLock)
	if err != nil {
		return core{}, err
	}
	return core{
		store:  store,
		ingest: ProvideIngestionService(store, src, assets, lock, m, log, cfg),
		query:  ProvideQueryService(store, m, log, cfg),
	}, nil
}

func InitAPI(ctx context.Context, cfg config.Config) (*API, func(), error) {
	var cl cleanups
	rec, reg := ProvideMetrics()
	c, err := initCore(ctx, cfg, rec, &cl)
	if err != nil {
		cl.run()
		return nil, func() {}, err
	}

	srv := httpserver.NewServer(c.query, c.ingest)
	srv.SetReadyCheck(c.store.Ping)
	log := ProvideLogger()
	return &API{
		Handler: httpserver.NewRouter(srv, httpserver.WithMetrics(rec, reg)),
		Query:   c.query,
		Ingest:  c.ingest,
		RunGRPC: func(ctx context.Context) error {
			return queryserver.RunServer(ctx, cfg.GRPCAddr, queryserver.NewServer(c.query, log), log)
		},
	}, cl.run, nil
}

// InitToolFacade dials the API process and returns a facade backed by the
// gRPC query client.
func InitToolFacade(ctx context.Context, cfg config.Config) (*application.ToolFacade, func(), error) {
	client, closeConn, err := queryclient.New(ctx, cfg.GRPCTarget, cfg.RequestTimeout)
	if err != nil {
		return nil, func() {}, err
	}
	return application.NewToolFacade(client, nil), closeConn, nil
}
