package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"assetquotes-service/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultConcurrency     = 4
	defaultUpstreamTimeout = 10 * time.Second
	defaultStoreTimeout    = 5 * time.Second
)

// IngestionService fetches the latest quote for every asset of the universe
// and stores one record per asset per run date.
type IngestionService struct {
	store   QuoteStore
	source  QuoteSource
	assets  []domain.Asset
	lock    RunLock
	metrics Metrics
	clock   Clock
	idgen   IDGen
	log     *zap.Logger

	concurrency     int
	upstreamTimeout time.Duration
	storeTimeout    time.Duration
}

type IngestionOption func(*IngestionService)

func WithIngestionClock(c Clock) IngestionOption { return func(s *IngestionService) { s.clock = c } }
func WithIDGen(g IDGen) IngestionOption          { return func(s *IngestionService) { s.idgen = g } }
func WithRunLock(l RunLock) IngestionOption      { return func(s *IngestionService) { s.lock = l } }
func WithIngestionMetrics(m Metrics) IngestionOption {
	return func(s *IngestionService) { s.metrics = m }
}
func WithIngestionLogger(l *zap.Logger) IngestionOption {
	return func(s *IngestionService) { s.log = l }
}
func WithConcurrency(n int) IngestionOption {
	return func(s *IngestionService) { s.concurrency = n }
}
func WithTimeouts(upstream, store time.Duration) IngestionOption {
	return func(s *IngestionService) { s.upstreamTimeout, s.storeTimeout = upstream, store }
}

func NewIngestionService(store QuoteStore, source QuoteSource, assets []domain.Asset, opts ...IngestionOption) *IngestionService {
	s := &IngestionService{
		store:  store,
		source: source,
		assets: assets,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.idgen == nil {
		s.idgen = defaultIDGen{}
	}
	if s.lock == nil {
		s.lock = NoopRunLock{}
	}
	if s.metrics == nil {
		s.metrics = NoopMetrics{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.concurrency <= 0 {
		s.concurrency = defaultConcurrency
	}
	if s.upstreamTimeout <= 0 {
		s.upstreamTimeout = defaultUpstreamTimeout
	}
	if s.storeTimeout <= 0 {
		s.storeTimeout = defaultStoreTimeout
	}
	return s
}

// Run performs one fetch-and-store pass. Per-asset failures land in the
// result's Failed list and never abort the run; the returned error is set
// only when the run could not start.
func (s *IngestionService) Run(ctx context.Context) (domain.IngestionResult, error) {
	const op = "ingestion.Run"
	start := time.Now()
	runAt := s.clock.Now().UTC()
	res := domain.IngestionResult{
		Timestamp:  runAt,
		Date:       domain.FormatDate(runAt),
		Successful: []domain.Symbol{},
		Failed:     []domain.Symbol{},
	}
	log := s.log.With(zap.String("run_date", res.Date), zap.Time("run_at", runAt))

	if err := s.checkConfig(); err != nil {
		err = E(KindConfiguration, op, err)
		log.Error("ingest.config_invalid", zap.Error(err))
		res.Status = domain.IngestionStatusError
		res.Error = err.Error()
		s.metrics.RunFinished(res.Status, time.Since(start))
		return res, err
	}

	lockKey := fmt.Sprintf("ingest:%s:%02d", res.Date, runAt.Hour())
	ok, err := s.lock.TryReserve(ctx, lockKey)
	switch {
	case err != nil:
		log.Warn("ingest.lock_unavailable", zap.String("key", lockKey), zap.Error(err))
	case !ok:
		// Nothing was written by this call, so it cannot claim ok.
		log.Info("ingest.skipped_overlapping_run", zap.String("key", lockKey))
		res.Status = domain.IngestionStatusPartial
		res.Skipped = true
		res.Error = "another ingestion run is in progress"
		s.metrics.RunFinished(res.Status, time.Since(start))
		return res, nil
	default:
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx), lockKey); err != nil {
				log.Warn("ingest.lock_release_failed", zap.String("key", lockKey), zap.Error(err))
			}
		}()
	}

	log.Info("ingest.start", zap.Int("assets", len(s.assets)), zap.Int("concurrency", s.concurrency))

	errs := make([]error, len(s.assets))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, a := range s.assets {
		i, a := i, a
		g.Go(func() error {
			errs[i] = s.ingestOne(ctx, log, a, runAt)
			return nil
		})
	}
	_ = g.Wait()

	for i, a := range s.assets {
		if errs[i] != nil {
			res.Failed = append(res.Failed, a.Symbol)
			continue
		}
		res.Successful = append(res.Successful, a.Symbol)
	}
	slices.Sort(res.Successful)
	slices.Sort(res.Failed)
	res.Status = domain.StatusFor(res.Failed)

	log.Info("ingest.done",
		zap.String("status", string(res.Status)),
		zap.Any("successful", res.Successful),
		zap.Any("failed", res.Failed),
		zap.Duration("took", time.Since(start)),
	)
	s.metrics.RunFinished(res.Status, time.Since(start))
	return res, nil
}

func (s *IngestionService) checkConfig() error {
	if s.store == nil {
		return errors.New("quote store is not configured")
	}
	if s.source == nil {
		return errors.New("quote source is not configured")
	}
	if len(s.assets) == 0 {
		return errors.New("asset universe is empty")
	}
	if c, ok := s.source.(ConfigChecker); ok {
		return c.CheckConfig()
	}
	return nil
}

func (s *IngestionService) ingestOne(ctx context.Context, log *zap.Logger, a domain.Asset, runAt time.Time) (err error) {
	start := time.Now()
	log = log.With(zap.String("symbol", string(a.Symbol)))
	defer func() {
		if r := recover(); r != nil {
			err = Errorf(KindInternal, "ingest "+string(a.Symbol), "panic: %v", r)
		}
		if err != nil {
			log.Error("ingest.asset_failed", zap.String("kind", string(KindOf(err))), zap.Error(err))
			s.metrics.AssetFailed(a.Symbol, KindOf(err))
			return
		}
		s.metrics.AssetIngested(a.Symbol, time.Since(start))
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	q, err := s.source.Latest(fetchCtx, a.Symbol)
	cancel()
	if err != nil {
		return E(KindUpstreamUnavailable, "fetch "+string(a.Symbol), err)
	}
	if err := checkQuote(a, q); err != nil {
		return E(KindUpstreamUnavailable, "fetch "+string(a.Symbol), err)
	}
	if q.Symbol == "" {
		q.Symbol = a.Symbol
	}

	rec := domain.NewQuoteRecord(s.idgen.NewID(), q, runAt)
	writeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.store.Upsert(writeCtx, rec); err != nil {
		return E(KindStorage, "store "+rec.AssetKey, err)
	}
	log.Info("ingest.asset_stored",
		zap.String("asset_key", rec.AssetKey),
		zap.String("price", rec.Price.String()),
		zap.Time("source_updated_at", rec.SourceUpdatedAt),
	)
	return nil
}

func checkQuote(a domain.Asset, q domain.Quote) error {
	switch {
	case domain.NormalizeAssetName(q.Name) == "":
		return fmt.Errorf("%w: missing name", domain.ErrInvalidQuote)
	case !q.Price.IsPositive():
		return fmt.Errorf("%w: non-positive price %s", domain.ErrInvalidQuote, q.Price)
	case q.Symbol != "" && q.Symbol != a.Symbol:
		return fmt.Errorf("%w: asked for %s, got %s", domain.ErrInvalidQuote, a.Symbol, q.Symbol)
	}
	return nil
}
