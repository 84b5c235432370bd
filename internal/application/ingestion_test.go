package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"assetquotes-service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var runAt = time.Date(2025, 6, 14, 23, 0, 0, 0, time.UTC)

func newIngestion(store QuoteStore, src QuoteSource, opts ...IngestionOption) *IngestionService {
	base := []IngestionOption{WithIngestionClock(fakeClock{t: runAt}), WithIDGen(&seqIDGen{})}
	return NewIngestionService(store, src, domain.Universe, append(base, opts...)...)
}

func Test_Ingestion_AllSucceed(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	svc := newIngestion(store, &fakeSource{prices: map[domain.Symbol]string{"XAU": "3433.40"}})

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.IngestionStatusOK, res.Status)
	require.Equal(t, "2025-06-14", res.Date)
	require.Equal(t, runAt, res.Timestamp)
	require.Len(t, res.Successful, 6)
	require.Empty(t, res.Failed)

	gold := store.records["gold-2025-06-14"]
	require.Equal(t, "gold", gold.AssetName)
	require.Equal(t, domain.Symbol("XAU"), gold.Symbol)
	require.True(t, gold.Price.Equal(decimal.RequireFromString("3433.4")))
	for _, r := range store.records {
		require.Equal(t, runAt, r.RecordedAt, "every record of a run shares the execution timestamp")
		require.Equal(t, "2025-06-14", r.Date)
	}
}

func Test_Ingestion_RerunSameDateDoesNotDuplicate(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	src := &fakeSource{prices: map[domain.Symbol]string{"XAU": "3433.40"}}
	svc := newIngestion(store, src)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	firstID := store.records["gold-2025-06-14"].ID

	src.prices["XAU"] = "3440.00"
	_, err = svc.Run(context.Background())
	require.NoError(t, err)

	for _, a := range domain.Universe {
		require.Equal(t, 1, store.countFor(a.Name), a.Name)
	}
	gold := store.records["gold-2025-06-14"]
	require.Equal(t, firstID, gold.ID)
	require.True(t, gold.Price.Equal(decimal.RequireFromString("3440")))
}

func Test_Ingestion_OneUpstreamFailureIsIsolated(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	svc := newIngestion(store, &fakeSource{errs: map[domain.Symbol]error{"HG": ErrUpstream}})

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.IngestionStatusPartial, res.Status)
	require.Equal(t, []domain.Symbol{"HG"}, res.Failed)
	require.ElementsMatch(t, []domain.Symbol{"XAU", "XAG", "XPD", "BTC", "ETH"}, res.Successful)
	require.Len(t, store.records, 5)
	require.Zero(t, store.countFor("copper"))
}

func Test_Ingestion_StorageFailureIsIsolated(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.upsertErr["bitcoin"] = ErrRepo
	svc := newIngestion(store, &fakeSource{})

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.IngestionStatusPartial, res.Status)
	require.Equal(t, []domain.Symbol{"BTC"}, res.Failed)
	require.Len(t, res.Successful, 5)
}

func Test_Ingestion_MalformedPayloadRejected(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	src := NewMockQuoteSource(ctrl)
	src.EXPECT().Latest(gomock.Any(), domain.Symbol("XAU")).
		Return(domain.Quote{Name: "", Symbol: "XAU", Price: decimal.NewFromInt(1)}, nil)
	src.EXPECT().Latest(gomock.Any(), domain.Symbol("XAG")).
		Return(domain.Quote{Name: "Silver", Symbol: "XAG", Price: decimal.Zero}, nil)
	src.EXPECT().Latest(gomock.Any(), domain.Symbol("HG")).
		Return(domain.Quote{Name: "Copper", Symbol: "XAU", Price: decimal.NewFromInt(4)}, nil)

	store := newFakeStore()
	assets := []domain.Asset{domain.Universe[0], domain.Universe[1], domain.Universe[3]}
	svc := NewIngestionService(store, src, assets, WithIngestionClock(fakeClock{t: runAt}))

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.IngestionStatusPartial, res.Status)
	require.Empty(t, res.Successful)
	require.Equal(t, []domain.Symbol{"HG", "XAG", "XAU"}, res.Failed)
	require.Zero(t, store.upserts)
}

func Test_Ingestion_MissingSymbolFilledFromAsset(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	src := NewMockQuoteSource(ctrl)
	src.EXPECT().Latest(gomock.Any(), domain.Symbol("ETH")).
		Return(domain.Quote{Name: "Ethereum", Price: decimal.RequireFromString("2500.5")}, nil)

	store := newFakeStore()
	svc := NewIngestionService(store, src, []domain.Asset{domain.Universe[5]}, WithIngestionClock(fakeClock{t: runAt}))

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.IngestionStatusOK, res.Status)
	require.Equal(t, domain.Symbol("ETH"), store.records["ethereum-2025-06-14"].Symbol)
}

type misconfiguredSource struct{ fakeSource }

func (*misconfiguredSource) CheckConfig() error { return errors.New("upstream base url is empty") }

func Test_Ingestion_ConfigurationErrorAbortsBeforeFetching(t *testing.T) {
	t.Parallel()
	src := &misconfiguredSource{}
	store := newFakeStore()
	svc := newIngestion(store, src)

	res, err := svc.Run(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrConfiguration)
	require.Equal(t, KindConfiguration, KindOf(err))
	require.Equal(t, domain.IngestionStatusError, res.Status)
	require.Zero(t, src.calls)
	require.Zero(t, store.upserts)

	_, err = NewIngestionService(store, &fakeSource{}, nil).Run(context.Background())
	require.ErrorIs(t, err, ErrConfiguration)
}

func Test_Ingestion_OverlappingRunSkipped(t *testing.T) {
	t.Parallel()
	lock := &fakeLock{held: map[string]bool{"ingest:2025-06-14:23": true}}
	src := &fakeSource{}
	m := &runsMetrics{}
	svc := newIngestion(newFakeStore(), src, WithRunLock(lock), WithIngestionMetrics(m))

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Skipped)
	require.Equal(t, domain.IngestionStatusPartial, res.Status)
	require.NotEmpty(t, res.Error)
	require.Zero(t, src.calls)
	require.Equal(t, []domain.IngestionStatus{domain.IngestionStatusPartial}, m.runs)
	require.Empty(t, lock.released)
}

func Test_Ingestion_LockReleasedAfterRun(t *testing.T) {
	t.Parallel()
	lock := &fakeLock{}
	store := newFakeStore()
	src := &fakeSource{errs: map[domain.Symbol]error{"HG": ErrUpstream}}
	svc := newIngestion(store, src, WithRunLock(lock))

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.IngestionStatusPartial, res.Status)
	require.Equal(t, []string{"ingest:2025-06-14:23"}, lock.released)
	require.Zero(t, store.countFor("copper"))

	delete(src.errs, "HG")
	res, err = svc.Run(context.Background())
	require.NoError(t, err)
	require.False(t, res.Skipped)
	require.Equal(t, domain.IngestionStatusOK, res.Status)
	require.Equal(t, 1, store.countFor("copper"))
}

func Test_Ingestion_LockErrorDoesNotBlockRun(t *testing.T) {
	t.Parallel()
	svc := newIngestion(newFakeStore(), &fakeSource{}, WithRunLock(&fakeLock{err: errors.New("redis down")}))

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.False(t, res.Skipped)
	require.Len(t, res.Successful, 6)
}

func Test_Ingestion_CancelledContextFailsAssets(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	src := NewMockQuoteSource(ctrl)
	src.EXPECT().Latest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ domain.Symbol) (domain.Quote, error) {
			<-ctx.Done()
			return domain.Quote{}, ctx.Err()
		}).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := newIngestion(newFakeStore(), src).Run(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.IngestionStatusPartial, res.Status)
	require.Len(t, res.Failed, 6)
}

func Test_Ingestion_UpstreamTimeoutBounded(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	src := NewMockQuoteSource(ctrl)
	src.EXPECT().Latest(gomock.Any(), domain.Symbol("XAU")).
		DoAndReturn(func(ctx context.Context, _ domain.Symbol) (domain.Quote, error) {
			<-ctx.Done()
			return domain.Quote{}, ctx.Err()
		})

	svc := NewIngestionService(newFakeStore(), src, domain.Universe[:1],
		WithIngestionClock(fakeClock{t: runAt}),
		WithTimeouts(20*time.Millisecond, time.Second),
	)
	start := time.Now()
	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []domain.Symbol{"XAU"}, res.Failed)
	require.Less(t, time.Since(start), 2*time.Second)
}
