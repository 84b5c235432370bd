package application

import (
	"context"
	"time"

	"assetquotes-service/internal/domain"
)

// QuoteFilter selects records of one asset within optional inclusive bounds.
// Empty bounds are open.
type QuoteFilter struct {
	AssetName string
	StartDate string
	EndDate   string
	PageSize  int
}

// Match reports whether r satisfies the filter. Dates compare as strings
// since they share a fixed-width layout.
func (f QuoteFilter) Match(r domain.QuoteRecord) bool {
	if r.AssetName != f.AssetName {
		return false
	}
	if f.StartDate != "" && r.Date < f.StartDate {
		return false
	}
	if f.EndDate != "" && r.Date > f.EndDate {
		return false
	}
	return true
}

type QuotePage struct {
	Items         []domain.QuoteRecord
	NextPageToken string
}

type QuoteStore interface {
	// Upsert writes r keyed by (asset_name, date), replacing an existing
	// record for the same key while keeping its id.
	Upsert(ctx context.Context, r domain.QuoteRecord) error
	// Find returns one page of matching records; an empty NextPageToken
	// marks the last page.
	Find(ctx context.Context, f QuoteFilter, pageToken string) (QuotePage, error)
	Ping(ctx context.Context) error
}

//go:generate mockgen -package=application -destination=mock_quote_source_test.go -source=ports.go QuoteSource

type QuoteSource interface {
	Latest(ctx context.Context, symbol domain.Symbol) (domain.Quote, error)
}

// ConfigChecker is implemented by sources that can detect misconfiguration
// before any request is made.
type ConfigChecker interface {
	CheckConfig() error
}

// QueryInvoker runs a range query, in-process or across an RPC boundary.
type QueryInvoker interface {
	Query(ctx context.Context, req QueryRequest) (QueryResult, error)
}

type Metrics interface {
	AssetIngested(symbol domain.Symbol, took time.Duration)
	AssetFailed(symbol domain.Symbol, kind Kind)
	RunFinished(status domain.IngestionStatus, took time.Duration)
	QueryServed(count int, err error)
}

type NoopMetrics struct{}

func (NoopMetrics) AssetIngested(domain.Symbol, time.Duration)        {}
func (NoopMetrics) AssetFailed(domain.Symbol, Kind)                   {}
func (NoopMetrics) RunFinished(domain.IngestionStatus, time.Duration) {}
func (NoopMetrics) QueryServed(int, error)                            {}
