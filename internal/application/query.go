package application

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"assetquotes-service/internal/domain"
	"assetquotes-service/internal/validation"

	"go.uber.org/zap"
)

const defaultPageSize = 100

type QueryRequest struct {
	AssetName string `json:"asset_name" validate:"required"`
	StartDate string `json:"start_date,omitempty" validate:"omitempty,isodate"`
	EndDate   string `json:"end_date,omitempty" validate:"omitempty,isodate"`
}

type QueryResult struct {
	Count int                  `json:"count"`
	Items []domain.QuoteRecord `json:"items"`
}

// QueryService reconstructs an asset's time series from the store.
type QueryService struct {
	store    QuoteStore
	metrics  Metrics
	log      *zap.Logger
	pageSize int
}

type QueryOption func(*QueryService)

func WithQueryMetrics(m Metrics) QueryOption    { return func(s *QueryService) { s.metrics = m } }
func WithQueryLogger(l *zap.Logger) QueryOption { return func(s *QueryService) { s.log = l } }
func WithPageSize(n int) QueryOption            { return func(s *QueryService) { s.pageSize = n } }

func NewQueryService(store QuoteStore, opts ...QueryOption) *QueryService {
	s := &QueryService{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NoopMetrics{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.pageSize <= 0 {
		s.pageSize = defaultPageSize
	}
	return s
}

var _ QueryInvoker = (*QueryService)(nil)

// Query returns every record of the asset within the inclusive bounds,
// ordered by date. It reads all store pages; a failure on any page fails the
// whole query rather than returning a partial series.
func (s *QueryService) Query(ctx context.Context, req QueryRequest) (res QueryResult, err error) {
	const op = "query.Query"
	defer func() { s.metrics.QueryServed(res.Count, err) }()

	req.AssetName = domain.NormalizeAssetName(req.AssetName)
	req.StartDate = strings.TrimSpace(req.StartDate)
	req.EndDate = strings.TrimSpace(req.EndDate)
	if err := validation.Struct(req); err != nil {
		return QueryResult{}, E(KindInvalidArgument, op, err)
	}
	if req.StartDate != "" && req.EndDate != "" && req.StartDate > req.EndDate {
		return QueryResult{}, Errorf(KindInvalidArgument, op, "start_date %s is after end_date %s", req.StartDate, req.EndDate)
	}
	if s.store == nil {
		return QueryResult{}, E(KindConfiguration, op, errors.New("quote store is not configured"))
	}

	start := time.Now()
	filter := QuoteFilter{
		AssetName: req.AssetName,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		PageSize:  s.pageSize,
	}
	items := []domain.QuoteRecord{}
	token, pages := "", 0
	for {
		page, err := s.store.Find(ctx, filter, token)
		if err != nil {
			return QueryResult{}, E(KindStorage, op, err)
		}
		pages++
		items = append(items, page.Items...)
		if page.NextPageToken == "" {
			break
		}
		if page.NextPageToken == token {
			return QueryResult{}, Errorf(KindStorage, op, "store returned a repeated page token %q", token)
		}
		token = page.NextPageToken
	}
	slices.SortStableFunc(items, func(a, b domain.QuoteRecord) int { return strings.Compare(a.Date, b.Date) })

	s.log.Debug("query.done",
		zap.String("asset_name", req.AssetName),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
		zap.Int("count", len(items)),
		zap.Int("pages", pages),
		zap.Duration("took", time.Since(start)),
	)
	return QueryResult{Count: len(items), Items: items}, nil
}
