package pg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"assetquotes-service/internal/application"
	"assetquotes-service/internal/domain"
	"assetquotes-service/internal/infrastructure/logx"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QuoteStore persists quote records with one row per (asset_name, date).
// Pages are keyed by date, which is unique within one asset.
type QuoteStore struct{ db *DB }

var _ application.QuoteStore = (*QuoteStore)(nil)

func NewQuoteStore(db *DB) *QuoteStore { return &QuoteStore{db: db} }

func (s *QuoteStore) Upsert(ctx context.Context, r domain.QuoteRecord) error {
	const up = `
        INSERT INTO quote_records(id, asset_key, asset_name, symbol, price,
            source_updated_at, source_updated_at_readable, recorded_at, date)
        VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9::date)
        ON CONFLICT (asset_name, date) DO UPDATE
          SET symbol=EXCLUDED.symbol,
              price=EXCLUDED.price,
              source_updated_at=EXCLUDED.source_updated_at,
              source_updated_at_readable=EXCLUDED.source_updated_at_readable,
              recorded_at=EXCLUDED.recorded_at`
	log := logx.WithFields(ctx).With(
		zap.String("repo", "quote_records"),
		zap.String("operation", "Upsert"),
		zap.String("asset_key", r.AssetKey),
	)
	log.Debug("sql.exec_start")
	tag, err := s.db.Pool.Exec(ctx, up,
		r.ID, r.AssetKey, r.AssetName, string(r.Symbol), r.Price.String(),
		nullTime(r.SourceUpdatedAt), nullString(r.SourceUpdatedAtReadable), r.RecordedAt, r.Date,
	)
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return fmt.Errorf("upsert %s: %w", r.AssetKey, err)
	}
	log.Debug("sql.exec_success", zap.Int64("rows_affected", tag.RowsAffected()))
	return nil
}

func (s *QuoteStore) Find(ctx context.Context, f application.QuoteFilter, pageToken string) (application.QuotePage, error) {
	var (
		where = []string{"asset_name = $1"}
		args  = []any{f.AssetName}
	)
	add := func(cond, v string) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.StartDate != "" {
		add("date >= $%d::date", f.StartDate)
	}
	if f.EndDate != "" {
		add("date <= $%d::date", f.EndDate)
	}
	if pageToken != "" {
		if _, err := domain.ParseDate(pageToken); err != nil {
			return application.QuotePage{}, fmt.Errorf("invalid page token: %w", err)
		}
		add("date > $%d::date", pageToken)
	}
	limit := f.PageSize
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit+1)
	q := fmt.Sprintf(`
        SELECT id::text, asset_key, asset_name, symbol, price::text,
               source_updated_at, COALESCE(source_updated_at_readable, ''), recorded_at, date::text
        FROM quote_records
        WHERE %s
        ORDER BY date
        LIMIT $%d`, strings.Join(where, " AND "), len(args))

	log := logx.WithFields(ctx).With(
		zap.String("repo", "quote_records"),
		zap.String("operation", "Find"),
		zap.String("asset_name", f.AssetName),
	)
	log.Debug("sql.query_start")
	rows, err := s.db.Pool.Query(ctx, q, args...)
	if err != nil {
		log.Error("sql.query_failed", zap.Error(err))
		return application.QuotePage{}, fmt.Errorf("find %s: %w", f.AssetName, err)
	}
	defer rows.Close()

	var out []domain.QuoteRecord
	for rows.Next() {
		var (
			r      domain.QuoteRecord
			symbol string
			price  string
			srcAt  *time.Time
		)
		if err := rows.Scan(&r.ID, &r.AssetKey, &r.AssetName, &symbol, &price,
			&srcAt, &r.SourceUpdatedAtReadable, &r.RecordedAt, &r.Date); err != nil {
			return application.QuotePage{}, fmt.Errorf("scan quote record: %w", err)
		}
		r.Symbol = domain.Symbol(symbol)
		if r.Price, err = decimal.NewFromString(price); err != nil {
			return application.QuotePage{}, fmt.Errorf("scan price %q: %w", price, err)
		}
		if srcAt != nil {
			r.SourceUpdatedAt = srcAt.UTC()
		}
		r.RecordedAt = r.RecordedAt.UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		log.Error("sql.query_failed", zap.Error(err))
		return application.QuotePage{}, err
	}

	page := application.QuotePage{Items: out}
	if len(out) > limit {
		page.Items = out[:limit]
		page.NextPageToken = out[limit-1].Date
	}
	log.Debug("sql.query_success", zap.Int("rows", len(page.Items)), zap.Bool("more", page.NextPageToken != ""))
	return page, nil
}

func (s *QuoteStore) Ping(ctx context.Context) error { return s.db.Ping(ctx) }

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
