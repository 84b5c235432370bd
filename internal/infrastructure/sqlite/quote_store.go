package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"assetquotes-service/internal/application"
	"assetquotes-service/internal/domain"

	"github.com/shopspring/decimal"
)

// QuoteStore keeps quote records in a single SQLite table. Prices are stored
// as decimal strings so no precision is lost.
type QuoteStore struct {
	db *DB
}

var _ application.QuoteStore = (*QuoteStore)(nil)

func NewQuoteStore(db *DB) *QuoteStore {
	return &QuoteStore{db: db}
}

func (s *QuoteStore) Upsert(ctx context.Context, r domain.QuoteRecord) error {
	const query = `INSERT INTO quote_records
		(id, asset_key, asset_name, symbol, price, source_updated_at, source_updated_at_readable, recorded_at, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (asset_name, date) DO UPDATE SET
			symbol = excluded.symbol,
			price = excluded.price,
			source_updated_at = excluded.source_updated_at,
			source_updated_at_readable = excluded.source_updated_at_readable,
			recorded_at = excluded.recorded_at`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.AssetKey, r.AssetName, string(r.Symbol), r.Price.String(),
		formatTime(r.SourceUpdatedAt), r.SourceUpdatedAtReadable, formatTime(r.RecordedAt), r.Date,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", r.AssetKey, err)
	}
	return nil
}

func (s *QuoteStore) Find(ctx context.Context, f application.QuoteFilter, pageToken string) (application.QuotePage, error) {
	conds := []string{"asset_name = ?"}
	args := []any{f.AssetName}
	if f.StartDate != "" {
		conds = append(conds, "date >= ?")
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		conds = append(conds, "date <= ?")
		args = append(args, f.EndDate)
	}
	if pageToken != "" {
		if _, err := domain.ParseDate(pageToken); err != nil {
			return application.QuotePage{}, fmt.Errorf("invalid page token: %w", err)
		}
		conds = append(conds, "date > ?")
		args = append(args, pageToken)
	}
	limit := f.PageSize
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit+1)

	query := `SELECT id, asset_key, asset_name, symbol, price, source_updated_at, source_updated_at_readable, recorded_at, date
		FROM quote_records
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY date ASC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return application.QuotePage{}, fmt.Errorf("find %s: %w", f.AssetName, err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.QuoteRecord
	for rows.Next() {
		var r domain.QuoteRecord
		var symbol, price, srcAt, recordedAt string
		if err := rows.Scan(&r.ID, &r.AssetKey, &r.AssetName, &symbol, &price, &srcAt, &r.SourceUpdatedAtReadable, &recordedAt, &r.Date); err != nil {
			return application.QuotePage{}, fmt.Errorf("scan quote record: %w", err)
		}
		r.Symbol = domain.Symbol(symbol)
		if r.Price, err = decimal.NewFromString(price); err != nil {
			return application.QuotePage{}, fmt.Errorf("scan price %q: %w", price, err)
		}
		r.SourceUpdatedAt = parseTime(srcAt)
		r.RecordedAt = parseTime(recordedAt)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return application.QuotePage{}, err
	}

	page := application.QuotePage{Items: out}
	if len(out) > limit {
		page.Items = out[:limit]
		page.NextPageToken = out[limit-1].Date
	}
	return page, nil
}

func (s *QuoteStore) Ping(ctx context.Context) error { return s.db.Ping(ctx) }

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
