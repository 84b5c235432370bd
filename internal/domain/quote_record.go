package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteRecord is one persisted price observation for one asset on one date.
type QuoteRecord struct {
	ID                      string          `json:"id"`
	AssetKey                string          `json:"asset_key"`
	AssetName               string          `json:"asset_name"`
	Symbol                  Symbol          `json:"symbol"`
	Price                   decimal.Decimal `json:"price"`
	SourceUpdatedAt         time.Time       `json:"source_updated_at"`
	SourceUpdatedAtReadable string          `json:"source_updated_at_readable,omitempty"`
	RecordedAt              time.Time       `json:"recorded_at"`
	Date                    string          `json:"date"`
}

// Quote is the latest price reported upstream for a single symbol.
type Quote struct {
	Name              string
	Symbol            Symbol
	Price             decimal.Decimal
	UpdatedAt         time.Time
	UpdatedAtReadable string
}

// NewQuoteRecord derives a record from an upstream quote and the run's
// execution timestamp. Every record of one run shares recordedAt.
func NewQuoteRecord(id string, q Quote, recordedAt time.Time) QuoteRecord {
	name := NormalizeAssetName(q.Name)
	date := FormatDate(recordedAt)
	return QuoteRecord{
		ID:                      id,
		AssetKey:                AssetKey(name, date),
		AssetName:               name,
		Symbol:                  q.Symbol,
		Price:                   q.Price,
		SourceUpdatedAt:         q.UpdatedAt.UTC(),
		SourceUpdatedAtReadable: q.UpdatedAtReadable,
		RecordedAt:              recordedAt.UTC(),
		Date:                    date,
	}
}
