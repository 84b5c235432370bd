package memstore

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"assetquotes-service/internal/application"
	"assetquotes-service/internal/domain"
)

var _ application.QuoteStore = (*QuoteStore)(nil)

// QuoteStore is a process-local store for dev runs and tests.
type QuoteStore struct {
	mu      sync.RWMutex
	records map[string]domain.QuoteRecord
}

func NewQuoteStore() *QuoteStore {
	return &QuoteStore{records: map[string]domain.QuoteRecord{}}
}

func (s *QuoteStore) Upsert(_ context.Context, r domain.QuoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := domain.AssetKey(r.AssetName, r.Date)
	if prev, ok := s.records[key]; ok {
		r.ID = prev.ID
	}
	r.AssetKey = key
	s.records[key] = r
	return nil
}

func (s *QuoteStore) Find(_ context.Context, f application.QuoteFilter, pageToken string) (application.QuotePage, error) {
	if pageToken != "" {
		if _, err := domain.ParseDate(pageToken); err != nil {
			return application.QuotePage{}, fmt.Errorf("invalid page token: %w", err)
		}
	}
	s.mu.RLock()
	var matched []domain.QuoteRecord
	for _, r := range s.records {
		if f.Match(r) && (pageToken == "" || r.Date > pageToken) {
			matched = append(matched, r)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b domain.QuoteRecord) int { return strings.Compare(a.Date, b.Date) })
	page := application.QuotePage{Items: matched}
	if f.PageSize > 0 && len(matched) > f.PageSize {
		page.Items = matched[:f.PageSize]
		page.NextPageToken = matched[f.PageSize-1].Date
	}
	return page, nil
}

func (s *QuoteStore) Ping(context.Context) error { return nil }

// Len reports the number of stored records.
func (s *QuoteStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
