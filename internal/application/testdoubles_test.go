package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"assetquotes-service/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrRepo     = errors.New("repo error")
	ErrUpstream = errors.New("upstream returned 503")
)

// fakeStore keys records by asset_key and pages results in insertion order.
type fakeStore struct {
	mu        sync.Mutex
	records   map[string]domain.QuoteRecord
	order     []string
	upsertErr map[string]error
	findErr   error
	failPage  int
	finds     int
	upserts   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]domain.QuoteRecord{}, upsertErr: map[string]error{}}
}

func (f *fakeStore) Upsert(_ context.Context, r domain.QuoteRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if err := f.upsertErr[r.AssetName]; err != nil {
		return err
	}
	if prev, ok := f.records[r.AssetKey]; ok {
		r.ID = prev.ID
	} else {
		f.order = append(f.order, r.AssetKey)
	}
	f.records[r.AssetKey] = r
	return nil
}

func (f *fakeStore) Find(_ context.Context, flt QuoteFilter, token string) (QuotePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds++
	if f.findErr != nil && (f.failPage == 0 || f.failPage == f.finds) {
		return QuotePage{}, f.findErr
	}
	offset := 0
	if token != "" {
		n, err := strconv.Atoi(token)
		if err != nil {
			return QuotePage{}, fmt.Errorf("bad token %q", token)
		}
		offset = n
	}
	var matched []domain.QuoteRecord
	for _, k := range f.order {
		if r := f.records[k]; flt.Match(r) {
			matched = append(matched, r)
		}
	}
	if offset >= len(matched) {
		return QuotePage{}, nil
	}
	end := offset + flt.PageSize
	if flt.PageSize <= 0 || end > len(matched) {
		end = len(matched)
	}
	page := QuotePage{Items: matched[offset:end]}
	if end < len(matched) {
		page.NextPageToken = strconv.Itoa(end)
	}
	return page, nil
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) countFor(assetName string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.records {
		if r.AssetName == assetName {
			n++
		}
	}
	return n
}

func (f *fakeStore) put(recs ...domain.QuoteRecord) {
	for _, r := range recs {
		_ = f.Upsert(context.Background(), r)
	}
	f.upserts = 0
}

// fakeSource answers from a fixed price table; errs override per symbol.
type fakeSource struct {
	mu     sync.Mutex
	prices map[domain.Symbol]string
	errs   map[domain.Symbol]error
	calls  int
}

func (f *fakeSource) Latest(_ context.Context, sym domain.Symbol) (domain.Quote, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err := f.errs[sym]; err != nil {
		return domain.Quote{}, err
	}
	a, ok := domain.LookupSymbol(string(sym))
	if !ok {
		return domain.Quote{}, domain.ErrUnknownSymbol
	}
	p := f.prices[sym]
	if p == "" {
		p = "100"
	}
	return domain.Quote{
		Name:      titleCase(a.Name),
		Symbol:    sym,
		Price:     decimal.RequireFromString(p),
		UpdatedAt: time.Date(2025, 6, 14, 22, 54, 24, 0, time.UTC),
	}, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

type seqIDGen struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDGen) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return "id-" + strconv.Itoa(g.n)
}

type fakeLock struct {
	held     map[string]bool
	err      error
	released []string
}

func (l *fakeLock) TryReserve(_ context.Context, key string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.held[key] {
		return false, nil
	}
	if l.held == nil {
		l.held = map[string]bool{}
	}
	l.held[key] = true
	return true, nil
}

func (l *fakeLock) Release(_ context.Context, key string) error {
	delete(l.held, key)
	l.released = append(l.released, key)
	return nil
}

func record(name, date, price string) domain.QuoteRecord {
	return domain.QuoteRecord{
		ID:        name + "-" + date,
		AssetKey:  domain.AssetKey(name, date),
		AssetName: name,
		Price:     decimal.RequireFromString(price),
		Date:      date,
	}
}

type runsMetrics struct {
	NoopMetrics
	runs []domain.IngestionStatus
}

func (m *runsMetrics) RunFinished(st domain.IngestionStatus, _ time.Duration) {
	m.runs = append(m.runs, st)
}
