package provider

import (
	"context"
	"strings"
	"time"

	"assetquotes-service/internal/application"
	"assetquotes-service/internal/domain"

	"github.com/shopspring/decimal"
)

// Ensure Fake implements application.QuoteSource.
var _ application.QuoteSource = (*Fake)(nil)

// Fake quotes a fixed price for every known symbol.
type Fake struct {
	price decimal.Decimal
}

func NewFake(price string) *Fake { return &Fake{price: decimal.RequireFromString(price)} }

func (f *Fake) Latest(_ context.Context, symbol domain.Symbol) (domain.Quote, error) {
	a, ok := domain.LookupSymbol(string(symbol))
	if !ok {
		return domain.Quote{}, application.E(application.KindUpstreamUnavailable, "fake.Latest", domain.ErrUnknownSymbol)
	}
	return domain.Quote{
		Name:              strings.ToUpper(a.Name[:1]) + a.Name[1:],
		Symbol:            a.Symbol,
		Price:             f.price,
		UpdatedAt:         time.Now().UTC(),
		UpdatedAtReadable: "a few seconds ago",
	}, nil
}
