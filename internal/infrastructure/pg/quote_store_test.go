package pg_test

import (
	"context"
	"testing"
	"time"

	"assetquotes-service/internal/application"
	"assetquotes-service/internal/domain"
	"assetquotes-service/internal/infrastructure/pg"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func rec(name, date, price string) domain.QuoteRecord {
	at, _ := time.Parse(domain.DateLayout, date)
	return domain.QuoteRecord{
		ID:              uuid.NewString(),
		AssetKey:        domain.AssetKey(name, date),
		AssetName:       name,
		Symbol:          "XAU",
		Price:           decimal.RequireFromString(price),
		SourceUpdatedAt: at.Add(22 * time.Hour),
		RecordedAt:      at.Add(23 * time.Hour),
		Date:            date,
	}
}

func TestQuoteStore_UpsertKeepsOneRowPerDay(t *testing.T) {
	db := withPostgres(t)
	ctx := context.Background()
	store := pg.NewQuoteStore(db)

	first := rec("gold", "2025-06-14", "3433.399902")
	require.NoError(t, store.Upsert(ctx, first))
	require.NoError(t, store.Upsert(ctx, rec("gold", "2025-06-14", "3440.10")))

	page, err := store.Find(ctx, application.QuoteFilter{AssetName: "gold"}, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, first.ID, page.Items[0].ID)
	require.Equal(t, "3440.1", page.Items[0].Price.String())
	require.Empty(t, page.NextPageToken)
}

func TestQuoteStore_FindPagesByDate(t *testing.T) {
	db := withPostgres(t)
	ctx := context.Background()
	store := pg.NewQuoteStore(db)
	for _, d := range []string{"2025-06-10", "2025-06-11", "2025-06-12", "2025-06-13"} {
		require.NoError(t, store.Upsert(ctx, rec("gold", d, "1")))
	}
	require.NoError(t, store.Upsert(ctx, rec("silver", "2025-06-11", "1")))

	f := application.QuoteFilter{AssetName: "gold", StartDate: "2025-06-11", PageSize: 2}
	p1, err := store.Find(ctx, f, "")
	require.NoError(t, err)
	require.Len(t, p1.Items, 2)
	require.Equal(t, "2025-06-12", p1.NextPageToken)

	p2, err := store.Find(ctx, f, p1.NextPageToken)
	require.NoError(t, err)
	require.Len(t, p2.Items, 1)
	require.Equal(t, "2025-06-13", p2.Items[0].Date)
	require.Empty(t, p2.NextPageToken)

	_, err = store.Find(ctx, f, "garbage")
	require.Error(t, err)
}
