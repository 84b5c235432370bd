package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSelectUniverse(t *testing.T) {
	t.Parallel()
	all, err := SelectUniverse(nil)
	require.NoError(t, err)
	require.Len(t, all, 6)

	sub, err := SelectUniverse([]string{"xau", " HG ", "XAU"})
	require.NoError(t, err)
	require.Equal(t, []Asset{{Symbol: "XAU", Name: "gold"}, {Symbol: "HG", Name: "copper"}}, sub)

	_, err = SelectUniverse([]string{"DOGE"})
	require.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestNewQuoteRecord(t *testing.T) {
	t.Parallel()
	runAt := time.Date(2025, 6, 14, 23, 10, 0, 0, time.UTC)
	q := Quote{
		Name:      "Gold",
		Symbol:    "XAU",
		Price:     decimal.RequireFromString("3433.40"),
		UpdatedAt: time.Date(2025, 6, 14, 22, 54, 24, 0, time.UTC),
	}
	r := NewQuoteRecord("id-1", q, runAt)
	require.Equal(t, "gold", r.AssetName)
	require.Equal(t, "gold-2025-06-14", r.AssetKey)
	require.Equal(t, "2025-06-14", r.Date)
	require.Equal(t, runAt, r.RecordedAt)
	require.True(t, r.Price.Equal(decimal.RequireFromString("3433.4")))
}

func TestQuoteRecord_PriceIsExactJSONString(t *testing.T) {
	t.Parallel()
	r := QuoteRecord{Price: decimal.RequireFromString("3433.40")}
	b, err := json.Marshal(r)
	require.NoError(t, err)
	require.Contains(t, string(b), `"price":"3433.4"`)

	var back QuoteRecord
	require.NoError(t, json.Unmarshal([]byte(`{"price":"0.1000000000000000055"}`), &back))
	require.Equal(t, "0.1000000000000000055", back.Price.String())
}

func TestParseDate(t *testing.T) {
	t.Parallel()
	_, err := ParseDate("2025-06-14")
	require.NoError(t, err)
	for _, bad := range []string{"2025-6-14", "14-06-2025", "2025-02-30", ""} {
		_, err := ParseDate(bad)
		require.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}
