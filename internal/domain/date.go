package domain

import (
	"fmt"
	"time"
)

// DateLayout is the fixed-width ISO calendar date used for record dates and
// query bounds; lexicographic order matches chronological order.
const DateLayout = "2006-01-02"

func FormatDate(t time.Time) string { return t.UTC().Format(DateLayout) }

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// AssetKey builds the idempotency key for one asset on one calendar date.
func AssetKey(assetName, date string) string {
	return NormalizeAssetName(assetName) + "-" + date
}
