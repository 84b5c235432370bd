package domain

import (
	"fmt"
	"strings"
)

type Symbol string

type Asset struct {
	Symbol Symbol
	Name   string
}

// Universe is the fixed set of assets ingested on every run.
var Universe = []Asset{
	{Symbol: "XAU", Name: "gold"},
	{Symbol: "XAG", Name: "silver"},
	{Symbol: "XPD", Name: "palladium"},
	{Symbol: "HG", Name: "copper"},
	{Symbol: "BTC", Name: "bitcoin"},
	{Symbol: "ETH", Name: "ethereum"},
}

func LookupSymbol(s string) (Asset, bool) {
	sym := Symbol(strings.ToUpper(strings.TrimSpace(s)))
	for _, a := range Universe {
		if a.Symbol == sym {
			return a, true
		}
	}
	return Asset{}, false
}

// SelectUniverse restricts the universe to the given symbols, keeping the
// configured order. An empty selection returns the full universe.
func SelectUniverse(symbols []string) ([]Asset, error) {
	if len(symbols) == 0 {
		out := make([]Asset, len(Universe))
		copy(out, Universe)
		return out, nil
	}
	seen := make(map[Symbol]bool, len(symbols))
	out := make([]Asset, 0, len(symbols))
	for _, s := range symbols {
		if strings.TrimSpace(s) == "" {
			continue
		}
		a, ok := LookupSymbol(s)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, s)
		}
		if seen[a.Symbol] {
			continue
		}
		seen[a.Symbol] = true
		out = append(out, a)
	}
	return out, nil
}

// NormalizeAssetName lowercases and trims a display name for matching.
func NormalizeAssetName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
