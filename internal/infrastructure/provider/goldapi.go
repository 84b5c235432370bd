package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"assetquotes-service/internal/application"
	"assetquotes-service/internal/domain"
	"assetquotes-service/internal/infrastructure/httpx"
	"assetquotes-service/internal/validation"

	"github.com/shopspring/decimal"
)

// GoldAPIProvider reads the latest price of one symbol from
// GET {BaseURL}/{symbol}.
type GoldAPIProvider struct {
	BaseURL string
	Client  *httpx.Client
}

var (
	_ application.QuoteSource   = (*GoldAPIProvider)(nil)
	_ application.ConfigChecker = (*GoldAPIProvider)(nil)
)

type goldAPIResp struct {
	Name              string      `json:"name" validate:"required"`
	Price             json.Number `json:"price" validate:"required"`
	Symbol            string      `json:"symbol" validate:"required"`
	UpdatedAt         string      `json:"updatedAt,omitempty" validate:"omitempty,rfc3339"`
	UpdatedAtReadable string      `json:"updatedAtReadable,omitempty"`
}

func (p *GoldAPIProvider) CheckConfig() error {
	if strings.TrimSpace(p.BaseURL) == "" {
		return errors.New("goldapi: missing base url")
	}
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return fmt.Errorf("goldapi: invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("goldapi: base url must be absolute http(s), got %q", p.BaseURL)
	}
	return nil
}

func (p *GoldAPIProvider) Latest(ctx context.Context, symbol domain.Symbol) (domain.Quote, error) {
	const op = "goldapi.Latest"
	if err := p.CheckConfig(); err != nil {
		return domain.Quote{}, application.E(application.KindConfiguration, op, err)
	}
	endpoint, err := url.JoinPath(p.BaseURL, url.PathEscape(string(symbol)))
	if err != nil {
		return domain.Quote{}, application.E(application.KindConfiguration, op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("goldapi: create request: %w", err)
	}

	client := p.Client
	if client == nil {
		client = &httpx.Client{}
	}
	var body goldAPIResp
	if err := client.DoJSON(ctx, req, &body); err != nil {
		return domain.Quote{}, application.E(application.KindUpstreamUnavailable, op, fmt.Errorf("goldapi %s: %w", symbol, err))
	}
	return toQuote(body)
}

func toQuote(body goldAPIResp) (domain.Quote, error) {
	const op = "goldapi.decode"
	if err := validation.Struct(body); err != nil {
		return domain.Quote{}, application.E(application.KindUpstreamUnavailable, op, fmt.Errorf("%w: %v", domain.ErrInvalidQuote, err))
	}
	price, err := decimal.NewFromString(body.Price.String())
	if err != nil {
		return domain.Quote{}, application.E(application.KindUpstreamUnavailable, op, fmt.Errorf("%w: price %q", domain.ErrInvalidQuote, body.Price))
	}
	var updatedAt time.Time
	if body.UpdatedAt != "" {
		updatedAt, _ = time.Parse(time.RFC3339, body.UpdatedAt)
	}
	return domain.Quote{
		Name:              body.Name,
		Symbol:            domain.Symbol(strings.ToUpper(body.Symbol)),
		Price:             price,
		UpdatedAt:         updatedAt.UTC(),
		UpdatedAtReadable: body.UpdatedAtReadable,
	}, nil
}
