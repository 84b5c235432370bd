package application

import (
	"context"
	"fmt"
	"strings"

	"assetquotes-service/internal/domain"
	"assetquotes-service/internal/validation"
)

// ToolRequest is the caller-facing shape of a price lookup.
type ToolRequest struct {
	Name      string `json:"name" validate:"required"`
	StartDate string `json:"start_date,omitempty" validate:"omitempty,isodate"`
	EndDate   string `json:"end_date,omitempty" validate:"omitempty,isodate"`
}

// ToolFacade exposes the range query as a single callable tool. Without a
// start date it looks up today's quotes only.
type ToolFacade struct {
	invoker QueryInvoker
	clock   Clock
}

func NewToolFacade(invoker QueryInvoker, clock Clock) *ToolFacade {
	if clock == nil {
		clock = realClock{}
	}
	return &ToolFacade{invoker: invoker, clock: clock}
}

func (f *ToolFacade) GetAssetPrices(ctx context.Context, req ToolRequest) (QueryResult, error) {
	const op = "tool.GetAssetPrices"
	req.Name = domain.NormalizeAssetName(req.Name)
	req.StartDate = strings.TrimSpace(req.StartDate)
	req.EndDate = strings.TrimSpace(req.EndDate)
	if req.StartDate == "" {
		today := domain.FormatDate(f.clock.Now())
		req.StartDate, req.EndDate = today, today
	}
	if err := validation.Struct(req); err != nil {
		return QueryResult{}, fmt.Errorf("error retrieving asset prices: %w", E(KindInvalidArgument, op, err))
	}

	res, err := f.invoker.Query(ctx, QueryRequest{
		AssetName: req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		return QueryResult{}, fmt.Errorf("error retrieving asset prices: %w", err)
	}
	if res.Items == nil {
		res.Items = []domain.QuoteRecord{}
	}
	return res, nil
}
