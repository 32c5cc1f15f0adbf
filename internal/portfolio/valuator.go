// Package portfolio derives portfolio valuations from the holding ledger and
// the quote source. Read-only: nothing here mutates state.
package portfolio

import (
	"context"

	"github.com/mercuryinvest/mercury-api/internal/market"
	"github.com/mercuryinvest/mercury-api/internal/models"
	"github.com/mercuryinvest/mercury-api/internal/store"
)

var allocationPalette = []string{"#3B82F6", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6", "#EC4899"}

// Valuator reprices holdings and computes portfolio aggregates. No caching:
// every call re-fetches every quote.
type Valuator struct {
	store  store.Store
	quotes market.Source
}

func NewValuator(st store.Store, quotes market.Source) *Valuator {
	return &Valuator{store: st, quotes: quotes}
}

// Portfolio computes the full valuation for a user. An empty account yields a
// zero-valued portfolio, not an error.
func (v *Valuator) Portfolio(ctx context.Context, userID string) (*models.Portfolio, error) {
	holdings, err := v.store.Holdings(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]models.HoldingView, 0, len(holdings))
	var totalValue, totalCost float64

	for _, h := range holdings {
		quote, err := v.quotes.Quote(ctx, h.Symbol)
		if err != nil {
			return nil, err
		}

		currentValue := h.Shares * quote.Price
		costBasis := h.Shares * h.AverageCost
		gain := currentValue - costBasis
		gainPercent := 0.0
		if costBasis > 0 {
			gainPercent = gain / costBasis * 100
		}

		totalValue += currentValue
		totalCost += costBasis

		views = append(views, models.HoldingView{
			Symbol:      h.Symbol,
			Name:        market.StockName(h.Symbol),
			Shares:      h.Shares,
			Price:       quote.Price,
			Value:       currentValue,
			GainPercent: gainPercent,
		})
	}

	totalGain := totalValue - totalCost
	totalGainPercent := 0.0
	if totalCost > 0 {
		totalGainPercent = totalGain / totalCost * 100
	}

	assets := make([]models.AssetAllocation, 0, len(views))
	for i, view := range views {
		percentage := 0.0
		if totalValue > 0 {
			percentage = view.Value / totalValue * 100
		}
		assets = append(assets, models.AssetAllocation{
			Name:       view.Symbol,
			Value:      view.Value,
			Color:      allocationPalette[i%len(allocationPalette)],
			Percentage: percentage,
		})
	}

	return &models.Portfolio{
		TotalValue:       totalValue,
		TotalGain:        totalGain,
		TotalGainPercent: totalGainPercent,
		Holdings:         views,
		Assets:           assets,
	}, nil
}

// Holdings returns the repriced holdings only.
func (v *Valuator) Holdings(ctx context.Context, userID string) ([]models.HoldingView, error) {
	p, err := v.Portfolio(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.Holdings, nil
}

// Allocation returns the asset allocation only.
func (v *Valuator) Allocation(ctx context.Context, userID string) ([]models.AssetAllocation, error) {
	p, err := v.Portfolio(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.Assets, nil
}
