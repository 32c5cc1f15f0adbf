package portfolio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mercuryinvest/mercury-api/internal/market"
	"github.com/mercuryinvest/mercury-api/internal/models"
	"github.com/mercuryinvest/mercury-api/internal/store"
)

func seedHoldings(t *testing.T, st *store.MemoryStore, holdings ...models.Holding) {
	t.Helper()
	err := st.ExecuteTrade(context.Background(), func(tx store.TradeTx) error {
		for _, h := range holdings {
			h.UpdatedAt = time.Now()
			if err := tx.PutHolding(context.Background(), h); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestPortfolio_Empty(t *testing.T) {
	v := NewValuator(store.NewMemoryStore(), market.NewStaticSource())

	p, err := v.Portfolio(context.Background(), "user-1")
	require.NoError(t, err)
	require.Zero(t, p.TotalValue)
	require.Zero(t, p.TotalGain)
	require.Zero(t, p.TotalGainPercent)
	require.NotNil(t, p.Holdings)
	require.Empty(t, p.Holdings)
	require.NotNil(t, p.Assets)
	require.Empty(t, p.Assets)
}

func TestPortfolio_Totals(t *testing.T) {
	st := store.NewMemoryStore()
	seedHoldings(t, st,
		models.Holding{UserID: "user-1", Symbol: "AAPL", Name: "Apple Inc.", Shares: 10, AverageCost: 150},
		models.Holding{UserID: "user-1", Symbol: "MSFT", Name: "Microsoft Corporation", Shares: 2, AverageCost: 400},
	)
	v := NewValuator(st, market.NewStaticSource())

	p, err := v.Portfolio(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, p.Holdings, 2)

	// Static quotes: AAPL 175.50, MSFT 378.90.
	wantValue := 10*175.50 + 2*378.90
	wantCost := 10*150.0 + 2*400.0
	require.InEpsilon(t, wantValue, p.TotalValue, 1e-9)
	require.InEpsilon(t, wantValue-wantCost, p.TotalGain, 1e-9)
	require.InEpsilon(t, (wantValue-wantCost)/wantCost*100, p.TotalGainPercent, 1e-9)

	// Holdings come back ordered by symbol.
	require.Equal(t, "AAPL", p.Holdings[0].Symbol)
	require.InEpsilon(t, 10*175.50, p.Holdings[0].Value, 1e-9)
	require.InEpsilon(t, (175.50-150)/150*100, p.Holdings[0].GainPercent, 1e-9)

	// MSFT is held at a loss; gain percent must be negative.
	require.Less(t, p.Holdings[1].GainPercent, 0.0)
}

func TestPortfolio_GainPercentGuardsZeroCost(t *testing.T) {
	st := store.NewMemoryStore()
	seedHoldings(t, st,
		models.Holding{UserID: "user-1", Symbol: "AAPL", Name: "Apple Inc.", Shares: 1, AverageCost: 0},
	)
	v := NewValuator(st, market.NewStaticSource())

	p, err := v.Portfolio(context.Background(), "user-1")
	require.NoError(t, err)
	require.Zero(t, p.Holdings[0].GainPercent)
	require.Zero(t, p.TotalGainPercent)
}

func TestAllocation_Percentages(t *testing.T) {
	st := store.NewMemoryStore()
	seedHoldings(t, st,
		models.Holding{UserID: "user-1", Symbol: "AAPL", Name: "Apple Inc.", Shares: 10, AverageCost: 150},
		models.Holding{UserID: "user-1", Symbol: "TSLA", Name: "Tesla Inc.", Shares: 4, AverageCost: 200},
	)
	v := NewValuator(st, market.NewStaticSource())

	assets, err := v.Allocation(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, assets, 2)

	total := 10*175.50 + 4*245.60
	require.InEpsilon(t, 10*175.50/total*100, assets[0].Percentage, 1e-9)
	require.InEpsilon(t, 4*245.60/total*100, assets[1].Percentage, 1e-9)
	require.NotEmpty(t, assets[0].Color)

	// The underlying ratios are exact even if rendered percentages round.
	require.InEpsilon(t, 100.0, assets[0].Percentage+assets[1].Percentage, 1e-9)
}

func TestHoldings_IsReadOnly(t *testing.T) {
	st := store.NewMemoryStore()
	seedHoldings(t, st,
		models.Holding{UserID: "user-1", Symbol: "AAPL", Name: "Apple Inc.", Shares: 10, AverageCost: 150},
	)
	v := NewValuator(st, market.NewStaticSource())
	ctx := context.Background()

	_, err := v.Portfolio(ctx, "user-1")
	require.NoError(t, err)
	_, err = v.Holdings(ctx, "user-1")
	require.NoError(t, err)

	holdings, err := st.Holdings(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	require.Equal(t, 10.0, holdings[0].Shares)
	require.Equal(t, 150.0, holdings[0].AverageCost)
}
