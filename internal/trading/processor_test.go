package trading

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mercuryinvest/mercury-api/internal/apperr"
	"github.com/mercuryinvest/mercury-api/internal/market"
	"github.com/mercuryinvest/mercury-api/internal/models"
	"github.com/mercuryinvest/mercury-api/internal/store"
)

// stubSource is a quote source with settable prices, so tests can exercise
// buys at different price points.
type stubSource struct {
	mu     sync.Mutex
	quotes map[string]market.Quote
}

func newStubSource() *stubSource {
	return &stubSource{quotes: make(map[string]market.Quote)}
}

func (s *stubSource) set(symbol string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[symbol] = market.Quote{Price: price}
}

func (s *stubSource) Quote(ctx context.Context, symbol string) (market.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q, ok := s.quotes[symbol]; ok {
		return q, nil
	}
	return market.Quote{Price: 100}, nil
}

func newTestProcessor(t *testing.T, quotes market.Source) (*Processor, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	p := NewProcessor(st, quotes, 3)
	p.Start()
	t.Cleanup(p.Stop)
	return p, st
}

func holdingOf(t *testing.T, st *store.MemoryStore, userID, symbol string) *models.Holding {
	t.Helper()
	holdings, err := st.Holdings(context.Background(), userID)
	require.NoError(t, err)
	for i := range holdings {
		if holdings[i].Symbol == symbol {
			return &holdings[i]
		}
	}
	return nil
}

func TestExecute_BuyCreatesHolding(t *testing.T) {
	quotes := newStubSource()
	quotes.set("AAPL", 170)
	p, st := newTestProcessor(t, quotes)

	txnID, err := p.Execute(context.Background(), "user-1", "aapl", models.SideBuy, 10)
	require.NoError(t, err)
	require.NotEmpty(t, txnID)

	h := holdingOf(t, st, "user-1", "AAPL")
	require.NotNil(t, h)
	require.Equal(t, 10.0, h.Shares)
	require.Equal(t, 170.0, h.AverageCost)

	history, err := p.History(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, txnID, history[0].ID)
	require.Equal(t, models.SideBuy, history[0].Type)
	require.Equal(t, models.StatusCompleted, history[0].Status)
	require.Equal(t, 1700.0, history[0].Total)
}

func TestExecute_WeightedAverageCost(t *testing.T) {
	quotes := newStubSource()
	p, st := newTestProcessor(t, quotes)
	ctx := context.Background()

	quotes.set("AAPL", 170)
	_, err := p.Execute(ctx, "user-1", "AAPL", models.SideBuy, 10)
	require.NoError(t, err)

	quotes.set("AAPL", 180)
	_, err = p.Execute(ctx, "user-1", "AAPL", models.SideBuy, 5)
	require.NoError(t, err)

	h := holdingOf(t, st, "user-1", "AAPL")
	require.NotNil(t, h)
	require.Equal(t, 15.0, h.Shares)
	require.InEpsilon(t, (10*170.0+5*180.0)/15, h.AverageCost, 1e-6)
}

func TestExecute_WeightedAverageOverManyBuys(t *testing.T) {
	quotes := newStubSource()
	p, st := newTestProcessor(t, quotes)
	ctx := context.Background()

	buys := []struct {
		shares float64
		price  float64
	}{
		{3, 101.5}, {7, 95.25}, {1, 130}, {12.5, 99.99}, {0.5, 250},
	}

	var totalShares, totalCost float64
	for _, b := range buys {
		quotes.set("MSFT", b.price)
		_, err := p.Execute(ctx, "user-1", "MSFT", models.SideBuy, b.shares)
		require.NoError(t, err)
		totalShares += b.shares
		totalCost += b.shares * b.price
	}

	h := holdingOf(t, st, "user-1", "MSFT")
	require.NotNil(t, h)
	require.InEpsilon(t, totalShares, h.Shares, 1e-9)
	require.InEpsilon(t, totalCost/totalShares, h.AverageCost, 1e-6)
}

func TestExecute_SellAllRemovesHolding(t *testing.T) {
	quotes := newStubSource()
	p, st := newTestProcessor(t, quotes)
	ctx := context.Background()

	quotes.set("AAPL", 170)
	_, err := p.Execute(ctx, "user-1", "AAPL", models.SideBuy, 10)
	require.NoError(t, err)

	quotes.set("AAPL", 180)
	_, err = p.Execute(ctx, "user-1", "AAPL", models.SideBuy, 5)
	require.NoError(t, err)

	_, err = p.Execute(ctx, "user-1", "AAPL", models.SideSell, 15)
	require.NoError(t, err)

	require.Nil(t, holdingOf(t, st, "user-1", "AAPL"))

	history, err := p.History(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, models.SideSell, history[0].Type)
	require.Equal(t, 15.0, history[0].Shares)
}

func TestExecute_SellKeepsAverageCost(t *testing.T) {
	quotes := newStubSource()
	p, st := newTestProcessor(t, quotes)
	ctx := context.Background()

	quotes.set("TSLA", 240)
	_, err := p.Execute(ctx, "user-1", "TSLA", models.SideBuy, 8)
	require.NoError(t, err)

	quotes.set("TSLA", 300)
	_, err = p.Execute(ctx, "user-1", "TSLA", models.SideSell, 3)
	require.NoError(t, err)

	h := holdingOf(t, st, "user-1", "TSLA")
	require.NotNil(t, h)
	require.Equal(t, 5.0, h.Shares)
	require.Equal(t, 240.0, h.AverageCost)
}

func TestExecute_SellWithoutHolding(t *testing.T) {
	p, _ := newTestProcessor(t, newStubSource())

	_, err := p.Execute(context.Background(), "user-1", "AAPL", models.SideSell, 1)
	require.Error(t, err)
	require.Equal(t, apperr.KindInsufficientPosition, apperr.KindOf(err))

	history, err := p.History(context.Background(), "user-1")
	require.NoError(t, err)
	require.Empty(t, history, "failed sell must not record a transaction")
}

func TestExecute_OversellLeavesHoldingUnchanged(t *testing.T) {
	quotes := newStubSource()
	p, st := newTestProcessor(t, quotes)
	ctx := context.Background()

	quotes.set("AAPL", 170)
	_, err := p.Execute(ctx, "user-1", "AAPL", models.SideBuy, 10)
	require.NoError(t, err)

	_, err = p.Execute(ctx, "user-1", "AAPL", models.SideSell, 11)
	require.Error(t, err)
	require.Equal(t, apperr.KindInsufficientPosition, apperr.KindOf(err))

	h := holdingOf(t, st, "user-1", "AAPL")
	require.NotNil(t, h)
	require.Equal(t, 10.0, h.Shares)
	require.Equal(t, 170.0, h.AverageCost)

	history, err := p.History(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestExecute_Validation(t *testing.T) {
	p, _ := newTestProcessor(t, newStubSource())
	ctx := context.Background()

	cases := []struct {
		name   string
		symbol string
		side   models.Side
		shares float64
	}{
		{"zero shares", "AAPL", models.SideBuy, 0},
		{"negative shares", "AAPL", models.SideBuy, -5},
		{"empty symbol", "", models.SideBuy, 1},
		{"blank symbol", "   ", models.SideSell, 1},
		{"bad side", "AAPL", models.Side("short"), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Execute(ctx, "user-1", tc.symbol, tc.side, tc.shares)
			require.Error(t, err)
			require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestExecute_UnknownSymbolUsesFallbackQuote(t *testing.T) {
	// The static source quotes unknown symbols at the fallback price instead
	// of rejecting them.
	p, st := newTestProcessor(t, market.NewStaticSource())

	_, err := p.Execute(context.Background(), "user-1", "ZZZZ", models.SideBuy, 2)
	require.NoError(t, err)

	h := holdingOf(t, st, "user-1", "ZZZZ")
	require.NotNil(t, h)
	require.Equal(t, 100.0, h.AverageCost)
}

func TestExecute_ConcurrentBuysSamePosition(t *testing.T) {
	quotes := newStubSource()
	quotes.set("AAPL", 100)
	p, st := newTestProcessor(t, quotes)

	const numTrades = 20
	var wg sync.WaitGroup
	errs := make(chan error, numTrades)

	for i := 0; i < numTrades; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Execute(context.Background(), "user-1", "AAPL", models.SideBuy, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	h := holdingOf(t, st, "user-1", "AAPL")
	require.NotNil(t, h)
	require.Equal(t, float64(numTrades), h.Shares, "lost update detected")

	history, err := p.History(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, history, numTrades)
}

func TestExecute_ConcurrentSellsCannotOversell(t *testing.T) {
	quotes := newStubSource()
	quotes.set("AAPL", 100)
	p, st := newTestProcessor(t, quotes)
	ctx := context.Background()

	_, err := p.Execute(ctx, "user-1", "AAPL", models.SideBuy, 5)
	require.NoError(t, err)

	const attempts = 10
	var wg sync.WaitGroup
	errs := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Execute(ctx, "user-1", "AAPL", models.SideSell, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded, rejected := 0, 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.Equal(t, apperr.KindInsufficientPosition, apperr.KindOf(err))
			rejected++
		}
	}
	require.Equal(t, 5, succeeded)
	require.Equal(t, attempts-5, rejected)
	require.Nil(t, holdingOf(t, st, "user-1", "AAPL"))
}

func TestExecute_CancelledContext(t *testing.T) {
	p, st := newTestProcessor(t, newStubSource())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Execute(ctx, "user-1", "AAPL", models.SideBuy, 1)
	require.Error(t, err)

	// No partial mutation may be visible.
	time.Sleep(50 * time.Millisecond)
	require.Nil(t, holdingOf(t, st, "user-1", "AAPL"))
	history, err := st.Transactions(context.Background(), "user-1", 50)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestHistory_LimitAndOrdering(t *testing.T) {
	quotes := newStubSource()
	quotes.set("AAPL", 100)
	p, _ := newTestProcessor(t, quotes)
	ctx := context.Background()

	const total = 60
	var lastID string
	for i := 0; i < total; i++ {
		id, err := p.Execute(ctx, "user-1", fmt.Sprintf("S%02d", i), models.SideBuy, 1)
		require.NoError(t, err)
		lastID = id
	}

	history, err := p.History(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, history, 50)
	require.Equal(t, lastID, history[0].ID)

	for i := 1; i < len(history); i++ {
		require.False(t, history[i-1].CreatedAt.Before(history[i].CreatedAt),
			"history must be ordered most recent first")
	}
}
