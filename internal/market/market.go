// Package market supplies quotes and market listings. The data here is a
// static table standing in for a real market data feed; everything consuming
// it goes through the Source interface so a live feed can replace it.
package market

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/mercuryinvest/mercury-api/internal/apperr"
)

// Quote is a symbol's current price and day-over-day change.
type Quote struct {
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
}

// Source supplies current quotes. Implementations may be stale or
// unavailable; callers must treat Quote as a plain read with no ordering
// guarantees.
type Source interface {
	Quote(ctx context.Context, symbol string) (Quote, error)
}

// StaticSource serves quotes from a fixed table. Unknown symbols get a
// fallback quote rather than an error; the table is not authoritative and
// rejecting symbols it has never heard of would block legitimate trades.
type StaticSource struct{}

func NewStaticSource() *StaticSource {
	return &StaticSource{}
}

var quoteTable = map[string]Quote{
	"AAPL":  {Price: 175.50, Change: 2.5},
	"GOOGL": {Price: 142.30, Change: -1.2},
	"MSFT":  {Price: 378.90, Change: 5.3},
	"AMZN":  {Price: 145.20, Change: -0.8},
	"TSLA":  {Price: 245.60, Change: 12.4},
}

var fallbackQuote = Quote{Price: 100, Change: 0}

func (s *StaticSource) Quote(ctx context.Context, symbol string) (Quote, error) {
	if q, ok := quoteTable[strings.ToUpper(symbol)]; ok {
		return q, nil
	}
	return fallbackQuote, nil
}

var stockNames = map[string]string{
	"AAPL":  "Apple Inc.",
	"GOOGL": "Alphabet Inc.",
	"MSFT":  "Microsoft Corporation",
	"AMZN":  "Amazon.com Inc.",
	"TSLA":  "Tesla Inc.",
	"META":  "Meta Platforms Inc.",
	"NVDA":  "NVIDIA Corporation",
	"JPM":   "JPMorgan Chase & Co.",
}

// StockName returns the display name for a symbol, or the symbol itself when
// unknown.
func StockName(symbol string) string {
	if name, ok := stockNames[strings.ToUpper(symbol)]; ok {
		return name
	}
	return symbol
}

// Index is a market index snapshot.
type Index struct {
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	Value       float64 `json:"value"`
	Change      float64 `json:"change"`
	ChangeValue float64 `json:"changeValue"`
}

// Stock is a listed security snapshot.
type Stock struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
	Volume string  `json:"volume"`
}

// PricePoint is one day of price history.
type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// StockDetail is a stock with its recent price history.
type StockDetail struct {
	Stock
	History []PricePoint `json:"history"`
}

// Sector is a market sector snapshot.
type Sector struct {
	Name   string  `json:"name"`
	Change float64 `json:"change"`
	Color  string  `json:"color"`
}

var allStocks = []Stock{
	{Symbol: "AAPL", Name: "Apple Inc.", Price: 175.50, Change: 1.4, Volume: "45.2M"},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: 142.30, Change: -0.8, Volume: "32.1M"},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Price: 378.90, Change: 1.5, Volume: "28.5M"},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", Price: 145.20, Change: -0.5, Volume: "52.3M"},
	{Symbol: "TSLA", Name: "Tesla Inc.", Price: 245.60, Change: 5.2, Volume: "89.7M"},
	{Symbol: "META", Name: "Meta Platforms Inc.", Price: 312.45, Change: 2.3, Volume: "41.6M"},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", Price: 485.20, Change: 3.1, Volume: "67.8M"},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Price: 156.78, Change: -0.3, Volume: "15.2M"},
}

// Service serves the market listing endpoints. All reads, no persistence.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

func (s *Service) Indices() []Index {
	return []Index{
		{Name: "S&P 500", Symbol: "SPX", Value: 4567.23, Change: 1.2, ChangeValue: 54.12},
		{Name: "Dow Jones", Symbol: "DJI", Value: 34567.89, Change: 0.8, ChangeValue: 276.54},
		{Name: "NASDAQ", Symbol: "IXIC", Value: 14234.56, Change: 2.1, ChangeValue: 293.45},
	}
}

// Stocks returns all listed stocks, or only those matching the given symbols.
func (s *Service) Stocks(symbols []string) []Stock {
	if len(symbols) == 0 {
		return allStocks
	}
	wanted := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		wanted[strings.ToUpper(strings.TrimSpace(sym))] = true
	}
	out := make([]Stock, 0, len(symbols))
	for _, stock := range allStocks {
		if wanted[stock.Symbol] {
			out = append(out, stock)
		}
	}
	return out
}

// StockBySymbol returns one stock with 30 days of mock price history.
func (s *Service) StockBySymbol(symbol string) (*StockDetail, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, stock := range allStocks {
		if stock.Symbol == symbol {
			return &StockDetail{Stock: stock, History: mockHistory(stock.Price)}, nil
		}
	}
	return nil, apperr.NotFound("stock with symbol " + symbol + " not found")
}

// mockHistory generates the last 30 days of prices around a base price.
func mockHistory(base float64) []PricePoint {
	history := make([]PricePoint, 0, 30)
	today := time.Now()
	for i := 29; i >= 0; i-- {
		date := today.AddDate(0, 0, -i)
		variation := (rand.Float64() - 0.5) * 10
		history = append(history, PricePoint{
			Date:  date.Format("2006-01-02"),
			Price: base + variation,
		})
	}
	return history
}

// Search matches stocks by symbol or name substring, case-insensitive.
func (s *Service) Search(query string) []Stock {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Stock, 0)
	for _, stock := range allStocks {
		if strings.Contains(strings.ToLower(stock.Symbol), q) ||
			strings.Contains(strings.ToLower(stock.Name), q) {
			out = append(out, stock)
		}
	}
	return out
}

func (s *Service) Sectors() []Sector {
	return []Sector{
		{Name: "Technology", Change: 2.5, Color: "#3B82F6"},
		{Name: "Finance", Change: 0.8, Color: "#10B981"},
		{Name: "Healthcare", Change: 1.2, Color: "#F59E0B"},
		{Name: "Consumer", Change: -0.5, Color: "#EF4444"},
		{Name: "Energy", Change: 3.2, Color: "#8B5CF6"},
		{Name: "Industrial", Change: 1.8, Color: "#EC4899"},
	}
}
