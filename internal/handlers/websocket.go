package handlers

import (
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// PriceUpdate is one simulated tick pushed to websocket clients.
type PriceUpdate struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Change    float64   `json:"change"`
	Timestamp time.Time `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins for development and demo
	},
}

var streamedSymbols = []string{"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA"}

// streamPrices handles GET /ws/prices: pushes simulated ticks around the
// quote source's prices every two seconds until the client disconnects.
func (s *Server) streamPrices(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("websocket upgrade error:", err)
		return
	}
	defer conn.Close()

	prices := make(map[string]float64, len(streamedSymbols))
	for _, symbol := range streamedSymbols {
		quote, err := s.quotes.Quote(c.Request.Context(), symbol)
		if err != nil {
			log.Println("quote fetch error:", err)
			return
		}
		prices[symbol] = quote.Price
	}

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		for _, symbol := range streamedSymbols {
			base := prices[symbol]
			// Random walk within ±1% of the last tick.
			next := base * (1 + (rand.Float64()-0.5)*0.02)
			prices[symbol] = next

			update := PriceUpdate{
				Symbol:    symbol,
				Price:     next,
				Change:    (next - base) / base * 100,
				Timestamp: time.Now(),
			}
			if err := conn.WriteJSON(update); err != nil {
				return
			}
		}
	}
}
