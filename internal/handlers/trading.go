package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mercuryinvest/mercury-api/internal/apperr"
	"github.com/mercuryinvest/mercury-api/internal/models"
)

// buy handles POST /api/trading/buy
func (s *Server) buy(c *gin.Context) {
	s.trade(c, models.SideBuy)
}

// sell handles POST /api/trading/sell
func (s *Server) sell(c *gin.Context) {
	s.trade(c, models.SideSell)
}

func (s *Server) trade(c *gin.Context, side models.Side) {
	var req models.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondErr(c, apperr.Validation("symbol and a positive shares amount are required"))
		return
	}

	transactionID, err := s.trades.Execute(c.Request.Context(), userID(c), req.Symbol, side, req.Shares)
	if err != nil {
		s.respondErr(c, err)
		return
	}

	respond(c, http.StatusCreated, gin.H{"transactionId": transactionID})
}

// history handles GET /api/trading/history
func (s *Server) history(c *gin.Context) {
	transactions, err := s.trades.History(c.Request.Context(), userID(c))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, transactions)
}
