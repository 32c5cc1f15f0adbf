package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mercuryinvest/mercury-api/internal/apperr"
)

// marketIndices handles GET /api/market/indices
func (s *Server) marketIndices(c *gin.Context) {
	respond(c, http.StatusOK, s.market.Indices())
}

// marketStocks handles GET /api/market/stocks?symbols=AAPL,MSFT
func (s *Server) marketStocks(c *gin.Context) {
	var symbols []string
	if raw := c.Query("symbols"); raw != "" {
		symbols = strings.Split(raw, ",")
	}
	respond(c, http.StatusOK, s.market.Stocks(symbols))
}

// marketStockBySymbol handles GET /api/market/stocks/:symbol
func (s *Server) marketStockBySymbol(c *gin.Context) {
	stock, err := s.market.StockBySymbol(c.Param("symbol"))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, stock)
}

// marketSearch handles GET /api/market/search?q=
func (s *Server) marketSearch(c *gin.Context) {
	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		s.respondErr(c, apperr.Validation("query parameter q is required"))
		return
	}
	respond(c, http.StatusOK, s.market.Search(query))
}

// marketSectors handles GET /api/market/sectors
func (s *Server) marketSectors(c *gin.Context) {
	respond(c, http.StatusOK, s.market.Sectors())
}
