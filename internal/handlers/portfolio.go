package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getPortfolio handles GET /api/portfolio
func (s *Server) getPortfolio(c *gin.Context) {
	p, err := s.valuator.Portfolio(c.Request.Context(), userID(c))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, p)
}

// getHoldings handles GET /api/portfolio/holdings
func (s *Server) getHoldings(c *gin.Context) {
	holdings, err := s.valuator.Holdings(c.Request.Context(), userID(c))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, holdings)
}

// getAllocation handles GET /api/portfolio/allocation
func (s *Server) getAllocation(c *gin.Context) {
	assets, err := s.valuator.Allocation(c.Request.Context(), userID(c))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, assets)
}
