// Package handlers exposes the service over HTTP. Every response is wrapped
// in the {success, data, message} envelope.
package handlers

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mercuryinvest/mercury-api/internal/apperr"
	"github.com/mercuryinvest/mercury-api/internal/auth"
	"github.com/mercuryinvest/mercury-api/internal/market"
	"github.com/mercuryinvest/mercury-api/internal/portfolio"
	"github.com/mercuryinvest/mercury-api/internal/trading"
)

// Server holds the services the handlers dispatch to.
type Server struct {
	auth     *auth.Service
	trades   *trading.Processor
	valuator *portfolio.Valuator
	market   *market.Service
	quotes   market.Source
	devMode  bool
}

func NewServer(authSvc *auth.Service, trades *trading.Processor, valuator *portfolio.Valuator, marketSvc *market.Service, quotes market.Source, devMode bool) *Server {
	return &Server{
		auth:     authSvc,
		trades:   trades,
		valuator: valuator,
		market:   marketSvc,
		quotes:   quotes,
		devMode:  devMode,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"success": true, "message": "API is running"})
	})

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", s.register)
			authGroup.POST("/login", s.login)
			authGroup.GET("/me", s.requireAuth(), s.me)
		}

		marketGroup := api.Group("/market")
		{
			marketGroup.GET("/indices", s.marketIndices)
			marketGroup.GET("/stocks", s.marketStocks)
			marketGroup.GET("/stocks/:symbol", s.marketStockBySymbol)
			marketGroup.GET("/search", s.marketSearch)
			marketGroup.GET("/sectors", s.marketSectors)
		}

		tradingGroup := api.Group("/trading", s.requireAuth())
		{
			tradingGroup.POST("/buy", s.buy)
			tradingGroup.POST("/sell", s.sell)
			tradingGroup.GET("/history", s.history)
		}

		portfolioGroup := api.Group("/portfolio", s.requireAuth())
		{
			portfolioGroup.GET("", s.getPortfolio)
			portfolioGroup.GET("/holdings", s.getHoldings)
			portfolioGroup.GET("/allocation", s.getAllocation)
		}
	}

	router.GET("/ws/prices", s.streamPrices)

	return router
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func (s *Server) respondErr(c *gin.Context, err error) {
	status := apperr.StatusCode(err)
	message := err.Error()
	if status >= 500 {
		log.Println("internal error:", err)
		if !s.devMode {
			message = "Internal Server Error"
		}
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
