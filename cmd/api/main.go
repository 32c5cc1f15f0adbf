package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mercuryinvest/mercury-api/internal/auth"
	"github.com/mercuryinvest/mercury-api/internal/config"
	"github.com/mercuryinvest/mercury-api/internal/handlers"
	"github.com/mercuryinvest/mercury-api/internal/market"
	"github.com/mercuryinvest/mercury-api/internal/models"
	"github.com/mercuryinvest/mercury-api/internal/portfolio"
	"github.com/mercuryinvest/mercury-api/internal/store"
	"github.com/mercuryinvest/mercury-api/internal/trading"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	st := openStore(cfg)
	defer st.Close()

	quotes := market.NewStaticSource()
	marketSvc := market.NewService()
	authSvc := auth.NewService(st, cfg.JWTSecret, cfg.TokenTTL)
	valuator := portfolio.NewValuator(st, quotes)

	processor := trading.NewProcessor(st, quotes, cfg.NumWorkers)
	processor.Start()
	defer processor.Stop()

	if _, ok := st.(*store.MemoryStore); ok {
		seedDemoAccount(authSvc, processor)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	server := handlers.NewServer(authSvc, processor, valuator, marketSvc, quotes, !cfg.IsProduction())
	router := server.Router()

	log.Println("server starting on http://localhost:" + cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// openStore picks the store backend from configuration. A failed postgres
// connection is fatal in production; in development it falls back to the
// in-memory store so the API stays usable without a database.
func openStore(cfg *config.Config) store.Store {
	if cfg.StoreDriver == "memory" {
		log.Println("using in-memory store")
		return store.NewMemoryStore()
	}

	pg, err := store.OpenPostgres(cfg.DB.DSN())
	if err != nil {
		if cfg.IsProduction() {
			log.Fatal("Failed to connect to database:", err)
		}
		log.Println("database unavailable, falling back to in-memory store:", err)
		return store.NewMemoryStore()
	}
	log.Println("database connected")
	return pg
}

// seedDemoAccount gives the in-memory store a ready-to-use account with a
// couple of positions.
func seedDemoAccount(authSvc *auth.Service, processor *trading.Processor) {
	ctx := context.Background()

	user, _, err := authSvc.Register(ctx, models.RegisterRequest{
		Email:     "demo@mercuryinvest.dev",
		Password:  "DemoPass123",
		FirstName: "Demo",
		LastName:  "Account",
	})
	if err != nil {
		log.Println("demo account seeding skipped:", err)
		return
	}

	for symbol, shares := range map[string]float64{"AAPL": 10, "MSFT": 5} {
		if _, err := processor.Execute(ctx, user.ID, symbol, models.SideBuy, shares); err != nil {
			log.Println("demo trade failed:", err)
		}
	}
	log.Println("demo account ready: demo@mercuryinvest.dev / DemoPass123")
}
