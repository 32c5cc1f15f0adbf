// Package store persists users, holdings and transactions. Two
// implementations exist: PostgresStore for production and MemoryStore for
// tests and database-less development, selected at startup via configuration.
package store

import (
	"context"

	"github.com/mercuryinvest/mercury-api/internal/models"
)

// Store is the persistence boundary of the service. Lookup methods return
// (nil, nil) when the record does not exist.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)

	// Holdings returns all of a user's positions, ordered by symbol.
	Holdings(ctx context.Context, userID string) ([]models.Holding, error)

	// Transactions returns up to limit transactions for a user, most recent
	// first; ties on creation time order newest-inserted-first.
	Transactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error)

	// ExecuteTrade runs fn inside a single atomic unit of work: either every
	// write fn makes is committed, or none are.
	ExecuteTrade(ctx context.Context, fn func(tx TradeTx) error) error

	Ping(ctx context.Context) error
	Close() error
}

// TradeTx is the set of writes available inside a trade unit of work.
type TradeTx interface {
	// HoldingForUpdate reads a holding with an exclusive claim on it for the
	// remainder of the unit of work. Returns (nil, nil) when the user holds
	// no position in the symbol.
	HoldingForUpdate(ctx context.Context, userID, symbol string) (*models.Holding, error)
	PutHolding(ctx context.Context, h models.Holding) error
	DeleteHolding(ctx context.Context, userID, symbol string) error
	AppendTransaction(ctx context.Context, t models.Transaction) error
}
