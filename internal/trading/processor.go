// Package trading executes buy and sell orders against the holding ledger
// and transaction log.
package trading

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mercuryinvest/mercury-api/internal/apperr"
	"github.com/mercuryinvest/mercury-api/internal/market"
	"github.com/mercuryinvest/mercury-api/internal/models"
	"github.com/mercuryinvest/mercury-api/internal/store"
)

// historyLimit caps how many transactions History returns.
const historyLimit = 50

type order struct {
	ctx      context.Context
	userID   string
	symbol   string
	side     models.Side
	shares   float64
	resultCh chan result
}

type result struct {
	transactionID string
	err           error
}

// Processor executes trades through a worker pool. Trades on the same
// (user, symbol) position serialize on a per-position lock; the holding
// update and the transaction append commit atomically through the store.
type Processor struct {
	store   store.Store
	quotes  market.Source
	workers int
	queue   chan order
	stopCh  chan struct{}
	wg      sync.WaitGroup
	locks   *positionLocks
}

// NewProcessor creates a trade processor with the given worker count.
func NewProcessor(st store.Store, quotes market.Source, workers int) *Processor {
	if workers < 1 {
		workers = 5
	}
	return &Processor{
		store:   st,
		quotes:  quotes,
		workers: workers,
		queue:   make(chan order, 100),
		stopCh:  make(chan struct{}),
		locks:   newPositionLocks(),
	}
}

// Start starts the worker pool.
func (p *Processor) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	log.Printf("started %d trade workers", p.workers)
}

// Stop gracefully stops all workers.
func (p *Processor) Stop() {
	close(p.stopCh)
	p.wg.Wait()
	log.Println("trade processor stopped")
}

func (p *Processor) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopCh:
			return
		case o := <-p.queue:
			o.resultCh <- p.process(o)
		}
	}
}

// Execute validates and runs one trade, returning the id of the transaction
// it recorded.
func (p *Processor) Execute(ctx context.Context, userID string, symbol string, side models.Side, shares float64) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", apperr.Validation("symbol is required")
	}
	if shares <= 0 || math.IsNaN(shares) || math.IsInf(shares, 0) {
		return "", apperr.Validation("shares must be a positive number")
	}
	if side != models.SideBuy && side != models.SideSell {
		return "", apperr.Validationf("invalid trade side %q", side)
	}

	o := order{
		ctx:      ctx,
		userID:   userID,
		symbol:   symbol,
		side:     side,
		shares:   shares,
		resultCh: make(chan result, 1),
	}

	select {
	case p.queue <- o:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-p.stopCh:
		return "", apperr.Internal("trade processor is shutting down", nil)
	}

	select {
	case res := <-o.resultCh:
		return res.transactionID, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *Processor) process(o order) result {
	// The caller may have gone away while the order sat in the queue.
	if err := o.ctx.Err(); err != nil {
		return result{err: err}
	}

	// Lock this position only, not the whole ledger.
	p.locks.Lock(o.userID, o.symbol)
	defer p.locks.Unlock(o.userID, o.symbol)

	quote, err := p.quotes.Quote(o.ctx, o.symbol)
	if err != nil {
		return result{err: err}
	}

	now := time.Now().UTC()
	txn := models.Transaction{
		ID:        uuid.NewString(),
		UserID:    o.userID,
		Type:      o.side,
		Symbol:    o.symbol,
		Shares:    o.shares,
		Price:     quote.Price,
		Total:     o.shares * quote.Price,
		Status:    models.StatusCompleted,
		CreatedAt: now,
	}

	err = p.store.ExecuteTrade(o.ctx, func(tx store.TradeTx) error {
		holding, err := tx.HoldingForUpdate(o.ctx, o.userID, o.symbol)
		if err != nil {
			return err
		}

		switch o.side {
		case models.SideBuy:
			if holding == nil {
				holding = &models.Holding{
					UserID:      o.userID,
					Symbol:      o.symbol,
					Name:        market.StockName(o.symbol),
					Shares:      o.shares,
					AverageCost: quote.Price,
				}
			} else {
				// Weighted-average cost basis across all buys.
				newShares := holding.Shares + o.shares
				holding.AverageCost = (holding.Shares*holding.AverageCost + o.shares*quote.Price) / newShares
				holding.Shares = newShares
			}
			holding.UpdatedAt = now
			if err := tx.PutHolding(o.ctx, *holding); err != nil {
				return err
			}

		case models.SideSell:
			if holding == nil {
				return apperr.InsufficientPosition(fmt.Sprintf("no position in %s to sell", o.symbol))
			}
			if holding.Shares < o.shares {
				return apperr.InsufficientPosition(fmt.Sprintf(
					"insufficient shares of %s: holding %g, selling %g",
					o.symbol, holding.Shares, o.shares,
				))
			}
			holding.Shares -= o.shares
			if holding.Shares == 0 {
				if err := tx.DeleteHolding(o.ctx, o.userID, o.symbol); err != nil {
					return err
				}
			} else {
				// A sell never moves the average cost.
				holding.UpdatedAt = now
				if err := tx.PutHolding(o.ctx, *holding); err != nil {
					return err
				}
			}
		}

		return tx.AppendTransaction(o.ctx, txn)
	})
	if err != nil {
		return result{err: err}
	}

	return result{transactionID: txn.ID}
}

// History returns the user's most recent transactions, newest first.
func (p *Processor) History(ctx context.Context, userID string) ([]models.Transaction, error) {
	return p.store.Transactions(ctx, userID, historyLimit)
}
