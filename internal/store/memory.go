package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/mercuryinvest/mercury-api/internal/apperr"
	"github.com/mercuryinvest/mercury-api/internal/models"
)

// MemoryStore is an in-process Store used for tests and database-less
// development mode.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[string]models.User // keyed by id
	emails       map[string]string      // lowercased email -> id
	holdings     map[string]models.Holding
	transactions []models.Transaction // insertion order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]models.User),
		emails:   make(map[string]string),
		holdings: make(map[string]models.Holding),
	}
}

func holdingKey(userID, symbol string) string {
	return userID + "|" + symbol
}

func (s *MemoryStore) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, exists := s.emails[email]; exists {
		return apperr.Conflict("user already exists with this email")
	}
	s.users[u.ID] = *u
	s.emails[email] = u.ID
	return nil
}

func (s *MemoryStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	u := s.users[id]
	return &u, nil
}

func (s *MemoryStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *MemoryStore) Holdings(ctx context.Context, userID string) ([]models.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Holding, 0)
	for _, h := range s.holdings {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (s *MemoryStore) Transactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Walk newest-insert-first, then stable sort on creation time so ties
	// keep that order.
	out := make([]models.Transaction, 0)
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if s.transactions[i].UserID == userID {
			out = append(out, s.transactions[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// memTradeTx stages writes and applies them only when the unit of work
// succeeds. The store lock is held for the whole unit, which serializes
// trades at the store level.
type memTradeTx struct {
	s      *MemoryStore
	staged []func()
}

func (tx *memTradeTx) HoldingForUpdate(ctx context.Context, userID, symbol string) (*models.Holding, error) {
	h, ok := tx.s.holdings[holdingKey(userID, symbol)]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (tx *memTradeTx) PutHolding(ctx context.Context, h models.Holding) error {
	tx.staged = append(tx.staged, func() {
		tx.s.holdings[holdingKey(h.UserID, h.Symbol)] = h
	})
	return nil
}

func (tx *memTradeTx) DeleteHolding(ctx context.Context, userID, symbol string) error {
	tx.staged = append(tx.staged, func() {
		delete(tx.s.holdings, holdingKey(userID, symbol))
	})
	return nil
}

func (tx *memTradeTx) AppendTransaction(ctx context.Context, t models.Transaction) error {
	tx.staged = append(tx.staged, func() {
		tx.s.transactions = append(tx.s.transactions, t)
	})
	return nil
}

func (s *MemoryStore) ExecuteTrade(ctx context.Context, fn func(tx TradeTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTradeTx{s: s}
	if err := fn(tx); err != nil {
		return err
	}
	for _, apply := range tx.staged {
		apply()
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
