package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/mercuryinvest/mercury-api/internal/apperr"
	"github.com/mercuryinvest/mercury-api/internal/models"
)

// PostgresStore is the production Store, backed by PostgreSQL. Schema lives
// in schema.sql.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to PostgreSQL and verifies the connection.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresStore{db: db}, nil
}

const uniqueViolation = "23505"

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO users (id, email, password_hash, first_name, last_name, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperr.Conflict("user already exists with this email")
	}
	return err
}

func (s *PostgresStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
        SELECT id, email, password_hash, first_name, last_name, created_at
        FROM users
        WHERE email = lower($1)
    `, email))
}

func (s *PostgresStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
        SELECT id, email, password_hash, first_name, last_name, created_at
        FROM users
        WHERE id = $1
    `, id))
}

func (s *PostgresStore) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) Holdings(ctx context.Context, userID string) ([]models.Holding, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT user_id, symbol, name, shares, average_cost, updated_at
        FROM holdings
        WHERE user_id = $1
        ORDER BY symbol
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holdings := make([]models.Holding, 0)
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.UserID, &h.Symbol, &h.Name, &h.Shares, &h.AverageCost, &h.UpdatedAt); err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

func (s *PostgresStore) Transactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, user_id, type, symbol, shares, price, total, status, created_at
        FROM transactions
        WHERE user_id = $1
        ORDER BY created_at DESC, seq DESC
        LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0)
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Symbol, &t.Shares,
			&t.Price, &t.Total, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// pgTradeTx wraps one sql.Tx; the FOR UPDATE read claims the holding row for
// the rest of the transaction.
type pgTradeTx struct {
	tx *sql.Tx
}

func (p *pgTradeTx) HoldingForUpdate(ctx context.Context, userID, symbol string) (*models.Holding, error) {
	var h models.Holding
	err := p.tx.QueryRowContext(ctx, `
        SELECT user_id, symbol, name, shares, average_cost, updated_at
        FROM holdings
        WHERE user_id = $1 AND symbol = $2
        FOR UPDATE
    `, userID, symbol).Scan(&h.UserID, &h.Symbol, &h.Name, &h.Shares, &h.AverageCost, &h.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (p *pgTradeTx) PutHolding(ctx context.Context, h models.Holding) error {
	_, err := p.tx.ExecContext(ctx, `
        INSERT INTO holdings (user_id, symbol, name, shares, average_cost, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_id, symbol)
        DO UPDATE SET
            shares = EXCLUDED.shares,
            average_cost = EXCLUDED.average_cost,
            name = EXCLUDED.name,
            updated_at = EXCLUDED.updated_at
    `, h.UserID, h.Symbol, h.Name, h.Shares, h.AverageCost, h.UpdatedAt)
	return err
}

func (p *pgTradeTx) DeleteHolding(ctx context.Context, userID, symbol string) error {
	_, err := p.tx.ExecContext(ctx,
		"DELETE FROM holdings WHERE user_id = $1 AND symbol = $2",
		userID, symbol,
	)
	return err
}

func (p *pgTradeTx) AppendTransaction(ctx context.Context, t models.Transaction) error {
	_, err := p.tx.ExecContext(ctx, `
        INSERT INTO transactions (id, user_id, type, symbol, shares, price, total, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, t.ID, t.UserID, t.Type, t.Symbol, t.Shares, t.Price, t.Total, t.Status, t.CreatedAt)
	return err
}

func (s *PostgresStore) ExecuteTrade(ctx context.Context, fn func(tx TradeTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin trade transaction: %w", err)
	}
	defer tx.Rollback() // Rollback if we don't commit

	if err := fn(&pgTradeTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit trade transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
