package models

import "time"

// User represents a registered account. The password hash never leaves the
// server.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// TransactionStatus tracks the lifecycle of a transaction record.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusCancelled TransactionStatus = "cancelled"
)

// Holding is a user's aggregate position in one symbol. Unique per
// (UserID, Symbol); a holding with zero shares is never persisted.
type Holding struct {
	UserID      string    `json:"-"`
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	Shares      float64   `json:"shares"`
	AverageCost float64   `json:"averageCost"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Transaction is one executed buy or sell. Append-only.
type Transaction struct {
	ID        string            `json:"id"`
	UserID    string            `json:"-"`
	Type      Side              `json:"type"`
	Symbol    string            `json:"symbol"`
	Shares    float64           `json:"shares"`
	Price     float64           `json:"price"`
	Total     float64           `json:"total"`
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"date"`
}

// HoldingView is a holding repriced with a current quote.
type HoldingView struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	Shares      float64 `json:"shares"`
	Price       float64 `json:"price"`
	Value       float64 `json:"value"`
	GainPercent float64 `json:"gainPercent"`
}

// AssetAllocation is one slice of the portfolio value breakdown.
type AssetAllocation struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Color      string  `json:"color"`
	Percentage float64 `json:"percentage"`
}

// Portfolio is the derived valuation of all of a user's holdings. Never
// persisted, recomputed on every read.
type Portfolio struct {
	TotalValue       float64           `json:"totalValue"`
	TotalGain        float64           `json:"totalGain"`
	TotalGainPercent float64           `json:"totalGainPercent"`
	Holdings         []HoldingView     `json:"holdings"`
	Assets           []AssetAllocation `json:"assets"`
}

// TradeRequest - what the client sends to buy or sell.
type TradeRequest struct {
	Symbol string  `json:"symbol" binding:"required"`
	Shares float64 `json:"shares" binding:"required,gt=0"`
}

// RegisterRequest - what the client sends to create an account.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

// LoginRequest - what the client sends to log in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
