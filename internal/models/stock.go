package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEvent represents a Kafka event for balance-affecting changes
type LedgerEvent struct {
	EventType string          `json:"event_type"`
	UserID    string          `json:"user_id"`
	Ticker    string          `json:"ticker,omitempty"`
	Amount    decimal.Decimal `json:"amount,omitempty"`
	Shares    decimal.Decimal `json:"shares,omitempty"`
	Status    string          `json:"status,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Stock represents a tradable stock tracked by the app
type Stock struct {
	ID        string    `json:"id"`
	Ticker    string    `json:"ticker"`
	Name      string    `json:"name"`
	LogoURL   string    `json:"logo_url,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StockPrice represents one closing price per stock per trading day.
// Rows are append-only; a (stock_id, date) pair is written at most once.
type StockPrice struct {
	ID        string          `json:"id"`
	StockID   string          `json:"stock_id"`
	Date      time.Time       `json:"date"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}
