package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioSnapshot is a once-per-day rollup of a child's portfolio
// value and cash balance, written by the snapshot job and never revised.
type PortfolioSnapshot struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Date           time.Time       `json:"date"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	CashBalance    decimal.Decimal `json:"cash_balance"`
	TotalValue     decimal.Decimal `json:"total_value"`
	CreatedAt      time.Time       `json:"created_at"`
}
