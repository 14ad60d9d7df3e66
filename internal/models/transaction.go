package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction type constants
const (
	TransactionChoreEarning  = "CHORE_EARNING"
	TransactionStockBuy      = "STOCK_BUY"
	TransactionStockSell     = "STOCK_SELL"
	TransactionCashOut       = "CASH_OUT"
	TransactionParentDeposit = "PARENT_DEPOSIT"
)

// Transaction is an immutable record of a balance-affecting event.
// Rows are append-only and never updated or deleted; together they are
// the audit trail for every cent a child earns, spends, or cashes out.
type Transaction struct {
	ID                string           `json:"id"`
	UserID            string           `json:"user_id"`
	Type              string           `json:"type"`
	Amount            decimal.Decimal  `json:"amount"`
	Shares            *decimal.Decimal `json:"shares,omitempty"`
	PricePerShare     *decimal.Decimal `json:"price_per_share,omitempty"`
	Description       string           `json:"description"`
	StockID           *string          `json:"stock_id,omitempty"`
	Ticker            string           `json:"ticker,omitempty"`
	ChoreAssignmentID *string          `json:"chore_assignment_id,omitempty"`
	CashOutRequestID  *string          `json:"cash_out_request_id,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}
