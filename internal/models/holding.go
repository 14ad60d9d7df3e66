package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding represents a child's position in one stock. Shares carry six
// decimal places; cost basis is the cumulative dollars paid for the
// shares still held.
type Holding struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	StockID   string          `json:"stock_id"`
	Shares    decimal.Decimal `json:"shares"`
	CostBasis decimal.Decimal `json:"cost_basis"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PortfolioHolding is a holding joined with its stock and latest price,
// as served to the dashboard.
type PortfolioHolding struct {
	ID              string          `json:"id"`
	StockID         string          `json:"stock_id"`
	Ticker          string          `json:"ticker"`
	Name            string          `json:"name"`
	Shares          decimal.Decimal `json:"shares"`
	CostBasis       decimal.Decimal `json:"cost_basis"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	CurrentValue    decimal.Decimal `json:"current_value"`
	GainLoss        decimal.Decimal `json:"gain_loss"`
	GainLossPercent decimal.Decimal `json:"gain_loss_percent"`
}

// Portfolio is the full valuation rollup for one child
type Portfolio struct {
	Holdings         []*PortfolioHolding `json:"holdings"`
	TotalValue       decimal.Decimal     `json:"total_value"`
	TotalCostBasis   decimal.Decimal     `json:"total_cost_basis"`
	TotalGainLoss    decimal.Decimal     `json:"total_gain_loss"`
	TotalGainLossPct decimal.Decimal     `json:"total_gain_loss_percent"`
	Balance          decimal.Decimal     `json:"balance"`
}
