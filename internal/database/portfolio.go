package database

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Andrew-dev1/StockSprout/internal/models"
	"github.com/Andrew-dev1/StockSprout/internal/valuation"
)

// holdingsWithLatestPrice joins a child's holdings with each stock and
// its most recent price observation. Holdings with no price data value
// at zero rather than failing the whole portfolio.
const holdingsWithLatestPrice = `
	SELECT h.id, h.stock_id, s.ticker, s.name, h.shares, h.cost_basis,
	       COALESCE(lp.price, 0)
	FROM holdings h
	JOIN stocks s ON s.id = h.stock_id
	LEFT JOIN LATERAL (
		SELECT price FROM stock_prices
		WHERE stock_id = h.stock_id
		ORDER BY date DESC
		LIMIT 1
	) lp ON TRUE
	WHERE h.user_id = $1
	ORDER BY s.ticker
`

// GetPortfolio values every holding of a child at the latest cached
// prices and returns the rollup served to the dashboard.
func (db *DB) GetPortfolio(userID string) (*models.Portfolio, error) {
	user, err := db.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.Query(holdingsWithLatestPrice, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	p := &models.Portfolio{
		Holdings:       []*models.PortfolioHolding{},
		TotalValue:     decimal.Zero,
		TotalCostBasis: decimal.Zero,
		Balance:        user.Balance,
	}
	for rows.Next() {
		var h models.PortfolioHolding
		if err := rows.Scan(&h.ID, &h.StockID, &h.Ticker, &h.Name, &h.Shares, &h.CostBasis, &h.CurrentPrice); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}

		h.CurrentValue = h.Shares.Mul(h.CurrentPrice)
		h.GainLoss = valuation.UnrealizedGain(h.CurrentValue, h.CostBasis)
		if h.CostBasis.Sign() > 0 {
			h.GainLossPercent = h.GainLoss.Div(h.CostBasis).Mul(decimal.NewFromInt(100))
		}

		p.TotalValue = p.TotalValue.Add(h.CurrentValue)
		p.TotalCostBasis = p.TotalCostBasis.Add(h.CostBasis)
		p.Holdings = append(p.Holdings, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}

	p.TotalGainLoss = valuation.UnrealizedGain(p.TotalValue, p.TotalCostBasis)
	if p.TotalCostBasis.Sign() > 0 {
		p.TotalGainLossPct = p.TotalGainLoss.Div(p.TotalCostBasis).Mul(decimal.NewFromInt(100))
	}
	return p, nil
}

// GetCashOutEligibility reports how much a child may request right now
// and whether a request is already pending.
func (db *DB) GetCashOutEligibility(userID string) (*models.CashOutEligibility, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	eligible, err := db.eligibleCashOutTx(tx, userID)
	if err != nil {
		return nil, err
	}

	e := &models.CashOutEligibility{EligibleAmount: eligible}

	var pending decimal.Decimal
	err = tx.QueryRow(`
		SELECT amount FROM cash_out_requests
		WHERE requested_by_id = $1 AND status = 'PENDING'
	`, userID).Scan(&pending)
	switch err {
	case nil:
		e.HasPendingRequest = true
		e.PendingAmount = &pending
	case sql.ErrNoRows:
	default:
		return nil, fmt.Errorf("failed to check pending request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit eligibility read: %w", err)
	}
	return e, nil
}

// eligibleCashOutTx computes a child's eligible cash-out amount inside
// an open transaction: unrealized gains at latest prices, minus the sum
// of previously approved cash-outs, floored to the cash-out unit.
func (db *DB) eligibleCashOutTx(tx *sql.Tx, userID string) (decimal.Decimal, error) {
	var totalValue, totalCostBasis decimal.Decimal
	err := tx.QueryRow(`
		SELECT COALESCE(SUM(h.shares * COALESCE(lp.price, 0)), 0),
		       COALESCE(SUM(h.cost_basis), 0)
		FROM holdings h
		LEFT JOIN LATERAL (
			SELECT price FROM stock_prices
			WHERE stock_id = h.stock_id
			ORDER BY date DESC
			LIMIT 1
		) lp ON TRUE
		WHERE h.user_id = $1
	`, userID).Scan(&totalValue, &totalCostBasis)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to value holdings: %w", err)
	}

	var previous decimal.Decimal
	err = tx.QueryRow(`
		SELECT COALESCE(SUM(amount), 0) FROM cash_out_requests
		WHERE requested_by_id = $1 AND status = 'APPROVED'
	`, userID).Scan(&previous)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum approved cash-outs: %w", err)
	}

	gains := valuation.UnrealizedGain(totalValue, totalCostBasis)
	if gains.Sign() < 0 {
		gains = decimal.Zero
	}
	return valuation.EligibleCashOut(gains, previous, db.policy.CashOutUnit), nil
}
