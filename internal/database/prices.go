package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Andrew-dev1/StockSprout/internal/models"
)

// InsertPriceObservation appends one closing price for a stock on a
// trading day. Returns false without error when a price already exists
// for that (stock, date) pair; ingestion is idempotent and existing
// rows are never rewritten.
func (db *DB) InsertPriceObservation(p *models.StockPrice) (bool, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()

	query := `
		INSERT INTO stock_prices (id, stock_id, date, price, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (stock_id, date) DO NOTHING
	`
	result, err := db.conn.Exec(query, p.ID, p.StockID, p.Date, p.Price, now)
	if err != nil {
		return false, fmt.Errorf("failed to insert price: %w", err)
	}

	inserted, _ := result.RowsAffected()
	if inserted == 0 {
		return false, nil
	}
	p.CreatedAt = now
	return true, nil
}

// GetLatestPrice retrieves the most recent price observation for a stock
func (db *DB) GetLatestPrice(stockID string) (*models.StockPrice, error) {
	query := `
		SELECT id, stock_id, date, price, created_at
		FROM stock_prices
		WHERE stock_id = $1
		ORDER BY date DESC
		LIMIT 1
	`
	var p models.StockPrice
	err := db.conn.QueryRow(query, stockID).Scan(&p.ID, &p.StockID, &p.Date, &p.Price, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoPriceData
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest price: %w", err)
	}
	return &p, nil
}

// GetPriceForDate retrieves the price observation for one trading day
func (db *DB) GetPriceForDate(stockID string, date time.Time) (*models.StockPrice, error) {
	query := `
		SELECT id, stock_id, date, price, created_at
		FROM stock_prices
		WHERE stock_id = $1 AND date = $2
	`
	var p models.StockPrice
	err := db.conn.QueryRow(query, stockID, date).Scan(&p.ID, &p.StockID, &p.Date, &p.Price, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoPriceData
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get price: %w", err)
	}
	return &p, nil
}

// GetPriceHistory retrieves up to limit observations for a stock,
// oldest first, suitable for charting.
func (db *DB) GetPriceHistory(stockID string, limit int) ([]*models.StockPrice, error) {
	query := `
		SELECT id, stock_id, date, price, created_at
		FROM (
			SELECT id, stock_id, date, price, created_at
			FROM stock_prices
			WHERE stock_id = $1
			ORDER BY date DESC
			LIMIT $2
		) recent
		ORDER BY date ASC
	`
	rows, err := db.conn.Query(query, stockID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	var prices []*models.StockPrice
	for rows.Next() {
		var p models.StockPrice
		if err := rows.Scan(&p.ID, &p.StockID, &p.Date, &p.Price, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		prices = append(prices, &p)
	}
	return prices, rows.Err()
}

// latestPriceTx reads the newest price for a stock inside a ledger
// transaction. Trades execute at this cached price.
func latestPriceTx(tx *sql.Tx, stockID string) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := tx.QueryRow(`
		SELECT price FROM stock_prices
		WHERE stock_id = $1
		ORDER BY date DESC
		LIMIT 1
	`, stockID).Scan(&price)
	if err == sql.ErrNoRows {
		return decimal.Zero, ErrNoPriceData
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get latest price: %w", err)
	}
	return price, nil
}
