package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Andrew-dev1/StockSprout/internal/models"
)

// SaveStock inserts or updates a stock by ticker
func (db *DB) SaveStock(s *models.Stock) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now()

	query := `
		INSERT INTO stocks (id, ticker, name, logo_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
		ON CONFLICT (ticker) DO UPDATE SET
			name = EXCLUDED.name,
			logo_url = COALESCE(EXCLUDED.logo_url, stocks.logo_url),
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	err := db.conn.QueryRow(query,
		s.ID, s.Ticker, s.Name, s.LogoURL, s.IsActive, now, now,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save stock: %w", err)
	}
	s.UpdatedAt = now
	return nil
}

const stockColumns = `id, ticker, name, COALESCE(logo_url, ''), is_active, created_at, updated_at`

// GetStockByTicker retrieves a stock by its ticker symbol
func (db *DB) GetStockByTicker(ticker string) (*models.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks WHERE ticker = $1`

	var s models.Stock
	err := db.conn.QueryRow(query, ticker).Scan(
		&s.ID, &s.Ticker, &s.Name, &s.LogoURL, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrStockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}
	return &s, nil
}

// GetActiveStocks retrieves all tradable stocks ordered by ticker
func (db *DB) GetActiveStocks() ([]*models.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks WHERE is_active ORDER BY ticker`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stocks: %w", err)
	}
	defer rows.Close()

	var stocks []*models.Stock
	for rows.Next() {
		var s models.Stock
		err := rows.Scan(&s.ID, &s.Ticker, &s.Name, &s.LogoURL, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		stocks = append(stocks, &s)
	}
	return stocks, rows.Err()
}

// SetStockActive flips the tradable flag for a ticker
func (db *DB) SetStockActive(ticker string, active bool) error {
	query := `UPDATE stocks SET is_active = $2, updated_at = NOW() WHERE ticker = $1`
	result, err := db.conn.Exec(query, ticker, active)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrStockNotFound
	}
	return nil
}
