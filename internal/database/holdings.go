package database

import (
	"database/sql"
	"fmt"

	"github.com/Andrew-dev1/StockSprout/internal/models"
)

// GetHolding retrieves a child's position in one stock
func (db *DB) GetHolding(userID, stockID string) (*models.Holding, error) {
	query := `
		SELECT id, user_id, stock_id, shares, cost_basis, created_at, updated_at
		FROM holdings
		WHERE user_id = $1 AND stock_id = $2
	`
	var h models.Holding
	err := db.conn.QueryRow(query, userID, stockID).Scan(
		&h.ID, &h.UserID, &h.StockID, &h.Shares, &h.CostBasis, &h.CreatedAt, &h.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrHoldingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}
	return &h, nil
}

// GetHoldingsByUser retrieves all of a child's positions
func (db *DB) GetHoldingsByUser(userID string) ([]*models.Holding, error) {
	query := `
		SELECT id, user_id, stock_id, shares, cost_basis, created_at, updated_at
		FROM holdings
		WHERE user_id = $1
	`
	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*models.Holding
	for rows.Next() {
		var h models.Holding
		err := rows.Scan(&h.ID, &h.UserID, &h.StockID, &h.Shares, &h.CostBasis, &h.CreatedAt, &h.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, &h)
	}
	return holdings, rows.Err()
}
