package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Andrew-dev1/StockSprout/internal/models"
)

// CreatePortfolioSnapshot writes a child's once-per-day rollup. Returns
// false without error when a snapshot already exists for that date; the
// first write for a (user, date) pair wins and is never revised.
func (db *DB) CreatePortfolioSnapshot(s *models.PortfolioSnapshot) (bool, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now()

	query := `
		INSERT INTO portfolio_snapshots (id, user_id, date, portfolio_value, cash_balance, total_value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, date) DO NOTHING
	`
	result, err := db.conn.Exec(query,
		s.ID, s.UserID, s.Date, s.PortfolioValue, s.CashBalance, s.TotalValue, now,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create snapshot: %w", err)
	}

	inserted, _ := result.RowsAffected()
	if inserted == 0 {
		return false, nil
	}
	s.CreatedAt = now
	return true, nil
}

// GetSnapshotsByUser retrieves a child's snapshots, oldest first, for
// the portfolio history chart.
func (db *DB) GetSnapshotsByUser(userID string, limit int) ([]*models.PortfolioSnapshot, error) {
	query := `
		SELECT id, user_id, date, portfolio_value, cash_balance, total_value, created_at
		FROM (
			SELECT id, user_id, date, portfolio_value, cash_balance, total_value, created_at
			FROM portfolio_snapshots
			WHERE user_id = $1
			ORDER BY date DESC
			LIMIT $2
		) recent
		ORDER BY date ASC
	`
	rows, err := db.conn.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.PortfolioSnapshot
	for rows.Next() {
		var s models.PortfolioSnapshot
		err := rows.Scan(&s.ID, &s.UserID, &s.Date, &s.PortfolioValue, &s.CashBalance, &s.TotalValue, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, &s)
	}
	return snapshots, rows.Err()
}
