package database

import (
	"database/sql"
	"fmt"

	"github.com/Andrew-dev1/StockSprout/internal/models"
)

// GetCashOutRequest retrieves a cash-out request by ID
func (db *DB) GetCashOutRequest(id string) (*models.CashOutRequest, error) {
	query := `
		SELECT id, requested_by_id, amount, status, processed_at, approved_by_id, created_at
		FROM cash_out_requests
		WHERE id = $1
	`
	var r models.CashOutRequest
	err := db.conn.QueryRow(query, id).Scan(
		&r.ID, &r.RequestedByID, &r.Amount, &r.Status, &r.ProcessedAt, &r.ApprovedByID, &r.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cash-out request: %w", err)
	}
	return &r, nil
}

// GetPendingCashOutsByFamily lists PENDING requests across a family's
// children, oldest first, for the parent review queue.
func (db *DB) GetPendingCashOutsByFamily(familyID string) ([]*models.CashOutRequest, error) {
	query := `
		SELECT r.id, r.requested_by_id, r.amount, r.status, r.processed_at,
		       r.approved_by_id, r.created_at, u.first_name
		FROM cash_out_requests r
		JOIN users u ON u.id = r.requested_by_id
		WHERE u.family_id = $1 AND r.status = 'PENDING'
		ORDER BY r.created_at ASC
	`
	rows, err := db.conn.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash-out requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.CashOutRequest
	for rows.Next() {
		var r models.CashOutRequest
		err := rows.Scan(
			&r.ID, &r.RequestedByID, &r.Amount, &r.Status, &r.ProcessedAt,
			&r.ApprovedByID, &r.CreatedAt, &r.RequesterName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cash-out request: %w", err)
		}
		requests = append(requests, &r)
	}
	return requests, rows.Err()
}
