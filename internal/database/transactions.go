package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Andrew-dev1/StockSprout/internal/models"
)

// insertTransactionTx appends one immutable transaction row inside a
// ledger transaction.
func insertTransactionTx(tx *sql.Tx, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	_, err := tx.Exec(`
		INSERT INTO transactions (
			id, user_id, type, amount, shares, price_per_share,
			description, stock_id, chore_assignment_id, cash_out_request_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		t.ID, t.UserID, t.Type, t.Amount, t.Shares, t.PricePerShare,
		t.Description, t.StockID, t.ChoreAssignmentID, t.CashOutRequestID, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// GetTransactionsByUser retrieves a child's transaction history, newest
// first, joined with the stock ticker where one applies.
func (db *DB) GetTransactionsByUser(userID string, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT t.id, t.user_id, t.type, t.amount, t.shares, t.price_per_share,
		       t.description, t.stock_id, COALESCE(s.ticker, ''),
		       t.chore_assignment_id, t.cash_out_request_id, t.created_at
		FROM transactions t
		LEFT JOIN stocks s ON s.id = t.stock_id
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2
	`
	rows, err := db.conn.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(
			&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Shares, &t.PricePerShare,
			&t.Description, &t.StockID, &t.Ticker,
			&t.ChoreAssignmentID, &t.CashOutRequestID, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, &t)
	}
	return txns, rows.Err()
}
