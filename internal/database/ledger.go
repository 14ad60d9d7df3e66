package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Andrew-dev1/StockSprout/internal/models"
	"github.com/Andrew-dev1/StockSprout/internal/valuation"
)

// The five balance-affecting operations live in this file. Each runs in
// a single database transaction and locks the child's user row (and the
// holding row, where one exists) with SELECT ... FOR UPDATE, so
// concurrent trades against the same account serialize and can never
// validate against stale balances or share counts. Balances are only
// ever mutated here.

// TradeResult is the outcome of a buy or sell
type TradeResult struct {
	Balance     decimal.Decimal     `json:"balance"`
	Holding     *models.Holding     `json:"holding"`
	Transaction *models.Transaction `json:"transaction"`
}

// BuyStock spends amount dollars of a child's balance on fractional
// shares of ticker at the latest cached price.
func (db *DB) BuyStock(userID, ticker string, amount decimal.Decimal) (*TradeResult, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var stockID string
	var isActive bool
	err = tx.QueryRow(`SELECT id, is_active FROM stocks WHERE ticker = $1`, ticker).
		Scan(&stockID, &isActive)
	if err == sql.ErrNoRows {
		return nil, ErrStockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}
	if !isActive {
		return nil, ErrStockNotFound
	}

	price, err := latestPriceTx(tx, stockID)
	if err != nil {
		return nil, err
	}

	shares := valuation.SharesFromAmount(amount, price)
	if shares.Sign() <= 0 {
		return nil, ErrAmountTooSmall
	}

	balance, err := lockChildBalanceTx(tx, userID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(balance) {
		return nil, ErrInsufficientBalance
	}

	newBalance := balance.Sub(amount)
	if _, err := tx.Exec(
		`UPDATE users SET balance = $2, updated_at = NOW() WHERE id = $1`,
		userID, newBalance,
	); err != nil {
		return nil, fmt.Errorf("failed to debit balance: %w", err)
	}

	now := time.Now()
	holding := &models.Holding{UserID: userID, StockID: stockID}
	err = tx.QueryRow(`
		INSERT INTO holdings (id, user_id, stock_id, shares, cost_basis, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (user_id, stock_id) DO UPDATE SET
			shares = holdings.shares + EXCLUDED.shares,
			cost_basis = holdings.cost_basis + EXCLUDED.cost_basis,
			updated_at = EXCLUDED.updated_at
		RETURNING id, shares, cost_basis, created_at, updated_at
	`, uuid.NewString(), userID, stockID, shares, amount, now).Scan(
		&holding.ID, &holding.Shares, &holding.CostBasis, &holding.CreatedAt, &holding.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert holding: %w", err)
	}

	txn := &models.Transaction{
		UserID:        userID,
		Type:          models.TransactionStockBuy,
		Amount:        amount,
		Shares:        &shares,
		PricePerShare: &price,
		Description:   fmt.Sprintf("Bought %s shares of %s", shares.StringFixed(valuation.SharePrecision), ticker),
		StockID:       &stockID,
	}
	if err := insertTransactionTx(tx, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit buy: %w", err)
	}

	return &TradeResult{Balance: newBalance, Holding: holding, Transaction: txn}, nil
}

// SellStock sells sharesToSell of the child's holding in ticker at the
// latest cached price. The holding's cost basis shrinks proportionally;
// a residue at or below the dust threshold deletes the holding.
func (db *DB) SellStock(userID, ticker string, sharesToSell decimal.Decimal) (*TradeResult, error) {
	sharesToSell = sharesToSell.Truncate(valuation.SharePrecision)
	if sharesToSell.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var stockID string
	err = tx.QueryRow(`SELECT id FROM stocks WHERE ticker = $1`, ticker).Scan(&stockID)
	if err == sql.ErrNoRows {
		return nil, ErrStockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}

	price, err := latestPriceTx(tx, stockID)
	if err != nil {
		return nil, err
	}

	balance, err := lockChildBalanceTx(tx, userID)
	if err != nil {
		return nil, err
	}

	var holdingID string
	var heldShares, costBasis decimal.Decimal
	err = tx.QueryRow(`
		SELECT id, shares, cost_basis FROM holdings
		WHERE user_id = $1 AND stock_id = $2
		FOR UPDATE
	`, userID, stockID).Scan(&holdingID, &heldShares, &costBasis)
	if err == sql.ErrNoRows {
		return nil, ErrHoldingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}

	if sharesToSell.GreaterThan(heldShares) {
		return nil, ErrInsufficientShares
	}

	proceeds := valuation.ProceedsFromSale(sharesToSell, price)
	removed := valuation.CostBasisToRemove(costBasis, heldShares, sharesToSell)
	remaining := heldShares.Sub(sharesToSell)

	var holding *models.Holding
	if valuation.IsDust(remaining, db.policy.DustThreshold) {
		if _, err := tx.Exec(`DELETE FROM holdings WHERE id = $1`, holdingID); err != nil {
			return nil, fmt.Errorf("failed to delete holding: %w", err)
		}
	} else {
		holding = &models.Holding{
			ID:        holdingID,
			UserID:    userID,
			StockID:   stockID,
			Shares:    remaining,
			CostBasis: costBasis.Sub(removed),
		}
		err = tx.QueryRow(`
			UPDATE holdings SET shares = $2, cost_basis = $3, updated_at = NOW()
			WHERE id = $1
			RETURNING created_at, updated_at
		`, holdingID, holding.Shares, holding.CostBasis).Scan(&holding.CreatedAt, &holding.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to update holding: %w", err)
		}
	}

	newBalance := balance.Add(proceeds)
	if _, err := tx.Exec(
		`UPDATE users SET balance = $2, updated_at = NOW() WHERE id = $1`,
		userID, newBalance,
	); err != nil {
		return nil, fmt.Errorf("failed to credit balance: %w", err)
	}

	txn := &models.Transaction{
		UserID:        userID,
		Type:          models.TransactionStockSell,
		Amount:        proceeds,
		Shares:        &sharesToSell,
		PricePerShare: &price,
		Description:   fmt.Sprintf("Sold %s shares of %s", sharesToSell.StringFixed(valuation.SharePrecision), ticker),
		StockID:       &stockID,
	}
	if err := insertTransactionTx(tx, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sell: %w", err)
	}

	return &TradeResult{Balance: newBalance, Holding: holding, Transaction: txn}, nil
}

// ApproveChoreAssignment marks a SUBMITTED assignment APPROVED, credits
// the child with the chore's reward, and appends a CHORE_EARNING
// transaction. The reviewer must belong to the chore's family.
func (db *DB) ApproveChoreAssignment(assignmentID, reviewerID, familyID string) (*models.ChoreAssignment, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	a, reward, title, choreFamilyID, err := lockAssignmentTx(tx, assignmentID)
	if err != nil {
		return nil, err
	}
	if choreFamilyID != familyID {
		return nil, ErrNotFound
	}
	if a.Status != models.AssignmentSubmitted {
		return nil, ErrConflictingState
	}

	now := time.Now()
	if _, err := tx.Exec(`
		UPDATE chore_assignments
		SET status = 'APPROVED', approved_at = $2, approved_by_id = $3
		WHERE id = $1
	`, assignmentID, now, reviewerID); err != nil {
		return nil, fmt.Errorf("failed to approve assignment: %w", err)
	}

	if _, err := tx.Exec(`
		UPDATE users SET balance = balance + $2, updated_at = NOW() WHERE id = $1
	`, a.AssignedToID, reward); err != nil {
		return nil, fmt.Errorf("failed to credit reward: %w", err)
	}

	txn := &models.Transaction{
		UserID:            a.AssignedToID,
		Type:              models.TransactionChoreEarning,
		Amount:            reward,
		Description:       "Completed chore: " + title,
		ChoreAssignmentID: &assignmentID,
	}
	if err := insertTransactionTx(tx, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit approval: %w", err)
	}

	a.Status = models.AssignmentApproved
	a.ApprovedAt = &now
	a.ApprovedByID = &reviewerID
	a.ChoreTitle = title
	a.ChoreReward = reward
	return a, nil
}

// RejectChoreAssignment marks a SUBMITTED assignment REJECTED. No
// balance effect.
func (db *DB) RejectChoreAssignment(assignmentID, reviewerID, familyID string) (*models.ChoreAssignment, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	a, reward, title, choreFamilyID, err := lockAssignmentTx(tx, assignmentID)
	if err != nil {
		return nil, err
	}
	if choreFamilyID != familyID {
		return nil, ErrNotFound
	}
	if a.Status != models.AssignmentSubmitted {
		return nil, ErrConflictingState
	}

	if _, err := tx.Exec(`
		UPDATE chore_assignments SET status = 'REJECTED', approved_by_id = $2 WHERE id = $1
	`, assignmentID, reviewerID); err != nil {
		return nil, fmt.Errorf("failed to reject assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rejection: %w", err)
	}

	a.Status = models.AssignmentRejected
	a.ApprovedByID = &reviewerID
	a.ChoreTitle = title
	a.ChoreReward = reward
	return a, nil
}

// RequestCashOut creates a PENDING cash-out request for amount dollars.
// The amount must be a positive multiple of the cash-out unit and no
// greater than the child's eligible amount, computed fresh inside the
// same transaction. At most one PENDING request may exist per child;
// a partial unique index backs up the in-transaction check.
func (db *DB) RequestCashOut(userID string, amount decimal.Decimal) (*models.CashOutRequest, error) {
	unit := db.policy.CashOutUnit
	if amount.LessThan(unit) || !amount.Mod(unit).IsZero() {
		return nil, ErrInvalidAmount
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock the user row so two concurrent requests cannot both pass the
	// eligibility and no-pending checks.
	if _, err := lockChildBalanceTx(tx, userID); err != nil {
		return nil, err
	}

	eligible, err := db.eligibleCashOutTx(tx, userID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(eligible) {
		return nil, ErrExceedsEligible
	}

	var hasPending bool
	err = tx.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM cash_out_requests
			WHERE requested_by_id = $1 AND status = 'PENDING'
		)
	`, userID).Scan(&hasPending)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}
	if hasPending {
		return nil, ErrConflictingState
	}

	req := &models.CashOutRequest{
		ID:            uuid.NewString(),
		RequestedByID: userID,
		Amount:        amount,
		Status:        models.CashOutPending,
		CreatedAt:     time.Now(),
	}
	_, err = tx.Exec(`
		INSERT INTO cash_out_requests (id, requested_by_id, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, req.ID, req.RequestedByID, req.Amount, req.Status, req.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflictingState
		}
		return nil, fmt.Errorf("failed to create cash-out request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cash-out request: %w", err)
	}
	return req, nil
}

// ReviewCashOut resolves a PENDING request. Approval appends a CASH_OUT
// transaction for the audit trail but never debits the balance: the
// parent pays the child in real money, and the approved amount only
// reduces future eligibility.
func (db *DB) ReviewCashOut(requestID, reviewerID, familyID string, approve bool) (*models.CashOutRequest, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var req models.CashOutRequest
	var requesterFamilyID string
	err = tx.QueryRow(`
		SELECT r.id, r.requested_by_id, r.amount, r.status, r.created_at, u.family_id
		FROM cash_out_requests r
		JOIN users u ON u.id = r.requested_by_id
		WHERE r.id = $1
		FOR UPDATE OF r
	`, requestID).Scan(&req.ID, &req.RequestedByID, &req.Amount, &req.Status, &req.CreatedAt, &requesterFamilyID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cash-out request: %w", err)
	}

	if requesterFamilyID != familyID {
		return nil, ErrForbidden
	}
	if req.Status != models.CashOutPending {
		return nil, ErrConflictingState
	}

	now := time.Now()
	status := models.CashOutRejected
	if approve {
		status = models.CashOutApproved
	}

	if _, err := tx.Exec(`
		UPDATE cash_out_requests
		SET status = $2, processed_at = $3, approved_by_id = $4
		WHERE id = $1
	`, requestID, status, now, reviewerID); err != nil {
		return nil, fmt.Errorf("failed to update cash-out request: %w", err)
	}

	if approve {
		txn := &models.Transaction{
			UserID:           req.RequestedByID,
			Type:             models.TransactionCashOut,
			Amount:           req.Amount,
			Description:      "Cash out: $" + req.Amount.StringFixed(2),
			CashOutRequestID: &requestID,
		}
		if err := insertTransactionTx(tx, txn); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit review: %w", err)
	}

	req.Status = status
	req.ProcessedAt = &now
	req.ApprovedByID = &reviewerID
	return &req, nil
}

// DepositToChild credits a child's balance with real money a parent put
// in, recorded as a PARENT_DEPOSIT transaction.
func (db *DB) DepositToChild(childID, familyID string, amount decimal.Decimal) (*models.Transaction, decimal.Decimal, error) {
	if amount.Sign() <= 0 {
		return nil, decimal.Zero, ErrInvalidAmount
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var balance decimal.Decimal
	err = tx.QueryRow(`
		SELECT balance FROM users
		WHERE id = $1 AND family_id = $2 AND role = 'CHILD'
		FOR UPDATE
	`, childID, familyID).Scan(&balance)
	if err == sql.ErrNoRows {
		return nil, decimal.Zero, ErrNotFound
	}
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to lock child: %w", err)
	}

	newBalance := balance.Add(amount)
	if _, err := tx.Exec(
		`UPDATE users SET balance = $2, updated_at = NOW() WHERE id = $1`,
		childID, newBalance,
	); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to credit balance: %w", err)
	}

	txn := &models.Transaction{
		UserID:      childID,
		Type:        models.TransactionParentDeposit,
		Amount:      amount,
		Description: "Deposit: $" + amount.StringFixed(2),
	}
	if err := insertTransactionTx(tx, txn); err != nil {
		return nil, decimal.Zero, err
	}

	if err := tx.Commit(); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to commit deposit: %w", err)
	}
	return txn, newBalance, nil
}

// lockChildBalanceTx locks a child's user row and returns its balance
func lockChildBalanceTx(tx *sql.Tx, userID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRow(
		`SELECT balance FROM users WHERE id = $1 AND role = 'CHILD' FOR UPDATE`,
		userID,
	).Scan(&balance)
	if err == sql.ErrNoRows {
		return decimal.Zero, ErrNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to lock user: %w", err)
	}
	return balance, nil
}

// lockAssignmentTx locks an assignment row and returns it with its
// chore's reward, title, and family.
func lockAssignmentTx(tx *sql.Tx, assignmentID string) (*models.ChoreAssignment, decimal.Decimal, string, string, error) {
	var a models.ChoreAssignment
	var reward decimal.Decimal
	var title, familyID string
	err := tx.QueryRow(`
		SELECT a.id, a.chore_id, a.assigned_to_id, a.status, a.created_at,
		       c.reward, c.title, c.family_id
		FROM chore_assignments a
		JOIN chores c ON c.id = a.chore_id
		WHERE a.id = $1
		FOR UPDATE OF a
	`, assignmentID).Scan(
		&a.ID, &a.ChoreID, &a.AssignedToID, &a.Status, &a.CreatedAt,
		&reward, &title, &familyID,
	)
	if err == sql.ErrNoRows {
		return nil, decimal.Zero, "", "", ErrNotFound
	}
	if err != nil {
		return nil, decimal.Zero, "", "", fmt.Errorf("failed to get assignment: %w", err)
	}
	return &a, reward, title, familyID, nil
}
