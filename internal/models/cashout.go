package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cash-out request status constants
const (
	CashOutPending  = "PENDING"
	CashOutApproved = "APPROVED"
	CashOutRejected = "REJECTED"
)

// CashOutRequest is a child's request to convert unrealized gains into
// real-world money. Approval never debits the in-app balance: the
// parent pays out of band, and the approved amount only reduces future
// eligibility. A child may have at most one PENDING request at a time.
type CashOutRequest struct {
	ID            string          `json:"id"`
	RequestedByID string          `json:"requested_by_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
	ApprovedByID  *string         `json:"approved_by_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`

	// Joined requester name, populated by parent-facing list queries
	RequesterName string `json:"requester_name,omitempty"`
}

// CashOutEligibility summarizes what a child may request right now
type CashOutEligibility struct {
	EligibleAmount    decimal.Decimal  `json:"eligible_amount"`
	HasPendingRequest bool             `json:"has_pending_request"`
	PendingAmount     *decimal.Decimal `json:"pending_amount,omitempty"`
}
