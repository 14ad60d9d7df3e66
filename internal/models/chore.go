package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Chore assignment status constants
const (
	AssignmentPending   = "PENDING"
	AssignmentSubmitted = "SUBMITTED"
	AssignmentApproved  = "APPROVED"
	AssignmentRejected  = "REJECTED"
)

// Chore is a task a parent offers for a reward
type Chore struct {
	ID          string          `json:"id"`
	FamilyID    string          `json:"family_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Reward      decimal.Decimal `json:"reward"`
	IsRecurring bool            `json:"is_recurring"`
	CreatedByID string          `json:"created_by_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ChoreAssignment tracks one child working one chore through
// PENDING -> SUBMITTED -> APPROVED or REJECTED. Approval is the only
// transition that touches the child's balance.
type ChoreAssignment struct {
	ID           string     `json:"id"`
	ChoreID      string     `json:"chore_id"`
	AssignedToID string     `json:"assigned_to_id"`
	Status       string     `json:"status"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	ApprovedByID *string    `json:"approved_by_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`

	// Joined chore fields, populated by list queries
	ChoreTitle  string          `json:"chore_title,omitempty"`
	ChoreReward decimal.Decimal `json:"chore_reward,omitempty"`
}
