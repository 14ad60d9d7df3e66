package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User role constants
const (
	RoleParent = "PARENT"
	RoleChild  = "CHILD"
)

// Family groups one or more parents with their children
type Family struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// User represents a parent or child account. Balance is only
// meaningful for children; parents never hold in-app cash.
type User struct {
	ID        string          `json:"id"`
	FamilyID  string          `json:"family_id"`
	Role      string          `json:"role"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Balance   decimal.Decimal `json:"balance"`
	PinHash   string          `json:"-"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IsChild reports whether the user is a child account
func (u *User) IsChild() bool {
	return u.Role == RoleChild
}

// IsParent reports whether the user is a parent account
func (u *User) IsParent() bool {
	return u.Role == RoleParent
}
