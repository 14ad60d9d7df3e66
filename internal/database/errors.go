package database

import (
	"errors"

	"github.com/lib/pq"
)

// Domain errors returned by ledger operations. Handlers match on these
// with errors.Is to pick response codes; anything else is a storage
// failure.
var (
	ErrNotFound            = errors.New("record not found")
	ErrForbidden           = errors.New("record belongs to another family")
	ErrStockNotFound       = errors.New("stock not found or not tradable")
	ErrNoPriceData         = errors.New("no price data for stock")
	ErrAmountTooSmall      = errors.New("amount too small to purchase any shares")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrHoldingNotFound     = errors.New("no shares of this stock are held")
	ErrInsufficientShares  = errors.New("insufficient shares")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrExceedsEligible     = errors.New("amount exceeds eligible cash-out")
	ErrConflictingState    = errors.New("conflicting state")
)

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (class 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
