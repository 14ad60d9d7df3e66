package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Policy holds the trading policy constants the ledger enforces.
type Policy struct {
	DustThreshold decimal.Decimal
	MinimumBuy    decimal.Decimal
	CashOutUnit   decimal.Decimal
}

// DefaultPolicy returns the stock policy values: 1e-6 dust threshold,
// $5 minimum buy, $5 cash-out granularity.
func DefaultPolicy() Policy {
	dust, _ := decimal.NewFromString("0.000001")
	five := decimal.NewFromInt(5)
	return Policy{
		DustThreshold: dust,
		MinimumBuy:    five,
		CashOutUnit:   five,
	}
}

// DB wraps the database connection and the ledger policy
type DB struct {
	conn   *sql.DB
	policy Policy
}

// New opens a connection with the default policy
func New(connStr string) (*DB, error) {
	return NewWithPolicy(connStr, DefaultPolicy())
}

// NewWithPolicy opens a connection with an explicit policy
func NewWithPolicy(connStr string, policy Policy) (*DB, error) {
	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{conn: conn, policy: policy}, nil
}

// Policy returns the ledger policy in effect
func (db *DB) Policy() Policy {
	return db.policy
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}
