package database

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Andrew-dev1/StockSprout/internal/models"
)

// TestDB wraps a test database connection with cleanup
type TestDB struct {
	*DB
	container testcontainers.Container
	connStr   string
}

// SetupTestDB creates a new PostgreSQL container and returns a connected DB
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	// Connect to database
	db, err := New(connStr)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	testDB := &TestDB{
		DB:        db,
		container: pgContainer,
		connStr:   connStr,
	}

	// Run migrations
	_, filename, _, _ := runtime.Caller(0)
	migrationsPath := filepath.Join(filepath.Dir(filename), "..", "..", "db", "migrations")
	if err := testDB.RunMigrations(migrationsPath); err != nil {
		testDB.Cleanup(t)
		t.Fatalf("failed to run migrations: %v", err)
	}

	return testDB
}

// Cleanup closes the database connection and terminates the container
func (tdb *TestDB) Cleanup(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	if tdb.DB != nil {
		tdb.DB.Close()
	}

	if tdb.container != nil {
		if err := tdb.container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	}
}

// TruncateAll truncates all tables for test isolation
func (tdb *TestDB) TruncateAll(t *testing.T) {
	t.Helper()

	tables := []string{
		"portfolio_snapshots",
		"cash_out_requests",
		"chore_assignments",
		"chores",
		"transactions",
		"holdings",
		"stock_prices",
		"stocks",
		"users",
		"families",
	}

	for _, table := range tables {
		_, err := tdb.conn.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			t.Fatalf("failed to truncate table %s: %v", table, err)
		}
	}
}

// GetRawConn returns the underlying sql.DB for direct queries in tests
func (tdb *TestDB) GetRawConn() *sql.DB {
	return tdb.conn
}

// ConnectionString returns the database connection string
func (tdb *TestDB) ConnectionString() string {
	return tdb.connStr
}

// seedFamily creates a family with one parent and one child holding the
// given starting balance.
func (tdb *TestDB) seedFamily(t *testing.T, balance string) (*models.Family, *models.User, *models.User) {
	t.Helper()

	family := &models.Family{Name: "Smith"}
	if err := tdb.CreateFamily(family); err != nil {
		t.Fatalf("failed to create family: %v", err)
	}

	parent := &models.User{
		FamilyID:  family.ID,
		Role:      models.RoleParent,
		FirstName: "Pat",
		LastName:  "Smith",
	}
	if err := tdb.CreateUser(parent); err != nil {
		t.Fatalf("failed to create parent: %v", err)
	}

	child := &models.User{
		FamilyID:  family.ID,
		Role:      models.RoleChild,
		FirstName: "Casey",
		LastName:  "Smith",
		Balance:   decimal.RequireFromString(balance),
	}
	if err := tdb.CreateUser(child); err != nil {
		t.Fatalf("failed to create child: %v", err)
	}

	return family, parent, child
}

// seedStock creates an active stock with one price observation dated
// today.
func (tdb *TestDB) seedStock(t *testing.T, ticker, price string) *models.Stock {
	t.Helper()

	stock := &models.Stock{Ticker: ticker, Name: ticker + " Inc.", IsActive: true}
	if err := tdb.SaveStock(stock); err != nil {
		t.Fatalf("failed to create stock: %v", err)
	}
	tdb.seedPrice(t, stock.ID, price, 0)
	return stock
}

// seedPrice inserts a price observation daysAgo days in the past
func (tdb *TestDB) seedPrice(t *testing.T, stockID, price string, daysAgo int) {
	t.Helper()

	day := time.Now().UTC().AddDate(0, 0, -daysAgo)
	observation := &models.StockPrice{
		StockID: stockID,
		Date:    time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
		Price:   decimal.RequireFromString(price),
	}
	if _, err := tdb.InsertPriceObservation(observation); err != nil {
		t.Fatalf("failed to insert price: %v", err)
	}
}
