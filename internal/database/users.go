package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Andrew-dev1/StockSprout/internal/models"
)

// CreateFamily inserts a new family
func (db *DB) CreateFamily(f *models.Family) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	now := time.Now()

	query := `INSERT INTO families (id, name, created_at) VALUES ($1, $2, $3)`
	if _, err := db.conn.Exec(query, f.ID, f.Name, now); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("family %q: %w", f.Name, ErrConflictingState)
		}
		return fmt.Errorf("failed to create family: %w", err)
	}
	f.CreatedAt = now
	return nil
}

// CreateUser inserts a new parent or child
func (db *DB) CreateUser(u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now()

	query := `
		INSERT INTO users (id, family_id, role, first_name, last_name, balance, pin_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
	`
	_, err := db.conn.Exec(query,
		u.ID, u.FamilyID, u.Role, u.FirstName, u.LastName, u.Balance, u.PinHash, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %q: %w", u.FirstName, ErrConflictingState)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

const userColumns = `id, family_id, role, first_name, last_name, balance, COALESCE(pin_hash, ''), created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.FamilyID, &u.Role, &u.FirstName, &u.LastName,
		&u.Balance, &u.PinHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// GetUserByID retrieves a user by ID
func (db *DB) GetUserByID(id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(db.conn.QueryRow(query, id))
}

// GetUserForLogin retrieves a user by first name, family name and role,
// for PIN login. Matching is case-insensitive.
func (db *DB) GetUserForLogin(firstName, familyName, role string) (*models.User, error) {
	query := `
		SELECT ` + prefixedUserColumns("u") + `
		FROM users u
		JOIN families f ON f.id = u.family_id
		WHERE LOWER(u.first_name) = LOWER($1)
		  AND LOWER(f.name) = LOWER($2)
		  AND u.role = $3
	`
	return scanUser(db.conn.QueryRow(query, firstName, familyName, role))
}

func prefixedUserColumns(alias string) string {
	return alias + `.id, ` + alias + `.family_id, ` + alias + `.role, ` +
		alias + `.first_name, ` + alias + `.last_name, ` + alias + `.balance, ` +
		`COALESCE(` + alias + `.pin_hash, ''), ` + alias + `.created_at, ` + alias + `.updated_at`
}

// GetChildrenByFamily retrieves all child accounts in a family
func (db *DB) GetChildrenByFamily(familyID string) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE family_id = $1 AND role = 'CHILD'
		ORDER BY first_name
	`
	rows, err := db.conn.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	var children []*models.User
	for rows.Next() {
		var u models.User
		err := rows.Scan(
			&u.ID, &u.FamilyID, &u.Role, &u.FirstName, &u.LastName,
			&u.Balance, &u.PinHash, &u.CreatedAt, &u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, &u)
	}
	return children, rows.Err()
}

// GetAllChildren retrieves every child account, for the snapshot job
func (db *DB) GetAllChildren() ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = 'CHILD' ORDER BY id`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	var children []*models.User
	for rows.Next() {
		var u models.User
		err := rows.Scan(
			&u.ID, &u.FamilyID, &u.Role, &u.FirstName, &u.LastName,
			&u.Balance, &u.PinHash, &u.CreatedAt, &u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, &u)
	}
	return children, rows.Err()
}

// SetUserPIN stores a child's hashed login PIN
func (db *DB) SetUserPIN(userID, pinHash string) error {
	query := `UPDATE users SET pin_hash = $2, updated_at = NOW() WHERE id = $1 AND role = 'CHILD'`
	result, err := db.conn.Exec(query, userID, pinHash)
	if err != nil {
		return fmt.Errorf("failed to set PIN: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
