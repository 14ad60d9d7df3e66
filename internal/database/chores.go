package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Andrew-dev1/StockSprout/internal/models"
)

// CreateChore inserts a new chore for a family
func (db *DB) CreateChore(c *models.Chore) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now()

	query := `
		INSERT INTO chores (id, family_id, title, description, reward, is_recurring, created_by_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := db.conn.Exec(query,
		c.ID, c.FamilyID, c.Title, c.Description, c.Reward, c.IsRecurring, c.CreatedByID, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create chore: %w", err)
	}
	c.CreatedAt = now
	return nil
}

// GetChore retrieves a chore by ID
func (db *DB) GetChore(id string) (*models.Chore, error) {
	query := `
		SELECT id, family_id, title, description, reward, is_recurring, created_by_id, created_at
		FROM chores
		WHERE id = $1
	`
	var c models.Chore
	err := db.conn.QueryRow(query, id).Scan(
		&c.ID, &c.FamilyID, &c.Title, &c.Description, &c.Reward, &c.IsRecurring, &c.CreatedByID, &c.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chore: %w", err)
	}
	return &c, nil
}

// AssignChore creates a PENDING assignment of a chore to a child. The
// chore and the child must belong to the same family.
func (db *DB) AssignChore(choreID, childID string) (*models.ChoreAssignment, error) {
	var sameFamily bool
	err := db.conn.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM chores c
			JOIN users u ON u.family_id = c.family_id
			WHERE c.id = $1 AND u.id = $2 AND u.role = 'CHILD'
		)
	`, choreID, childID).Scan(&sameFamily)
	if err != nil {
		return nil, fmt.Errorf("failed to check chore assignment: %w", err)
	}
	if !sameFamily {
		return nil, ErrNotFound
	}

	a := &models.ChoreAssignment{
		ID:           uuid.NewString(),
		ChoreID:      choreID,
		AssignedToID: childID,
		Status:       models.AssignmentPending,
		CreatedAt:    time.Now(),
	}
	_, err = db.conn.Exec(`
		INSERT INTO chore_assignments (id, chore_id, assigned_to_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, a.ID, a.ChoreID, a.AssignedToID, a.Status, a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to assign chore: %w", err)
	}
	return a, nil
}

// SubmitAssignment moves a child's PENDING assignment to SUBMITTED,
// putting it in the parent's review queue.
func (db *DB) SubmitAssignment(assignmentID, childID string) (*models.ChoreAssignment, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	a, reward, title, _, err := lockAssignmentTx(tx, assignmentID)
	if err != nil {
		return nil, err
	}
	if a.AssignedToID != childID {
		return nil, ErrNotFound
	}
	if a.Status != models.AssignmentPending {
		return nil, ErrConflictingState
	}

	now := time.Now()
	if _, err := tx.Exec(`
		UPDATE chore_assignments SET status = 'SUBMITTED', submitted_at = $2 WHERE id = $1
	`, assignmentID, now); err != nil {
		return nil, fmt.Errorf("failed to submit assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit submission: %w", err)
	}

	a.Status = models.AssignmentSubmitted
	a.SubmittedAt = &now
	a.ChoreTitle = title
	a.ChoreReward = reward
	return a, nil
}

const assignmentColumns = `
	a.id, a.chore_id, a.assigned_to_id, a.status, a.submitted_at,
	a.approved_at, a.approved_by_id, a.created_at, c.title, c.reward
`

// GetAssignmentsByChild lists a child's assignments with chore details
func (db *DB) GetAssignmentsByChild(childID string) ([]*models.ChoreAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM chore_assignments a
		JOIN chores c ON c.id = a.chore_id
		WHERE a.assigned_to_id = $1
		ORDER BY a.created_at DESC
	`
	return db.scanAssignments(db.conn.Query(query, childID))
}

// GetSubmittedAssignmentsByFamily lists assignments awaiting parental
// review across a family.
func (db *DB) GetSubmittedAssignmentsByFamily(familyID string) ([]*models.ChoreAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM chore_assignments a
		JOIN chores c ON c.id = a.chore_id
		WHERE c.family_id = $1 AND a.status = 'SUBMITTED'
		ORDER BY a.submitted_at ASC
	`
	return db.scanAssignments(db.conn.Query(query, familyID))
}

func (db *DB) scanAssignments(rows *sql.Rows, err error) ([]*models.ChoreAssignment, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*models.ChoreAssignment
	for rows.Next() {
		var a models.ChoreAssignment
		err := rows.Scan(
			&a.ID, &a.ChoreID, &a.AssignedToID, &a.Status, &a.SubmittedAt,
			&a.ApprovedAt, &a.ApprovedByID, &a.CreatedAt, &a.ChoreTitle, &a.ChoreReward,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, &a)
	}
	return assignments, rows.Err()
}
