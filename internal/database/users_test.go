package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Andrew-dev1/StockSprout/internal/models"
)

func TestUsersRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("first names are unique within a family", func(t *testing.T) {
		testDB.TruncateAll(t)
		family, _, _ := testDB.seedFamily(t, "0")

		dup := &models.User{
			FamilyID:  family.ID,
			Role:      models.RoleChild,
			FirstName: "Casey",
			LastName:  "Smith",
		}
		err := testDB.CreateUser(dup)
		assert.ErrorIs(t, err, ErrConflictingState)

		// Same first name in a different family is fine
		other := &models.Family{Name: "Jones"}
		require.NoError(t, testDB.CreateFamily(other))
		dup.ID = ""
		dup.FamilyID = other.ID
		require.NoError(t, testDB.CreateUser(dup))
	})

	t.Run("GetUserForLogin matches names case-insensitively", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, _, child := testDB.seedFamily(t, "0")

		found, err := testDB.GetUserForLogin("casey", "SMITH", models.RoleChild)
		require.NoError(t, err)
		assert.Equal(t, child.ID, found.ID)

		// The parent does not match a child login
		_, err = testDB.GetUserForLogin("Pat", "Smith", models.RoleChild)
		assert.ErrorIs(t, err, ErrNotFound)

		found, err = testDB.GetUserForLogin("Pat", "Smith", models.RoleParent)
		require.NoError(t, err)
		assert.Equal(t, models.RoleParent, found.Role)
	})

	t.Run("SetUserPIN only applies to children", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, parent, child := testDB.seedFamily(t, "0")

		require.NoError(t, testDB.SetUserPIN(child.ID, "hashed"))

		loaded, err := testDB.GetUserByID(child.ID)
		require.NoError(t, err)
		assert.Equal(t, "hashed", loaded.PinHash)

		err = testDB.SetUserPIN(parent.ID, "hashed")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("GetChildrenByFamily returns only that family's children", func(t *testing.T) {
		testDB.TruncateAll(t)
		family, _, child := testDB.seedFamily(t, "0")

		other := &models.Family{Name: "Jones"}
		require.NoError(t, testDB.CreateFamily(other))
		require.NoError(t, testDB.CreateUser(&models.User{
			FamilyID: other.ID, Role: models.RoleChild, FirstName: "Riley",
		}))

		children, err := testDB.GetChildrenByFamily(family.ID)
		require.NoError(t, err)
		require.Len(t, children, 1)
		assert.Equal(t, child.ID, children[0].ID)
	})
}

func TestPortfolioSnapshots(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("one snapshot per child per day", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, _, child := testDB.seedFamily(t, "40")

		snapshot := &models.PortfolioSnapshot{
			UserID:         child.ID,
			Date:           todayUTC(),
			PortfolioValue: dec("60"),
			CashBalance:    dec("40"),
			TotalValue:     dec("100"),
		}
		inserted, err := testDB.CreatePortfolioSnapshot(snapshot)
		require.NoError(t, err)
		assert.True(t, inserted)

		// A rerun the same day writes nothing
		again := &models.PortfolioSnapshot{
			UserID:         child.ID,
			Date:           todayUTC(),
			PortfolioValue: dec("70"),
			CashBalance:    dec("40"),
			TotalValue:     dec("110"),
		}
		inserted, err = testDB.CreatePortfolioSnapshot(again)
		require.NoError(t, err)
		assert.False(t, inserted)

		snapshots, err := testDB.GetSnapshotsByUser(child.ID, 10)
		require.NoError(t, err)
		require.Len(t, snapshots, 1)
		assert.True(t, snapshots[0].TotalValue.Equal(dec("100")))
	})
}
