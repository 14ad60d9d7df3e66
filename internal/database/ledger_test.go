package database

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Andrew-dev1/StockSprout/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBuyStock(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("buys fractional shares at the latest price", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, _, child := testDB.seedFamily(t, "100")
		stock := testDB.seedStock(t, "AAPL", "200")

		result, err := testDB.BuyStock(child.ID, "AAPL", dec("50"))
		require.NoError(t, err)

		assert.True(t, result.Balance.Equal(dec("50")), "balance = %s", result.Balance)
		require.NotNil(t, result.Holding)
		assert.True(t, result.Holding.Shares.Equal(dec("0.25")), "shares = %s", result.Holding.Shares)
		assert.True(t, result.Holding.CostBasis.Equal(dec("50")))
		assert.Equal(t, stock.ID, result.Holding.StockID)

		require.NotNil(t, result.Transaction)
		assert.Equal(t, models.TransactionStockBuy, result.Transaction.Type)
		assert.True(t, result.Transaction.Amount.Equal(dec("50")))
	})

	t.Run("second buy accumulates shares and cost basis", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, _, child := testDB.seedFamily(t, "100")
		testDB.seedStock(t, "AAPL", "200")

		first, err := testDB.BuyStock(child.ID, "AAPL", dec("50"))
		require.NoError(t, err)

		second, err := testDB.BuyStock(child.ID, "AAPL", dec("30"))
		require.NoError(t, err)

		assert.Equal(t, first.Holding.ID, second.Holding.ID)
		assert.True(t, second.Holding.Shares.Equal(dec("0.4")), "shares = %s", second.Holding.Shares)
		assert.True(t, second.Holding.CostBasis.Equal(dec("80")))
		assert.True(t, second.Balance.Equal(dec("20")))
	})

	t.Run("rejects unknown ticker", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, _, child := testDB.seedFamily(t, "100")

		_, err := testDB.BuyStock(child.ID, "NOPE", dec("50"))
		assert.ErrorIs(t, err, ErrStockNotFound)
	})

	t.Run("rejects deactivated stock", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, _, child := testDB.seedFamily(t, "100")
		testDB.seedStock(t, "AAPL", "200")
		require.NoError(t, testDB.SetStockActive("AAPL", false))

		_, err := testDB.BuyStock(child.ID, "AAPL", dec("50"))
		assert.ErrorIs(t, err, ErrStockNotFound)
	})

	t.Run("rejects stock with no price data", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, _, child := testDB.seedFamily(t, "100")
		stock := &models.Stock{Ticker: "NEWCO", Name: "NewCo", IsActive: true}
		require.NoError(t, testDB.SaveStock(stock))

		_, err := testDB.BuyStock(child.ID, "NEWCO", dec("50"))
		assert.ErrorIs(t, err, ErrNoPriceData)
	})

	t.Run("rejects amount that truncates to zero shares", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, _, child := testDB.seedFamily(t, "100")
		testDB.seedStock(t, "PRICY", "10000000")

		_, err := testDB.BuyStock(child.ID, "PRICY", dec("5"))
		assert.ErrorIs(t, err, ErrAmountTooSmall)
	})

	t.Run("rejects amount above balance", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, _, child := testDB.seedFamily(t, "100")
		testDB.seedStock(t, "AAPL", "200")

		_, err := testDB.BuyStock(child.ID, "AAPL", dec("100.01"))
		assert.ErrorIs(t, err, ErrInsufficientBalance)

		// Balance must be untouched after the failed buy
		user, err := testDB.GetUserByID(child.ID)
		require.NoError(t, err)
		assert.True(t, user.Balance.Equal(dec("100")))
	})

	t.Run("rejects parent accounts", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, parent, _ := testDB.seedFamily(t, "100")
		testDB.seedStock(t, "AAPL", "200")

		_, err := testDB.BuyStock(parent.ID, "AAPL", dec("50"))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSellStock(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("sell at a higher price realizes the gain", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, _, child := testDB.seedFamily(t, "100")

		stock := &models.Stock{Ticker: "AAPL", Name: "Apple Inc.", IsActive: true}
		require.NoError(t, testDB.SaveStock(stock))
		testDB.seedPrice(t, stock.ID, "200", 1)

		_, err := testDB.BuyStock(child.ID, "AAPL", dec("50"))
		require.NoError(t, err)

		testDB.seedPrice(t, stock.ID, "240", 0)

		result, err := testDB.SellStock(child.ID, "AAPL", dec("0.25"))
		require.NoError(t, err)

		assert.True(t, result.Transaction.Amount.Equal(dec("60")), "proceeds = %s", result.Transaction.Amount)
		assert.True(t, result.Balance.Equal(dec("110")), "balance = %s", result.Balance)

		// Full position sold: the holding row is gone
		assert.Nil(t, result.Holding)
		_, err = testDB.GetHolding(child.ID, stock.ID)
		assert.ErrorIs(t, err, ErrHoldingNotFound)
	})

	t.Run("partial sell removes proportional cost basis", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, _, child := testDB.seedFamily(t, "100")
		testDB.seedStock(t, "AAPL", "200")

		_, err := testDB.BuyStock(child.ID, "AAPL", dec("100"))
		require.NoError(t, err)

		// Sell 0.2 of 0.5 shares: 40% of the $100 cost basis goes
		result, err := testDB.SellStock(child.ID, "AAPL", dec("0.2"))
		require.NoError(t, err)

		require.NotNil(t, result.Holding)
		assert.True(t, result.Holding.Shares.Equal(dec("0.3")), "shares = %s", result.Holding.Shares)
		assert.True(t, result.Holding.CostBasis.Equal(dec("60")), "cost basis = %s", result.Holding.CostBasis)
		assert.True(t, result.Balance.Equal(dec("40")))
	})

	t.Run("dust residue deletes the holding", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, _, child := testDB.seedFamily(t, "100")
		stock := testDB.seedStock(t, "AAPL", "200")

		_, err := testDB.BuyStock(child.ID, "AAPL", dec("50"))
		require.NoError(t, err)

		// Leave exactly the dust threshold behind
		result, err := testDB.SellStock(child.ID, "AAPL", dec("0.249999"))
		require.NoError(t, err)

		assert.Nil(t, result.Holding)
		_, err = testDB.GetHolding(child.ID, stock.ID)
		assert.ErrorIs(t, err, ErrHoldingNotFound)
	})

	t.Run("rejects selling more shares than held", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, _, child := testDB.seedFamily(t, "100")
		testDB.seedStock(t, "AAPL", "200")

		_, err := testDB.BuyStock(child.ID, "AAPL", dec("50"))
		require.NoError(t, err)

		_, err = testDB.SellStock(child.ID, "AAPL", dec("0.250001"))
		assert.ErrorIs(t, err, ErrInsufficientShares)
	})

	t.Run("rejects selling a stock the child does not hold", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, _, child := testDB.seedFamily(t, "100")
		testDB.seedStock(t, "AAPL", "200")

		_, err := testDB.SellStock(child.ID, "AAPL", dec("0.1"))
		assert.ErrorIs(t, err, ErrHoldingNotFound)
	})

	t.Run("rejects zero and sub-precision share counts", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, _, child := testDB.seedFamily(t, "100")
		testDB.seedStock(t, "AAPL", "200")

		_, err := testDB.SellStock(child.ID, "AAPL", dec("0"))
		assert.ErrorIs(t, err, ErrInvalidAmount)

		// Truncates to zero at six decimal places
		_, err = testDB.SellStock(child.ID, "AAPL", dec("0.0000004"))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("selling a deactivated stock is allowed", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, _, child := testDB.seedFamily(t, "100")
		testDB.seedStock(t, "AAPL", "200")

		_, err := testDB.BuyStock(child.ID, "AAPL", dec("50"))
		require.NoError(t, err)
		require.NoError(t, testDB.SetStockActive("AAPL", false))

		result, err := testDB.SellStock(child.ID, "AAPL", dec("0.25"))
		require.NoError(t, err)
		assert.True(t, result.Balance.Equal(dec("100")))
	})

	t.Run("concurrent sells of the same holding serialize", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, _, child := testDB.seedFamily(t, "100")
		testDB.seedStock(t, "AAPL", "100")

		_, err := testDB.BuyStock(child.ID, "AAPL", dec("100"))
		require.NoError(t, err)

		// Two sells of 0.75 against a 1-share holding: exactly one can win
		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = testDB.SellStock(child.ID, "AAPL", dec("0.75"))
			}(i)
		}
		wg.Wait()

		var succeeded, insufficient int
		for _, err := range errs {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrInsufficientShares):
				insufficient++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, insufficient)

		user, err := testDB.GetUserByID(child.ID)
		require.NoError(t, err)
		assert.True(t, user.Balance.Equal(dec("75")), "balance = %s", user.Balance)
	})
}

func TestChoreApproval(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	setup := func(t *testing.T) (parent, child *models.User, assignment *models.ChoreAssignment, familyID string) {
		testDB.TruncateAll(t)
		family, p, c := testDB.seedFamily(t, "5")

		chore := &models.Chore{
			FamilyID:    family.ID,
			Title:       "Clean room",
			Reward:      dec("10"),
			CreatedByID: p.ID,
		}
		require.NoError(t, testDB.CreateChore(chore))

		a, err := testDB.AssignChore(chore.ID, c.ID)
		require.NoError(t, err)
		a, err = testDB.SubmitAssignment(a.ID, c.ID)
		require.NoError(t, err)
		return p, c, a, family.ID
	}

	t.Run("approval credits the reward once", func(t *testing.T) {
		parent, child, assignment, familyID := setup(t)

		approved, err := testDB.ApproveChoreAssignment(assignment.ID, parent.ID, familyID)
		require.NoError(t, err)
		assert.Equal(t, models.AssignmentApproved, approved.Status)
		assert.NotNil(t, approved.ApprovedAt)

		user, err := testDB.GetUserByID(child.ID)
		require.NoError(t, err)
		assert.True(t, user.Balance.Equal(dec("15")), "balance = %s", user.Balance)

		txns, err := testDB.GetTransactionsByUser(child.ID, 10)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, models.TransactionChoreEarning, txns[0].Type)
		assert.True(t, txns[0].Amount.Equal(dec("10")))

		// A second approval must not double-credit
		_, err = testDB.ApproveChoreAssignment(assignment.ID, parent.ID, familyID)
		assert.ErrorIs(t, err, ErrConflictingState)

		user, err = testDB.GetUserByID(child.ID)
		require.NoError(t, err)
		assert.True(t, user.Balance.Equal(dec("15")))
	})

	t.Run("rejection leaves the balance alone", func(t *testing.T) {
		parent, child, assignment, familyID := setup(t)

		rejected, err := testDB.RejectChoreAssignment(assignment.ID, parent.ID, familyID)
		require.NoError(t, err)
		assert.Equal(t, models.AssignmentRejected, rejected.Status)

		user, err := testDB.GetUserByID(child.ID)
		require.NoError(t, err)
		assert.True(t, user.Balance.Equal(dec("5")))

		txns, err := testDB.GetTransactionsByUser(child.ID, 10)
		require.NoError(t, err)
		assert.Empty(t, txns)
	})

	t.Run("reviewer from another family cannot see the assignment", func(t *testing.T) {
		parent, _, assignment, _ := setup(t)

		otherFamily := &models.Family{Name: "Jones"}
		require.NoError(t, testDB.CreateFamily(otherFamily))

		_, err := testDB.ApproveChoreAssignment(assignment.ID, parent.ID, otherFamily.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("pending assignment cannot be approved", func(t *testing.T) {
		testDB.TruncateAll(t)
		family, parent, child := testDB.seedFamily(t, "5")

		chore := &models.Chore{FamilyID: family.ID, Title: "Dishes", Reward: dec("5"), CreatedByID: parent.ID}
		require.NoError(t, testDB.CreateChore(chore))
		assignment, err := testDB.AssignChore(chore.ID, child.ID)
		require.NoError(t, err)

		_, err = testDB.ApproveChoreAssignment(assignment.ID, parent.ID, family.ID)
		assert.ErrorIs(t, err, ErrConflictingState)
	})
}

func TestCashOut(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	// seedGains gives the child $27 of unrealized gains: one share
	// bought at $100 with the price now $127.
	seedGains := func(t *testing.T) (parent, child *models.User, familyID string) {
		testDB.TruncateAll(t)
		family, p, c := testDB.seedFamily(t, "100")

		stock := &models.Stock{Ticker: "AAPL", Name: "Apple Inc.", IsActive: true}
		require.NoError(t, testDB.SaveStock(stock))
		testDB.seedPrice(t, stock.ID, "100", 1)

		_, err := testDB.BuyStock(c.ID, "AAPL", dec("100"))
		require.NoError(t, err)
		testDB.seedPrice(t, stock.ID, "127", 0)
		return p, c, family.ID
	}

	t.Run("eligibility floors gains to the cash-out unit", func(t *testing.T) {
		_, child, _ := seedGains(t)

		e, err := testDB.GetCashOutEligibility(child.ID)
		require.NoError(t, err)
		assert.True(t, e.EligibleAmount.Equal(dec("25")), "eligible = %s", e.EligibleAmount)
		assert.False(t, e.HasPendingRequest)
	})

	t.Run("request above eligibility is rejected", func(t *testing.T) {
		_, child, _ := seedGains(t)

		_, err := testDB.RequestCashOut(child.ID, dec("30"))
		assert.ErrorIs(t, err, ErrExceedsEligible)
	})

	t.Run("request must be a positive multiple of the unit", func(t *testing.T) {
		_, child, _ := seedGains(t)

		_, err := testDB.RequestCashOut(child.ID, dec("3"))
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = testDB.RequestCashOut(child.ID, dec("22"))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("only one pending request at a time", func(t *testing.T) {
		_, child, _ := seedGains(t)

		req, err := testDB.RequestCashOut(child.ID, dec("25"))
		require.NoError(t, err)
		assert.Equal(t, models.CashOutPending, req.Status)

		_, err = testDB.RequestCashOut(child.ID, dec("5"))
		assert.ErrorIs(t, err, ErrConflictingState)

		e, err := testDB.GetCashOutEligibility(child.ID)
		require.NoError(t, err)
		assert.True(t, e.HasPendingRequest)
		require.NotNil(t, e.PendingAmount)
		assert.True(t, e.PendingAmount.Equal(dec("25")))
	})

	t.Run("approval records the cash-out but never debits the balance", func(t *testing.T) {
		parent, child, familyID := seedGains(t)

		req, err := testDB.RequestCashOut(child.ID, dec("25"))
		require.NoError(t, err)

		before, err := testDB.GetUserByID(child.ID)
		require.NoError(t, err)

		reviewed, err := testDB.ReviewCashOut(req.ID, parent.ID, familyID, true)
		require.NoError(t, err)
		assert.Equal(t, models.CashOutApproved, reviewed.Status)
		assert.NotNil(t, reviewed.ProcessedAt)

		after, err := testDB.GetUserByID(child.ID)
		require.NoError(t, err)
		assert.True(t, after.Balance.Equal(before.Balance), "balance changed: %s -> %s", before.Balance, after.Balance)

		txns, err := testDB.GetTransactionsByUser(child.ID, 10)
		require.NoError(t, err)
		require.NotEmpty(t, txns)
		assert.Equal(t, models.TransactionCashOut, txns[0].Type)
		assert.True(t, txns[0].Amount.Equal(dec("25")))

		// Approved amount counts against future eligibility: $27 of
		// gains minus $25 cashed out leaves $2, which floors to zero.
		e, err := testDB.GetCashOutEligibility(child.ID)
		require.NoError(t, err)
		assert.True(t, e.EligibleAmount.IsZero(), "eligible = %s", e.EligibleAmount)
		assert.False(t, e.HasPendingRequest)
	})

	t.Run("rejection frees the child to request again", func(t *testing.T) {
		parent, child, familyID := seedGains(t)

		req, err := testDB.RequestCashOut(child.ID, dec("25"))
		require.NoError(t, err)

		reviewed, err := testDB.ReviewCashOut(req.ID, parent.ID, familyID, false)
		require.NoError(t, err)
		assert.Equal(t, models.CashOutRejected, reviewed.Status)

		txns, err := testDB.GetTransactionsByUser(child.ID, 10)
		require.NoError(t, err)
		for _, txn := range txns {
			assert.NotEqual(t, models.TransactionCashOut, txn.Type)
		}

		// Rejected requests do not reduce eligibility
		_, err = testDB.RequestCashOut(child.ID, dec("25"))
		require.NoError(t, err)
	})

	t.Run("reviewer from another family is forbidden", func(t *testing.T) {
		parent, child, _ := seedGains(t)

		req, err := testDB.RequestCashOut(child.ID, dec("25"))
		require.NoError(t, err)

		otherFamily := &models.Family{Name: "Jones"}
		require.NoError(t, testDB.CreateFamily(otherFamily))

		_, err = testDB.ReviewCashOut(req.ID, parent.ID, otherFamily.ID, true)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("already-reviewed request cannot be reviewed again", func(t *testing.T) {
		parent, child, familyID := seedGains(t)

		req, err := testDB.RequestCashOut(child.ID, dec("25"))
		require.NoError(t, err)
		_, err = testDB.ReviewCashOut(req.ID, parent.ID, familyID, true)
		require.NoError(t, err)

		_, err = testDB.ReviewCashOut(req.ID, parent.ID, familyID, false)
		assert.ErrorIs(t, err, ErrConflictingState)
	})

	t.Run("losses mean zero eligibility", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, c, _ := testDB.seedFamily(t, "100")

		stock := &models.Stock{Ticker: "AAPL", Name: "Apple Inc.", IsActive: true}
		require.NoError(t, testDB.SaveStock(stock))
		testDB.seedPrice(t, stock.ID, "100", 1)
		_, err := testDB.BuyStock(c.ID, "AAPL", dec("100"))
		require.NoError(t, err)
		testDB.seedPrice(t, stock.ID, "80", 0)

		e, err := testDB.GetCashOutEligibility(c.ID)
		require.NoError(t, err)
		assert.True(t, e.EligibleAmount.IsZero())

		_, err = testDB.RequestCashOut(c.ID, dec("5"))
		assert.ErrorIs(t, err, ErrExceedsEligible)
	})
}

func TestDepositToChild(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("credits the balance and records the deposit", func(t *testing.T) {
		testDB.TruncateAll(t)
		family, _, child := testDB.seedFamily(t, "10")

		txn, balance, err := testDB.DepositToChild(child.ID, family.ID, dec("20"))
		require.NoError(t, err)
		assert.True(t, balance.Equal(dec("30")))
		assert.Equal(t, models.TransactionParentDeposit, txn.Type)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		testDB.TruncateAll(t)
		family, _, child := testDB.seedFamily(t, "10")

		_, _, err := testDB.DepositToChild(child.ID, family.ID, dec("0"))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("rejects children of other families", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, _, child := testDB.seedFamily(t, "10")

		otherFamily := &models.Family{Name: "Jones"}
		require.NoError(t, testDB.CreateFamily(otherFamily))

		_, _, err := testDB.DepositToChild(child.ID, otherFamily.ID, dec("20"))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
