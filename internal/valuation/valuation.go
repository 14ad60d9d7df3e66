// Package valuation holds the pure arithmetic behind trading and
// cash-outs. Every function is deterministic and side-effect free; all
// rounding is downward (toward zero) so the app never grants more value
// than was paid for.
package valuation

import "github.com/shopspring/decimal"

// SharePrecision is the number of decimal places a share count carries.
const SharePrecision = 6

// SharesFromAmount returns how many fractional shares a dollar amount
// buys at the given price, truncated to six decimal places. Returns
// zero when the price is not positive.
func SharesFromAmount(amount, pricePerShare decimal.Decimal) decimal.Decimal {
	if pricePerShare.Sign() <= 0 {
		return decimal.Zero
	}
	// QuoRem truncates toward zero, so the boundary case where the exact
	// quotient sits just under a 6-decimal step never rounds up.
	shares, _ := amount.QuoRem(pricePerShare, SharePrecision)
	return shares
}

// ProceedsFromSale returns the dollar value of selling shares at the
// given price. No rounding; full precision is retained until persisted.
func ProceedsFromSale(shares, pricePerShare decimal.Decimal) decimal.Decimal {
	return shares.Mul(pricePerShare)
}

// CostBasisToRemove returns the proportional slice of cost basis
// attributable to the shares being sold. Returns zero when totalShares
// is not positive.
func CostBasisToRemove(totalCostBasis, totalShares, sharesToSell decimal.Decimal) decimal.Decimal {
	if totalShares.Sign() <= 0 {
		return decimal.Zero
	}
	return totalCostBasis.Mul(sharesToSell).Div(totalShares)
}

// UnrealizedGain returns current value minus cost basis. May be negative.
func UnrealizedGain(currentValue, costBasis decimal.Decimal) decimal.Decimal {
	return currentValue.Sub(costBasis)
}

// EligibleCashOut returns the amount a child may request: gains net of
// previously approved cash-outs, floored to a whole multiple of unit.
// Never negative.
func EligibleCashOut(totalGains, previousCashOuts, unit decimal.Decimal) decimal.Decimal {
	remaining := totalGains.Sub(previousCashOuts)
	if remaining.Sign() <= 0 || unit.Sign() <= 0 {
		return decimal.Zero
	}
	return remaining.Div(unit).Floor().Mul(unit)
}

// IsDust reports whether a share count is at or below the threshold
// where the holding should be deleted rather than kept.
func IsDust(shares, threshold decimal.Decimal) bool {
	return shares.Cmp(threshold) <= 0
}
