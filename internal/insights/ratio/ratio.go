// Package ratio provides the pure arithmetic primitives behind the insight
// engine: margin, liquidity, leverage, coverage, cycle, and valuation
// formulas over already-aggregated numeric inputs.
//
// Every function follows the same degenerate-input policy: a zero
// denominator yields 0, never NaN, Inf, or a panic. Callers feed missing
// inputs as 0 and get a best-effort 0 back.
package ratio

import "math"

// ── Profitability ──

// GrossMargin returns gross profit as a percentage of revenue.
func GrossMargin(grossProfit, revenue float64) float64 {
	return safeDiv(grossProfit, revenue) * 100
}

// OperatingMargin returns operating profit (gross profit minus operating
// expenses) as a percentage of revenue.
func OperatingMargin(grossProfit, operatingExpenses, revenue float64) float64 {
	return safeDiv(grossProfit-operatingExpenses, revenue) * 100
}

// NetMargin returns net income as a percentage of revenue.
func NetMargin(netIncome, revenue float64) float64 {
	return safeDiv(netIncome, revenue) * 100
}

// ReturnOnAssets returns net income as a percentage of total assets.
func ReturnOnAssets(netIncome, totalAssets float64) float64 {
	return safeDiv(netIncome, totalAssets) * 100
}

// ReturnOnEquity returns net income as a percentage of equity.
func ReturnOnEquity(netIncome, equity float64) float64 {
	return safeDiv(netIncome, equity) * 100
}

// ── Funding / leverage ──

// DebtToEquity returns total liabilities over equity as a plain ratio.
func DebtToEquity(totalLiabilities, equity float64) float64 {
	return safeDiv(totalLiabilities, equity)
}

// DebtToAssets returns total liabilities as a percentage of total assets.
func DebtToAssets(totalLiabilities, totalAssets float64) float64 {
	return safeDiv(totalLiabilities, totalAssets) * 100
}

// InterestCoverage returns EBITDA over interest expense.
func InterestCoverage(ebitda, interestExpense float64) float64 {
	return safeDiv(ebitda, interestExpense)
}

// DebtServiceCoverage returns EBITDA over total debt service (interest plus
// the assumed principal payment, a configuration-supplied constant).
func DebtServiceCoverage(ebitda, interestExpense, assumedPrincipalPayment float64) float64 {
	return safeDiv(ebitda, interestExpense+assumedPrincipalPayment)
}

// ── Working capital ──

// WorkingCapital returns current assets minus current liabilities.
func WorkingCapital(currentAssets, currentLiabilities float64) float64 {
	return currentAssets - currentLiabilities
}

// CurrentRatio returns current assets over current liabilities.
func CurrentRatio(currentAssets, currentLiabilities float64) float64 {
	return safeDiv(currentAssets, currentLiabilities)
}

// QuickRatio returns current assets excluding inventory over current
// liabilities.
func QuickRatio(currentAssets, inventory, currentLiabilities float64) float64 {
	return safeDiv(currentAssets-inventory, currentLiabilities)
}

// ReceivableDays returns how many days of revenue sit in accounts
// receivable.
func ReceivableDays(accountsReceivable, revenue float64) float64 {
	return safeDiv(accountsReceivable, revenue/365)
}

// InventoryDays returns how many days of cost of goods sold sit in
// inventory.
func InventoryDays(inventory, cogs float64) float64 {
	return safeDiv(inventory, cogs/365)
}

// PayableDays returns how many days of cost of goods sold sit in accounts
// payable.
func PayableDays(accountsPayable, cogs float64) float64 {
	return safeDiv(accountsPayable, cogs/365)
}

// CashConversionCycle returns the cycle length in whole days. Negative
// values are valid and denote a cash-generative cycle.
func CashConversionCycle(receivableDays, inventoryDays, payableDays float64) int {
	return int(math.Round(receivableDays + inventoryDays - payableDays))
}

// ── Valuation ──

// EBITDAValuation returns EBITDA times the chosen multiplier.
func EBITDAValuation(ebitda, multiplier float64) float64 {
	return ebitda * multiplier
}

// safeDiv divides without blowing up on a zero denominator.
func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
