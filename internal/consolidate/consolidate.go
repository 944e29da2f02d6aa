// Package consolidate merges per-branch period financials into a single
// consolidated view. Only active branches participate; a single active
// branch is mirrored verbatim rather than summed.
package consolidate

import (
	"fmt"

	"github.com/platesense/platesense/pkg/models"
)

// Consolidate sums period records across all active branches, index-aligned.
// Branches with fewer periods than the longest simply stop contributing past
// their last period. The result carries synthesized period IDs and labels.
//
// Two special cases short-circuit the summation: zero active branches yields
// an empty sequence, and exactly one active branch is returned as a copy of
// its own periods with original IDs, labels and dates intact.
func Consolidate(branches []models.Branch, periodsByBranch map[string][]models.PeriodFinancials) []models.PeriodFinancials {
	var active []models.Branch
	for _, b := range branches {
		if b.IsActive {
			active = append(active, b)
		}
	}

	switch len(active) {
	case 0:
		return []models.PeriodFinancials{}
	case 1:
		src := periodsByBranch[active[0].ID]
		out := make([]models.PeriodFinancials, len(src))
		copy(out, src)
		return out
	}

	maxPeriods := 0
	for _, b := range active {
		if n := len(periodsByBranch[b.ID]); n > maxPeriods {
			maxPeriods = n
		}
	}

	out := make([]models.PeriodFinancials, 0, maxPeriods)
	for i := 0; i < maxPeriods; i++ {
		acc := models.PeriodFinancials{
			PeriodID:    fmt.Sprintf("period-%d", i),
			PeriodLabel: fmt.Sprintf("Period %d", i+1),
		}
		for _, b := range active {
			periods := periodsByBranch[b.ID]
			if i >= len(periods) {
				continue
			}
			addPeriod(&acc, periods[i])
		}
		out = append(out, acc)
	}
	return out
}

// addPeriod accumulates every numeric field of src into acc. Identity fields
// (ID, label, date) stay as synthesized by the caller.
func addPeriod(acc *models.PeriodFinancials, src models.PeriodFinancials) {
	acc.Revenue += src.Revenue
	acc.GrossMargin += src.GrossMargin
	acc.NetProfitAfterTax += src.NetProfitAfterTax
	acc.DepreciationAmortisation += src.DepreciationAmortisation
	acc.InterestPaid += src.InterestPaid
	acc.Tax += src.Tax
	acc.Dividends += src.Dividends
	acc.TotalAssets += src.TotalAssets
	acc.Cash += src.Cash
	acc.AccountsReceivable += src.AccountsReceivable
	acc.Inventory += src.Inventory
	acc.TotalCurrentAssets += src.TotalCurrentAssets
	acc.FixedAssets += src.FixedAssets
	acc.CurrentLiabilities += src.CurrentLiabilities
	acc.NonCurrentLiabilities += src.NonCurrentLiabilities
	acc.AccountsPayable += src.AccountsPayable
	acc.BankLoansCurrent += src.BankLoansCurrent
	acc.BankLoansNonCurrent += src.BankLoansNonCurrent
}
