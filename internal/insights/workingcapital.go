package insights

import (
	"github.com/platesense/platesense/internal/insights/ratio"
	"github.com/platesense/platesense/pkg/models"
)

const domainWorkingCapital = "working_capital"

// WorkingCapital resolves the liquidity metrics bundle.
func (e *Engine) WorkingCapital(ext *models.ExternalWorkingCapital, fin *models.PeriodFinancials) models.WorkingCapitalMetrics {
	m, src := resolve(
		func() (models.WorkingCapitalMetrics, bool) {
			if ext == nil {
				return models.WorkingCapitalMetrics{}, false
			}
			return e.workingCapitalFromExternal(*ext), true
		},
		func() (models.WorkingCapitalMetrics, bool) {
			if fin == nil {
				return models.WorkingCapitalMetrics{}, false
			}
			return e.workingCapitalFromRaw(*fin), true
		},
		defaultWorkingCapital,
	)
	if src != models.SourceExternal {
		e.report(domainWorkingCapital, "", ReasonFellBack, string(src))
	}
	m.Source = src
	return m
}

func (e *Engine) workingCapitalFromExternal(ext models.ExternalWorkingCapital) models.WorkingCapitalMetrics {
	return models.WorkingCapitalMetrics{
		WorkingCapital:         e.parseField(domainWorkingCapital, "working_capital", ext.WorkingCapital),
		CurrentRatio:           e.parseField(domainWorkingCapital, "current_ratio", ext.CurrentRatio),
		QuickRatio:             e.parseField(domainWorkingCapital, "quick_ratio", ext.QuickRatio),
		AccountsReceivableDays: e.parseField(domainWorkingCapital, "accounts_receivable_days", ext.AccountsReceivableDays),
		InventoryDays:          e.parseField(domainWorkingCapital, "inventory_days", ext.InventoryDays),
		AccountsPayableDays:    e.parseField(domainWorkingCapital, "accounts_payable_days", ext.AccountsPayableDays),
		CashConversionCycle:    int(e.parseField(domainWorkingCapital, "cash_conversion_cycle", ext.CashConversionCycle)),
		Insights:               e.convertInsights(domainWorkingCapital, ext.Insights),
		Recommendations:        e.convertRecommendations(domainWorkingCapital, ext.Recommendations),
	}
}

func (e *Engine) workingCapitalFromRaw(fin models.PeriodFinancials) models.WorkingCapitalMetrics {
	arDays := ratio.ReceivableDays(fin.AccountsReceivable, fin.Revenue)
	invDays := ratio.InventoryDays(fin.Inventory, fin.COGS())
	apDays := ratio.PayableDays(fin.AccountsPayable, fin.COGS())

	return models.WorkingCapitalMetrics{
		WorkingCapital:         ratio.WorkingCapital(fin.TotalCurrentAssets, fin.CurrentLiabilities),
		CurrentRatio:           ratio.CurrentRatio(fin.TotalCurrentAssets, fin.CurrentLiabilities),
		QuickRatio:             ratio.QuickRatio(fin.TotalCurrentAssets, fin.Inventory, fin.CurrentLiabilities),
		AccountsReceivableDays: arDays,
		InventoryDays:          invDays,
		AccountsPayableDays:    apDays,
		CashConversionCycle:    ratio.CashConversionCycle(arDays, invDays, apDays),
	}
}
