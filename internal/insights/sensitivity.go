package insights

import (
	"github.com/platesense/platesense/internal/insights/ratio"
	"github.com/platesense/platesense/pkg/models"
)

const domainSensitivity = "sensitivity"

// Canonical lever names. The set is fixed; callers rank and truncate it but
// never extend it.
const (
	LeverPriceIncrease1Pct  = "price_increase_1pct"
	LeverVolumeIncrease1Pct = "volume_increase_1pct"
	LeverCOGSDecrease1Pct   = "cogs_decrease_1pct"
	LeverOpexDecrease1Pct   = "opex_decrease_1pct"
	LeverReceivableDayLess  = "receivable_days_minus_1"
	LeverInventoryDayLess   = "inventory_days_minus_1"
	LeverPayableDayMore     = "payable_days_plus_1"
)

// Sensitivity resolves the what-if metrics bundle.
func (e *Engine) Sensitivity(ext *models.ExternalSensitivity, fin *models.PeriodFinancials) models.SensitivityMetrics {
	m, src := resolve(
		func() (models.SensitivityMetrics, bool) {
			if ext == nil {
				return models.SensitivityMetrics{}, false
			}
			return e.sensitivityFromExternal(*ext), true
		},
		func() (models.SensitivityMetrics, bool) {
			if fin == nil {
				return models.SensitivityMetrics{}, false
			}
			return e.sensitivityFromRaw(*fin), true
		},
		defaultSensitivity,
	)
	if src != models.SourceExternal {
		e.report(domainSensitivity, "", ReasonFellBack, string(src))
	}
	m.Source = src
	return m
}

func (e *Engine) sensitivityFromExternal(ext models.ExternalSensitivity) models.SensitivityMetrics {
	opps := make([]models.ScenarioOpportunity, 0, len(ext.Opportunities))
	for _, o := range ext.Opportunities {
		difficulty, ok := models.NormalizeDifficulty(o.Difficulty)
		if !ok {
			e.report(domainSensitivity, "opportunities.difficulty", ReasonUnknownEnum, o.Difficulty)
		}
		timeframe, ok := models.NormalizeTimeframe(o.Timeframe)
		if !ok {
			e.report(domainSensitivity, "opportunities.timeframe", ReasonUnknownEnum, o.Timeframe)
		}
		priority, ok := models.NormalizePriority(o.Priority)
		if !ok {
			e.report(domainSensitivity, "opportunities.priority", ReasonUnknownEnum, o.Priority)
		}
		opps = append(opps, models.ScenarioOpportunity{
			Name:           o.Name,
			RevenueImpact:  e.parseField(domainSensitivity, "opportunities.revenue_impact", o.RevenueImpact),
			ProfitImpact:   e.parseField(domainSensitivity, "opportunities.profit_impact", o.ProfitImpact),
			CashFlowImpact: e.parseField(domainSensitivity, "opportunities.cash_flow_impact", o.CashFlowImpact),
			Difficulty:     difficulty,
			Timeframe:      timeframe,
			Priority:       priority,
		})
	}
	return models.SensitivityMetrics{
		Opportunities:   opps,
		Insights:        e.convertInsights(domainSensitivity, ext.Insights),
		Recommendations: e.convertRecommendations(domainSensitivity, ext.Recommendations),
	}
}

// sensitivityFromRaw derives the fixed lever set from one period's
// financials. P&L levers assume a 1% move; their cash-flow impact is the
// profit impact scaled by the after-tax factor. Working-capital levers move
// one day of the respective balance: zero profit impact, full cash-flow
// impact.
func (e *Engine) sensitivityFromRaw(fin models.PeriodFinancials) models.SensitivityMetrics {
	revenue := fin.Revenue
	cogs := fin.COGS()
	opex := fin.OperatingExpenses()
	factor := e.params.AfterTaxCashFlowFactor

	arDays := ratio.ReceivableDays(fin.AccountsReceivable, revenue)
	invDays := ratio.InventoryDays(fin.Inventory, cogs)
	apDays := ratio.PayableDays(fin.AccountsPayable, cogs)

	opps := []models.ScenarioOpportunity{
		{
			Name:           LeverPriceIncrease1Pct,
			RevenueImpact:  revenue * 0.01,
			ProfitImpact:   revenue * 0.01, // full pass-through to profit
			CashFlowImpact: revenue * 0.01 * factor,
			Difficulty:     models.DifficultyModerate,
			Timeframe:      models.TimeframeImmediate,
			Priority:       models.PriorityHigh,
		},
		{
			Name:           LeverVolumeIncrease1Pct,
			RevenueImpact:  revenue * 0.01,
			ProfitImpact:   revenue*0.01 - cogs*0.01,
			CashFlowImpact: (revenue*0.01 - cogs*0.01) * factor,
			Difficulty:     models.DifficultyHard,
			Timeframe:      models.TimeframeMediumTerm,
			Priority:       models.PriorityMedium,
		},
		{
			Name:           LeverCOGSDecrease1Pct,
			ProfitImpact:   cogs * 0.01,
			CashFlowImpact: cogs * 0.01 * factor,
			Difficulty:     models.DifficultyModerate,
			Timeframe:      models.TimeframeShortTerm,
			Priority:       models.PriorityHigh,
		},
		{
			Name:           LeverOpexDecrease1Pct,
			ProfitImpact:   opex * 0.01,
			CashFlowImpact: opex * 0.01 * factor,
			Difficulty:     models.DifficultyEasy,
			Timeframe:      models.TimeframeImmediate,
			Priority:       models.PriorityMedium,
		},
		{
			Name:           LeverReceivableDayLess,
			CashFlowImpact: oneDayOf(fin.AccountsReceivable, arDays),
			Difficulty:     models.DifficultyEasy,
			Timeframe:      models.TimeframeShortTerm,
			Priority:       models.PriorityLow,
		},
		{
			Name:           LeverInventoryDayLess,
			CashFlowImpact: oneDayOf(fin.Inventory, invDays),
			Difficulty:     models.DifficultyModerate,
			Timeframe:      models.TimeframeShortTerm,
			Priority:       models.PriorityMedium,
		},
		{
			Name:           LeverPayableDayMore,
			CashFlowImpact: oneDayOf(fin.AccountsPayable, apDays),
			Difficulty:     models.DifficultyEasy,
			Timeframe:      models.TimeframeImmediate,
			Priority:       models.PriorityLow,
		},
	}

	return models.SensitivityMetrics{Opportunities: opps}
}

// oneDayOf returns the cash tied up in a single day of the given balance.
func oneDayOf(balance, days float64) float64 {
	if days == 0 {
		return 0
	}
	return balance / days
}
