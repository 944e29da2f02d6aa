package insights

import "github.com/platesense/platesense/pkg/models"

// Static fallback literals, shown when neither external analysis nor raw
// financials are available (fresh session, nothing uploaded yet). The
// numbers are typical for a mid-market full-service restaurant.

func defaultProfitability() models.ProfitabilityMetrics {
	return models.ProfitabilityMetrics{
		GrossMargin:     65.0,
		OperatingMargin: 12.0,
		NetMargin:       6.5,
		ReturnOnAssets:  9.0,
		ReturnOnEquity:  18.0,
		Insights: []models.Insight{
			{Type: models.ImpactNeutral, Title: "Industry baseline shown", Detail: "Upload period financials to see figures for your restaurant."},
		},
		Recommendations: []models.Recommendation{
			{Priority: models.PriorityMedium, Title: "Upload your latest P&L", Detail: "Margins are estimated from industry averages until statements are loaded."},
		},
	}
}

func defaultWorkingCapital() models.WorkingCapitalMetrics {
	return models.WorkingCapitalMetrics{
		WorkingCapital:         25000,
		CurrentRatio:           1.2,
		QuickRatio:             0.9,
		AccountsReceivableDays: 5,
		InventoryDays:          7,
		AccountsPayableDays:    21,
		CashConversionCycle:    -9, // restaurants typically collect before they pay
		Insights: []models.Insight{
			{Type: models.ImpactNeutral, Title: "Industry baseline shown"},
		},
	}
}

func defaultFunding() models.FundingMetrics {
	return models.FundingMetrics{
		TotalDebt:           150000,
		DebtToEquity:        1.1,
		DebtToAssets:        52.0,
		InterestCoverage:    4.5,
		DebtServiceCoverage: 1.8,
		Insights: []models.Insight{
			{Type: models.ImpactNeutral, Title: "Industry baseline shown"},
		},
	}
}

func defaultSensitivity() models.SensitivityMetrics {
	return models.SensitivityMetrics{
		Opportunities: []models.ScenarioOpportunity{
			{Name: LeverPriceIncrease1Pct, RevenueImpact: 5000, ProfitImpact: 5000, CashFlowImpact: 4250, Difficulty: models.DifficultyModerate, Timeframe: models.TimeframeImmediate, Priority: models.PriorityHigh},
			{Name: LeverCOGSDecrease1Pct, ProfitImpact: 1750, CashFlowImpact: 1487.5, Difficulty: models.DifficultyModerate, Timeframe: models.TimeframeShortTerm, Priority: models.PriorityHigh},
			{Name: LeverOpexDecrease1Pct, ProfitImpact: 2650, CashFlowImpact: 2252.5, Difficulty: models.DifficultyEasy, Timeframe: models.TimeframeImmediate, Priority: models.PriorityMedium},
		},
	}
}

func defaultValuation() models.ValuationMetrics {
	return models.ValuationMetrics{
		EBITDA:          60000,
		Multiplier:      8.0,
		EBITDAValuation: 480000,
		Insights: []models.Insight{
			{Type: models.ImpactNeutral, Title: "Industry baseline shown", Detail: "Valuation uses an illustrative EBITDA until statements are loaded."},
		},
	}
}
