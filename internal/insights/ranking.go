package insights

import (
	"sort"

	"github.com/platesense/platesense/pkg/models"
)

// RankByImpact returns a new slice of opportunities sorted descending by the
// chosen impact dimension. The sort is stable: equal-valued entries keep
// their original relative order. Callers truncate to top-N after sorting.
func RankByImpact(opportunities []models.ScenarioOpportunity, dimension models.ImpactDimension) []models.ScenarioOpportunity {
	ranked := make([]models.ScenarioOpportunity, len(opportunities))
	copy(ranked, opportunities)

	impact := func(o models.ScenarioOpportunity) float64 {
		if dimension == models.DimensionCashFlow {
			return o.CashFlowImpact
		}
		return o.ProfitImpact
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return impact(ranked[i]) > impact(ranked[j])
	})
	return ranked
}

// TopOpportunities ranks by the chosen dimension and truncates to n.
func TopOpportunities(opportunities []models.ScenarioOpportunity, dimension models.ImpactDimension, n int) []models.ScenarioOpportunity {
	ranked := RankByImpact(opportunities, dimension)
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
