package insights

import (
	"github.com/platesense/platesense/internal/insights/ratio"
	"github.com/platesense/platesense/pkg/models"
)

const domainValuation = "valuation"

// Valuation resolves the business valuation bundle. multiplier should
// already be validated against the slider domain; pass 0 to use the
// configured default.
func (e *Engine) Valuation(ext *models.ExternalValuation, fin *models.PeriodFinancials, multiplier float64) models.ValuationMetrics {
	if multiplier == 0 {
		multiplier = e.params.MultiplierDefault
	}
	m, src := resolve(
		func() (models.ValuationMetrics, bool) {
			if ext == nil {
				return models.ValuationMetrics{}, false
			}
			return e.valuationFromExternal(*ext), true
		},
		func() (models.ValuationMetrics, bool) {
			if fin == nil {
				return models.ValuationMetrics{}, false
			}
			return e.valuationFromRaw(*fin, multiplier), true
		},
		defaultValuation,
	)
	if src != models.SourceExternal {
		e.report(domainValuation, "", ReasonFellBack, string(src))
	}
	m.Source = src
	return m
}

func (e *Engine) valuationFromExternal(ext models.ExternalValuation) models.ValuationMetrics {
	return models.ValuationMetrics{
		EBITDA:          e.parseField(domainValuation, "ebitda", ext.EBITDA),
		Multiplier:      e.parseField(domainValuation, "multiplier", ext.Multiplier),
		EBITDAValuation: e.parseField(domainValuation, "ebitda_valuation", ext.EBITDAValuation),
		Insights:        e.convertInsights(domainValuation, ext.Insights),
		Recommendations: e.convertRecommendations(domainValuation, ext.Recommendations),
	}
}

func (e *Engine) valuationFromRaw(fin models.PeriodFinancials, multiplier float64) models.ValuationMetrics {
	ebitda := fin.EBITDA()
	return models.ValuationMetrics{
		EBITDA:          ebitda,
		Multiplier:      multiplier,
		EBITDAValuation: ratio.EBITDAValuation(ebitda, multiplier),
	}
}
