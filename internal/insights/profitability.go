package insights

import (
	"github.com/platesense/platesense/internal/insights/ratio"
	"github.com/platesense/platesense/pkg/models"
)

const domainProfitability = "profitability"

// Profitability resolves the profitability metrics bundle. ext and fin may
// each be nil; precedence is external > computed-from-raw > default.
func (e *Engine) Profitability(ext *models.ExternalProfitability, fin *models.PeriodFinancials) models.ProfitabilityMetrics {
	m, src := resolve(
		func() (models.ProfitabilityMetrics, bool) {
			if ext == nil {
				return models.ProfitabilityMetrics{}, false
			}
			return e.profitabilityFromExternal(*ext), true
		},
		func() (models.ProfitabilityMetrics, bool) {
			if fin == nil {
				return models.ProfitabilityMetrics{}, false
			}
			return e.profitabilityFromRaw(*fin), true
		},
		defaultProfitability,
	)
	if src != models.SourceExternal {
		e.report(domainProfitability, "", ReasonFellBack, string(src))
	}
	m.Source = src
	return m
}

func (e *Engine) profitabilityFromExternal(ext models.ExternalProfitability) models.ProfitabilityMetrics {
	return models.ProfitabilityMetrics{
		GrossMargin:     e.parseField(domainProfitability, "gross_margin", ext.GrossMargin),
		OperatingMargin: e.parseField(domainProfitability, "operating_margin", ext.OperatingMargin),
		NetMargin:       e.parseField(domainProfitability, "net_margin", ext.NetMargin),
		ReturnOnAssets:  e.parseField(domainProfitability, "return_on_assets", ext.ReturnOnAssets),
		ReturnOnEquity:  e.parseField(domainProfitability, "return_on_equity", ext.ReturnOnEquity),
		Insights:        e.convertInsights(domainProfitability, ext.Insights),
		Recommendations: e.convertRecommendations(domainProfitability, ext.Recommendations),
	}
}

func (e *Engine) profitabilityFromRaw(fin models.PeriodFinancials) models.ProfitabilityMetrics {
	return models.ProfitabilityMetrics{
		GrossMargin:     ratio.GrossMargin(fin.GrossMargin, fin.Revenue),
		OperatingMargin: ratio.OperatingMargin(fin.GrossMargin, fin.OperatingExpenses(), fin.Revenue),
		NetMargin:       ratio.NetMargin(fin.NetProfitAfterTax, fin.Revenue),
		ReturnOnAssets:  ratio.ReturnOnAssets(fin.NetProfitAfterTax, fin.TotalAssets),
		ReturnOnEquity:  ratio.ReturnOnEquity(fin.NetProfitAfterTax, fin.Equity()),
	}
}
