package insights

import (
	"github.com/platesense/platesense/internal/insights/ratio"
	"github.com/platesense/platesense/pkg/models"
)

const domainFunding = "funding"

// Funding resolves the leverage and coverage metrics bundle.
func (e *Engine) Funding(ext *models.ExternalFunding, fin *models.PeriodFinancials) models.FundingMetrics {
	m, src := resolve(
		func() (models.FundingMetrics, bool) {
			if ext == nil {
				return models.FundingMetrics{}, false
			}
			return e.fundingFromExternal(*ext), true
		},
		func() (models.FundingMetrics, bool) {
			if fin == nil {
				return models.FundingMetrics{}, false
			}
			return e.fundingFromRaw(*fin), true
		},
		defaultFunding,
	)
	if src != models.SourceExternal {
		e.report(domainFunding, "", ReasonFellBack, string(src))
	}
	m.Source = src
	return m
}

func (e *Engine) fundingFromExternal(ext models.ExternalFunding) models.FundingMetrics {
	return models.FundingMetrics{
		TotalDebt:           e.parseField(domainFunding, "total_debt", ext.TotalDebt),
		DebtToEquity:        e.parseField(domainFunding, "debt_to_equity", ext.DebtToEquity),
		DebtToAssets:        e.parseField(domainFunding, "debt_to_assets", ext.DebtToAssets),
		InterestCoverage:    e.parseField(domainFunding, "interest_coverage", ext.InterestCoverage),
		DebtServiceCoverage: e.parseField(domainFunding, "debt_service_coverage", ext.DebtServiceCoverage),
		Insights:            e.convertInsights(domainFunding, ext.Insights),
		Recommendations:     e.convertRecommendations(domainFunding, ext.Recommendations),
	}
}

func (e *Engine) fundingFromRaw(fin models.PeriodFinancials) models.FundingMetrics {
	ebitda := fin.EBITDA()
	return models.FundingMetrics{
		TotalDebt:           fin.BankLoansCurrent + fin.BankLoansNonCurrent,
		DebtToEquity:        ratio.DebtToEquity(fin.TotalLiabilities(), fin.Equity()),
		DebtToAssets:        ratio.DebtToAssets(fin.TotalLiabilities(), fin.TotalAssets),
		InterestCoverage:    ratio.InterestCoverage(ebitda, fin.InterestPaid),
		DebtServiceCoverage: ratio.DebtServiceCoverage(ebitda, fin.InterestPaid, e.params.AssumedPrincipalPayment),
	}
}
