package insights

import (
	"math"
	"testing"

	"github.com/platesense/platesense/pkg/models"
)

func findOpportunity(t *testing.T, opps []models.ScenarioOpportunity, name string) models.ScenarioOpportunity {
	t.Helper()
	for _, o := range opps {
		if o.Name == name {
			return o
		}
	}
	t.Fatalf("opportunity %q not found", name)
	return models.ScenarioOpportunity{}
}

func TestSensitivityLevers(t *testing.T) {
	fin := samplePeriod() // revenue 500000, COGS 175000, opex 200000
	m := newTestEngine().Sensitivity(nil, &fin)

	if len(m.Opportunities) != 7 {
		t.Fatalf("expected the fixed set of 7 levers, got %d", len(m.Opportunities))
	}

	price := findOpportunity(t, m.Opportunities, LeverPriceIncrease1Pct)
	if price.ProfitImpact != 5000 {
		t.Errorf("price lever profit = %v, want 5000", price.ProfitImpact)
	}
	if price.CashFlowImpact != 4250 { // after-tax factor 0.85
		t.Errorf("price lever cash flow = %v, want 4250", price.CashFlowImpact)
	}
	if price.RevenueImpact != 5000 {
		t.Errorf("price lever revenue = %v, want 5000", price.RevenueImpact)
	}

	volume := findOpportunity(t, m.Opportunities, LeverVolumeIncrease1Pct)
	if volume.ProfitImpact != 3250 { // 1% revenue minus 1% COGS
		t.Errorf("volume lever profit = %v, want 3250", volume.ProfitImpact)
	}

	cogs := findOpportunity(t, m.Opportunities, LeverCOGSDecrease1Pct)
	if cogs.ProfitImpact != 1750 {
		t.Errorf("COGS lever profit = %v, want 1750", cogs.ProfitImpact)
	}
	if cogs.RevenueImpact != 0 {
		t.Errorf("COGS lever revenue = %v, want 0", cogs.RevenueImpact)
	}

	opex := findOpportunity(t, m.Opportunities, LeverOpexDecrease1Pct)
	if opex.ProfitImpact != 2000 {
		t.Errorf("opex lever profit = %v, want 2000", opex.ProfitImpact)
	}
	if opex.CashFlowImpact != 1700 {
		t.Errorf("opex lever cash flow = %v, want 1700", opex.CashFlowImpact)
	}
}

// Working-capital levers carry zero profit impact and full cash-flow
// impact: one day's worth of the underlying balance.
func TestWorkingCapitalLevers(t *testing.T) {
	fin := samplePeriod()
	m := newTestEngine().Sensitivity(nil, &fin)

	ar := findOpportunity(t, m.Opportunities, LeverReceivableDayLess)
	if ar.ProfitImpact != 0 {
		t.Errorf("AR lever profit = %v, want 0", ar.ProfitImpact)
	}
	// One day of receivables equals one day of revenue: 500000/365.
	if math.Abs(ar.CashFlowImpact-500000.0/365) > 1e-6 {
		t.Errorf("AR lever cash flow = %v, want %v", ar.CashFlowImpact, 500000.0/365)
	}

	inv := findOpportunity(t, m.Opportunities, LeverInventoryDayLess)
	if inv.ProfitImpact != 0 {
		t.Errorf("inventory lever profit = %v, want 0", inv.ProfitImpact)
	}
	if math.Abs(inv.CashFlowImpact-175000.0/365) > 1e-6 {
		t.Errorf("inventory lever cash flow = %v, want %v", inv.CashFlowImpact, 175000.0/365)
	}

	ap := findOpportunity(t, m.Opportunities, LeverPayableDayMore)
	if ap.ProfitImpact != 0 {
		t.Errorf("AP lever profit = %v, want 0", ap.ProfitImpact)
	}
}

// Zero balances must not blow up the one-day calculation.
func TestSensitivityZeroBalances(t *testing.T) {
	fin := models.PeriodFinancials{Revenue: 100000, GrossMargin: 60000}
	m := newTestEngine().Sensitivity(nil, &fin)

	ar := findOpportunity(t, m.Opportunities, LeverReceivableDayLess)
	if ar.CashFlowImpact != 0 {
		t.Errorf("AR lever with no receivables = %v, want 0", ar.CashFlowImpact)
	}
	if math.IsNaN(ar.CashFlowImpact) {
		t.Error("AR lever produced NaN")
	}
}

func TestSensitivityExternalPrecedence(t *testing.T) {
	fin := samplePeriod()
	ext := &models.ExternalSensitivity{
		Opportunities: []models.ExternalOpportunity{
			{Name: "combo_upsell", ProfitImpact: "1,200", CashFlowImpact: "1020", Difficulty: "easy", Timeframe: "immediate", Priority: "high"},
		},
	}
	m := newTestEngine().Sensitivity(ext, &fin)

	if m.Source != models.SourceExternal {
		t.Fatalf("expected external source, got %s", m.Source)
	}
	if len(m.Opportunities) != 1 || m.Opportunities[0].ProfitImpact != 1200 {
		t.Errorf("external opportunities not used wholesale: %+v", m.Opportunities)
	}
}
