package insights

import (
	"math"
	"testing"

	"github.com/platesense/platesense/pkg/models"
)

// samplePeriod returns one period of realistic single-site financials:
// 65% gross margin, 25% operating margin, EBITDA 135000.
func samplePeriod() models.PeriodFinancials {
	return models.PeriodFinancials{
		PeriodID:    "period-0",
		PeriodLabel: "Period 1",
		Date:        "Jul 2025",

		Revenue:                  500000,
		GrossMargin:              325000,
		NetProfitAfterTax:        100000,
		DepreciationAmortisation: 10000,
		InterestPaid:             5000,
		Tax:                      20000,

		TotalAssets:        800000,
		Cash:               40000,
		AccountsReceivable: 20000,
		Inventory:          15000,
		TotalCurrentAssets: 90000,
		FixedAssets:        710000,

		CurrentLiabilities:    60000,
		NonCurrentLiabilities: 240000,
		AccountsPayable:       25000,
		BankLoansCurrent:      20000,
		BankLoansNonCurrent:   180000,
	}
}

func newTestEngine(opts ...Option) *Engine {
	return NewEngine(DefaultParams(), opts...)
}

func TestProfitabilityFromRaw(t *testing.T) {
	fin := samplePeriod()
	m := newTestEngine().Profitability(nil, &fin)

	if m.Source != models.SourceComputed {
		t.Fatalf("expected computed source, got %s", m.Source)
	}
	if m.GrossMargin != 65.0 {
		t.Errorf("gross margin = %v, want 65", m.GrossMargin)
	}
	if m.OperatingMargin != 25.0 {
		t.Errorf("operating margin = %v, want 25", m.OperatingMargin)
	}
	if m.NetMargin != 20.0 {
		t.Errorf("net margin = %v, want 20", m.NetMargin)
	}
	if m.ReturnOnAssets != 12.5 {
		t.Errorf("ROA = %v, want 12.5", m.ReturnOnAssets)
	}
	if m.ReturnOnEquity != 20.0 {
		t.Errorf("ROE = %v, want 20", m.ReturnOnEquity)
	}
}

// External data, when present, wins wholesale over raw financials.
func TestProfitabilityPrecedence(t *testing.T) {
	fin := samplePeriod()
	ext := &models.ExternalProfitability{
		GrossMargin:     "58.2%",
		OperatingMargin: "14.1%",
		NetMargin:       "5.9%",
		ReturnOnAssets:  "7.3%",
		ReturnOnEquity:  "15.6%",
		Insights: []models.ExternalInsight{
			{Type: "warning", Title: "Margins below last quarter"},
		},
		Recommendations: []models.ExternalRecommendation{
			{Priority: "high", Title: "Review menu pricing"},
		},
	}

	m := newTestEngine().Profitability(ext, &fin)

	if m.Source != models.SourceExternal {
		t.Fatalf("expected external source, got %s", m.Source)
	}
	if m.GrossMargin != 58.2 {
		t.Errorf("gross margin = %v, want external 58.2", m.GrossMargin)
	}
	if m.ReturnOnEquity != 15.6 {
		t.Errorf("ROE = %v, want external 15.6", m.ReturnOnEquity)
	}
	if len(m.Insights) != 1 || m.Insights[0].Type != models.ImpactWarning {
		t.Errorf("insights not carried over: %+v", m.Insights)
	}
	if len(m.Recommendations) != 1 || m.Recommendations[0].Priority != models.PriorityHigh {
		t.Errorf("recommendations not carried over: %+v", m.Recommendations)
	}
}

func TestProfitabilityDefault(t *testing.T) {
	m := newTestEngine().Profitability(nil, nil)
	if m.Source != models.SourceDefault {
		t.Fatalf("expected default source, got %s", m.Source)
	}
	want := defaultProfitability()
	if m.GrossMargin != want.GrossMargin || m.NetMargin != want.NetMargin {
		t.Errorf("default metrics differ from the static literal: %+v", m)
	}
}

// A malformed external field degrades to 0 and fires the diagnostic hook;
// the rest of the payload still resolves.
func TestMalformedExternalField(t *testing.T) {
	var events []DiagnosticEvent
	e := newTestEngine(WithDiagnostic(func(ev DiagnosticEvent) {
		events = append(events, ev)
	}))

	ext := &models.ExternalProfitability{
		GrossMargin: "not-a-number",
		NetMargin:   "6.1%",
	}
	m := e.Profitability(ext, nil)

	if m.GrossMargin != 0 {
		t.Errorf("malformed field = %v, want 0", m.GrossMargin)
	}
	if m.NetMargin != 6.1 {
		t.Errorf("well-formed sibling = %v, want 6.1", m.NetMargin)
	}

	found := false
	for _, ev := range events {
		if ev.Reason == ReasonMalformedValue && ev.Field == "gross_margin" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a malformed_value diagnostic, got %+v", events)
	}
}

func TestUnknownEnumNormalized(t *testing.T) {
	var events []DiagnosticEvent
	e := newTestEngine(WithDiagnostic(func(ev DiagnosticEvent) {
		events = append(events, ev)
	}))

	ext := &models.ExternalProfitability{
		Insights: []models.ExternalInsight{{Type: "catastrophic", Title: "x"}},
	}
	m := e.Profitability(ext, nil)

	if m.Insights[0].Type != models.ImpactNeutral {
		t.Errorf("unknown enum normalized to %s, want neutral", m.Insights[0].Type)
	}
	if len(events) == 0 || events[0].Reason != ReasonUnknownEnum {
		t.Errorf("expected unknown_enum diagnostic, got %+v", events)
	}
}

func TestFallbackDiagnostics(t *testing.T) {
	var events []DiagnosticEvent
	e := newTestEngine(WithDiagnostic(func(ev DiagnosticEvent) {
		events = append(events, ev)
	}))

	fin := samplePeriod()
	e.Profitability(nil, &fin)
	e.Profitability(nil, nil)

	var computed, def bool
	for _, ev := range events {
		if ev.Reason == ReasonFellBack {
			switch ev.Value {
			case string(models.SourceComputed):
				computed = true
			case string(models.SourceDefault):
				def = true
			}
		}
	}
	if !computed || !def {
		t.Errorf("expected fell_back diagnostics for both tiers, got %+v", events)
	}
}

func TestWorkingCapitalFromRaw(t *testing.T) {
	fin := samplePeriod()
	m := newTestEngine().WorkingCapital(nil, &fin)

	if m.WorkingCapital != 30000 {
		t.Errorf("working capital = %v, want 30000", m.WorkingCapital)
	}
	if m.CurrentRatio != 1.5 {
		t.Errorf("current ratio = %v, want 1.5", m.CurrentRatio)
	}
	if m.QuickRatio != 1.25 {
		t.Errorf("quick ratio = %v, want 1.25", m.QuickRatio)
	}
	if math.Abs(m.AccountsReceivableDays-14.6) > 0.01 {
		t.Errorf("AR days = %v, want ~14.6", m.AccountsReceivableDays)
	}
	// AR 14.6 + inventory 31.3 - AP 52.1 days: cash-generative cycle.
	if m.CashConversionCycle != -6 {
		t.Errorf("cash conversion cycle = %v, want -6", m.CashConversionCycle)
	}
}

func TestFundingFromRaw(t *testing.T) {
	fin := samplePeriod()
	m := newTestEngine().Funding(nil, &fin)

	if m.TotalDebt != 200000 {
		t.Errorf("total debt = %v, want 200000", m.TotalDebt)
	}
	if m.DebtToEquity != 0.6 {
		t.Errorf("debt to equity = %v, want 0.6", m.DebtToEquity)
	}
	if m.DebtToAssets != 37.5 {
		t.Errorf("debt to assets = %v, want 37.5", m.DebtToAssets)
	}
	if m.InterestCoverage != 27.0 {
		t.Errorf("interest coverage = %v, want 27", m.InterestCoverage)
	}
	// EBITDA 135000 / (5000 interest + 20000 assumed principal)
	if m.DebtServiceCoverage != 5.4 {
		t.Errorf("debt service coverage = %v, want 5.4", m.DebtServiceCoverage)
	}
}

func TestValuationFromRaw(t *testing.T) {
	fin := models.PeriodFinancials{
		NetProfitAfterTax:        30000,
		InterestPaid:             5000,
		Tax:                      10000,
		DepreciationAmortisation: 15000,
	}
	m := newTestEngine().Valuation(nil, &fin, 8.0)

	if m.EBITDA != 60000 {
		t.Errorf("EBITDA = %v, want 60000", m.EBITDA)
	}
	if m.EBITDAValuation != 480000 {
		t.Errorf("valuation = %v, want 480000", m.EBITDAValuation)
	}
}

func TestValidateMultiplier(t *testing.T) {
	e := newTestEngine()

	for _, ok := range []float64{4.0, 8.0, 10.5, 15.0} {
		if err := e.ValidateMultiplier(ok); err != nil {
			t.Errorf("ValidateMultiplier(%v) = %v, want nil", ok, err)
		}
	}
	for _, bad := range []float64{3.5, 15.5, 8.25, -1} {
		if err := e.ValidateMultiplier(bad); err == nil {
			t.Errorf("ValidateMultiplier(%v) = nil, want error", bad)
		}
	}
}

// The engine must never mutate caller-owned inputs.
func TestInputsNotMutated(t *testing.T) {
	fin := samplePeriod()
	orig := fin
	e := newTestEngine()

	e.Profitability(nil, &fin)
	e.WorkingCapital(nil, &fin)
	e.Funding(nil, &fin)
	e.Sensitivity(nil, &fin)
	e.Valuation(nil, &fin, 8.0)

	if fin != orig {
		t.Errorf("engine mutated its input: %+v != %+v", fin, orig)
	}
}
