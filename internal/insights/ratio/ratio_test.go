package ratio

import (
	"math"
	"testing"
)

func TestMargins(t *testing.T) {
	// Reference scenario: revenue 500k, gross profit 325k (65%),
	// operating expenses 200k (operating margin 25%).
	if got := GrossMargin(325000, 500000); got != 65.0 {
		t.Errorf("GrossMargin = %v, want 65", got)
	}
	if got := OperatingMargin(325000, 200000, 500000); got != 25.0 {
		t.Errorf("OperatingMargin = %v, want 25", got)
	}
	if got := NetMargin(50000, 500000); got != 10.0 {
		t.Errorf("NetMargin = %v, want 10", got)
	}
}

func TestReturns(t *testing.T) {
	if got := ReturnOnAssets(50000, 400000); got != 12.5 {
		t.Errorf("ReturnOnAssets = %v, want 12.5", got)
	}
	if got := ReturnOnEquity(50000, 200000); got != 25.0 {
		t.Errorf("ReturnOnEquity = %v, want 25", got)
	}
}

// A zero denominator must degrade to 0, not Inf or NaN.
func TestZeroDenominatorGuard(t *testing.T) {
	checks := map[string]float64{
		"CurrentRatio":        CurrentRatio(100, 0),
		"QuickRatio":          QuickRatio(100, 20, 0),
		"ReturnOnEquity":      ReturnOnEquity(100, 0),
		"ReturnOnAssets":      ReturnOnAssets(100, 0),
		"GrossMargin":         GrossMargin(100, 0),
		"DebtToEquity":        DebtToEquity(100, 0),
		"DebtToAssets":        DebtToAssets(100, 0),
		"InterestCoverage":    InterestCoverage(100, 0),
		"DebtServiceCoverage": DebtServiceCoverage(100, 0, 0),
		"ReceivableDays":      ReceivableDays(100, 0),
		"InventoryDays":       InventoryDays(100, 0),
		"PayableDays":         PayableDays(100, 0),
	}
	for name, got := range checks {
		if got != 0 {
			t.Errorf("%s with zero denominator = %v, want 0", name, got)
		}
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Errorf("%s returned non-finite %v", name, got)
		}
	}
}

func TestLeverage(t *testing.T) {
	if got := DebtToEquity(150000, 100000); got != 1.5 {
		t.Errorf("DebtToEquity = %v, want 1.5", got)
	}
	if got := DebtToAssets(150000, 300000); got != 50.0 {
		t.Errorf("DebtToAssets = %v, want 50", got)
	}
	if got := InterestCoverage(60000, 12000); got != 5.0 {
		t.Errorf("InterestCoverage = %v, want 5", got)
	}
	// 60000 / (10000 + 20000) = 2.0
	if got := DebtServiceCoverage(60000, 10000, 20000); got != 2.0 {
		t.Errorf("DebtServiceCoverage = %v, want 2", got)
	}
}

func TestWorkingCapital(t *testing.T) {
	if got := WorkingCapital(120000, 70000); got != 50000 {
		t.Errorf("WorkingCapital = %v, want 50000", got)
	}
	if got := CurrentRatio(120000, 60000); got != 2.0 {
		t.Errorf("CurrentRatio = %v, want 2", got)
	}
	if got := QuickRatio(120000, 30000, 60000); got != 1.5 {
		t.Errorf("QuickRatio = %v, want 1.5", got)
	}
}

func TestCashConversionCycle(t *testing.T) {
	if got := CashConversionCycle(12, 8, 15); got != 5 {
		t.Errorf("CashConversionCycle = %v, want 5", got)
	}
	// Negative cycles are valid: cash arrives before suppliers are paid.
	if got := CashConversionCycle(2, 5, 30); got != -23 {
		t.Errorf("CashConversionCycle = %v, want -23", got)
	}
	if got := CashConversionCycle(10.4, 0, 0); got != 10 {
		t.Errorf("CashConversionCycle rounding = %v, want 10", got)
	}
}

func TestEBITDAValuation(t *testing.T) {
	if got := EBITDAValuation(60000, 8.0); got != 480000 {
		t.Errorf("EBITDAValuation = %v, want 480000", got)
	}
	if got := EBITDAValuation(0, 8.0); got != 0 {
		t.Errorf("EBITDAValuation with zero EBITDA = %v, want 0", got)
	}
}
