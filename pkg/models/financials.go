package models

// PeriodFinancials holds one reporting period's raw statement data for a
// single branch (or for the consolidated view). Currency values are in whole
// units. Missing fields default to zero.
type PeriodFinancials struct {
	PeriodID    string `json:"period_id"`
	PeriodLabel string `json:"period_label"`
	Date        string `json:"date,omitempty"` // free text, e.g. "Jul 2025"

	// Profit & loss
	Revenue                  float64 `json:"revenue"`
	GrossMargin              float64 `json:"gross_margin"` // gross profit, currency (not a %)
	NetProfitAfterTax        float64 `json:"net_profit_after_tax"`
	DepreciationAmortisation float64 `json:"depreciation_amortisation"`
	InterestPaid             float64 `json:"interest_paid"`
	Tax                      float64 `json:"tax"`
	Dividends                float64 `json:"dividends"`

	// Assets
	TotalAssets        float64 `json:"total_assets"`
	Cash               float64 `json:"cash"`
	AccountsReceivable float64 `json:"accounts_receivable"`
	Inventory          float64 `json:"inventory"`
	TotalCurrentAssets float64 `json:"total_current_assets"`
	FixedAssets        float64 `json:"fixed_assets"`

	// Liabilities
	CurrentLiabilities    float64 `json:"current_liabilities"`
	NonCurrentLiabilities float64 `json:"non_current_liabilities"`
	AccountsPayable       float64 `json:"accounts_payable"`
	BankLoansCurrent      float64 `json:"bank_loans_current"`
	BankLoansNonCurrent   float64 `json:"bank_loans_non_current"`
}

// TotalLiabilities returns current plus non-current liabilities.
func (p PeriodFinancials) TotalLiabilities() float64 {
	return p.CurrentLiabilities + p.NonCurrentLiabilities
}

// Equity returns total assets minus total liabilities.
func (p PeriodFinancials) Equity() float64 {
	return p.TotalAssets - p.TotalLiabilities()
}

// EBITDA derives earnings before interest, taxes, depreciation, and
// amortisation from the after-tax profit line.
func (p PeriodFinancials) EBITDA() float64 {
	return p.NetProfitAfterTax + p.InterestPaid + p.Tax + p.DepreciationAmortisation
}

// EBIT derives operating profit (earnings before interest and taxes).
func (p PeriodFinancials) EBIT() float64 {
	return p.NetProfitAfterTax + p.InterestPaid + p.Tax
}

// COGS returns cost of goods sold (revenue minus gross profit).
func (p PeriodFinancials) COGS() float64 {
	return p.Revenue - p.GrossMargin
}

// OperatingExpenses returns the expense block between gross profit and EBIT.
func (p PeriodFinancials) OperatingExpenses() float64 {
	return p.GrossMargin - p.EBIT()
}

// Branch identifies one restaurant location. Only active branches
// participate in consolidation.
type Branch struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	IsActive bool   `json:"is_active"`
}
