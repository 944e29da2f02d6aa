package models

// External override payloads, as delivered by the document-analysis backend
// or an LLM extraction step. Every numeric field arrives as a string in one
// of three encodings: plain decimal ("1.03"), percent ("50.6%"), or
// multiplier ("15.6x"). The insights engine decodes them at the boundary;
// malformed fields degrade to zero rather than failing the whole payload.

// ExternalInsight mirrors Insight with free-string enum fields.
type ExternalInsight struct {
	Type   string `json:"type"` // positive | warning | critical | neutral
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

// ExternalRecommendation mirrors Recommendation with free-string enum fields.
type ExternalRecommendation struct {
	Priority string `json:"priority"` // high | medium | low
	Title    string `json:"title"`
	Detail   string `json:"detail,omitempty"`
}

// ExternalProfitability is the externally supplied profitability payload.
type ExternalProfitability struct {
	GrossMargin     string                   `json:"gross_margin"`
	OperatingMargin string                   `json:"operating_margin"`
	NetMargin       string                   `json:"net_margin"`
	ReturnOnAssets  string                   `json:"return_on_assets"`
	ReturnOnEquity  string                   `json:"return_on_equity"`
	Insights        []ExternalInsight        `json:"insights,omitempty"`
	Recommendations []ExternalRecommendation `json:"recommendations,omitempty"`
}

// ExternalWorkingCapital is the externally supplied working-capital payload.
type ExternalWorkingCapital struct {
	WorkingCapital         string                   `json:"working_capital"`
	CurrentRatio           string                   `json:"current_ratio"`
	QuickRatio             string                   `json:"quick_ratio"`
	AccountsReceivableDays string                   `json:"accounts_receivable_days"`
	InventoryDays          string                   `json:"inventory_days"`
	AccountsPayableDays    string                   `json:"accounts_payable_days"`
	CashConversionCycle    string                   `json:"cash_conversion_cycle"`
	Insights               []ExternalInsight        `json:"insights,omitempty"`
	Recommendations        []ExternalRecommendation `json:"recommendations,omitempty"`
}

// ExternalFunding is the externally supplied funding/leverage payload.
type ExternalFunding struct {
	TotalDebt           string                   `json:"total_debt"`
	DebtToEquity        string                   `json:"debt_to_equity"`
	DebtToAssets        string                   `json:"debt_to_assets"`
	InterestCoverage    string                   `json:"interest_coverage"`
	DebtServiceCoverage string                   `json:"debt_service_coverage"`
	Insights            []ExternalInsight        `json:"insights,omitempty"`
	Recommendations     []ExternalRecommendation `json:"recommendations,omitempty"`
}

// ExternalOpportunity is one externally supplied scenario lever.
type ExternalOpportunity struct {
	Name           string `json:"name"`
	RevenueImpact  string `json:"revenue_impact"`
	ProfitImpact   string `json:"profit_impact"`
	CashFlowImpact string `json:"cash_flow_impact"`
	Difficulty     string `json:"difficulty"`
	Timeframe      string `json:"timeframe"`
	Priority       string `json:"priority"`
}

// ExternalSensitivity is the externally supplied sensitivity payload.
type ExternalSensitivity struct {
	Opportunities   []ExternalOpportunity    `json:"opportunities"`
	Insights        []ExternalInsight        `json:"insights,omitempty"`
	Recommendations []ExternalRecommendation `json:"recommendations,omitempty"`
}

// ExternalValuation is the externally supplied valuation payload.
type ExternalValuation struct {
	EBITDA          string                   `json:"ebitda"`
	Multiplier      string                   `json:"multiplier"`
	EBITDAValuation string                   `json:"ebitda_valuation"`
	Insights        []ExternalInsight        `json:"insights,omitempty"`
	Recommendations []ExternalRecommendation `json:"recommendations,omitempty"`
}
