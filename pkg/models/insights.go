package models

// Priority classifies how urgent a recommendation is.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// NormalizePriority maps a free-form string onto the closed Priority set.
// Unknown values fall back to medium.
func NormalizePriority(s string) (Priority, bool) {
	switch Priority(s) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return Priority(s), true
	}
	return PriorityMedium, false
}

// ImpactLevel classifies the tone of an insight.
type ImpactLevel string

const (
	ImpactPositive ImpactLevel = "positive"
	ImpactWarning  ImpactLevel = "warning"
	ImpactCritical ImpactLevel = "critical"
	ImpactNeutral  ImpactLevel = "neutral"
)

// NormalizeImpactLevel maps a free-form string onto the closed ImpactLevel
// set. Unknown values fall back to neutral.
func NormalizeImpactLevel(s string) (ImpactLevel, bool) {
	switch ImpactLevel(s) {
	case ImpactPositive, ImpactWarning, ImpactCritical, ImpactNeutral:
		return ImpactLevel(s), true
	}
	return ImpactNeutral, false
}

// Difficulty classifies how hard an improvement opportunity is to execute.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyModerate Difficulty = "moderate"
	DifficultyHard     Difficulty = "hard"
)

// NormalizeDifficulty maps a free-form string onto the closed Difficulty
// set. Unknown values fall back to moderate.
func NormalizeDifficulty(s string) (Difficulty, bool) {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyModerate, DifficultyHard:
		return Difficulty(s), true
	}
	return DifficultyModerate, false
}

// Timeframe classifies how quickly an opportunity pays off.
type Timeframe string

const (
	TimeframeImmediate  Timeframe = "immediate"
	TimeframeShortTerm  Timeframe = "short_term"
	TimeframeMediumTerm Timeframe = "medium_term"
)

// NormalizeTimeframe maps a free-form string onto the closed Timeframe set.
// Unknown values fall back to short term.
func NormalizeTimeframe(s string) (Timeframe, bool) {
	switch Timeframe(s) {
	case TimeframeImmediate, TimeframeShortTerm, TimeframeMediumTerm:
		return Timeframe(s), true
	}
	return TimeframeShortTerm, false
}

// ImpactDimension selects which impact field opportunities are ranked by.
type ImpactDimension string

const (
	DimensionProfit   ImpactDimension = "profit"
	DimensionCashFlow ImpactDimension = "cash_flow"
)

// Insight is a single qualitative observation attached to a metrics object.
type Insight struct {
	Type   ImpactLevel `json:"type"`
	Title  string      `json:"title"`
	Detail string      `json:"detail,omitempty"`
}

// Recommendation is a single prioritized action item.
type Recommendation struct {
	Priority Priority `json:"priority"`
	Title    string   `json:"title"`
	Detail   string   `json:"detail,omitempty"`
}

// MetricSource records which fallback tier produced a metrics object.
type MetricSource string

const (
	SourceExternal MetricSource = "external" // server/LLM-supplied structured result
	SourceComputed MetricSource = "computed" // derived from raw period financials
	SourceDefault  MetricSource = "default"  // static fallback literal
)

// ProfitabilityMetrics is the display-ready profitability insight bundle.
// Margin and return fields are percentages.
type ProfitabilityMetrics struct {
	GrossMargin     float64          `json:"gross_margin"`
	OperatingMargin float64          `json:"operating_margin"`
	NetMargin       float64          `json:"net_margin"`
	ReturnOnAssets  float64          `json:"return_on_assets"`
	ReturnOnEquity  float64          `json:"return_on_equity"`
	Insights        []Insight        `json:"insights,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Source          MetricSource     `json:"source"`
}

// WorkingCapitalMetrics is the display-ready liquidity insight bundle.
type WorkingCapitalMetrics struct {
	WorkingCapital         float64          `json:"working_capital"` // currency
	CurrentRatio           float64          `json:"current_ratio"`
	QuickRatio             float64          `json:"quick_ratio"`
	AccountsReceivableDays float64          `json:"accounts_receivable_days"`
	InventoryDays          float64          `json:"inventory_days"`
	AccountsPayableDays    float64          `json:"accounts_payable_days"`
	CashConversionCycle    int              `json:"cash_conversion_cycle"` // days, may be negative
	Insights               []Insight        `json:"insights,omitempty"`
	Recommendations        []Recommendation `json:"recommendations,omitempty"`
	Source                 MetricSource     `json:"source"`
}

// FundingMetrics is the display-ready leverage and coverage insight bundle.
type FundingMetrics struct {
	TotalDebt           float64          `json:"total_debt"` // currency
	DebtToEquity        float64          `json:"debt_to_equity"`
	DebtToAssets        float64          `json:"debt_to_assets"` // percentage
	InterestCoverage    float64          `json:"interest_coverage"`
	DebtServiceCoverage float64          `json:"debt_service_coverage"`
	Insights            []Insight        `json:"insights,omitempty"`
	Recommendations     []Recommendation `json:"recommendations,omitempty"`
	Source              MetricSource     `json:"source"`
}

// ScenarioOpportunity is one improvement lever with its derived impacts.
// Impacts are currency deltas per period.
type ScenarioOpportunity struct {
	Name           string     `json:"name"`
	RevenueImpact  float64    `json:"revenue_impact"`
	ProfitImpact   float64    `json:"profit_impact"`
	CashFlowImpact float64    `json:"cash_flow_impact"`
	Difficulty     Difficulty `json:"difficulty"`
	Timeframe      Timeframe  `json:"timeframe"`
	Priority       Priority   `json:"priority"`
}

// SensitivityMetrics is the display-ready what-if insight bundle: a fixed
// set of 1%-or-one-day levers with their profit and cash-flow impacts.
type SensitivityMetrics struct {
	Opportunities   []ScenarioOpportunity `json:"opportunities"`
	Insights        []Insight             `json:"insights,omitempty"`
	Recommendations []Recommendation      `json:"recommendations,omitempty"`
	Source          MetricSource          `json:"source"`
}

// ValuationMetrics is the display-ready business valuation bundle.
type ValuationMetrics struct {
	EBITDA          float64          `json:"ebitda"`
	Multiplier      float64          `json:"multiplier"`
	EBITDAValuation float64          `json:"ebitda_valuation"`
	Insights        []Insight        `json:"insights,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Source          MetricSource     `json:"source"`
}
