package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/platesense/platesense/pkg/models"
	"github.com/platesense/platesense/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Report Generator — Orchestrates chart + template rendering
// ════════════════════════════════════════════════════════════════════

// ReportFormat specifies the output format.
type ReportFormat string

const (
	FormatHTML ReportFormat = "html"
	FormatPDF  ReportFormat = "pdf"
	FormatText ReportFormat = "text"
)

// ReportSection identifies a section to include/exclude.
type ReportSection string

const (
	SectionSummary        ReportSection = "summary"
	SectionProfitability  ReportSection = "profitability"
	SectionWorkingCapital ReportSection = "working_capital"
	SectionFunding        ReportSection = "funding"
	SectionOpportunities  ReportSection = "opportunities"
	SectionValuation      ReportSection = "valuation"
	SectionReviews        ReportSection = "reviews"
)

// AllSections returns all report sections in display order.
func AllSections() []ReportSection {
	return []ReportSection{
		SectionSummary,
		SectionProfitability,
		SectionWorkingCapital,
		SectionFunding,
		SectionOpportunities,
		SectionValuation,
		SectionReviews,
	}
}

// ReportConfig controls report generation behaviour.
type ReportConfig struct {
	Format   ReportFormat    // output format (default: HTML)
	Sections []ReportSection // sections to include (default: all)
	Title    string          // custom report title (optional)
	Author   string          // author name (optional, default: "PlateSense")
	ChartCfg ChartConfig     // chart rendering config
}

// DefaultReportConfig returns sensible defaults.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Format:   FormatHTML,
		Sections: AllSections(),
		Author:   "PlateSense",
		ChartCfg: DefaultChartConfig(),
	}
}

// hasSection returns true if the section is included in the config.
func (rc ReportConfig) hasSection(s ReportSection) bool {
	for _, sec := range rc.Sections {
		if sec == s {
			return true
		}
	}
	return false
}

// ════════════════════════════════════════════════════════════════════
// Report Input — resolved metric bundles for one scope
// ════════════════════════════════════════════════════════════════════

// Data carries everything a report covers: the scope (one branch or the
// consolidated view), its raw periods, and the resolved metric bundles.
type Data struct {
	Scope    string // branch name or "Consolidated"
	Location string // branch location, empty for consolidated

	Periods []models.PeriodFinancials

	Profitability  models.ProfitabilityMetrics
	WorkingCapital models.WorkingCapitalMetrics
	Funding        models.FundingMetrics
	Sensitivity    models.SensitivityMetrics
	Valuation      models.ValuationMetrics

	Sentiment *models.ReviewSentiment // nil when review sources are not configured
}

// ════════════════════════════════════════════════════════════════════
// Report Data — Flattened for template rendering
// ════════════════════════════════════════════════════════════════════

// reportData is the template model passed to the HTML template and the
// text renderer.
type reportData struct {
	// Header
	Title       string
	Scope       string
	Location    string
	Author      string
	GeneratedAt string
	PeriodLabel string

	// Latest period snapshot
	Revenue     string
	GrossProfit string
	NetProfit   string
	EBITDA      string

	// Profitability
	GrossMarginPct     string
	OperatingMarginPct string
	NetMarginPct       string
	ReturnOnAssetsPct  string
	ReturnOnEquityPct  string

	// Working capital
	WorkingCapital      string
	CurrentRatio        string
	QuickRatio          string
	ReceivableDays      string
	InventoryDays       string
	PayableDays         string
	CashConversionCycle string

	// Funding
	TotalDebt           string
	DebtToEquity        string
	DebtToAssetsPct     string
	InterestCoverage    string
	DebtServiceCoverage string

	// Valuation
	Multiplier      string
	EBITDAValuation string

	// Opportunities
	Opportunities []OpportunityRow

	// Reviews
	SentimentLabel   string
	SentimentScore   string
	SentimentClass   string // CSS class: positive, mixed, negative
	ReviewCount      int
	SentimentSummary string

	// Per-domain sources and notes
	Sources  []SourceRow
	Insights []NoteRow

	// Charts (embedded SVG strings)
	TrendChart     template.HTML
	ImpactChart    template.HTML
	SentimentChart template.HTML

	// Section visibility flags
	ShowSummary        bool
	ShowProfitability  bool
	ShowWorkingCapital bool
	ShowFunding        bool
	ShowOpportunities  bool
	ShowValuation      bool
	ShowReviews        bool
}

// OpportunityRow is a flattened improvement opportunity for rendering.
type OpportunityRow struct {
	Name           string
	ProfitImpact   string
	CashFlowImpact string
	Difficulty     string
	Timeframe      string
	Priority       string
	PriorityClass  string // CSS class: high, medium, low
}

// SourceRow records which fallback tier produced each metric bundle.
type SourceRow struct {
	Domain string
	Source string
	Class  string // CSS class: external, computed, default
}

// NoteRow is a flattened insight or recommendation line.
type NoteRow struct {
	Domain string
	Tone   string // positive, warning, critical, neutral
	Text   string
}

// ════════════════════════════════════════════════════════════════════
// Generate Report
// ════════════════════════════════════════════════════════════════════

// GenerateHTML generates an HTML insight report for one scope.
func GenerateHTML(d *Data, cfg ReportConfig) (string, error) {
	if d == nil {
		return "", fmt.Errorf("report data is nil")
	}

	data := buildReportData(d, cfg)

	tmpl, err := template.New("report").Parse(ReportTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	return buf.String(), nil
}

// GenerateText generates a plain-text insight report (terminal / CLI friendly).
func GenerateText(d *Data, cfg ReportConfig) (string, error) {
	if d == nil {
		return "", fmt.Errorf("report data is nil")
	}

	data := buildReportData(d, cfg)
	return renderTextReport(data), nil
}

// ════════════════════════════════════════════════════════════════════
// Internal — Build template data
// ════════════════════════════════════════════════════════════════════

func buildReportData(d *Data, cfg ReportConfig) reportData {
	data := reportData{
		Title:       cfg.Title,
		Scope:       d.Scope,
		Location:    d.Location,
		Author:      cfg.Author,
		GeneratedAt: time.Now().Format("02 Jan 2006, 15:04"),

		ShowSummary:        cfg.hasSection(SectionSummary) && len(d.Periods) > 0,
		ShowProfitability:  cfg.hasSection(SectionProfitability),
		ShowWorkingCapital: cfg.hasSection(SectionWorkingCapital),
		ShowFunding:        cfg.hasSection(SectionFunding),
		ShowOpportunities:  cfg.hasSection(SectionOpportunities) && len(d.Sensitivity.Opportunities) > 0,
		ShowValuation:      cfg.hasSection(SectionValuation),
		ShowReviews:        cfg.hasSection(SectionReviews) && d.Sentiment != nil,
	}

	if data.Title == "" {
		data.Title = fmt.Sprintf("%s — Financial Insight Report", d.Scope)
	}

	// Latest period snapshot
	if len(d.Periods) > 0 {
		latest := d.Periods[len(d.Periods)-1]
		data.PeriodLabel = latest.PeriodLabel
		data.Revenue = utils.FormatCurrency(latest.Revenue)
		data.GrossProfit = utils.FormatCurrency(latest.GrossMargin)
		data.NetProfit = utils.FormatCurrency(latest.NetProfitAfterTax)
		data.EBITDA = utils.FormatCurrency(latest.EBITDA())
	}

	// Profitability
	p := d.Profitability
	data.GrossMarginPct = utils.FormatPercent(p.GrossMargin, 1)
	data.OperatingMarginPct = utils.FormatPercent(p.OperatingMargin, 1)
	data.NetMarginPct = utils.FormatPercent(p.NetMargin, 1)
	data.ReturnOnAssetsPct = utils.FormatPercent(p.ReturnOnAssets, 1)
	data.ReturnOnEquityPct = utils.FormatPercent(p.ReturnOnEquity, 1)

	// Working capital
	w := d.WorkingCapital
	data.WorkingCapital = utils.FormatCurrency(w.WorkingCapital)
	data.CurrentRatio = fmt.Sprintf("%.2f", w.CurrentRatio)
	data.QuickRatio = fmt.Sprintf("%.2f", w.QuickRatio)
	data.ReceivableDays = fmt.Sprintf("%.0f days", w.AccountsReceivableDays)
	data.InventoryDays = fmt.Sprintf("%.0f days", w.InventoryDays)
	data.PayableDays = fmt.Sprintf("%.0f days", w.AccountsPayableDays)
	data.CashConversionCycle = fmt.Sprintf("%d days", w.CashConversionCycle)

	// Funding
	f := d.Funding
	data.TotalDebt = utils.FormatCurrency(f.TotalDebt)
	data.DebtToEquity = fmt.Sprintf("%.2f", f.DebtToEquity)
	data.DebtToAssetsPct = utils.FormatPercent(f.DebtToAssets, 1)
	data.InterestCoverage = fmt.Sprintf("%.2f", f.InterestCoverage)
	data.DebtServiceCoverage = fmt.Sprintf("%.2f", f.DebtServiceCoverage)

	// Valuation
	v := d.Valuation
	data.Multiplier = utils.FormatMultiplier(v.Multiplier, 1)
	data.EBITDAValuation = utils.FormatCurrency(v.EBITDAValuation)

	// Opportunities
	for _, o := range d.Sensitivity.Opportunities {
		data.Opportunities = append(data.Opportunities, OpportunityRow{
			Name:           o.Name,
			ProfitImpact:   utils.FormatCurrency(o.ProfitImpact),
			CashFlowImpact: utils.FormatCurrency(o.CashFlowImpact),
			Difficulty:     string(o.Difficulty),
			Timeframe:      strings.ReplaceAll(string(o.Timeframe), "_", " "),
			Priority:       string(o.Priority),
			PriorityClass:  string(o.Priority),
		})
	}

	// Reviews
	if d.Sentiment != nil {
		s := d.Sentiment
		data.SentimentLabel = s.Label
		data.SentimentScore = fmt.Sprintf("%+.2f", s.Score)
		data.SentimentClass = sentimentClass(s.Score)
		data.ReviewCount = s.ReviewCount
		if s.ReviewCount > 0 {
			data.SentimentSummary = fmt.Sprintf("%s sentiment across %d reviews", s.Label, s.ReviewCount)
		} else {
			data.SentimentSummary = "No reviews available for this branch"
		}
		data.SentimentChart = template.HTML(SentimentGauge(s.Score, "Customer Sentiment", 180))
	}

	// Sources and notes
	data.Sources = buildSourceRows(d)
	data.Insights = buildNoteRows(d)

	// Revenue trend chart
	if len(d.Periods) > 1 {
		chartCfg := cfg.ChartCfg
		chartCfg.Title = fmt.Sprintf("%s Revenue Trend", d.Scope)
		revenues := make([]float64, len(d.Periods))
		profits := make([]float64, len(d.Periods))
		labels := make([]string, len(d.Periods))
		for i, per := range d.Periods {
			revenues[i] = per.Revenue
			profits[i] = per.NetProfitAfterTax
			labels[i] = per.PeriodLabel
		}
		data.TrendChart = template.HTML(TrendChart([]TrendSeries{
			{Name: "Revenue", Values: revenues},
			{Name: "Net Profit", Values: profits},
		}, labels, chartCfg))
	}

	// Opportunity impact chart
	if data.ShowOpportunities {
		chartCfg := cfg.ChartCfg
		chartCfg.Title = "Profit Impact per Opportunity"
		bars := make([]ImpactBar, len(d.Sensitivity.Opportunities))
		for i, o := range d.Sensitivity.Opportunities {
			bars[i] = ImpactBar{Label: o.Name, Value: o.ProfitImpact}
		}
		data.ImpactChart = template.HTML(ImpactChart(bars, chartCfg))
	}

	return data
}

func buildSourceRows(d *Data) []SourceRow {
	row := func(domain string, src models.MetricSource) SourceRow {
		return SourceRow{Domain: domain, Source: string(src), Class: string(src)}
	}
	return []SourceRow{
		row("Profitability", d.Profitability.Source),
		row("Working Capital", d.WorkingCapital.Source),
		row("Funding", d.Funding.Source),
		row("Opportunities", d.Sensitivity.Source),
		row("Valuation", d.Valuation.Source),
	}
}

func buildNoteRows(d *Data) []NoteRow {
	var rows []NoteRow
	add := func(domain string, ins []models.Insight, recs []models.Recommendation) {
		for _, i := range ins {
			text := i.Title
			if i.Detail != "" {
				text += ": " + i.Detail
			}
			rows = append(rows, NoteRow{Domain: domain, Tone: string(i.Type), Text: text})
		}
		for _, r := range recs {
			text := r.Title
			if r.Detail != "" {
				text += ": " + r.Detail
			}
			rows = append(rows, NoteRow{Domain: domain, Tone: "neutral", Text: text})
		}
	}
	add("Profitability", d.Profitability.Insights, d.Profitability.Recommendations)
	add("Working Capital", d.WorkingCapital.Insights, d.WorkingCapital.Recommendations)
	add("Funding", d.Funding.Insights, d.Funding.Recommendations)
	add("Opportunities", d.Sensitivity.Insights, d.Sensitivity.Recommendations)
	add("Valuation", d.Valuation.Insights, d.Valuation.Recommendations)
	return rows
}

func sentimentClass(score float64) string {
	switch {
	case score < -0.1:
		return "negative"
	case score < 0.3:
		return "mixed"
	default:
		return "positive"
	}
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

func renderTextReport(d reportData) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  %s\n", d.Title))
	sb.WriteString(fmt.Sprintf("  Generated: %s | %s\n", d.GeneratedAt, d.Author))
	sb.WriteString(line + "\n\n")

	if d.Location != "" {
		sb.WriteString(fmt.Sprintf("  %s — %s\n", d.Scope, d.Location))
	} else {
		sb.WriteString(fmt.Sprintf("  %s\n", d.Scope))
	}
	sb.WriteString(thinLine + "\n")

	if d.ShowSummary {
		sb.WriteString(fmt.Sprintf("\n  ■ LATEST PERIOD (%s)\n", d.PeriodLabel))
		sb.WriteString(fmt.Sprintf("    Revenue: %s | Gross Profit: %s\n", d.Revenue, d.GrossProfit))
		sb.WriteString(fmt.Sprintf("    Net Profit: %s | EBITDA: %s\n", d.NetProfit, d.EBITDA))
		sb.WriteString(thinLine + "\n")
	}

	writeRows := func(title string, show bool, rows [][2]string) {
		if !show {
			return
		}
		sb.WriteString(fmt.Sprintf("\n  ■ %s\n", title))
		for _, r := range rows {
			sb.WriteString(fmt.Sprintf("    %-24s %s\n", r[0], r[1]))
		}
		sb.WriteString(thinLine + "\n")
	}

	writeRows("PROFITABILITY", d.ShowProfitability, [][2]string{
		{"Gross Margin", d.GrossMarginPct},
		{"Operating Margin", d.OperatingMarginPct},
		{"Net Margin", d.NetMarginPct},
		{"Return on Assets", d.ReturnOnAssetsPct},
		{"Return on Equity", d.ReturnOnEquityPct},
	})
	writeRows("WORKING CAPITAL", d.ShowWorkingCapital, [][2]string{
		{"Working Capital", d.WorkingCapital},
		{"Current Ratio", d.CurrentRatio},
		{"Quick Ratio", d.QuickRatio},
		{"Receivable Days", d.ReceivableDays},
		{"Inventory Days", d.InventoryDays},
		{"Payable Days", d.PayableDays},
		{"Cash Conversion Cycle", d.CashConversionCycle},
	})
	writeRows("FUNDING", d.ShowFunding, [][2]string{
		{"Total Debt", d.TotalDebt},
		{"Debt / Equity", d.DebtToEquity},
		{"Debt / Assets", d.DebtToAssetsPct},
		{"Interest Coverage", d.InterestCoverage},
		{"Debt Service Coverage", d.DebtServiceCoverage},
	})

	if d.ShowOpportunities {
		sb.WriteString("\n  ■ IMPROVEMENT OPPORTUNITIES\n")
		for _, o := range d.Opportunities {
			sb.WriteString(fmt.Sprintf("    [%s] %s\n", strings.ToUpper(o.Priority), o.Name))
			sb.WriteString(fmt.Sprintf("      Profit: %s | Cash Flow: %s | %s, %s\n",
				o.ProfitImpact, o.CashFlowImpact, o.Difficulty, o.Timeframe))
		}
		sb.WriteString(thinLine + "\n")
	}

	writeRows("VALUATION", d.ShowValuation, [][2]string{
		{"EBITDA", d.EBITDA},
		{"Multiplier", d.Multiplier},
		{"Indicative Value", d.EBITDAValuation},
	})

	if d.ShowReviews {
		sb.WriteString("\n  ■ CUSTOMER REVIEWS\n")
		sb.WriteString(fmt.Sprintf("    %s (score %s, %d reviews)\n", d.SentimentLabel, d.SentimentScore, d.ReviewCount))
		sb.WriteString(thinLine + "\n")
	}

	if len(d.Insights) > 0 {
		sb.WriteString("\n  ■ NOTES\n")
		for _, n := range d.Insights {
			sb.WriteString(fmt.Sprintf("    [%s] %s — %s\n", n.Tone, n.Domain, n.Text))
		}
		sb.WriteString(thinLine + "\n")
	}

	sb.WriteString("\n  Metric sources:")
	for _, s := range d.Sources {
		sb.WriteString(fmt.Sprintf(" %s=%s", s.Domain, s.Source))
	}
	sb.WriteString("\n" + line + "\n")

	return sb.String()
}
