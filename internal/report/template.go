package report

// ReportTemplate is the HTML template for the insight report.
// It is embedded as a Go constant — no external file dependencies.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #b45309;
    --green: #16a34a;
    --red: #dc2626;
    --orange: #ea580c;
    --section-bg: #fffbeb;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 900px;
    margin: 0 auto;
    padding: 20px;
  }
  h1, h2, h3 { font-weight: 600; }
  h1 { font-size: 1.5rem; margin-bottom: 4px; }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  h3 { font-size: 1rem; margin: 16px 0 8px; }
  p { margin: 6px 0; }
  .muted { color: var(--muted); font-size: 0.85rem; }

  .header {
    display: flex;
    justify-content: space-between;
    align-items: flex-start;
    border-bottom: 3px solid var(--accent);
    padding-bottom: 12px;
    margin-bottom: 16px;
  }
  .header-left h1 { color: var(--accent); }
  .header-right { text-align: right; }
  .scope-badge {
    display: inline-block;
    background: var(--accent);
    color: white;
    padding: 2px 12px;
    border-radius: 4px;
    font-weight: 700;
    font-size: 1.1rem;
    margin-right: 8px;
  }

  .metric-grid {
    display: grid;
    grid-template-columns: repeat(auto-fit, minmax(150px, 1fr));
    gap: 10px;
    margin: 12px 0;
  }
  .metric-card {
    background: var(--section-bg);
    border: 1px solid var(--border);
    border-radius: 6px;
    padding: 10px 12px;
  }
  .metric-card .label { display: block; color: var(--muted); font-size: 0.75rem; text-transform: uppercase; }
  .metric-card .value { display: block; font-size: 1.1rem; font-weight: 600; }

  table {
    width: 100%;
    border-collapse: collapse;
    margin: 10px 0;
    font-size: 0.9rem;
  }
  th, td { padding: 8px 10px; text-align: left; border-bottom: 1px solid var(--border); }
  th { background: var(--section-bg); color: var(--muted); font-size: 0.8rem; text-transform: uppercase; }

  .badge {
    display: inline-block;
    padding: 1px 10px;
    border-radius: 10px;
    font-size: 0.78rem;
    font-weight: 600;
    text-transform: capitalize;
  }
  .badge.high, .badge.critical, .badge.negative { background: #fee2e2; color: var(--red); }
  .badge.medium, .badge.warning, .badge.mixed { background: #ffedd5; color: var(--orange); }
  .badge.low, .badge.positive { background: #dcfce7; color: var(--green); }
  .badge.neutral, .badge.computed { background: #f3f4f6; color: var(--muted); }
  .badge.external { background: #dbeafe; color: #2563eb; }
  .badge.default { background: #fef9c3; color: #a16207; }

  .sentiment-box {
    display: flex;
    align-items: center;
    gap: 20px;
    background: var(--section-bg);
    border: 1px solid var(--border);
    border-radius: 8px;
    padding: 14px 18px;
  }
  .chart-container { margin: 12px 0; overflow-x: auto; }
  .section { page-break-inside: avoid; }
  .footer {
    margin-top: 32px;
    padding-top: 12px;
    border-top: 1px solid var(--border);
    color: var(--muted);
    font-size: 0.8rem;
  }
  @media print { body { padding: 0; } }
</style>
</head>
<body>

<!-- ═══════ HEADER ═══════ -->
<div class="header">
  <div class="header-left">
    <h1>{{.Title}}</h1>
    <p><span class="scope-badge">{{.Scope}}</span>{{if .Location}}<span class="muted">{{.Location}}</span>{{end}}</p>
  </div>
  <div class="header-right">
    <p class="muted">{{.Author}}</p>
    <p class="muted">{{.GeneratedAt}}</p>
  </div>
</div>

<!-- ═══════ LATEST PERIOD ═══════ -->
{{if .ShowSummary}}
<div class="section">
  <h2>Latest Period — {{.PeriodLabel}}</h2>
  <div class="metric-grid">
    <div class="metric-card"><span class="label">Revenue</span><span class="value">{{.Revenue}}</span></div>
    <div class="metric-card"><span class="label">Gross Profit</span><span class="value">{{.GrossProfit}}</span></div>
    <div class="metric-card"><span class="label">Net Profit</span><span class="value">{{.NetProfit}}</span></div>
    <div class="metric-card"><span class="label">EBITDA</span><span class="value">{{.EBITDA}}</span></div>
  </div>
</div>
{{end}}

<!-- ═══════ TREND CHART ═══════ -->
{{if .TrendChart}}
<div class="section">
  <h2>Revenue Trend</h2>
  <div class="chart-container">{{.TrendChart}}</div>
</div>
{{end}}

<!-- ═══════ PROFITABILITY ═══════ -->
{{if .ShowProfitability}}
<div class="section">
  <h2>Profitability</h2>
  <div class="metric-grid">
    <div class="metric-card"><span class="label">Gross Margin</span><span class="value">{{.GrossMarginPct}}</span></div>
    <div class="metric-card"><span class="label">Operating Margin</span><span class="value">{{.OperatingMarginPct}}</span></div>
    <div class="metric-card"><span class="label">Net Margin</span><span class="value">{{.NetMarginPct}}</span></div>
    <div class="metric-card"><span class="label">Return on Assets</span><span class="value">{{.ReturnOnAssetsPct}}</span></div>
    <div class="metric-card"><span class="label">Return on Equity</span><span class="value">{{.ReturnOnEquityPct}}</span></div>
  </div>
</div>
{{end}}

<!-- ═══════ WORKING CAPITAL ═══════ -->
{{if .ShowWorkingCapital}}
<div class="section">
  <h2>Working Capital</h2>
  <div class="metric-grid">
    <div class="metric-card"><span class="label">Working Capital</span><span class="value">{{.WorkingCapital}}</span></div>
    <div class="metric-card"><span class="label">Current Ratio</span><span class="value">{{.CurrentRatio}}</span></div>
    <div class="metric-card"><span class="label">Quick Ratio</span><span class="value">{{.QuickRatio}}</span></div>
    <div class="metric-card"><span class="label">Receivable Days</span><span class="value">{{.ReceivableDays}}</span></div>
    <div class="metric-card"><span class="label">Inventory Days</span><span class="value">{{.InventoryDays}}</span></div>
    <div class="metric-card"><span class="label">Payable Days</span><span class="value">{{.PayableDays}}</span></div>
    <div class="metric-card"><span class="label">Cash Conversion Cycle</span><span class="value">{{.CashConversionCycle}}</span></div>
  </div>
</div>
{{end}}

<!-- ═══════ FUNDING ═══════ -->
{{if .ShowFunding}}
<div class="section">
  <h2>Funding &amp; Debt</h2>
  <div class="metric-grid">
    <div class="metric-card"><span class="label">Total Debt</span><span class="value">{{.TotalDebt}}</span></div>
    <div class="metric-card"><span class="label">Debt / Equity</span><span class="value">{{.DebtToEquity}}</span></div>
    <div class="metric-card"><span class="label">Debt / Assets</span><span class="value">{{.DebtToAssetsPct}}</span></div>
    <div class="metric-card"><span class="label">Interest Coverage</span><span class="value">{{.InterestCoverage}}</span></div>
    <div class="metric-card"><span class="label">Debt Service Coverage</span><span class="value">{{.DebtServiceCoverage}}</span></div>
  </div>
</div>
{{end}}

<!-- ═══════ OPPORTUNITIES ═══════ -->
{{if .ShowOpportunities}}
<div class="section">
  <h2>Improvement Opportunities</h2>
  <table>
    <thead><tr><th>Opportunity</th><th>Profit Impact</th><th>Cash Flow Impact</th><th>Difficulty</th><th>Timeframe</th><th>Priority</th></tr></thead>
    <tbody>
    {{range .Opportunities}}
    <tr>
      <td>{{.Name}}</td>
      <td>{{.ProfitImpact}}</td>
      <td>{{.CashFlowImpact}}</td>
      <td>{{.Difficulty}}</td>
      <td>{{.Timeframe}}</td>
      <td><span class="badge {{.PriorityClass}}">{{.Priority}}</span></td>
    </tr>
    {{end}}
    </tbody>
  </table>
  {{if .ImpactChart}}
  <div class="chart-container">{{.ImpactChart}}</div>
  {{end}}
</div>
{{end}}

<!-- ═══════ VALUATION ═══════ -->
{{if .ShowValuation}}
<div class="section">
  <h2>Valuation</h2>
  <div class="metric-grid">
    <div class="metric-card"><span class="label">EBITDA</span><span class="value">{{.EBITDA}}</span></div>
    <div class="metric-card"><span class="label">Multiplier</span><span class="value">{{.Multiplier}}</span></div>
    <div class="metric-card"><span class="label">Indicative Value</span><span class="value">{{.EBITDAValuation}}</span></div>
  </div>
</div>
{{end}}

<!-- ═══════ REVIEWS ═══════ -->
{{if .ShowReviews}}
<div class="section">
  <h2>Customer Reviews</h2>
  <div class="sentiment-box">
    {{if .SentimentChart}}<div>{{.SentimentChart}}</div>{{end}}
    <div>
      <p><span class="badge {{.SentimentClass}}">{{.SentimentLabel}}</span></p>
      <p>Score {{.SentimentScore}} across {{.ReviewCount}} reviews</p>
      <p class="muted">{{.SentimentSummary}}</p>
    </div>
  </div>
</div>
{{end}}

<!-- ═══════ NOTES ═══════ -->
{{if .Insights}}
<div class="section">
  <h2>Notes</h2>
  <table>
    <thead><tr><th>Area</th><th>Tone</th><th>Note</th></tr></thead>
    <tbody>
    {{range .Insights}}
    <tr>
      <td>{{.Domain}}</td>
      <td><span class="badge {{.Tone}}">{{.Tone}}</span></td>
      <td>{{.Text}}</td>
    </tr>
    {{end}}
    </tbody>
  </table>
</div>
{{end}}

<!-- ═══════ SOURCES / FOOTER ═══════ -->
<div class="footer">
  <p>Metric sources:
  {{range .Sources}}<span class="badge {{.Class}}">{{.Domain}}: {{.Source}}</span> {{end}}</p>
  <p>External figures take precedence over computed ones; defaults are used only when no period data exists.</p>
  <p>Generated {{.GeneratedAt}} · {{.Author}}</p>
</div>

</body>
</html>`
