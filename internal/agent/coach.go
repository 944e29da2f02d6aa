// Package agent implements the PlateSense coach: a conversational advisor
// that answers operator questions against the branch's computed metrics.
// Metrics are always computed locally first and handed to the model as a
// snapshot; with no LLM configured the coach falls back to a deterministic
// offline reply built from the same snapshot.
package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/platesense/platesense/internal/agent/prompts"
	"github.com/platesense/platesense/internal/consolidate"
	"github.com/platesense/platesense/internal/insights"
	"github.com/platesense/platesense/internal/llm"
	"github.com/platesense/platesense/internal/store"
	"github.com/platesense/platesense/pkg/models"
	"github.com/platesense/platesense/pkg/utils"
)

// ── Memory ──

// Memory manages conversation history with a sliding window.
type Memory struct {
	mu       sync.RWMutex
	messages []llm.Message
	maxSize  int
}

// NewMemory creates a conversation memory with the given window size.
func NewMemory(maxSize int) *Memory {
	if maxSize <= 0 {
		maxSize = 50
	}
	return &Memory{
		maxSize:  maxSize,
		messages: make([]llm.Message, 0, maxSize),
	}
}

// Add appends a message, dropping the oldest once the window is full.
func (m *Memory) Add(msg llm.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	if len(m.messages) > m.maxSize {
		m.messages = m.messages[len(m.messages)-m.maxSize:]
	}
}

// Messages returns a copy of the current window.
func (m *Memory) Messages() []llm.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]llm.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Size returns the number of messages currently in memory.
func (m *Memory) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}

// Clear resets the memory completely.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = m.messages[:0]
}

// ── Sessions ──

// Session is one operator conversation, scoped to a branch ("" means the
// consolidated view).
type Session struct {
	ID        string    `json:"id"`
	BranchID  string    `json:"branch_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Memory    *Memory   `json:"-"`
}

// Reply is the coach's answer to one question.
type Reply struct {
	SessionID string        `json:"session_id"`
	Content   string        `json:"content"`
	Provider  string        `json:"provider,omitempty"`
	Model     string        `json:"model,omitempty"`
	Tokens    int           `json:"tokens,omitempty"`
	Duration  time.Duration `json:"duration"`
	Offline   bool          `json:"offline"`
}

// ── Coach ──

// Coach answers operator questions. provider may be nil; the coach then
// serves deterministic offline replies from the metrics snapshot.
type Coach struct {
	provider llm.Provider
	engine   *insights.Engine
	st       *store.Store
	opts     *llm.ChatOptions

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewCoach creates a coach over the given store and engine.
func NewCoach(provider llm.Provider, engine *insights.Engine, st *store.Store, opts *llm.ChatOptions) *Coach {
	return &Coach{
		provider: provider,
		engine:   engine,
		st:       st,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Online reports whether an LLM backend is configured.
func (c *Coach) Online() bool { return c.provider != nil }

// StartSession opens a new conversation scoped to branchID ("" = consolidated).
func (c *Coach) StartSession(branchID string) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		BranchID:  branchID,
		CreatedAt: time.Now(),
		Memory:    NewMemory(40),
	}
	c.mu.Lock()
	c.sessions[s.ID] = s
	c.mu.Unlock()
	return s
}

// Session returns an existing session by ID.
func (c *Coach) Session(id string) (*Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[id]
	return s, ok
}

// EndSession drops a session and its history.
func (c *Coach) EndSession(id string) {
	c.mu.Lock()
	delete(c.sessions, id)
	c.mu.Unlock()
}

// Ask answers one question within a session. The metrics snapshot is
// recomputed on every question so the coach always sees current data.
func (c *Coach) Ask(ctx context.Context, sessionID, question string) (*Reply, error) {
	session, ok := c.Session(sessionID)
	if !ok {
		return nil, fmt.Errorf("agent: unknown session %q", sessionID)
	}

	start := time.Now()
	snapshot := c.Snapshot(session.BranchID)

	if c.provider == nil {
		content := offlineReply(question, snapshot)
		session.Memory.Add(llm.UserMessage(question))
		session.Memory.Add(llm.AssistantMessage(content))
		return &Reply{
			SessionID: sessionID,
			Content:   content,
			Duration:  time.Since(start),
			Offline:   true,
		}, nil
	}

	messages := make([]llm.Message, 0, session.Memory.Size()+3)
	messages = append(messages, llm.SystemMessage(prompts.CoachSystemPrompt))
	messages = append(messages, llm.SystemMessage(prompts.MetricsContext(snapshot)))
	messages = append(messages, session.Memory.Messages()...)
	messages = append(messages, llm.UserMessage(prompts.CoachQuestion(question)))

	resp, err := c.provider.Chat(ctx, messages, c.opts)
	if err != nil {
		return nil, fmt.Errorf("agent: coach chat: %w", err)
	}

	session.Memory.Add(llm.UserMessage(question))
	session.Memory.Add(llm.AssistantMessage(resp.Content))

	return &Reply{
		SessionID: sessionID,
		Content:   resp.Content,
		Provider:  resp.Provider,
		Model:     resp.Model,
		Tokens:    resp.Usage.TotalTokens,
		Duration:  time.Since(start),
	}, nil
}

// ── Snapshot building ──

// Snapshot renders the branch's (or consolidated) current metrics as plain
// text for the model context and the offline fallback.
func (c *Coach) Snapshot(branchID string) string {
	fin, scope, ok := c.latestPeriod(branchID)
	if !ok {
		return "No financial data loaded yet."
	}

	var ext store.ExternalBundle
	if branchID != "" {
		ext = c.st.External(branchID)
	}

	prof := c.engine.Profitability(ext.Profitability, &fin)
	wc := c.engine.WorkingCapital(ext.WorkingCapital, &fin)
	funding := c.engine.Funding(ext.Funding, &fin)
	valuation := c.engine.Valuation(ext.Valuation, &fin, 0)
	sens := c.engine.Sensitivity(ext.Sensitivity, &fin)
	top := insights.TopOpportunities(sens.Opportunities, models.DimensionProfit, 3)

	var b strings.Builder
	fmt.Fprintf(&b, "Scope: %s\n", scope)
	if fin.PeriodLabel != "" {
		fmt.Fprintf(&b, "Period: %s\n", fin.PeriodLabel)
	}
	fmt.Fprintf(&b, "Revenue: %s\n", utils.FormatCurrency(fin.Revenue))
	fmt.Fprintf(&b, "Profitability (%s): gross margin %s, operating margin %s, net margin %s, ROA %s, ROE %s\n",
		prof.Source,
		utils.FormatPercent(prof.GrossMargin, 1),
		utils.FormatPercent(prof.OperatingMargin, 1),
		utils.FormatPercent(prof.NetMargin, 1),
		utils.FormatPercent(prof.ReturnOnAssets, 1),
		utils.FormatPercent(prof.ReturnOnEquity, 1))
	fmt.Fprintf(&b, "Working capital (%s): %s, current ratio %.2f, quick ratio %.2f, AR %.0f days, inventory %.0f days, AP %.0f days, cash conversion cycle %d days\n",
		wc.Source,
		utils.FormatCurrency(wc.WorkingCapital),
		wc.CurrentRatio, wc.QuickRatio,
		wc.AccountsReceivableDays, wc.InventoryDays, wc.AccountsPayableDays,
		wc.CashConversionCycle)
	fmt.Fprintf(&b, "Funding (%s): total debt %s, debt-to-equity %.2f, debt-to-assets %s, interest coverage %s, debt service coverage %s\n",
		funding.Source,
		utils.FormatCurrency(funding.TotalDebt),
		funding.DebtToEquity,
		utils.FormatPercent(funding.DebtToAssets, 1),
		utils.FormatMultiplier(funding.InterestCoverage, 1),
		utils.FormatMultiplier(funding.DebtServiceCoverage, 1))
	fmt.Fprintf(&b, "Valuation (%s): EBITDA %s at %s = %s\n",
		valuation.Source,
		utils.FormatCurrency(valuation.EBITDA),
		utils.FormatMultiplier(valuation.Multiplier, 1),
		utils.FormatCurrency(valuation.EBITDAValuation))

	if len(top) > 0 {
		b.WriteString("Top levers by profit impact:")
		for i, o := range top {
			if i > 0 {
				b.WriteString(";")
			}
			fmt.Fprintf(&b, " %s %s profit / %s cash",
				o.Name,
				utils.FormatCurrency(o.ProfitImpact),
				utils.FormatCurrency(o.CashFlowImpact))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// latestPeriod resolves the newest period record for the scope.
func (c *Coach) latestPeriod(branchID string) (models.PeriodFinancials, string, bool) {
	if branchID == "" {
		periods := consolidate.Consolidate(c.st.Branches(), c.st.PeriodsByBranch())
		if len(periods) == 0 {
			return models.PeriodFinancials{}, "", false
		}
		return periods[len(periods)-1], "all active branches (consolidated)", true
	}

	periods := c.st.Periods(branchID)
	if len(periods) == 0 {
		return models.PeriodFinancials{}, "", false
	}
	scope := branchID
	if b, ok := c.st.Branch(branchID); ok {
		scope = b.Name
	}
	return periods[len(periods)-1], scope, true
}

// ── Offline fallback ──

// offlineReply builds a canned answer from the snapshot when no LLM is
// configured. It picks the snapshot section matching the question.
func offlineReply(question, snapshot string) string {
	if snapshot == "No financial data loaded yet." {
		return "I don't have any financial data for this branch yet. Upload a period or enable the demo seed, then ask again."
	}

	q := strings.ToLower(question)
	lines := strings.Split(strings.TrimSpace(snapshot), "\n")

	pick := func(prefix string) string {
		for _, l := range lines {
			if strings.HasPrefix(l, prefix) {
				return l
			}
		}
		return ""
	}

	var focus string
	switch {
	case strings.Contains(q, "margin") || strings.Contains(q, "profit"):
		focus = pick("Profitability")
	case strings.Contains(q, "cash") || strings.Contains(q, "working capital") || strings.Contains(q, "liquid"):
		focus = pick("Working capital")
	case strings.Contains(q, "debt") || strings.Contains(q, "loan") || strings.Contains(q, "coverage"):
		focus = pick("Funding")
	case strings.Contains(q, "worth") || strings.Contains(q, "valuation") || strings.Contains(q, "sell"):
		focus = pick("Valuation")
	case strings.Contains(q, "lever") || strings.Contains(q, "improve") || strings.Contains(q, "opportunit"):
		focus = pick("Top levers")
	}

	var b strings.Builder
	b.WriteString("No AI backend is configured, so here is the relevant computed data.\n\n")
	if focus != "" {
		b.WriteString(focus)
		b.WriteString("\n")
	} else {
		b.WriteString(snapshot)
	}
	if levers := pick("Top levers"); levers != "" && focus != "" && !strings.HasPrefix(focus, "Top levers") {
		b.WriteString(levers)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
