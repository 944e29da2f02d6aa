// Package insights implements the financial insight derivation engine: per
// domain (profitability, working capital, funding, sensitivity, valuation)
// it resolves a display-ready metrics object from an externally supplied
// payload, raw period financials, or a static default, in that order of
// precedence.
//
// The engine is pure and never errors: malformed inputs and zero
// denominators degrade silently to zero. Callers that care about silent
// degradation register a Diagnostic callback.
package insights

import (
	"fmt"
	"math"

	"github.com/platesense/platesense/pkg/models"
	"github.com/platesense/platesense/pkg/utils"
)

// Params holds the tunable constants of the engine.
type Params struct {
	// AssumedPrincipalPayment is the per-period principal repayment added
	// to interest when computing debt service coverage.
	AssumedPrincipalPayment float64

	// AfterTaxCashFlowFactor converts a profit impact into a cash-flow
	// impact for the P&L sensitivity levers.
	AfterTaxCashFlowFactor float64

	// EBITDA multiplier slider bounds.
	MultiplierMin     float64
	MultiplierMax     float64
	MultiplierStep    float64
	MultiplierDefault float64
}

// DefaultParams returns the engine constants observed in production.
func DefaultParams() Params {
	return Params{
		AssumedPrincipalPayment: 20000,
		AfterTaxCashFlowFactor:  0.85,
		MultiplierMin:           4.0,
		MultiplierMax:           15.0,
		MultiplierStep:          0.5,
		MultiplierDefault:       8.0,
	}
}

// Diagnostic reasons reported through the hook.
const (
	ReasonMalformedValue = "malformed_value" // unparsable numeric string, degraded to 0
	ReasonUnknownEnum    = "unknown_enum"    // enum value outside the closed vocabulary
	ReasonFellBack       = "fell_back"       // resolution fell through a precedence tier
)

// DiagnosticEvent describes one silent degradation inside the engine.
type DiagnosticEvent struct {
	Domain string // "profitability", "working_capital", ...
	Field  string
	Reason string
	Value  string // the offending input, if any
}

// DiagnosticFunc receives degradation events. It must not block.
type DiagnosticFunc func(DiagnosticEvent)

// Engine derives insight metrics. Safe for concurrent use; it holds no
// per-request state and never mutates its inputs.
type Engine struct {
	params Params
	diag   DiagnosticFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithDiagnostic registers a callback for silent-degradation events.
func WithDiagnostic(fn DiagnosticFunc) Option {
	return func(e *Engine) { e.diag = fn }
}

// NewEngine creates an engine with the given constants.
func NewEngine(params Params, opts ...Option) *Engine {
	e := &Engine{params: params}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Params returns the engine's constants.
func (e *Engine) Params() Params { return e.params }

// ValidateMultiplier checks an EBITDA multiplier against the configured
// slider domain (bounds and step).
func (e *Engine) ValidateMultiplier(m float64) error {
	p := e.params
	if m < p.MultiplierMin || m > p.MultiplierMax {
		return fmt.Errorf("multiplier %.2f out of range [%.1f, %.1f]", m, p.MultiplierMin, p.MultiplierMax)
	}
	steps := (m - p.MultiplierMin) / p.MultiplierStep
	if math.Abs(steps-math.Round(steps)) > 1e-9 {
		return fmt.Errorf("multiplier %.2f is not a multiple of the %.1f step", m, p.MultiplierStep)
	}
	return nil
}

func (e *Engine) report(domain, field, reason, value string) {
	if e.diag != nil {
		e.diag(DiagnosticEvent{Domain: domain, Field: field, Reason: reason, Value: value})
	}
}

// parseField decodes one string-encoded numeric field from an external
// payload, reporting malformed values through the diagnostic hook.
func (e *Engine) parseField(domain, field, s string) float64 {
	val, ok := utils.ParseRatioOK(s)
	if !ok && s != "" {
		e.report(domain, field, ReasonMalformedValue, s)
	}
	return val
}

// convertInsights maps external insight entries onto the closed vocabulary.
func (e *Engine) convertInsights(domain string, in []models.ExternalInsight) []models.Insight {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.Insight, 0, len(in))
	for _, ext := range in {
		level, ok := models.NormalizeImpactLevel(ext.Type)
		if !ok {
			e.report(domain, "insights.type", ReasonUnknownEnum, ext.Type)
		}
		out = append(out, models.Insight{Type: level, Title: ext.Title, Detail: ext.Detail})
	}
	return out
}

// convertRecommendations maps external recommendation entries onto the
// closed vocabulary.
func (e *Engine) convertRecommendations(domain string, in []models.ExternalRecommendation) []models.Recommendation {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.Recommendation, 0, len(in))
	for _, ext := range in {
		prio, ok := models.NormalizePriority(ext.Priority)
		if !ok {
			e.report(domain, "recommendations.priority", ReasonUnknownEnum, ext.Priority)
		}
		out = append(out, models.Recommendation{Priority: prio, Title: ext.Title, Detail: ext.Detail})
	}
	return out
}
