// Package api — derived insight and external override endpoints.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/platesense/platesense/internal/insights"
	"github.com/platesense/platesense/pkg/models"
)

// Insight domains addressable through the API.
const (
	domainProfitability  = "profitability"
	domainWorkingCapital = "working_capital"
	domainFunding        = "funding"
	domainSensitivity    = "sensitivity"
	domainValuation      = "valuation"
)

// InsightBundle is the full set of derived metrics for one period.
type InsightBundle struct {
	PeriodID       string                       `json:"period_id"`
	PeriodLabel    string                       `json:"period_label"`
	Profitability  models.ProfitabilityMetrics  `json:"profitability"`
	WorkingCapital models.WorkingCapitalMetrics `json:"working_capital"`
	Funding        models.FundingMetrics        `json:"funding"`
	Sensitivity    models.SensitivityMetrics    `json:"sensitivity"`
	Valuation      models.ValuationMetrics      `json:"valuation"`
}

func (s *Server) handleBranchInsights(w http.ResponseWriter, r *http.Request) {
	s.serveInsights(w, r, chi.URLParam(r, "id"))
}

func (s *Server) handleConsolidatedInsights(w http.ResponseWriter, r *http.Request) {
	s.serveInsights(w, r, "")
}

func (s *Server) handleBranchInsightDomain(w http.ResponseWriter, r *http.Request) {
	s.serveInsightDomain(w, r, chi.URLParam(r, "id"))
}

func (s *Server) handleConsolidatedInsightDomain(w http.ResponseWriter, r *http.Request) {
	s.serveInsightDomain(w, r, "")
}

func (s *Server) serveInsights(w http.ResponseWriter, r *http.Request, branchID string) {
	fin, ext, err := s.latestPeriod(branchID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	multiplier, err := s.multiplierParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bundle := InsightBundle{
		PeriodID:       fin.PeriodID,
		PeriodLabel:    fin.PeriodLabel,
		Profitability:  s.engine.Profitability(ext.Profitability, &fin),
		WorkingCapital: s.engine.WorkingCapital(ext.WorkingCapital, &fin),
		Funding:        s.engine.Funding(ext.Funding, &fin),
		Sensitivity:    s.engine.Sensitivity(ext.Sensitivity, &fin),
		Valuation:      s.engine.Valuation(ext.Valuation, &fin, multiplier),
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    bundle,
	})
}

func (s *Server) serveInsightDomain(w http.ResponseWriter, r *http.Request, branchID string) {
	domain := chi.URLParam(r, "domain")

	fin, ext, err := s.latestPeriod(branchID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	var data interface{}
	switch domain {
	case domainProfitability:
		data = s.engine.Profitability(ext.Profitability, &fin)
	case domainWorkingCapital:
		data = s.engine.WorkingCapital(ext.WorkingCapital, &fin)
	case domainFunding:
		data = s.engine.Funding(ext.Funding, &fin)
	case domainSensitivity:
		data = s.engine.Sensitivity(ext.Sensitivity, &fin)
	case domainValuation:
		multiplier, err := s.multiplierParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		data = s.engine.Valuation(ext.Valuation, &fin, multiplier)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown insight domain: %s", domain))
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "id") // empty on the consolidated route

	fin, ext, err := s.latestPeriod(branchID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	dimension := models.DimensionProfit
	switch r.URL.Query().Get("dimension") {
	case "", string(models.DimensionProfit):
	case string(models.DimensionCashFlow):
		dimension = models.DimensionCashFlow
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown dimension: %s", r.URL.Query().Get("dimension")))
		return
	}

	sens := s.engine.Sensitivity(ext.Sensitivity, &fin)
	ranked := insights.RankByImpact(sens.Opportunities, dimension)

	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid top: %s", raw))
			return
		}
		if n < len(ranked) {
			ranked = ranked[:n]
		}
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"dimension":     dimension,
			"opportunities": ranked,
		},
	})
}

// ============================================================
// External metric overrides
// ============================================================

func (s *Server) handleSetExternal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	domain := chi.URLParam(r, "domain")

	if _, ok := s.st.Branch(id); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown branch: %s", id))
		return
	}

	bundle := s.st.External(id)

	var decodeErr error
	switch domain {
	case domainProfitability:
		var ext models.ExternalProfitability
		if decodeErr = json.NewDecoder(r.Body).Decode(&ext); decodeErr == nil {
			bundle.Profitability = &ext
		}
	case domainWorkingCapital:
		var ext models.ExternalWorkingCapital
		if decodeErr = json.NewDecoder(r.Body).Decode(&ext); decodeErr == nil {
			bundle.WorkingCapital = &ext
		}
	case domainFunding:
		var ext models.ExternalFunding
		if decodeErr = json.NewDecoder(r.Body).Decode(&ext); decodeErr == nil {
			bundle.Funding = &ext
		}
	case domainSensitivity:
		var ext models.ExternalSensitivity
		if decodeErr = json.NewDecoder(r.Body).Decode(&ext); decodeErr == nil {
			bundle.Sensitivity = &ext
		}
	case domainValuation:
		var ext models.ExternalValuation
		if decodeErr = json.NewDecoder(r.Body).Decode(&ext); decodeErr == nil {
			bundle.Valuation = &ext
		}
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown insight domain: %s", domain))
		return
	}
	if decodeErr != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.st.SetExternal(id, bundle)

	s.wsHub.Broadcast(WSMessage{
		Type: "external_updated",
		Data: map[string]interface{}{"branch_id": id, "domain": domain},
	})

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"branch_id": id, "domain": domain},
	})
}

func (s *Server) handleClearExternal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.st.Branch(id); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown branch: %s", id))
		return
	}

	s.st.ClearExternal(id)

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"branch_id": id, "cleared": true},
	})
}
