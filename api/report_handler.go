// Package api — downloadable insight report endpoints.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/platesense/platesense/internal/consolidate"
	"github.com/platesense/platesense/internal/report"
	"github.com/platesense/platesense/internal/reviews"
	"github.com/platesense/platesense/internal/store"
	"github.com/platesense/platesense/pkg/models"
)

func (s *Server) handleBranchReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	branch, ok := s.st.Branch(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown branch: %s", id))
		return
	}
	s.serveReport(w, r, branch.Name, branch.Location, s.st.Periods(id), id)
}

func (s *Server) handleConsolidatedReport(w http.ResponseWriter, r *http.Request) {
	periods := consolidate.Consolidate(s.st.Branches(), s.st.PeriodsByBranch())
	s.serveReport(w, r, "Consolidated", "", periods, "")
}

func (s *Server) serveReport(w http.ResponseWriter, r *http.Request, scope, location string, periods []models.PeriodFinancials, branchID string) {
	if len(periods) == 0 {
		writeError(w, http.StatusNotFound, "no financial data to report on")
		return
	}

	multiplier, err := s.multiplierParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	format := report.ReportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = report.FormatHTML
	}

	fin := periods[len(periods)-1]
	var ext store.ExternalBundle
	if branchID != "" {
		ext = s.st.External(branchID)
	}

	data := &report.Data{
		Scope:          scope,
		Location:       location,
		Periods:        periods,
		Profitability:  s.engine.Profitability(ext.Profitability, &fin),
		WorkingCapital: s.engine.WorkingCapital(ext.WorkingCapital, &fin),
		Funding:        s.engine.Funding(ext.Funding, &fin),
		Sensitivity:    s.engine.Sensitivity(ext.Sensitivity, &fin),
		Valuation:      s.engine.Valuation(ext.Valuation, &fin, multiplier),
	}

	// Review sentiment is best-effort; the report renders without it.
	if branchID != "" {
		if branch, ok := s.st.Branch(branchID); ok {
			ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
			defer cancel()
			if revs, err := s.agg.FetchReviews(ctx, branch, s.cfg.Reviews.FetchLimit); err == nil {
				sentiment := reviews.Analyze(branchID, revs)
				data.Sentiment = &sentiment
			}
		}
	}

	cfg := report.DefaultReportConfig()
	switch format {
	case report.FormatHTML:
		html, err := report.GenerateHTML(data, cfg)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(html))
	case report.FormatText:
		text, err := report.GenerateText(data, cfg)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(text))
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported report format: %s", format))
	}
}
