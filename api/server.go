// Package api provides the HTTP REST API server for PlateSense.
//
// It exposes endpoints for branch and period management, derived financial
// insights, scenario opportunities, valuation, customer review sentiment,
// the coaching chat, and WebSocket streaming.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/platesense/platesense/internal/agent"
	"github.com/platesense/platesense/internal/config"
	"github.com/platesense/platesense/internal/consolidate"
	"github.com/platesense/platesense/internal/datasource"
	"github.com/platesense/platesense/internal/insights"
	"github.com/platesense/platesense/internal/llm"
	"github.com/platesense/platesense/internal/store"
	"github.com/platesense/platesense/pkg/models"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	engine *insights.Engine
	st     *store.Store
	agg    *datasource.Aggregator
	coach  *agent.Coach
	wsHub  *WSHub
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config) (*Server, error) {
	engine := insights.NewEngine(EngineParams(cfg), insights.WithDiagnostic(logDiagnostic))

	st := store.New()
	if cfg.API.SeedDemo {
		st.SeedDemo()
	}

	agg := newAggregator(cfg)

	// The coach degrades to offline snapshot replies when no LLM provider
	// is configured; that is not a startup error.
	var provider llm.Provider
	router, err := llm.NewRouterFromConfig(cfg)
	if err == nil {
		provider = router
	} else {
		zap.L().Warn("no LLM provider configured, chat runs offline", zap.Error(err))
	}

	opts := &llm.ChatOptions{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}

	srv := &Server{
		cfg:    cfg,
		engine: engine,
		st:     st,
		agg:    agg,
		coach:  agent.NewCoach(provider, engine, st, opts),
		wsHub:  NewWSHub(),
	}

	srv.router = srv.buildRouter()
	return srv, nil
}

// EngineParams maps the engine section of the config onto engine constants,
// keeping the built-in defaults for anything unset.
func EngineParams(cfg *config.Config) insights.Params {
	p := insights.DefaultParams()
	if cfg.Engine.AssumedPrincipalPayment > 0 {
		p.AssumedPrincipalPayment = cfg.Engine.AssumedPrincipalPayment
	}
	if cfg.Engine.AfterTaxCashFlowFactor > 0 {
		p.AfterTaxCashFlowFactor = cfg.Engine.AfterTaxCashFlowFactor
	}
	if cfg.Engine.MultiplierMin > 0 {
		p.MultiplierMin = cfg.Engine.MultiplierMin
	}
	if cfg.Engine.MultiplierMax > 0 {
		p.MultiplierMax = cfg.Engine.MultiplierMax
	}
	if cfg.Engine.MultiplierStep > 0 {
		p.MultiplierStep = cfg.Engine.MultiplierStep
	}
	if cfg.Engine.MultiplierDefault > 0 {
		p.MultiplierDefault = cfg.Engine.MultiplierDefault
	}
	return p
}

// newAggregator wires the configured review feeds and pages into sources.
func newAggregator(cfg *config.Config) *datasource.Aggregator {
	var sources []datasource.ReviewSource
	if len(cfg.Reviews.Feeds) > 0 {
		feeds := make([]datasource.ReviewFeed, 0, len(cfg.Reviews.Feeds))
		for _, f := range cfg.Reviews.Feeds {
			feeds = append(feeds, datasource.ReviewFeed{Source: f.Source, BranchID: f.BranchID, URL: f.URL})
		}
		sources = append(sources, datasource.NewFeedReviews(feeds))
	}
	if len(cfg.Reviews.Pages) > 0 {
		pages := make([]datasource.ReviewPage, 0, len(cfg.Reviews.Pages))
		for _, p := range cfg.Reviews.Pages {
			pages = append(pages, datasource.ReviewPage{Source: p.Source, BranchID: p.BranchID, URL: p.URL})
		}
		sources = append(sources, datasource.NewWebReviews(pages))
	}
	return datasource.NewAggregator(sources...)
}

// logDiagnostic surfaces silent metric degradations in the logs.
func logDiagnostic(ev insights.DiagnosticEvent) {
	zap.L().Debug("insight degradation",
		zap.String("domain", ev.Domain),
		zap.String("field", ev.Field),
		zap.String("reason", ev.Reason),
		zap.String("value", ev.Value),
	)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Store returns the backing store for seeding in tests and commands.
func (s *Server) Store() *store.Store {
	return s.st
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start WebSocket hub
	go s.wsHub.Run()

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-done
	zap.L().Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health (also available at /health)
		r.Get("/health", s.handleHealth)

		// Branches
		r.Get("/branches", s.handleListBranches)
		r.Post("/branches", s.handleUpsertBranch)
		r.Put("/branches/{id}/active", s.handleSetBranchActive)

		// Period financials
		r.Get("/branches/{id}/periods", s.handleGetPeriods)
		r.Put("/branches/{id}/periods", s.handleSetPeriods)
		r.Post("/branches/{id}/periods", s.handleAppendPeriod)

		// Consolidated view over all active branches
		r.Get("/consolidated/periods", s.handleConsolidatedPeriods)

		// Insights (branch or consolidated)
		r.Get("/branches/{id}/insights", s.handleBranchInsights)
		r.Get("/branches/{id}/insights/{domain}", s.handleBranchInsightDomain)
		r.Get("/consolidated/insights", s.handleConsolidatedInsights)
		r.Get("/consolidated/insights/{domain}", s.handleConsolidatedInsightDomain)

		// Ranked scenario opportunities
		r.Get("/branches/{id}/opportunities", s.handleOpportunities)
		r.Get("/consolidated/opportunities", s.handleOpportunities)

		// Reports
		r.Get("/branches/{id}/report", s.handleBranchReport)
		r.Get("/consolidated/report", s.handleConsolidatedReport)

		// External metric overrides
		r.Put("/branches/{id}/external/{domain}", s.handleSetExternal)
		r.Delete("/branches/{id}/external", s.handleClearExternal)

		// Customer reviews
		r.Get("/branches/{id}/reviews", s.handleGetReviews)
		r.Get("/branches/{id}/sentiment", s.handleGetSentiment)

		// Coaching chat
		r.Post("/chat/sessions", s.handleStartSession)
		r.Delete("/chat/sessions/{id}", s.handleEndSession)
		r.Post("/chat", s.handleChat)

		// Configuration
		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handleUpdateConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)

		// WebSocket (unified + channel sub-paths)
		r.Get("/ws", s.handleWebSocket)
		r.Get("/ws/chat", s.handleWebSocket)
		r.Get("/ws/insights", s.handleWebSocket)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SetActiveRequest is the body for PUT /api/v1/branches/{id}/active.
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// PeriodsRequest is the body for PUT /api/v1/branches/{id}/periods.
type PeriodsRequest struct {
	Periods []models.PeriodFinancials `json:"periods"`
}

// StartSessionRequest is the body for POST /api/v1/chat/sessions.
type StartSessionRequest struct {
	BranchID string `json:"branch_id,omitempty"` // empty = consolidated view
}

// ChatRequest is the body for POST /api/v1/chat.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":      "ok",
			"version":     "dev",
			"chat_online": s.coach.Online(),
			"branches":    len(s.st.Branches()),
		},
	})
}

func (s *Server) handleListBranches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.st.Branches(),
	})
}

func (s *Server) handleUpsertBranch(w http.ResponseWriter, r *http.Request) {
	var b models.Branch
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if b.ID == "" || b.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required")
		return
	}

	s.st.UpsertBranch(b)

	s.wsHub.Broadcast(WSMessage{
		Type: "branch_updated",
		Data: map[string]interface{}{"branch_id": b.ID},
	})

	writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    b,
	})
}

func (s *Server) handleSetBranchActive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !s.st.SetActive(id, req.Active) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown branch: %s", id))
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"branch_id": id, "active": req.Active},
	})
}

func (s *Server) handleGetPeriods(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.st.Branch(id); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown branch: %s", id))
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.st.Periods(id),
	})
}

func (s *Server) handleSetPeriods(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.st.Branch(id); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown branch: %s", id))
		return
	}

	var req PeriodsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.st.SetPeriods(id, req.Periods)

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"branch_id": id, "periods": len(req.Periods)},
	})
}

func (s *Server) handleAppendPeriod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.st.Branch(id); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown branch: %s", id))
		return
	}

	var p models.PeriodFinancials
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.st.AppendPeriod(id, p)

	s.wsHub.Broadcast(WSMessage{
		Type: "period_added",
		Data: map[string]interface{}{"branch_id": id, "period_id": p.PeriodID},
	})

	writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    p,
	})
}

func (s *Server) handleConsolidatedPeriods(w http.ResponseWriter, r *http.Request) {
	periods := consolidate.Consolidate(s.st.Branches(), s.st.PeriodsByBranch())
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    periods,
	})
}

// ============================================================
// Helpers
// ============================================================

// latestPeriod resolves the newest period for a branch, or the newest
// consolidated period when branchID is empty, together with any external
// metric overrides (the consolidated view never has externals).
func (s *Server) latestPeriod(branchID string) (models.PeriodFinancials, store.ExternalBundle, error) {
	if branchID == "" {
		periods := consolidate.Consolidate(s.st.Branches(), s.st.PeriodsByBranch())
		if len(periods) == 0 {
			return models.PeriodFinancials{}, store.ExternalBundle{}, fmt.Errorf("no financial data for any active branch")
		}
		return periods[len(periods)-1], store.ExternalBundle{}, nil
	}

	if _, ok := s.st.Branch(branchID); !ok {
		return models.PeriodFinancials{}, store.ExternalBundle{}, fmt.Errorf("unknown branch: %s", branchID)
	}
	periods := s.st.Periods(branchID)
	if len(periods) == 0 {
		return models.PeriodFinancials{}, store.ExternalBundle{}, fmt.Errorf("no financial data for branch %s", branchID)
	}
	return periods[len(periods)-1], s.st.External(branchID), nil
}

// multiplierParam reads the optional ?multiplier= query parameter,
// validated against the engine's slider domain.
func (s *Server) multiplierParam(r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("multiplier")
	if raw == "" {
		return s.engine.Params().MultiplierDefault, nil
	}
	m, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid multiplier: %s", raw)
	}
	if err := s.engine.ValidateMultiplier(m); err != nil {
		return 0, err
	}
	return m, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("failed to write JSON response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
