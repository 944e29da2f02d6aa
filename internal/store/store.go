// Package store keeps the session's branch and period data in memory.
// Nothing is persisted across restarts; uploads and the demo seed are the
// only sources of data.
package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/platesense/platesense/pkg/models"
)

// ExternalBundle carries externally supplied metric payloads for one branch.
// A nil field means no external data for that domain.
type ExternalBundle struct {
	Profitability  *models.ExternalProfitability
	WorkingCapital *models.ExternalWorkingCapital
	Funding        *models.ExternalFunding
	Sensitivity    *models.ExternalSensitivity
	Valuation      *models.ExternalValuation
}

// Store is a thread-safe in-memory holder of branches, their period
// financials, and any external metric overrides. Reads return copies so
// callers can never mutate shared state.
type Store struct {
	mu        sync.RWMutex
	branches  map[string]models.Branch
	periods   map[string][]models.PeriodFinancials
	externals map[string]ExternalBundle
}

// New creates an empty store.
func New() *Store {
	return &Store{
		branches:  make(map[string]models.Branch),
		periods:   make(map[string][]models.PeriodFinancials),
		externals: make(map[string]ExternalBundle),
	}
}

// Branches returns all branches sorted by name.
func (s *Store) Branches() []models.Branch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Branch, 0, len(s.branches))
	for _, b := range s.branches {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ActiveBranches returns only the branches flagged active, sorted by name.
func (s *Store) ActiveBranches() []models.Branch {
	all := s.Branches()
	out := all[:0]
	for _, b := range all {
		if b.IsActive {
			out = append(out, b)
		}
	}
	return out
}

// Branch looks up one branch by ID.
func (s *Store) Branch(id string) (models.Branch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.branches[id]
	return b, ok
}

// UpsertBranch adds or replaces a branch record.
func (s *Store) UpsertBranch(b models.Branch) {
	s.mu.Lock()
	s.branches[b.ID] = b
	s.mu.Unlock()
}

// SetActive flips a branch's active flag. Returns false when the branch
// does not exist.
func (s *Store) SetActive(id string, active bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.branches[id]
	if !ok {
		return false
	}
	b.IsActive = active
	s.branches[id] = b
	return true
}

// Periods returns a copy of one branch's period sequence, oldest first.
func (s *Store) Periods(branchID string) []models.PeriodFinancials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.periods[branchID]
	out := make([]models.PeriodFinancials, len(src))
	copy(out, src)
	return out
}

// PeriodsByBranch returns a copy of every branch's period sequence keyed by
// branch ID. Suitable for handing straight to consolidation.
func (s *Store) PeriodsByBranch() map[string][]models.PeriodFinancials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]models.PeriodFinancials, len(s.periods))
	for id, src := range s.periods {
		cp := make([]models.PeriodFinancials, len(src))
		copy(cp, src)
		out[id] = cp
	}
	return out
}

// SetPeriods replaces a branch's full period sequence.
func (s *Store) SetPeriods(branchID string, periods []models.PeriodFinancials) {
	cp := make([]models.PeriodFinancials, len(periods))
	copy(cp, periods)
	s.mu.Lock()
	s.periods[branchID] = cp
	s.mu.Unlock()
}

// AppendPeriod adds one period to the end of a branch's sequence.
func (s *Store) AppendPeriod(branchID string, p models.PeriodFinancials) {
	s.mu.Lock()
	s.periods[branchID] = append(s.periods[branchID], p)
	s.mu.Unlock()
}

// External returns the external metric bundle for a branch. The zero bundle
// (all nil) means nothing external was supplied.
func (s *Store) External(branchID string) ExternalBundle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.externals[branchID]
}

// SetExternal replaces the external metric bundle for a branch.
func (s *Store) SetExternal(branchID string, ext ExternalBundle) {
	s.mu.Lock()
	s.externals[branchID] = ext
	s.mu.Unlock()
}

// ClearExternal drops any external overrides for a branch, forcing the
// engine back onto raw financials.
func (s *Store) ClearExternal(branchID string) {
	s.mu.Lock()
	delete(s.externals, branchID)
	s.mu.Unlock()
}

// SeedDemo loads a small two-branch restaurant group so the API has data to
// serve before any upload happens.
func (s *Store) SeedDemo() {
	s.UpsertBranch(models.Branch{ID: "downtown", Name: "Downtown", Location: "12 King St", IsActive: true})
	s.UpsertBranch(models.Branch{ID: "harbourside", Name: "Harbourside", Location: "3 Wharf Rd", IsActive: true})

	s.SetPeriods("downtown", demoPeriods(480000, 0.64, 820000))
	s.SetPeriods("harbourside", demoPeriods(310000, 0.61, 560000))
}

// demoPeriods fabricates three quarters of plausible statements for one
// branch, growing revenue a few percent each quarter.
func demoPeriods(baseRevenue, grossPct, baseAssets float64) []models.PeriodFinancials {
	labels := []string{"Q1 FY26", "Q2 FY26", "Q3 FY26"}
	dates := []string{"2025-09-30", "2025-12-31", "2026-03-31"}

	out := make([]models.PeriodFinancials, 0, len(labels))
	for i, label := range labels {
		growth := 1 + 0.03*float64(i)
		revenue := baseRevenue * growth
		assets := baseAssets * (1 + 0.01*float64(i))
		out = append(out, models.PeriodFinancials{
			PeriodID:                 fmt.Sprintf("demo-%d", i),
			PeriodLabel:              label,
			Date:                     dates[i],
			Revenue:                  revenue,
			GrossMargin:              revenue * grossPct,
			NetProfitAfterTax:        revenue * 0.085,
			DepreciationAmortisation: revenue * 0.02,
			InterestPaid:             revenue * 0.012,
			Tax:                      revenue * 0.036,
			Dividends:                0,
			TotalAssets:              assets,
			Cash:                     assets * 0.06,
			AccountsReceivable:       revenue * 0.045,
			Inventory:                revenue * 0.03,
			TotalCurrentAssets:       assets * 0.14,
			FixedAssets:              assets * 0.86,
			CurrentLiabilities:       assets * 0.09,
			NonCurrentLiabilities:    assets * 0.27,
			AccountsPayable:          assets * 0.05,
			BankLoansCurrent:         assets * 0.025,
			BankLoansNonCurrent:      assets * 0.2,
		})
	}
	return out
}
