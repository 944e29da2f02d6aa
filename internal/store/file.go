package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/platesense/platesense/pkg/models"
)

// BranchData is one branch plus its period statements in a dataset file.
type BranchData struct {
	models.Branch
	Periods []models.PeriodFinancials `json:"periods"`
}

// Dataset is the on-disk JSON format for a whole restaurant group.
type Dataset struct {
	Branches []BranchData `json:"branches"`
}

// LoadFile reads a JSON dataset file into a fresh store.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parsing dataset: %w", err)
	}
	if len(ds.Branches) == 0 {
		return nil, fmt.Errorf("dataset has no branches")
	}

	s := New()
	for _, b := range ds.Branches {
		if b.ID == "" || b.Name == "" {
			return nil, fmt.Errorf("branch entries need id and name")
		}
		s.UpsertBranch(b.Branch)
		if len(b.Periods) > 0 {
			s.SetPeriods(b.ID, b.Periods)
		}
	}
	return s, nil
}

// SaveFile writes the store's branches and periods as a JSON dataset.
// External overrides are transient and not persisted.
func (s *Store) SaveFile(path string) error {
	var ds Dataset
	for _, b := range s.Branches() {
		ds.Branches = append(ds.Branches, BranchData{
			Branch:  b,
			Periods: s.Periods(b.ID),
		})
	}

	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}
	return nil
}
