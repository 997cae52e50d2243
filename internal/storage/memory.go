package storage

import (
	"context"
	"sort"
	"sync"

	"athanor/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	molecules   map[string]model.Molecule
	runs        map[string]model.RunRecord
	objectives  map[string]model.ObjectiveSummary
	history     map[string][]model.GenerationStat
	diagnostics map[string][]model.GenerationDiagnostics
	speciesHist map[string][]model.SpeciesGeneration
	top         map[string][]model.TopMoleculeRecord
	lineage     map[string][]model.LineageRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.molecules = make(map[string]model.Molecule)
	s.runs = make(map[string]model.RunRecord)
	s.objectives = make(map[string]model.ObjectiveSummary)
	s.history = make(map[string][]model.GenerationStat)
	s.diagnostics = make(map[string][]model.GenerationDiagnostics)
	s.speciesHist = make(map[string][]model.SpeciesGeneration)
	s.top = make(map[string][]model.TopMoleculeRecord)
	s.lineage = make(map[string][]model.LineageRecord)
	return nil
}

func (s *MemoryStore) SaveMolecule(_ context.Context, molecule model.Molecule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.molecules[molecule.ID] = copyMolecule(molecule)
	return nil
}

func (s *MemoryStore) GetMolecule(_ context.Context, id string) (model.Molecule, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	molecule, ok := s.molecules[id]
	if !ok {
		return model.Molecule{}, false, nil
	}
	return copyMolecule(molecule), true, nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

// ListRuns returns every saved run ordered by creation time, newest first.
func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAtUTC != runs[j].CreatedAtUTC {
			return runs[i].CreatedAtUTC > runs[j].CreatedAtUTC
		}
		return runs[i].ID < runs[j].ID
	})
	return runs, nil
}

func (s *MemoryStore) SaveObjectiveSummary(_ context.Context, summary model.ObjectiveSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objectives[summary.Name] = summary
	return nil
}

func (s *MemoryStore) GetObjectiveSummary(_ context.Context, name string) (model.ObjectiveSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.objectives[name]
	return summary, ok, nil
}

func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, history []model.GenerationStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := append([]model.GenerationStat(nil), history...)
	s.history[runID] = copied
	return nil
}

func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string) ([]model.GenerationStat, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	copied := append([]model.GenerationStat(nil), history...)
	return copied, true, nil
}

func (s *MemoryStore) SaveGenerationDiagnostics(_ context.Context, runID string, diagnostics []model.GenerationDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.GenerationDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	s.diagnostics[runID] = copied
	return nil
}

func (s *MemoryStore) GetGenerationDiagnostics(_ context.Context, runID string) ([]model.GenerationDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	diagnostics, ok := s.diagnostics[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.GenerationDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	return copied, true, nil
}

func (s *MemoryStore) SaveSpeciesHistory(_ context.Context, runID string, history []model.SpeciesGeneration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.speciesHist[runID] = copySpeciesHistory(history)
	return nil
}

func (s *MemoryStore) GetSpeciesHistory(_ context.Context, runID string) ([]model.SpeciesGeneration, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.speciesHist[runID]
	if !ok {
		return nil, false, nil
	}
	return copySpeciesHistory(history), true, nil
}

func (s *MemoryStore) SaveTopMolecules(_ context.Context, runID string, top []model.TopMoleculeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.TopMoleculeRecord, 0, len(top))
	for _, record := range top {
		record.Molecule = copyMolecule(record.Molecule)
		copied = append(copied, record)
	}
	s.top[runID] = copied
	return nil
}

func (s *MemoryStore) GetTopMolecules(_ context.Context, runID string) ([]model.TopMoleculeRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	top, ok := s.top[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.TopMoleculeRecord, 0, len(top))
	for _, record := range top {
		record.Molecule = copyMolecule(record.Molecule)
		copied = append(copied, record)
	}
	return copied, true, nil
}

func (s *MemoryStore) SaveLineage(_ context.Context, runID string, lineage []model.LineageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.LineageRecord, len(lineage))
	copy(copied, lineage)
	s.lineage[runID] = copied
	return nil
}

func (s *MemoryStore) GetLineage(_ context.Context, runID string) ([]model.LineageRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lineage, ok := s.lineage[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.LineageRecord, len(lineage))
	copy(copied, lineage)
	return copied, true, nil
}

func copyMolecule(m model.Molecule) model.Molecule {
	out := m
	out.Atoms = append([]model.Atom(nil), m.Atoms...)
	out.Bonds = append([]model.Bond(nil), m.Bonds...)
	return out
}

func copySpeciesHistory(history []model.SpeciesGeneration) []model.SpeciesGeneration {
	copied := make([]model.SpeciesGeneration, 0, len(history))
	for _, generation := range history {
		species := make([]model.SpeciesMetric, len(generation.Species))
		copy(species, generation.Species)
		copied = append(copied, model.SpeciesGeneration{
			Generation: generation.Generation,
			Species:    species,
			Appeared:   append([]string(nil), generation.Appeared...),
			Vanished:   append([]string(nil), generation.Vanished...),
		})
	}
	return copied
}
