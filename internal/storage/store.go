package storage

import (
	"context"

	"athanor/internal/model"
)

// Store defines persistence operations for evolved molecules and run telemetry.
type Store interface {
	Init(ctx context.Context) error
	SaveMolecule(ctx context.Context, molecule model.Molecule) error
	GetMolecule(ctx context.Context, id string) (model.Molecule, bool, error)
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveObjectiveSummary(ctx context.Context, summary model.ObjectiveSummary) error
	GetObjectiveSummary(ctx context.Context, name string) (model.ObjectiveSummary, bool, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []model.GenerationStat) error
	GetFitnessHistory(ctx context.Context, runID string) ([]model.GenerationStat, bool, error)
	SaveGenerationDiagnostics(ctx context.Context, runID string, diagnostics []model.GenerationDiagnostics) error
	GetGenerationDiagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error)
	SaveSpeciesHistory(ctx context.Context, runID string, history []model.SpeciesGeneration) error
	GetSpeciesHistory(ctx context.Context, runID string) ([]model.SpeciesGeneration, bool, error)
	SaveTopMolecules(ctx context.Context, runID string, top []model.TopMoleculeRecord) error
	GetTopMolecules(ctx context.Context, runID string) ([]model.TopMoleculeRecord, bool, error)
	SaveLineage(ctx context.Context, runID string, lineage []model.LineageRecord) error
	GetLineage(ctx context.Context, runID string) ([]model.LineageRecord, bool, error)
}
