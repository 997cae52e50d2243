package stats

import (
	"os"
	"path/filepath"
	"testing"

	"athanor/internal/model"
)

func TestWriteAndExportRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "exports")

	runID := "run-123"
	best := model.Molecule{
		ID:      "m-best",
		Atoms:   []model.Atom{{ID: "a1", Element: "C"}, {ID: "a2", Element: "O"}},
		Bonds:   []model.Bond{{ID: "b1", A: "a1", B: "a2"}},
		Fitness: 0.7,
	}
	artifacts := RunArtifacts{
		Config: RunConfig{
			RunID:          runID,
			Objective:      "stability",
			PopulationSize: 4,
			MaxGenerations: 3,
			MutationRate:   0.3,
			ElitismCount:   1,
			MaxAtoms:       8,
			Seed:           1,
		},
		History: []model.GenerationStat{
			{Generation: 0, Best: 0.5, Average: 0.2},
			{Generation: 1, Best: 0.6, Average: 0.3},
			{Generation: 2, Best: 0.7, Average: 0.4},
		},
		Diagnostics: []model.GenerationDiagnostics{
			{Generation: 0, BestFitness: 0.5, MeanFitness: 0.2, SpeciesCount: 2, FingerprintDiversity: 3},
		},
		SpeciesHistory: []model.SpeciesGeneration{
			{Generation: 0, Species: []model.SpeciesMetric{{Formula: "CO", Members: 2, BestFitness: 0.5, MeanFitness: 0.3}}},
		},
		Best:             &best,
		TopMolecules:     []model.TopMoleculeRecord{{Rank: 1, Fitness: 0.7, Molecule: best}},
		Lineage:          []model.LineageRecord{{MoleculeID: "m-best", Generation: 0, Operation: "seed", Formula: "CO"}},
		FinalBestFitness: 0.7,
	}

	runDir, err := WriteRunArtifacts(baseDir, artifacts)
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	for _, file := range []string{"config.json", "fitness_history.csv", "diagnostics.json", "species.csv", "top_molecules.json", "lineage.json", "best_molecule.json"} {
		if _, err := os.Stat(filepath.Join(runDir, file)); err != nil {
			t.Fatalf("expected file %s: %v", file, err)
		}
	}

	exportedDir, err := ExportRun(baseDir, runID, outDir)
	if err != nil {
		t.Fatalf("export artifacts: %v", err)
	}

	for _, file := range []string{"config.json", "fitness_history.csv", "diagnostics.json", "species.csv", "top_molecules.json", "lineage.json", "best_molecule.json"} {
		if _, err := os.Stat(filepath.Join(exportedDir, file)); err != nil {
			t.Fatalf("expected exported file %s: %v", file, err)
		}
	}

	if err := WriteBenchmarkSummary(runDir, BenchmarkSummary{
		BenchmarkID:    runID,
		Objective:      "stability",
		PopulationSize: 4,
		MaxGenerations: 3,
		Trials:         2,
		BestMean:       0.6,
	}); err != nil {
		t.Fatalf("write benchmark summary: %v", err)
	}

	exportedWithBenchmark, err := ExportRun(baseDir, runID, outDir)
	if err != nil {
		t.Fatalf("export artifacts with benchmark summary: %v", err)
	}
	if _, err := os.Stat(filepath.Join(exportedWithBenchmark, "benchmark_summary.json")); err != nil {
		t.Fatalf("expected exported benchmark summary: %v", err)
	}
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	_, err := WriteRunArtifacts(t.TempDir(), RunArtifacts{})
	if err == nil {
		t.Fatal("expected missing run id error")
	}
}

func TestFitnessHistoryCSVRoundTrip(t *testing.T) {
	baseDir := t.TempDir()

	input := []model.GenerationStat{
		{Generation: 0, Best: 1.5, Average: 0.25},
		{Generation: 1, Best: 2, Average: 0.5},
		{Generation: 2, Best: 2, Average: 1.75},
	}
	if _, err := WriteRunArtifacts(baseDir, RunArtifacts{
		Config:  RunConfig{RunID: "run-1", Objective: "bond-count"},
		History: input,
	}); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	output, ok, err := ReadFitnessHistory(baseDir, "run-1")
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	if !ok {
		t.Fatal("expected fitness history")
	}
	if len(output) != len(input) {
		t.Fatalf("expected %d rows, got %d", len(input), len(output))
	}
	for i := range input {
		if output[i] != input[i] {
			t.Fatalf("row %d mismatch: got=%+v want=%+v", i, output[i], input[i])
		}
	}
}

func TestReadBestMoleculeAbsentWithoutBest(t *testing.T) {
	baseDir := t.TempDir()

	if _, err := WriteRunArtifacts(baseDir, RunArtifacts{
		Config: RunConfig{RunID: "run-1", Objective: "stability"},
	}); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	_, ok, err := ReadBestMolecule(baseDir, "run-1")
	if err != nil {
		t.Fatalf("read best molecule: %v", err)
	}
	if ok {
		t.Fatal("expected no best molecule for run without one")
	}
}

func TestRunIndexAppendListAndUpsert(t *testing.T) {
	baseDir := t.TempDir()

	err := AppendRunIndex(baseDir, RunIndexEntry{
		RunID:            "run-1",
		Objective:        "stability",
		PopulationSize:   8,
		Generations:      3,
		Seed:             1,
		FinalBestFitness: 0.80,
		BestFormula:      "CO",
		CreatedAtUTC:     "2026-08-24T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("append run-1: %v", err)
	}

	err = AppendRunIndex(baseDir, RunIndexEntry{
		RunID:            "run-2",
		Objective:        "stability",
		PopulationSize:   8,
		Generations:      3,
		Seed:             2,
		FinalBestFitness: 0.82,
		CreatedAtUTC:     "2026-08-24T11:00:00Z",
	})
	if err != nil {
		t.Fatalf("append run-2: %v", err)
	}

	entries, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].RunID != "run-2" || entries[1].RunID != "run-1" {
		t.Fatalf("unexpected order: %+v", entries)
	}

	err = AppendRunIndex(baseDir, RunIndexEntry{
		RunID:            "run-1",
		Objective:        "stability",
		PopulationSize:   8,
		Generations:      3,
		Seed:             1,
		FinalBestFitness: 0.91,
		BestFormula:      "C2O",
		CreatedAtUTC:     "2026-08-24T12:00:00Z",
	})
	if err != nil {
		t.Fatalf("upsert run-1: %v", err)
	}

	entries, err = ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list after upsert: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after upsert, got %d", len(entries))
	}
	if entries[0].RunID != "run-1" || entries[0].FinalBestFitness != 0.91 {
		t.Fatalf("expected upserted run-1 first: %+v", entries)
	}
}

func TestListRunIndexEmptyBaseDir(t *testing.T) {
	entries, err := ListRunIndex(t.TempDir())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty index, got %+v", entries)
	}
}

func TestWriteAndReadRunConfig(t *testing.T) {
	baseDir := t.TempDir()

	cfg := RunConfig{
		RunID:          "run-9",
		Objective:      "weight-target",
		TargetWeight:   120,
		PopulationSize: 10,
		MaxGenerations: 4,
		MutationRate:   0.4,
		MaxAtoms:       9,
		Seed:           7,
	}
	if err := WriteRunConfig(baseDir, "run-9", cfg); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, ok, err := ReadRunConfig(baseDir, "run-9")
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted config")
	}
	if loaded != cfg {
		t.Fatalf("config mismatch: got=%+v want=%+v", loaded, cfg)
	}

	if err := WriteRunConfig(baseDir, "run-9", RunConfig{RunID: "other"}); err == nil {
		t.Fatal("expected run id mismatch error")
	}
}

func TestReadDiagnosticsFromArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	diagnostics := []model.GenerationDiagnostics{
		{Generation: 0, BestFitness: 1, MeanFitness: 0.5, MinFitness: 0, SpeciesCount: 2, FingerprintDiversity: 3},
		{Generation: 1, BestFitness: 2, MeanFitness: 1.5, MinFitness: 1, SpeciesCount: 1, FingerprintDiversity: 2},
	}
	if _, err := WriteRunArtifacts(baseDir, RunArtifacts{
		Config:      RunConfig{RunID: "run-diag", Objective: "bond-count", PopulationSize: 2, MaxGenerations: 1},
		History:     []model.GenerationStat{{Generation: 0, Best: 1, Average: 0.5}},
		Diagnostics: diagnostics,
	}); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	got, ok, err := ReadDiagnostics(baseDir, "run-diag")
	if err != nil || !ok {
		t.Fatalf("read diagnostics: ok=%t err=%v", ok, err)
	}
	if len(got) != 2 || got[1] != diagnostics[1] {
		t.Fatalf("diagnostics mismatch: %+v", got)
	}

	if _, ok, err := ReadDiagnostics(baseDir, "missing-run"); err != nil || ok {
		t.Fatalf("expected absent diagnostics: ok=%t err=%v", ok, err)
	}
}

func TestReadSpeciesHistoryGroupsRowsByGeneration(t *testing.T) {
	baseDir := t.TempDir()
	speciesHistory := []model.SpeciesGeneration{
		{Generation: 0, Species: []model.SpeciesMetric{
			{Formula: "C2O", Members: 3, BestFitness: 2, MeanFitness: 1.5},
			{Formula: "CN", Members: 1, BestFitness: 1, MeanFitness: 1},
		}},
		{Generation: 1, Species: []model.SpeciesMetric{
			{Formula: "C2O", Members: 4, BestFitness: 2.5, MeanFitness: 2},
		}},
	}
	if _, err := WriteRunArtifacts(baseDir, RunArtifacts{
		Config:         RunConfig{RunID: "run-species", Objective: "stability", PopulationSize: 4, MaxGenerations: 1},
		History:        []model.GenerationStat{{Generation: 0, Best: 2, Average: 1}},
		SpeciesHistory: speciesHistory,
	}); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	got, ok, err := ReadSpeciesHistory(baseDir, "run-species")
	if err != nil || !ok {
		t.Fatalf("read species history: ok=%t err=%v", ok, err)
	}
	if len(got) != 2 {
		t.Fatalf("generation groups: got=%d want=2", len(got))
	}
	if got[0].Generation != 0 || len(got[0].Species) != 2 {
		t.Fatalf("generation 0 group: %+v", got[0])
	}
	if got[0].Species[1] != speciesHistory[0].Species[1] {
		t.Fatalf("species metric mismatch: %+v", got[0].Species[1])
	}
	if got[1].Generation != 1 || len(got[1].Species) != 1 {
		t.Fatalf("generation 1 group: %+v", got[1])
	}
}
