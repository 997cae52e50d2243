//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"athanor/internal/model"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "athanor.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	molecule := model.Molecule{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "m1",
		Atoms: []model.Atom{
			{ID: "a1", Element: "C"},
			{ID: "a2", Element: "O"},
		},
		Bonds: []model.Bond{
			{ID: "b1", A: "a1", B: "a2"},
		},
		Fitness: 2.5,
	}
	if err := store.SaveMolecule(ctx, molecule); err != nil {
		t.Fatalf("save molecule: %v", err)
	}

	loadedMolecule, ok, err := store.GetMolecule(ctx, molecule.ID)
	if err != nil {
		t.Fatalf("get molecule: %v", err)
	}
	if !ok {
		t.Fatalf("expected molecule %s", molecule.ID)
	}
	if loadedMolecule.ID != molecule.ID || len(loadedMolecule.Atoms) != len(molecule.Atoms) {
		t.Fatalf("unexpected molecule loaded: %+v", loadedMolecule)
	}

	run := model.RunRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "run-1",
		Objective:       "stability",
		PopulationSize:  30,
		MaxGenerations:  50,
		Status:          "completed",
		CreatedAtUTC:    "2026-08-25T10:00:00Z",
	}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	loadedRun, ok, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatalf("expected run %s", run.ID)
	}
	if loadedRun.Objective != run.Objective || loadedRun.Status != run.Status {
		t.Fatalf("unexpected run loaded: %+v", loadedRun)
	}

	summary := model.ObjectiveSummary{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		Name:            "stability",
		Description:     "valence saturation score",
		BestFitness:     9.5,
	}
	if err := store.SaveObjectiveSummary(ctx, summary); err != nil {
		t.Fatalf("save objective summary: %v", err)
	}
	loadedSummary, ok, err := store.GetObjectiveSummary(ctx, "stability")
	if err != nil {
		t.Fatalf("get objective summary: %v", err)
	}
	if !ok {
		t.Fatal("expected objective summary stability")
	}
	if loadedSummary.BestFitness != summary.BestFitness {
		t.Fatalf("unexpected objective summary loaded: %+v", loadedSummary)
	}

	history := []model.GenerationStat{
		{Generation: 0, Best: 0.5, Average: 0.25},
		{Generation: 1, Best: 0.7, Average: 0.4},
	}
	if err := store.SaveFitnessHistory(ctx, "run-1", history); err != nil {
		t.Fatalf("save history: %v", err)
	}
	loadedHistory, ok, err := store.GetFitnessHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if !ok {
		t.Fatal("expected fitness history run-1")
	}
	if len(loadedHistory) != len(history) || loadedHistory[1] != history[1] {
		t.Fatalf("unexpected history loaded: %+v", loadedHistory)
	}

	diagnostics := []model.GenerationDiagnostics{
		{Generation: 1, BestFitness: 0.7, MeanFitness: 0.5, MinFitness: 0.1, SpeciesCount: 2, FingerprintDiversity: 2},
	}
	if err := store.SaveGenerationDiagnostics(ctx, "run-1", diagnostics); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}
	loadedDiagnostics, ok, err := store.GetGenerationDiagnostics(ctx, "run-1")
	if err != nil {
		t.Fatalf("get diagnostics: %v", err)
	}
	if !ok {
		t.Fatal("expected diagnostics run-1")
	}
	if len(loadedDiagnostics) != 1 || loadedDiagnostics[0].Generation != 1 {
		t.Fatalf("unexpected diagnostics loaded: %+v", loadedDiagnostics)
	}

	speciesHistory := []model.SpeciesGeneration{
		{
			Generation: 1,
			Species:    []model.SpeciesMetric{{Formula: "CO", Members: 2, BestFitness: 0.7, MeanFitness: 0.5}},
			Appeared:   []string{"CO"},
			Vanished:   []string{},
		},
	}
	if err := store.SaveSpeciesHistory(ctx, "run-1", speciesHistory); err != nil {
		t.Fatalf("save species history: %v", err)
	}
	loadedSpeciesHistory, ok, err := store.GetSpeciesHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get species history: %v", err)
	}
	if !ok {
		t.Fatal("expected species history run-1")
	}
	if len(loadedSpeciesHistory) != 1 || loadedSpeciesHistory[0].Generation != 1 {
		t.Fatalf("unexpected species history loaded: %+v", loadedSpeciesHistory)
	}

	top := []model.TopMoleculeRecord{
		{Rank: 1, Fitness: 0.9, Molecule: model.Molecule{ID: "m1"}},
	}
	if err := store.SaveTopMolecules(ctx, "run-1", top); err != nil {
		t.Fatalf("save top molecules: %v", err)
	}
	loadedTop, ok, err := store.GetTopMolecules(ctx, "run-1")
	if err != nil {
		t.Fatalf("get top molecules: %v", err)
	}
	if !ok {
		t.Fatal("expected top molecules run-1")
	}
	if len(loadedTop) != 1 || loadedTop[0].Rank != 1 {
		t.Fatalf("unexpected top molecules loaded: %+v", loadedTop)
	}

	lineage := []model.LineageRecord{
		{
			MoleculeID:  "m1",
			ParentID:    "",
			Generation:  0,
			Operation:   "seed",
			Fingerprint: "abc",
			Formula:     "CO",
		},
	}
	if err := store.SaveLineage(ctx, "run-1", lineage); err != nil {
		t.Fatalf("save lineage: %v", err)
	}
	loadedLineage, ok, err := store.GetLineage(ctx, "run-1")
	if err != nil {
		t.Fatalf("get lineage: %v", err)
	}
	if !ok {
		t.Fatal("expected lineage run-1")
	}
	if len(loadedLineage) != 1 || loadedLineage[0].MoleculeID != "m1" {
		t.Fatalf("unexpected lineage loaded: %+v", loadedLineage)
	}
}

func TestSQLiteStoreListRunsOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "athanor.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	runs := []model.RunRecord{
		{VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}, ID: "run-a", CreatedAtUTC: "2026-08-24T09:00:00Z"},
		{VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}, ID: "run-b", CreatedAtUTC: "2026-08-25T09:00:00Z"},
	}
	for _, run := range runs {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run %s: %v", run.ID, err)
		}
	}

	listed, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != "run-b" || listed[1].ID != "run-a" {
		t.Fatalf("unexpected run order: %+v", listed)
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "athanor.db")

	first := NewSQLiteStore(dbPath)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("first init: %v", err)
	}
	molecule := model.Molecule{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "persisted-molecule",
	}
	if err := first.SaveMolecule(ctx, molecule); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}

	second := NewSQLiteStore(dbPath)
	if err := second.Init(ctx); err != nil {
		t.Fatalf("second init: %v", err)
	}
	t.Cleanup(func() {
		_ = second.Close()
	})

	loaded, ok, err := second.GetMolecule(ctx, molecule.ID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if !ok || loaded.ID != molecule.ID {
		t.Fatalf("expected persisted molecule, got ok=%t value=%+v", ok, loaded)
	}
}
