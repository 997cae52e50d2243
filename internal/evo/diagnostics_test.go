package evo

import (
	"testing"

	"athanor/internal/model"
)

func withFitness(m model.Molecule, fitness float64) model.Molecule {
	m.Fitness = fitness
	return m
}

func TestAverageFitness(t *testing.T) {
	if got := AverageFitness(nil); got != 0 {
		t.Fatalf("empty population average: got=%f want=0", got)
	}

	population := []model.Molecule{
		withFitness(buildMolecule("m1", []string{"C"}, nil), 2),
		withFitness(buildMolecule("m2", []string{"C"}, nil), 4),
		withFitness(buildMolecule("m3", []string{"C"}, nil), 6),
	}
	if got := AverageFitness(population); got != 4 {
		t.Fatalf("average: got=%f want=4", got)
	}
}

func TestSummarizeGeneration(t *testing.T) {
	ranked := []model.Molecule{
		withFitness(buildMolecule("m1", []string{"C", "O"}, [][2]int{{0, 1}}), 9),
		withFitness(buildMolecule("m2", []string{"C", "O"}, [][2]int{{0, 1}}), 5),
		withFitness(buildMolecule("m3", []string{"N"}, nil), 1),
	}

	diag := SummarizeGeneration(ranked, 3)

	if diag.Generation != 3 {
		t.Fatalf("generation: got=%d want=3", diag.Generation)
	}
	if diag.BestFitness != 9 || diag.MinFitness != 1 {
		t.Fatalf("fitness spread: best=%f min=%f", diag.BestFitness, diag.MinFitness)
	}
	if diag.MeanFitness != 5 {
		t.Fatalf("mean fitness: got=%f want=5", diag.MeanFitness)
	}
	if diag.SpeciesCount != 2 {
		t.Fatalf("species count: got=%d want=2", diag.SpeciesCount)
	}
	if diag.FingerprintDiversity != 2 {
		t.Fatalf("fingerprint diversity: got=%d want=2", diag.FingerprintDiversity)
	}
}

func TestSummarizeGenerationEmptyPopulation(t *testing.T) {
	diag := SummarizeGeneration(nil, 7)
	if diag.Generation != 7 {
		t.Fatalf("generation: got=%d want=7", diag.Generation)
	}
	if diag.BestFitness != 0 || diag.MeanFitness != 0 || diag.SpeciesCount != 0 {
		t.Fatalf("empty population diagnostics not zeroed: %+v", diag)
	}
}

func TestSummarizeSpeciesTracksAppearedAndVanished(t *testing.T) {
	gen1 := []model.Molecule{
		withFitness(buildMolecule("m1", []string{"C", "O"}, [][2]int{{0, 1}}), 5),
		withFitness(buildMolecule("m2", []string{"C", "O"}, [][2]int{{0, 1}}), 3),
		withFitness(buildMolecule("m3", []string{"N"}, nil), 1),
	}

	record, set := SummarizeSpecies(gen1, 1, map[string]struct{}{})

	if len(record.Species) != 2 {
		t.Fatalf("species metrics: got=%d want=2", len(record.Species))
	}
	co := record.Species[0]
	if co.Formula != "CO" || co.Members != 2 || co.BestFitness != 5 || co.MeanFitness != 4 {
		t.Fatalf("CO species metrics: %+v", co)
	}
	if got := record.Species[1].Formula; got != "N" {
		t.Fatalf("second species: got=%s want=N", got)
	}
	if len(record.Appeared) != 2 || record.Appeared[0] != "CO" || record.Appeared[1] != "N" {
		t.Fatalf("appeared: %v", record.Appeared)
	}
	if len(record.Vanished) != 0 {
		t.Fatalf("vanished on first generation: %v", record.Vanished)
	}

	gen2 := []model.Molecule{
		withFitness(buildMolecule("m4", []string{"C", "O"}, [][2]int{{0, 1}}), 6),
	}

	record2, _ := SummarizeSpecies(gen2, 2, set)

	if len(record2.Appeared) != 0 {
		t.Fatalf("appeared in generation 2: %v", record2.Appeared)
	}
	if len(record2.Vanished) != 1 || record2.Vanished[0] != "N" {
		t.Fatalf("vanished in generation 2: %v", record2.Vanished)
	}
}

func TestNewLineageRecord(t *testing.T) {
	m := buildMolecule("child", []string{"C", "O"}, [][2]int{{0, 1}})

	rec := NewLineageRecord(m, "parent-1", 4, "add_bond")

	if rec.MoleculeID != "child" || rec.ParentID != "parent-1" {
		t.Fatalf("lineage identity: %+v", rec)
	}
	if rec.Generation != 4 || rec.Operation != "add_bond" {
		t.Fatalf("lineage metadata: %+v", rec)
	}
	if rec.Fingerprint == "" {
		t.Fatal("fingerprint must be set")
	}
	if rec.Formula != "CO" {
		t.Fatalf("formula: got=%s want=CO", rec.Formula)
	}
}
