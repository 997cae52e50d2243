package evo

import (
	"sort"

	"athanor/internal/genotype"
	"athanor/internal/model"
)

// AverageFitness returns the mean fitness of population, 0 when empty.
func AverageFitness(population []model.Molecule) float64 {
	if len(population) == 0 {
		return 0
	}
	total := 0.0
	for _, m := range population {
		total += m.Fitness
	}
	return total / float64(len(population))
}

// SummarizeGeneration condenses a ranked population into per-generation
// diagnostics. Species are molecular formulas; fingerprint diversity
// counts distinct structural fingerprints.
func SummarizeGeneration(ranked []model.Molecule, generation int) model.GenerationDiagnostics {
	if len(ranked) == 0 {
		return model.GenerationDiagnostics{Generation: generation}
	}

	total := 0.0
	minFitness := ranked[0].Fitness
	formulas := make(map[string]struct{}, len(ranked))
	fingerprints := make(map[string]struct{}, len(ranked))
	for _, m := range ranked {
		total += m.Fitness
		if m.Fitness < minFitness {
			minFitness = m.Fitness
		}
		formulas[speciesKey(m)] = struct{}{}
		fingerprints[ComputeMoleculeSignature(m).Fingerprint] = struct{}{}
	}

	return model.GenerationDiagnostics{
		Generation:           generation,
		BestFitness:          ranked[0].Fitness,
		MeanFitness:          total / float64(len(ranked)),
		MinFitness:           minFitness,
		SpeciesCount:         len(formulas),
		FingerprintDiversity: len(fingerprints),
	}
}

// SummarizeSpecies groups a population by molecular formula and reports
// which formulas appeared or vanished relative to prev. The returned set
// feeds the next generation's comparison.
func SummarizeSpecies(population []model.Molecule, generation int, prev map[string]struct{}) (model.SpeciesGeneration, map[string]struct{}) {
	type aggregate struct {
		members int
		sum     float64
		best    float64
	}
	byFormula := map[string]*aggregate{}
	currentSet := map[string]struct{}{}
	for _, m := range population {
		formula := speciesKey(m)
		currentSet[formula] = struct{}{}
		bucket := byFormula[formula]
		if bucket == nil {
			bucket = &aggregate{best: m.Fitness}
			byFormula[formula] = bucket
		}
		bucket.members++
		bucket.sum += m.Fitness
		if m.Fitness > bucket.best {
			bucket.best = m.Fitness
		}
	}

	formulas := make([]string, 0, len(byFormula))
	for formula := range byFormula {
		formulas = append(formulas, formula)
	}
	sort.Strings(formulas)

	metrics := make([]model.SpeciesMetric, 0, len(formulas))
	for _, formula := range formulas {
		bucket := byFormula[formula]
		metrics = append(metrics, model.SpeciesMetric{
			Formula:     formula,
			Members:     bucket.members,
			BestFitness: bucket.best,
			MeanFitness: bucket.sum / float64(bucket.members),
		})
	}

	appeared := make([]string, 0)
	for _, formula := range formulas {
		if _, ok := prev[formula]; !ok {
			appeared = append(appeared, formula)
		}
	}

	vanished := make([]string, 0)
	for formula := range prev {
		if _, ok := currentSet[formula]; !ok {
			vanished = append(vanished, formula)
		}
	}
	sort.Strings(vanished)

	return model.SpeciesGeneration{
		Generation: generation,
		Species:    metrics,
		Appeared:   appeared,
		Vanished:   vanished,
	}, currentSet
}

func speciesKey(m model.Molecule) string {
	formula := genotype.Formula(m)
	if formula == "" {
		return "empty"
	}
	return formula
}

// NewLineageRecord captures how a molecule came to be.
func NewLineageRecord(m model.Molecule, parentID string, generation int, operation string) model.LineageRecord {
	sig := ComputeMoleculeSignature(m)
	return model.LineageRecord{
		MoleculeID:  m.ID,
		ParentID:    parentID,
		Generation:  generation,
		Operation:   operation,
		Fingerprint: sig.Fingerprint,
		Formula:     sig.Summary.Formula,
	}
}
