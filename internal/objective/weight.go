package objective

import (
	"math"

	"athanor/internal/genotype"
	"athanor/internal/model"
)

type weightTarget struct{}

func (weightTarget) Name() string { return "weight-target" }
func (weightTarget) Description() string {
	return "Hit an exact molecular weight; an exact match scores 100."
}

func (weightTarget) Score(m model.Molecule, params Params) float64 {
	w := genotype.Weight(m)
	return 100 * (1 / (1 + math.Abs(w-params.TargetWeight)))
}

type weightRange struct{}

func (weightRange) Name() string { return "weight-range" }
func (weightRange) Description() string {
	return "Land inside a molecular weight window; outside scores drop with distance."
}

func (weightRange) Score(m model.Molecule, params Params) float64 {
	w := genotype.Weight(m)
	if w >= params.MinWeight && w <= params.MaxWeight {
		return 100
	}
	distance := params.MinWeight - w
	if w > params.MaxWeight {
		distance = w - params.MaxWeight
	}
	score := 100 - distance
	if score < 0 {
		return 0
	}
	return score
}
