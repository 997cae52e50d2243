package objective

import (
	"math"

	"athanor/internal/model"
)

// Fitness scores are clamped to this closed range.
const (
	MinFitness = -1000.0
	MaxFitness = 1000.0
)

// Params carries the numeric goals used by the weight objectives. Other
// objectives ignore it.
type Params struct {
	TargetWeight float64 `json:"target_weight" yaml:"target_weight"`
	MinWeight    float64 `json:"min_weight" yaml:"min_weight"`
	MaxWeight    float64 `json:"max_weight" yaml:"max_weight"`
}

// Objective scores one molecule against one target property. Score must
// be pure: no randomness, no mutation of the molecule, same inputs same
// result.
type Objective interface {
	Name() string
	Description() string
	Score(m model.Molecule, params Params) float64
}

// Clamp bounds a raw score to [MinFitness, MaxFitness], coercing NaN to 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v > MaxFitness {
		return MaxFitness
	}
	if v < MinFitness {
		return MinFitness
	}
	return v
}

// Evaluate scores m against the named objective. Unknown names score 0;
// the result is always clamped.
func Evaluate(m model.Molecule, name string, params Params) float64 {
	obj, err := Get(name)
	if err != nil {
		return 0
	}
	return Clamp(obj.Score(m, params))
}
