package engine

import "athanor/internal/objective"

// Config holds the evolution parameters for a run.
type Config struct {
	PopulationSize int     `json:"population_size" yaml:"population_size"`
	MaxGenerations int     `json:"max_generations" yaml:"max_generations"`
	MutationRate   float64 `json:"mutation_rate" yaml:"mutation_rate"`
	ElitismCount   int     `json:"elitism_count" yaml:"elitism_count"`
	MaxAtoms       int     `json:"max_atoms" yaml:"max_atoms"`
}

// DefaultConfig returns the parameters used when the caller supplies none.
func DefaultConfig() Config {
	return Config{
		PopulationSize: 30,
		MaxGenerations: 50,
		MutationRate:   0.3,
		ElitismCount:   2,
		MaxAtoms:       12,
	}
}

// normalized clamps out-of-range parameters to safe values instead of
// rejecting them.
func (c Config) normalized() Config {
	if c.PopulationSize < 1 {
		c.PopulationSize = 1
	}
	if c.MaxGenerations < 0 {
		c.MaxGenerations = 0
	}
	if c.MutationRate < 0 {
		c.MutationRate = 0
	}
	if c.MutationRate > 1 {
		c.MutationRate = 1
	}
	if c.ElitismCount < 0 {
		c.ElitismCount = 0
	}
	if c.ElitismCount > c.PopulationSize {
		c.ElitismCount = c.PopulationSize
	}
	if c.MaxAtoms < 2 {
		c.MaxAtoms = 2
	}
	return c
}

// Target selects the fitness objective and its parameters.
type Target struct {
	Objective string           `json:"objective" yaml:"objective"`
	Params    objective.Params `json:"params" yaml:"params"`
}

func DefaultTarget() Target {
	return Target{
		Objective: "stability",
		Params: objective.Params{
			TargetWeight: 100,
			MinWeight:    50,
			MaxWeight:    150,
		},
	}
}
