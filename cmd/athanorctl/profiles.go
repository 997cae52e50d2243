package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"athanor/pkg/athanor"
)

// runProfile is a reusable run preset loaded from a YAML file. Fields the
// profile leaves at zero keep whatever the request already holds.
type runProfile struct {
	Objective    string  `yaml:"objective"`
	TargetWeight float64 `yaml:"target_weight"`
	MinWeight    float64 `yaml:"min_weight"`
	MaxWeight    float64 `yaml:"max_weight"`
	Population   int     `yaml:"population"`
	Generations  int     `yaml:"generations"`
	MutationRate float64 `yaml:"mutation_rate"`
	Elitism      int     `yaml:"elitism"`
	MaxAtoms     int     `yaml:"max_atoms"`
	TopCount     int     `yaml:"top_count"`
}

func loadRunProfile(path string) (runProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return runProfile{}, fmt.Errorf("reading profile file: %w", err)
	}
	var profile runProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return runProfile{}, fmt.Errorf("parsing profile file: %w", err)
	}
	return profile, nil
}

func applyRunProfile(req *athanor.RunRequest, profile runProfile) {
	if profile.Objective != "" {
		req.Objective = profile.Objective
	}
	if profile.TargetWeight != 0 {
		req.TargetWeight = profile.TargetWeight
	}
	if profile.MinWeight != 0 {
		req.MinWeight = profile.MinWeight
	}
	if profile.MaxWeight != 0 {
		req.MaxWeight = profile.MaxWeight
	}
	if profile.Population != 0 {
		req.Population = profile.Population
	}
	if profile.Generations != 0 {
		req.Generations = profile.Generations
	}
	if profile.MutationRate != 0 {
		req.MutationRate = profile.MutationRate
	}
	if profile.Elitism != 0 {
		req.Elitism = profile.Elitism
	}
	if profile.MaxAtoms != 0 {
		req.MaxAtoms = profile.MaxAtoms
	}
	if profile.TopCount != 0 {
		req.TopCount = profile.TopCount
	}
}
