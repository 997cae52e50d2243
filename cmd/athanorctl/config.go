package main

import (
	"encoding/json"
	"fmt"
	"os"

	"athanor/internal/model"
	"athanor/pkg/athanor"
)

// buildRunRequest assembles the run request for the run and benchmark
// commands. With neither a config nor a profile the flag values are taken
// wholesale; otherwise the loaded request is used and only explicitly set
// flags override it.
func buildRunRequest(configPath, profilePath string, setFlags map[string]bool, flagValue map[string]any) (athanor.RunRequest, error) {
	var req athanor.RunRequest
	if configPath != "" {
		loaded, err := loadRunRequestFromConfig(configPath)
		if err != nil {
			return athanor.RunRequest{}, fmt.Errorf("load config: %w", err)
		}
		req = loaded
	}
	if profilePath != "" {
		profile, err := loadRunProfile(profilePath)
		if err != nil {
			return athanor.RunRequest{}, err
		}
		applyRunProfile(&req, profile)
	}

	if configPath == "" && profilePath == "" {
		return athanor.RunRequest{
			RunID:        flagValue["run-id"].(string),
			Objective:    flagValue["objective"].(string),
			TargetWeight: flagValue["target-weight"].(float64),
			MinWeight:    flagValue["min-weight"].(float64),
			MaxWeight:    flagValue["max-weight"].(float64),
			Population:   flagValue["pop"].(int),
			Generations:  flagValue["gens"].(int),
			MutationRate: flagValue["mutation-rate"].(float64),
			Elitism:      flagValue["elitism"].(int),
			MaxAtoms:     flagValue["max-atoms"].(int),
			Seed:         flagValue["seed"].(int64),
			TopCount:     flagValue["top-count"].(int),
		}, nil
	}

	overrideFromFlags(&req, setFlags, flagValue)
	return req, nil
}

func loadRunRequestFromConfig(path string) (athanor.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return athanor.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return athanor.RunRequest{}, err
	}

	var req athanor.RunRequest
	if v, ok := asString(raw["run_id"]); ok {
		req.RunID = v
	}
	if v, ok := asString(raw["objective"]); ok {
		req.Objective = v
	}
	if v, ok := asFloat64(raw["target_weight"]); ok {
		req.TargetWeight = v
	}
	if v, ok := asFloat64(raw["min_weight"]); ok {
		req.MinWeight = v
	}
	if v, ok := asFloat64(raw["max_weight"]); ok {
		req.MaxWeight = v
	}
	if v, ok := asInt(raw["population"]); ok {
		req.Population = v
	}
	if v, ok := asInt(raw["generations"]); ok {
		req.Generations = v
	}
	if v, ok := asFloat64(raw["mutation_rate"]); ok {
		req.MutationRate = v
	}
	if v, ok := asInt(raw["elitism"]); ok {
		req.Elitism = v
	}
	if v, ok := asInt(raw["max_atoms"]); ok {
		req.MaxAtoms = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["top_count"]); ok {
		req.TopCount = v
	}
	return req, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func overrideFromFlags(req *athanor.RunRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "run-id":
			req.RunID = v.(string)
		case "objective":
			req.Objective = v.(string)
		case "target-weight":
			req.TargetWeight = v.(float64)
		case "min-weight":
			req.MinWeight = v.(float64)
		case "max-weight":
			req.MaxWeight = v.(float64)
		case "pop":
			req.Population = v.(int)
		case "gens":
			req.Generations = v.(int)
		case "mutation-rate":
			req.MutationRate = v.(float64)
		case "elitism":
			req.Elitism = v.(int)
		case "max-atoms":
			req.MaxAtoms = v.(int)
		case "seed":
			req.Seed = v.(int64)
		case "top-count":
			req.TopCount = v.(int)
		}
	}
}

func loadSeedMolecule(path string) (model.Molecule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Molecule{}, fmt.Errorf("load molecule: %w", err)
	}
	var molecule model.Molecule
	if err := json.Unmarshal(data, &molecule); err != nil {
		return model.Molecule{}, fmt.Errorf("load molecule: %w", err)
	}
	return molecule, nil
}
