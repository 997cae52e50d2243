package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"athanor/internal/model"
)

const runIndexFile = "run_index.json"

// RunConfig is the frozen copy of the parameters a run started with,
// written beside its results so a run directory is self-describing.
type RunConfig struct {
	RunID          string  `json:"run_id"`
	Objective      string  `json:"objective"`
	TargetWeight   float64 `json:"target_weight,omitempty"`
	MinWeight      float64 `json:"min_weight,omitempty"`
	MaxWeight      float64 `json:"max_weight,omitempty"`
	PopulationSize int     `json:"population_size"`
	MaxGenerations int     `json:"max_generations"`
	MutationRate   float64 `json:"mutation_rate"`
	ElitismCount   int     `json:"elitism_count"`
	MaxAtoms       int     `json:"max_atoms"`
	Seed           int64   `json:"seed"`
}

type RunArtifacts struct {
	Config           RunConfig                     `json:"config"`
	History          []model.GenerationStat        `json:"history"`
	Diagnostics      []model.GenerationDiagnostics `json:"diagnostics,omitempty"`
	SpeciesHistory   []model.SpeciesGeneration     `json:"species_history,omitempty"`
	Best             *model.Molecule               `json:"best,omitempty"`
	TopMolecules     []model.TopMoleculeRecord     `json:"top_molecules,omitempty"`
	Lineage          []model.LineageRecord         `json:"lineage,omitempty"`
	FinalBestFitness float64                       `json:"final_best_fitness"`
}

type RunIndexEntry struct {
	RunID            string  `json:"run_id"`
	Objective        string  `json:"objective"`
	PopulationSize   int     `json:"population_size"`
	Generations      int     `json:"generations"`
	Seed             int64   `json:"seed"`
	FinalBestFitness float64 `json:"final_best_fitness"`
	BestFormula      string  `json:"best_formula,omitempty"`
	CreatedAtUTC     string  `json:"created_at_utc"`
}

// WriteRunArtifacts lays down a run directory under baseDir named after the
// run ID and returns its path. The directory holds config.json,
// fitness_history.csv, diagnostics.json, species.csv, lineage.json,
// top_molecules.json, and best_molecule.json when a best exists.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeFitnessHistoryCSV(filepath.Join(runDir, "fitness_history.csv"), artifacts.History); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "diagnostics.json"), artifacts.Diagnostics); err != nil {
		return "", err
	}
	if err := writeSpeciesCSV(filepath.Join(runDir, "species.csv"), artifacts.SpeciesHistory); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "top_molecules.json"), artifacts.TopMolecules); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "lineage.json"), artifacts.Lineage); err != nil {
		return "", err
	}
	if artifacts.Best != nil {
		if err := writeJSON(filepath.Join(runDir, "best_molecule.json"), artifacts.Best); err != nil {
			return "", err
		}
	}

	return runDir, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// ExportRun copies a run directory into outDir/runID. Core artifacts are
// required; benchmark outputs are copied only when present.
func ExportRun(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	required := []string{"config.json", "fitness_history.csv", "diagnostics.json", "species.csv", "top_molecules.json", "lineage.json"}
	for _, file := range required {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	optional := []string{"best_molecule.json", "benchmark_summary.json", "benchmark_trials.csv"}
	for _, file := range optional {
		srcPath := filepath.Join(src, file)
		if _, err := os.Stat(srcPath); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", err
		}
		if err := copyFile(srcPath, filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}

	return dst, nil
}

func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	path := filepath.Join(baseDir, runID, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return RunConfig{}, false, nil
		}
		return RunConfig{}, false, err
	}

	var cfg RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, false, err
	}
	return cfg, true, nil
}

func WriteRunConfig(baseDir, runID string, cfg RunConfig) error {
	if strings.TrimSpace(runID) == "" {
		return fmt.Errorf("run id is required")
	}
	if strings.TrimSpace(cfg.RunID) == "" {
		cfg.RunID = strings.TrimSpace(runID)
	}
	if cfg.RunID != strings.TrimSpace(runID) {
		return fmt.Errorf("run config run id mismatch: got=%s want=%s", cfg.RunID, strings.TrimSpace(runID))
	}
	runDir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}
	return writeJSON(filepath.Join(runDir, "config.json"), cfg)
}

func ReadFitnessHistory(baseDir, runID string) ([]model.GenerationStat, bool, error) {
	path := filepath.Join(baseDir, runID, "fitness_history.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []model.GenerationStat{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 3 {
		return nil, false, fmt.Errorf("fitness history header must have at least 3 columns")
	}

	history := make([]model.GenerationStat, 0, 128)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 3 {
			return nil, false, fmt.Errorf("fitness history row must have at least 3 columns")
		}
		generation, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, false, err
		}
		best, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, false, err
		}
		average, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, false, err
		}
		history = append(history, model.GenerationStat{Generation: generation, Best: best, Average: average})
	}
	return history, true, nil
}

func ReadDiagnostics(baseDir, runID string) ([]model.GenerationDiagnostics, bool, error) {
	path := filepath.Join(baseDir, runID, "diagnostics.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var diagnostics []model.GenerationDiagnostics
	if err := json.Unmarshal(data, &diagnostics); err != nil {
		return nil, false, err
	}
	return diagnostics, true, nil
}

// ReadSpeciesHistory rebuilds per-generation species metrics from the
// species CSV. Appeared/vanished formula lists are not part of the CSV
// and come back empty.
func ReadSpeciesHistory(baseDir, runID string) ([]model.SpeciesGeneration, bool, error) {
	path := filepath.Join(baseDir, runID, "species.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []model.SpeciesGeneration{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 5 {
		return nil, false, fmt.Errorf("species history header must have at least 5 columns")
	}

	history := make([]model.SpeciesGeneration, 0, 64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 5 {
			return nil, false, fmt.Errorf("species history row must have at least 5 columns")
		}
		generation, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, false, err
		}
		members, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, false, err
		}
		best, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, false, err
		}
		mean, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			return nil, false, err
		}
		metric := model.SpeciesMetric{Formula: record[1], Members: members, BestFitness: best, MeanFitness: mean}
		if n := len(history); n > 0 && history[n-1].Generation == generation {
			history[n-1].Species = append(history[n-1].Species, metric)
			continue
		}
		history = append(history, model.SpeciesGeneration{
			Generation: generation,
			Species:    []model.SpeciesMetric{metric},
		})
	}
	return history, true, nil
}

func ReadBestMolecule(baseDir, runID string) (model.Molecule, bool, error) {
	path := filepath.Join(baseDir, runID, "best_molecule.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Molecule{}, false, nil
		}
		return model.Molecule{}, false, err
	}

	var molecule model.Molecule
	if err := json.Unmarshal(data, &molecule); err != nil {
		return model.Molecule{}, false, err
	}
	return molecule, true, nil
}

func ReadTopMolecules(baseDir, runID string) ([]model.TopMoleculeRecord, bool, error) {
	path := filepath.Join(baseDir, runID, "top_molecules.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var top []model.TopMoleculeRecord
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, false, err
	}
	return top, true, nil
}

func ReadLineage(baseDir, runID string) ([]model.LineageRecord, bool, error) {
	path := filepath.Join(baseDir, runID, "lineage.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var lineage []model.LineageRecord
	if err := json.Unmarshal(data, &lineage); err != nil {
		return nil, false, err
	}
	return lineage, true, nil
}

func writeFitnessHistoryCSV(path string, history []model.GenerationStat) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"generation", "best", "average"}); err != nil {
		return err
	}
	for _, stat := range history {
		if err := writer.Write([]string{
			strconv.Itoa(stat.Generation),
			strconv.FormatFloat(stat.Best, 'f', -1, 64),
			strconv.FormatFloat(stat.Average, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeSpeciesCSV(path string, history []model.SpeciesGeneration) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"generation", "formula", "members", "best_fitness", "mean_fitness"}); err != nil {
		return err
	}
	for _, generation := range history {
		for _, species := range generation.Species {
			if err := writer.Write([]string{
				strconv.Itoa(generation.Generation),
				species.Formula,
				strconv.Itoa(species.Members),
				strconv.FormatFloat(species.BestFitness, 'f', -1, 64),
				strconv.FormatFloat(species.MeanFitness, 'f', -1, 64),
			}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
