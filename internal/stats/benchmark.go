package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// BenchmarkTrial is the outcome of one seeded run inside a benchmark.
type BenchmarkTrial struct {
	Trial     int     `json:"trial"`
	Seed      int64   `json:"seed"`
	RunID     string  `json:"run_id,omitempty"`
	FinalBest float64 `json:"final_best"`
}

type BenchmarkSummary struct {
	BenchmarkID    string           `json:"benchmark_id"`
	Objective      string           `json:"objective"`
	PopulationSize int              `json:"population_size"`
	MaxGenerations int              `json:"max_generations"`
	Trials         int              `json:"trials"`
	BestMean       float64          `json:"best_mean"`
	BestStd        float64          `json:"best_std"`
	BestMin        float64          `json:"best_min"`
	BestMax        float64          `json:"best_max"`
	Runs           []BenchmarkTrial `json:"runs"`
}

// SummarizeBenchmark aggregates per-trial final best fitness into
// mean, population standard deviation, min and max.
func SummarizeBenchmark(id, objective string, populationSize, maxGenerations int, trials []BenchmarkTrial) (BenchmarkSummary, error) {
	if len(trials) == 0 {
		return BenchmarkSummary{}, fmt.Errorf("at least one benchmark trial is required")
	}

	finals := make([]float64, 0, len(trials))
	for _, trial := range trials {
		finals = append(finals, trial.FinalBest)
	}
	mean, err := Mean(finals)
	if err != nil {
		return BenchmarkSummary{}, err
	}
	std, err := Std(finals)
	if err != nil {
		return BenchmarkSummary{}, err
	}

	summary := BenchmarkSummary{
		BenchmarkID:    id,
		Objective:      objective,
		PopulationSize: populationSize,
		MaxGenerations: maxGenerations,
		Trials:         len(trials),
		BestMean:       mean,
		BestStd:        std,
		BestMin:        finals[0],
		BestMax:        finals[0],
		Runs:           append([]BenchmarkTrial(nil), trials...),
	}
	for _, value := range finals[1:] {
		if value < summary.BestMin {
			summary.BestMin = value
		}
		if value > summary.BestMax {
			summary.BestMax = value
		}
	}
	return summary, nil
}

func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("values must not be empty")
	}
	sum := 0.0
	for _, value := range values {
		sum += value
	}
	return sum / float64(len(values)), nil
}

// Std returns population standard deviation.
func Std(values []float64) (float64, error) {
	mean, err := Mean(values)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, value := range values {
		diff := mean - value
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values))), nil
}

func WriteBenchmarkSummary(runDir string, summary BenchmarkSummary) error {
	return writeJSON(filepath.Join(runDir, "benchmark_summary.json"), summary)
}

func ReadBenchmarkSummary(baseDir, id string) (BenchmarkSummary, bool, error) {
	path := filepath.Join(baseDir, id, "benchmark_summary.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return BenchmarkSummary{}, false, nil
		}
		return BenchmarkSummary{}, false, err
	}
	var summary BenchmarkSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return BenchmarkSummary{}, false, err
	}
	return summary, true, nil
}

func WriteBenchmarkTrials(runDir string, trials []BenchmarkTrial) error {
	path := filepath.Join(runDir, "benchmark_trials.csv")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"trial", "seed", "final_best"}); err != nil {
		return err
	}
	for _, trial := range trials {
		if err := writer.Write([]string{
			strconv.Itoa(trial.Trial),
			strconv.FormatInt(trial.Seed, 10),
			strconv.FormatFloat(trial.FinalBest, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ReadBenchmarkTrials(baseDir, id string) ([]BenchmarkTrial, bool, error) {
	path := filepath.Join(baseDir, id, "benchmark_trials.csv")
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
			return []BenchmarkTrial{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 3 {
		return nil, false, fmt.Errorf("benchmark trials header must have at least 3 columns")
	}

	trials := make([]BenchmarkTrial, 0, 16)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 3 {
			return nil, false, fmt.Errorf("benchmark trials row must have at least 3 columns")
		}
		trial, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, false, err
		}
		seed, err := strconv.ParseInt(record[1], 10, 64)
		if err != nil {
			return nil, false, err
		}
		final, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, false, err
		}
		trials = append(trials, BenchmarkTrial{Trial: trial, Seed: seed, FinalBest: final})
	}
	return trials, true, nil
}
