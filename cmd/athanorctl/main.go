package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"athanor/internal/element"
	"athanor/internal/engine"
	"athanor/internal/genotype"
	"athanor/internal/stats"
	"athanor/internal/storage"
	"athanor/pkg/athanor"
)

const (
	runsDir    = "runs"
	exportsDir = "exports"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "seed-run":
		return runSeedRun(ctx, args[1:])
	case "benchmark":
		return runBenchmark(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "species":
		return runSpecies(ctx, args[1:])
	case "lineage":
		return runLineage(ctx, args[1:])
	case "top":
		return runTop(ctx, args[1:])
	case "best":
		return runBest(ctx, args[1:])
	case "objectives":
		return runObjectives(ctx, args[1:])
	case "elements":
		return runElements(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "athanor.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := athanor.New(athanor.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		RunsDir:    runsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	profilePath := fs.String("profile", "", "optional run profile YAML path (applied before explicit flags)")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	objectiveName := fs.String("objective", "stability", "objective name")
	targetWeight := fs.Float64("target-weight", 0, "target molecular weight for weight-target (0 uses default)")
	minWeight := fs.Float64("min-weight", 0, "lower weight bound for weight-range (0 uses default)")
	maxWeight := fs.Float64("max-weight", 0, "upper weight bound for weight-range (0 uses default)")
	population := fs.Int("pop", 30, "population size")
	generations := fs.Int("gens", 50, "generation count")
	mutationRate := fs.Float64("mutation-rate", 0.3, "per-offspring mutation probability")
	elitism := fs.Int("elitism", 2, "elite carryover count")
	maxAtoms := fs.Int("max-atoms", 12, "maximum atoms per molecule")
	seed := fs.Int64("seed", 1, "rng seed")
	topCount := fs.Int("top-count", 5, "top molecules to persist per run")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "athanor.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := buildRunRequest(*configPath, *profilePath, setFlags, map[string]any{
		"run-id":        *runID,
		"objective":     *objectiveName,
		"target-weight": *targetWeight,
		"min-weight":    *minWeight,
		"max-weight":    *maxWeight,
		"pop":           *population,
		"gens":          *generations,
		"mutation-rate": *mutationRate,
		"elitism":       *elitism,
		"max-atoms":     *maxAtoms,
		"seed":          *seed,
		"top-count":     *topCount,
	})
	if err != nil {
		return err
	}

	client, err := athanor.New(athanor.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		RunsDir:    runsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	printRunSummary(summary, req.Seed)
	return nil
}

func runSeedRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("seed-run", flag.ContinueOnError)
	moleculePath := fs.String("molecule", "", "seed molecule JSON path")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	objectiveName := fs.String("objective", "stability", "objective name")
	targetWeight := fs.Float64("target-weight", 0, "target molecular weight for weight-target (0 uses default)")
	minWeight := fs.Float64("min-weight", 0, "lower weight bound for weight-range (0 uses default)")
	maxWeight := fs.Float64("max-weight", 0, "upper weight bound for weight-range (0 uses default)")
	population := fs.Int("pop", 30, "population size")
	generations := fs.Int("gens", 50, "generation count")
	mutationRate := fs.Float64("mutation-rate", 0.3, "per-offspring mutation probability")
	elitism := fs.Int("elitism", 2, "elite carryover count")
	maxAtoms := fs.Int("max-atoms", 12, "maximum atoms per molecule")
	seed := fs.Int64("seed", 1, "rng seed")
	topCount := fs.Int("top-count", 5, "top molecules to persist per run")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "athanor.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *moleculePath == "" {
		return errors.New("seed-run requires --molecule")
	}

	seedMolecule, err := loadSeedMolecule(*moleculePath)
	if err != nil {
		return err
	}

	req := athanor.RunRequest{
		RunID:        *runID,
		Objective:    *objectiveName,
		TargetWeight: *targetWeight,
		MinWeight:    *minWeight,
		MaxWeight:    *maxWeight,
		Population:   *population,
		Generations:  *generations,
		MutationRate: *mutationRate,
		Elitism:      *elitism,
		MaxAtoms:     *maxAtoms,
		Seed:         *seed,
		TopCount:     *topCount,
		SeedMolecule: &seedMolecule,
	}

	client, err := athanor.New(athanor.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		RunsDir:    runsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("seed_molecule=%s seed_formula=%s\n", *moleculePath, genotype.Formula(seedMolecule))
	printRunSummary(summary, req.Seed)
	return nil
}

func printRunSummary(summary athanor.RunSummary, seed int64) {
	fmt.Printf("run completed run_id=%s objective=%s generations=%d seed=%d\n",
		summary.RunID, summary.Objective, summary.Generations, seed)
	for _, stat := range summary.History {
		fmt.Printf("generation=%d best_fitness=%.6f average_fitness=%.6f\n",
			stat.Generation, stat.Best, stat.Average)
	}
	fmt.Printf("final_best_fitness=%.6f\n", summary.FinalBestFitness)
	if summary.Best != nil {
		fmt.Printf("best_molecule_id=%s best_formula=%s\n",
			summary.Best.ID, genotype.Formula(*summary.Best))
	}
	fmt.Printf("artifacts_dir=%s\n", filepath.Clean(summary.ArtifactsDir))
}

func runBenchmark(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("benchmark", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	profilePath := fs.String("profile", "", "optional run profile YAML path (applied before explicit flags)")
	runID := fs.String("run-id", "", "run id prefix for the trials (optional)")
	objectiveName := fs.String("objective", "stability", "objective name")
	targetWeight := fs.Float64("target-weight", 0, "target molecular weight for weight-target (0 uses default)")
	minWeight := fs.Float64("min-weight", 0, "lower weight bound for weight-range (0 uses default)")
	maxWeight := fs.Float64("max-weight", 0, "upper weight bound for weight-range (0 uses default)")
	population := fs.Int("pop", 30, "population size")
	generations := fs.Int("gens", 50, "generation count")
	mutationRate := fs.Float64("mutation-rate", 0.3, "per-offspring mutation probability")
	elitism := fs.Int("elitism", 2, "elite carryover count")
	maxAtoms := fs.Int("max-atoms", 12, "maximum atoms per molecule")
	seed := fs.Int64("seed", 1, "base rng seed; trial i runs with seed+i")
	topCount := fs.Int("top-count", 5, "top molecules to persist per run")
	trials := fs.Int("trials", 3, "number of seeded trials")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "athanor.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *trials < 1 {
		return errors.New("trials must be >= 1")
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := buildRunRequest(*configPath, *profilePath, setFlags, map[string]any{
		"run-id":        *runID,
		"objective":     *objectiveName,
		"target-weight": *targetWeight,
		"min-weight":    *minWeight,
		"max-weight":    *maxWeight,
		"pop":           *population,
		"gens":          *generations,
		"mutation-rate": *mutationRate,
		"elitism":       *elitism,
		"max-atoms":     *maxAtoms,
		"seed":          *seed,
		"top-count":     *topCount,
	})
	if err != nil {
		return err
	}
	if req.Seed == 0 {
		req.Seed = 1
	}

	client, err := athanor.New(athanor.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		RunsDir:    runsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	var (
		trialRecords []stats.BenchmarkTrial
		benchID      string
		benchDir     string
		objective    string
	)
	for i := 0; i < *trials; i++ {
		trialReq := req
		trialReq.Seed = req.Seed + int64(i)
		if req.RunID != "" {
			trialReq.RunID = fmt.Sprintf("%s-t%d", req.RunID, i+1)
		}

		summary, err := client.Run(ctx, trialReq)
		if err != nil {
			return err
		}
		if i == 0 {
			benchID = summary.RunID
			benchDir = summary.ArtifactsDir
			objective = summary.Objective
		}
		trialRecords = append(trialRecords, stats.BenchmarkTrial{
			Trial:     i + 1,
			Seed:      trialReq.Seed,
			RunID:     summary.RunID,
			FinalBest: summary.FinalBestFitness,
		})
		fmt.Printf("trial=%d seed=%d run_id=%s final_best=%.6f\n",
			i+1, trialReq.Seed, summary.RunID, summary.FinalBestFitness)
	}

	defaults := engine.DefaultConfig()
	popSize := req.Population
	if popSize <= 0 {
		popSize = defaults.PopulationSize
	}
	maxGens := req.Generations
	if maxGens <= 0 {
		maxGens = defaults.MaxGenerations
	}

	report, err := stats.SummarizeBenchmark(benchID, objective, popSize, maxGens, trialRecords)
	if err != nil {
		return err
	}
	if err := stats.WriteBenchmarkSummary(benchDir, report); err != nil {
		return err
	}
	if err := stats.WriteBenchmarkTrials(benchDir, trialRecords); err != nil {
		return err
	}

	fmt.Printf("benchmark id=%s objective=%s trials=%d best_mean=%.6f best_std=%.6f best_min=%.6f best_max=%.6f\n",
		report.BenchmarkID,
		report.Objective,
		report.Trials,
		report.BestMean,
		report.BestStd,
		report.BestMin,
		report.BestMax,
	)
	fmt.Printf("benchmark_summary=%s\n", filepath.Join(benchDir, "benchmark_summary.json"))
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "athanor.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := athanor.New(athanor.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		RunsDir:    runsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Runs(ctx, athanor.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	for _, item := range items {
		age := "unknown"
		if created, err := time.Parse(time.RFC3339Nano, item.CreatedAtUTC); err == nil {
			age = humanize.Time(created)
		}
		fmt.Printf("run_id=%s created_at=%s age=%s objective=%s seed=%d pop=%d gens=%d final_best_fitness=%.6f best_formula=%s\n",
			item.RunID,
			item.CreatedAtUTC,
			age,
			item.Objective,
			item.Seed,
			item.Population,
			item.Generations,
			item.FinalBestFitness,
			item.BestFormula,
		)
	}
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show fitness history for the most recent run from run index")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit fitness history as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "athanor.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("history requires --run-id or --latest")
	}

	client, err := athanor.New(athanor.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		RunsDir:    runsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.FitnessHistory(ctx, athanor.FitnessHistoryRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("no fitness history")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}

	for _, stat := range history {
		fmt.Printf("generation=%d best_fitness=%.6f average_fitness=%.6f\n",
			stat.Generation, stat.Best, stat.Average)
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show diagnostics for the most recent run from run index")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit diagnostics as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "athanor.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("diagnostics requires --run-id or --latest")
	}

	client, err := athanor.New(athanor.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		RunsDir:    runsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	diagnostics, err := client.Diagnostics(ctx, athanor.DiagnosticsRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(diagnostics) == 0 {
		fmt.Println("no diagnostics")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(diagnostics)
	}

	for _, d := range diagnostics {
		fmt.Printf("generation=%d best=%.6f mean=%.6f min=%.6f species=%d fingerprints=%d\n",
			d.Generation,
			d.BestFitness,
			d.MeanFitness,
			d.MinFitness,
			d.SpeciesCount,
			d.FingerprintDiversity,
		)
	}
	return nil
}

func runSpecies(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("species", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show species history for the most recent run from run index")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit species history as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "athanor.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("species requires --run-id or --latest")
	}

	client, err := athanor.New(athanor.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		RunsDir:    runsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.SpeciesHistory(ctx, athanor.SpeciesHistoryRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("no species history")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}
	for _, generation := range history {
		fmt.Printf("generation=%d species=%d appeared=%d vanished=%d\n",
			generation.Generation,
			len(generation.Species),
			len(generation.Appeared),
			len(generation.Vanished),
		)
		for _, item := range generation.Species {
			fmt.Printf("formula=%s members=%d mean=%.6f best=%.6f\n",
				item.Formula, item.Members, item.MeanFitness, item.BestFitness)
		}
	}
	return nil
}

func runLineage(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("lineage", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show lineage for the most recent run from run index")
	limit := fs.Int("limit", 50, "max lineage rows to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit lineage rows as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "athanor.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("lineage requires --run-id or --latest")
	}

	client, err := athanor.New(athanor.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		RunsDir:    runsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	lineage, err := client.Lineage(ctx, athanor.LineageRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(lineage) == 0 {
		fmt.Println("no lineage records")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(lineage)
	}

	for _, rec := range lineage {
		fmt.Printf("gen=%d molecule_id=%s parent_id=%s op=%s fingerprint=%s formula=%s\n",
			rec.Generation,
			rec.MoleculeID,
			rec.ParentID,
			rec.Operation,
			rec.Fingerprint,
			rec.Formula,
		)
	}
	return nil
}

func runTop(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("top", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show top molecules for the most recent run from run index")
	limit := fs.Int("limit", 5, "max top molecules to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit top molecules as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "athanor.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("top requires --run-id or --latest")
	}

	client, err := athanor.New(athanor.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		RunsDir:    runsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	top, err := client.TopMolecules(ctx, athanor.TopMoleculesRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(top) == 0 {
		fmt.Println("no top molecules")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(top)
	}

	for _, item := range top {
		fmt.Printf("rank=%d fitness=%.6f molecule_id=%s formula=%s atoms=%d bonds=%d\n",
			item.Rank,
			item.Fitness,
			item.Molecule.ID,
			genotype.Formula(item.Molecule),
			len(item.Molecule.Atoms),
			len(item.Molecule.Bonds),
		)
	}
	return nil
}

func runBest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("best", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show the best molecule for the most recent run from run index")
	jsonOut := fs.Bool("json", false, "emit the best molecule as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "athanor.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("best requires --run-id or --latest")
	}

	client, err := athanor.New(athanor.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		RunsDir:    runsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	molecule, err := client.BestMolecule(ctx, *runID, *latest)
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(molecule)
	}

	fmt.Printf("molecule_id=%s formula=%s atoms=%d bonds=%d fitness=%.6f\n",
		molecule.ID,
		genotype.Formula(molecule),
		len(molecule.Atoms),
		len(molecule.Bonds),
		molecule.Fitness,
	)
	return nil
}

func runObjectives(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("objectives", flag.ContinueOnError)
	name := fs.String("name", "", "show the stored summary for one objective")
	jsonOut := fs.Bool("json", false, "emit objectives as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "athanor.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := athanor.New(athanor.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		RunsDir:    runsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if *name != "" {
		summary, err := client.ObjectiveSummary(ctx, *name)
		if err != nil {
			return err
		}
		if *jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		}
		fmt.Printf("objective=%s best_fitness=%.6f description=%s\n",
			summary.Name, summary.BestFitness, summary.Description)
		return nil
	}

	items, err := client.Objectives(ctx)
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}
	for _, item := range items {
		fmt.Printf("objective=%s best_fitness=%.6f description=%s\n",
			item.Name, item.BestFitness, item.Description)
	}
	return nil
}

func runElements(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("elements", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "emit the element catalog as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	symbols := element.Symbols()
	if *jsonOut {
		items := make([]element.Info, 0, len(symbols))
		for _, symbol := range symbols {
			if info, ok := element.Lookup(symbol); ok {
				items = append(items, info)
			}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	for _, symbol := range symbols {
		info, ok := element.Lookup(symbol)
		if !ok {
			continue
		}
		fmt.Printf("symbol=%s name=%s max_valence=%d atomic_mass=%s color=%s\n",
			info.Symbol,
			info.Name,
			info.MaxValence,
			humanize.Ftoa(info.AtomicMass),
			info.Color,
		)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run from run index")
	outDir := fs.String("out", exportsDir, "export output directory")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "athanor.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("export requires --run-id or --latest")
	}

	client, err := athanor.New(athanor.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		RunsDir:    runsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Export(ctx, athanor.ExportRequest{
		RunID:  *runID,
		Latest: *latest,
		OutDir: *outDir,
	})
	if err != nil {
		return err
	}

	fmt.Printf("exported run_id=%s to=%s size=%s\n",
		summary.RunID,
		summary.Directory,
		humanize.IBytes(uint64(dirSize(summary.Directory))),
	)
	return nil
}

func dirSize(root string) int64 {
	var total int64
	_ = filepath.Walk(root, func(_ string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		total += info.Size()
		return nil
	})
	return total
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: athanorctl <init|run|seed-run|benchmark|runs|history|diagnostics|species|lineage|top|best|objectives|elements|export> [flags]", msg)
}
