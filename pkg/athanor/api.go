// Package athanor is the embedding facade: one-shot evolution runs with
// persisted results and artifacts, queries over past runs, and
// construction of live engines for interactive frontends.
package athanor

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"athanor/internal/engine"
	"athanor/internal/evo"
	"athanor/internal/genotype"
	"athanor/internal/model"
	"athanor/internal/objective"
	"athanor/internal/stats"
	"athanor/internal/storage"
)

const (
	defaultRunsDir    = "runs"
	defaultExportsDir = "exports"
	defaultDBPath     = "athanor.db"

	defaultTopCount = 5
)

type Options struct {
	StoreKind  string
	DBPath     string
	RunsDir    string
	ExportsDir string
}

// Client owns a store plus the runs and exports directories. It is not
// safe for concurrent use.
type Client struct {
	store storage.Store

	runsDir    string
	exportsDir string

	initialized bool
}

type RunRequest struct {
	RunID        string
	Objective    string
	TargetWeight float64
	MinWeight    float64
	MaxWeight    float64
	Population   int
	Generations  int
	MutationRate float64
	Elitism      int
	MaxAtoms     int
	Seed         int64
	TopCount     int

	// SeedMolecule starts the run from one template molecule instead of
	// a random population.
	SeedMolecule *model.Molecule
}

type RunSummary struct {
	RunID            string
	ArtifactsDir     string
	Objective        string
	Generations      int
	History          []model.GenerationStat
	Diagnostics      []model.GenerationDiagnostics
	Best             *model.Molecule
	FinalBestFitness float64
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID            string
	CreatedAtUTC     string
	Objective        string
	Seed             int64
	Population       int
	Generations      int
	FinalBestFitness float64
	BestFormula      string
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type FitnessHistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type DiagnosticsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type SpeciesHistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type TopMoleculesRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type LineageRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type ObjectiveItem struct {
	Name        string
	Description string
	BestFitness float64
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	runsDir := opts.RunsDir
	if runsDir == "" {
		runsDir = defaultRunsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		runsDir:    runsDir,
		exportsDir: exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.ensureInit(ctx)
}

// Run executes one evolution to completion, persists its records, writes
// the run artifact directory and appends the run index entry.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	defaults := engine.DefaultConfig()
	target := engine.DefaultTarget()

	if req.Objective == "" {
		req.Objective = target.Objective
	}
	obj, err := objective.Get(req.Objective)
	if err != nil {
		return RunSummary{}, err
	}
	if req.Population < 0 || req.Generations < 0 || req.Elitism < 0 || req.MaxAtoms < 0 {
		return RunSummary{}, errors.New("run parameters must be >= 0")
	}
	if req.MutationRate < 0 || req.MutationRate > 1 {
		return RunSummary{}, errors.New("mutation rate must be within [0, 1]")
	}
	if req.Population == 0 {
		req.Population = defaults.PopulationSize
	}
	if req.Generations == 0 {
		req.Generations = defaults.MaxGenerations
	}
	if req.MutationRate == 0 {
		req.MutationRate = defaults.MutationRate
	}
	if req.Elitism == 0 {
		req.Elitism = defaults.ElitismCount
	}
	if req.Elitism > req.Population {
		return RunSummary{}, errors.New("elitism count must be <= population size")
	}
	if req.MaxAtoms == 0 {
		req.MaxAtoms = defaults.MaxAtoms
	}
	if req.TopCount <= 0 {
		req.TopCount = defaultTopCount
	}
	if req.TargetWeight == 0 {
		req.TargetWeight = target.Params.TargetWeight
	}
	if req.MinWeight == 0 {
		req.MinWeight = target.Params.MinWeight
	}
	if req.MaxWeight == 0 {
		req.MaxWeight = target.Params.MaxWeight
	}
	if req.MinWeight > req.MaxWeight {
		return RunSummary{}, errors.New("min weight must be <= max weight")
	}
	if req.SeedMolecule != nil && len(req.SeedMolecule.Atoms) == 0 {
		return RunSummary{}, errors.New("seed molecule must have at least one atom")
	}

	if err := c.ensureInit(ctx); err != nil {
		return RunSummary{}, err
	}

	now := time.Now().UTC()
	runID := req.RunID
	if runID == "" {
		runID = fmt.Sprintf("%s-%d-%d", req.Objective, req.Seed, now.Unix())
	}

	cfg := engine.Config{
		PopulationSize: req.Population,
		MaxGenerations: req.Generations,
		MutationRate:   req.MutationRate,
		ElitismCount:   req.Elitism,
		MaxAtoms:       req.MaxAtoms,
	}
	tgt := engine.Target{
		Objective: req.Objective,
		Params: objective.Params{
			TargetWeight: req.TargetWeight,
			MinWeight:    req.MinWeight,
			MaxWeight:    req.MaxWeight,
		},
	}

	eng := engine.New(cfg, tgt,
		engine.WithRand(rand.New(rand.NewSource(req.Seed))),
		engine.WithManualStepping(),
	)
	if req.SeedMolecule != nil {
		eng.StartFromSeed(*req.SeedMolecule)
	} else {
		eng.Start()
	}
	for {
		if err := ctx.Err(); err != nil {
			return RunSummary{}, err
		}
		if !eng.StepGeneration() {
			break
		}
	}
	snap := eng.Snapshot()

	ranked := evo.RankDescending(snap.Population)
	topCount := req.TopCount
	if topCount > len(ranked) {
		topCount = len(ranked)
	}
	top := make([]model.TopMoleculeRecord, 0, topCount)
	for i := 0; i < topCount; i++ {
		top = append(top, model.TopMoleculeRecord{Rank: i + 1, Fitness: ranked[i].Fitness, Molecule: ranked[i]})
	}

	stamp := model.VersionedRecord{
		SchemaVersion: storage.CurrentSchemaVersion,
		CodecVersion:  storage.CurrentCodecVersion,
	}
	var finalBest float64
	var bestID, bestFormula string
	if snap.Best != nil {
		best := *snap.Best
		best.VersionedRecord = stamp
		if err := c.store.SaveMolecule(ctx, best); err != nil {
			return RunSummary{}, err
		}
		finalBest = best.Fitness
		bestID = best.ID
		bestFormula = genotype.Formula(best)
	}

	record := model.RunRecord{
		VersionedRecord: stamp,
		ID:              runID,
		Objective:       req.Objective,
		TargetWeight:    req.TargetWeight,
		MinWeight:       req.MinWeight,
		MaxWeight:       req.MaxWeight,
		PopulationSize:  req.Population,
		MaxGenerations:  req.Generations,
		MutationRate:    req.MutationRate,
		ElitismCount:    req.Elitism,
		MaxAtoms:        req.MaxAtoms,
		Seed:            req.Seed,
		Status:          "completed",
		Generations:     snap.Generation,
		BestFitness:     finalBest,
		BestMoleculeID:  bestID,
		CreatedAtUTC:    now.Format(time.RFC3339Nano),
	}
	if err := c.store.SaveRun(ctx, record); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveFitnessHistory(ctx, runID, snap.History); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveGenerationDiagnostics(ctx, runID, snap.Diagnostics); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveSpeciesHistory(ctx, runID, snap.SpeciesHistory); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveTopMolecules(ctx, runID, top); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveLineage(ctx, runID, snap.Lineage); err != nil {
		return RunSummary{}, err
	}

	summary, ok, err := c.store.GetObjectiveSummary(ctx, req.Objective)
	if err != nil {
		return RunSummary{}, err
	}
	if !ok || finalBest > summary.BestFitness {
		if err := c.store.SaveObjectiveSummary(ctx, model.ObjectiveSummary{
			VersionedRecord: stamp,
			Name:            obj.Name(),
			Description:     obj.Description(),
			BestFitness:     finalBest,
		}); err != nil {
			return RunSummary{}, err
		}
	}

	runDir, err := stats.WriteRunArtifacts(c.runsDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:          runID,
			Objective:      req.Objective,
			TargetWeight:   req.TargetWeight,
			MinWeight:      req.MinWeight,
			MaxWeight:      req.MaxWeight,
			PopulationSize: req.Population,
			MaxGenerations: req.Generations,
			MutationRate:   req.MutationRate,
			ElitismCount:   req.Elitism,
			MaxAtoms:       req.MaxAtoms,
			Seed:           req.Seed,
		},
		History:          snap.History,
		Diagnostics:      snap.Diagnostics,
		SpeciesHistory:   snap.SpeciesHistory,
		Best:             snap.Best,
		TopMolecules:     top,
		Lineage:          snap.Lineage,
		FinalBestFitness: finalBest,
	})
	if err != nil {
		return RunSummary{}, err
	}

	if err := stats.AppendRunIndex(c.runsDir, stats.RunIndexEntry{
		RunID:            runID,
		Objective:        req.Objective,
		PopulationSize:   req.Population,
		Generations:      snap.Generation,
		Seed:             req.Seed,
		FinalBestFitness: finalBest,
		BestFormula:      bestFormula,
		CreatedAtUTC:     now.Format(time.RFC3339Nano),
	}); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:            runID,
		ArtifactsDir:     filepath.Clean(runDir),
		Objective:        req.Objective,
		Generations:      snap.Generation,
		History:          append([]model.GenerationStat(nil), snap.History...),
		Diagnostics:      append([]model.GenerationDiagnostics(nil), snap.Diagnostics...),
		Best:             snap.Best,
		FinalBestFitness: finalBest,
	}, nil
}

// Runs lists past runs from the run index, newest first. When the index
// is empty it falls back to run records in the store.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	entries, err := stats.ListRunIndex(c.runsDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		if len(entries) > req.Limit {
			entries = entries[:req.Limit]
		}
		out := make([]RunItem, 0, len(entries))
		for _, e := range entries {
			out = append(out, RunItem{
				RunID:            e.RunID,
				CreatedAtUTC:     e.CreatedAtUTC,
				Objective:        e.Objective,
				Seed:             e.Seed,
				Population:       e.PopulationSize,
				Generations:      e.Generations,
				FinalBestFitness: e.FinalBestFitness,
				BestFormula:      e.BestFormula,
			})
		}
		return out, nil
	}

	if err := c.ensureInit(ctx); err != nil {
		return nil, err
	}
	records, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) > req.Limit {
		records = records[:req.Limit]
	}
	out := make([]RunItem, 0, len(records))
	for _, r := range records {
		out = append(out, RunItem{
			RunID:            r.ID,
			CreatedAtUTC:     r.CreatedAtUTC,
			Objective:        r.Objective,
			Seed:             r.Seed,
			Population:       r.PopulationSize,
			Generations:      r.Generations,
			FinalBestFitness: r.BestFitness,
		})
	}
	return out, nil
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.runsDir)
		if err != nil {
			return ExportSummary{}, err
		}
		if len(entries) == 0 {
			return ExportSummary{}, errors.New("no runs available to export")
		}
		runID = entries[0].RunID
	}

	exportedDir, err := stats.ExportRun(c.runsDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

func (c *Client) FitnessHistory(ctx context.Context, req FitnessHistoryRequest) ([]model.GenerationStat, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest, req.Limit, "fitness history")
	if err != nil {
		return nil, err
	}

	if err := c.ensureInit(ctx); err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		history, ok, err = stats.ReadFitnessHistory(c.runsDir, runID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return append([]model.GenerationStat(nil), history...), nil
}

func (c *Client) Diagnostics(ctx context.Context, req DiagnosticsRequest) ([]model.GenerationDiagnostics, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest, req.Limit, "diagnostics")
	if err != nil {
		return nil, err
	}

	if err := c.ensureInit(ctx); err != nil {
		return nil, err
	}
	diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		diagnostics, ok, err = stats.ReadDiagnostics(c.runsDir, runID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(diagnostics) > req.Limit {
		diagnostics = diagnostics[:req.Limit]
	}
	return append([]model.GenerationDiagnostics(nil), diagnostics...), nil
}

func (c *Client) SpeciesHistory(ctx context.Context, req SpeciesHistoryRequest) ([]model.SpeciesGeneration, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest, req.Limit, "species history")
	if err != nil {
		return nil, err
	}

	if err := c.ensureInit(ctx); err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetSpeciesHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		history, ok, err = stats.ReadSpeciesHistory(c.runsDir, runID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, fmt.Errorf("species history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return append([]model.SpeciesGeneration(nil), history...), nil
}

func (c *Client) TopMolecules(ctx context.Context, req TopMoleculesRequest) ([]model.TopMoleculeRecord, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest, req.Limit, "top molecules")
	if err != nil {
		return nil, err
	}

	if err := c.ensureInit(ctx); err != nil {
		return nil, err
	}
	top, ok, err := c.store.GetTopMolecules(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		top, ok, err = stats.ReadTopMolecules(c.runsDir, runID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, fmt.Errorf("top molecules not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(top) > req.Limit {
		top = top[:req.Limit]
	}
	return append([]model.TopMoleculeRecord(nil), top...), nil
}

func (c *Client) Lineage(ctx context.Context, req LineageRequest) ([]model.LineageRecord, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest, req.Limit, "lineage")
	if err != nil {
		return nil, err
	}

	if err := c.ensureInit(ctx); err != nil {
		return nil, err
	}
	lineage, ok, err := c.store.GetLineage(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		lineage, ok, err = stats.ReadLineage(c.runsDir, runID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, fmt.Errorf("lineage not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(lineage) > req.Limit {
		lineage = lineage[:req.Limit]
	}
	return append([]model.LineageRecord(nil), lineage...), nil
}

// BestMolecule returns the persisted best molecule of a run.
func (c *Client) BestMolecule(ctx context.Context, runID string, latest bool) (model.Molecule, error) {
	id, err := c.resolveRunID(runID, latest, 0, "best molecule")
	if err != nil {
		return model.Molecule{}, err
	}

	if err := c.ensureInit(ctx); err != nil {
		return model.Molecule{}, err
	}
	record, ok, err := c.store.GetRun(ctx, id)
	if err != nil {
		return model.Molecule{}, err
	}
	if ok && record.BestMoleculeID != "" {
		molecule, found, err := c.store.GetMolecule(ctx, record.BestMoleculeID)
		if err != nil {
			return model.Molecule{}, err
		}
		if found {
			return molecule, nil
		}
	}
	molecule, found, err := stats.ReadBestMolecule(c.runsDir, id)
	if err != nil {
		return model.Molecule{}, err
	}
	if !found {
		return model.Molecule{}, fmt.Errorf("best molecule not found for run id: %s", id)
	}
	return molecule, nil
}

// Objectives lists every registered objective, with the best fitness any
// run has reached against it when the store has one.
func (c *Client) Objectives(ctx context.Context) ([]ObjectiveItem, error) {
	if err := c.ensureInit(ctx); err != nil {
		return nil, err
	}

	names := objective.List()
	out := make([]ObjectiveItem, 0, len(names))
	for _, name := range names {
		obj, err := objective.Get(name)
		if err != nil {
			return nil, err
		}
		item := ObjectiveItem{Name: obj.Name(), Description: obj.Description()}
		summary, ok, err := c.store.GetObjectiveSummary(ctx, name)
		if err != nil {
			return nil, err
		}
		if ok {
			item.BestFitness = summary.BestFitness
		}
		out = append(out, item)
	}
	return out, nil
}

func (c *Client) ObjectiveSummary(ctx context.Context, name string) (ObjectiveItem, error) {
	if name == "" {
		return ObjectiveItem{}, errors.New("objective name is required")
	}
	if err := c.ensureInit(ctx); err != nil {
		return ObjectiveItem{}, err
	}
	summary, ok, err := c.store.GetObjectiveSummary(ctx, name)
	if err != nil {
		return ObjectiveItem{}, err
	}
	if !ok {
		return ObjectiveItem{}, fmt.Errorf("objective summary not found: %s", name)
	}
	return ObjectiveItem{
		Name:        summary.Name,
		Description: summary.Description,
		BestFitness: summary.BestFitness,
	}, nil
}

// EngineOptions configures a live engine for interactive frontends.
type EngineOptions struct {
	Config       *engine.Config
	Target       *engine.Target
	Seed         int64
	StepInterval time.Duration
	Logger       engine.Logger
}

// NewEngine builds a live engine with client-style defaults. Zero config
// and target get the package defaults; seed 0 keeps time-based seeding.
func NewEngine(opts EngineOptions) *engine.Engine {
	cfg := engine.DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	target := engine.DefaultTarget()
	if opts.Target != nil {
		target = *opts.Target
	}

	engineOpts := make([]engine.Option, 0, 3)
	if opts.Seed != 0 {
		engineOpts = append(engineOpts, engine.WithRand(rand.New(rand.NewSource(opts.Seed))))
	}
	if opts.StepInterval > 0 {
		engineOpts = append(engineOpts, engine.WithStepInterval(opts.StepInterval))
	}
	if opts.Logger != nil {
		engineOpts = append(engineOpts, engine.WithLogger(opts.Logger))
	}
	return engine.New(cfg, target, engineOpts...)
}

func (c *Client) ensureInit(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

func (c *Client) resolveRunID(runID string, latest bool, limit int, scope string) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if limit < 0 {
		return "", errors.New("limit must be >= 0")
	}
	if latest {
		entries, err := stats.ListRunIndex(c.runsDir)
		if err != nil {
			return "", err
		}
		if len(entries) == 0 {
			return "", errors.New("no runs available")
		}
		return entries[0].RunID, nil
	}
	if runID == "" {
		return "", fmt.Errorf("%s requires run id or latest", scope)
	}
	return runID, nil
}
