package engine

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"athanor/internal/evo"
	"athanor/internal/genotype"
	"athanor/internal/model"
	"athanor/internal/objective"
)

// State names the run status of the engine.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)

const defaultStepInterval = 50 * time.Millisecond

// Snapshot is a deep-copied view of the engine state. Mutating a
// snapshot never reaches the engine.
type Snapshot struct {
	State          State                         `json:"state"`
	Config         Config                        `json:"config"`
	Target         Target                        `json:"target"`
	Generation     int                           `json:"generation"`
	Population     []model.Molecule              `json:"population"`
	Best           *model.Molecule               `json:"best"`
	History        []model.GenerationStat        `json:"history"`
	Diagnostics    []model.GenerationDiagnostics `json:"diagnostics"`
	SpeciesHistory []model.SpeciesGeneration     `json:"species_history"`
	Lineage        []model.LineageRecord         `json:"lineage"`
}

// Engine owns the population, history and the run state machine. All
// mutable state lives behind its mutex; callers interact through the
// command methods and Snapshot reads only. Generation steps are driven
// by a cancellable ticker goroutine and never run concurrently.
type Engine struct {
	mu sync.Mutex

	cfg    Config
	target Target
	rng    *rand.Rand
	log    Logger

	stepInterval time.Duration
	manual       bool

	state      State
	generation int
	population []model.Molecule
	best       *model.Molecule
	history    []model.GenerationStat

	diagnostics    []model.GenerationDiagnostics
	speciesHistory []model.SpeciesGeneration
	speciesSet     map[string]struct{}
	lineage        []model.LineageRecord

	// epoch invalidates ticks scheduled before the latest start/reset,
	// so a stale goroutine can never step a superseded run.
	epoch  uint64
	stopCh chan struct{}

	subscribers map[int]chan Snapshot
	nextSubID   int
}

// Option adjusts engine construction.
type Option func(*Engine)

func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

func WithLogger(log Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithStepInterval overrides the default ~50ms generation spacing.
// Values <= 0 keep the default.
func WithStepInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.stepInterval = d
		}
	}
}

// WithManualStepping disables the background ticker; the caller advances
// the run with StepGeneration.
func WithManualStepping() Option {
	return func(e *Engine) {
		e.manual = true
	}
}

func New(cfg Config, target Target, opts ...Option) *Engine {
	e := &Engine{
		cfg:          cfg.normalized(),
		target:       target,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		log:          NewNoOpLogger(),
		stepInterval: defaultStepInterval,
		state:        StateIdle,
		speciesSet:   map[string]struct{}{},
		subscribers:  make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start discards any current run and begins a fresh one from a random
// population.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelPendingLocked()
	e.clearRunLocked()
	e.population = e.freshPopulationLocked()
	e.evaluateLocked(e.population)
	e.recordSeedLineageLocked("")
	e.state = StateRunning
	e.startSchedulerLocked()
	e.log.Infof("run started: population=%d objective=%s", len(e.population), e.target.Objective)
	e.publishLocked()
}

// StartFromSeed begins a fresh run around one template molecule: the
// seed itself plus mutated copies at double the configured mutation
// rate. A seed with zero atoms is ignored.
func (e *Engine) StartFromSeed(seed model.Molecule) {
	if len(seed.Atoms) == 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelPendingLocked()
	e.clearRunLocked()

	population := make([]model.Molecule, 0, e.cfg.PopulationSize)
	population = append(population, genotype.CloneExact(seed))
	e.lineage = append(e.lineage, evo.NewLineageRecord(population[0], "", 0, "seed"))
	seedRate := 2 * e.cfg.MutationRate
	for len(population) < e.cfg.PopulationSize {
		child, applied := evo.Mutate(e.rng, seed, seedRate, e.cfg.MaxAtoms)
		population = append(population, child)
		e.lineage = append(e.lineage, evo.NewLineageRecord(child, seed.ID, 0, operationName(applied)))
	}
	e.population = population
	e.evaluateLocked(e.population)
	e.state = StateRunning
	e.startSchedulerLocked()
	e.log.Infof("seeded run started: seed=%s population=%d", seed.ID, len(e.population))
	e.publishLocked()
}

// Pause halts stepping without discarding the run. Only a Running
// engine reacts.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return
	}
	e.cancelPendingLocked()
	e.state = StatePaused
	e.log.Infof("run paused at generation %d", e.generation)
	e.publishLocked()
}

// Resume continues a paused run, or completes it when the generation
// limit was already reached while paused.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StatePaused {
		return
	}
	if e.generation >= e.cfg.MaxGenerations {
		e.state = StateCompleted
		e.log.Infof("run completed on resume at generation %d", e.generation)
	} else {
		e.state = StateRunning
		e.startSchedulerLocked()
		e.log.Infof("run resumed at generation %d", e.generation)
	}
	e.publishLocked()
}

// Reset returns the engine to Idle, optionally installing a new config
// and target. Nil keeps the current value. Population, history, best
// molecule and all diagnostics are cleared.
func (e *Engine) Reset(cfg *Config, target *Target) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelPendingLocked()
	if cfg != nil {
		e.cfg = cfg.normalized()
	}
	if target != nil {
		e.target = *target
	}
	e.clearRunLocked()
	e.state = StateIdle
	e.log.Infof("engine reset: objective=%s", e.target.Objective)
	e.publishLocked()
}

// UpdateParam changes one named evolution parameter. It takes effect on
// the next generation step.
func (e *Engine) UpdateParam(key string, value float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := e.cfg
	switch key {
	case "populationSize":
		cfg.PopulationSize = int(value)
	case "maxGenerations":
		cfg.MaxGenerations = int(value)
	case "mutationRate":
		cfg.MutationRate = value
	case "elitismCount":
		cfg.ElitismCount = int(value)
	case "maxAtoms":
		cfg.MaxAtoms = int(value)
	default:
		return fmt.Errorf("unknown parameter: %s", key)
	}
	e.cfg = cfg.normalized()
	e.publishLocked()
	return nil
}

// UpdateTarget swaps the fitness objective and its parameters. The
// objective name must be registered.
func (e *Engine) UpdateTarget(t Target) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := objective.Get(t.Objective); err != nil {
		return err
	}
	e.target = t
	e.publishLocked()
	return nil
}

// State reports the current run status.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Snapshot returns a deep copy of the full engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// StepGeneration advances a running engine by exactly one generation and
// reports whether the run is still running afterward. Manual-stepping
// callers use it to drive a run to completion at their own pace.
func (e *Engine) StepGeneration() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return false
	}
	e.stepLocked()
	e.publishLocked()
	return e.state == StateRunning
}

// Subscribe returns a channel that receives a snapshot after every
// command and completed step. Slow receivers miss snapshots rather than
// block the engine. The returned func unsubscribes and closes the
// channel.
func (e *Engine) Subscribe(buffer int) (<-chan Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}

	e.mu.Lock()
	id := e.nextSubID
	e.nextSubID++
	ch := make(chan Snapshot, buffer)
	e.subscribers[id] = ch
	e.mu.Unlock()

	cancel := func() {
		e.mu.Lock()
		if existing, ok := e.subscribers[id]; ok {
			delete(e.subscribers, id)
			close(existing)
		}
		e.mu.Unlock()
	}
	return ch, cancel
}

func (e *Engine) startSchedulerLocked() {
	e.epoch++
	if e.manual {
		return
	}
	e.stopCh = make(chan struct{})
	go e.runLoop(e.stopCh, e.epoch)
}

func (e *Engine) cancelPendingLocked() {
	if e.stopCh != nil {
		close(e.stopCh)
		e.stopCh = nil
	}
}

func (e *Engine) clearRunLocked() {
	e.generation = 0
	e.population = nil
	e.best = nil
	e.history = nil
	e.diagnostics = nil
	e.speciesHistory = nil
	e.speciesSet = map[string]struct{}{}
	e.lineage = nil
}

func (e *Engine) runLoop(stopCh chan struct{}, epoch uint64) {
	ticker := time.NewTicker(e.stepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !e.stepOnce(epoch) {
				return
			}
		case <-stopCh:
			return
		}
	}
}

// stepOnce runs one generation step and reports whether the loop should
// keep ticking.
func (e *Engine) stepOnce(epoch uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if epoch != e.epoch || e.state != StateRunning {
		return false
	}
	e.stepLocked()
	e.publishLocked()
	return e.state == StateRunning
}

func (e *Engine) stepLocked() {
	if len(e.population) == 0 {
		e.population = e.freshPopulationLocked()
		e.evaluateLocked(e.population)
		e.recordSeedLineageLocked("")
		e.log.Warnf("population was empty while running, reseeded %d random molecules", len(e.population))
		return
	}

	ranked := evo.RankDescending(e.population)
	e.population = ranked

	top := ranked[0]
	if e.best == nil || top.Fitness > e.best.Fitness {
		clone := genotype.CloneExact(top)
		e.best = &clone
	}

	e.history = append(e.history, model.GenerationStat{
		Generation: e.generation,
		Best:       top.Fitness,
		Average:    evo.AverageFitness(ranked),
	})
	e.diagnostics = append(e.diagnostics, evo.SummarizeGeneration(ranked, e.generation))
	speciesRecord, currentSet := evo.SummarizeSpecies(ranked, e.generation, e.speciesSet)
	e.speciesHistory = append(e.speciesHistory, speciesRecord)
	e.speciesSet = currentSet

	if e.generation >= e.cfg.MaxGenerations {
		e.state = StateCompleted
		e.cancelPendingLocked()
		e.log.Infof("run completed: generation=%d best=%.3f", e.generation, e.best.Fitness)
		return
	}

	parents := evo.SelectParents(e.rng, ranked, e.cfg.ElitismCount)
	next := make([]model.Molecule, 0, e.cfg.PopulationSize)
	eliteCount := e.cfg.ElitismCount
	if eliteCount > len(parents) {
		eliteCount = len(parents)
	}
	for i := 0; i < eliteCount && len(next) < e.cfg.PopulationSize; i++ {
		elite := genotype.CloneExact(parents[i])
		next = append(next, elite)
		e.lineage = append(e.lineage, evo.NewLineageRecord(elite, parents[i].ID, e.generation+1, "elite_clone"))
	}
	for len(next) < e.cfg.PopulationSize {
		parent := parents[e.rng.Intn(len(parents))]
		child, applied := evo.Mutate(e.rng, parent, e.cfg.MutationRate, e.cfg.MaxAtoms)
		next = append(next, child)
		e.lineage = append(e.lineage, evo.NewLineageRecord(child, parent.ID, e.generation+1, operationName(applied)))
	}
	e.evaluateLocked(next)
	e.population = next
	e.generation++
}

func (e *Engine) freshPopulationLocked() []model.Molecule {
	population := make([]model.Molecule, 0, e.cfg.PopulationSize)
	for i := 0; i < e.cfg.PopulationSize; i++ {
		population = append(population, genotype.RandomMolecule(e.rng, e.cfg.MaxAtoms))
	}
	return population
}

func (e *Engine) evaluateLocked(population []model.Molecule) {
	for i := range population {
		population[i].Fitness = objective.Evaluate(population[i], e.target.Objective, e.target.Params)
	}
}

func (e *Engine) recordSeedLineageLocked(parentID string) {
	for _, m := range e.population {
		e.lineage = append(e.lineage, evo.NewLineageRecord(m, parentID, e.generation, "seed"))
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:       e.state,
		Config:      e.cfg,
		Target:      e.target,
		Generation:  e.generation,
		History:     append([]model.GenerationStat(nil), e.history...),
		Diagnostics: append([]model.GenerationDiagnostics(nil), e.diagnostics...),
		Lineage:     append([]model.LineageRecord(nil), e.lineage...),
	}
	snap.Population = make([]model.Molecule, 0, len(e.population))
	for _, m := range e.population {
		snap.Population = append(snap.Population, genotype.CloneExact(m))
	}
	if e.best != nil {
		best := genotype.CloneExact(*e.best)
		snap.Best = &best
	}
	snap.SpeciesHistory = make([]model.SpeciesGeneration, 0, len(e.speciesHistory))
	for _, gen := range e.speciesHistory {
		snap.SpeciesHistory = append(snap.SpeciesHistory, model.SpeciesGeneration{
			Generation: gen.Generation,
			Species:    append([]model.SpeciesMetric(nil), gen.Species...),
			Appeared:   append([]string(nil), gen.Appeared...),
			Vanished:   append([]string(nil), gen.Vanished...),
		})
	}
	return snap
}

func (e *Engine) publishLocked() {
	if len(e.subscribers) == 0 {
		return
	}
	snap := e.snapshotLocked()
	for _, ch := range e.subscribers {
		select {
		case ch <- snap:
		default:
		}
	}
}

func operationName(applied []string) string {
	if len(applied) == 0 {
		return "noop"
	}
	return strings.Join(applied, "+")
}
