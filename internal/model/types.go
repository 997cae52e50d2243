package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

type Atom struct {
	ID      string `json:"id"`
	Element string `json:"element"`
}

// Bond is a single undirected bond; A and B are distinct atom IDs.
type Bond struct {
	ID string `json:"id"`
	A  string `json:"a"`
	B  string `json:"b"`
}

type Molecule struct {
	VersionedRecord
	ID      string  `json:"id"`
	Atoms   []Atom  `json:"atoms"`
	Bonds   []Bond  `json:"bonds"`
	Fitness float64 `json:"fitness"`
}

type GenerationStat struct {
	Generation int     `json:"generation"`
	Best       float64 `json:"best"`
	Average    float64 `json:"average"`
}

type RunRecord struct {
	VersionedRecord
	ID             string  `json:"id"`
	Objective      string  `json:"objective"`
	TargetWeight   float64 `json:"target_weight"`
	MinWeight      float64 `json:"min_weight"`
	MaxWeight      float64 `json:"max_weight"`
	PopulationSize int     `json:"population_size"`
	MaxGenerations int     `json:"max_generations"`
	MutationRate   float64 `json:"mutation_rate"`
	ElitismCount   int     `json:"elitism_count"`
	MaxAtoms       int     `json:"max_atoms"`
	Seed           int64   `json:"seed"`
	Status         string  `json:"status"`
	Generations    int     `json:"generations"`
	BestFitness    float64 `json:"best_fitness"`
	BestMoleculeID string  `json:"best_molecule_id"`
	CreatedAtUTC   string  `json:"created_at_utc"`
}

type GenerationDiagnostics struct {
	Generation           int     `json:"generation"`
	BestFitness          float64 `json:"best_fitness"`
	MeanFitness          float64 `json:"mean_fitness"`
	MinFitness           float64 `json:"min_fitness"`
	SpeciesCount         int     `json:"species_count"`
	FingerprintDiversity int     `json:"fingerprint_diversity"`
}

type SpeciesMetric struct {
	Formula     string  `json:"formula"`
	Members     int     `json:"members"`
	BestFitness float64 `json:"best_fitness"`
	MeanFitness float64 `json:"mean_fitness"`
}

type SpeciesGeneration struct {
	Generation int             `json:"generation"`
	Species    []SpeciesMetric `json:"species"`
	Appeared   []string        `json:"appeared"`
	Vanished   []string        `json:"vanished"`
}

type TopMoleculeRecord struct {
	Rank     int      `json:"rank"`
	Fitness  float64  `json:"fitness"`
	Molecule Molecule `json:"molecule"`
}

type LineageRecord struct {
	MoleculeID  string `json:"molecule_id"`
	ParentID    string `json:"parent_id"`
	Generation  int    `json:"generation"`
	Operation   string `json:"operation"`
	Fingerprint string `json:"fingerprint"`
	Formula     string `json:"formula"`
}

type ObjectiveSummary struct {
	VersionedRecord
	Name        string  `json:"name"`
	Description string  `json:"description"`
	BestFitness float64 `json:"best_fitness"`
}
