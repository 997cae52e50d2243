package evo

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"athanor/internal/genotype"
	"athanor/internal/model"
)

// Selector chooses parents from a ranked population for replication.
type Selector interface {
	Name() string
	PickParent(rng *rand.Rand, ranked []model.Molecule) (model.Molecule, error)
}

// TournamentSelector samples candidates uniformly with replacement and
// keeps the highest fitness among them. Ties keep the earliest draw.
type TournamentSelector struct {
	TournamentSize int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) PickParent(rng *rand.Rand, ranked []model.Molecule) (model.Molecule, error) {
	if rng == nil {
		return model.Molecule{}, fmt.Errorf("random source is required")
	}
	if len(ranked) == 0 {
		return model.Molecule{}, fmt.Errorf("population is empty")
	}

	tournamentSize := s.TournamentSize
	if tournamentSize <= 0 {
		tournamentSize = 3
	}

	best := ranked[rng.Intn(len(ranked))]
	for i := 1; i < tournamentSize; i++ {
		candidate := ranked[rng.Intn(len(ranked))]
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best, nil
}

// RankDescending returns a copy of population sorted by fitness, highest
// first. The sort is stable so equally fit molecules keep their relative
// order.
func RankDescending(population []model.Molecule) []model.Molecule {
	ranked := append([]model.Molecule(nil), population...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Fitness > ranked[j].Fitness
	})
	return ranked
}

// SelectParents builds a parent pool of len(population): exact copies of
// the top eliteCount molecules by descending fitness followed by
// tournament winners until the pool is full. An empty population yields
// an empty pool.
func SelectParents(rng *rand.Rand, population []model.Molecule, eliteCount int) []model.Molecule {
	if len(population) == 0 {
		return nil
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if eliteCount < 0 {
		eliteCount = 0
	}
	if eliteCount > len(population) {
		eliteCount = len(population)
	}

	ranked := RankDescending(population)
	parents := make([]model.Molecule, 0, len(population))
	for i := 0; i < eliteCount; i++ {
		parents = append(parents, genotype.CloneExact(ranked[i]))
	}

	selector := TournamentSelector{}
	for len(parents) < len(population) {
		winner, err := selector.PickParent(rng, ranked)
		if err != nil {
			break
		}
		parents = append(parents, winner)
	}
	return parents
}
