package objective

import (
	"athanor/internal/genotype"
	"athanor/internal/model"
)

// connectivity rewards both size and cohesion: a single connected
// molecule scores its full atom count, a fragmented one only a fraction.
type connectivity struct{}

func (connectivity) Name() string { return "connectivity" }
func (connectivity) Description() string {
	return "Minimize disconnected fragments; score is atom count divided by component count."
}

func (connectivity) Score(m model.Molecule, _ Params) float64 {
	components := genotype.ComponentCount(m)
	if components < 1 {
		components = 1
	}
	return float64(len(m.Atoms)) / float64(components)
}
