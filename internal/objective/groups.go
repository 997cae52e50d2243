package objective

import (
	"athanor/internal/element"
	"athanor/internal/genotype"
	"athanor/internal/model"
)

// hydroxylCount approximates -OH sites as oxygen atoms carrying exactly
// one bond, the free valence slot standing in for the implicit hydrogen.
type hydroxylCount struct{}

func (hydroxylCount) Name() string { return "hydroxyl-count" }
func (hydroxylCount) Description() string {
	return "Maximize hydroxyl-like sites: singly bonded oxygen atoms."
}

func (hydroxylCount) Score(m model.Molecule, _ Params) float64 {
	degrees := genotype.Degrees(m)
	count := 0
	for _, atom := range m.Atoms {
		if atom.Element == element.Oxygen && degrees[atom.ID] == 1 {
			count++
		}
	}
	return float64(count)
}

// amineCount approximates amine sites as nitrogen atoms that are bonded
// but still below full valence.
type amineCount struct{}

func (amineCount) Name() string { return "amine-count" }
func (amineCount) Description() string {
	return "Maximize amine-like sites: partially saturated nitrogen atoms."
}

func (amineCount) Score(m model.Molecule, _ Params) float64 {
	degrees := genotype.Degrees(m)
	count := 0
	for _, atom := range m.Atoms {
		if atom.Element != element.Nitrogen {
			continue
		}
		degree := degrees[atom.ID]
		if degree > 0 && degree < element.MaxValence(atom.Element) {
			count++
		}
	}
	return float64(count)
}
