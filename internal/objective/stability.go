package objective

import (
	"athanor/internal/element"
	"athanor/internal/genotype"
	"athanor/internal/model"
)

// stability compares each atom's bond count to its element's max valence:
// a full shell earns +2, a partial one +0.5, an overfull one -2 per
// excess bond. The per-atom average is shifted by +5 and floored at 0.
type stability struct{}

func (stability) Name() string { return "stability" }
func (stability) Description() string {
	return "Favor molecules whose atoms sit at or near their full valence."
}

func (stability) Score(m model.Molecule, _ Params) float64 {
	if len(m.Atoms) == 0 {
		return 0
	}

	degrees := genotype.Degrees(m)
	total := 0.0
	for _, atom := range m.Atoms {
		max := element.MaxValence(atom.Element)
		degree := degrees[atom.ID]
		switch {
		case degree == max:
			total += 2.0
		case degree < max:
			total += 0.5
		default:
			total -= 2.0 * float64(degree-max)
		}
	}

	score := total/float64(len(m.Atoms)) + 5.0
	if score < 0 {
		return 0
	}
	return score
}
