package objective

import (
	"athanor/internal/element"
	"athanor/internal/genotype"
	"athanor/internal/model"
)

// druglikeness is a Lipinski-style screen scored 0 to 3: one point each
// for weight <= 500, estimated hydrogen donors <= 5 and estimated
// hydrogen acceptors <= 10. Donors are estimated from free valence on
// oxygen and nitrogen under the implicit-hydrogen model.
type druglikeness struct{}

func (druglikeness) Name() string { return "druglikeness" }
func (druglikeness) Description() string {
	return "Score 0-3 against weight, donor and acceptor rules of thumb."
}

func (druglikeness) Score(m model.Molecule, _ Params) float64 {
	score := 0.0
	if genotype.Weight(m) <= 500 {
		score++
	}

	degrees := genotype.Degrees(m)
	donors := 0
	acceptors := 0
	for _, atom := range m.Atoms {
		switch atom.Element {
		case element.Oxygen:
			acceptors++
			if degrees[atom.ID] == 1 {
				donors++
			}
		case element.Nitrogen:
			acceptors++
			if deficit := element.MaxValence(atom.Element) - degrees[atom.ID]; deficit > 0 {
				donors += deficit
			}
		}
	}
	if donors <= 5 {
		score++
	}
	if acceptors <= 10 {
		score++
	}
	return score
}
