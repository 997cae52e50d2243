package objective

import "athanor/internal/model"

type elementCount struct {
	symbol      string
	name        string
	description string
}

func (o elementCount) Name() string        { return o.name }
func (o elementCount) Description() string { return o.description }

func (o elementCount) Score(m model.Molecule, _ Params) float64 {
	count := 0
	for _, atom := range m.Atoms {
		if atom.Element == o.symbol {
			count++
		}
	}
	return float64(count)
}

type atomCount struct{}

func (atomCount) Name() string        { return "atom-count" }
func (atomCount) Description() string { return "Maximize the total number of atoms." }

func (atomCount) Score(m model.Molecule, _ Params) float64 {
	return float64(len(m.Atoms))
}

type bondCount struct{}

func (bondCount) Name() string        { return "bond-count" }
func (bondCount) Description() string { return "Maximize the total number of bonds." }

func (bondCount) Score(m model.Molecule, _ Params) float64 {
	return float64(len(m.Bonds))
}
