package genotype

import (
	"math"
	"math/rand"

	"athanor/internal/element"
	"athanor/internal/model"
)

// bondAttemptFactor scales the number of random bond insertions tried
// during construction relative to the atom count.
const bondAttemptFactor = 1.5

// RandomMolecule builds a molecule with an atom count drawn uniformly from
// [2, maxAtoms] and best-effort random bonding: round(atomCount*1.5) pair
// attempts, each skipped when the pair is already bonded or either endpoint
// is at max valence. The result may be disconnected and carries fitness 0.
func RandomMolecule(rng *rand.Rand, maxAtoms int) model.Molecule {
	rng = ensureRNG(rng)
	if maxAtoms < 2 {
		maxAtoms = 2
	}

	atomCount := 2 + rng.Intn(maxAtoms-1)
	out := model.Molecule{
		ID:    NewMoleculeID(),
		Atoms: make([]model.Atom, 0, atomCount),
	}
	for i := 0; i < atomCount; i++ {
		out.Atoms = append(out.Atoms, model.Atom{
			ID:      NewAtomID(),
			Element: element.RandomSymbol(rng),
		})
	}

	degrees := make(map[string]int, atomCount)
	attempts := int(math.Round(float64(atomCount) * bondAttemptFactor))
	for attempt := 0; attempt < attempts; attempt++ {
		i := rng.Intn(atomCount)
		j := rng.Intn(atomCount)
		for j == i {
			j = rng.Intn(atomCount)
		}
		a := out.Atoms[i]
		b := out.Atoms[j]
		if HasBond(out, a.ID, b.ID) {
			continue
		}
		if degrees[a.ID] >= element.MaxValence(a.Element) || degrees[b.ID] >= element.MaxValence(b.Element) {
			continue
		}
		out.Bonds = append(out.Bonds, model.Bond{ID: NewBondID(), A: a.ID, B: b.ID})
		degrees[a.ID]++
		degrees[b.ID]++
	}
	return out
}
