package evo

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"athanor/internal/element"
	"athanor/internal/genotype"
	"athanor/internal/model"
)

var (
	ErrNoAtoms          = errors.New("molecule has no atoms")
	ErrNoBonds          = errors.New("molecule has no bonds")
	ErrNoMutationChoice = errors.New("no mutation choice available")
)

// RetypeRandomAtom reassigns one random atom to a different element from
// the generative pool. Incident bonds exceeding the new element's max
// valence are trimmed oldest first.
type RetypeRandomAtom struct {
	Rand *rand.Rand
}

func (o *RetypeRandomAtom) Name() string {
	return "retype_atom"
}

func (o *RetypeRandomAtom) Apply(_ context.Context, m model.Molecule) (model.Molecule, error) {
	if o == nil || o.Rand == nil {
		return model.Molecule{}, errors.New("random source is required")
	}
	if len(m.Atoms) == 0 {
		return model.Molecule{}, ErrNoAtoms
	}

	idx := o.Rand.Intn(len(m.Atoms))
	next := element.RandomOther(o.Rand, m.Atoms[idx].Element)
	if next == m.Atoms[idx].Element {
		return model.Molecule{}, ErrNoMutationChoice
	}

	mutated := genotype.CloneExact(m)
	mutated.Atoms[idx].Element = next
	trimExcessBonds(&mutated, mutated.Atoms[idx].ID, element.MaxValence(next))
	return mutated, nil
}

// trimExcessBonds removes incident bonds in listing order until atomID
// carries at most maxValence bonds.
func trimExcessBonds(m *model.Molecule, atomID string, maxValence int) {
	degree := 0
	for _, bond := range m.Bonds {
		if bond.A == atomID || bond.B == atomID {
			degree++
		}
	}
	if degree <= maxValence {
		return
	}

	kept := m.Bonds[:0]
	for _, bond := range m.Bonds {
		if degree > maxValence && (bond.A == atomID || bond.B == atomID) {
			degree--
			continue
		}
		kept = append(kept, bond)
	}
	m.Bonds = kept
}

// AddRandomAtom appends one atom when the molecule is below MaxAtoms, and
// with even odds attempts a single bond from the new atom to a random
// existing atom, subject to valence headroom on both ends.
type AddRandomAtom struct {
	Rand     *rand.Rand
	MaxAtoms int
}

func (o *AddRandomAtom) Name() string {
	return "add_atom"
}

func (o *AddRandomAtom) Apply(_ context.Context, m model.Molecule) (model.Molecule, error) {
	if o == nil || o.Rand == nil {
		return model.Molecule{}, errors.New("random source is required")
	}
	if o.MaxAtoms > 0 && len(m.Atoms) >= o.MaxAtoms {
		return model.Molecule{}, ErrNoMutationChoice
	}

	mutated := genotype.CloneExact(m)
	atom := model.Atom{ID: genotype.NewAtomID(), Element: element.RandomSymbol(o.Rand)}
	mutated.Atoms = append(mutated.Atoms, atom)

	if len(m.Atoms) > 0 && o.Rand.Float64() < 0.5 {
		partner := mutated.Atoms[o.Rand.Intn(len(mutated.Atoms)-1)]
		degrees := genotype.Degrees(mutated)
		if degrees[partner.ID] < element.MaxValence(partner.Element) &&
			degrees[atom.ID] < element.MaxValence(atom.Element) {
			mutated.Bonds = append(mutated.Bonds, model.Bond{
				ID: genotype.NewBondID(),
				A:  atom.ID,
				B:  partner.ID,
			})
		}
	}
	return mutated, nil
}

// RemoveRandomAtom deletes one random atom and every bond incident to
// it. Molecules of one atom or fewer are left alone.
type RemoveRandomAtom struct {
	Rand *rand.Rand
}

func (o *RemoveRandomAtom) Name() string {
	return "remove_atom"
}

func (o *RemoveRandomAtom) Apply(_ context.Context, m model.Molecule) (model.Molecule, error) {
	if o == nil || o.Rand == nil {
		return model.Molecule{}, errors.New("random source is required")
	}
	if len(m.Atoms) <= 1 {
		return model.Molecule{}, ErrNoMutationChoice
	}

	idx := o.Rand.Intn(len(m.Atoms))
	removedID := m.Atoms[idx].ID

	mutated := genotype.CloneExact(m)
	mutated.Atoms = append(mutated.Atoms[:idx], mutated.Atoms[idx+1:]...)
	kept := mutated.Bonds[:0]
	for _, bond := range mutated.Bonds {
		if bond.A == removedID || bond.B == removedID {
			continue
		}
		kept = append(kept, bond)
	}
	mutated.Bonds = kept
	return mutated, nil
}

// AddRandomBond bonds two distinct random atoms in a single attempt,
// skipped when the pair is already bonded or either endpoint lacks
// valence headroom.
type AddRandomBond struct {
	Rand *rand.Rand
}

func (o *AddRandomBond) Name() string {
	return "add_bond"
}

func (o *AddRandomBond) Apply(_ context.Context, m model.Molecule) (model.Molecule, error) {
	if o == nil || o.Rand == nil {
		return model.Molecule{}, errors.New("random source is required")
	}
	if len(m.Atoms) < 2 {
		return model.Molecule{}, ErrNoMutationChoice
	}

	i := o.Rand.Intn(len(m.Atoms))
	j := o.Rand.Intn(len(m.Atoms))
	for j == i {
		j = o.Rand.Intn(len(m.Atoms))
	}
	a := m.Atoms[i]
	b := m.Atoms[j]

	if genotype.HasBond(m, a.ID, b.ID) {
		return model.Molecule{}, ErrNoMutationChoice
	}
	degrees := genotype.Degrees(m)
	if degrees[a.ID] >= element.MaxValence(a.Element) || degrees[b.ID] >= element.MaxValence(b.Element) {
		return model.Molecule{}, ErrNoMutationChoice
	}

	mutated := genotype.CloneExact(m)
	mutated.Bonds = append(mutated.Bonds, model.Bond{ID: genotype.NewBondID(), A: a.ID, B: b.ID})
	return mutated, nil
}

// RemoveRandomBond deletes one random bond when any exist.
type RemoveRandomBond struct {
	Rand *rand.Rand
}

func (o *RemoveRandomBond) Name() string {
	return "remove_bond"
}

func (o *RemoveRandomBond) Apply(_ context.Context, m model.Molecule) (model.Molecule, error) {
	if o == nil || o.Rand == nil {
		return model.Molecule{}, errors.New("random source is required")
	}
	if len(m.Bonds) == 0 {
		return model.Molecule{}, ErrNoBonds
	}

	idx := o.Rand.Intn(len(m.Bonds))
	mutated := genotype.CloneExact(m)
	mutated.Bonds = append(mutated.Bonds[:idx], mutated.Bonds[idx+1:]...)
	return mutated, nil
}

// Mutate clones m under a fresh identity, resets its fitness and applies
// five independent Bernoulli(rate) trials in fixed order: retype atom,
// add atom, remove atom, add bond, remove bond. Later trials see earlier
// edits. Operators whose preconditions fail are silent no-ops. The names
// of the operators that actually fired are returned alongside the result.
func Mutate(rng *rand.Rand, m model.Molecule, rate float64, maxAtoms int) (model.Molecule, []string) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}

	mutated := genotype.Clone(m)
	mutated.Fitness = 0

	operators := []Operator{
		&RetypeRandomAtom{Rand: rng},
		&AddRandomAtom{Rand: rng, MaxAtoms: maxAtoms},
		&RemoveRandomAtom{Rand: rng},
		&AddRandomBond{Rand: rng},
		&RemoveRandomBond{Rand: rng},
	}

	var applied []string
	ctx := context.Background()
	for _, op := range operators {
		if rng.Float64() >= rate {
			continue
		}
		next, err := op.Apply(ctx, mutated)
		if err != nil {
			continue
		}
		mutated = next
		applied = append(applied, op.Name())
	}
	return mutated, applied
}
