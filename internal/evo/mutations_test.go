package evo

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"athanor/internal/element"
	"athanor/internal/genotype"
	"athanor/internal/model"
)

func buildMolecule(id string, symbols []string, bondPairs [][2]int) model.Molecule {
	m := model.Molecule{ID: id}
	for i, symbol := range symbols {
		m.Atoms = append(m.Atoms, model.Atom{ID: fmt.Sprintf("%s-a%d", id, i), Element: symbol})
	}
	for i, pair := range bondPairs {
		m.Bonds = append(m.Bonds, model.Bond{
			ID: fmt.Sprintf("%s-b%d", id, i),
			A:  m.Atoms[pair[0]].ID,
			B:  m.Atoms[pair[1]].ID,
		})
	}
	return m
}

func assertMoleculeValid(t *testing.T, m model.Molecule) {
	t.Helper()

	atomIDs := make(map[string]struct{}, len(m.Atoms))
	for _, atom := range m.Atoms {
		atomIDs[atom.ID] = struct{}{}
	}
	seenPairs := make(map[string]struct{}, len(m.Bonds))
	for _, bond := range m.Bonds {
		if bond.A == bond.B {
			t.Fatalf("bond %s is a self-loop", bond.ID)
		}
		if _, ok := atomIDs[bond.A]; !ok {
			t.Fatalf("bond %s references missing atom %s", bond.ID, bond.A)
		}
		if _, ok := atomIDs[bond.B]; !ok {
			t.Fatalf("bond %s references missing atom %s", bond.ID, bond.B)
		}
		key := bond.A + "|" + bond.B
		if bond.B < bond.A {
			key = bond.B + "|" + bond.A
		}
		if _, ok := seenPairs[key]; ok {
			t.Fatalf("duplicate bond between %s and %s", bond.A, bond.B)
		}
		seenPairs[key] = struct{}{}
	}

	degrees := genotype.Degrees(m)
	for _, atom := range m.Atoms {
		if degrees[atom.ID] > element.MaxValence(atom.Element) {
			t.Fatalf("atom %s exceeds max valence: element=%s degree=%d", atom.ID, atom.Element, degrees[atom.ID])
		}
	}
}

func TestRetypeRandomAtomInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		m := genotype.RandomMolecule(rng, 8)
		snapshot := genotype.CloneExact(m)

		op := &RetypeRandomAtom{Rand: rng}
		mutated, err := op.Apply(context.Background(), m)
		if err != nil {
			t.Fatalf("apply failed: %v", err)
		}

		if len(mutated.Atoms) != len(m.Atoms) {
			t.Fatalf("atom count changed: got=%d want=%d", len(mutated.Atoms), len(m.Atoms))
		}
		if len(mutated.Bonds) > len(m.Bonds) {
			t.Fatalf("retype added bonds: got=%d want<=%d", len(mutated.Bonds), len(m.Bonds))
		}
		assertMoleculeValid(t, mutated)
		if !reflect.DeepEqual(m, snapshot) {
			t.Fatal("input molecule was modified")
		}
	}
}

func TestTrimExcessBondsRemovesOldestFirst(t *testing.T) {
	m := buildMolecule("m", []string{"N", "C", "C", "C"}, [][2]int{{0, 1}, {0, 2}, {0, 3}})

	trimExcessBonds(&m, m.Atoms[0].ID, 1)

	if len(m.Bonds) != 1 {
		t.Fatalf("bond count after trim: got=%d want=1", len(m.Bonds))
	}
	if m.Bonds[0].ID != "m-b2" {
		t.Fatalf("expected newest incident bond to survive, got %s", m.Bonds[0].ID)
	}
}

func TestAddRandomAtomRejectedAtCapacity(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	m := buildMolecule("m", []string{"C", "C", "C"}, nil)

	op := &AddRandomAtom{Rand: rng, MaxAtoms: 3}
	if _, err := op.Apply(context.Background(), m); !errors.Is(err, ErrNoMutationChoice) {
		t.Fatalf("expected ErrNoMutationChoice, got %v", err)
	}
}

func TestAddRandomAtomGrowsByOne(t *testing.T) {
	rng := rand.New(rand.NewSource(13))

	for i := 0; i < 200; i++ {
		m := genotype.RandomMolecule(rng, 6)

		op := &AddRandomAtom{Rand: rng, MaxAtoms: 12}
		mutated, err := op.Apply(context.Background(), m)
		if err != nil {
			t.Fatalf("apply failed: %v", err)
		}

		if len(mutated.Atoms) != len(m.Atoms)+1 {
			t.Fatalf("atom count mismatch: got=%d want=%d", len(mutated.Atoms), len(m.Atoms)+1)
		}
		if len(mutated.Bonds) != len(m.Bonds) && len(mutated.Bonds) != len(m.Bonds)+1 {
			t.Fatalf("bond count after add atom: got=%d want=%d or %d", len(mutated.Bonds), len(m.Bonds), len(m.Bonds)+1)
		}
		added := mutated.Atoms[len(mutated.Atoms)-1]
		if added.Element == element.Hydrogen {
			t.Fatal("added atom must not be hydrogen")
		}
		assertMoleculeValid(t, mutated)
	}
}

func TestRemoveRandomAtomCascadesBonds(t *testing.T) {
	rng := rand.New(rand.NewSource(17))

	for i := 0; i < 200; i++ {
		m := genotype.RandomMolecule(rng, 7)

		op := &RemoveRandomAtom{Rand: rng}
		mutated, err := op.Apply(context.Background(), m)
		if err != nil {
			t.Fatalf("apply failed: %v", err)
		}

		if len(mutated.Atoms) != len(m.Atoms)-1 {
			t.Fatalf("atom count mismatch: got=%d want=%d", len(mutated.Atoms), len(m.Atoms)-1)
		}
		assertMoleculeValid(t, mutated)
	}
}

func TestRemoveRandomAtomKeepsLastAtom(t *testing.T) {
	rng := rand.New(rand.NewSource(19))
	m := buildMolecule("m", []string{"C"}, nil)

	op := &RemoveRandomAtom{Rand: rng}
	if _, err := op.Apply(context.Background(), m); !errors.Is(err, ErrNoMutationChoice) {
		t.Fatalf("expected ErrNoMutationChoice, got %v", err)
	}
}

func TestAddRandomBondSkipsExistingPair(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	m := buildMolecule("m", []string{"C", "C"}, [][2]int{{0, 1}})

	op := &AddRandomBond{Rand: rng}
	if _, err := op.Apply(context.Background(), m); !errors.Is(err, ErrNoMutationChoice) {
		t.Fatalf("expected ErrNoMutationChoice, got %v", err)
	}
}

func TestAddRandomBondInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(29))

	for i := 0; i < 200; i++ {
		m := genotype.RandomMolecule(rng, 8)

		op := &AddRandomBond{Rand: rng}
		mutated, err := op.Apply(context.Background(), m)
		if err != nil {
			if !errors.Is(err, ErrNoMutationChoice) {
				t.Fatalf("unexpected error: %v", err)
			}
			continue
		}

		if len(mutated.Bonds) != len(m.Bonds)+1 {
			t.Fatalf("bond count mismatch: got=%d want=%d", len(mutated.Bonds), len(m.Bonds)+1)
		}
		assertMoleculeValid(t, mutated)
	}
}

func TestRemoveRandomBondShrinksByOne(t *testing.T) {
	rng := rand.New(rand.NewSource(31))
	m := buildMolecule("m", []string{"C", "O"}, [][2]int{{0, 1}})

	op := &RemoveRandomBond{Rand: rng}
	mutated, err := op.Apply(context.Background(), m)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if len(mutated.Bonds) != 0 {
		t.Fatalf("bond count after remove: got=%d want=0", len(mutated.Bonds))
	}

	if _, err := op.Apply(context.Background(), mutated); !errors.Is(err, ErrNoBonds) {
		t.Fatalf("expected ErrNoBonds, got %v", err)
	}
}

func TestMutateRateZeroKeepsStructureUnderNewIdentity(t *testing.T) {
	parent := buildMolecule("parent", []string{"C", "C"}, [][2]int{{0, 1}})
	parent.Fitness = 42

	child, applied := Mutate(rand.New(rand.NewSource(5)), parent, 0, 2)

	if len(applied) != 0 {
		t.Fatalf("no operator may fire at rate 0, got %v", applied)
	}
	if child.ID == parent.ID {
		t.Fatal("child must carry a new molecule id")
	}
	if child.Fitness != 0 {
		t.Fatalf("child fitness: got=%f want=0", child.Fitness)
	}
	if len(child.Atoms) != len(parent.Atoms) || len(child.Bonds) != len(parent.Bonds) {
		t.Fatalf("structure changed: atoms=%d bonds=%d", len(child.Atoms), len(child.Bonds))
	}
	for i := range child.Atoms {
		if child.Atoms[i].Element != parent.Atoms[i].Element {
			t.Fatalf("element changed at index %d", i)
		}
		if child.Atoms[i].ID == parent.Atoms[i].ID {
			t.Fatalf("atom id reused at index %d", i)
		}
	}
	if ComputeMoleculeSignature(child).Fingerprint != ComputeMoleculeSignature(parent).Fingerprint {
		t.Fatal("fingerprint must survive an identity-only clone")
	}
}

func TestMutateRateOneKeepsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(37))
	knownOps := map[string]struct{}{
		"retype_atom": {},
		"add_atom":    {},
		"remove_atom": {},
		"add_bond":    {},
		"remove_bond": {},
	}

	for i := 0; i < 200; i++ {
		parent := genotype.RandomMolecule(rng, 9)
		parent.Fitness = 12.5
		snapshot := genotype.CloneExact(parent)

		child, applied := Mutate(rng, parent, 1, 9)

		if child.ID == parent.ID {
			t.Fatal("child must carry a new molecule id")
		}
		if child.Fitness != 0 {
			t.Fatalf("child fitness: got=%f want=0", child.Fitness)
		}
		if len(child.Atoms) < 1 || len(child.Atoms) > 9 {
			t.Fatalf("atom count out of range: %d", len(child.Atoms))
		}
		if len(applied) == 0 {
			t.Fatal("rate 1 must fire at least the retype operator")
		}
		for _, name := range applied {
			if _, ok := knownOps[name]; !ok {
				t.Fatalf("unknown operator name: %s", name)
			}
		}
		assertMoleculeValid(t, child)
		if !reflect.DeepEqual(parent, snapshot) {
			t.Fatal("parent molecule was modified")
		}
	}
}

func TestMutateClampsRate(t *testing.T) {
	parent := buildMolecule("parent", []string{"C", "O", "N"}, [][2]int{{0, 1}})

	child, applied := Mutate(rand.New(rand.NewSource(41)), parent, -3, 12)
	if len(applied) != 0 {
		t.Fatalf("negative rate must behave as 0, got %v", applied)
	}
	assertMoleculeValid(t, child)

	child, applied = Mutate(rand.New(rand.NewSource(43)), parent, 7, 12)
	if len(applied) == 0 {
		t.Fatal("rate above 1 must behave as 1")
	}
	assertMoleculeValid(t, child)
}
