package genotype

import (
	"fmt"
	"testing"

	"athanor/internal/element"
	"athanor/internal/model"
)

// makeMolecule builds a molecule from element symbols and bond pairs given
// as atom indices. IDs are deterministic for assertion convenience.
func makeMolecule(symbols []string, bondPairs [][2]int) model.Molecule {
	m := model.Molecule{ID: "m-test"}
	for i, symbol := range symbols {
		m.Atoms = append(m.Atoms, model.Atom{ID: fmt.Sprintf("a%d", i), Element: symbol})
	}
	for i, pair := range bondPairs {
		m.Bonds = append(m.Bonds, model.Bond{
			ID: fmt.Sprintf("b%d", i),
			A:  m.Atoms[pair[0]].ID,
			B:  m.Atoms[pair[1]].ID,
		})
	}
	return m
}

// checkStructure fails the test when bond endpoints are missing, self
// looping or duplicated, or when any atom exceeds its max valence.
func checkStructure(t *testing.T, m model.Molecule) {
	t.Helper()

	atomIDs := make(map[string]struct{}, len(m.Atoms))
	for _, atom := range m.Atoms {
		atomIDs[atom.ID] = struct{}{}
	}

	seenPairs := make(map[string]struct{}, len(m.Bonds))
	degrees := make(map[string]int, len(m.Atoms))
	for _, bond := range m.Bonds {
		if bond.A == bond.B {
			t.Fatalf("bond %s is a self loop on %s", bond.ID, bond.A)
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
		if _, dup := seenPairs[key]; dup {
			t.Fatalf("duplicate bond between %s and %s", bond.A, bond.B)
		}
		seenPairs[key] = struct{}{}
		degrees[bond.A]++
		degrees[bond.B]++
	}

	for _, atom := range m.Atoms {
		if max := element.MaxValence(atom.Element); degrees[atom.ID] > max {
			t.Fatalf("atom %s (%s) carries %d bonds, max valence %d", atom.ID, atom.Element, degrees[atom.ID], max)
		}
	}
}
