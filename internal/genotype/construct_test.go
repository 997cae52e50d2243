package genotype

import (
	"math/rand"
	"testing"

	"athanor/internal/element"
)

func TestRandomMoleculeAtomCountRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const maxAtoms = 9

	sawMin := false
	sawMax := false
	for i := 0; i < 400; i++ {
		m := RandomMolecule(rng, maxAtoms)
		if len(m.Atoms) < 2 || len(m.Atoms) > maxAtoms {
			t.Fatalf("atom count out of range: got=%d want in [2,%d]", len(m.Atoms), maxAtoms)
		}
		if len(m.Atoms) == 2 {
			sawMin = true
		}
		if len(m.Atoms) == maxAtoms {
			sawMax = true
		}
	}
	if !sawMin || !sawMax {
		t.Fatalf("expected both range endpoints in 400 draws: sawMin=%v sawMax=%v", sawMin, sawMax)
	}
}

func TestRandomMoleculeStructuralInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 200; i++ {
		m := RandomMolecule(rng, 12)
		checkStructure(t, m)
	}
}

func TestRandomMoleculeNeverContainsHydrogen(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		m := RandomMolecule(rng, 8)
		for _, atom := range m.Atoms {
			if atom.Element == element.Hydrogen {
				t.Fatal("random construction produced a hydrogen atom")
			}
		}
	}
}

func TestRandomMoleculeClampsTinyMaxAtoms(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for _, maxAtoms := range []int{-3, 0, 1, 2} {
		m := RandomMolecule(rng, maxAtoms)
		if len(m.Atoms) != 2 {
			t.Fatalf("maxAtoms=%d: got %d atoms, want 2", maxAtoms, len(m.Atoms))
		}
	}
}

func TestRandomMoleculeStartsUnscored(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	m := RandomMolecule(rng, 6)
	if m.Fitness != 0 {
		t.Fatalf("fresh molecule fitness: got=%v want=0", m.Fitness)
	}
	if m.ID == "" {
		t.Fatal("fresh molecule has no ID")
	}
}
