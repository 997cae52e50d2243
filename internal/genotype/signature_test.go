package genotype

import (
	"testing"

	"athanor/internal/element"
)

func TestSignatureInvariantUnderRelabeling(t *testing.T) {
	a := makeMolecule([]string{element.Carbon, element.Oxygen, element.Nitrogen}, [][2]int{{0, 1}})
	b := Clone(a)

	sigA := ComputeMoleculeSignature(a)
	sigB := ComputeMoleculeSignature(b)
	if sigA.Fingerprint != sigB.Fingerprint {
		t.Fatalf("relabeled structure changed fingerprint: %s vs %s", sigA.Fingerprint, sigB.Fingerprint)
	}
	if sigA.Summary.Formula != "CNO" {
		t.Fatalf("formula: got=%q want=%q", sigA.Summary.Formula, "CNO")
	}
}

func TestSignatureDistinguishesBonding(t *testing.T) {
	loose := makeMolecule([]string{element.Carbon, element.Carbon, element.Carbon}, [][2]int{{0, 1}})
	tight := makeMolecule([]string{element.Carbon, element.Carbon, element.Carbon}, [][2]int{{0, 1}, {1, 2}})

	if ComputeMoleculeSignature(loose).Fingerprint == ComputeMoleculeSignature(tight).Fingerprint {
		t.Fatal("different bonding must not collide")
	}
}

func TestSignatureSummaryCounts(t *testing.T) {
	m := makeMolecule(
		[]string{element.Carbon, element.Carbon, element.Oxygen, element.Nitrogen},
		[][2]int{{0, 1}, {1, 2}},
	)
	sig := ComputeMoleculeSignature(m)

	if sig.Summary.TotalAtoms != 4 || sig.Summary.TotalBonds != 2 {
		t.Fatalf("summary counts: atoms=%d bonds=%d", sig.Summary.TotalAtoms, sig.Summary.TotalBonds)
	}
	if sig.Summary.Components != 2 {
		t.Fatalf("summary components: got=%d want=2", sig.Summary.Components)
	}
	if sig.Summary.ElementDistribution[element.Carbon] != 2 {
		t.Fatalf("carbon distribution: got=%d want=2", sig.Summary.ElementDistribution[element.Carbon])
	}
}
