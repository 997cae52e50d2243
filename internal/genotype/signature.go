package genotype

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"athanor/internal/model"
)

type StructureSummary struct {
	TotalAtoms          int            `json:"total_atoms"`
	TotalBonds          int            `json:"total_bonds"`
	Components          int            `json:"components"`
	Formula             string         `json:"formula"`
	ElementDistribution map[string]int `json:"element_distribution"`
}

type MoleculeSignature struct {
	Fingerprint string           `json:"fingerprint"`
	Summary     StructureSummary `json:"summary"`
}

// ComputeMoleculeSignature derives a relabeling-invariant fingerprint:
// two molecules with the same element/degree structure hash identically
// regardless of their IDs.
func ComputeMoleculeSignature(m model.Molecule) MoleculeSignature {
	elementDist := make(map[string]int)
	for _, atom := range m.Atoms {
		elementDist[atom.Element]++
	}

	summary := StructureSummary{
		TotalAtoms:          len(m.Atoms),
		TotalBonds:          len(m.Bonds),
		Components:          ComponentCount(m),
		Formula:             Formula(m),
		ElementDistribution: elementDist,
	}

	degrees := Degrees(m)
	siteKeys := make([]string, 0, len(m.Atoms))
	for _, atom := range m.Atoms {
		siteKeys = append(siteKeys, fmt.Sprintf("%s/%d", atom.Element, degrees[atom.ID]))
	}
	sort.Strings(siteKeys)

	parts := []string{
		fmt.Sprintf("a=%d", summary.TotalAtoms),
		fmt.Sprintf("b=%d", summary.TotalBonds),
		fmt.Sprintf("c=%d", summary.Components),
		fmt.Sprintf("f=%s", summary.Formula),
	}
	parts = append(parts, siteKeys...)

	digest := sha1.Sum([]byte(strings.Join(parts, "|")))
	return MoleculeSignature{
		Fingerprint: hex.EncodeToString(digest[:8]),
		Summary:     summary,
	}
}
