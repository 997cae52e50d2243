package genotype

import (
	"sort"
	"strconv"
	"strings"

	"athanor/internal/element"
	"athanor/internal/model"
)

// Degrees returns the incident bond count per atom ID. Atoms without
// bonds are absent from the map and read as zero.
func Degrees(m model.Molecule) map[string]int {
	degrees := make(map[string]int, len(m.Atoms))
	for _, bond := range m.Bonds {
		degrees[bond.A]++
		degrees[bond.B]++
	}
	return degrees
}

// HasBond reports whether the unordered pair (aID, bID) is bonded.
func HasBond(m model.Molecule, aID, bID string) bool {
	for _, bond := range m.Bonds {
		if (bond.A == aID && bond.B == bID) || (bond.A == bID && bond.B == aID) {
			return true
		}
	}
	return false
}

// ComponentCount counts connected components by traversal over the bond
// adjacency. An empty molecule has zero components.
func ComponentCount(m model.Molecule) int {
	if len(m.Atoms) == 0 {
		return 0
	}

	adjacency := make(map[string][]string, len(m.Atoms))
	for _, atom := range m.Atoms {
		adjacency[atom.ID] = nil
	}
	for _, bond := range m.Bonds {
		adjacency[bond.A] = append(adjacency[bond.A], bond.B)
		adjacency[bond.B] = append(adjacency[bond.B], bond.A)
	}

	visited := make(map[string]bool, len(m.Atoms))
	components := 0
	for _, atom := range m.Atoms {
		if visited[atom.ID] {
			continue
		}
		components++
		queue := []string{atom.ID}
		visited[atom.ID] = true
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, next := range adjacency[current] {
				if visited[next] {
					continue
				}
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return components
}

// Weight is the sum of atomic masses over all atoms.
func Weight(m model.Molecule) float64 {
	total := 0.0
	for _, atom := range m.Atoms {
		total += element.Mass(atom.Element)
	}
	return total
}

// Formula renders the element counts in Hill-style order (C, H, N, O,
// then anything unknown alphabetically), e.g. "C3NO2". Empty molecules
// yield an empty string.
func Formula(m model.Molecule) string {
	counts := make(map[string]int, 4)
	for _, atom := range m.Atoms {
		counts[atom.Element]++
	}

	var b strings.Builder
	appendPart := func(symbol string) {
		n := counts[symbol]
		if n == 0 {
			return
		}
		b.WriteString(symbol)
		if n > 1 {
			b.WriteString(strconv.Itoa(n))
		}
		delete(counts, symbol)
	}

	for _, symbol := range []string{element.Carbon, element.Hydrogen, element.Nitrogen, element.Oxygen} {
		appendPart(symbol)
	}
	rest := make([]string, 0, len(counts))
	for symbol := range counts {
		rest = append(rest, symbol)
	}
	sort.Strings(rest)
	for _, symbol := range rest {
		appendPart(symbol)
	}
	return b.String()
}
