package genotype

import "athanor/internal/model"

// CloneExact deep-copies a molecule preserving all identifiers. The result
// shares no slice storage with its source.
func CloneExact(m model.Molecule) model.Molecule {
	out := m
	out.Atoms = append([]model.Atom(nil), m.Atoms...)
	out.Bonds = append([]model.Bond(nil), m.Bonds...)
	return out
}

// Clone deep-copies a molecule under a fresh identity: the molecule and
// every atom and bond receive new IDs while connectivity is preserved.
func Clone(m model.Molecule) model.Molecule {
	out := CloneExact(m)
	out.ID = NewMoleculeID()

	atomIDMap := make(map[string]string, len(out.Atoms))
	for i := range out.Atoms {
		mapped := NewAtomID()
		atomIDMap[out.Atoms[i].ID] = mapped
		out.Atoms[i].ID = mapped
	}
	for i := range out.Bonds {
		out.Bonds[i].ID = NewBondID()
		if mapped, ok := atomIDMap[out.Bonds[i].A]; ok {
			out.Bonds[i].A = mapped
		}
		if mapped, ok := atomIDMap[out.Bonds[i].B]; ok {
			out.Bonds[i].B = mapped
		}
	}
	return out
}
