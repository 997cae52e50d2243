package evo

import (
	"athanor/internal/genotype"
	"athanor/internal/model"
)

type StructureSummary = genotype.StructureSummary

type MoleculeSignature = genotype.MoleculeSignature

func ComputeMoleculeSignature(m model.Molecule) MoleculeSignature {
	return genotype.ComputeMoleculeSignature(m)
}
