package evo

import (
	"context"

	"athanor/internal/model"
)

// Operator applies one structural mutation and returns the result.
// Implementations never modify the input molecule.
type Operator interface {
	Name() string
	Apply(ctx context.Context, m model.Molecule) (model.Molecule, error)
}
