package genotype

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

func NewMoleculeID() string {
	return "mol-" + uuid.NewString()
}

func NewAtomID() string {
	return "atom-" + uuid.NewString()
}

func NewBondID() string {
	return "bond-" + uuid.NewString()
}

func ensureRNG(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
