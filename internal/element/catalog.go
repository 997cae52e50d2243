package element

import "math/rand"

// Symbols for the four supported elements.
const (
	Carbon   = "C"
	Hydrogen = "H"
	Oxygen   = "O"
	Nitrogen = "N"
)

// Info describes one catalog entry. MaxValence is the hard cap on the
// number of bonds an atom of this element may carry.
type Info struct {
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	MaxValence int     `json:"max_valence"`
	AtomicMass float64 `json:"atomic_mass"`
	Color      string  `json:"color"`
}

var catalog = map[string]Info{
	Carbon:   {Symbol: Carbon, Name: "Carbon", MaxValence: 4, AtomicMass: 12, Color: "#404040"},
	Hydrogen: {Symbol: Hydrogen, Name: "Hydrogen", MaxValence: 1, AtomicMass: 1, Color: "#d3d3d3"},
	Oxygen:   {Symbol: Oxygen, Name: "Oxygen", MaxValence: 2, AtomicMass: 16, Color: "#ff0d0d"},
	Nitrogen: {Symbol: Nitrogen, Name: "Nitrogen", MaxValence: 3, AtomicMass: 14, Color: "#3050f8"},
}

var catalogOrder = []string{Carbon, Hydrogen, Oxygen, Nitrogen}

// generativePool lists the elements random construction and mutation may
// produce. Hydrogen is modeled implicitly and never generated, though it
// still participates in lookups and weight calculations when present.
var generativePool = []string{Carbon, Oxygen, Nitrogen}

func Lookup(symbol string) (Info, bool) {
	info, ok := catalog[symbol]
	return info, ok
}

// Symbols returns the full catalog in table order.
func Symbols() []string {
	return append([]string(nil), catalogOrder...)
}

// MaxValence returns the bond cap for symbol, 0 for unknown symbols.
func MaxValence(symbol string) int {
	return catalog[symbol].MaxValence
}

// Mass returns the atomic mass for symbol, 0 for unknown symbols.
func Mass(symbol string) float64 {
	return catalog[symbol].AtomicMass
}

// RandomSymbol draws uniformly from the generative pool.
func RandomSymbol(rng *rand.Rand) string {
	return generativePool[rng.Intn(len(generativePool))]
}

// RandomOther draws uniformly from the generative pool excluding current.
// When current is not in the pool (including Hydrogen), any pool element
// may be returned.
func RandomOther(rng *rand.Rand, current string) string {
	candidates := make([]string, 0, len(generativePool))
	for _, symbol := range generativePool {
		if symbol != current {
			candidates = append(candidates, symbol)
		}
	}
	if len(candidates) == 0 {
		return current
	}
	return candidates[rng.Intn(len(candidates))]
}
