package optimization

import (
	"strings"

	"github.com/ducminhle1904/strategy-backtester/pkg/orchestrator"
)

// Individual is a candidate indicator selection. Genes[i] selects the i-th
// key of the search space.
type Individual struct {
	Genes   []bool
	Fitness float64
	Result  *orchestrator.BacktestResult
}

// NewIndividual creates an unevaluated individual
func NewIndividual(genes []bool) *Individual {
	return &Individual{Genes: genes}
}

// Evaluated reports whether a backtest result is attached
func (i *Individual) Evaluated() bool {
	return i.Result != nil
}

// Copy returns a deep copy
func (i *Individual) Copy() *Individual {
	genes := make([]bool, len(i.Genes))
	copy(genes, i.Genes)
	return &Individual{Genes: genes, Fitness: i.Fitness, Result: i.Result}
}

// Reset clears the evaluation so the individual is run again
func (i *Individual) Reset() {
	i.Fitness = 0
	i.Result = nil
}

// Selection returns the selected keys in search-space order
func (i *Individual) Selection(keys []string) []string {
	var out []string
	for idx, on := range i.Genes {
		if on && idx < len(keys) {
			out = append(out, keys[idx])
		}
	}
	return out
}

// Count returns the number of selected keys
func (i *Individual) Count() int {
	n := 0
	for _, on := range i.Genes {
		if on {
			n++
		}
	}
	return n
}

// key identifies the genome for memoization
func (i *Individual) key() string {
	var b strings.Builder
	for _, on := range i.Genes {
		if on {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
