package optimization

import (
	"math/rand"
)

// SelectionOperator implements uniform crossover, bit-flip mutation and
// tournament selection over indicator selections. Every individual it
// returns selects between one and maxSelected keys.
type SelectionOperator struct {
	maxSelected int
}

// NewSelectionOperator creates an operator; maxSelected <= 0 means no cap
func NewSelectionOperator(maxSelected int) *SelectionOperator {
	return &SelectionOperator{maxSelected: maxSelected}
}

var _ GeneticOperator = (*SelectionOperator)(nil)

// Random creates a valid individual over n genes
func (op *SelectionOperator) Random(n int, rng *rand.Rand) *Individual {
	genes := make([]bool, n)
	for i := range genes {
		genes[i] = rng.Float64() < 0.3
	}
	child := NewIndividual(genes)
	op.repair(child, rng)
	return child
}

// Crossover creates a child taking each gene from either parent
func (op *SelectionOperator) Crossover(parent1, parent2 *Individual, rate float64, rng *rand.Rand) *Individual {
	child := parent1.Copy()
	child.Reset()
	if rng.Float64() < rate {
		for i := range child.Genes {
			if i < len(parent2.Genes) && rng.Float64() < 0.5 {
				child.Genes[i] = parent2.Genes[i]
			}
		}
	}
	op.repair(child, rng)
	return child
}

// Mutate flips one random gene with probability rate
func (op *SelectionOperator) Mutate(individual *Individual, rate float64, rng *rand.Rand) {
	if len(individual.Genes) == 0 || rng.Float64() >= rate {
		return
	}
	idx := rng.Intn(len(individual.Genes))
	individual.Genes[idx] = !individual.Genes[idx]
	individual.Reset()
	op.repair(individual, rng)
}

// Select chooses an individual using tournament selection
func (op *SelectionOperator) Select(population *Population, tournamentSize int, rng *rand.Rand) *Individual {
	individuals := population.GetIndividuals()
	if len(individuals) == 0 {
		return nil
	}
	best := individuals[rng.Intn(len(individuals))]
	for i := 1; i < tournamentSize; i++ {
		candidate := individuals[rng.Intn(len(individuals))]
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best
}

// repair switches on a random gene when none is set and switches off random
// genes above the cap
func (op *SelectionOperator) repair(individual *Individual, rng *rand.Rand) {
	n := len(individual.Genes)
	if n == 0 {
		return
	}
	if individual.Count() == 0 {
		individual.Genes[rng.Intn(n)] = true
	}
	for op.maxSelected > 0 && individual.Count() > op.maxSelected {
		on := make([]int, 0, n)
		for i, g := range individual.Genes {
			if g {
				on = append(on, i)
			}
		}
		individual.Genes[on[rng.Intn(len(on))]] = false
	}
}
