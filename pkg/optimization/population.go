package optimization

import (
	"math"
	"sort"
)

// Population represents a collection of individuals
type Population struct {
	individuals []*Individual
}

// NewPopulation creates a new population with the given individuals
func NewPopulation(individuals []*Individual) *Population {
	return &Population{individuals: individuals}
}

// GetIndividuals returns all individuals in the population
func (p *Population) GetIndividuals() []*Individual {
	return p.individuals
}

// Size returns the number of individuals in the population
func (p *Population) Size() int {
	return len(p.individuals)
}

// GetBest returns the individual with the highest fitness
func (p *Population) GetBest() *Individual {
	if len(p.individuals) == 0 {
		return nil
	}
	best := p.individuals[0]
	for _, individual := range p.individuals[1:] {
		if individual.Fitness > best.Fitness {
			best = individual
		}
	}
	return best
}

// SortByFitness sorts the population by fitness in descending order (best first)
func (p *Population) SortByFitness() {
	sort.SliceStable(p.individuals, func(i, j int) bool {
		return p.individuals[i].Fitness > p.individuals[j].Fitness
	})
}

// AverageFitness averages the finite fitness values; failed runs are skipped
func (p *Population) AverageFitness() float64 {
	sum, n := 0.0, 0
	for _, individual := range p.individuals {
		if math.IsInf(individual.Fitness, 0) || math.IsNaN(individual.Fitness) {
			continue
		}
		sum += individual.Fitness
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// GetElite returns copies of the top n individuals by fitness
func (p *Population) GetElite(n int) []*Individual {
	p.SortByFitness()
	if n > len(p.individuals) {
		n = len(p.individuals)
	}
	elite := make([]*Individual, n)
	for i := 0; i < n; i++ {
		elite[i] = p.individuals[i].Copy()
	}
	return elite
}
