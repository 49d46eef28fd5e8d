package optimization

import (
	"context"
	"math/rand"

	"github.com/ducminhle1904/strategy-backtester/pkg/orchestrator"
)

// Package optimization searches for the combination of selected indicators
// that performs best on a price series, using a genetic algorithm

// GA defaults
const (
	GAPopulationSize = 24
	GAGenerations    = 15
	GAMutationRate   = 0.2
	GACrossoverRate  = 0.85
	GAEliteSize      = 4
	TournamentSize   = 2
	MaxIndicators    = 3
)

// Fitness names the metric a candidate is ranked by
type Fitness string

const (
	FitnessReturn Fitness = "return"
	FitnessSharpe Fitness = "sharpe"
	FitnessCalmar Fitness = "calmar"
)

// Optimizer finds the best indicator selection for a request. The request's
// text conditions are kept; only SelectedIndicators varies.
type Optimizer interface {
	Optimize(ctx context.Context, req orchestrator.Request, cfg OptimizationConfig) (*OptimizationResult, error)
}

// GeneticOperator defines the genetic algorithm operations
type GeneticOperator interface {
	Crossover(parent1, parent2 *Individual, rate float64, rng *rand.Rand) *Individual
	Mutate(individual *Individual, rate float64, rng *rand.Rand)
	Select(population *Population, tournamentSize int, rng *rand.Rand) *Individual
}

// OptimizationConfig holds the configuration for the genetic algorithm
type OptimizationConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	CrossoverRate  float64
	EliteSize      int
	TournamentSize int
	MaxWorkers     int

	// MaxIndicators caps how many indicators one candidate may select
	MaxIndicators int
	Fitness       Fitness

	// Keys is the search space; empty means the full indicator catalog
	Keys []string

	// Seed makes a search reproducible; zero seeds from the clock
	Seed int64
}

// GenerationStats summarizes one generation
type GenerationStats struct {
	Generation     int
	BestFitness    float64
	AverageFitness float64
	BestSelection  []string
}

// OptimizationResult is the outcome of a search
type OptimizationResult struct {
	Best        *Individual
	Selection   []string
	History     []GenerationStats
	Evaluations int
}
