package optimization

import (
	"fmt"
	"math"
	"sort"

	"github.com/ducminhle1904/strategy-backtester/internal/strategy"
	"github.com/ducminhle1904/strategy-backtester/pkg/orchestrator"
)

// GetDefaultOptimizationConfig returns the default optimization configuration
func GetDefaultOptimizationConfig() OptimizationConfig {
	return OptimizationConfig{
		PopulationSize: GAPopulationSize,
		Generations:    GAGenerations,
		MutationRate:   GAMutationRate,
		CrossoverRate:  GACrossoverRate,
		EliteSize:      GAEliteSize,
		TournamentSize: TournamentSize,
		MaxWorkers:     4,
		MaxIndicators:  MaxIndicators,
		Fitness:        FitnessSharpe,
	}
}

// withDefaults fills zero fields with the defaults
func (c OptimizationConfig) withDefaults() OptimizationConfig {
	d := GetDefaultOptimizationConfig()
	if c.PopulationSize <= 0 {
		c.PopulationSize = d.PopulationSize
	}
	if c.Generations <= 0 {
		c.Generations = d.Generations
	}
	if c.MutationRate <= 0 {
		c.MutationRate = d.MutationRate
	}
	if c.CrossoverRate <= 0 {
		c.CrossoverRate = d.CrossoverRate
	}
	if c.EliteSize < 0 {
		c.EliteSize = 0
	}
	if c.EliteSize >= c.PopulationSize {
		c.EliteSize = c.PopulationSize - 1
	}
	if c.TournamentSize <= 0 {
		c.TournamentSize = d.TournamentSize
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = 1
	}
	if c.Fitness == "" {
		c.Fitness = d.Fitness
	}
	return c
}

// searchSpace resolves the candidate keys to sorted catalog keys
func searchSpace(keys []string) ([]string, error) {
	if len(keys) == 0 {
		return strategy.SupportedIndicatorKeys(), nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, k := range keys {
		key, ok := strategy.ParseIndicatorKey(k)
		if !ok {
			return nil, fmt.Errorf("unknown indicator %q", k)
		}
		if !seen[string(key)] {
			seen[string(key)] = true
			out = append(out, string(key))
		}
	}
	sort.Strings(out)
	return out, nil
}

// ParseFitness validates a fitness name
func ParseFitness(name string) (Fitness, error) {
	switch f := Fitness(name); f {
	case FitnessReturn, FitnessSharpe, FitnessCalmar:
		return f, nil
	}
	return "", fmt.Errorf("unknown fitness %q (supported: return, sharpe, calmar)", name)
}

// Score ranks a result. Failed runs score -Inf so they never win.
func (f Fitness) Score(result *orchestrator.BacktestResult) float64 {
	if result == nil || result.Failed() {
		return math.Inf(-1)
	}
	switch f {
	case FitnessReturn:
		return result.TotalReturn
	case FitnessCalmar:
		return result.TotalReturn / math.Max(result.MaxDrawdown, 1)
	default:
		return result.SharpeRatio
	}
}
