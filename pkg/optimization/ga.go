package optimization

import (
	"context"
	"math/rand"
	"strings"
	"time"

	bterrors "github.com/ducminhle1904/strategy-backtester/internal/errors"
	"github.com/ducminhle1904/strategy-backtester/internal/logger"
	"github.com/ducminhle1904/strategy-backtester/pkg/orchestrator"
)

// GeneticOptimizer runs every candidate as an independent backtest through
// an orchestrator. Identical selections are run once per search.
type GeneticOptimizer struct {
	orchestrator orchestrator.Orchestrator
	log          logger.Scoped
}

// NewGeneticOptimizer creates an optimizer that evaluates candidates with orch
func NewGeneticOptimizer(orch orchestrator.Orchestrator, sink logger.Sink) *GeneticOptimizer {
	return &GeneticOptimizer{orchestrator: orch, log: logger.For(sink, logger.StageOptimization)}
}

var _ Optimizer = (*GeneticOptimizer)(nil)

// Optimize searches the indicator selection with the highest fitness
func (g *GeneticOptimizer) Optimize(ctx context.Context, req orchestrator.Request, cfg OptimizationConfig) (*OptimizationResult, error) {
	stage := string(logger.StageOptimization)
	cfg = cfg.withDefaults()

	keys, err := searchSpace(cfg.Keys)
	if err != nil {
		return nil, bterrors.NewConfigurationError(stage, "search space", err.Error())
	}
	if len(req.Bars) == 0 {
		return nil, bterrors.NewDataError(stage, "optimize", "price series is empty")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	op := NewSelectionOperator(cfg.MaxIndicators)

	individuals := make([]*Individual, cfg.PopulationSize)
	for i := range individuals {
		individuals[i] = op.Random(len(keys), rng)
	}
	population := NewPopulation(individuals)

	g.log.Info("optimizing %s over %d indicators (%s): population %d, %d generations, fitness %s",
		req.Symbol, len(keys), strings.Join(keys, ", "), cfg.PopulationSize, cfg.Generations, cfg.Fitness)

	cache := make(map[string]*orchestrator.BacktestResult)
	result := &OptimizationResult{}
	for gen := 0; gen < cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, bterrors.NewSimulationFailure(stage, err)
		}

		result.Evaluations += g.evaluate(ctx, population, keys, req, cfg, cache)
		population.SortByFitness()

		best := population.GetBest()
		if result.Best == nil || best.Fitness > result.Best.Fitness {
			result.Best = best.Copy()
		}
		stats := GenerationStats{
			Generation:     gen + 1,
			BestFitness:    best.Fitness,
			AverageFitness: population.AverageFitness(),
			BestSelection:  best.Selection(keys),
		}
		result.History = append(result.History, stats)
		g.log.Debug("generation %d: best %.4f [%s], average %.4f",
			stats.Generation, stats.BestFitness, strings.Join(stats.BestSelection, ","), stats.AverageFitness)

		if gen < cfg.Generations-1 {
			population = nextGeneration(population, cfg, op, rng)
		}
	}

	result.Selection = result.Best.Selection(keys)
	g.log.Info("best selection [%s] with %s %.4f after %d backtests",
		strings.Join(result.Selection, ", "), cfg.Fitness, result.Best.Fitness, result.Evaluations)
	return result, nil
}

// evaluate runs every unevaluated individual not found in cache and returns
// the number of backtests executed
func (g *GeneticOptimizer) evaluate(ctx context.Context, population *Population, keys []string,
	base orchestrator.Request, cfg OptimizationConfig, cache map[string]*orchestrator.BacktestResult) int {
	pending := make(map[string][]*Individual)
	var order []string
	for _, ind := range population.GetIndividuals() {
		if ind.Evaluated() {
			continue
		}
		k := ind.key()
		if cached, ok := cache[k]; ok {
			ind.Result = cached
			ind.Fitness = cfg.Fitness.Score(cached)
			continue
		}
		if _, ok := pending[k]; !ok {
			order = append(order, k)
		}
		pending[k] = append(pending[k], ind)
	}
	if len(order) == 0 {
		return 0
	}

	reqs := make([]orchestrator.Request, len(order))
	for i, k := range order {
		reqs[i] = withSelection(base, pending[k][0].Selection(keys))
	}
	results := g.orchestrator.RunBatch(ctx, reqs, cfg.MaxWorkers)

	for i, k := range order {
		cache[k] = results[i]
		for _, ind := range pending[k] {
			ind.Result = results[i]
			ind.Fitness = cfg.Fitness.Score(results[i])
		}
	}
	return len(order)
}

// nextGeneration keeps the elite and fills the rest through selection,
// crossover and mutation
func nextGeneration(population *Population, cfg OptimizationConfig, op GeneticOperator, rng *rand.Rand) *Population {
	next := population.GetElite(cfg.EliteSize)
	for len(next) < cfg.PopulationSize {
		parent1 := op.Select(population, cfg.TournamentSize, rng)
		parent2 := op.Select(population, cfg.TournamentSize, rng)
		child := op.Crossover(parent1, parent2, cfg.CrossoverRate, rng)
		op.Mutate(child, cfg.MutationRate, rng)
		next = append(next, child)
	}
	return NewPopulation(next)
}

// withSelection copies req with the strategy's selected indicators replaced
func withSelection(req orchestrator.Request, selection []string) orchestrator.Request {
	out := req
	out.Strategy.SelectedIndicators = append([]string(nil), selection...)
	return out
}
