package reporting

import (
	"fmt"
	"math"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ducminhle1904/strategy-backtester/pkg/optimization"
)

// OutputOptimization prints the best candidate of every generation
func (r *DefaultConsoleReporter) OutputOptimization(result *optimization.OptimizationResult, fitness optimization.Fitness) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("Genetic Optimization (" + string(fitness) + ")")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Gen", "Best", "Average", "Selection"})
	for _, gen := range result.History {
		t.AppendRow(table.Row{
			gen.Generation,
			formatFitness(gen.BestFitness),
			formatFitness(gen.AverageFitness),
			strings.Join(gen.BestSelection, ", "),
		})
	}
	t.Render()

	fmt.Fprintf(r.out, "🏆 Best selection: %s (%s %s, %d backtests)\n",
		strings.Join(result.Selection, ", "), fitness, formatFitness(result.Best.Fitness), result.Evaluations)
}

func formatFitness(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "-"
	}
	return formatRatio(v)
}
