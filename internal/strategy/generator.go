package strategy

import (
	"fmt"

	bterrors "github.com/ducminhle1904/strategy-backtester/internal/errors"
	"github.com/ducminhle1904/strategy-backtester/internal/indicators"
	"github.com/ducminhle1904/strategy-backtester/internal/logger"
)

// Source tells which policy branch produced the final signals
type Source string

const (
	SourceNone               Source = "none"
	SourceText               Source = "text"
	SourceIndicators         Source = "indicators"
	SourceCombined           Source = "combined"
	SourceIndicatorsFallback Source = "indicators-fallback"
)

// Result is the output of one signal generation
type Result struct {
	Signals          *SignalSeries
	Source           Source
	TextSignals      int
	IndicatorSignals int
	Unmatched        []string
}

// Generator turns a strategy spec and an indicator panel into signals
type Generator struct {
	interpreters []Interpreter
	log          logger.Scoped
}

// NewGenerator creates a generator with the default interpreter chain
func NewGenerator(sink logger.Sink) *Generator {
	return NewGeneratorWith(sink, DefaultInterpreters()...)
}

// NewGeneratorWith creates a generator with a custom interpreter chain
func NewGeneratorWith(sink logger.Sink, interpreters ...Interpreter) *Generator {
	return &Generator{
		interpreters: interpreters,
		log:          logger.For(sink, logger.StageSignals),
	}
}

// Generate applies the signal policy:
//  1. no rule text and no selected indicators gives all Hold
//  2. rule text is interpreted clause by clause
//  3. selected indicators are combined with OR
//  4. when both produce signals they are combined with AND, falling back to
//     the indicator signals if the AND is empty
//
// TODO: decide with strategy owners whether the AND fallback should stay
// asymmetric with the OR across selected indicators.
func (g *Generator) Generate(panel *indicators.Panel, spec Spec) *Result {
	spec = spec.Normalize()
	if err := spec.Validate(); err != nil {
		g.log.Warning("%v", err)
	}
	result := &Result{Signals: NewSignalSeries(panel.Timestamps()), Source: SourceNone}

	var text *SignalSeries
	if spec.HasCustomStrategy() {
		text = g.textSignals(panel, spec, result)
		result.TextSignals = text.Count()
	} else {
		g.log.Info("no entry/exit rules supplied, text signals are all hold")
	}

	var selected *SignalSeries
	if keys := selectedKeys(spec); len(keys) > 0 {
		selected = indicatorSignals(panel, keys)
		result.IndicatorSignals = selected.Count()
	}

	switch {
	case result.TextSignals > 0 && result.IndicatorSignals > 0:
		combined := combineAnd(text, selected)
		if combined.Count() == 0 {
			g.log.Warning("text and indicator signals never agree, using indicator signals alone")
			result.Signals, result.Source = selected, SourceIndicatorsFallback
		} else {
			result.Signals, result.Source = combined, SourceCombined
		}
	case result.TextSignals > 0:
		if selected != nil {
			g.log.Warning("selected indicators produced no signals, using text signals alone")
		}
		result.Signals, result.Source = text, SourceText
	case selected != nil:
		result.Signals, result.Source = selected, SourceIndicators
	}

	g.log.Info("%d buy / %d sell signals from %s (text=%d, indicators=%d, unmatched clauses=%d)",
		result.Signals.Buys(), result.Signals.Sells(), result.Source,
		result.TextSignals, result.IndicatorSignals, len(result.Unmatched))
	return result
}

// textSignals interprets entry clauses then exit clauses, so a Sell from an
// exit clause overwrites a Buy on the same bar
func (g *Generator) textSignals(panel *indicators.Panel, spec Spec, result *Result) *SignalSeries {
	out := NewSignalSeries(panel.Timestamps())
	for _, clause := range g.clauses(spec, result) {
		contribution, ok := g.interpret(clause, panel)
		if !ok {
			result.Unmatched = append(result.Unmatched, clause.Text)
			g.log.Warning("%v (%s clause %q)", bterrors.NewConditionParseError(clause.Text), clause.Role, clause.Text)
			continue
		}
		signal := clause.Role.Signal()
		fired := 0
		for i, fires := range contribution.Fires {
			if fires && i < out.Len() {
				out.Set(i, signal, fmt.Sprintf("%s: %s", clause.Text, contribution.Reason))
				fired++
			}
		}
		g.log.Debug("%s clause %q fired on %d bars (%s)", clause.Role, clause.Text, fired, contribution.Reason)
	}
	return out
}

// clauses splits the conditions into atomic clauses. A raw excerpt is only
// used when no entry or exit conditions were extracted; its clauses are
// classified by buy and sell keywords.
func (g *Generator) clauses(spec Spec, result *Result) []Clause {
	var clauses []Clause
	for _, condition := range spec.EntryConditions {
		for _, text := range splitClauses(condition) {
			clauses = append(clauses, NewClause(text, RoleEntry))
		}
	}
	for _, condition := range spec.ExitConditions {
		for _, text := range splitClauses(condition) {
			clauses = append(clauses, NewClause(text, RoleExit))
		}
	}
	if len(clauses) > 0 || spec.RawExcerpt == "" {
		return clauses
	}

	var entries, exits []Clause
	for _, text := range splitClauses(spec.RawExcerpt) {
		clause := NewClause(text, RoleEntry)
		action, ok := actionOf(clause.Norm)
		switch {
		case !ok:
			result.Unmatched = append(result.Unmatched, text)
			g.log.Warning("%v (raw excerpt clause %q has no buy or sell keyword)", bterrors.NewConditionParseError(text), text)
		case action == SignalSell:
			clause.Role = RoleExit
			exits = append(exits, clause)
		default:
			entries = append(entries, clause)
		}
	}
	g.log.Info("raw excerpt split into %d entry and %d exit clauses", len(entries), len(exits))
	return append(entries, exits...)
}

// interpret walks the interpreter chain until one matches. A panicking
// interpreter counts as not matching.
func (g *Generator) interpret(clause Clause, panel *indicators.Panel) (contribution *Contribution, ok bool) {
	for _, interpreter := range g.interpreters {
		contribution, ok = g.try(interpreter, clause, panel)
		if ok && contribution != nil {
			g.log.Debug("clause %q matched by %s", clause.Text, interpreter.Name())
			return contribution, true
		}
	}
	return nil, false
}

func (g *Generator) try(interpreter Interpreter, clause Clause, panel *indicators.Panel) (contribution *Contribution, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("interpreter %s failed on %q: %v", interpreter.Name(), clause.Text, bterrors.FromPanic(r))
			contribution, ok = nil, false
		}
	}()
	return interpreter.TryMatch(clause, panel)
}

func selectedKeys(spec Spec) []IndicatorKey {
	var keys []IndicatorKey
	for _, name := range spec.SelectedIndicators {
		if key, ok := ParseIndicatorKey(name); ok {
			keys = append(keys, key)
		}
	}
	return keys
}

// combineAnd keeps a bar only where both series agree on the direction
func combineAnd(text, selected *SignalSeries) *SignalSeries {
	out := NewSignalSeries(text.Timestamps)
	for i := range out.Values {
		if i >= selected.Len() {
			break
		}
		if text.Values[i] != SignalHold && text.Values[i] == selected.Values[i] {
			out.Set(i, text.Values[i], text.Reason(i)+" AND "+selected.Reason(i))
		}
	}
	return out
}
