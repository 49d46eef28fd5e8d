package strategy

import (
	"github.com/ducminhle1904/strategy-backtester/internal/indicators"
)

// Signal is the per-bar trading direction
type Signal int

const (
	SignalSell Signal = -1
	SignalHold Signal = 0
	SignalBuy  Signal = 1
)

func (s Signal) String() string {
	switch s {
	case SignalHold:
		return "HOLD"
	case SignalBuy:
		return "BUY"
	case SignalSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Role tells whether a clause came from the entry or the exit conditions
type Role int

const (
	RoleEntry Role = iota
	RoleExit
)

func (r Role) String() string {
	if r == RoleExit {
		return "exit"
	}
	return "entry"
}

// Signal returns the direction a firing clause of this role produces
func (r Role) Signal() Signal {
	if r == RoleExit {
		return SignalSell
	}
	return SignalBuy
}

// Clause is one atomic condition taken from a strategy text
type Clause struct {
	Text string // as written
	Norm string // lower-cased, ASCII digits, collapsed whitespace
	Role Role
}

// NewClause builds a clause and its normalized form
func NewClause(text string, role Role) Clause {
	return Clause{Text: text, Norm: normalizeText(text), Role: role}
}

// Contribution marks the bars on which an interpreted clause fires
type Contribution struct {
	Fires  []bool
	Reason string
}

// Count returns the number of firing bars
func (c *Contribution) Count() int {
	return countTrue(c.Fires)
}

// Interpreter turns a clause into a per-bar contribution. ok is false when
// the interpreter does not recognise the clause.
type Interpreter interface {
	Name() string
	TryMatch(clause Clause, panel *indicators.Panel) (contribution *Contribution, ok bool)
}

// DefaultInterpreters returns the interpreter chain in match priority order
func DefaultInterpreters() []Interpreter {
	return []Interpreter{
		NewVolumeInterpreter(),
		NewCandlePatternInterpreter(),
		NewKeywordInterpreter(),
		NewThresholdInterpreter(),
		NewColumnInterpreter(),
		NewPriceActionInterpreter(),
	}
}
