package logger

import (
	"fmt"
	"sync"
)

// Severity represents the level of an event
type Severity string

const (
	SeverityDebug Severity = "DEBUG"
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Stage names a pipeline stage that emits events
type Stage string

const (
	StageData         Stage = "data"
	StageIndicators   Stage = "indicators"
	StageSignals      Stage = "signals"
	StageSimulation   Stage = "simulation"
	StageMetrics      Stage = "metrics"
	StageOrchestrator Stage = "orchestrator"
	StageValidation   Stage = "validation"
	StageOptimization Stage = "optimization"
)

// Event is one structured log record
type Event struct {
	Stage    Stage    `json:"stage"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// String formats the event as a single log line
func (e Event) String() string {
	return fmt.Sprintf("[%s] [%s] %s", e.Severity, e.Stage, e.Message)
}

// Sink receives events from the pipeline
type Sink interface {
	Emit(e Event)
}

// Nop discards every event
type Nop struct{}

// Emit implements Sink
func (Nop) Emit(Event) {}

// Collector keeps events in memory for the caller to inspect after a run
type Collector struct {
	mu     sync.Mutex
	events []Event
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{events: make([]Event, 0)}
}

// Emit implements Sink
func (c *Collector) Emit(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

// Events returns a copy of the collected events in emission order
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Filter returns collected events of the given stage and severity.
// An empty stage or severity matches everything.
func (c *Collector) Filter(stage Stage, severity Severity) []Event {
	var out []Event
	for _, e := range c.Events() {
		if stage != "" && e.Stage != stage {
			continue
		}
		if severity != "" && e.Severity != severity {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Multi fans every event out to several sinks
type Multi []Sink

// Emit implements Sink
func (m Multi) Emit(e Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(e)
		}
	}
}

// Scoped binds a sink to a stage and offers printf-style helpers
type Scoped struct {
	sink  Sink
	stage Stage
}

// For returns a stage-scoped logger. A nil sink discards events.
func For(sink Sink, stage Stage) Scoped {
	if sink == nil {
		sink = Nop{}
	}
	return Scoped{sink: sink, stage: stage}
}

// Log emits an event with the given severity
func (s Scoped) Log(severity Severity, format string, args ...interface{}) {
	s.sink.Emit(Event{Stage: s.stage, Severity: severity, Message: fmt.Sprintf(format, args...)})
}

// Debug logs a debug message
func (s Scoped) Debug(format string, args ...interface{}) {
	s.Log(SeverityDebug, format, args...)
}

// Info logs an info message
func (s Scoped) Info(format string, args ...interface{}) {
	s.Log(SeverityInfo, format, args...)
}

// Warning logs a warning message
func (s Scoped) Warning(format string, args ...interface{}) {
	s.Log(SeverityWarn, format, args...)
}

// Error logs an error message
func (s Scoped) Error(format string, args ...interface{}) {
	s.Log(SeverityError, format, args...)
}
