package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Run metrics
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtester_runs_total",
			Help: "Total number of backtest runs by outcome",
		},
		[]string{"status"},
	)

	runDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backtester_run_duration_seconds",
			Help:    "Wall time of a full backtest pipeline",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"symbol"},
	)

	stageFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtester_stage_failures_total",
			Help: "Total number of stage failures converted into error results",
		},
		[]string{"stage"},
	)

	// Trading metrics
	tradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtester_trades_total",
			Help: "Total number of simulated trades by outcome",
		},
		[]string{"symbol", "outcome"},
	)

	tradeReturn = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backtester_trade_return_percent",
			Help:    "Distribution of simulated trade returns in percent",
			Buckets: []float64{-20, -10, -5, -2, -1, 0, 1, 2, 5, 10, 20},
		},
		[]string{"symbol"},
	)

	// Strategy metrics
	signalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtester_signals_total",
			Help: "Total number of non-hold signals by policy source",
		},
		[]string{"source"},
	)

	unmatchedClausesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "backtester_unmatched_clauses_total",
			Help: "Total number of strategy clauses no interpreter understood",
		},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtester_errors_total",
			Help: "Total number of errors by category",
		},
		[]string{"type"},
	)
)

func init() {
	// Register metrics
	prometheus.MustRegister(runsTotal)
	prometheus.MustRegister(runDuration)
	prometheus.MustRegister(stageFailuresTotal)
	prometheus.MustRegister(tradesTotal)
	prometheus.MustRegister(tradeReturn)
	prometheus.MustRegister(signalsTotal)
	prometheus.MustRegister(unmatchedClausesTotal)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// Recorder receives run-level measurements from the orchestrator
type Recorder interface {
	RecordRun(symbol, status string, duration time.Duration)
	RecordStageFailure(stage, category string)
	RecordTrade(symbol string, pnlPercent float64)
	RecordSignals(source string, count int)
	RecordUnmatchedClauses(count int)
}

// PrometheusRecorder writes measurements to the default Prometheus registry
type PrometheusRecorder struct{}

// NewPrometheusRecorder creates a recorder backed by the package collectors
func NewPrometheusRecorder() *PrometheusRecorder {
	return &PrometheusRecorder{}
}

func (PrometheusRecorder) RecordRun(symbol, status string, duration time.Duration) {
	runsTotal.WithLabelValues(status).Inc()
	runDuration.WithLabelValues(symbol).Observe(duration.Seconds())
}

func (PrometheusRecorder) RecordStageFailure(stage, category string) {
	stageFailuresTotal.WithLabelValues(stage).Inc()
	RecordError(category)
}

func (PrometheusRecorder) RecordTrade(symbol string, pnlPercent float64) {
	outcome := "loss"
	if pnlPercent > 0 {
		outcome = "win"
	}
	tradesTotal.WithLabelValues(symbol, outcome).Inc()
	tradeReturn.WithLabelValues(symbol).Observe(pnlPercent)
}

func (PrometheusRecorder) RecordSignals(source string, count int) {
	signalsTotal.WithLabelValues(source).Add(float64(count))
}

func (PrometheusRecorder) RecordUnmatchedClauses(count int) {
	unmatchedClausesTotal.Add(float64(count))
}

// NopRecorder discards every measurement
type NopRecorder struct{}

func (NopRecorder) RecordRun(string, string, time.Duration) {}
func (NopRecorder) RecordStageFailure(string, string)       {}
func (NopRecorder) RecordTrade(string, float64)             {}
func (NopRecorder) RecordSignals(string, int)               {}
func (NopRecorder) RecordUnmatchedClauses(int)              {}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
