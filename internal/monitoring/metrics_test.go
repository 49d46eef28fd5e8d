package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_RecordRun(t *testing.T) {
	before := testutil.ToFloat64(runsTotal.WithLabelValues("ok"))

	NewPrometheusRecorder().RecordRun("BTCUSDT", "ok", 150*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(runsTotal.WithLabelValues("ok")))
}

func TestPrometheusRecorder_RecordTradeOutcome(t *testing.T) {
	wins := testutil.ToFloat64(tradesTotal.WithLabelValues("ETHUSDT", "win"))
	losses := testutil.ToFloat64(tradesTotal.WithLabelValues("ETHUSDT", "loss"))

	recorder := NewPrometheusRecorder()
	recorder.RecordTrade("ETHUSDT", 4.2)
	recorder.RecordTrade("ETHUSDT", 0)
	recorder.RecordTrade("ETHUSDT", -1.5)

	assert.Equal(t, wins+1, testutil.ToFloat64(tradesTotal.WithLabelValues("ETHUSDT", "win")))
	assert.Equal(t, losses+2, testutil.ToFloat64(tradesTotal.WithLabelValues("ETHUSDT", "loss")))
}

func TestPrometheusRecorder_RecordStageFailureCountsError(t *testing.T) {
	stage := testutil.ToFloat64(stageFailuresTotal.WithLabelValues("signals"))
	errs := testutil.ToFloat64(errorsTotal.WithLabelValues("SIMULATION"))

	NewPrometheusRecorder().RecordStageFailure("signals", "SIMULATION")

	assert.Equal(t, stage+1, testutil.ToFloat64(stageFailuresTotal.WithLabelValues("signals")))
	assert.Equal(t, errs+1, testutil.ToFloat64(errorsTotal.WithLabelValues("SIMULATION")))
}

func TestPrometheusRecorder_SignalsAndUnmatched(t *testing.T) {
	signals := testutil.ToFloat64(signalsTotal.WithLabelValues("text"))
	unmatched := testutil.ToFloat64(unmatchedClausesTotal)

	recorder := NewPrometheusRecorder()
	recorder.RecordSignals("text", 7)
	recorder.RecordUnmatchedClauses(2)

	assert.Equal(t, signals+7, testutil.ToFloat64(signalsTotal.WithLabelValues("text")))
	assert.Equal(t, unmatched+2, testutil.ToFloat64(unmatchedClausesTotal))
}

func TestMetricsHandler_ServesRegistry(t *testing.T) {
	NewPrometheusRecorder().RecordRun("BTCUSDT", "ok", time.Second)

	rec := httptest.NewRecorder()
	NewMetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "backtester_runs_total")
}

func TestHealthChecker_Lifecycle(t *testing.T) {
	health := NewHealthChecker(2)
	assert.Equal(t, "running", health.Status().Status)

	health.RecordResult("")
	health.RecordResult("")
	assert.Equal(t, "done", health.Status().Status)
}

func TestHealthChecker_ReportsFailures(t *testing.T) {
	health := NewHealthChecker(2)
	health.RecordResult("bad data")
	assert.Equal(t, "degraded", health.Status().Status)

	health.RecordResult("bad data again")
	rec := httptest.NewRecorder()
	health.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, 2, status.Failed)
	assert.Equal(t, []string{"bad data", "bad data again"}, status.Errors)
}
