package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

// HealthChecker reports the progress of a long batch over HTTP
type HealthChecker struct {
	mu        sync.RWMutex
	total     int
	completed int
	failed    int
	lastRun   time.Time
	errors    []string
}

type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Total     int       `json:"total"`
	Completed int       `json:"completed"`
	Failed    int       `json:"failed"`
	LastRun   time.Time `json:"last_run"`
	Uptime    string    `json:"uptime"`
	Errors    []string  `json:"errors,omitempty"`
}

// maxHealthErrors bounds the error list kept for the health report
const maxHealthErrors = 20

func NewHealthChecker(total int) *HealthChecker {
	return &HealthChecker{
		total:  total,
		errors: make([]string, 0),
	}
}

// RecordResult marks one run as finished; errMsg is empty on success
func (h *HealthChecker) RecordResult(errMsg string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.completed++
	h.lastRun = time.Now()
	if errMsg != "" {
		h.failed++
		if len(h.errors) < maxHealthErrors {
			h.errors = append(h.errors, errMsg)
		}
	}
}

// Status returns a snapshot of the batch health
func (h *HealthChecker) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "running"
	if h.completed >= h.total {
		status = "done"
	}
	if h.failed > 0 {
		status = "degraded"
	}
	if h.total > 0 && h.failed == h.total {
		status = "unhealthy"
	}

	errs := make([]string, len(h.errors))
	copy(errs, h.errors)
	return HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		Total:     h.total,
		Completed: h.completed,
		Failed:    h.failed,
		LastRun:   h.lastRun,
		Uptime:    time.Since(startTime).String(),
		Errors:    errs,
	}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	health := h.Status()

	w.Header().Set("Content-Type", "application/json")
	if health.Status == "unhealthy" {
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(health)
}
