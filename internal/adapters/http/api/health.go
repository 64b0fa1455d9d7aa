package api

import (
	"net/http"
)

// CapabilityReporter tells health checks whether live evaluation is possible.
type CapabilityReporter interface {
	EvaluationConfigured() bool
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	caps CapabilityReporter
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(caps CapabilityReporter) *HealthHandler {
	return &HealthHandler{caps: caps}
}

type healthResponse struct {
	Status     string `json:"status"`
	Evaluation string `json:"evaluation"`
}

// HandleHealth handles GET /healthz requests. Degraded mode is still healthy.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	mode := "degraded"
	if h.caps != nil && h.caps.EvaluationConfigured() {
		mode = "live"
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Evaluation: mode})
}

// HandleReady handles GET /readyz requests.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
