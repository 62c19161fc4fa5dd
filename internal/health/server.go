package health

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Register mounts the health and metrics endpoints on r.
func Register(r chi.Router, m *Monitor) {
	r.Get("/health", m.handleHealth)
	r.Get("/health/detailed", m.handleDetailed)
	r.Handle("/metrics", promhttp.Handler())
}

func (m *Monitor) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := m.CheckHealth(r.Context())

	response := map[string]string{"status": string(report.SystemStatus)}
	w.Header().Set("Content-Type", "application/json")

	if report.SystemStatus == StatusCritical {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

func (m *Monitor) handleDetailed(w http.ResponseWriter, r *http.Request) {
	report := m.CheckHealth(r.Context())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
