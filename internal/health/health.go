// Package health provides system health monitoring and status reporting.
package health

import (
	"time"

	"github.com/vietddude/algowatch/internal/infra/rpc/budget"
	"github.com/vietddude/algowatch/internal/infra/rpc/provider"
)

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// ComponentHealth contains health metrics for one backend or store.
type ComponentHealth struct {
	Name      string                 `json:"name"`
	Status    SystemStatus           `json:"status"`
	Latency   time.Duration          `json:"latency_ns,omitempty"`
	ErrorRate float64                `json:"error_rate,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Provider  *provider.MonitorStats `json:"provider,omitempty"`
	Budget    *budget.UsageStats     `json:"budget,omitempty"`
}

// HealthReport contains the full system health report.
type HealthReport struct {
	SystemStatus SystemStatus               `json:"system_status"`
	Network      string                     `json:"network"`
	CheckedAt    time.Time                  `json:"checked_at"`
	Components   map[string]ComponentHealth `json:"components"`
}

// worst returns the more severe of two statuses.
func worst(a, b SystemStatus) SystemStatus {
	rank := func(s SystemStatus) int {
		switch s {
		case StatusCritical:
			return 2
		case StatusDegraded:
			return 1
		}
		return 0
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}
