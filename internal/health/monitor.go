package health

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/algowatch/internal/infra/rpc/provider"
)

// Probe checks a dependency such as the database or the cache.
type Probe func(ctx context.Context) error

type probe struct {
	check Probe
	// failStatus is reported when the probe fails.
	failStatus SystemStatus
}

// Monitor aggregates health status from the upstream providers and local stores.
type Monitor struct {
	network    string
	providers  []provider.Provider
	probes     map[string]probe
	interval   time.Duration
	lastCheck  time.Time
	lastReport *HealthReport
	mu         sync.Mutex
}

// NewMonitor creates a new health monitor.
func NewMonitor(network string, providers ...provider.Provider) *Monitor {
	return &Monitor{
		network:   network,
		providers: providers,
		probes:    make(map[string]probe),
		interval:  10 * time.Second,
	}
}

// SetProviders replaces the upstream providers, e.g. after a node switch.
func (m *Monitor) SetProviders(providers ...provider.Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers = providers
	m.lastReport = nil
}

// AddProbe registers a dependency check. A failing critical probe makes the
// whole system critical; otherwise it only degrades it.
func (m *Monitor) AddProbe(name string, check Probe, critical bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status := StatusDegraded
	if critical {
		status = StatusCritical
	}
	m.probes[name] = probe{check: check, failStatus: status}
	m.lastReport = nil
}

// CheckHealth builds a report for all components.
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Rate limit checks to avoid hammering the backends
	if m.lastReport != nil && time.Since(m.lastCheck) < m.interval {
		return *m.lastReport
	}

	report := HealthReport{
		SystemStatus: StatusHealthy,
		Network:      m.network,
		CheckedAt:    time.Now().UTC(),
		Components:   make(map[string]ComponentHealth),
	}

	for _, p := range m.providers {
		h := providerHealth(p)
		report.Components[h.Name] = h
		report.SystemStatus = worst(report.SystemStatus, h.Status)
	}

	for name, pr := range m.probes {
		h := ComponentHealth{Name: name, Status: StatusHealthy}
		start := time.Now()
		if err := pr.check(ctx); err != nil {
			h.Status = pr.failStatus
			h.Error = err.Error()
		}
		h.Latency = time.Since(start)
		report.Components[name] = h
		report.SystemStatus = worst(report.SystemStatus, h.Status)
	}

	m.lastCheck = time.Now()
	m.lastReport = &report
	return report
}

func providerHealth(p provider.Provider) ComponentHealth {
	hs := p.GetHealth()
	h := ComponentHealth{
		Name:      p.GetName(),
		Status:    StatusHealthy,
		Latency:   hs.Latency,
		ErrorRate: hs.ErrorRate,
		Provider:  hs.MonitorStats,
		Budget:    hs.Budget,
	}

	switch {
	case !hs.Available:
		h.Status = StatusCritical
	case hs.ErrorRate > 0.5:
		h.Status = StatusCritical
	case hs.ErrorRate > 0.1:
		h.Status = StatusDegraded
	case hs.Budget != nil && hs.Budget.DailyLimit > 0 && hs.Budget.RemainingCalls == 0:
		h.Status = StatusCritical
	case hs.MonitorStats != nil && hs.MonitorStats.Status != provider.StatusHealthy.String():
		h.Status = StatusDegraded
	case hs.Budget != nil && hs.Budget.UsagePercentage >= 90:
		h.Status = StatusDegraded
	}
	return h
}
