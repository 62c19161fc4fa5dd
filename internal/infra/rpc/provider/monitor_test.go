package provider

import (
	"testing"
	"time"
)

func TestMonitorAccumulation(t *testing.T) {
	m := NewProviderMonitor()

	m.RecordRequest(100 * time.Millisecond)

	stats := m.GetStats()
	if stats.RequestsLast1Hour != 1 {
		t.Errorf("Expected 1 request, got %d", stats.RequestsLast1Hour)
	}

	for i := 0; i < 100; i++ {
		m.RecordRequest(50 * time.Millisecond)
	}

	stats = m.GetStats()
	if stats.RequestsLast1Hour != 101 {
		t.Errorf("Expected 101 requests, got %d", stats.RequestsLast1Hour)
	}
	if stats.Status != "healthy" {
		t.Errorf("Expected healthy, got %s", stats.Status)
	}
}

func TestMonitorThrottle(t *testing.T) {
	m := NewProviderMonitor()

	m.RecordThrottle(429, 0)
	if got := m.CheckProviderStatus(); got != StatusThrottled {
		t.Errorf("Expected throttled after 429, got %v", got)
	}
	if m.GetRetryAfter() <= 0 {
		t.Error("Expected positive retry-after")
	}

	m.RecordThrottle(403, 0)
	if got := m.CheckProviderStatus(); got != StatusBlocked {
		t.Errorf("Expected blocked after 403, got %v", got)
	}
}

func TestMonitorDegraded(t *testing.T) {
	m := NewProviderMonitor()
	for i := 0; i < 20; i++ {
		m.RecordRequest(5 * time.Second)
	}
	if got := m.CheckProviderStatus(); got != StatusDegraded {
		t.Errorf("Expected degraded for slow responses, got %v", got)
	}
}

func TestDetectThrottlePattern(t *testing.T) {
	m := NewProviderMonitor()
	if !m.DetectThrottlePattern("Rate limit exceeded for this key") {
		t.Error("expected throttle pattern match")
	}
	if m.DetectThrottlePattern("no accounts found for address") {
		t.Error("unexpected throttle pattern match")
	}
}
