// Package provider implements REST providers for algod and indexer endpoints.
//
// This package contains:
//   - Provider interface: core abstraction for a REST backend
//   - HTTPProvider: JSON over HTTP implementation with rate limiting
//   - ProviderMonitor: health and throttle tracking
package provider

import (
	"context"
	"net/url"
	"time"

	"github.com/vietddude/algowatch/internal/infra/rpc/budget"
)

// Request describes a single REST call.
type Request struct {
	// Name labels the operation in metrics and logs (e.g. "account_transactions").
	Name string

	// Path is appended to the provider base URL.
	Path string

	// Query parameters, may be nil.
	Query url.Values
}

// Provider defines the core interface for a REST backend.
type Provider interface {
	// GetName returns provider identifier (e.g. "algod", "indexer")
	GetName() string

	// GetHealth returns current health metrics
	GetHealth() HealthStatus

	// IsAvailable checks if the provider is healthy enough to use
	IsAvailable() bool

	// Get performs a GET request and decodes the JSON body into out
	Get(ctx context.Context, req Request, out any) error

	// Close cleans up resources
	Close() error
}

// HealthStatus represents the health state of a provider.
type HealthStatus struct {
	Available     bool               `json:"available"`
	Latency       time.Duration      `json:"latency"`
	ErrorRate     float64            `json:"error_rate"`
	LastSuccessAt time.Time          `json:"last_success_at"`
	LastFailureAt time.Time          `json:"last_failure_at"`
	MonitorStats  *MonitorStats      `json:"monitor_stats,omitempty"`
	Budget        *budget.UsageStats `json:"budget,omitempty"`
}
