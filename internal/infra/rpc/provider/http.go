package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/vietddude/algowatch/internal/core/domain"
	"github.com/vietddude/algowatch/internal/infra/rpc/budget"
	"github.com/vietddude/algowatch/internal/metrics"
)

// maxErrorBody bounds how much of an error response is kept in messages.
const maxErrorBody = 512

// HTTPConfig configures an HTTPProvider.
type HTTPConfig struct {
	Name        string
	BaseURL     string
	TokenHeader string // e.g. X-Algo-API-Token
	Token       string
	Timeout     time.Duration
	RateLimit   float64 // requests per second, 0 = unlimited
	Burst       int
	DailyQuota  int // calls per day, 0 = unlimited
}

// HTTPProvider implements Provider for JSON REST endpoints.
type HTTPProvider struct {
	name        string
	baseURL     string
	tokenHeader string
	token       string
	httpClient  *http.Client
	limiter     *rate.Limiter
	budget      *budget.Tracker

	mu           sync.RWMutex
	health       HealthStatus
	totalLatency time.Duration
	successCount int
	failureCount int
	requestCount int

	Monitor *ProviderMonitor
}

// NewHTTPProvider creates a new HTTP-based REST provider.
func NewHTTPProvider(cfg HTTPConfig) *HTTPProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	p := &HTTPProvider{
		name:        cfg.Name,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		tokenHeader: cfg.TokenHeader,
		token:       cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		health: HealthStatus{
			Available:     true,
			LastSuccessAt: time.Now(),
		},
		budget:  budget.NewTracker(cfg.DailyQuota),
		Monitor: NewProviderMonitor(),
	}

	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return p
}

// Get performs a GET request and decodes the JSON response into out.
func (p *HTTPProvider) Get(ctx context.Context, r Request, out any) error {
	start := time.Now()
	metrics.UpstreamCallsTotal.WithLabelValues(p.name, r.Name).Inc()

	err := p.get(ctx, r, out)

	latency := time.Since(start)
	metrics.UpstreamLatency.WithLabelValues(p.name, r.Name).Observe(latency.Seconds())
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues(p.name, errorType(err)).Inc()
		// Caller cancellation and calls refused before reaching the network
		// say nothing about the provider's health.
		var refused *refusedError
		if !errors.Is(err, context.Canceled) && !errors.As(err, &refused) {
			p.recordFailure()
		}
		return err
	}

	p.Monitor.RecordRequest(latency)
	p.recordSuccess(latency)
	return nil
}

// refusedError marks a call rejected locally without a network round trip.
type refusedError struct {
	*domain.APIError
}

func (e *refusedError) Unwrap() error { return e.APIError }

func (p *HTTPProvider) get(ctx context.Context, r Request, out any) error {
	// Pre-call checks
	if status := p.Monitor.CheckProviderStatus(); status == StatusThrottled || status == StatusBlocked {
		return &refusedError{&domain.APIError{
			Provider: p.name,
			Status:   http.StatusTooManyRequests,
			Message:  fmt.Sprintf("provider %s, retry after %v", status, p.Monitor.GetRetryAfter().Round(time.Second)),
		}}
	}

	if !p.budget.CanMakeCall() {
		return &refusedError{&domain.APIError{
			Provider: p.name,
			Status:   http.StatusTooManyRequests,
			Message:  fmt.Sprintf("daily quota exhausted, resets at %s", p.budget.GetUsage().NextResetAt.Format(time.RFC3339)),
		}}
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	endpoint := p.baseURL + "/" + strings.TrimLeft(r.Path, "/")
	if len(r.Query) > 0 {
		endpoint += "?" + r.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	p.budget.RecordCall(r.Name)
	req.Header.Set("Accept", "application/json")
	if p.token != "" && p.tokenHeader != "" {
		req.Header.Set(p.tokenHeader, p.token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s %s: %v", domain.ErrNetwork, p.name, r.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", domain.ErrNetwork, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
		p.Monitor.RecordThrottle(resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After")))
	}

	if resp.StatusCode != http.StatusOK {
		msg := errorMessage(body)
		status := resp.StatusCode
		if status != http.StatusTooManyRequests && p.Monitor.DetectThrottlePattern(msg) {
			p.Monitor.RecordThrottle(http.StatusTooManyRequests, 0)
			status = http.StatusTooManyRequests
		}
		return &domain.APIError{Provider: p.name, Status: status, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse %s response: %w", r.Name, err)
	}
	return nil
}

// errorMessage extracts the message from an algod/indexer error body.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	if s == "" {
		s = "empty response"
	}
	return s
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func errorType(err error) string {
	var apiErr *domain.APIError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, domain.ErrNetwork):
		return "network"
	case errors.As(err, &apiErr):
		if apiErr.Throttled() {
			return "throttled"
		}
		return "api"
	}
	return "parse"
}

// GetName returns the provider's name.
func (p *HTTPProvider) GetName() string {
	return p.name
}

// GetHealth returns the provider's health status.
func (p *HTTPProvider) GetHealth() HealthStatus {
	p.mu.RLock()
	h := p.health
	p.mu.RUnlock()

	stats := p.Monitor.GetStats()
	h.MonitorStats = &stats
	usage := p.budget.GetUsage()
	h.Budget = &usage
	return h
}

// IsAvailable checks if the provider is available.
func (p *HTTPProvider) IsAvailable() bool {
	status := p.Monitor.CheckProviderStatus()
	return status == StatusHealthy || status == StatusDegraded
}

// Close cleans up resources.
func (p *HTTPProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

func (p *HTTPProvider) recordSuccess(latency time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.successCount++
	p.requestCount++
	p.totalLatency += latency
	p.health.LastSuccessAt = time.Now()
	p.health.Available = true

	if p.requestCount > 0 {
		p.health.ErrorRate = float64(p.failureCount) / float64(p.requestCount)
	}
	if p.successCount > 0 {
		p.health.Latency = p.totalLatency / time.Duration(p.successCount)
	}
}

func (p *HTTPProvider) recordFailure() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failureCount++
	p.requestCount++
	p.health.LastFailureAt = time.Now()

	if p.requestCount > 0 {
		p.health.ErrorRate = float64(p.failureCount) / float64(p.requestCount)
	}

	if p.health.ErrorRate > 0.5 {
		p.health.Available = false
	}
}
