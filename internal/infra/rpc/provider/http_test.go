package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/vietddude/algowatch/internal/core/domain"
)

func TestHTTPProvider_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/status" {
			t.Errorf("expected path /v2/status, got %s", r.URL.Path)
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodGet {
			t.Errorf("expected method GET, got %s", r.Method)
		}
		if got := r.Header.Get("X-Algo-API-Token"); got != "tok" {
			t.Errorf("expected token header tok, got %q", got)
		}
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("expected format=json, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"last-round": 42})
	}))
	defer server.Close()

	p := NewHTTPProvider(HTTPConfig{
		Name:        "algod-mock",
		BaseURL:     server.URL + "/",
		TokenHeader: "X-Algo-API-Token",
		Token:       "tok",
		Timeout:     5 * time.Second,
	})

	var out struct {
		LastRound uint64 `json:"last-round"`
	}
	err := p.Get(context.Background(), Request{
		Name:  "status",
		Path:  "/v2/status",
		Query: url.Values{"format": []string{"json"}},
	}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.LastRound != 42 {
		t.Errorf("expected last-round 42, got %d", out.LastRound)
	}
	if h := p.GetHealth(); !h.Available || h.ErrorRate != 0 {
		t.Errorf("unexpected health %+v", h)
	}
}

func TestHTTPProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no accounts found for address"}`))
	}))
	defer server.Close()

	p := NewHTTPProvider(HTTPConfig{Name: "indexer-mock", BaseURL: server.URL})

	err := p.Get(context.Background(), Request{Name: "account", Path: "/v2/accounts/X"}, nil)
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Errorf("expected 404, got %d", apiErr.Status)
	}
	if apiErr.Message != "no accounts found for address" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
	if domain.IsRetryable(err) {
		t.Error("404 should not be retryable")
	}
}

func TestHTTPProvider_Throttle(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewHTTPProvider(HTTPConfig{Name: "indexer-mock", BaseURL: server.URL})

	err := p.Get(context.Background(), Request{Name: "tx", Path: "/v2/transactions"}, nil)
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || !apiErr.Throttled() {
		t.Fatalf("expected throttled APIError, got %v", err)
	}
	if p.IsAvailable() {
		t.Error("provider should be unavailable while throttled")
	}

	// Second call is short-circuited by the monitor.
	_ = p.Get(context.Background(), Request{Name: "tx", Path: "/v2/transactions"}, nil)
	if calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls)
	}
}

func TestHTTPProvider_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	p := NewHTTPProvider(HTTPConfig{Name: "dead", BaseURL: server.URL, Timeout: time.Second})
	err := p.Get(context.Background(), Request{Name: "status", Path: "/v2/status"}, nil)
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if !domain.IsRetryable(err) {
		t.Error("network errors should be retryable")
	}
}

func TestHTTPProvider_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	p := NewHTTPProvider(HTTPConfig{Name: "limited", BaseURL: server.URL, RateLimit: 1, Burst: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := p.Get(ctx, Request{Name: "a", Path: "/"}, nil); err != nil {
		t.Fatalf("first call should pass: %v", err)
	}
	// The bucket is empty and refills after one second, beyond the deadline.
	if err := p.Get(ctx, Request{Name: "a", Path: "/"}, nil); err == nil {
		t.Fatal("expected limiter to refuse second call before deadline")
	}
}

func TestHTTPProvider_DailyQuota(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	p := NewHTTPProvider(HTTPConfig{Name: "hosted", BaseURL: server.URL, DailyQuota: 2})
	ctx := context.Background()

	for range 2 {
		if err := p.Get(ctx, Request{Name: "health", Path: "/health"}, nil); err != nil {
			t.Fatalf("call within quota failed: %v", err)
		}
	}

	err := p.Get(ctx, Request{Name: "health", Path: "/health"}, nil)
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusTooManyRequests {
		t.Fatalf("expected quota error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 upstream calls, got %d", calls)
	}
	if h := p.GetHealth(); h.Budget == nil || h.Budget.RemainingCalls != 0 {
		t.Errorf("expected spent budget in health, got %+v", h.Budget)
	}

	// Refusals never reached the node and must not count against it.
	for range 5 {
		_ = p.Get(ctx, Request{Name: "health", Path: "/health"}, nil)
	}
	if h := p.GetHealth(); !h.Available || h.ErrorRate != 0 {
		t.Errorf("expected healthy provider after local refusals, got available=%v error_rate=%v", h.Available, h.ErrorRate)
	}
}
