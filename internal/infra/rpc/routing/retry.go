package routing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/vietddude/algowatch/internal/core/domain"
	"github.com/vietddude/algowatch/internal/infra/rpc/provider"
)

// RetryConfig defines retry behavior.
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig provides sensible defaults for interactive history loads.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     3,
	InitialDelay:    250 * time.Millisecond,
	MaxDelay:        2 * time.Second,
	BackoffMultiple: 2.0,
}

// ErrorAction determines how to handle an error.
type ErrorAction int

const (
	ActionRetry ErrorAction = iota
	ActionFailover
	ActionFatal
)

// ClassifyError determines the action for a given error.
func ClassifyError(err error) ErrorAction {
	if err == nil {
		return ActionRetry
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ActionFatal
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		// Provider specific issues; waiting here would only burn the quota.
		if apiErr.Throttled() {
			return ActionFailover
		}
		if apiErr.Retryable() {
			return ActionRetry
		}
		return ActionFatal
	}

	if errors.Is(err, domain.ErrNetwork) {
		return ActionRetry
	}

	// Parse errors and validation errors will not go away on their own.
	return ActionFatal
}

// GetWithRetry executes a REST call with exponential backoff.
func GetWithRetry(
	ctx context.Context,
	p provider.Provider,
	req provider.Request,
	out any,
	config RetryConfig,
) error {
	var lastErr error
	attempts := max(config.MaxAttempts, 1)

	for attempt := 0; attempt < attempts; attempt++ {
		err := p.Get(ctx, req, out)
		if err == nil {
			return nil
		}

		lastErr = err

		if action := ClassifyError(err); action != ActionRetry {
			return err
		}

		if attempt == attempts-1 {
			break
		}

		delay := calculateBackoff(attempt, config)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	delay := float64(config.InitialDelay) * math.Pow(config.BackoffMultiple, float64(attempt))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	return time.Duration(delay)
}
