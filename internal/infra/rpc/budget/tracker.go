// Package budget tracks daily request quotas of upstream providers.
//
// Hosted indexer and algod services usually sell a fixed number of calls per
// day. A Tracker counts calls against that allowance and reports usage so the
// provider can refuse calls once it is spent instead of being blocked.
package budget

import (
	"sync"
	"time"
)

// UsageStats holds quota usage statistics.
type UsageStats struct {
	TotalCalls      int            `json:"total_calls"`
	CallsPerHour    int            `json:"calls_this_hour"`
	DailyLimit      int            `json:"daily_limit"`
	RemainingCalls  int            `json:"remaining_calls"`
	UsagePercentage float64        `json:"usage_percentage"`
	NextResetAt     time.Time      `json:"next_reset_at"`
	Operations      map[string]int `json:"operations,omitempty"`
}

// Tracker counts calls against a daily limit. A zero limit never refuses calls.
type Tracker struct {
	mu            sync.RWMutex
	dailyLimit    int
	totalCalls    int
	callsThisHour int
	hourStartTime time.Time
	operations    map[string]int
	resetTime     time.Time
	now           func() time.Time
}

// NewTracker creates a tracker that resets at local midnight.
func NewTracker(dailyLimit int) *Tracker {
	return newTracker(dailyLimit, time.Now)
}

func newTracker(dailyLimit int, now func() time.Time) *Tracker {
	t := &Tracker{
		dailyLimit: dailyLimit,
		operations: make(map[string]int),
		now:        now,
	}
	t.resetUnsafe()
	return t
}

// RecordCall records a call for quota tracking.
func (t *Tracker) RecordCall(operation string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if now.After(t.resetTime) {
		t.resetUnsafe()
	}
	if now.Sub(t.hourStartTime) >= time.Hour {
		t.callsThisHour = 0
		t.hourStartTime = now
	}

	t.totalCalls++
	t.callsThisHour++
	t.operations[operation]++
}

// CanMakeCall checks if a call can be made within budget.
func (t *Tracker) CanMakeCall() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.dailyLimit <= 0 {
		return true
	}
	if t.now().After(t.resetTime) {
		t.resetUnsafe()
	}
	return t.totalCalls < t.dailyLimit
}

// GetUsage returns usage statistics.
func (t *Tracker) GetUsage() UsageStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ops := make(map[string]int, len(t.operations))
	for k, v := range t.operations {
		ops[k] = v
	}

	stats := UsageStats{
		TotalCalls:   t.totalCalls,
		CallsPerHour: t.callsThisHour,
		DailyLimit:   t.dailyLimit,
		NextResetAt:  t.resetTime,
		Operations:   ops,
	}
	if t.dailyLimit > 0 {
		stats.RemainingCalls = max(t.dailyLimit-t.totalCalls, 0)
		stats.UsagePercentage = float64(t.totalCalls) / float64(t.dailyLimit) * 100
	}
	return stats
}

func (t *Tracker) resetUnsafe() {
	now := t.now()
	t.totalCalls = 0
	t.callsThisHour = 0
	t.hourStartTime = now
	t.operations = make(map[string]int)
	t.resetTime = time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}
