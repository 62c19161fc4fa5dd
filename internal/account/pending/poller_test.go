package pending

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vietddude/algowatch/internal/core/domain"
)

type countingFetcher struct {
	calls atomic.Int64
	fail  atomic.Bool
}

func (f *countingFetcher) PendingTransactions(
	ctx context.Context,
	address string,
	limit int,
) (*domain.PendingSnapshot, error) {
	n := f.calls.Add(1)
	if f.fail.Load() {
		return nil, errors.New("algod down")
	}
	return &domain.PendingSnapshot{Address: address, Total: uint64(n)}, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPoller_PollsUntilStopped(t *testing.T) {
	f := &countingFetcher{}
	var mu sync.Mutex
	var delivered []uint64

	p := NewPoller(f, Config{Address: "ADDR", Interval: 5 * time.Millisecond}, func(s *domain.PendingSnapshot) {
		mu.Lock()
		delivered = append(delivered, s.Total)
		mu.Unlock()
	})

	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := p.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}

	waitFor(t, func() bool { return f.calls.Load() >= 3 })
	p.Stop()

	after := f.calls.Load()
	mu.Lock()
	deliveredAtStop := len(delivered)
	mu.Unlock()

	time.Sleep(30 * time.Millisecond)

	if got := f.calls.Load(); got != after {
		t.Errorf("fetch happened after Stop: %d -> %d", after, got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(delivered) != deliveredAtStop {
		t.Errorf("delivery happened after Stop")
	}
	for i := 1; i < len(delivered); i++ {
		if delivered[i] <= delivered[i-1] {
			t.Errorf("deliveries out of order: %v", delivered)
		}
	}
	if p.Running() {
		t.Error("poller should not be running")
	}
	if p.Latest() == nil {
		t.Error("expected a latest snapshot")
	}
}

func TestPoller_DefaultInterval(t *testing.T) {
	p := NewPoller(&countingFetcher{}, Config{Address: "ADDR"}, nil)
	if p.cfg.Interval != 800*time.Millisecond {
		t.Errorf("expected 800ms default, got %v", p.cfg.Interval)
	}
}

func TestPoller_SkipsFailedTicks(t *testing.T) {
	f := &countingFetcher{}
	f.fail.Store(true)

	var deliveries atomic.Int64
	p := NewPoller(f, Config{Address: "ADDR", Interval: 2 * time.Millisecond}, func(*domain.PendingSnapshot) {
		deliveries.Add(1)
	})
	_ = p.Start(context.Background())
	defer p.Stop()

	waitFor(t, func() bool { return f.calls.Load() >= 3 })
	if deliveries.Load() != 0 {
		t.Error("failed polls must not be delivered")
	}

	f.fail.Store(false)
	waitFor(t, func() bool { return deliveries.Load() >= 1 })
}

func TestPoller_ContextCancelStops(t *testing.T) {
	f := &countingFetcher{}
	p := NewPoller(f, Config{Address: "ADDR", Interval: 2 * time.Millisecond}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	_ = p.Start(ctx)
	waitFor(t, func() bool { return f.calls.Load() >= 1 })
	cancel()

	waitFor(t, func() bool { return !p.Running() })

	// Stop after cancellation is a no-op.
	p.Stop()
	after := f.calls.Load()
	time.Sleep(20 * time.Millisecond)
	if f.calls.Load() != after {
		t.Error("fetch happened after cancellation")
	}

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("restart after cancellation failed: %v", err)
	}
	waitFor(t, func() bool { return f.calls.Load() > after })
	p.Stop()
}

func TestPoller_Restart(t *testing.T) {
	f := &countingFetcher{}
	p := NewPoller(f, Config{Address: "ADDR", Interval: 2 * time.Millisecond}, nil)

	_ = p.Start(context.Background())
	waitFor(t, func() bool { return f.calls.Load() >= 1 })
	p.Stop()
	p.Stop() // idempotent

	before := f.calls.Load()
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	waitFor(t, func() bool { return f.calls.Load() > before })
	p.Stop()
}
