// Package pending polls the node's transaction pool for an account while a
// consumer is watching it.
package pending

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vietddude/algowatch/internal/core/domain"
	"github.com/vietddude/algowatch/internal/metrics"
)

// DefaultInterval is the delay between two polls.
const DefaultInterval = 800 * time.Millisecond

// ErrAlreadyRunning is returned by Start on a running poller.
var ErrAlreadyRunning = errors.New("poller already running")

// Fetcher reads pool transactions for an account.
// chain.Adapter satisfies it directly.
type Fetcher interface {
	PendingTransactions(ctx context.Context, address string, limit int) (*domain.PendingSnapshot, error)
}

// Sink receives every successful snapshot, in poll order. It runs on the
// poller goroutine and must not call Stop.
type Sink func(snap *domain.PendingSnapshot)

// Config holds poller settings.
type Config struct {
	Address  string
	Interval time.Duration
	Max      int
}

// Poller fetches pending transactions on a fixed interval until stopped.
// It can be started again after Stop.
type Poller struct {
	fetcher Fetcher
	cfg     Config
	sink    Sink
	log     *slog.Logger

	mu  sync.Mutex // guards cur
	cur *run

	latest atomic.Pointer[domain.PendingSnapshot]
}

type run struct {
	cancel context.CancelFunc
	done   chan struct{}

	deliverMu sync.Mutex
	stopped   bool
}

// NewPoller creates a poller for one account. sink may be nil.
func NewPoller(fetcher Fetcher, cfg Config, sink Sink) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Poller{
		fetcher: fetcher,
		cfg:     cfg,
		sink:    sink,
		log:     slog.Default().With("component", "pending_poller", "address", cfg.Address),
	}
}

// Start launches the polling loop. The first poll happens immediately.
// Cancelling ctx stops the loop like Stop does.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cur != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	r := &run{cancel: cancel, done: make(chan struct{})}
	p.cur = r

	go p.loop(ctx, r)
	return nil
}

// Stop cancels the loop and waits for it to exit. Once Stop returns no
// fetch is in progress and the sink will not be called again.
func (p *Poller) Stop() {
	p.mu.Lock()
	r := p.cur
	p.cur = nil
	p.mu.Unlock()

	if r == nil {
		return
	}

	r.deliverMu.Lock()
	r.stopped = true
	r.deliverMu.Unlock()

	r.cancel()
	<-r.done
}

// Running reports whether the loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cur != nil
}

// Latest returns the most recent snapshot, or nil before the first success.
func (p *Poller) Latest() *domain.PendingSnapshot {
	return p.latest.Load()
}

func (p *Poller) loop(ctx context.Context, r *run) {
	defer close(r.done)
	defer p.release(r)

	metrics.ActivePollers.Inc()
	defer metrics.ActivePollers.Dec()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			p.poll(ctx, r)
			timer.Reset(p.cfg.Interval)
		}
	}
}

// release forgets r if it is still the current run, so a poller whose
// context was cancelled can be started again.
func (p *Poller) release(r *run) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cur == r {
		p.cur = nil
	}
}

func (p *Poller) poll(ctx context.Context, r *run) {
	snap, err := p.fetcher.PendingTransactions(ctx, p.cfg.Address, p.cfg.Max)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		// No retry: the next tick is the retry.
		metrics.PendingPolls.WithLabelValues("error").Inc()
		p.log.Debug("Pending poll failed", "error", err)
		return
	}
	metrics.PendingPolls.WithLabelValues("ok").Inc()

	r.deliverMu.Lock()
	defer r.deliverMu.Unlock()
	if r.stopped {
		return
	}
	p.latest.Store(snap)
	if p.sink != nil {
		p.sink(snap)
	}
}
