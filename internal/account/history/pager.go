package history

import (
	"context"
	"errors"
	"iter"
	"sync"
	"time"

	"github.com/vietddude/algowatch/internal/core/domain"
	"github.com/vietddude/algowatch/internal/metrics"
)

// Page is one load of decorated history.
type Page struct {
	Number    int                  `json:"number"`
	Token     string               `json:"token,omitempty"`
	NextToken string               `json:"next_token,omitempty"`
	Items     []domain.HistoryItem `json:"items"`
	// LastDay is the calendar day of the last transaction loaded so far.
	LastDay time.Time `json:"last_day,omitzero"`
}

// Transactions returns the transaction rows of the page, skipping separators.
func (p *Page) Transactions() []*domain.Transaction {
	txs := make([]*domain.Transaction, 0, len(p.Items))
	for _, it := range p.Items {
		if it.Kind == domain.ItemKindTransaction {
			txs = append(txs, it.Transaction)
		}
	}
	return txs
}

// Option configures a Pager.
type Option func(*Pager)

// WithLocation sets the zone used to decide calendar days.
func WithLocation(loc *time.Location) Option {
	return func(p *Pager) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithClock overrides time.Now, used to resolve relative date filters.
func WithClock(now func() time.Time) Option {
	return func(p *Pager) { p.now = now }
}

// WithStartToken resumes the listing from a previously returned next token.
// Separator state is not known in that case, so the first row of the resumed
// page is never preceded by a separator unless WithLastDay is also given.
func WithStartToken(token string) Option {
	return func(p *Pager) { p.next = token }
}

// WithLastDay seeds the separator state of a resumed listing with the day of
// the last transaction the caller already shows.
func WithLastDay(day time.Time) Option {
	return func(p *Pager) { p.seedDay = day }
}

// Pager walks an account's history page by page.
//
// Loads are serialized. Changing the query or resetting while a load is in
// flight makes that load return ErrSuperseded instead of its page.
type Pager struct {
	source PageSource
	loc    *time.Location
	now    func() time.Time

	loadMu sync.Mutex // held for the duration of a load

	mu    sync.Mutex
	query Query
	rng   domain.DateRange
	next  string
	page  int
	done  bool
	sep   separatorState
	gen   uint64

	seedDay time.Time
}

// NewPager creates a pager positioned at the first page of q.
func NewPager(source PageSource, q Query, opts ...Option) (*Pager, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	p := &Pager{
		source: source,
		loc:    time.UTC,
		now:    time.Now,
		query:  q,
	}
	for _, opt := range opts {
		opt(p)
	}
	start := p.next
	p.resetLocked()
	p.next = start
	if start != "" && !p.seedDay.IsZero() {
		p.sep.seed(p.seedDay)
	}
	return p, nil
}

// Query returns the current query.
func (p *Pager) Query() Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

// SetQuery replaces the query. Any change, including a different date
// filter, rewinds the pager to the first page. It reports whether the query
// actually changed.
func (p *Pager) SetQuery(q Query) (bool, error) {
	if err := q.Validate(); err != nil {
		return false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.query.Equal(q) {
		return false, nil
	}
	p.query = q
	p.resetLocked()
	return true, nil
}

// Reset rewinds to the first page and re-resolves relative date filters.
func (p *Pager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
}

func (p *Pager) resetLocked() {
	p.gen++
	p.rng = p.query.Filter.Resolve(p.now(), p.loc)
	p.next = ""
	p.page = 0
	p.done = false
	p.sep = newSeparatorState(p.loc)
}

// Done reports whether the last page has been loaded.
func (p *Pager) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Cursor returns the token the next load will use.
func (p *Pager) Cursor() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next
}

// Next loads the following page. On error the cursor stays where it was, so
// calling Next again re-issues the same request.
func (p *Pager) Next(ctx context.Context) (*Page, error) {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return nil, ErrExhausted
	}
	gen := p.gen
	token := p.next
	number := p.page
	sep := p.sep
	tq := p.query.txQuery(p.rng, token)
	p.mu.Unlock()

	raw, err := p.source.AccountTransactions(ctx, tq)

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}

	items := sep.apply(raw.Transactions)
	p.sep = sep
	p.next = raw.NextToken
	p.page++
	p.done = raw.NextToken == ""

	metrics.HistoryPagesFetched.WithLabelValues("pager").Inc()

	return &Page{
		Number:    number,
		Token:     token,
		NextToken: raw.NextToken,
		Items:     items,
		LastDay:   sep.last(),
	}, nil
}

// Pages returns an iterator over the remaining pages. Iteration ends after
// the last page, or after yielding the first error.
func (p *Pager) Pages(ctx context.Context) iter.Seq2[*Page, error] {
	return func(yield func(*Page, error) bool) {
		for {
			page, err := p.Next(ctx)
			if errors.Is(err, ErrExhausted) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(page, nil) {
				return
			}
		}
	}
}
