package history

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vietddude/algowatch/internal/core/domain"
)

var testAddr = domain.EncodeAddress(make([]byte, 32))

// fakeSource serves pages keyed by cursor token and records every query.
type fakeSource struct {
	mu      sync.Mutex
	pages   map[string]*domain.TxPage
	queries []domain.TxQuery
	err     error
	block   chan struct{}
}

func (f *fakeSource) AccountTransactions(ctx context.Context, q domain.TxQuery) (*domain.TxPage, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	block := f.block
	err := f.err
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	page, ok := f.pages[q.Next]
	if !ok {
		return &domain.TxPage{}, nil
	}
	return page, nil
}

func (f *fakeSource) lastQuery() domain.TxQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func tx(id string, ts time.Time) *domain.Transaction {
	return &domain.Transaction{ID: id, RoundTime: ts}
}

func at(day, hour int) time.Time {
	return time.Date(2024, 5, day, hour, 0, 0, 0, time.UTC)
}

func threePageSource() *fakeSource {
	return &fakeSource{pages: map[string]*domain.TxPage{
		"": {
			Transactions: []*domain.Transaction{tx("a", at(20, 18)), tx("b", at(20, 9)), tx("c", at(19, 23))},
			NextToken:    "t1",
		},
		"t1": {
			// Same day as the last row of the previous page: no separator.
			Transactions: []*domain.Transaction{tx("d", at(19, 1)), tx("e", at(17, 12))},
			NextToken:    "t2",
		},
		"t2": {
			// Different day from the previous page: separator first.
			Transactions: []*domain.Transaction{tx("f", at(16, 12))},
		},
	}}
}

func kinds(items []domain.HistoryItem) string {
	s := ""
	for _, it := range items {
		if it.Kind == domain.ItemKindSeparator {
			s += "|"
		} else {
			s += it.Transaction.ID
		}
	}
	return s
}

func TestPager_SeparatorsAcrossPages(t *testing.T) {
	src := threePageSource()
	p, err := NewPager(src, Query{Address: testAddr})
	if err != nil {
		t.Fatalf("NewPager: %v", err)
	}

	want := []string{"ab|c", "d|e", "|f"}
	var got []string
	for page, err := range p.Pages(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, kinds(page.Items))
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d pages, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("page %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	if !p.Done() {
		t.Error("pager should be done")
	}
	if _, err := p.Next(context.Background()); !errors.Is(err, ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
}

func TestPager_SeparatorDate(t *testing.T) {
	items := InsertDateSeparators([]*domain.Transaction{
		tx("a", at(20, 1)), tx("b", at(19, 23)),
	}, time.UTC)

	if len(items) != 3 || items[1].Kind != domain.ItemKindSeparator {
		t.Fatalf("unexpected items %q", kinds(items))
	}
	if !items[1].Date.Equal(time.Date(2024, 5, 19, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("separator should carry the following day, got %v", items[1].Date)
	}
}

func TestPager_SeparatorUsesLocation(t *testing.T) {
	// 23:00 and 01:00 UTC are on the same day at UTC-3.
	loc := time.FixedZone("UTC-3", -3*3600)
	txs := []*domain.Transaction{
		tx("a", time.Date(2024, 5, 20, 1, 0, 0, 0, time.UTC)),
		tx("b", time.Date(2024, 5, 19, 23, 0, 0, 0, time.UTC)),
	}

	if got := kinds(InsertDateSeparators(txs, loc)); got != "ab" {
		t.Errorf("expected no separator in UTC-3, got %q", got)
	}
	if got := kinds(InsertDateSeparators(txs, time.UTC)); got != "a|b" {
		t.Errorf("expected separator in UTC, got %q", got)
	}
}

func TestPager_SeparatorIffDayDiffers(t *testing.T) {
	times := []time.Time{
		at(20, 23), at(20, 0), at(19, 12), at(19, 11), at(10, 5),
		time.Date(2024, 4, 10, 5, 0, 0, 0, time.UTC), // same day-of-month, different month
	}
	var txs []*domain.Transaction
	for i, ts := range times {
		txs = append(txs, tx(string(rune('a'+i)), ts))
	}

	items := InsertDateSeparators(txs, time.UTC)
	for i := 1; i < len(items); i++ {
		if items[i].Kind == domain.ItemKindSeparator {
			continue
		}
		prev := items[i-1]
		hasSep := prev.Kind == domain.ItemKindSeparator
		var before *domain.Transaction
		if hasSep {
			before = items[i-2].Transaction
		} else {
			before = prev.Transaction
		}
		differs := !domain.StartOfDay(before.RoundTime, time.UTC).Equal(domain.StartOfDay(items[i].Transaction.RoundTime, time.UTC))
		if hasSep != differs {
			t.Errorf("item %s: separator=%v but day differs=%v", items[i].Transaction.ID, hasSep, differs)
		}
	}
	if items[0].Kind != domain.ItemKindTransaction {
		t.Error("nothing should precede the first transaction")
	}
}

func TestPager_ErrorKeepsCursor(t *testing.T) {
	src := threePageSource()
	p, _ := NewPager(src, Query{Address: testAddr})

	if _, err := p.Next(context.Background()); err != nil {
		t.Fatalf("first page: %v", err)
	}

	src.mu.Lock()
	src.err = &domain.APIError{Status: 503, Message: "unavailable"}
	src.mu.Unlock()

	if _, err := p.Next(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if p.Cursor() != "t1" {
		t.Errorf("cursor should stay at t1, got %q", p.Cursor())
	}

	src.mu.Lock()
	src.err = nil
	src.mu.Unlock()

	page, err := p.Next(context.Background())
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if page.Token != "t1" || kinds(page.Items) != "d|e" {
		t.Errorf("retry returned wrong page: token=%q items=%q", page.Token, kinds(page.Items))
	}
}

func TestPager_SameCursorSamePage(t *testing.T) {
	src := threePageSource()
	p1, _ := NewPager(src, Query{Address: testAddr}, WithStartToken("t1"))
	p2, _ := NewPager(src, Query{Address: testAddr}, WithStartToken("t1"))

	a, err := p1.Next(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := p2.Next(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if kinds(a.Items) != kinds(b.Items) || a.NextToken != b.NextToken {
		t.Errorf("same cursor gave different pages: %q/%q vs %q/%q",
			kinds(a.Items), a.NextToken, kinds(b.Items), b.NextToken)
	}
}

func TestPager_FilterChangeResets(t *testing.T) {
	src := threePageSource()
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	p, _ := NewPager(src, Query{Address: testAddr}, WithClock(func() time.Time { return now }))

	_, _ = p.Next(context.Background())
	_, _ = p.Next(context.Background())
	if p.Cursor() != "t2" {
		t.Fatalf("expected cursor t2, got %q", p.Cursor())
	}

	changed, err := p.SetQuery(Query{Address: testAddr, Filter: domain.DateFilter{Kind: domain.DateFilterToday}})
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatal("expected query change")
	}
	if p.Cursor() != "" || p.Done() {
		t.Fatalf("expected cursor reset, got %q done=%v", p.Cursor(), p.Done())
	}

	page, err := p.Next(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if page.Number != 0 || page.Token != "" {
		t.Errorf("expected first page after filter change, got number=%d token=%q", page.Number, page.Token)
	}

	q := src.lastQuery()
	if q.Next != "" {
		t.Errorf("expected empty cursor, got %q", q.Next)
	}
	if !q.After.Equal(time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)) ||
		!q.Before.Equal(time.Date(2024, 5, 21, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected range %v - %v", q.After, q.Before)
	}

	// Setting an identical query is a no-op.
	changed, _ = p.SetQuery(Query{Address: testAddr, Filter: domain.DateFilter{Kind: domain.DateFilterToday}})
	if changed {
		t.Error("identical query should not reset")
	}
	if p.Cursor() != "t1" {
		t.Errorf("cursor should be untouched, got %q", p.Cursor())
	}
}

func TestPager_SupersededLoad(t *testing.T) {
	src := threePageSource()
	src.block = make(chan struct{})
	p, _ := NewPager(src, Query{Address: testAddr})

	errCh := make(chan error, 1)
	go func() {
		_, err := p.Next(context.Background())
		errCh <- err
	}()

	// Wait until the load is in flight.
	for {
		src.mu.Lock()
		n := len(src.queries)
		src.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	p.Reset()
	close(src.block)

	if err := <-errCh; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	if p.Cursor() != "" {
		t.Errorf("superseded load must not move the cursor, got %q", p.Cursor())
	}
}

func TestPager_PassesFilters(t *testing.T) {
	src := threePageSource()
	asset := uint64(31566704)
	p, err := NewPager(src, Query{
		Address:  testAddr,
		AssetID:  &asset,
		TxType:   domain.TxTypeAssetTransfer,
		PageSize: 50,
	})
	if err != nil {
		t.Fatal(err)
	}
	_, _ = p.Next(context.Background())

	q := src.lastQuery()
	if q.AssetID == nil || *q.AssetID != asset || q.TxType != domain.TxTypeAssetTransfer || q.Limit != 50 {
		t.Errorf("filters not forwarded: %+v", q)
	}
	if !q.After.IsZero() || !q.Before.IsZero() {
		t.Errorf("all-time filter should be unbounded: %+v", q)
	}
}

func TestQuery_Validate(t *testing.T) {
	var vErr *domain.ValidationError

	if _, err := NewPager(&fakeSource{}, Query{Address: "nope"}); !errors.As(err, &vErr) {
		t.Errorf("expected address validation error, got %v", err)
	}
	if err := (Query{Address: testAddr, TxType: "swap"}).Validate(); !errors.As(err, &vErr) {
		t.Errorf("expected type validation error, got %v", err)
	}
	if err := (Query{Address: testAddr, PageSize: 500}).Validate(); !errors.As(err, &vErr) {
		t.Errorf("expected limit validation error, got %v", err)
	}
}

func TestMergePending(t *testing.T) {
	confirmed := []*domain.Transaction{
		{ID: "X", Sender: "S", Receiver: "R", Amount: 1, FirstValid: 1, LastValid: 2},
	}
	pending := []domain.PendingTransaction{
		{Sender: "S", Receiver: "R", Amount: 1, FirstValid: 1, LastValid: 2},
		{Sender: "S", Receiver: "R", Amount: 2, FirstValid: 1, LastValid: 2},
	}

	merged := MergePending(pending, confirmed)
	if len(merged) != 1 || merged[0].Amount != 2 {
		t.Errorf("expected only the unconfirmed entry, got %+v", merged)
	}
	if len(pending) != 2 {
		t.Error("input slice must not be modified")
	}
}

func TestPager_ResumeWithLastDay(t *testing.T) {
	src := threePageSource()

	// Resuming at t2 without knowing the previous day: no leading separator.
	p, err := NewPager(src, Query{Address: testAddr}, WithStartToken("t2"))
	if err != nil {
		t.Fatalf("NewPager: %v", err)
	}
	page, err := p.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got := kinds(page.Items); got != "f" {
		t.Errorf("expected %q, got %q", "f", got)
	}
	if !page.LastDay.Equal(at(16, 0)) {
		t.Errorf("expected last day %v, got %v", at(16, 0), page.LastDay)
	}

	// With the last shown day the boundary separator is restored.
	p, _ = NewPager(src, Query{Address: testAddr}, WithStartToken("t2"), WithLastDay(at(17, 12)))
	page, err = p.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got := kinds(page.Items); got != "|f" {
		t.Errorf("expected %q, got %q", "|f", got)
	}
}
