package history

import (
	"time"

	"github.com/vietddude/algowatch/internal/core/domain"
)

// separatorState remembers the calendar day of the last emitted transaction
// so that separators are placed correctly across page boundaries.
type separatorState struct {
	loc     *time.Location
	lastDay time.Time
	hasLast bool
}

func newSeparatorState(loc *time.Location) separatorState {
	if loc == nil {
		loc = time.UTC
	}
	return separatorState{loc: loc}
}

// seed pretends a transaction on day was already emitted.
func (s *separatorState) seed(day time.Time) {
	s.lastDay = domain.StartOfDay(day, s.loc)
	s.hasLast = true
}

// last returns the day of the last emitted transaction, zero if none.
func (s *separatorState) last() time.Time {
	if !s.hasLast {
		return time.Time{}
	}
	return s.lastDay
}

// apply returns txs as history items, inserting a separator before every
// transaction whose day differs from the one before it. Nothing is inserted
// ahead of the very first transaction of the listing.
func (s *separatorState) apply(txs []*domain.Transaction) []domain.HistoryItem {
	items := make([]domain.HistoryItem, 0, len(txs)+len(txs)/4)
	for _, tx := range txs {
		day := domain.StartOfDay(tx.RoundTime, s.loc)
		if s.hasLast && !day.Equal(s.lastDay) {
			items = append(items, domain.NewSeparatorItem(day))
		}
		items = append(items, domain.NewTransactionItem(tx))
		s.lastDay = day
		s.hasLast = true
	}
	return items
}

// InsertDateSeparators decorates a standalone list of transactions.
func InsertDateSeparators(txs []*domain.Transaction, loc *time.Location) []domain.HistoryItem {
	s := newSeparatorState(loc)
	return s.apply(txs)
}
