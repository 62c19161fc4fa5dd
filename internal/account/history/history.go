// Package history pages through an account's confirmed transactions and
// decorates them with date separators for display.
package history

import (
	"context"
	"errors"
	"slices"

	"github.com/vietddude/algowatch/internal/core/domain"
	"github.com/vietddude/algowatch/internal/validation"
)

var (
	// ErrExhausted is returned by Next once the backend reported no further pages.
	ErrExhausted = errors.New("history exhausted")

	// ErrSuperseded is returned by a load that finished after the query was
	// changed or reset. Its result is discarded.
	ErrSuperseded = errors.New("history request superseded")
)

const (
	DefaultPageSize = 15
	MaxPageSize     = 100
)

// PageSource fetches one raw page of history.
// chain.Adapter satisfies it directly.
type PageSource interface {
	AccountTransactions(ctx context.Context, q domain.TxQuery) (*domain.TxPage, error)
}

// Query is what the caller asks for: an account plus optional filters.
type Query struct {
	Address  string
	AssetID  *uint64
	Filter   domain.DateFilter
	TxType   domain.TxType
	PageSize int
}

// Validate checks the query before any request is issued.
func (q Query) Validate() error {
	if err := validation.Address("address", q.Address); err != nil {
		return err
	}
	if q.TxType != "" && !q.TxType.Valid() {
		return &domain.ValidationError{Field: "type", Reason: "unknown transaction type " + string(q.TxType)}
	}
	if q.PageSize < 0 || q.PageSize > MaxPageSize {
		return &domain.ValidationError{Field: "limit", Reason: "must be between 1 and 100"}
	}
	return q.Filter.Validate()
}

// Equal reports whether two queries select the same history.
func (q Query) Equal(o Query) bool {
	if q.Address != o.Address || q.TxType != o.TxType || q.pageSize() != o.pageSize() {
		return false
	}
	if (q.AssetID == nil) != (o.AssetID == nil) {
		return false
	}
	if q.AssetID != nil && *q.AssetID != *o.AssetID {
		return false
	}
	return q.Filter.Kind == o.Filter.Kind &&
		q.Filter.From.Equal(o.Filter.From) &&
		q.Filter.To.Equal(o.Filter.To)
}

func (q Query) pageSize() int {
	if q.PageSize <= 0 {
		return DefaultPageSize
	}
	return q.PageSize
}

func (q Query) txQuery(rng domain.DateRange, next string) domain.TxQuery {
	return domain.TxQuery{
		Address: q.Address,
		AssetID: q.AssetID,
		After:   rng.After,
		Before:  rng.Before,
		TxType:  q.TxType,
		Limit:   q.pageSize(),
		Next:    next,
	}
}

// MergePending drops pending entries that already appear among confirmed
// transactions. Order of the pending slice is preserved.
func MergePending(pending []domain.PendingTransaction, confirmed []*domain.Transaction) []domain.PendingTransaction {
	if len(pending) == 0 {
		return pending
	}
	seen := make(map[string]struct{}, len(confirmed))
	for _, tx := range confirmed {
		seen[tx.Fingerprint()] = struct{}{}
	}
	return slices.DeleteFunc(slices.Clone(pending), func(p domain.PendingTransaction) bool {
		_, ok := seen[p.Fingerprint()]
		return ok
	})
}
