package domain

import "time"

// ItemKind distinguishes rows of a history listing.
type ItemKind string

const (
	ItemKindTransaction ItemKind = "transaction"
	ItemKindSeparator   ItemKind = "separator"
)

// HistoryItem is either a transaction row or a date separator.
type HistoryItem struct {
	Kind        ItemKind     `json:"kind"`
	Transaction *Transaction `json:"transaction,omitempty"`
	// Date is the calendar day (midnight in the listing location) of the
	// transaction that follows a separator.
	Date time.Time `json:"date,omitempty"`
}

// NewTransactionItem wraps tx in a HistoryItem.
func NewTransactionItem(tx *Transaction) HistoryItem {
	return HistoryItem{Kind: ItemKindTransaction, Transaction: tx}
}

// NewSeparatorItem returns a separator for day.
func NewSeparatorItem(day time.Time) HistoryItem {
	return HistoryItem{Kind: ItemKindSeparator, Date: day}
}

// TxPage is one page of raw indexer results.
type TxPage struct {
	Transactions []*Transaction `json:"transactions"`
	NextToken    string         `json:"next_token,omitempty"`
	CurrentRound uint64         `json:"current_round"`
}

// TxQuery selects a page of account history from the indexer.
type TxQuery struct {
	Address string
	// AssetID restricts results to one asset; nil means all assets.
	AssetID *uint64
	After   time.Time
	Before  time.Time
	TxType  TxType
	Limit   int
	Next    string
}
