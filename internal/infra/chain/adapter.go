package chain

import (
	"context"

	"github.com/vietddude/algowatch/internal/core/domain"
)

// Adapter defines the chain-level boundary between the wallet services and
// the node/indexer pair backing them.
type Adapter interface {
	// AccountTransactions returns one page of confirmed history for an account
	AccountTransactions(ctx context.Context, q domain.TxQuery) (*domain.TxPage, error)

	// PendingTransactions returns the pool transactions involving an account
	PendingTransactions(ctx context.Context, address string, limit int) (*domain.PendingSnapshot, error)

	// Asset returns display parameters of an asset
	Asset(ctx context.Context, id uint64) (*domain.Asset, error)

	// Health checks both backends
	Health(ctx context.Context) error

	// Network returns the configured network name
	Network() string
}
