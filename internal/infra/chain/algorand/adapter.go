package algorand

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/vietddude/algowatch/internal/core/domain"
	"github.com/vietddude/algowatch/internal/infra/rpc/provider"
	"github.com/vietddude/algowatch/internal/infra/rpc/routing"
)

const (
	AlgodTokenHeader   = "X-Algo-API-Token"
	IndexerTokenHeader = "X-Indexer-API-Token"

	// MaxPageSize is the largest page the indexer is asked for.
	MaxPageSize = 100
)

// Adapter implements chain.Adapter against algod and indexer REST APIs.
// API docs: https://developer.algorand.org/docs/rest-apis/
type Adapter struct {
	network string
	indexer provider.Provider
	algod   provider.Provider
	retry   routing.RetryConfig
	assets  *AssetCache
	log     *slog.Logger
}

// NewAdapter creates a new Algorand adapter.
func NewAdapter(network string, indexer, algod provider.Provider) *Adapter {
	a := &Adapter{
		network: network,
		indexer: indexer,
		algod:   algod,
		retry:   routing.DefaultRetryConfig,
		log:     slog.Default().With("component", "algorand", "network", network),
	}
	a.assets = NewAssetCache(a.fetchAsset, time.Hour)
	return a
}

// WithRetry overrides the retry policy used for indexer reads.
func (a *Adapter) WithRetry(cfg routing.RetryConfig) *Adapter {
	a.retry = cfg
	return a
}

// Network returns the configured network name.
func (a *Adapter) Network() string {
	return a.network
}

// AccountTransactions returns one page of confirmed history for an account.
func (a *Adapter) AccountTransactions(ctx context.Context, q domain.TxQuery) (*domain.TxPage, error) {
	query := url.Values{}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(min(q.Limit, MaxPageSize)))
	}
	if q.Next != "" {
		query.Set("next", q.Next)
	}
	if q.AssetID != nil {
		query.Set("asset-id", strconv.FormatUint(*q.AssetID, 10))
	}
	if !q.After.IsZero() {
		query.Set("after-time", q.After.UTC().Format(time.RFC3339))
	}
	if !q.Before.IsZero() {
		query.Set("before-time", q.Before.UTC().Format(time.RFC3339))
	}
	if q.TxType != "" {
		query.Set("tx-type", string(q.TxType))
	}

	var resp indexerTxResponse
	err := routing.GetWithRetry(ctx, a.indexer, provider.Request{
		Name:  "account_transactions",
		Path:  "/v2/accounts/" + url.PathEscape(q.Address) + "/transactions",
		Query: query,
	}, &resp, a.retry)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for %s: %w", q.Address, err)
	}

	page := &domain.TxPage{
		Transactions: make([]*domain.Transaction, 0, len(resp.Transactions)),
		CurrentRound: resp.CurrentRound,
	}
	for i := range resp.Transactions {
		page.Transactions = append(page.Transactions, resp.Transactions[i].toDomain())
	}

	// The indexer hands out a token even on a short final page.
	if len(resp.Transactions) > 0 && (q.Limit <= 0 || len(resp.Transactions) >= min(q.Limit, MaxPageSize)) {
		page.NextToken = resp.NextToken
	}

	return page, nil
}

// PendingTransactions returns pool transactions sent from or to an account.
// It is a single attempt: pollers skip failed ticks instead of retrying.
func (a *Adapter) PendingTransactions(
	ctx context.Context,
	address string,
	limit int,
) (*domain.PendingSnapshot, error) {
	query := url.Values{"format": []string{"json"}}
	if limit > 0 {
		query.Set("max", strconv.Itoa(limit))
	}

	var resp pendingResponse
	err := a.algod.Get(ctx, provider.Request{
		Name:  "pending_transactions",
		Path:  "/v2/accounts/" + url.PathEscape(address) + "/transactions/pending",
		Query: query,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending transactions for %s: %w", address, err)
	}

	snap := &domain.PendingSnapshot{
		Address:      address,
		Transactions: make([]domain.PendingTransaction, 0, len(resp.TopTransactions)),
		Total:        resp.TotalTransactions,
		PolledAt:     time.Now().Unix(),
	}
	for i := range resp.TopTransactions {
		snap.Transactions = append(snap.Transactions, resp.TopTransactions[i].Txn.toDomain())
	}
	return snap, nil
}

// Asset returns display parameters for an asset, cached in memory.
func (a *Adapter) Asset(ctx context.Context, id uint64) (*domain.Asset, error) {
	if id == domain.AlgoAssetID {
		algo := domain.Algo
		return &algo, nil
	}
	return a.assets.Get(ctx, id)
}

func (a *Adapter) fetchAsset(ctx context.Context, id uint64) (*domain.Asset, error) {
	var resp indexerAssetResponse
	err := routing.GetWithRetry(ctx, a.indexer, provider.Request{
		Name: "asset",
		Path: "/v2/assets/" + strconv.FormatUint(id, 10),
	}, &resp, a.retry)
	if err != nil {
		return nil, fmt.Errorf("failed to get asset %d: %w", id, err)
	}
	return &domain.Asset{
		ID:       id,
		Name:     resp.Asset.Params.Name,
		UnitName: resp.Asset.Params.UnitName,
		Decimals: resp.Asset.Params.Decimals,
	}, nil
}

// Health checks both backends.
func (a *Adapter) Health(ctx context.Context) error {
	if err := a.indexer.Get(ctx, provider.Request{Name: "health", Path: "/health"}, nil); err != nil {
		return fmt.Errorf("indexer unhealthy: %w", err)
	}
	if err := a.algod.Get(ctx, provider.Request{Name: "health", Path: "/health"}, nil); err != nil {
		return fmt.Errorf("algod unhealthy: %w", err)
	}
	return nil
}

// Providers exposes the underlying providers for health reporting.
func (a *Adapter) Providers() []provider.Provider {
	return []provider.Provider{a.indexer, a.algod}
}
