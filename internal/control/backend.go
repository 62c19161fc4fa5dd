package control

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/vietddude/algowatch/internal/account/history"
	"github.com/vietddude/algowatch/internal/core/config"
	"github.com/vietddude/algowatch/internal/core/domain"
	"github.com/vietddude/algowatch/internal/infra/chain"
	"github.com/vietddude/algowatch/internal/infra/chain/algorand"
	"github.com/vietddude/algowatch/internal/infra/rpc/provider"
	"github.com/vietddude/algowatch/internal/infra/storage"
)

// DefaultNodeName is the node seeded from the config file.
const DefaultNodeName = "default"

// NodeFromConfig describes the endpoints of the config file as a node.
func NodeFromConfig(network string, algod, indexer config.EndpointConfig) *domain.Node {
	return &domain.Node{
		Name:         DefaultNodeName,
		Network:      network,
		AlgodURL:     algod.URL,
		AlgodToken:   algod.Token,
		IndexerURL:   indexer.URL,
		IndexerToken: indexer.Token,
	}
}

// NewAdapter builds providers for node and wraps them in an Algorand adapter.
// Timeouts and rate limits come from the endpoint configs.
func NewAdapter(node *domain.Node, algod, indexer config.EndpointConfig) *algorand.Adapter {
	indexerProvider := provider.NewHTTPProvider(provider.HTTPConfig{
		Name:        "indexer",
		BaseURL:     node.IndexerURL,
		TokenHeader: algorand.IndexerTokenHeader,
		Token:       node.IndexerToken,
		Timeout:     indexer.Timeout,
		RateLimit:   indexer.RateLimit,
		Burst:       indexer.Burst,
		DailyQuota:  indexer.DailyQuota,
	})
	algodProvider := provider.NewHTTPProvider(provider.HTTPConfig{
		Name:        "algod",
		BaseURL:     node.AlgodURL,
		TokenHeader: algorand.AlgodTokenHeader,
		Token:       node.AlgodToken,
		Timeout:     algod.Timeout,
		RateLimit:   algod.RateLimit,
		Burst:       algod.Burst,
		DailyQuota:  algod.DailyQuota,
	})
	return algorand.NewAdapter(node.Network, indexerProvider, algodProvider)
}

// ResolveNode returns the active node of network. When none is stored yet the
// config node is saved and activated.
func ResolveNode(ctx context.Context, nodes storage.NodeRepository, fallback *domain.Node) (*domain.Node, error) {
	node, err := nodes.GetActive(ctx, fallback.Network)
	if err == nil {
		return node, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if err := nodes.Save(ctx, fallback); err != nil {
		return nil, fmt.Errorf("failed to seed node: %w", err)
	}
	if err := nodes.Activate(ctx, fallback.Name); err != nil {
		return nil, fmt.Errorf("failed to activate node: %w", err)
	}
	seeded := *fallback
	seeded.Active = true
	return &seeded, nil
}

// backend is the adapter of one node plus its cached history source.
type backend struct {
	node     *domain.Node
	adapter  *algorand.Adapter
	source   history.PageSource
	cacheKey string
}

// liveChain forwards every call to the backend of the currently active node,
// so that switching nodes does not require restarting consumers.
type liveChain struct {
	cur atomic.Pointer[backend]
}

var _ chain.Adapter = (*liveChain)(nil)

func (c *liveChain) load() *backend {
	return c.cur.Load()
}

func (c *liveChain) AccountTransactions(ctx context.Context, q domain.TxQuery) (*domain.TxPage, error) {
	return c.load().adapter.AccountTransactions(ctx, q)
}

func (c *liveChain) PendingTransactions(ctx context.Context, address string, limit int) (*domain.PendingSnapshot, error) {
	return c.load().adapter.PendingTransactions(ctx, address, limit)
}

func (c *liveChain) Asset(ctx context.Context, id uint64) (*domain.Asset, error) {
	return c.load().adapter.Asset(ctx, id)
}

func (c *liveChain) Health(ctx context.Context) error {
	return c.load().adapter.Health(ctx)
}

func (c *liveChain) Network() string {
	return c.load().adapter.Network()
}

// cachedSource serves history through the active backend's page cache.
type cachedSource struct {
	chain *liveChain
}

func (s cachedSource) AccountTransactions(ctx context.Context, q domain.TxQuery) (*domain.TxPage, error) {
	return s.chain.load().source.AccountTransactions(ctx, q)
}
