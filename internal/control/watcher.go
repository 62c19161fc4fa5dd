package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/algowatch/internal/account/history"
	"github.com/vietddude/algowatch/internal/api"
	"github.com/vietddude/algowatch/internal/core/config"
	"github.com/vietddude/algowatch/internal/core/domain"
	"github.com/vietddude/algowatch/internal/health"
	redisclient "github.com/vietddude/algowatch/internal/infra/redis"
	"github.com/vietddude/algowatch/internal/infra/storage/postgres"
)

// pageCache is a history.PageCache that can also drop a key prefix.
type pageCache interface {
	history.PageCache
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// Watcher is the main application struct that manages the service lifecycle.
type Watcher struct {
	cfg         Config
	storage     *Storage
	chain       *liveChain
	cache       pageCache
	redisClient *redisclient.Client
	healthMon   *health.Monitor
	server      *api.Server
	log         *slog.Logger
}

// Config holds the application configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	Network     string
	Algod       config.EndpointConfig
	Indexer     config.EndpointConfig
	History     config.HistoryConfig
	Pending     config.PendingConfig
	Redis       redisclient.Config
	Database    postgres.Config
}

// ConfigFromApp maps the file configuration to the watcher configuration.
func ConfigFromApp(c *config.AppConfig) Config {
	return Config{
		Port:        c.Server.Port,
		CORSOrigins: c.Server.CORSOrigins,
		Network:     c.Network,
		Algod:       c.Algod,
		Indexer:     c.Indexer,
		History:     c.History,
		Pending:     c.Pending,
		Redis:       c.Redis,
		Database:    c.Database,
	}
}

// NewWatcher creates a new Watcher instance with all dependencies initialized.
func NewWatcher(ctx context.Context, cfg Config) (*Watcher, error) {
	log := slog.Default().With("component", "watcher")

	// 1. Initialize Storage
	store, err := OpenStorage(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	// 2. Initialize page cache
	w := &Watcher{
		cfg:     cfg,
		storage: store,
		chain:   &liveChain{},
		log:     log,
	}
	if cfg.Redis.Enabled() {
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			log.Warn("Failed to connect to Redis, using in-memory page cache", "error", err)
		} else {
			w.redisClient = client
			w.cache = client
		}
	}
	if w.cache == nil {
		w.cache = history.NewMemoryPageCache(4096)
	}

	// 3. Resolve the active node and build its backend
	node, err := ResolveNode(ctx, store.Nodes, NodeFromConfig(cfg.Network, cfg.Algod, cfg.Indexer))
	if err != nil {
		w.closeStores()
		return nil, fmt.Errorf("failed to resolve node: %w", err)
	}
	w.chain.cur.Store(w.newBackend(node))
	log.Info("Using node", "node", node.Name, "network", node.Network, "indexer", node.IndexerURL)

	// 4. Initialize Health Monitor
	w.healthMon = health.NewMonitor(cfg.Network, w.chain.load().adapter.Providers()...)
	if db := store.DB(); db != nil {
		w.healthMon.AddProbe("database", db.Health, true)
	}
	if w.redisClient != nil {
		w.healthMon.AddProbe("redis", w.redisClient.Health, false)
	}

	// 5. Initialize API
	w.server = api.NewServer(api.Deps{
		Chain:           w.chain,
		Source:          cachedSource{chain: w.chain},
		Accounts:        store.Accounts,
		Contacts:        store.Contacts,
		Nodes:           store.Nodes,
		Health:          w.healthMon,
		OnNodeActivated: w.SwitchNode,
	}, api.Options{
		Port:            cfg.Port,
		CORSOrigins:     cfg.CORSOrigins,
		PageSize:        cfg.History.PageSize,
		Location:        cfg.History.Loc(),
		PendingInterval: cfg.Pending.Interval,
		PendingMax:      cfg.Pending.Max,
	})

	return w, nil
}

func (w *Watcher) newBackend(node *domain.Node) *backend {
	adapter := NewAdapter(node, w.cfg.Algod, w.cfg.Indexer)
	// Tokens are only meaningful to the node that issued them.
	key := node.Network + "/" + node.Name
	return &backend{
		node:     node,
		adapter:  adapter,
		source:   history.NewCachedSource(adapter, w.cache, key, w.cfg.History.CacheTTL),
		cacheKey: key,
	}
}

// SwitchNode points all consumers at node. Requests already in flight finish
// against the previous node.
func (w *Watcher) SwitchNode(ctx context.Context, node *domain.Node) error {
	if node.Network != w.cfg.Network {
		w.log.Info("Activated node belongs to another network, not switching", "node", node.Name, "network", node.Network)
		return nil
	}

	next := w.newBackend(node)
	prev := w.chain.cur.Swap(next)
	w.healthMon.SetProviders(next.adapter.Providers()...)

	if prev != nil {
		for _, p := range prev.adapter.Providers() {
			_ = p.Close()
		}
		if err := w.cache.InvalidatePrefix(ctx, prev.cacheKey+":"); err != nil {
			w.log.Warn("Failed to drop cached pages of previous node", "error", err)
		}
	}

	w.log.Info("Switched node", "node", node.Name, "indexer", node.IndexerURL, "algod", node.AlgodURL)
	return nil
}

// Start starts the watcher and all its components.
func (w *Watcher) Start(ctx context.Context) error {
	// Start API Server
	go func() {
		if err := w.server.Start(); err != nil {
			w.log.Error("API server failed", "error", err)
		}
	}()

	// Start DB Metrics Collector
	if db := w.storage.DB(); db != nil {
		db.StartMetricsCollector(ctx)
	}

	// Probe the upstreams once so misconfiguration shows up in the logs early.
	go func() {
		probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := w.chain.Health(probeCtx); err != nil {
			w.log.Warn("Upstream health check failed", "error", err)
		}
	}()

	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop(ctx context.Context) error {
	w.log.Info("Stopping Watcher...")

	err := w.server.Stop(ctx)

	if b := w.chain.load(); b != nil {
		for _, p := range b.adapter.Providers() {
			_ = p.Close()
		}
	}
	w.closeStores()
	return err
}

func (w *Watcher) closeStores() {
	if w.redisClient != nil {
		if err := w.redisClient.Close(); err != nil {
			w.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if err := w.storage.Close(); err != nil {
		w.log.Warn("Failed to close database", "error", err)
	}
}

// Handler exposes the API for in-process use.
func (w *Watcher) Handler() *api.Server {
	return w.server
}
