package history

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vietddude/algowatch/internal/core/domain"
	"github.com/vietddude/algowatch/internal/metrics"
)

// PageCache stores raw history pages by key.
type PageCache interface {
	GetPage(ctx context.Context, key string) (*domain.TxPage, bool, error)
	SetPage(ctx context.Context, key string, page *domain.TxPage, ttl time.Duration) error
}

// CachedSource serves continuation pages from a cache so that re-issuing a
// request with the same cursor returns the same page. First pages (empty
// token) always go to the source because new transactions land there.
type CachedSource struct {
	source  PageSource
	cache   PageCache
	ttl     time.Duration
	network string
	log     *slog.Logger
}

// NewCachedSource wraps source with cache.
func NewCachedSource(source PageSource, cache PageCache, network string, ttl time.Duration) *CachedSource {
	return &CachedSource{
		source:  source,
		cache:   cache,
		ttl:     ttl,
		network: network,
		log:     slog.Default().With("component", "page_cache"),
	}
}

// AccountTransactions implements PageSource.
func (c *CachedSource) AccountTransactions(ctx context.Context, q domain.TxQuery) (*domain.TxPage, error) {
	if q.Next == "" {
		return c.source.AccountTransactions(ctx, q)
	}

	key := PageKey(c.network, q)
	page, ok, err := c.cache.GetPage(ctx, key)
	if err != nil {
		// A broken cache must not break history.
		c.log.Warn("Page cache read failed", "error", err)
	}
	if ok {
		metrics.PageCacheLookups.WithLabelValues("hit").Inc()
		return page, nil
	}
	metrics.PageCacheLookups.WithLabelValues("miss").Inc()

	page, err = c.source.AccountTransactions(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetPage(ctx, key, page, c.ttl); err != nil {
		c.log.Warn("Page cache write failed", "error", err)
	}
	return page, nil
}

// PageKey derives a stable cache key for a page request.
func PageKey(network string, q domain.TxQuery) string {
	h := sha256.New()
	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	write(q.Address)
	if q.AssetID != nil {
		write(strconv.FormatUint(*q.AssetID, 10))
	} else {
		write("*")
	}
	write(formatBound(q.After))
	write(formatBound(q.Before))
	write(string(q.TxType))
	write(strconv.Itoa(q.Limit))
	write(q.Next)
	return network + ":" + hex.EncodeToString(h.Sum(nil))
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// MemoryPageCache is an in-process PageCache used when Redis is not configured.
type MemoryPageCache struct {
	mu      sync.Mutex
	entries map[string]memoryPage
	maxSize int
}

type memoryPage struct {
	page      *domain.TxPage
	expiresAt time.Time
}

// NewMemoryPageCache creates a cache holding at most maxSize pages.
func NewMemoryPageCache(maxSize int) *MemoryPageCache {
	if maxSize <= 0 {
		maxSize = 1024
	}
	return &MemoryPageCache{
		entries: make(map[string]memoryPage),
		maxSize: maxSize,
	}
}

// GetPage implements PageCache.
func (m *MemoryPageCache) GetPage(ctx context.Context, key string) (*domain.TxPage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.page, true, nil
}

// SetPage implements PageCache.
func (m *MemoryPageCache) SetPage(ctx context.Context, key string, page *domain.TxPage, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) >= m.maxSize {
		m.evictLocked()
	}
	m.entries[key] = memoryPage{page: page, expiresAt: time.Now().Add(ttl)}
	return nil
}

// evictLocked drops expired entries, or an arbitrary one if none expired.
func (m *MemoryPageCache) evictLocked() {
	now := time.Now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	if len(m.entries) < m.maxSize {
		return
	}
	for k := range m.entries {
		delete(m.entries, k)
		return
	}
}

// InvalidatePrefix drops every entry whose key starts with prefix.
func (m *MemoryPageCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}
