package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/algowatch/internal/core/domain"
)

// Client wraps Redis operations for the history page cache.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// Enabled reports whether a Redis URL is configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func pageKey(key string) string {
	return "history_page:" + key
}

// GetPage loads a cached history page.
func (c *Client) GetPage(ctx context.Context, key string) (*domain.TxPage, bool, error) {
	data, err := c.rdb.Get(ctx, pageKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get failed: %w", err)
	}

	var page domain.TxPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, false, fmt.Errorf("decode page: %w", err)
	}
	return &page, true, nil
}

// SetPage stores a history page for ttl.
func (c *Client) SetPage(ctx context.Context, key string, page *domain.TxPage, ttl time.Duration) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("encode page: %w", err)
	}
	if err := c.rdb.Set(ctx, pageKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// prefixPattern is a MATCH pattern for page keys starting with prefix.
// Glob characters inside prefix match literally.
func prefixPattern(prefix string) string {
	return globEscaper.Replace(pageKey(prefix)) + "*"
}

// InvalidatePrefix drops every cached page whose key starts with prefix.
// Used after a node switch, when cached tokens no longer apply.
func (c *Client) InvalidatePrefix(ctx context.Context, prefix string) error {
	iter := c.rdb.Scan(ctx, 0, prefixPattern(prefix), 500).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == 500 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("del failed: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	if len(keys) > 0 {
		return c.rdb.Del(ctx, keys...).Err()
	}
	return nil
}
