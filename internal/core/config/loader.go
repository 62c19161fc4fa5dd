package config

import (
	"fmt"
	"os"
	"time"

	"github.com/vietddude/algowatch/internal/validation"
	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validation.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := time.LoadLocation(cfg.History.Location); err != nil {
		return nil, fmt.Errorf("invalid history.location: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Network == "" {
		cfg.Network = "mainnet"
	}
	if cfg.Algod.Timeout == 0 {
		cfg.Algod.Timeout = 10 * time.Second
	}
	if cfg.Indexer.Timeout == 0 {
		cfg.Indexer.Timeout = 15 * time.Second
	}
	if cfg.Indexer.RateLimit > 0 && cfg.Indexer.Burst == 0 {
		cfg.Indexer.Burst = 1
	}
	if cfg.Algod.RateLimit > 0 && cfg.Algod.Burst == 0 {
		cfg.Algod.Burst = 1
	}
	if cfg.History.PageSize == 0 {
		cfg.History.PageSize = 15
	}
	if cfg.History.Location == "" {
		cfg.History.Location = "UTC"
	}
	if cfg.History.CacheTTL == 0 {
		cfg.History.CacheTTL = 30 * time.Second
	}
	if cfg.Pending.Interval == 0 {
		cfg.Pending.Interval = 800 * time.Millisecond
	}
}
