package config

import (
	"time"

	redisclient "github.com/vietddude/algowatch/internal/infra/redis"
	"github.com/vietddude/algowatch/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Network  string             `yaml:"network"  validate:"required"`
	Algod    EndpointConfig     `yaml:"algod"`
	Indexer  EndpointConfig     `yaml:"indexer"`
	History  HistoryConfig      `yaml:"history"`
	Pending  PendingConfig      `yaml:"pending"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int      `yaml:"port"         validate:"min=1,max=65535"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// EndpointConfig holds settings for an algod or indexer REST endpoint.
type EndpointConfig struct {
	URL       string        `yaml:"url"        validate:"required,url"`
	Token     string        `yaml:"token"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"` // requests per second, 0 = unlimited
	Burst     int           `yaml:"burst"`
	// DailyQuota caps calls per day for hosted endpoints, 0 = unlimited.
	DailyQuota int `yaml:"daily_quota" validate:"min=0"`
}

// HistoryConfig controls transaction history paging.
type HistoryConfig struct {
	PageSize int           `yaml:"page_size" validate:"min=1,max=100"`
	Location string        `yaml:"location"` // IANA zone used to split days
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// PendingConfig controls the pool poller.
type PendingConfig struct {
	Interval time.Duration `yaml:"interval"`
	Max      int           `yaml:"max" validate:"min=0"`
}

// Loc returns the configured location, falling back to UTC.
func (h HistoryConfig) Loc() *time.Location {
	if h.Location == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(h.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}
