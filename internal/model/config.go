package model

import (
	"fmt"
	"runtime"
	"time"
)

// Config holds all casefile settings
type Config struct {
	Extraction   ExtractionConfig   `yaml:"extraction" mapstructure:"extraction"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// ExtractionConfig controls the scan phase
type ExtractionConfig struct {
	ProcedureType string `yaml:"procedure_type" mapstructure:"procedure_type"` // forced procedure type, empty = detect
	SkipDeadlines bool   `yaml:"skip_deadlines" mapstructure:"skip_deadlines"` // leave deadlines to the statutory calculator
}

// CacheConfig controls the scan cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig sizes the worker pools
type ConcurrencyConfig struct {
	Workers        int `yaml:"workers" mapstructure:"workers"`                 // document scan workers
	PersistWorkers int `yaml:"persist_workers" mapstructure:"persist_workers"` // concurrent upserts
	BatchWorkers   int `yaml:"batch_workers" mapstructure:"batch_workers"`     // concurrent cases in batch mode
}

// RateLimitingConfig throttles persistence writes per entity kind
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"` // 0 = unlimited
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // memory, sqlite, postgres
	DSN    string `yaml:"dsn" mapstructure:"dsn"`       // sqlite path or postgres URL
}

// LoggingConfig controls the structured logger
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json, console
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "~/.casefile/cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers:        runtime.NumCPU(),
			PersistWorkers: 8,
			BatchWorkers:   2,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 0,
			BurstSize:         10,
		},
		Store: StoreConfig{
			Driver: "sqlite",
			DSN:    "~/.casefile/casefile.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}

// Validate checks the config for values the pipeline cannot run with
func (c *Config) Validate() error {
	if c.Extraction.ProcedureType != "" {
		if _, ok := ParseProcedureType(c.Extraction.ProcedureType); !ok {
			return fmt.Errorf("extraction.procedure_type: unknown procedure type %q", c.Extraction.ProcedureType)
		}
	}
	if c.Concurrency.Workers <= 0 {
		return fmt.Errorf("concurrency.workers must be positive, got %d", c.Concurrency.Workers)
	}
	if c.Concurrency.PersistWorkers <= 0 {
		return fmt.Errorf("concurrency.persist_workers must be positive, got %d", c.Concurrency.PersistWorkers)
	}
	if c.Concurrency.BatchWorkers <= 0 {
		return fmt.Errorf("concurrency.batch_workers must be positive, got %d", c.Concurrency.BatchWorkers)
	}
	if c.RateLimiting.RequestsPerSecond < 0 {
		return fmt.Errorf("rate_limiting.requests_per_second must not be negative")
	}
	switch c.Store.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("store.driver: unknown driver %q (supported: memory, sqlite, postgres)", c.Store.Driver)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	return nil
}
