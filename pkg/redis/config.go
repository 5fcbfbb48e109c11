package redis

import (
	"fmt"
	"time"

	"github.com/ammar0144/catalog4go/pkg/cache"
)

// Config holds Redis cache configuration
type Config struct {
	Enabled    bool          `json:"enabled" yaml:"enabled"`
	DefaultTTL time.Duration `json:"default_ttl" yaml:"default_ttl"`

	// KeyNamespace is prepended to every key ("ns:" + key) so several
	// deployments can share one Redis database. Empty means no namespace.
	KeyNamespace string `json:"key_namespace" yaml:"key_namespace"`

	// Codec selects the value encoding: json (default) or msgpack.
	Codec string `json:"codec" yaml:"codec"`

	// Redis Connection
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Database int    `json:"database" yaml:"database"`

	// Connection Pool
	PoolSize     int           `json:"pool_size" yaml:"pool_size"`
	MinIdleConns int           `json:"min_idle_conns" yaml:"min_idle_conns"`
	MaxConnAge   time.Duration `json:"max_conn_age" yaml:"max_conn_age"`
	PoolTimeout  time.Duration `json:"pool_timeout" yaml:"pool_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout" yaml:"idle_timeout"`

	// Performance
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
	DialTimeout  time.Duration `json:"dial_timeout" yaml:"dial_timeout"`

	// ScanBatchSize is the COUNT hint used while iterating keys for
	// pattern deletion.
	ScanBatchSize int64 `json:"scan_batch_size" yaml:"scan_batch_size"`

	Cluster ClusterConfig `json:"cluster" yaml:"cluster"`

	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// ClusterConfig for Redis Cluster setup
type ClusterConfig struct {
	Enabled   bool     `json:"enabled" yaml:"enabled"`
	Addresses []string `json:"addresses" yaml:"addresses"`
	Username  string   `json:"username" yaml:"username"`
	Password  string   `json:"password" yaml:"password"`
}

// LoggingConfig controls which cache events are logged at debug level
type LoggingConfig struct {
	LogCacheHits     bool `json:"log_cache_hits" yaml:"log_cache_hits"`
	LogCacheMisses   bool `json:"log_cache_misses" yaml:"log_cache_misses"`
	LogInvalidations bool `json:"log_invalidations" yaml:"log_invalidations"`
}

// DefaultConfig returns a Redis configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultTTL:    cache.DefaultTTL,
		Codec:         "json",
		Host:          "localhost",
		Port:          6379,
		PoolSize:      10,
		MinIdleConns:  3,
		MaxConnAge:    time.Hour,
		PoolTimeout:   4 * time.Second,
		IdleTimeout:   5 * time.Minute,
		ReadTimeout:   3 * time.Second,
		WriteTimeout:  3 * time.Second,
		DialTimeout:   5 * time.Second,
		ScanBatchSize: 100,
		Logging: LoggingConfig{
			LogCacheMisses:   true,
			LogInvalidations: true,
		},
	}
}

// Validate checks if the Redis configuration is valid
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.IsClusterMode() {
		for i, addr := range c.Cluster.Addresses {
			if addr == "" {
				return fmt.Errorf("cluster address %d is empty", i)
			}
		}
	} else {
		if c.Host == "" {
			return fmt.Errorf("redis host is required when cache is enabled")
		}
		if c.Port <= 0 || c.Port > 65535 {
			return fmt.Errorf("redis port must be between 1 and 65535, got %d", c.Port)
		}
	}
	if c.DefaultTTL <= 0 {
		return fmt.Errorf("default_ttl must be positive when cache is enabled")
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("pool_size must be at least 1")
	}
	if c.ScanBatchSize < 1 {
		return fmt.Errorf("scan_batch_size must be at least 1")
	}
	if _, err := cache.CodecByName(c.Codec); err != nil {
		return err
	}
	return nil
}

// GetAddr returns the Redis connection address
func (c *Config) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsClusterMode returns true if Redis cluster is enabled
func (c *Config) IsClusterMode() bool {
	return c.Cluster.Enabled && len(c.Cluster.Addresses) > 0
}
