// Package config loads the catalog configuration from a YAML file and
// CATALOG_* environment variables. Environment values win over the file,
// the file wins over defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ammar0144/catalog4go/pkg/cache"
	"github.com/ammar0144/catalog4go/pkg/db"
	"github.com/ammar0144/catalog4go/pkg/redis"
)

const envPrefix = "CATALOG_"

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

type Config struct {
	Log      LogConfig          `json:"log" yaml:"log"`
	Cache    CacheConfig        `json:"cache" yaml:"cache"`
	Database *db.Config         `json:"database" yaml:"database"`
	Redis    *redis.Config      `json:"redis" yaml:"redis"`
	Memory   cache.MemoryConfig `json:"memory" yaml:"memory"`
}

type LogConfig struct {
	Mode  string `json:"mode" yaml:"mode"` // dev or prod
	Level string `json:"level" yaml:"level"`
}

type CacheConfig struct {
	// Backend is memory (default), redis or none.
	Backend string        `json:"backend" yaml:"backend"`
	TTL     time.Duration `json:"ttl" yaml:"ttl"`
}

// Default returns a configuration that runs without external services:
// in-memory SQLite and the in-process cache.
func Default() *Config {
	return defaultFor(db.DriverSQLite)
}

func defaultFor(driver string) *Config {
	return &Config{
		Log:      LogConfig{Mode: "prod", Level: "info"},
		Cache:    CacheConfig{Backend: CacheMemory, TTL: cache.DefaultTTL},
		Database: db.DefaultConfig(driver),
		Redis:    redis.DefaultConfig(),
		Memory:   cache.DefaultMemoryConfig(),
	}
}

// Load reads path (optional, "" skips the file), applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	var raw []byte
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		raw = b
	}
	cfg, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults of the selected database
// driver. Unknown keys are rejected.
func Parse(raw []byte) (*Config, error) {
	var head struct {
		Database struct {
			Driver string `yaml:"driver"`
		} `yaml:"database"`
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := yaml.Unmarshal(raw, &head); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	driver := head.Database.Driver
	if v, ok := lookup("DB_DRIVER"); ok {
		driver = v
	}
	if driver == "" {
		driver = db.DriverSQLite
	}

	cfg := defaultFor(driver)
	if len(bytes.TrimSpace(raw)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.Database.Driver = driver
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Cache.Backend) {
	case CacheMemory:
		if err := c.Memory.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("memory cache: %w", err))
		}
	case CacheRedis:
		if c.Redis == nil {
			errs = append(errs, errors.New("redis: configuration missing"))
		} else if err := c.Redis.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	case CacheNone:
	default:
		errs = append(errs, fmt.Errorf("cache: unknown backend %q", c.Cache.Backend))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache: ttl cannot be negative"))
	}
	if c.Database == nil {
		errs = append(errs, errors.New("database: configuration missing"))
	} else if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	return errors.Join(errs...)
}

func (c *Config) applyEnv() error {
	var errs []error
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) {
		if v, ok := lookup(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := lookup(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = d
		}
	}
	flag := func(name string, dst *bool) {
		if v, ok := lookup(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	str("LOG_MODE", &c.Log.Mode)
	str("LOG_LEVEL", &c.Log.Level)

	str("CACHE_BACKEND", &c.Cache.Backend)
	dur("CACHE_TTL", &c.Cache.TTL)

	if c.Database != nil {
		str("DB_HOST", &c.Database.Host)
		num("DB_PORT", &c.Database.Port)
		str("DB_NAME", &c.Database.Database)
		str("DB_USER", &c.Database.Username)
		str("DB_PASSWORD", &c.Database.Password)
		str("DB_SSLMODE", &c.Database.SSLMode)
		dur("DB_QUERY_TIMEOUT", &c.Database.QueryTimeout)
		str("DB_LOG_LEVEL", &c.Database.Logging.Level)
	}

	if c.Redis != nil {
		str("REDIS_HOST", &c.Redis.Host)
		num("REDIS_PORT", &c.Redis.Port)
		str("REDIS_USERNAME", &c.Redis.Username)
		str("REDIS_PASSWORD", &c.Redis.Password)
		num("REDIS_DB", &c.Redis.Database)
		str("REDIS_NAMESPACE", &c.Redis.KeyNamespace)
		str("REDIS_CODEC", &c.Redis.Codec)
		flag("REDIS_CLUSTER", &c.Redis.Cluster.Enabled)
		if v, ok := lookup("REDIS_CLUSTER_ADDRS"); ok {
			c.Redis.Cluster.Addresses = splitCSV(v)
		}
	}

	num("MEMORY_CAPACITY", &c.Memory.Capacity)
	str("MEMORY_CODEC", &c.Memory.Codec)

	return errors.Join(errs...)
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
