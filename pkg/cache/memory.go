package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viccon/sturdyc"
)

// MemoryConfig configures the in-process backend.
type MemoryConfig struct {
	Capacity           int           `json:"capacity" yaml:"capacity"`
	NumShards          int           `json:"num_shards" yaml:"num_shards"`
	EvictionPercentage int           `json:"eviction_percentage" yaml:"eviction_percentage"`
	EvictionInterval   time.Duration `json:"eviction_interval" yaml:"eviction_interval"`

	// DefaultTTL applies when Set is called with ttl <= 0.
	DefaultTTL time.Duration `json:"default_ttl" yaml:"default_ttl"`
	// MaxTTL caps every entry; it is also the store-wide sturdyc TTL.
	MaxTTL time.Duration `json:"max_ttl" yaml:"max_ttl"`

	Codec string `json:"codec" yaml:"codec"` // json or msgpack
}

func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Capacity:           10000,
		NumShards:          16,
		EvictionPercentage: 10,
		DefaultTTL:         DefaultTTL,
		MaxTTL:             time.Hour,
		Codec:              "json",
	}
}

func (c MemoryConfig) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be greater than 0")
	}
	if c.NumShards <= 0 {
		return fmt.Errorf("num_shards must be greater than 0")
	}
	if c.NumShards > c.Capacity {
		return fmt.Errorf("num_shards cannot exceed capacity")
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return fmt.Errorf("eviction_percentage must be between 1 and 100")
	}
	if c.DefaultTTL <= 0 {
		return fmt.Errorf("default_ttl must be greater than 0")
	}
	if c.MaxTTL < c.DefaultTTL {
		return fmt.Errorf("max_ttl cannot be lower than default_ttl")
	}
	if _, err := CodecByName(c.Codec); err != nil {
		return err
	}
	return nil
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is a sturdyc-backed Cache. Values are stored encoded so callers
// never share mutable state with the cache.
type Memory struct {
	client  *sturdyc.Client[memoryEntry]
	codec   Codec
	config  MemoryConfig
	metrics *Metrics
	now     func() time.Time
}

var _ Cache = (*Memory)(nil)

// NewMemory builds an in-process cache from cfg.
func NewMemory(cfg MemoryConfig) (*Memory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid memory cache config: %w", err)
	}
	codec, _ := CodecByName(cfg.Codec)

	var opts []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		opts = append(opts, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	return &Memory{
		client:  sturdyc.New[memoryEntry](cfg.Capacity, cfg.NumShards, cfg.MaxTTL, cfg.EvictionPercentage, opts...),
		codec:   codec,
		config:  cfg,
		metrics: NewMetrics(),
		now:     time.Now,
	}, nil
}

// NewDefaultMemory returns a Memory with DefaultMemoryConfig.
func NewDefaultMemory() *Memory {
	m, err := NewMemory(DefaultMemoryConfig())
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Memory) BuildKey(prefix, op string, params map[string]any) string {
	return BuildKey(prefix, op, params)
}

func (m *Memory) Get(ctx context.Context, key string, dest any) error {
	if key == "" {
		return ErrInvalidKey
	}
	start := time.Now()
	defer func() { m.metrics.RecordGet(time.Since(start)) }()

	entry, ok := m.client.Get(key)
	if !ok || !m.now().Before(entry.expiresAt) {
		if ok {
			m.client.Delete(key)
		}
		m.metrics.RecordMiss()
		return ErrMiss
	}

	if err := Decode(m.codec, entry.data, dest); err != nil {
		m.metrics.RecordError()
		return err
	}
	m.metrics.RecordHit()
	return nil
}

func (m *Memory) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}
	start := time.Now()
	defer func() { m.metrics.RecordSet(time.Since(start)) }()

	if ttl <= 0 {
		ttl = m.config.DefaultTTL
	}
	if ttl > m.config.MaxTTL {
		ttl = m.config.MaxTTL
	}

	data, err := Encode(m.codec, value)
	if err != nil {
		m.metrics.RecordError()
		return err
	}
	m.client.Set(key, memoryEntry{data: data, expiresAt: m.now().Add(ttl)})
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	start := time.Now()
	m.client.Delete(key)
	m.metrics.RecordDelete(time.Since(start))
	return nil
}

func (m *Memory) DeletePattern(ctx context.Context, pattern string) (int, error) {
	if pattern == "" {
		return 0, ErrInvalidKey
	}
	if err := checkGlob(pattern); err != nil {
		return 0, errors.Join(ErrInvalidKey, err)
	}

	deleted := 0
	for _, key := range m.client.ScanKeys() {
		if err := ctx.Err(); err != nil {
			m.metrics.RecordInvalidation(deleted)
			return deleted, err
		}
		if matchGlob(pattern, key) {
			m.client.Delete(key)
			deleted++
		}
	}
	m.metrics.RecordInvalidation(deleted)
	return deleted, nil
}

// Len returns the number of stored entries, expired ones included until
// they are read or evicted.
func (m *Memory) Len() int {
	return m.client.Size()
}

func (m *Memory) Metrics() *Metrics {
	return m.metrics
}
