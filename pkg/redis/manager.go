package redis

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ammar0144/catalog4go/pkg/cache"
	"github.com/ammar0144/catalog4go/pkg/logger"
)

// Manager is a Redis-backed cache.Cache.
type Manager struct {
	config        *Config
	client        redis.UniversalClient
	clusterClient *redis.ClusterClient
	codec         cache.Codec
	metrics       *cache.Metrics
	log           *logger.Logger
}

var _ cache.Cache = (*Manager)(nil)

// NewManager creates a new Redis cache manager. The connection is lazy; call
// Ping to verify reachability.
func NewManager(config *Config, baseLog *logger.Logger) (*Manager, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid redis config: %w", err)
	}
	codec, err := cache.CodecByName(config.Codec)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		config:  config,
		codec:   codec,
		metrics: cache.NewMetrics(),
		log:     baseLog.With("component", "RedisCache"),
	}
	m.initializeClient()
	return m, nil
}

// NewManagerWithClient wraps an existing go-redis client.
func NewManagerWithClient(client redis.UniversalClient, config *Config, baseLog *logger.Logger) (*Manager, error) {
	if client == nil {
		return nil, ErrClientNotInitialized
	}
	if config == nil {
		config = DefaultConfig()
	}
	codec, err := cache.CodecByName(config.Codec)
	if err != nil {
		return nil, err
	}
	m := &Manager{
		config:  config,
		client:  client,
		codec:   codec,
		metrics: cache.NewMetrics(),
		log:     baseLog.With("component", "RedisCache"),
	}
	if cc, ok := client.(*redis.ClusterClient); ok {
		m.clusterClient = cc
	}
	return m, nil
}

func (m *Manager) initializeClient() {
	if !m.config.Enabled {
		return
	}

	if m.config.IsClusterMode() {
		m.clusterClient = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:           m.config.Cluster.Addresses,
			Username:        m.config.Cluster.Username,
			Password:        m.config.Cluster.Password,
			PoolSize:        m.config.PoolSize,
			MinIdleConns:    m.config.MinIdleConns,
			ConnMaxLifetime: m.config.MaxConnAge,
			PoolTimeout:     m.config.PoolTimeout,
			ConnMaxIdleTime: m.config.IdleTimeout,
			ReadTimeout:     m.config.ReadTimeout,
			WriteTimeout:    m.config.WriteTimeout,
			DialTimeout:     m.config.DialTimeout,
		})
		m.client = m.clusterClient
		return
	}

	m.client = redis.NewClient(&redis.Options{
		Addr:            m.config.GetAddr(),
		Username:        m.config.Username,
		Password:        m.config.Password,
		DB:              m.config.Database,
		PoolSize:        m.config.PoolSize,
		MinIdleConns:    m.config.MinIdleConns,
		ConnMaxLifetime: m.config.MaxConnAge,
		PoolTimeout:     m.config.PoolTimeout,
		ConnMaxIdleTime: m.config.IdleTimeout,
		ReadTimeout:     m.config.ReadTimeout,
		WriteTimeout:    m.config.WriteTimeout,
		DialTimeout:     m.config.DialTimeout,
	})
}

// Config returns the manager's configuration
func (m *Manager) Config() *Config {
	return m.config
}

func (m *Manager) Metrics() *cache.Metrics {
	return m.metrics
}

func (m *Manager) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}

// Ping returns nil when the cache is disabled.
func (m *Manager) Ping(ctx context.Context) error {
	if !m.config.Enabled {
		return nil
	}
	if m.client == nil {
		return ErrClientNotInitialized
	}
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	return nil
}

func (m *Manager) checkClient() error {
	if !m.config.Enabled {
		return ErrCacheDisabled
	}
	if m.client == nil {
		return ErrClientNotInitialized
	}
	return nil
}

func (m *Manager) nsKey(key string) string {
	if m.config.KeyNamespace == "" {
		return key
	}
	return m.config.KeyNamespace + cache.KeySeparator + key
}

func (m *Manager) BuildKey(prefix, op string, params map[string]any) string {
	return cache.BuildKey(prefix, op, params)
}

// Get decodes the value stored under key into dest.
func (m *Manager) Get(ctx context.Context, key string, dest any) error {
	if err := m.checkClient(); err != nil {
		return err
	}
	if key == "" {
		return cache.ErrInvalidKey
	}

	start := time.Now()
	raw, err := m.client.Get(ctx, m.nsKey(key)).Bytes()
	m.metrics.RecordGet(time.Since(start))

	if errors.Is(err, redis.Nil) {
		m.metrics.RecordMiss()
		if m.config.Logging.LogCacheMisses {
			m.log.Debug("cache miss", "key", key)
		}
		return ErrKeyNotFound
	}
	if err != nil {
		m.metrics.RecordError()
		return fmt.Errorf("redis get error: %w", err)
	}

	if err := cache.Decode(m.codec, raw, dest); err != nil {
		m.metrics.RecordError()
		return err
	}
	m.metrics.RecordHit()
	if m.config.Logging.LogCacheHits {
		m.log.Debug("cache hit", "key", key)
	}
	return nil
}

// Set encodes value and stores it with ttl, or the configured default when
// ttl <= 0.
func (m *Manager) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := m.checkClient(); err != nil {
		return err
	}
	if key == "" {
		return cache.ErrInvalidKey
	}
	if ttl <= 0 {
		ttl = m.config.DefaultTTL
	}

	data, err := cache.Encode(m.codec, value)
	if err != nil {
		m.metrics.RecordError()
		return err
	}

	start := time.Now()
	err = m.client.Set(ctx, m.nsKey(key), data, ttl).Err()
	m.metrics.RecordSet(time.Since(start))
	if err != nil {
		m.metrics.RecordError()
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

func (m *Manager) Delete(ctx context.Context, key string) error {
	if err := m.checkClient(); err != nil {
		return err
	}
	if key == "" {
		return cache.ErrInvalidKey
	}

	start := time.Now()
	err := m.client.Del(ctx, m.nsKey(key)).Err()
	m.metrics.RecordDelete(time.Since(start))
	if err != nil {
		m.metrics.RecordError()
		return fmt.Errorf("redis delete error: %w", err)
	}
	return nil
}

// DeletePattern removes all keys matching pattern using SCAN so Redis is
// never blocked by KEYS. In cluster mode every master is scanned and keys
// are deleted one by one to avoid cross-slot errors.
func (m *Manager) DeletePattern(ctx context.Context, pattern string) (int, error) {
	if err := m.checkClient(); err != nil {
		return 0, err
	}
	if pattern == "" {
		return 0, cache.ErrInvalidKey
	}

	match := m.nsKey(pattern)
	var deleted atomic.Int64
	var err error

	if m.clusterClient != nil {
		err = m.clusterClient.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			return m.scanDelete(ctx, node, match, true, &deleted)
		})
	} else {
		err = m.scanDelete(ctx, m.client, match, false, &deleted)
	}

	n := int(deleted.Load())
	m.metrics.RecordInvalidation(n)
	if err != nil {
		m.metrics.RecordError()
		return n, err
	}
	if m.config.Logging.LogInvalidations {
		m.log.Debug("cache invalidated", "pattern", pattern, "keys", n)
	}
	return n, nil
}

func (m *Manager) scanDelete(ctx context.Context, c redis.Cmdable, match string, perKey bool, deleted *atomic.Int64) error {
	var cursor uint64
	for {
		batch, next, err := c.Scan(ctx, cursor, match, m.config.ScanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys with pattern %s: %w", match, err)
		}

		if len(batch) > 0 {
			if perKey {
				pipe := c.Pipeline()
				cmds := make([]*redis.IntCmd, len(batch))
				for i, key := range batch {
					cmds[i] = pipe.Del(ctx, key)
				}
				if _, err := pipe.Exec(ctx); err != nil {
					return fmt.Errorf("failed to delete batch: %w", err)
				}
				for _, cmd := range cmds {
					deleted.Add(cmd.Val())
				}
			} else {
				n, err := c.Del(ctx, batch...).Result()
				if err != nil {
					return fmt.Errorf("failed to delete batch: %w", err)
				}
				deleted.Add(n)
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Exists reports whether key is currently cached.
func (m *Manager) Exists(ctx context.Context, key string) (bool, error) {
	if err := m.checkClient(); err != nil {
		return false, err
	}
	n, err := m.client.Exists(ctx, m.nsKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists error: %w", err)
	}
	return n > 0, nil
}
