// Package catalog4go provides a product catalog on top of GORM with a
// cache-aside read path for high read, low write applications.
package catalog4go

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ammar0144/catalog4go/pkg/cache"
	"github.com/ammar0144/catalog4go/pkg/config"
	"github.com/ammar0144/catalog4go/pkg/db"
	"github.com/ammar0144/catalog4go/pkg/logger"
	"github.com/ammar0144/catalog4go/pkg/models"
	"github.com/ammar0144/catalog4go/pkg/redis"
	"github.com/ammar0144/catalog4go/pkg/repository"
	"github.com/ammar0144/catalog4go/pkg/service"
)

// Config is the full catalog configuration.
type Config = config.Config

// DBConfig represents database configuration
type DBConfig = db.Config

// RedisConfig represents Redis configuration
type RedisConfig = redis.Config

// Entity interface that all repository entities must implement
type Entity = repository.Entity

// Repository provides the generic repository interface
type Repository[T Entity] interface {
	repository.Repository[T]
}

// Error kinds returned by every service.
var (
	ErrNotFound   = service.ErrNotFound
	ErrValidation = service.ErrValidation
)

// LoadConfig reads a YAML file (optional) and CATALOG_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// NewManager creates a new database manager
func NewManager(cfg *DBConfig) (*db.Manager, error) {
	return db.NewManager(cfg)
}

// NewRepository creates a database-only repository for T.
func NewRepository[T Entity](dbManager *db.Manager, log *logger.Logger) (Repository[T], error) {
	return repository.NewGenericRepository[T](dbManager, log)
}

// NewRedisManager creates a new Redis-backed cache.
func NewRedisManager(cfg *RedisConfig, log *logger.Logger) (*redis.Manager, error) {
	return redis.NewManager(cfg, log)
}

// Catalog holds the wired services and owns their connections.
type Catalog struct {
	Products   *service.ProductService
	Categories *service.CategoryService
	Reviews    *service.ReviewService

	db    *db.Manager
	cache cache.Cache
	log   *logger.Logger

	closers []func() error
}

// New opens the database and cache selected by cfg and wires the services.
// A redis backend is pinged before New returns.
func New(ctx context.Context, cfg *Config, opts ...service.Option) (_ *Catalog, err error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	c := &Catalog{log: log}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()
	c.closers = append(c.closers, func() error { log.Sync(); return nil })

	c.db, err = db.NewManager(cfg.Database)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, c.db.Close)

	c.cache, err = newCache(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if closer, ok := c.cache.(interface{ Close() error }); ok {
		c.closers = append(c.closers, closer.Close)
	}

	if cfg.Cache.TTL > 0 {
		opts = append([]service.Option{service.WithCacheTTL(cfg.Cache.TTL)}, opts...)
	}

	products, err := repository.NewGenericRepository[models.Product](c.db, log)
	if err != nil {
		return nil, err
	}
	categories, err := repository.NewGenericRepository[models.Category](c.db, log)
	if err != nil {
		return nil, err
	}
	reviews, err := repository.NewGenericRepository[models.Review](c.db, log)
	if err != nil {
		return nil, err
	}

	c.Products, err = service.NewProductService(products, c.cache, log, opts...)
	if err != nil {
		return nil, err
	}
	c.Categories = service.NewCategoryService(categories, log, opts...)
	c.Reviews = service.NewReviewService(reviews, c.Products, log, opts...)

	log.Info("catalog ready", "driver", cfg.Database.Driver, "cache", cfg.Cache.Backend)
	return c, nil
}

func newCache(ctx context.Context, cfg *Config, log *logger.Logger) (cache.Cache, error) {
	switch strings.ToLower(cfg.Cache.Backend) {
	case config.CacheRedis:
		m, err := redis.NewManager(cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		if err := m.Ping(ctx); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		return m, nil
	case config.CacheNone:
		return cache.Nop(), nil
	default:
		m, err := cache.NewMemory(cfg.Memory)
		if err != nil {
			return nil, fmt.Errorf("memory cache: %w", err)
		}
		return m, nil
	}
}

// Migrate creates or updates every catalog table.
func (c *Catalog) Migrate() error {
	return c.db.AutoMigrate(models.All()...)
}

// DB returns the database manager.
func (c *Catalog) DB() *db.Manager {
	return c.db
}

// Cache returns the cache the product service reads through.
func (c *Catalog) Cache() cache.Cache {
	return c.cache
}

// Close releases connections in reverse order of acquisition.
func (c *Catalog) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
