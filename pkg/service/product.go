package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ammar0144/catalog4go/pkg/cache"
	"github.com/ammar0144/catalog4go/pkg/logger"
	"github.com/ammar0144/catalog4go/pkg/models"
	"github.com/ammar0144/catalog4go/pkg/repository"
	"github.com/ammar0144/catalog4go/pkg/schemas"
)

const (
	productCachePrefix = "products"

	// DefaultPageSize is used by GetAll when limit is zero.
	DefaultPageSize = 100
)

var (
	// fields computed on read or owned by other entities
	productReadOnlyFields = []string{"category", "category_name", "rating", "reviews"}

	// update additionally never touches the identifier or sales history
	productUpdateStripFields = append(append([]string{}, productReadOnlyFields...), "id", "order_details")

	productAssociations = []string{"Category", "Reviews"}
)

// ProductService serves products through a cache-aside read path and keeps
// the cache coherent on writes. Cache failures never fail a call: reads fall
// back to the database and writes only log.
type ProductService struct {
	base   *BaseService[models.Product, schemas.Product]
	repo   repository.Repository[models.Product]
	orders repository.Repository[models.OrderDetail]
	cache  cache.Cache
	ttl    time.Duration
	log    *logger.Logger
	tracer trace.Tracer
}

// NewProductService wires the product repository and cache. A nil cache
// disables caching.
func NewProductService(repo repository.Repository[models.Product], c cache.Cache, baseLog *logger.Logger, opts ...Option) (*ProductService, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository cannot be nil")
	}
	orders, err := repository.NewGenericRepositoryFromDB[models.OrderDetail](repo.DB(), 0, baseLog)
	if err != nil {
		return nil, fmt.Errorf("order detail repository: %w", err)
	}
	if c == nil {
		c = cache.Nop()
	}

	o := buildOptions(opts)
	return &ProductService{
		base:   NewBaseService[models.Product, schemas.Product]("ProductService", repo, models.NewProduct, baseLog, opts...),
		repo:   repo,
		orders: orders,
		cache:  c,
		ttl:    o.cacheTTL,
		log:    baseLog.With("service", "ProductService"),
		tracer: o.tracer(),
	}, nil
}

func (s *ProductService) listKey(skip, limit int) string {
	return s.cache.BuildKey(productCachePrefix, "list", map[string]any{"skip": skip, "limit": limit})
}

func (s *ProductService) idKey(id uint) string {
	return s.cache.BuildKey(productCachePrefix, "id", map[string]any{"id": id})
}

func (s *ProductService) listPattern() string {
	return productCachePrefix + cache.KeySeparator + "list" + cache.KeySeparator + "*"
}

// GetAll returns one page of products. limit 0 means DefaultPageSize.
func (s *ProductService) GetAll(ctx context.Context, skip, limit int) (_ []schemas.Product, err error) {
	ctx, span := startSpan(ctx, s.tracer, "ProductService.GetAll",
		attribute.Int("skip", skip),
		attribute.Int("limit", limit),
	)
	defer func() { endSpan(span, err) }()

	if skip < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: skip and limit must be non-negative", ErrValidation)
	}
	if limit == 0 {
		limit = DefaultPageSize
	}

	key := s.listKey(skip, limit)
	var cached []schemas.Product
	if s.cacheGet(ctx, key, &cached) {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		if cached == nil {
			cached = []schemas.Product{}
		}
		return cached, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	entities, err := s.repo.List(ctx, repository.ListOptions{
		Offset:  skip,
		Limit:   limit,
		Preload: productAssociations,
	})
	if err != nil {
		return nil, err
	}

	out := make([]schemas.Product, 0, len(entities))
	for i := range entities {
		out = append(out, schemas.ProductFromModel(&entities[i]))
	}
	s.cacheSet(ctx, key, out)
	return out, nil
}

// GetOne returns a product by id, or ErrNotFound.
func (s *ProductService) GetOne(ctx context.Context, id uint) (_ *schemas.Product, err error) {
	ctx, span := startSpan(ctx, s.tracer, "ProductService.GetOne", attribute.Int64("product.id", int64(id)))
	defer func() { endSpan(span, err) }()

	key := s.idKey(id)
	var cached schemas.Product
	if s.cacheGet(ctx, key, &cached) {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return &cached, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	entity, err := s.repo.Get(ctx, id, productAssociations...)
	if err != nil {
		return nil, err
	}

	out := schemas.ProductFromModel(entity)
	s.cacheSet(ctx, key, out)
	return &out, nil
}

// Save creates a product. Computed and relation-only fields in schema are
// ignored. All cached product lists are invalidated.
func (s *ProductService) Save(ctx context.Context, schema schemas.Product) (_ *schemas.Product, err error) {
	ctx, span := startSpan(ctx, s.tracer, "ProductService.Save")
	defer func() { endSpan(span, err) }()

	if err := schemas.Validate(schema); err != nil {
		return nil, err
	}
	fields := schemas.Strip(schema.Fields(), productReadOnlyFields...)

	saved, err := s.base.create(ctx, schemas.ToModelFields(fields))
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("product.id", int64(saved.ID)))

	s.invalidateLists(ctx)

	out := schemas.ProductFromModel(saved)
	return &out, nil
}

// Create validates the strict creation payload and saves it.
func (s *ProductService) Create(ctx context.Context, dto schemas.ProductCreate) (*schemas.Product, error) {
	if err := schemas.Validate(dto); err != nil {
		return nil, err
	}
	return s.Save(ctx, dto.ToProduct())
}

// Update applies the fields set in schema to product id inside one
// transaction. On success the product's cache entry and all cached lists
// are invalidated; on failure nothing is written.
func (s *ProductService) Update(ctx context.Context, id uint, schema schemas.Product) (_ *schemas.Product, err error) {
	ctx, span := startSpan(ctx, s.tracer, "ProductService.Update", attribute.Int64("product.id", int64(id)))
	defer func() { endSpan(span, err) }()

	if err := schemas.Validate(schema); err != nil {
		return nil, err
	}
	fields := schemas.Strip(schema.Fields(), productUpdateStripFields...)

	tx := s.repo.DB().WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	txRepo := s.repo.WithTx(tx)
	existing, err := txRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ignored, err := existing.Apply(fields)
	if err != nil {
		s.log.Warn("product update rejected", "product_id", id, "error", err)
		return nil, err
	}
	if len(ignored) > 0 {
		s.log.Debug("ignoring fields without a column", "product_id", id, "fields", ignored)
	}

	if _, err := txRepo.Save(ctx, existing); err != nil {
		s.log.Error("failed to update product", "product_id", id, "error", err)
		return nil, err
	}
	refreshed, err := txRepo.Get(ctx, id, productAssociations...)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		s.log.Error("failed to commit product update", "product_id", id, "error", err)
		return nil, fmt.Errorf("commit: %w", repository.MapError(err))
	}
	committed = true

	s.cacheDelete(ctx, s.idKey(id))
	s.invalidateLists(ctx)
	s.log.Info("product updated", "product_id", id)

	out := schemas.ProductFromModel(refreshed)
	return &out, nil
}

// Delete removes a product that has never been sold. Products referenced by
// an order detail are kept and ErrValidation is returned.
func (s *ProductService) Delete(ctx context.Context, id uint) (err error) {
	ctx, span := startSpan(ctx, s.tracer, "ProductService.Delete", attribute.Int64("product.id", int64(id)))
	defer func() { endSpan(span, err) }()

	sold, err := s.orders.Count(ctx, map[string]any{"product_id": id})
	if err != nil {
		return err
	}
	if sold > 0 {
		s.log.Error("cannot delete product with sales history", "product_id", id)
		return errors.Join(ErrValidation, fmt.Errorf(
			"cannot delete product %d: product has associated sales history, consider marking it inactive instead", id))
	}

	s.log.Info("deleting product", "product_id", id)
	if err := s.base.Delete(ctx, id); err != nil {
		return err
	}

	s.cacheDelete(ctx, s.idKey(id))
	s.invalidateLists(ctx)
	return nil
}

// AverageRating returns the mean rating of a product's reviews, or nil
// when it has none.
func (s *ProductService) AverageRating(ctx context.Context, id uint) (*float64, error) {
	p, err := s.GetOne(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Rating, nil
}

// InvalidateProduct drops the cached entry of one product and every cached
// list. Other services call it after changing data shown on products.
func (s *ProductService) InvalidateProduct(ctx context.Context, id uint) {
	s.cacheDelete(ctx, s.idKey(id))
	s.invalidateLists(ctx)
}

func (s *ProductService) cacheGet(ctx context.Context, key string, dest any) bool {
	err := s.cache.Get(ctx, key, dest)
	switch {
	case err == nil:
		s.log.Debug("cache hit", "key", key)
		return true
	case cache.IsMiss(err):
		s.log.Debug("cache miss", "key", key)
	default:
		s.log.Warn("cache read failed, using database", "key", key, "error", err)
	}
	return false
}

func (s *ProductService) cacheSet(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.log.Warn("cache write failed", "key", key, "error", err)
	}
}

func (s *ProductService) cacheDelete(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.Warn("cache delete failed", "key", key, "error", err)
	}
}

func (s *ProductService) invalidateLists(ctx context.Context) {
	n, err := s.cache.DeletePattern(ctx, s.listPattern())
	if err != nil {
		s.log.Warn("cache list invalidation failed", "pattern", s.listPattern(), "error", err)
		return
	}
	if n > 0 {
		s.log.Info("invalidated product list cache entries", "count", n)
	}
}
