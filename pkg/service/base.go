// Package service implements the catalog use cases on top of the
// repositories: validation, schema to entity conversion and, for products,
// a cache-aside read path.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ammar0144/catalog4go/pkg/logger"
	"github.com/ammar0144/catalog4go/pkg/repository"
	"github.com/ammar0144/catalog4go/pkg/schemas"
)

// Constructor builds an entity from column fields and reports the keys it
// did not recognise.
type Constructor[T any] func(fields map[string]any) (*T, []string, error)

// BaseService is the generic CRUD service shared by every entity.
type BaseService[T repository.Entity, S schemas.Schema] struct {
	name      string
	repo      repository.Repository[T]
	construct Constructor[T]
	log       *logger.Logger
	tracer    trace.Tracer
}

func NewBaseService[T repository.Entity, S schemas.Schema](
	name string,
	repo repository.Repository[T],
	construct Constructor[T],
	baseLog *logger.Logger,
	opts ...Option,
) *BaseService[T, S] {
	o := buildOptions(opts)
	return &BaseService[T, S]{
		name:      name,
		repo:      repo,
		construct: construct,
		log:       baseLog.With("service", name),
		tracer:    o.tracer(),
	}
}

// Repository returns the underlying repository.
func (s *BaseService[T, S]) Repository() repository.Repository[T] {
	return s.repo
}

// Save validates schema, flattens it into column fields, builds the entity
// and persists it.
func (s *BaseService[T, S]) Save(ctx context.Context, schema S) (_ *T, err error) {
	ctx, span := startSpan(ctx, s.tracer, s.name+".Save")
	defer func() { endSpan(span, err) }()

	if err := schemas.Validate(schema); err != nil {
		return nil, err
	}
	return s.create(ctx, schemas.ToModelFields(schema.Fields()))
}

// create always inserts. Ids are assigned by the store, so a payload naming
// one is refused instead of overwriting the existing row.
func (s *BaseService[T, S]) create(ctx context.Context, fields map[string]any) (*T, error) {
	if id, ok := fields["id"]; ok && assigned(id) {
		return nil, errors.Join(ErrValidation,
			fmt.Errorf("%s: id %v is assigned on insert, use update to change an existing record", s.name, deref(id)))
	}
	entity, ignored, err := s.construct(schemas.Strip(fields, "id"))
	if err != nil {
		return nil, err
	}
	if len(ignored) > 0 {
		s.log.Debug("ignoring fields without a column", "fields", ignored)
	}

	saved, err := s.repo.Save(ctx, entity)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", s.name, err)
	}
	return saved, nil
}

func (s *BaseService[T, S]) Get(ctx context.Context, id any) (_ *T, err error) {
	ctx, span := startSpan(ctx, s.tracer, s.name+".Get", attribute.String("id", fmt.Sprint(id)))
	defer func() { endSpan(span, err) }()

	return s.repo.Get(ctx, id)
}

func (s *BaseService[T, S]) Delete(ctx context.Context, id any) (err error) {
	ctx, span := startSpan(ctx, s.tracer, s.name+".Delete", attribute.String("id", fmt.Sprint(id)))
	defer func() { endSpan(span, err) }()

	return s.repo.Delete(ctx, id)
}

func (s *BaseService[T, S]) List(ctx context.Context, opts repository.ListOptions) (_ []T, err error) {
	ctx, span := startSpan(ctx, s.tracer, s.name+".List",
		attribute.Int("offset", opts.Offset),
		attribute.Int("limit", opts.Limit),
	)
	defer func() { endSpan(span, err) }()

	return s.repo.List(ctx, opts)
}

func assigned(v any) bool {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	return rv.IsValid() && !rv.IsZero()
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
