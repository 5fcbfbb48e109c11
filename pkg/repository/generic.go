package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/ammar0144/catalog4go/pkg/db"
	"github.com/ammar0144/catalog4go/pkg/logger"
)

// GenericRepository implements Repository for any GORM model T.
type GenericRepository[T Entity] struct {
	db           *gorm.DB
	log          *logger.Logger
	entityType   reflect.Type
	tableName    string
	primaryKey   string
	columns      map[string]struct{}
	queryTimeout time.Duration
}

// NewGenericRepository builds a repository over the manager's connection.
func NewGenericRepository[T Entity](dbManager *db.Manager, baseLog *logger.Logger) (*GenericRepository[T], error) {
	if dbManager == nil || dbManager.DB() == nil {
		return nil, fmt.Errorf("database manager is not initialized")
	}
	var timeout time.Duration
	if cfg := dbManager.Config(); cfg != nil {
		timeout = cfg.QueryTimeout
	}
	return NewGenericRepositoryFromDB[T](dbManager.DB(), timeout, baseLog)
}

// NewGenericRepositoryFromDB builds a repository over an existing GORM handle.
func NewGenericRepositoryFromDB[T Entity](gdb *gorm.DB, queryTimeout time.Duration, baseLog *logger.Logger) (*GenericRepository[T], error) {
	if gdb == nil {
		return nil, fmt.Errorf("gorm db cannot be nil")
	}

	entityType := reflect.TypeOf((*T)(nil)).Elem()
	model := reflect.New(entityType).Interface()

	ent, ok := model.(Entity)
	if !ok {
		return nil, fmt.Errorf("entity type %v does not implement repository.Entity", entityType)
	}
	tableName := ent.TableName()
	if tableName == "" {
		return nil, fmt.Errorf("entity type %v returned empty TableName()", entityType)
	}

	sch, err := parseSchema(gdb, model)
	if err != nil {
		return nil, err
	}
	primaryKey := "id"
	if sch.PrioritizedPrimaryField != nil {
		primaryKey = sch.PrioritizedPrimaryField.DBName
	}
	columns := make(map[string]struct{}, len(sch.DBNames))
	for _, name := range sch.DBNames {
		columns[name] = struct{}{}
	}

	return &GenericRepository[T]{
		db:           gdb,
		log:          baseLog.With("repo", entityType.Name()),
		entityType:   entityType,
		tableName:    tableName,
		primaryKey:   primaryKey,
		columns:      columns,
		queryTimeout: queryTimeout,
	}, nil
}

func parseSchema(gdb *gorm.DB, model any) (*schema.Schema, error) {
	stmt := &gorm.Statement{DB: gdb}
	if err := stmt.Parse(model); err != nil {
		return nil, fmt.Errorf("parse schema for %T: %w", model, err)
	}
	return stmt.Schema, nil
}

func (r *GenericRepository[T]) DB() *gorm.DB {
	return r.db
}

func (r *GenericRepository[T]) WithTx(tx *gorm.DB) Repository[T] {
	if tx == nil {
		return r
	}
	clone := *r
	clone.db = tx
	return &clone
}

// TableName returns the table the repository reads from.
func (r *GenericRepository[T]) TableName() string {
	return r.tableName
}

func (r *GenericRepository[T]) withQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.queryTimeout > 0 {
		return context.WithTimeout(ctx, r.queryTimeout)
	}
	return ctx, func() {}
}

func (r *GenericRepository[T]) pkEq(id any) clause.Expression {
	return clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: r.primaryKey}, Value: id}
}

func (r *GenericRepository[T]) Save(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, fmt.Errorf("%w: entity cannot be nil", ErrValidation)
	}
	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	ent, ok := any(entity).(Entity)
	if !ok {
		return nil, fmt.Errorf("entity type %v does not implement repository.Entity", r.entityType)
	}
	if err := Save(ctx, r.db, ent); err != nil {
		r.log.Warn("save failed", "table", r.tableName, "error", err)
		return nil, err
	}
	return entity, nil
}

func (r *GenericRepository[T]) Get(ctx context.Context, id any, preload ...string) (*T, error) {
	if id == nil {
		return nil, fmt.Errorf("%w: id cannot be nil", ErrValidation)
	}
	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	q := r.db.WithContext(ctx)
	for _, assoc := range preload {
		q = q.Preload(assoc)
	}

	var entity T
	if err := q.Where(r.pkEq(id)).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s %v", ErrNotFound, r.tableName, id)
		}
		return nil, fmt.Errorf("database error: %w", MapError(err))
	}
	return &entity, nil
}

func (r *GenericRepository[T]) Delete(ctx context.Context, id any) error {
	if id == nil {
		return fmt.Errorf("%w: id cannot be nil", ErrValidation)
	}
	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).Where(r.pkEq(id)).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("database error: %w", MapError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s %v", ErrNotFound, r.tableName, id)
	}
	return nil
}

func (r *GenericRepository[T]) List(ctx context.Context, opts ListOptions) ([]T, error) {
	if opts.Offset < 0 || opts.Limit < 0 {
		return nil, fmt.Errorf("%w: offset and limit must be non-negative", ErrValidation)
	}
	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	q, err := r.filtered(r.db.WithContext(ctx), opts.Filters)
	if err != nil {
		return nil, err
	}
	order, err := r.orderClause(opts.Order)
	if err != nil {
		return nil, err
	}
	q = q.Order(order)
	for _, assoc := range opts.Preload {
		q = q.Preload(assoc)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	var entities []T
	if err := q.Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", MapError(err))
	}
	return entities, nil
}

func (r *GenericRepository[T]) Count(ctx context.Context, filters map[string]any) (int64, error) {
	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	q, err := r.filtered(r.db.WithContext(ctx).Model(new(T)), filters)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("database error: %w", MapError(err))
	}
	return count, nil
}

func (r *GenericRepository[T]) Exists(ctx context.Context, id any) (bool, error) {
	if id == nil {
		return false, fmt.Errorf("%w: id cannot be nil", ErrValidation)
	}
	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	var count int64
	err := r.db.WithContext(ctx).Model(new(T)).Where(r.pkEq(id)).Limit(1).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("database error: %w", MapError(err))
	}
	return count > 0, nil
}

// filtered applies equality filters. Keys are checked against the model's
// columns so callers can never inject SQL through a column name.
func (r *GenericRepository[T]) filtered(q *gorm.DB, filters map[string]any) (*gorm.DB, error) {
	if len(filters) == 0 {
		return q, nil
	}
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, ok := r.columns[name]; !ok {
			return nil, fmt.Errorf("%w: unknown filter column %q on %s", ErrValidation, name, r.tableName)
		}
		q = q.Where(clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: name},
			Value:  filters[name],
		})
	}
	return q, nil
}

func (r *GenericRepository[T]) orderClause(order string) (clause.OrderByColumn, error) {
	order = strings.TrimSpace(order)
	if order == "" {
		return clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: r.primaryKey}}, nil
	}

	fields := strings.Fields(order)
	desc := false
	switch {
	case len(fields) == 1:
	case len(fields) == 2 && strings.EqualFold(fields[1], "desc"):
		desc = true
	case len(fields) == 2 && strings.EqualFold(fields[1], "asc"):
	default:
		return clause.OrderByColumn{}, fmt.Errorf("%w: invalid order %q", ErrValidation, order)
	}
	if _, ok := r.columns[fields[0]]; !ok {
		return clause.OrderByColumn{}, fmt.Errorf("%w: unknown order column %q on %s", ErrValidation, fields[0], r.tableName)
	}
	return clause.OrderByColumn{
		Column: clause.Column{Table: clause.CurrentTable, Name: fields[0]},
		Desc:   desc,
	}, nil
}
