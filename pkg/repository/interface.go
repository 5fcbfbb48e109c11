package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository is the persistence contract the services depend on.
type Repository[T Entity] interface {
	// Save inserts or updates entity and returns the re-read row.
	Save(ctx context.Context, entity *T) (*T, error)

	// Get loads one row by primary key, preloading the named associations.
	// ErrNotFound when absent.
	Get(ctx context.Context, id any, preload ...string) (*T, error)

	// Delete removes one row by primary key. ErrNotFound when absent.
	Delete(ctx context.Context, id any) error

	List(ctx context.Context, opts ListOptions) ([]T, error)
	Count(ctx context.Context, filters map[string]any) (int64, error)
	Exists(ctx context.Context, id any) (bool, error)

	// DB exposes the live session handle for queries the contract does not cover.
	DB() *gorm.DB

	// WithTx returns a repository bound to tx.
	WithTx(tx *gorm.DB) Repository[T]
}

// ListOptions controls paging, filtering and ordering for List.
type ListOptions struct {
	Offset int
	Limit  int // 0 means no limit

	// Filters are equality conditions keyed by column name.
	Filters map[string]any

	// Order is "column" or "column asc|desc". Empty orders by primary key.
	Order string

	Preload []string
}
