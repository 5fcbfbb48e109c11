package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/ammar0144/catalog4go/internal/testutil"
	"github.com/ammar0144/catalog4go/pkg/models"
	"github.com/ammar0144/catalog4go/pkg/repository"
)

func TestEntitySaveInsertsThenUpdates(t *testing.T) {
	ctx := context.Background()
	m := testutil.DB(t)
	gdb := m.DB()

	c := &models.Category{Name: "Kitchen"}
	if c.IsPersisted() {
		t.Fatal("new entity reports persisted")
	}
	if err := repository.Save(ctx, gdb, c); err != nil {
		t.Fatalf("Save insert: %v", err)
	}
	if !c.IsPersisted() || c.GetPrimaryKeyValue() != c.ID {
		t.Fatalf("expected persisted entity, got %+v", c)
	}

	c.Name = "Kitchenware"
	if err := repository.Save(ctx, gdb, c); err != nil {
		t.Fatalf("Save update: %v", err)
	}
	var count int64
	gdb.Model(&models.Category{}).Count(&count)
	if count != 1 {
		t.Fatalf("want=1 got=%d", count)
	}
}

func TestEntityToMap(t *testing.T) {
	desc := "sharp"
	p := &models.Product{Name: "Knife", Description: &desc, Price: 15, Stock: 2, CategoryID: 3}
	p.ID = 9

	got, err := repository.ToMap(testutil.DB(t).DB(), p)
	if err != nil {
		t.Fatalf("ToMap: %v", err)
	}
	if _, ok := got["id"]; ok {
		t.Fatal("primary key must be excluded")
	}
	if got["name"] != "Knife" || got["price"] != 15.0 || got["category_id"] != uint(3) {
		t.Fatalf("unexpected map %#v", got)
	}
	if _, ok := got["image_url"]; !ok {
		t.Fatal("nil columns should still be listed")
	}
	if _, ok := got["reviews"]; ok {
		t.Fatal("associations are not columns")
	}
}

func TestEntityLoadRelationshipsAndDelete(t *testing.T) {
	ctx := context.Background()
	m := testutil.DB(t)
	gdb := m.DB()

	catID := testutil.SeedCategory(t, m, "Toys")
	p := &models.Product{Name: "Kite", Price: 5, CategoryID: catID}
	if err := repository.Save(ctx, gdb, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	testutil.SeedReview(t, m, p.ID, 3)
	testutil.SeedReview(t, m, p.ID, 5)

	if err := repository.LoadRelationships(ctx, gdb, p, "Category", "Reviews"); err != nil {
		t.Fatalf("LoadRelationships: %v", err)
	}
	if p.Category == nil || p.Category.Name != "Toys" {
		t.Fatalf("category not loaded: %+v", p.Category)
	}
	if len(p.Reviews) != 2 {
		t.Fatalf("want=2 got=%d", len(p.Reviews))
	}

	if err := repository.Delete(ctx, gdb, p); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repository.Delete(ctx, gdb, p); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
	if err := repository.Delete(ctx, gdb, &models.Product{}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("unsaved delete: expected ErrNotFound, got %v", err)
	}
}

func TestMapError(t *testing.T) {
	base := errors.New("boom")
	if repository.MapError(nil) != nil {
		t.Fatal("nil should stay nil")
	}
	if got := repository.MapError(base); got != base {
		t.Fatalf("unknown errors pass through, got %v", got)
	}

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"record not found", gorm.ErrRecordNotFound, repository.ErrNotFound},
		{"gorm duplicate", gorm.ErrDuplicatedKey, repository.ErrValidation},
		{"gorm foreign key", gorm.ErrForeignKeyViolated, repository.ErrValidation},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, repository.ErrValidation},
		{"mysql fk", fmt.Errorf("wrapped: %w", &mysql.MySQLError{Number: 1452}), repository.ErrValidation},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, repository.ErrValidation},
		{"postgres fk", &pgconn.PgError{Code: "23503"}, repository.ErrValidation},
		{"sqlite unique", errors.New("UNIQUE constraint failed: categories.name"), repository.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.in)
			if !errors.Is(got, tt.want) {
				t.Fatalf("MapError(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if !errors.Is(got, tt.in) {
				t.Fatalf("original error lost from chain: %v", got)
			}
		})
	}

	if got := repository.MapError(&mysql.MySQLError{Number: 1045}); errors.Is(got, repository.ErrValidation) {
		t.Fatalf("access denied is not a validation error: %v", got)
	}
}
