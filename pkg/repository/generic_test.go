package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ammar0144/catalog4go/internal/testutil"
	"github.com/ammar0144/catalog4go/pkg/models"
	"github.com/ammar0144/catalog4go/pkg/repository"
)

func newProductRepo(t *testing.T) (*repository.GenericRepository[models.Product], uint) {
	t.Helper()
	m := testutil.DB(t)
	repo, err := repository.NewGenericRepository[models.Product](m, testutil.Logger(t))
	if err != nil {
		t.Fatalf("NewGenericRepository: %v", err)
	}
	return repo, testutil.SeedCategory(t, m, "Tools")
}

func TestRepositorySaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo, catID := newProductRepo(t)

	saved, err := repo.Save(ctx, &models.Product{Name: "Hammer", Price: 12.5, Stock: 4, CategoryID: catID})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.ID == 0 {
		t.Fatal("expected generated id")
	}
	if saved.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be read back")
	}

	got, err := repo.Get(ctx, saved.ID, "Category")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Hammer" || got.Price != 12.5 || got.Stock != 4 {
		t.Fatalf("unexpected product %+v", got)
	}
	if got.Category == nil || got.Category.Name != "Tools" {
		t.Fatalf("category not preloaded: %+v", got.Category)
	}

	got.Stock = 0
	if _, err := repo.Save(ctx, got); err != nil {
		t.Fatalf("Save update: %v", err)
	}
	again, err := repo.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if again.Stock != 0 {
		t.Fatalf("zero stock should be written, got %d", again.Stock)
	}
}

func TestRepositoryGetMissing(t *testing.T) {
	repo, _ := newProductRepo(t)
	_, err := repo.Get(context.Background(), uint(404))
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	repo, catID := newProductRepo(t)

	p, err := repo.Save(ctx, &models.Product{Name: "Saw", Price: 30, CategoryID: catID})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ok, err := repo.Exists(ctx, p.ID); err != nil || ok {
		t.Fatalf("Exists after delete = %v, %v", ok, err)
	}
	if err := repo.Delete(ctx, p.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryList(t *testing.T) {
	ctx := context.Background()
	repo, catID := newProductRepo(t)

	for i, name := range []string{"A", "B", "C", "D", "E"} {
		if _, err := repo.Save(ctx, &models.Product{Name: name, Price: float64(i + 1), Stock: i, CategoryID: catID}); err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
	}

	page, err := repo.List(ctx, repository.ListOptions{Offset: 1, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 2 || page[0].Name != "B" || page[1].Name != "C" {
		t.Fatalf("unexpected page %+v", page)
	}

	desc, err := repo.List(ctx, repository.ListOptions{Order: "price desc", Limit: 1})
	if err != nil {
		t.Fatalf("List desc: %v", err)
	}
	if len(desc) != 1 || desc[0].Name != "E" {
		t.Fatalf("unexpected order %+v", desc)
	}

	filtered, err := repo.List(ctx, repository.ListOptions{Filters: map[string]any{"stock": 2}})
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Name != "C" {
		t.Fatalf("unexpected filter result %+v", filtered)
	}

	n, err := repo.Count(ctx, map[string]any{"category_id": catID})
	if err != nil || n != 5 {
		t.Fatalf("Count = %d, %v", n, err)
	}
}

func TestRepositoryRejectsUnknownColumns(t *testing.T) {
	ctx := context.Background()
	repo, _ := newProductRepo(t)

	if _, err := repo.List(ctx, repository.ListOptions{Filters: map[string]any{"1=1; --": 1}}); !errors.Is(err, repository.ErrValidation) {
		t.Fatalf("filter: expected ErrValidation, got %v", err)
	}
	if _, err := repo.List(ctx, repository.ListOptions{Order: "name; drop table products"}); !errors.Is(err, repository.ErrValidation) {
		t.Fatalf("order: expected ErrValidation, got %v", err)
	}
	if _, err := repo.List(ctx, repository.ListOptions{Limit: -1}); !errors.Is(err, repository.ErrValidation) {
		t.Fatalf("limit: expected ErrValidation, got %v", err)
	}
}

func TestRepositoryUniqueViolationIsValidation(t *testing.T) {
	ctx := context.Background()
	m := testutil.DB(t)
	repo, err := repository.NewGenericRepository[models.Category](m, testutil.Logger(t))
	if err != nil {
		t.Fatalf("NewGenericRepository: %v", err)
	}
	if _, err := repo.Save(ctx, &models.Category{Name: "Garden"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := repo.Save(ctx, &models.Category{Name: "Garden"}); !errors.Is(err, repository.ErrValidation) {
		t.Fatalf("duplicate name: expected ErrValidation, got %v", err)
	}
}

func TestRepositoryWithTxRollback(t *testing.T) {
	ctx := context.Background()
	repo, catID := newProductRepo(t)

	tx := repo.DB().Begin()
	if _, err := repo.WithTx(tx).Save(ctx, &models.Product{Name: "Ghost", Price: 1, CategoryID: catID}); err != nil {
		t.Fatalf("Save in tx: %v", err)
	}
	tx.Rollback()

	n, err := repo.Count(ctx, nil)
	if err != nil || n != 0 {
		t.Fatalf("Count after rollback = %d, %v", n, err)
	}
}
