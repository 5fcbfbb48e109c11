// Package testutil provides shared fixtures for package tests: an in-memory
// SQLite database with the catalog schema and a quiet logger.
package testutil

import (
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"github.com/ammar0144/catalog4go/pkg/db"
	"github.com/ammar0144/catalog4go/pkg/logger"
	"github.com/ammar0144/catalog4go/pkg/models"
)

var dbSeq atomic.Int64

// Logger returns a logger that discards output unless CATALOG_TEST_LOG is set.
func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	if os.Getenv("CATALOG_TEST_LOG") == "" {
		return logger.Nop()
	}
	log, err := logger.New("dev", "debug")
	if err != nil {
		tb.Fatalf("logger: %v", err)
	}
	tb.Cleanup(log.Sync)
	return log
}

// DB opens a fresh in-memory SQLite database with every catalog table
// created. Each call gets its own database; it is closed on cleanup.
func DB(tb testing.TB) *db.Manager {
	tb.Helper()

	cfg := db.DefaultConfig(db.DriverSQLite)
	// a named shared-cache memory db stays alive for the pool's single connection
	cfg.Database = fmt.Sprintf("file:catalog_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	cfg.Logging.Level = "silent"
	cfg.QueryTimeout = 0

	m, err := db.NewManager(cfg)
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	tb.Cleanup(func() { _ = m.Close() })

	if err := m.AutoMigrate(models.All()...); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return m
}

// SeedCategory inserts a category and returns its id.
func SeedCategory(tb testing.TB, m *db.Manager, name string) uint {
	tb.Helper()
	c := &models.Category{Name: name}
	if err := m.DB().Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c.ID
}

// SeedReview inserts a review for productID and returns its id.
func SeedReview(tb testing.TB, m *db.Manager, productID uint, rating float64) uint {
	tb.Helper()
	r := &models.Review{ProductID: productID, Rating: &rating}
	if err := m.DB().Create(r).Error; err != nil {
		tb.Fatalf("seed review: %v", err)
	}
	return r.ID
}

// SeedOrderDetail records a sale of productID.
func SeedOrderDetail(tb testing.TB, m *db.Manager, productID uint) {
	tb.Helper()
	od := &models.OrderDetail{OrderID: 1, ProductID: productID, Quantity: 1, Price: 1}
	if err := m.DB().Create(od).Error; err != nil {
		tb.Fatalf("seed order detail: %v", err)
	}
}
