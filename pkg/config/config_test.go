package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ammar0144/catalog4go/pkg/db"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != db.DriverSQLite || cfg.Database.Database != ":memory:" {
		t.Fatalf("unexpected database defaults %+v", cfg.Database)
	}
	if cfg.Cache.Backend != CacheMemory || cfg.Cache.TTL != 5*time.Minute {
		t.Fatalf("unexpected cache defaults %+v", cfg.Cache)
	}
}

func TestLoadFileUsesDriverDefaults(t *testing.T) {
	path := writeFile(t, `
log:
  mode: dev
  level: debug
cache:
  backend: redis
  ttl: 2m
database:
  driver: postgres
  host: pg.local
  database: catalog
  username: app
redis:
  host: cache.local
  key_namespace: shop
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Port != 5432 || cfg.Database.SSLMode != "disable" {
		t.Fatalf("postgres defaults not applied: %+v", cfg.Database)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Fatalf("want=25 got=%d", cfg.Database.MaxOpenConns)
	}
	if cfg.Cache.TTL != 2*time.Minute || cfg.Redis.KeyNamespace != "shop" || cfg.Redis.Port != 6379 {
		t.Fatalf("unexpected cache config %+v %+v", cfg.Cache, cfg.Redis)
	}
	if cfg.Log.Mode != "dev" || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log config %+v", cfg.Log)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, `
database:
  driver: postgres
  host: pg.local
  database: catalog
  username: app
`)
	t.Setenv("CATALOG_DB_DRIVER", "mysql")
	t.Setenv("CATALOG_DB_HOST", "mysql.local")
	t.Setenv("CATALOG_DB_PORT", "3307")
	t.Setenv("CATALOG_CACHE_TTL", "90s")
	t.Setenv("CATALOG_REDIS_CLUSTER_ADDRS", "a:1, b:2,")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "mysql" || cfg.Database.Host != "mysql.local" || cfg.Database.Port != 3307 {
		t.Fatalf("env not applied: %+v", cfg.Database)
	}
	if cfg.Database.Collation != "utf8mb4_unicode_ci" {
		t.Fatalf("mysql defaults not applied: %q", cfg.Database.Collation)
	}
	if cfg.Cache.TTL != 90*time.Second {
		t.Fatalf("want=90s got=%v", cfg.Cache.TTL)
	}
	if got := cfg.Redis.Cluster.Addresses; len(got) != 2 || got[0] != "a:1" || got[1] != "b:2" {
		t.Fatalf("unexpected cluster addresses %v", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
		want string
	}{
		{name: "unknown key", body: "cache:\n  backnd: redis\n", want: "backnd"},
		{name: "unknown backend", body: "cache:\n  backend: disk\n", want: "unknown backend"},
		{name: "mysql without host", body: "database:\n  driver: mysql\n", want: "host is required"},
		{name: "bad env number", env: map[string]string{"CATALOG_DB_PORT": "x"}, want: "CATALOG_DB_PORT"},
		{name: "bad env duration", env: map[string]string{"CATALOG_CACHE_TTL": "soon"}, want: "CATALOG_CACHE_TTL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.body != "" {
				path = writeFile(t, tt.body)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
