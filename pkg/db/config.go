package db

import (
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DefaultConfig returns sane pool and GORM defaults for the given driver.
// An empty driver means mysql.
func DefaultConfig(driver string) *Config {
	cfg := &Config{
		Driver:          driver,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
		TranslateError:  true,
		QueryTimeout:    30 * time.Second,
		Logging:         LoggingConfig{Level: "error", SlowQueryThreshold: 200 * time.Millisecond},
	}
	switch cfg.driver() {
	case DriverMySQL:
		cfg.Port = 3306
		cfg.Collation = "utf8mb4_unicode_ci"
		cfg.TimeZone = "UTC"
		cfg.PrepareStmt = true
	case DriverPostgres:
		cfg.Port = 5432
		cfg.SSLMode = "disable"
		cfg.TimeZone = "UTC"
	case DriverSQLite:
		// a single connection keeps ":memory:" databases shared across calls
		cfg.Database = ":memory:"
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
	}
	return cfg
}

func (c *Config) driver() string {
	d := strings.ToLower(strings.TrimSpace(c.Driver))
	switch d {
	case "", "mariadb":
		return DriverMySQL
	case "postgresql", "pg":
		return DriverPostgres
	case "sqlite3":
		return DriverSQLite
	}
	return d
}

// Validate checks if the database configuration is valid
func (c *Config) Validate() error {
	switch c.driver() {
	case DriverMySQL, DriverPostgres:
		if c.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Port < 1 || c.Port > 65535 {
			return fmt.Errorf("database port must be between 1 and 65535, got %d", c.Port)
		}
		if c.Username == "" {
			return fmt.Errorf("database username is required")
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Driver)
	}
	if c.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.MaxOpenConns < 1 {
		return fmt.Errorf("max_open_conns must be at least 1")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns cannot be greater than max_open_conns")
	}

	if c.driver() == DriverMySQL && c.SSL.Enabled && !c.SSL.SkipVerify {
		if err := c.validateTLSFiles(); err != nil {
			return fmt.Errorf("TLS configuration error: %w", err)
		}
	}
	return nil
}

func (c *Config) validateTLSFiles() error {
	if c.SSL.CAFile != "" {
		if _, err := os.Stat(c.SSL.CAFile); err != nil {
			return fmt.Errorf("CA file not accessible: %w", err)
		}
	}
	if c.SSL.CertFile != "" || c.SSL.KeyFile != "" {
		if c.SSL.CertFile == "" || c.SSL.KeyFile == "" {
			return fmt.Errorf("both CertFile and KeyFile must be provided together")
		}
		if _, err := os.Stat(c.SSL.CertFile); err != nil {
			return fmt.Errorf("client certificate file not accessible: %w", err)
		}
		if _, err := os.Stat(c.SSL.KeyFile); err != nil {
			return fmt.Errorf("client key file not accessible: %w", err)
		}
	}
	return nil
}

// Dialector returns the GORM dialector for the configured driver.
func (c *Config) Dialector() (gorm.Dialector, error) {
	switch c.driver() {
	case DriverMySQL:
		dsn, err := c.MySQLDSN()
		if err != nil {
			return nil, err
		}
		return gormmysql.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(c.PostgresDSN()), nil
	case DriverSQLite:
		return sqlite.Open(c.Database), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}

// MySQLDSN builds the DSN through the driver's config builder and registers
// a TLS profile when SSL is enabled.
func (c *Config) MySQLDSN() (string, error) {
	cfg := mysql.Config{
		User:                 c.Username,
		Passwd:               c.Password,
		Net:                  "tcp",
		Addr:                 fmt.Sprintf("%s:%d", c.Host, c.Port),
		DBName:               c.Database,
		Collation:            c.Collation,
		Loc:                  parseLocation(c.TimeZone),
		ParseTime:            true,
		AllowNativePasswords: true,
	}

	if c.SSL.Enabled {
		if c.SSL.SkipVerify {
			cfg.TLSConfig = "skip-verify"
		} else {
			tlsConfig, err := c.buildTLSConfig()
			if err != nil {
				return "", err
			}
			name := c.tlsConfigName()
			if err := mysql.RegisterTLSConfig(name, tlsConfig); err != nil {
				return "", fmt.Errorf("register tls config: %w", err)
			}
			cfg.TLSConfig = name
		}
	}

	return cfg.FormatDSN(), nil
}

func (c *Config) buildTLSConfig() (*tls.Config, error) {
	tlsConfig := &tls.Config{ServerName: c.SSL.ServerName}
	if c.SSL.CAFile != "" {
		caCert, err := os.ReadFile(c.SSL.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("invalid CA certificate in %s", c.SSL.CAFile)
		}
		tlsConfig.RootCAs = pool
	}
	if c.SSL.CertFile != "" && c.SSL.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(c.SSL.CertFile, c.SSL.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	return tlsConfig, nil
}

// tlsConfigName is derived from the SSL settings so distinct configs never
// overwrite each other's registration.
func (c *Config) tlsConfigName() string {
	h := sha256.New()
	h.Write([]byte(c.SSL.CAFile))
	h.Write([]byte(c.SSL.CertFile))
	h.Write([]byte(c.SSL.KeyFile))
	h.Write([]byte(c.SSL.ServerName))
	return "catalog4go_tls_" + hex.EncodeToString(h.Sum(nil))[:16]
}

// PostgresDSN returns a URL-form connection string for pgx.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	q := url.Values{}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	q.Set("sslmode", sslMode)
	if c.TimeZone != "" {
		q.Set("TimeZone", c.TimeZone)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func parseLocation(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}
