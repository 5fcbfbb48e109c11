// Package cache defines the key/value cache contract used by the catalog
// services together with key construction, value codecs and an in-process
// backend. A Redis backend lives in pkg/redis.
package cache

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL bounds how long an entry is served before it reads as absent.
const DefaultTTL = 5 * time.Minute

var (
	// ErrMiss is returned by Get when the key is absent or expired.
	ErrMiss = errors.New("cache miss")

	// ErrInvalidKey is returned for empty keys or patterns.
	ErrInvalidKey = errors.New("invalid cache key")

	// ErrCodec is returned when a value cannot be encoded or decoded.
	ErrCodec = errors.New("cache codec failed")
)

// IsMiss reports whether err means the key was not cached.
func IsMiss(err error) bool {
	return errors.Is(err, ErrMiss)
}

// Cache is the contract the services depend on. Implementations must be
// safe for concurrent use.
type Cache interface {
	// BuildKey produces a deterministic key, see BuildKey.
	BuildKey(prefix, op string, params map[string]any) string

	// Get decodes the cached value for key into dest. It returns ErrMiss
	// when the key is absent or expired.
	Get(ctx context.Context, key string, dest any) error

	// Set stores value under key. A ttl <= 0 uses the backend default.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// DeletePattern removes every key matching a glob pattern ('*', '?',
	// '[...]') and returns how many were removed.
	DeletePattern(ctx context.Context, pattern string) (int, error)
}

// Nop returns a Cache that stores nothing. Every Get is a miss.
func Nop() Cache { return nopCache{} }

type nopCache struct{}

func (nopCache) BuildKey(prefix, op string, params map[string]any) string {
	return BuildKey(prefix, op, params)
}

func (nopCache) Get(context.Context, string, any) error { return ErrMiss }

func (nopCache) Set(context.Context, string, any, time.Duration) error { return nil }

func (nopCache) Delete(context.Context, string) error { return nil }

func (nopCache) DeletePattern(context.Context, string) (int, error) { return 0, nil }
