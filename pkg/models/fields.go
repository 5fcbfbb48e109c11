// Package models holds the GORM entities of the catalog together with the
// explicit field mappers that build and patch them from plain field maps.
package models

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ammar0144/catalog4go/pkg/repository"
)

func mismatch(key, want string, v any) error {
	return errors.Join(repository.ErrValidation, fmt.Errorf("field %q: expected %s, got %T", key, want, v))
}

func asString(key string, v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case *string:
		if t != nil {
			return *t, nil
		}
	}
	return "", mismatch(key, "string", v)
}

// asOptString accepts nil for nullable columns.
func asOptString(key string, v any) (*string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &t, nil
	case *string:
		if t == nil {
			return nil, nil
		}
		s := *t
		return &s, nil
	}
	return nil, mismatch(key, "string or null", v)
}

func asFloat(key string, v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case *float64:
		if t != nil {
			return *t, nil
		}
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint:
		return float64(t), nil
	}
	return 0, mismatch(key, "number", v)
}

// asOptFloat accepts nil for nullable columns.
func asOptFloat(key string, v any) (*float64, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case *float64:
		if t == nil {
			return nil, nil
		}
	}
	f, err := asFloat(key, v)
	if err != nil {
		return nil, mismatch(key, "number or null", v)
	}
	return &f, nil
}

var errOverflow = errors.New("value overflows int")

func overflow(key string, v any) error {
	return errors.Join(repository.ErrValidation, errOverflow, fmt.Errorf("field %q: %v", key, v))
}

func asInt(key string, v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case *int:
		if t != nil {
			return *t, nil
		}
	case int32:
		return int(t), nil
	case int64:
		if t > math.MaxInt || t < math.MinInt {
			return 0, overflow(key, v)
		}
		return int(t), nil
	case uint:
		if uint64(t) > math.MaxInt {
			return 0, overflow(key, v)
		}
		return int(t), nil
	case uint64:
		if t > math.MaxInt {
			return 0, overflow(key, v)
		}
		return int(t), nil
	case float64:
		// decoded JSON numbers arrive as float64
		if t != math.Trunc(t) {
			break
		}
		if t >= math.MaxInt || t < math.MinInt {
			return 0, overflow(key, v)
		}
		return int(t), nil
	}
	return 0, mismatch(key, "integer", v)
}

func asUint(key string, v any) (uint, error) {
	switch t := v.(type) {
	case *uint:
		if t != nil {
			return *t, nil
		}
		return 0, mismatch(key, "identifier", v)
	case uint:
		return t, nil
	case uint64:
		if t > math.MaxUint {
			return 0, overflow(key, v)
		}
		return uint(t), nil
	}
	n, err := asInt(key, v)
	if errors.Is(err, errOverflow) {
		return 0, err
	}
	if err != nil || n < 0 {
		return 0, mismatch(key, "identifier", v)
	}
	return uint(n), nil
}

// unknownKeys returns the sorted keys of fields not listed in known.
func unknownKeys(fields map[string]any, known map[string]bool) []string {
	var out []string
	for k := range fields {
		if !known[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
