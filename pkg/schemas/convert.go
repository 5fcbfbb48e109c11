// Package schemas holds the validated data-transfer types of the catalog.
// Schemas use pointer fields so that an unset field can be told apart from
// a zero value; Fields returns only the set ones.
package schemas

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ammar0144/catalog4go/pkg/repository"
)

// Schema is implemented by every DTO accepted by the services.
type Schema interface {
	validation.Validatable

	// Fields returns the set fields keyed by column name. Nested objects
	// are map[string]any and to-many relations are []any.
	Fields() map[string]any
}

// Validate runs the schema rules and tags failures with ErrValidation.
func Validate(s validation.Validatable) error {
	if s == nil {
		return errors.Join(repository.ErrValidation, errors.New("schema is required"))
	}
	if err := s.Validate(); err != nil {
		return errors.Join(repository.ErrValidation, err)
	}
	return nil
}

// ToModelFields flattens schema fields into column fields:
//   - keys ending in _id are kept as is;
//   - a nested object with a non-nil "id" becomes {key}_id, unless that
//     key is already present;
//   - nested objects without an id and all slices are dropped;
//   - everything else is copied.
func ToModelFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		if strings.HasSuffix(key, "_id") {
			out[key] = value
		}
	}

	for key, value := range fields {
		if strings.HasSuffix(key, "_id") {
			continue
		}
		switch v := value.(type) {
		case map[string]any:
			id, ok := v["id"]
			if !ok || id == nil {
				continue
			}
			if _, taken := out[key+"_id"]; !taken {
				out[key+"_id"] = id
			}
		case []any, []map[string]any:
			continue
		default:
			out[key] = value
		}
	}
	return out
}

// Strip returns a copy of fields without the given keys.
func Strip(fields map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

func setIf[T any](fields map[string]any, key string, v *T) {
	if v != nil {
		fields[key] = *v
	}
}
