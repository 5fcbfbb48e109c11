package cache

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	json "github.com/goccy/go-json"
)

// KeySeparator joins key segments.
const KeySeparator = ":"

// maxSegmentLen is the longest parameter value kept verbatim in a key.
const maxSegmentLen = 64

// BuildKey returns prefix:op followed by :name:value for every param, with
// params sorted by name so that equal inputs always produce equal keys.
// Values longer than 64 bytes are replaced with a 16-hex-digit xxhash digest.
//
//	BuildKey("products", "list", map[string]any{"skip": 0, "limit": 10})
//	// products:list:limit:10:skip:0
func BuildKey(prefix, op string, params map[string]any) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(KeySeparator)
	b.WriteString(op)

	if len(params) == 0 {
		return b.String()
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		b.WriteString(KeySeparator)
		b.WriteString(name)
		b.WriteString(KeySeparator)
		b.WriteString(segment(params[name]))
	}
	return b.String()
}

func segment(v any) string {
	s := formatValue(v)
	if len(s) > maxSegmentLen {
		return fmt.Sprintf("%016x", xxhash.Sum64String(s))
	}
	return s
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case string:
		return t
	case []byte:
		return string(t)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "nil"
		}
		return formatValue(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32:
		return fmt.Sprintf("%v", v)
	}

	// maps are marshalled with sorted keys, so this stays deterministic
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}
