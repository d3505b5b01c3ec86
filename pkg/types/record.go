package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one row, keyed by column name. Values read from a store are
// string, int64, or nil.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Int64 returns the column as an integer. The second result is false for nil
// or non-numeric values.
func (r Record) Int64(column string) (int64, bool) {
	return ToInt64(r[column])
}

// Text renders the column value as text; nil renders as "".
func (r Record) Text(column string) string {
	return FormatValue(r[column])
}

// Keys returns the record's column names in the order they appear in
// columns. Columns absent from the record are skipped.
func (r Record) Keys(columns []string) []string {
	keys := make([]string, 0, len(r))
	for _, c := range columns {
		if _, ok := r[c]; ok {
			keys = append(keys, c)
		}
	}
	return keys
}

// NormalizeValue converts a driver value to string, int64 or nil and trims
// strings.
func NormalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return strings.TrimSpace(string(x))
	case string:
		return strings.TrimSpace(x)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case int8:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	default:
		return v
	}
}

// ToInt64 converts integers and numeric strings to int64.
func ToInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case float64:
		return int64(x), x == float64(int64(x))
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return n, err == nil
	case []byte:
		n, err := strconv.ParseInt(strings.TrimSpace(string(x)), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// FormatValue renders a scalar for display; nil renders as "".
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}

// EqualValues compares two scalars after normalization, so int and int64 or
// padded strings compare equal.
func EqualValues(a, b any) bool {
	a, b = NormalizeValue(a), NormalizeValue(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ai, ok := a.(int64); ok {
		bi, ok := ToInt64(b)
		return ok && ai == bi
	}
	if bi, ok := b.(int64); ok {
		ai, ok := ToInt64(a)
		return ok && ai == bi
	}
	return FormatValue(a) == FormatValue(b)
}
