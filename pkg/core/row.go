package core

import (
	"fmt"
	"strconv"
	"time"
)

// Kind tags the normalized type of a row value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
	KindOther
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "other"
	}
}

// KindOf reports the kind of a normalized value.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case string:
		return KindString
	case int64:
		return KindInt
	case float64:
		return KindFloat
	case bool:
		return KindBool
	case time.Time:
		return KindTime
	default:
		return KindOther
	}
}

// Normalize converts driver values into the closed set of row value types:
// nil, string, int64, float64, bool and time.Time.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil, string, int64, float64, bool, time.Time:
		return x
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x) //nolint:gosec // values above MaxInt64 are not expected from supported drivers
	case float32:
		return float64(x)
	case fmt.Stringer:
		return x.String()
	default:
		return x
	}
}

// Row is an ordered mapping from column name to a normalized value.
// The zero value is an empty row ready for use. Copies of a Row share
// storage; use Clone before mutating a row owned by someone else.
type Row struct {
	keys []string
	vals map[string]any
}

// NewRow creates a row from alternating key/value pairs.
func NewRow(pairs ...any) Row {
	var r Row
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(fmt.Sprint(pairs[i]), pairs[i+1])
	}
	return r
}

// RowFromMap creates a row from a map using the given key order.
// Keys in m that are not listed in order are appended afterwards in no particular order.
func RowFromMap(m map[string]any, order ...string) Row {
	var r Row
	for _, k := range order {
		if v, ok := m[k]; ok {
			r.Set(k, v)
		}
	}
	for k, v := range m {
		if !r.Has(k) {
			r.Set(k, v)
		}
	}
	return r
}

// Set stores v under name, keeping the first insertion position of name.
func (r *Row) Set(name string, v any) {
	if r.vals == nil {
		r.vals = make(map[string]any)
	}
	if _, ok := r.vals[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.vals[name] = Normalize(v)
}

// Get returns the value stored under name.
func (r Row) Get(name string) (any, bool) {
	v, ok := r.vals[name]
	return v, ok
}

// Has reports whether name is present.
func (r Row) Has(name string) bool {
	_, ok := r.vals[name]
	return ok
}

// Delete removes name from the row.
func (r *Row) Delete(name string) {
	if _, ok := r.vals[name]; !ok {
		return
	}
	delete(r.vals, name)
	for i, k := range r.keys {
		if k == name {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the column names in insertion order.
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of columns.
func (r Row) Len() int {
	return len(r.keys)
}

// IsEmpty reports whether the row holds no columns.
func (r Row) IsEmpty() bool {
	return len(r.keys) == 0
}

// Clone returns an independent copy.
func (r Row) Clone() Row {
	out := Row{keys: r.Keys(), vals: make(map[string]any, len(r.vals))}
	for k, v := range r.vals {
		out.vals[k] = v
	}
	return out
}

// Map returns the row as a plain map.
func (r Row) Map() map[string]any {
	out := make(map[string]any, len(r.vals))
	for k, v := range r.vals {
		out[k] = v
	}
	return out
}

// FormatValue formats a normalized value for display.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
