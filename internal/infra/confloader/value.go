package confloader

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindMapping
	KindSequence
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a configuration value: null, string, number, bool, nested
// mapping or sequence. The zero Value is null.
type Value struct {
	kind Kind

	str string
	// integral numbers are kept in i, everything else in f.
	integral bool
	i        int64
	f        float64
	b        bool
	m        Mapping
	seq      []Value
}

// Null returns the null value. Env-file lines without '=' map to it.
func Null() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int returns an integral number value.
func Int(n int64) Value { return Value{kind: KindNumber, integral: true, i: n} }

// Float returns a number value. Floats without a fractional part are
// still reported as floats by IsInt.
func Float(f float64) Value { return Value{kind: KindNumber, f: f} }

// Bool returns a bool value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Map returns a mapping value. The mapping is not copied.
func Map(m Mapping) Value { return Value{kind: KindMapping, m: m} }

// Seq returns a sequence value. The slice is not copied.
func Seq(items ...Value) Value { return Value{kind: KindSequence, seq: items} }

// ValueOf converts decoded document data into a Value.
// Unknown types fall back to their fmt representation as a string.
func ValueOf(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return uintValue(uint64(t))
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint64:
		return uintValue(t)
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case time.Time:
		return String(formatTime(t))
	case map[string]any:
		return Map(mappingOf(t))
	case map[any]any:
		m := make(Mapping, len(t))
		for k, item := range t {
			m[fmt.Sprint(k)] = ValueOf(item)
		}
		return Map(m)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = ValueOf(item)
		}
		return Seq(items...)
	default:
		return String(fmt.Sprint(t))
	}
}

// dateLayout is how YAML dates without a time of day are written back.
const dateLayout = "2006-01-02"

// formatTime renders YAML timestamps as strings. Midnight UTC is taken
// to be a plain date such as 2024-01-01 and keeps the date-only form.
func formatTime(t time.Time) string {
	if t.Location() == time.UTC && t.Equal(t.Truncate(24*time.Hour)) {
		return t.Format(dateLayout)
	}
	return t.Format(time.RFC3339Nano)
}

func uintValue(n uint64) Value {
	if n > math.MaxInt64 {
		return Float(float64(n))
	}
	return Int(int64(n))
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string held by v.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// IsInt reports whether v is an integral number.
func (v Value) IsInt() bool { return v.kind == KindNumber && v.integral }

// Int returns v as an int64. Only integral numbers convert.
func (v Value) Int() (int64, bool) {
	if !v.IsInt() {
		return 0, false
	}
	return v.i, true
}

// Float returns v as a float64. Any number converts.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	if v.integral {
		return float64(v.i), true
	}
	return v.f, true
}

// Bool returns the bool held by v.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Map returns the nested mapping held by v.
func (v Value) Map() (Mapping, bool) {
	if v.kind != KindMapping {
		return nil, false
	}
	return v.m, true
}

// Seq returns the sequence held by v.
func (v Value) Seq() ([]Value, bool) {
	if v.kind != KindSequence {
		return nil, false
	}
	return v.seq, true
}

// Text renders scalars as plain text. Mappings, sequences and null
// report false.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case KindString:
		return v.str, true
	case KindNumber:
		if v.integral {
			return strconv.FormatInt(v.i, 10), true
		}
		return strconv.FormatFloat(v.f, 'g', -1, 64), true
	case KindBool:
		return strconv.FormatBool(v.b), true
	default:
		return "", false
	}
}

// Interface converts v back into plain Go data
// (nil, string, int64, float64, bool, map[string]any, []any).
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		if v.integral {
			return v.i
		}
		return v.f
	case KindBool:
		return v.b
	case KindMapping:
		return v.m.Interface()
	case KindSequence:
		out := make([]any, len(v.seq))
		for i, item := range v.seq {
			out[i] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// Equal reports whether v and o hold the same variant and contents.
// An integral number never equals a float number.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindNumber:
		if v.integral != o.integral {
			return false
		}
		if v.integral {
			return v.i == o.i
		}
		return v.f == o.f
	case KindBool:
		return v.b == o.b
	case KindMapping:
		return v.m.Equal(o.m)
	case KindSequence:
		if len(v.seq) != len(o.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(o.seq[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindMapping:
		return Map(v.m.Clone())
	case KindSequence:
		items := make([]Value, len(v.seq))
		for i, item := range v.seq {
			items[i] = item.Clone()
		}
		return Seq(items...)
	default:
		return v
	}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if s, ok := v.Text(); ok {
		return s
	}
	if v.kind == KindNull {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return v.kind.String()
	}
	return string(b)
}

// MarshalJSON implements json.Marshaler. JSON has no NaN or infinity,
// so non-finite numbers are written as the strings "NaN", "+Inf" and
// "-Inf".
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if !v.integral && (math.IsNaN(v.f) || math.IsInf(v.f, 0)) {
			return json.Marshal(strconv.FormatFloat(v.f, 'g', -1, 64))
		}
	case KindMapping:
		if v.m == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.m)
	case KindSequence:
		if v.seq == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.seq)
	}
	return json.Marshal(v.Interface())
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}

var (
	_ json.Marshaler = Value{}
	_ yaml.Marshaler = Value{}
)

// Mapping is a merged configuration: top-level key to value.
type Mapping map[string]Value

func mappingOf(raw map[string]any) Mapping {
	m := make(Mapping, len(raw))
	for k, v := range raw {
		m[k] = ValueOf(v)
	}
	return m
}

// Get returns the value stored under key.
func (m Mapping) Get(key string) (Value, bool) {
	v, ok := m[key]
	return v, ok
}

// GetString returns the string stored under key. Non-string values
// report false.
func (m Mapping) GetString(key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	return v.Str()
}

// Keys returns the mapping keys in sorted order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Interface converts m into a map[string]any of plain Go data.
func (m Mapping) Interface() map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Interface()
	}
	return out
}

// Equal reports whether m and o hold the same keys with equal values.
func (m Mapping) Equal(o Mapping) bool {
	if len(m) != len(o) {
		return false
	}
	for k, v := range m {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of m.
func (m Mapping) Clone() Mapping {
	if m == nil {
		return nil
	}
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}
