// Package expr implements a small, sandboxed expression language used by
// LinkML class rules: arithmetic, comparisons, logical operators,
// conditionals, dotted variable access and user-registered functions. It is
// parse-independent: callers build an AST (directly, or with Parse) and
// hand it to Eval.
package expr

import (
	"fmt"
	"sort"
)

// Kind identifies the dynamic type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is a JSON-shaped dynamic value: the evaluator's variables, literals
// and results are all Values, and instance documents validated elsewhere in
// this module are represented the same way so rule expressions can read
// them directly.
type Value struct {
	kind Kind
	b    bool
	n    float64
	// isInt records that n was produced from an integral source (an i64),
	// so callers that care about exactness (equality, hashing, formatting)
	// can avoid float round-off. Per the data-model design note, integer
	// precision is preserved where possible.
	isInt bool
	i     int64
	s     string
	arr   []Value
	obj   *OrderedValues
}

// OrderedValues is an insertion-ordered string-keyed map of Values, used for
// ObjectValue so structural hashing can walk keys deterministically.
type OrderedValues struct {
	keys   []string
	values map[string]Value
}

// NewOrderedValues returns an empty OrderedValues.
func NewOrderedValues() *OrderedValues {
	return &OrderedValues{values: make(map[string]Value)}
}

// Set inserts or overwrites key's value, preserving first-seen order.
func (o *OrderedValues) Set(key string, v Value) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get retrieves key's value.
func (o *OrderedValues) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *OrderedValues) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// SortedKeys returns the keys sorted lexicographically, used when hashing
// (object hashes must be independent of insertion order).
func (o *OrderedValues) SortedKeys() []string {
	out := append([]string(nil), o.keys...)
	sort.Strings(out)
	return out
}

// Len returns the number of entries.
func (o *OrderedValues) Len() int {
	return len(o.keys)
}

// Null is the null Value.
var Null = Value{kind: KindNull}

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Float wraps a float64.
func Float(f float64) Value { return Value{kind: KindNumber, n: f} }

// Int wraps an int64, preserving exactness.
func Int(i int64) Value { return Value{kind: KindNumber, n: float64(i), isInt: true, i: i} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array wraps a slice of Values.
func Array(items []Value) Value { return Value{kind: KindArray, arr: items} }

// Object wraps an OrderedValues.
func Object(o *OrderedValues) Value { return Value{kind: KindObject, obj: o} }

// Kind returns the dynamic type.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean value; valid only when Kind() == KindBool.
func (v Value) AsBool() bool { return v.b }

// AsFloat returns the numeric value as a float64; valid only when
// Kind() == KindNumber.
func (v Value) AsFloat() float64 { return v.n }

// AsInt returns the numeric value as an int64 along with whether the value
// was produced from an integral source.
func (v Value) AsInt() (int64, bool) { return v.i, v.isInt }

// AsString returns the string value; valid only when Kind() == KindString.
func (v Value) AsString() string { return v.s }

// AsArray returns the array elements; valid only when Kind() == KindArray.
func (v Value) AsArray() []Value { return v.arr }

// AsObject returns the object entries; valid only when Kind() == KindObject.
func (v Value) AsObject() *OrderedValues { return v.obj }

// Truthy implements the language's truthiness rule: null, false, 0, "", and
// empty array/object are falsy; everything else is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindNumber:
		return v.n != 0
	case KindString:
		return v.s != ""
	case KindArray:
		return len(v.arr) > 0
	case KindObject:
		return v.obj != nil && v.obj.Len() > 0
	default:
		return false
	}
}

// Equal reports whether v and other are the same JSON value. Floating point
// comparison is exact (bit/IEEE equality via ==), matching the Open
// Question resolution recorded in DESIGN.md.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.n == other.n
	case KindString:
		return v.s == other.s
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if v.obj.Len() != other.obj.Len() {
			return false
		}
		for _, k := range v.obj.Keys() {
			a, _ := v.obj.Get(k)
			b, ok := other.obj.Get(k)
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders v for diagnostics; it is not a canonical serialization.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindNumber:
		if v.isInt {
			return fmt.Sprintf("%d", v.i)
		}
		return fmt.Sprintf("%g", v.n)
	case KindString:
		return v.s
	case KindArray:
		return fmt.Sprintf("%v", v.arr)
	case KindObject:
		return fmt.Sprintf("object(%d)", v.obj.Len())
	}
	return "<invalid>"
}
