// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"
	"math"
	"reflect"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

// String implements the [fmt.Stringer] interface.
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
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a single node of a config tree. It is either a scalar
// (string, number or bool), a list of Values, a nested [Map] or null.
// The zero Value is null.
type Value struct {
	kind Kind
	s    string
	n    float64
	b    bool
	list []Value
	m    *Map
}

// Null returns the null Value.
func Null() Value {
	return Value{}
}

// String returns a string Value.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Number returns a number Value.
func Number(n float64) Value {
	return Value{kind: KindNumber, n: n}
}

// Bool returns a bool Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// List returns a list Value holding the given elements.
func List(vs ...Value) Value {
	if vs == nil {
		vs = []Value{}
	}
	return Value{kind: KindList, list: vs}
}

// Node returns a Value wrapping the given Map. A nil Map is
// treated as an empty one.
func Node(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, m: m}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is the null Value.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsString returns the underlying string if v is a string.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// AsNumber returns the underlying number if v is a number.
func (v Value) AsNumber() (float64, bool) {
	return v.n, v.kind == KindNumber
}

// AsBool returns the underlying bool if v is a bool.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsList returns the underlying elements if v is a list.
func (v Value) AsList() ([]Value, bool) {
	return v.list, v.kind == KindList
}

// AsMap returns the underlying Map if v is a map.
func (v Value) AsMap() (*Map, bool) {
	return v.m, v.kind == KindMap
}

// field returns the value stored under name when v is a map.
// Any other kind yields null.
func (v Value) field(name string) Value {
	if v.kind != KindMap {
		return Null()
	}
	f, _ := v.m.Get(name)
	return f
}

// IsAbsentOrFalsy reports whether v should be treated as missing
// during key resolution. Null, the empty string, zero, NaN and false
// are all considered absent. Lists and maps never are, even when empty.
func (v Value) IsAbsentOrFalsy() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.s == ""
	case KindNumber:
		return v.n == 0 || math.IsNaN(v.n)
	case KindBool:
		return !v.b
	default:
		return false
	}
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		vs := make([]Value, len(v.list))
		for i, x := range v.list {
			vs[i] = x.Clone()
		}
		return Value{kind: KindList, list: vs}
	case KindMap:
		return Value{kind: KindMap, m: v.m.Clone()}
	default:
		return v
	}
}

// Interface converts v into plain Go values: string, float64, bool,
// []any, map[string]any or nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindNumber:
		return v.n
	case KindBool:
		return v.b
	case KindList:
		xs := make([]any, len(v.list))
		for i, x := range v.list {
			xs[i] = x.Interface()
		}
		return xs
	case KindMap:
		return v.m.Interface()
	default:
		return nil
	}
}

// String implements the [fmt.Stringer] interface.
func (v Value) String() string {
	if v.kind == KindString {
		return v.s
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%v", v.Interface())
	}
	return string(b)
}

// UnsupportedValueTypeError occurs when a Go value has no
// representation as a config Value.
type UnsupportedValueTypeError struct {
	Type string
}

// Error implements the error interface.
func (e UnsupportedValueTypeError) Error() string {
	return fmt.Sprintf("unsupported config value type: %s", e.Type)
}

// ValueOf converts a plain Go value into a Value. Maps with string keys
// become nested Maps with their keys sorted, since Go maps carry no order.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t.Clone(), nil
	case *Map:
		return Node(t.Clone()), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int8:
		return Number(float64(t)), nil
	case int16:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint:
		return Number(float64(t)), nil
	case uint8:
		return Number(float64(t)), nil
	case uint16:
		return Number(float64(t)), nil
	case uint32:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case []any:
		return listOf(t)
	case map[string]any:
		m, err := FromMap(t)
		if err != nil {
			return Null(), err
		}
		return Node(m), nil
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		xs := make([]any, rv.Len())
		for i := range xs {
			xs[i] = rv.Index(i).Interface()
		}
		return listOf(xs)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return ValueOf(m)
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	}
	return Null(), UnsupportedValueTypeError{Type: fmt.Sprintf("%T", x)}
}

func listOf(xs []any) (Value, error) {
	vs := make([]Value, len(xs))
	for i, x := range xs {
		v, err := ValueOf(x)
		if err != nil {
			return Null(), err
		}
		vs[i] = v
	}
	return List(vs...), nil
}
