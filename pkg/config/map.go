// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"slices"
	"sort"
)

// Map is a string keyed collection of Values which remembers
// the order its keys were first inserted in.
type Map struct {
	keys []string
	vals map[string]Value
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{vals: make(map[string]Value)}
}

// FromMap converts an ordinary map into a Map. Keys are inserted
// in sorted order.
func FromMap(m map[string]any) (*Map, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cm := NewMap()
	for _, k := range keys {
		v, err := ValueOf(m[k])
		if err != nil {
			return nil, err
		}
		cm.Put(k, v)
	}
	return cm, nil
}

// Len returns the number of keys in m.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys of m in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// Has reports whether k is present in m, regardless of its value.
func (m *Map) Has(k string) bool {
	if m == nil {
		return false
	}
	_, ok := m.vals[k]
	return ok
}

// Get returns the value stored under k.
func (m *Map) Get(k string) (Value, bool) {
	if m == nil {
		return Null(), false
	}
	v, ok := m.vals[k]
	return v, ok
}

// Put stores v under k. Overwriting an existing key keeps its position.
func (m *Map) Put(k string, v Value) {
	if m.vals == nil {
		m.vals = make(map[string]Value)
	}
	if _, ok := m.vals[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.vals[k] = v
}

// Delete removes k from m.
func (m *Map) Delete(k string) {
	if !m.Has(k) {
		return
	}
	delete(m.vals, k)
	m.keys = slices.DeleteFunc(m.keys, func(s string) bool { return s == k })
}

// Range calls f for each key value pair in insertion order
// until f returns false.
func (m *Map) Range(f func(string, Value) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !f(k, m.vals[k]) {
			return
		}
	}
}

// Clone returns a deep copy of m. Cloning a nil Map returns an empty Map.
func (m *Map) Clone() *Map {
	c := NewMap()
	m.Range(func(k string, v Value) bool {
		c.Put(k, v.Clone())
		return true
	})
	return c
}

// Interface converts m into an ordinary map[string]any.
func (m *Map) Interface() map[string]any {
	out := make(map[string]any, m.Len())
	m.Range(func(k string, v Value) bool {
		out[k] = v.Interface()
		return true
	})
	return out
}
