// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"

	"github.com/z5labs/cascade/pkg/config/key"
)

// Store represents a general key value structure.
type Store interface {
	Set(key.Keyer, any) error
}

// Source defines valid config sources as those who can
// serialize themselves into a key value like structure.
type Source interface {
	Apply(Store) error
}

// Read applies the given sources, in order, to a new Map.
// Subsequent sources override previous sources.
func Read(srcs ...Source) (*Map, error) {
	m := NewMap()
	for _, src := range srcs {
		err := src.Apply(m)
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Apply implements the [Source] interface. It walks m in insertion order
// and sets every leaf value on the given store.
func (m *Map) Apply(store Store) error {
	return walkMap(m, store, nil)
}

func walkMap(m *Map, store Store, chain key.Chain) error {
	var err error
	m.Range(func(k string, v Value) bool {
		next := append(chain[:len(chain):len(chain)], key.Name(k))
		sub, ok := v.AsMap()
		if ok && sub.Len() > 0 {
			err = walkMap(sub, store, next)
			return err == nil
		}
		err = store.Set(next, v)
		return err == nil
	})
	return err
}

// UnknownKeyerError
type UnknownKeyerError struct {
	key key.Keyer
}

// Error implements the error interface.
func (e UnknownKeyerError) Error() string {
	return fmt.Sprintf("config source tried setting config value with unknown key.Keyer: %s", e.key.Key())
}

// EmptyKeyChainError
type EmptyKeyChainError struct {
	Value any
}

// Error implements the error interface.
func (e EmptyKeyChainError) Error() string {
	return fmt.Sprintf("attempted to set value to an empty key chain: %v", e.Value)
}

// UnexpectedKeyValueTypeError represents the situation when
// a user tries nesting a key under a value which is not a map.
type UnexpectedKeyValueTypeError struct {
	Key          string
	ExpectedType string
}

// Error implements the error interface.
func (e UnexpectedKeyValueTypeError) Error() string {
	return fmt.Sprintf("expected key value to be a %s: %s", e.ExpectedType, e.Key)
}

// Set implements the [Store] interface. Intermediate maps of a
// [key.Chain] are created as needed.
func (m *Map) Set(k key.Keyer, x any) error {
	v, err := ValueOf(x)
	if err != nil {
		return err
	}
	return set(m, k, v)
}

func set(m *Map, k key.Keyer, v Value) error {
	switch x := k.(type) {
	case key.Name:
		m.Put(string(x), v)
	case key.Chain:
		return setKeyChain(m, x, v)
	default:
		return UnknownKeyerError{key: k}
	}
	return nil
}

func setKeyChain(m *Map, chain key.Chain, v Value) error {
	if len(chain) == 0 {
		return EmptyKeyChainError{Value: v.Interface()}
	}

	root := chain[0]
	if len(chain) == 1 {
		return set(m, root, v)
	}

	old, ok := m.Get(root.Key())
	if !ok {
		old = Node(NewMap())
		m.Put(root.Key(), old)
	}

	subM, ok := old.AsMap()
	if !ok {
		return UnexpectedKeyValueTypeError{
			Key:          root.Key(),
			ExpectedType: KindMap.String(),
		}
	}
	return set(subM, chain[1:], v)
}
