// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package key provides types for addressing values inside a nested config tree.
package key

import (
	"strings"
)

// Separator joins the segments of a dotted key.
const Separator = "."

// Keyer is a common interface all value key types must implement.
type Keyer interface {
	Key() string
}

// Chain represents nested keys.
type Chain []Keyer

// Key implements the [Keyer] interface.
func (k Chain) Key() string {
	ss := make([]string, len(k))
	for i := range k {
		ss[i] = k[i].Key()
	}
	return strings.Join(ss, Separator)
}

// Name represents a single, un-nested key.
type Name string

// Key implements the [Keyer] interface.
func (k Name) Key() string {
	return string(k)
}

// Parse splits a dotted key into its segments. A key without
// a separator is returned as a [Name]. Literal dots cannot be escaped.
func Parse(s string) Keyer {
	if !strings.Contains(s, Separator) {
		return Name(s)
	}

	parts := strings.Split(s, Separator)
	chain := make(Chain, len(parts))
	for i, part := range parts {
		chain[i] = Name(part)
	}
	return chain
}

// Segments returns the individual names making up k.
func Segments(k Keyer) []string {
	switch x := k.(type) {
	case Chain:
		var ss []string
		for _, c := range x {
			ss = append(ss, Segments(c)...)
		}
		return ss
	default:
		return []string{k.Key()}
	}
}
