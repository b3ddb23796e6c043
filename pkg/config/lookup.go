// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/z5labs/cascade/pkg/config/key"
)

// KeyNotFoundError is returned by [Lookup] when a segment of
// a dotted key could not be resolved.
type KeyNotFoundError struct {
	Key     string
	Segment string
}

// Error implements the error interface.
func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key not found: %s (at segment %q)", e.Key, e.Segment)
}

// Lookup walks root one dotted segment at a time, left to right.
//
// A segment whose value is absent or falsy (see [Value.IsAbsentOrFalsy])
// fails the lookup, so 0, "" and false can never be read through Lookup.
// Segments which are non-negative integers index into lists.
func Lookup(root Value, dottedKey string) (Value, error) {
	cur := root
	for _, seg := range strings.Split(dottedKey, key.Separator) {
		next, ok := child(cur, seg)
		if !ok || next.IsAbsentOrFalsy() {
			return Null(), &KeyNotFoundError{Key: dottedKey, Segment: seg}
		}
		cur = next
	}
	return cur, nil
}

func child(v Value, seg string) (Value, bool) {
	switch v.Kind() {
	case KindMap:
		return v.m.Get(seg)
	case KindList:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(v.list) {
			return Null(), false
		}
		return v.list[i], true
	default:
		return Null(), false
	}
}
