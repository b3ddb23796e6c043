// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

// Merge returns a new Map holding base overridden by override. Nested maps
// present on both sides are merged recursively; any other value in override,
// lists included, replaces the base value wholesale. Neither input is modified.
//
// The result keeps base's key order, followed by keys only present
// in override in override's order.
func Merge(base, override *Map) *Map {
	out := base.Clone()
	override.Range(func(k string, ov Value) bool {
		bv, _ := out.Get(k)
		bm, baseIsMap := bv.AsMap()
		om, overrideIsMap := ov.AsMap()
		if baseIsMap && overrideIsMap {
			out.Put(k, Node(Merge(bm, om)))
			return true
		}
		out.Put(k, ov.Clone())
		return true
	})
	return out
}
