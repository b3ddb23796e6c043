// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config provides the dynamic, ordered config tree used to
// resolve environment scoped configuration values.
//
// # Values
//
// A config tree is made of [Value]s. A Value is either null, a string,
// a number, a bool, a list of Values or a nested [Map]. A Map keeps its
// keys in insertion order so documents round trip in the order they
// were written.
//
// # Sources
//
// A [Source] knows how to apply itself to a [Store]. JSON, YAML and
// environment variables are supported out of the box:
//
//	m, err := config.Read(
//	    config.FromJson(f),
//	    config.FromEnv("APP_"),
//	)
//
// Subsequent sources override previous sources.
//
// # Resolution helpers
//
// [Merge] deep merges two Maps without modifying either one and
// [Lookup] reads a dotted key such as "api.endpoints.0".
//
// Lookup treats null, "", 0 and false as absent. This mirrors the
// key resolution rules of the cascade package and means such values
// can never be read through a dotted key.
package config
