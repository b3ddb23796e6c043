// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cascade

import (
	"strings"

	"github.com/z5labs/cascade/pkg/config"
	"github.com/z5labs/cascade/pkg/config/key"
)

// Get resolves key against the active environment and returns it as a
// plain Go value (see [config.Value.Interface]). def is returned when the
// key can not be resolved or its value is null, "", 0 or false.
func (c *Configuration) Get(key string, def any) any {
	v, ok := c.Value(key)
	if !ok {
		return def
	}
	return v.Interface()
}

// Value resolves key like Get but returns a copy of the config node.
func (c *Configuration) Value(key string) (config.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, err := c.resolve(key)
	if err != nil {
		return config.Null(), false
	}
	return v.Clone(), true
}

// Unmarshal resolves key and decodes its value into v. Struct fields are
// matched using the "config" tag.
func (c *Configuration) Unmarshal(key string, v any) error {
	c.mu.RLock()
	val, err := c.resolve(key)
	if err == nil {
		val = val.Clone()
	}
	c.mu.RUnlock()
	if err != nil {
		return err
	}
	return config.Decode(val, v)
}

// Read resolves key and decodes its value as a T.
func Read[T any](c *Configuration, key string) (T, error) {
	var t T
	err := c.Unmarshal(key, &t)
	return t, err
}

// ReadOr is like Read but returns def on any error.
func ReadOr[T any](c *Configuration, key string, def T) T {
	t, err := Read[T](c, key)
	if err != nil {
		return def
	}
	return t
}

// resolve must be called with c.mu held.
//
// With the default environment active every key is looked up from the
// top level. Otherwise the key is looked up in the environment's section
// and, in cascade mode, in the top level when that fails. A dotted key is
// not cascaded when the environment has no section at all.
func (c *Configuration) resolve(k string) (config.Value, error) {
	root := config.Node(c.obj)
	if !c.environmentEnabled() {
		return config.Lookup(root, k)
	}

	section, exists := c.obj.Get(c.environment)
	if !exists {
		if c.cascade && !strings.Contains(k, key.Separator) {
			return config.Lookup(root, k)
		}
		return config.Null(), &config.KeyNotFoundError{Key: k, Segment: c.environment}
	}

	v, err := config.Lookup(section, k)
	if err == nil || !c.cascade {
		return v, err
	}
	return config.Lookup(root, k)
}
