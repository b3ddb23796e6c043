// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cascade

import (
	"github.com/z5labs/cascade/pkg/config"
	"github.com/z5labs/cascade/pkg/config/key"
)

// Set stores v under k at the top level of the config, regardless of the
// active environment.
//
// A dotted key sets a child of a top-level map, creating the map when
// absent. Only the first two segments are used: "a.b.c" sets "a"."b".
func (c *Configuration) Set(k string, v any) error {
	keyer := key.Parse(k)
	if segs := key.Segments(keyer); len(segs) > 2 {
		keyer = key.Chain{key.Name(segs[0]), key.Name(segs[1])}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.obj.Set(keyer, v)
}

// SetAll replaces the whole config with a copy of m.
func (c *Configuration) SetAll(m *config.Map) {
	m = m.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.obj = m
}

// GetAll returns a copy of the whole config.
func (c *Configuration) GetAll() *config.Map {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.obj.Clone()
}

// Merge deep merges m into the config. Values from m win.
func (c *Configuration) Merge(m *config.Map) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.obj = config.Merge(c.obj, m)
}

// LazyMerge stages m to be merged into the config by the next Commit.
// Staged maps are merged with each other in call order.
func (c *Configuration) LazyMerge(m *config.Map) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staging = config.Merge(c.staging, m)
}

// Commit merges everything staged by LazyMerge into the config and
// clears the staging area.
func (c *Configuration) Commit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commit()
}

func (c *Configuration) commit() {
	if c.staging == nil {
		return
	}
	c.obj = config.Merge(c.obj, c.staging)
	c.staging = nil
}
