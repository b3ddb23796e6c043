// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"os"
	"sort"
	"strings"

	"github.com/z5labs/cascade/pkg/config/key"
)

// EnvNestingSeparator separates nested key names inside an environment variable name.
const EnvNestingSeparator = "__"

// Env represents a Source where its underlying values
// are extracted from environment variables.
type Env struct {
	prefix  string
	environ func() []string
}

// FromEnv returns a Source which will apply its config from the
// environment variables, available to the current process, whose
// names start with prefix. The prefix is stripped and the remainder
// is split on [EnvNestingSeparator], e.g. APP_production__api__url=x
// with prefix "APP_" sets production.api.url to "x".
//
// Values are always strings and names keep their case.
func FromEnv(prefix string) Env {
	return Env{
		prefix:  prefix,
		environ: os.Environ,
	}
}

// Apply implements the Source interface. Variables are applied in
// sorted order so the resulting key order is stable.
func (src Env) Apply(store Store) error {
	env := src.environ()
	sort.Strings(env)
	for _, pair := range env {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name, ok := strings.CutPrefix(k, src.prefix)
		if !ok || name == "" {
			continue
		}

		parts := strings.Split(name, EnvNestingSeparator)
		chain := make(key.Chain, 0, len(parts))
		for _, p := range parts {
			if p == "" {
				continue
			}
			chain = append(chain, key.Name(p))
		}
		if len(chain) == 0 {
			continue
		}

		err := store.Set(chain, v)
		if err != nil {
			return err
		}
	}
	return nil
}
