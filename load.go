// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cascade

import (
	"context"
	"fmt"

	"github.com/z5labs/cascade/internal/try"
	"github.com/z5labs/cascade/pkg/config"
	"github.com/z5labs/cascade/pkg/slogfield"

	"golang.org/x/sync/errgroup"
)

// LoadError occurs when a required config file can not be fetched.
type LoadError struct {
	Path  string
	Cause error
}

// Error implements the [builtin.error] interface.
func (e LoadError) Error() string {
	return fmt.Sprintf("failed to load config file: %s: %s", e.Path, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e LoadError) Unwrap() error {
	return e.Cause
}

// MergeFile names an additional config file for Load.
type MergeFile struct {
	Path string

	// Optional files which fail to fetch are skipped.
	Optional bool
}

// LoadConfig fetches the file at ConfigPath, replaces the config with it
// and then commits any maps staged with LazyMerge.
func (c *Configuration) LoadConfig(ctx context.Context) error {
	p := c.ConfigPath()
	m, err := c.fetcher.Fetch(ctx, p)
	if err != nil {
		return LoadError{Path: p, Cause: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.obj = m.Clone()
	c.commit()
	return nil
}

// MergeConfigFile fetches the file at p and stages it with LazyMerge. When
// optional is true a failed fetch is logged and nil is returned.
func (c *Configuration) MergeConfigFile(ctx context.Context, p string, optional bool) error {
	m, err := c.fetchMergeFile(ctx, MergeFile{Path: p, Optional: optional})
	if err != nil || m == nil {
		return err
	}
	c.LazyMerge(m)
	return nil
}

// Load fetches the primary config file and every extra file concurrently.
// Once all fetches succeed the primary file replaces the config and the
// extra files are merged over it in the order given, so later files win.
func (c *Configuration) Load(ctx context.Context, extra ...MergeFile) error {
	p := c.ConfigPath()

	var primary *config.Map
	staged := make([]*config.Map, len(extra))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer try.Recover(&err)

		m, err := c.fetcher.Fetch(gctx, p)
		if err != nil {
			return LoadError{Path: p, Cause: err}
		}
		primary = m
		return nil
	})
	for i, mf := range extra {
		i, mf := i, mf
		g.Go(func() (err error) {
			defer try.Recover(&err)

			m, err := c.fetchMergeFile(gctx, mf)
			if err != nil {
				return err
			}
			staged[i] = m
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.obj = primary.Clone()
	for _, m := range staged {
		if m == nil {
			continue
		}
		c.staging = config.Merge(c.staging, m)
	}
	c.commit()
	return nil
}

func (c *Configuration) fetchMergeFile(ctx context.Context, mf MergeFile) (*config.Map, error) {
	m, err := c.fetcher.Fetch(ctx, mf.Path)
	if err == nil {
		return m, nil
	}
	if !mf.Optional {
		return nil, LoadError{Path: mf.Path, Cause: err}
	}

	c.log.WarnContext(ctx, "skipping optional config file", slogfield.Path(mf.Path), slogfield.Error(err))
	return nil, nil
}
