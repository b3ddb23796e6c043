// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package fetch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/z5labs/cascade/internal/try"
	"github.com/z5labs/cascade/pkg/config"
	"github.com/z5labs/cascade/pkg/slogfield"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// FS fetches documents from a filesystem, e.g. [os.DirFS].
type FS struct {
	fsys   fs.FS
	log    *slog.Logger
	tracer trace.Tracer
	opts   *options
}

// NewFS returns a Fetcher reading documents from fsys.
func NewFS(fsys fs.FS, opts ...Option) *FS {
	o := newOptions(opts...)
	return &FS{
		fsys:   fsys,
		log:    slog.New(o.logHandler),
		tracer: o.tracer(),
		opts:   o,
	}
}

// Fetch implements the Fetcher interface. Paths use forward slashes and
// are cleaned before opening, a leading "/" or "./" is ignored.
func (f *FS) Fetch(ctx context.Context, p string) (_ *config.Map, err error) {
	spanCtx, span := f.tracer.Start(ctx, "FS.Fetch", trace.WithAttributes(
		attribute.String("config.path", p),
	))
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	name := strings.TrimPrefix(path.Clean("/"+p), "/")
	file, err := f.fsys.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &NotFoundError{Path: p, Cause: err}
	}
	if err != nil {
		return nil, &FailedError{Path: p, Cause: err}
	}
	defer try.Close(&err, file)

	m, err := f.opts.decode(p, file)
	if err != nil {
		return nil, &FailedError{Path: p, Cause: err}
	}

	f.log.InfoContext(spanCtx, "read config file", slogfield.Path(p))
	return m, nil
}
