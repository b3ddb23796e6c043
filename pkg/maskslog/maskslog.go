// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package maskslog provides a slog.Handler which masks attribute values,
// e.g. credentials embedded in a config source URL, before they are written.
package maskslog

import (
	"context"
	"log/slog"
	"net/url"
)

type options struct {
	masks map[string]func(slog.Attr) slog.Attr
}

// Option helps configure the Handler.
type Option func(*options)

// Attr registers a function for masking any slog.Attr with the given key.
func Attr(key string, f func(slog.Attr) slog.Attr) Option {
	return func(o *options) {
		o.masks[key] = f
	}
}

// Anonymous replaces the value of a with "****", whatever its kind.
func Anonymous(a slog.Attr) slog.Attr {
	return slog.String(a.Key, "****")
}

// URL redacts the password of a URL valued slog.Attr. Values which
// do not parse as a URL are left as is.
func URL(a slog.Attr) slog.Attr {
	u, err := url.Parse(a.Value.String())
	if err != nil || u.User == nil {
		return a
	}
	return slog.String(a.Key, u.Redacted())
}

// Handler is an slog.Handler.
type Handler struct {
	slog  slog.Handler
	masks map[string]func(slog.Attr) slog.Attr
}

// NewHandler returns a new Handler.
func NewHandler(h slog.Handler, opts ...Option) *Handler {
	o := &options{
		masks: make(map[string]func(slog.Attr) slog.Attr),
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Handler{
		slog:  h,
		masks: o.masks,
	}
}

// Enabled implements the slog.Handler interface.
func (h *Handler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.slog.Enabled(ctx, lvl)
}

// Handle implements the slog.Handler interface.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	if len(h.masks) == 0 {
		return h.slog.Handle(ctx, record)
	}

	attrs := make([]slog.Attr, 0, record.NumAttrs())
	record.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.mask(a))
		return true
	})

	r := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	r.AddAttrs(attrs...)
	return h.slog.Handle(ctx, r)
}

// WithAttrs implements the slog.Handler interface.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.mask(a)
	}
	return &Handler{
		slog:  h.slog.WithAttrs(masked),
		masks: h.masks,
	}
}

// WithGroup implements the slog.Handler interface.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{
		slog:  h.slog.WithGroup(name),
		masks: h.masks,
	}
}

func (h *Handler) mask(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		masked := make([]any, len(group))
		for i, ga := range group {
			masked[i] = h.mask(ga)
		}
		return slog.Group(a.Key, masked...)
	}

	f, ok := h.masks[a.Key]
	if !ok {
		return a
	}
	return f(a)
}
