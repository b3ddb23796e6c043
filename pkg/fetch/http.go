// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/z5labs/cascade/internal/try"
	"github.com/z5labs/cascade/pkg/config"
	"github.com/z5labs/cascade/pkg/httpclient"
	"github.com/z5labs/cascade/pkg/slogfield"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HTTP fetches documents relative to a base URL.
type HTTP struct {
	base   *url.URL
	client *http.Client
	log    *slog.Logger
	tracer trace.Tracer
	opts   *options
}

// NewHTTP returns a Fetcher resolving paths against base. Unless
// overridden with [Client], requests go through an [httpclient]
// client which retries and breaks the circuit on server errors.
func NewHTTP(base *url.URL, opts ...Option) *HTTP {
	o := newOptions(opts...)
	h := &HTTP{
		base:   base,
		client: o.client,
		log:    slog.New(o.logHandler),
		tracer: o.tracer(),
		opts:   o,
	}
	if h.client == nil {
		copts := []httpclient.Option{
			httpclient.Name("cascade"),
			httpclient.LogHandler(o.logHandler),
			httpclient.Timeout(30 * time.Second),
			httpclient.Retry(3, 100*time.Millisecond, 2*time.Second),
			httpclient.TripAfter(5),
			httpclient.OpenStateTimeout(30 * time.Second),
		}
		if o.tp != nil {
			copts = append(copts, httpclient.TracerProvider(o.tp))
		}
		h.client = httpclient.New(copts...)
	}
	return h
}

// Resolve returns the URL p refers to. Absolute URLs are used as is,
// anything else is joined onto the base URL's path.
func (h *HTTP) Resolve(p string) (*url.URL, error) {
	u, err := url.Parse(p)
	if err != nil {
		return nil, err
	}
	if u.IsAbs() || h.base == nil {
		return u, nil
	}

	r := h.base.JoinPath(u.Path)
	r.RawQuery = u.RawQuery
	return r, nil
}

// Fetch implements the Fetcher interface.
func (h *HTTP) Fetch(ctx context.Context, p string) (_ *config.Map, err error) {
	spanCtx, span := h.tracer.Start(ctx, "HTTP.Fetch", trace.WithAttributes(
		attribute.String("config.path", p),
	))
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	u, err := h.Resolve(p)
	if err != nil {
		return nil, &FailedError{Path: p, Cause: err}
	}

	req, err := http.NewRequestWithContext(spanCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &FailedError{Path: p, Cause: err}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.log.ErrorContext(spanCtx, "failed to request config file", slogfield.Path(p), slogfield.Error(err))
		return nil, &FailedError{Path: p, Cause: err}
	}
	defer try.Close(&err, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{Path: p, Cause: StatusError{Code: resp.StatusCode}}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &FailedError{Path: p, Cause: StatusError{Code: resp.StatusCode}}
	}

	m, err := h.opts.decode(p, resp.Body)
	if err != nil {
		return nil, &FailedError{Path: p, Cause: err}
	}

	h.log.InfoContext(spanCtx, "fetched config file", slogfield.Path(p))
	return m, nil
}
