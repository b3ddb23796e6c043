// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package fetch retrieves configuration documents from a remote
// server or a filesystem.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/z5labs/cascade/internal/noop"
	"github.com/z5labs/cascade/pkg/config"
	"github.com/z5labs/cascade/pkg/config/configtmpl"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/z5labs/cascade/pkg/fetch"

// Fetcher retrieves and decodes the configuration document at path.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (*config.Map, error)
}

// FetcherFunc is a function which implements the Fetcher interface.
type FetcherFunc func(context.Context, string) (*config.Map, error)

// Fetch implements the Fetcher interface.
func (f FetcherFunc) Fetch(ctx context.Context, path string) (*config.Map, error) {
	return f(ctx, path)
}

// NotFoundError occurs when no document exists at Path.
type NotFoundError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s", e.Path)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// FailedError occurs when a document exists but could not be
// retrieved or decoded.
type FailedError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *FailedError) Error() string {
	return fmt.Sprintf("failed to fetch config file: %s: %s", e.Path, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e *FailedError) Unwrap() error {
	return e.Cause
}

// StatusError is the cause of a FailedError when a server responds
// with an unexpected status code.
type StatusError struct {
	Code int
}

// Error implements the error interface.
func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

type options struct {
	client       *http.Client
	logHandler   slog.Handler
	tp           trace.TracerProvider
	renderTmpl   bool
	templateOpts []config.RenderTextTemplateOption
}

func newOptions(opts ...Option) *options {
	o := &options{
		logHandler: noop.LogHandler{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) tracer() trace.Tracer {
	if o.tp != nil {
		return o.tp.Tracer(tracerName)
	}
	return otel.Tracer(tracerName)
}

// Option configures a Fetcher.
type Option func(*options)

// Client overrides the http.Client an HTTP fetcher requests documents
// with. Other fetchers ignore it.
func Client(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// LogHandler sets the handler fetches are logged to.
func LogHandler(h slog.Handler) Option {
	return func(o *options) {
		o.logHandler = h
	}
}

// TracerProvider sets the provider fetches are traced with. Defaults
// to the global provider.
func TracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tp = tp
	}
}

// Template renders every document as a text/template before decoding
// it. The functions from [configtmpl.Funcs] are always registered.
func Template(opts ...config.RenderTextTemplateOption) Option {
	return func(o *options) {
		o.renderTmpl = true
		o.templateOpts = append(o.templateOpts, opts...)
	}
}

// Decode decodes the document in r with the format implied by the
// extension of p: YAML for ".yaml" and ".yml", JSON for anything else.
func Decode(p string, r io.Reader) (*config.Map, error) {
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return config.DecodeYaml(r)
	default:
		return config.DecodeJson(r)
	}
}

func (o *options) decode(p string, r io.Reader) (*config.Map, error) {
	if !o.renderTmpl {
		return Decode(p, r)
	}

	opts := append(configtmpl.Funcs(), o.templateOpts...)
	return Decode(p, config.RenderTextTemplate(r, opts...))
}
