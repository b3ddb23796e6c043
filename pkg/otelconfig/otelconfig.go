// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otelconfig builds OpenTelemetry tracer providers.
package otelconfig

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerProvider is a trace.TracerProvider which must be shut down to
// flush any buffered spans.
type TracerProvider interface {
	trace.TracerProvider

	Shutdown(context.Context) error
}

// Initializer builds a TracerProvider.
type Initializer interface {
	Init(context.Context) (TracerProvider, error)
}

// Noop leaves tracing to the global provider.
var Noop = noopInitializer{}

type noopInitializer struct{}

type noopProvider struct {
	trace.TracerProvider
}

func (noopProvider) Shutdown(_ context.Context) error { return nil }

// Init implements the Initializer interface.
func (noopInitializer) Init(_ context.Context) (TracerProvider, error) {
	return noopProvider{TracerProvider: otel.GetTracerProvider()}, nil
}

// LocalConfig configures a provider which writes spans as JSON.
type LocalConfig struct {
	ServiceName string
	Out         io.Writer
}

// LocalOption configures a LocalConfig.
type LocalOption func(*LocalConfig)

// ServiceName sets the service.name resource attribute.
func ServiceName(name string) LocalOption {
	return func(cfg *LocalConfig) {
		cfg.ServiceName = name
	}
}

// Writer sets where spans are written. Defaults to [os.Stdout].
func Writer(w io.Writer) LocalOption {
	return func(cfg *LocalConfig) {
		cfg.Out = w
	}
}

// Local returns an Initializer for a provider which writes spans to
// a local writer, e.g. for debugging a single CLI invocation.
func Local(opts ...LocalOption) Initializer {
	cfg := LocalConfig{
		Out: os.Stdout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Init implements the Initializer interface.
func (cfg LocalConfig) Init(ctx context.Context) (TracerProvider, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(cfg.Out),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(
		ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	return tp, nil
}
