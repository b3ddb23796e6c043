// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package slogfield provides typed [slog.Attr] constructors with the
// attribute names used across cascade's log records.
package slogfield

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Any returns an slog.Attr for the supplied value.
func Any(key string, value any) slog.Attr {
	return slog.Any(key, value)
}

// Bool returns an slog.Attr for a bool.
func Bool(key string, value bool) slog.Attr {
	return slog.Bool(key, value)
}

// Duration returns an slog.Attr for a time.Duration.
func Duration(key string, d time.Duration) slog.Attr {
	return slog.Duration(key, d)
}

// Error returns an slog.Attr for a error.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// String returns an slog.Attr for a string.
func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

// Strings returns an slog.Attr for a slice of strings.
func Strings(key string, values []string) slog.Attr {
	return slog.Any(key, values)
}

// Int returns an slog.Attr for a int.
func Int(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Uint32 returns an slog.Attr for a uint32.
func Uint32(key string, n uint32) slog.Attr {
	return slog.Uint64(key, uint64(n))
}

// Environment returns an slog.Attr naming a deployment environment.
func Environment(name string) slog.Attr {
	return slog.String("environment", name)
}

// Key returns an slog.Attr for a dotted configuration key.
func Key(k string) slog.Attr {
	return slog.String("config_key", k)
}

// Host returns an slog.Attr for a composed host identity.
func Host(h string) slog.Attr {
	return slog.String("host", h)
}

// Path returns an slog.Attr for the location of a configuration file.
func Path(p string) slog.Attr {
	return slog.String("config_path", p)
}

// Pattern returns an slog.Attr for an environment host pattern.
func Pattern(p string) slog.Attr {
	return slog.String("pattern", p)
}

// TraceID returns an slog.Attr for an OpenTelemetry trace ID.
func TraceID(id trace.TraceID) slog.Attr {
	return slog.String("trace_id", id.String())
}

// SpanID returns an slog.Attr for an OpenTelemetry span ID.
func SpanID(id trace.SpanID) slog.Attr {
	return slog.String("span_id", id.String())
}
