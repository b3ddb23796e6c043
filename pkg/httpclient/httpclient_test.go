// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package httpclient

import (
	"bytes"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTimeout(t *testing.T) {
	t.Run("will timeout", func(t *testing.T) {
		t.Run("if the timeout is set to be greater than zero", func(t *testing.T) {
			timeout := 100 * time.Millisecond
			done := make(chan struct{})
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-done:
				case <-time.After(2 * timeout):
				}
			}))
			defer srv.Close()
			defer close(done)

			client := New(Timeout(timeout))
			_, err := client.Get(srv.URL)

			var nerr net.Error
			if !assert.ErrorAs(t, err, &nerr) {
				return
			}
			if !assert.True(t, nerr.Timeout()) {
				return
			}
		})
	})
}

func TestCircuitBreaker(t *testing.T) {
	t.Run("will open the circuit", func(t *testing.T) {
		t.Run("if the server keeps failing", func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer srv.Close()

			client := New(
				Name("test"),
				TripAfter(2),
				OpenStateTimeout(time.Minute),
			)

			for i := 0; i < 2; i++ {
				resp, err := client.Get(srv.URL)
				if !assert.Nil(t, err) {
					return
				}
				resp.Body.Close()
				if !assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode) {
					return
				}
			}

			_, err := client.Get(srv.URL)
			if !assert.ErrorIs(t, err, gobreaker.ErrOpenState) {
				return
			}
			if !assert.Equal(t, int32(2), calls.Load()) {
				return
			}
		})
	})

	t.Run("will not open the circuit", func(t *testing.T) {
		t.Run("if the status code is not counted as a failure", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer srv.Close()

			client := New(TripAfter(1))

			for i := 0; i < 3; i++ {
				resp, err := client.Get(srv.URL)
				if !assert.Nil(t, err) {
					return
				}
				resp.Body.Close()
				if !assert.Equal(t, http.StatusNotFound, resp.StatusCode) {
					return
				}
			}
		})
	})
}

func TestRetry(t *testing.T) {
	t.Run("will retry", func(t *testing.T) {
		t.Run("until the server responds successfully", func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) < 3 {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer srv.Close()

			client := New(Retry(3, time.Millisecond, 5*time.Millisecond))

			resp, err := client.Get(srv.URL)
			if !assert.Nil(t, err) {
				return
			}
			resp.Body.Close()
			if !assert.Equal(t, http.StatusOK, resp.StatusCode) {
				return
			}
			if !assert.Equal(t, int32(3), calls.Load()) {
				return
			}
		})
	})

	t.Run("will return the last response", func(t *testing.T) {
		t.Run("if all retries are exhausted", func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(http.StatusBadGateway)
			}))
			defer srv.Close()

			client := New(Retry(2, time.Millisecond, 5*time.Millisecond))

			resp, err := client.Get(srv.URL)
			if !assert.Nil(t, err) {
				return
			}
			resp.Body.Close()
			if !assert.Equal(t, http.StatusBadGateway, resp.StatusCode) {
				return
			}
			if !assert.Equal(t, int32(3), calls.Load()) {
				return
			}
		})
	})
}

func TestLogHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	client := New(
		Name("logged"),
		LogHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	)

	resp, err := client.Get(srv.URL)
	if !assert.Nil(t, err) {
		return
	}
	resp.Body.Close()

	out := buf.String()
	if !assert.Contains(t, out, "request sent") {
		return
	}
	if !assert.Contains(t, out, "response received") {
		return
	}
	if !assert.Contains(t, out, `"http_client":"logged"`) {
		return
	}
}

func TestTracerProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	client := New(Name("traced"), TracerProvider(tp))

	resp, err := client.Get(srv.URL)
	if !assert.Nil(t, err) {
		return
	}
	resp.Body.Close()

	spans := sr.Ended()
	if !assert.Len(t, spans, 1) {
		return
	}
	if !assert.Equal(t, "traced GET", spans[0].Name()) {
		return
	}
}
