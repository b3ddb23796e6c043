// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package host

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("will drop the path", func(t *testing.T) {
		t.Run("if it is the root path", func(t *testing.T) {
			d := New("localhost", "", "/")
			if !assert.Empty(t, d.Path()) {
				return
			}
		})
	})

	t.Run("will keep the path", func(t *testing.T) {
		t.Run("if it is longer than the root path", func(t *testing.T) {
			d := New("localhost", "", "/feature1")
			if !assert.Equal(t, "/feature1", d.Path()) {
				return
			}
		})
	})
}

func TestDescriptor_Compose(t *testing.T) {
	testCases := []struct {
		Name       string
		Descriptor Descriptor
		WithPath   bool
		Expected   string
	}{
		{
			Name:       "hostname only",
			Descriptor: New("example.com", "", ""),
			Expected:   "example.com",
		},
		{
			Name:       "hostname and port",
			Descriptor: New("localhost", "9876", ""),
			Expected:   "localhost:9876",
		},
		{
			Name:       "path is ignored without path mode",
			Descriptor: New("localhost", "9000", "/feature1"),
			Expected:   "localhost:9000",
		},
		{
			Name:       "path is appended in path mode",
			Descriptor: New("localhost", "9000", "/feature1"),
			WithPath:   true,
			Expected:   "localhost:9000/feature1",
		},
		{
			Name:       "missing path in path mode",
			Descriptor: New("localhost", "", ""),
			WithPath:   true,
			Expected:   "localhost",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			if !assert.Equal(t, testCase.Expected, testCase.Descriptor.Compose(testCase.WithPath)) {
				return
			}
		})
	}
}

func TestFromURL(t *testing.T) {
	u, err := url.Parse("https://staging.example.com:8443/app/")
	if !assert.Nil(t, err) {
		return
	}

	d := FromURL(u)
	if !assert.Equal(t, "staging.example.com", d.Hostname()) {
		return
	}
	if !assert.Equal(t, "8443", d.Port()) {
		return
	}
	if !assert.Equal(t, "/app/", d.Path()) {
		return
	}
}

func TestParse(t *testing.T) {
	t.Run("will parse", func(t *testing.T) {
		testCases := []struct {
			Name     string
			Input    string
			Hostname string
			Port     string
			Path     string
		}{
			{Name: "a bare host", Input: "localhost", Hostname: "localhost"},
			{Name: "a host and port", Input: "localhost:9876", Hostname: "localhost", Port: "9876"},
			{Name: "a host, port and path", Input: "localhost:9876/feature1/sub", Hostname: "localhost", Port: "9876", Path: "/feature1/sub"},
			{Name: "a url with a scheme", Input: "https://example.com/", Hostname: "example.com"},
		}

		for _, testCase := range testCases {
			t.Run(testCase.Name, func(t *testing.T) {
				d, err := Parse(testCase.Input)
				if !assert.Nil(t, err) {
					return
				}
				if !assert.Equal(t, testCase.Hostname, d.Hostname()) {
					return
				}
				if !assert.Equal(t, testCase.Port, d.Port()) {
					return
				}
				if !assert.Equal(t, testCase.Path, d.Path()) {
					return
				}
			})
		}
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the host name is missing", func(t *testing.T) {
			_, err := Parse(":8080")
			if !assert.Error(t, err) {
				return
			}
		})
	})
}

func TestDescriptor_Validate(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the port is out of range", func(t *testing.T) {
			err := New("localhost", "70000", "").Validate()
			if !assert.Error(t, err) {
				return
			}
		})

		t.Run("if the hostname is empty", func(t *testing.T) {
			err := New("", "8080", "").Validate()
			if !assert.Error(t, err) {
				return
			}
		})
	})

	t.Run("will not return an error", func(t *testing.T) {
		t.Run("if the port is omitted", func(t *testing.T) {
			err := New("localhost", "", "").Validate()
			if !assert.Nil(t, err) {
				return
			}
		})
	})
}
