// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/z5labs/cascade/pkg/config/key"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestDecodeYaml(t *testing.T) {
	t.Run("will preserve key order and scalar types", func(t *testing.T) {
		r := strings.NewReader(`
production:
  api:
    url: https://example.com
    retries: 3
  debug: false
defaults: &defaults
  name: app
alias: *defaults
hosts:
  - a.example.com
  - b.example.com
`)
		m, err := DecodeYaml(r)
		if !assert.Nil(t, err) {
			return
		}
		if !assert.Equal(t, []string{"production", "defaults", "alias", "hosts"}, m.Keys()) {
			return
		}

		b, err := m.MarshalJSON()
		if !assert.Nil(t, err) {
			return
		}
		expected := `{"production":{"api":{"url":"https://example.com","retries":3},"debug":false},` +
			`"defaults":{"name":"app"},"alias":{"name":"app"},"hosts":["a.example.com","b.example.com"]}`
		if !assert.Equal(t, expected, string(b)) {
			return
		}
	})

	t.Run("will keep unquoted timestamps as strings", func(t *testing.T) {
		m, err := DecodeYaml(strings.NewReader("release: 2024-01-01\ndeployed: 2024-01-01T15:04:05Z\nname: x\n"))
		if !assert.Nil(t, err) {
			return
		}

		b, err := m.MarshalJSON()
		if !assert.Nil(t, err) {
			return
		}
		if !assert.Equal(t, `{"release":"2024-01-01","deployed":"2024-01-01T15:04:05Z","name":"x"}`, string(b)) {
			return
		}
	})

	t.Run("will apply merge keys", func(t *testing.T) {
		testCases := []struct {
			Name     string
			Input    string
			Expected string
		}{
			{
				Name:     "single mapping",
				Input:    "base: &b\n  a: 1\nprod:\n  <<: *b\n  c: 2\n",
				Expected: `{"base":{"a":1},"prod":{"a":1,"c":2}}`,
			},
			{
				Name:     "explicit keys win",
				Input:    "base: &b\n  a: 1\n  c: 1\nprod:\n  c: 2\n  <<: *b\n",
				Expected: `{"base":{"a":1,"c":1},"prod":{"a":1,"c":2}}`,
			},
			{
				Name:     "sequence of mappings with earlier ones winning",
				Input:    "x: &x\n  a: x\ny: &y\n  a: y\n  b: y\nprod:\n  <<: [*x, *y]\n",
				Expected: `{"x":{"a":"x"},"y":{"a":"y","b":"y"},"prod":{"a":"x","b":"y"}}`,
			},
			{
				Name:     "quoted key is not a merge",
				Input:    "prod:\n  \"<<\": 1\n",
				Expected: `{"prod":{"<<":1}}`,
			},
		}

		for _, testCase := range testCases {
			t.Run(testCase.Name, func(t *testing.T) {
				m, err := DecodeYaml(strings.NewReader(testCase.Input))
				if !assert.Nil(t, err) {
					return
				}

				b, err := m.MarshalJSON()
				if !assert.Nil(t, err) {
					return
				}
				if !assert.Equal(t, testCase.Expected, string(b)) {
					return
				}
			})
		}
	})

	t.Run("will return an empty map", func(t *testing.T) {
		t.Run("if the document is empty", func(t *testing.T) {
			m, err := DecodeYaml(strings.NewReader(``))
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, 0, m.Len()) {
				return
			}
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the yaml is malformed", func(t *testing.T) {
			_, err := DecodeYaml(strings.NewReader("a: [1, 2"))

			var ierr InvalidYamlError
			if !assert.ErrorAs(t, err, &ierr) {
				return
			}
			if !assert.NotEmpty(t, ierr.Error()) {
				return
			}
		})

		t.Run("if a merge key does not refer to a mapping", func(t *testing.T) {
			_, err := DecodeYaml(strings.NewReader("prod:\n  <<: [1]\n"))

			var merr MergeKeyError
			if !assert.ErrorAs(t, err, &merr) {
				return
			}
			if !assert.Equal(t, KindNumber, merr.Kind) {
				return
			}
		})

		t.Run("if the document root is not a mapping", func(t *testing.T) {
			_, err := DecodeYaml(strings.NewReader("- 1\n- 2\n"))

			var ierr NotAMapError
			if !assert.ErrorAs(t, err, &ierr) {
				return
			}
		})
	})
}

func TestMap_MarshalYAML(t *testing.T) {
	t.Run("will write keys in insertion order", func(t *testing.T) {
		m := mustJson(t, `{"z": 1, "a": {"y": "b"}, "xs": [true]}`)

		b, err := yaml.Marshal(m)
		if !assert.Nil(t, err) {
			return
		}
		if !assert.Equal(t, "z: 1\na:\n    y: b\nxs:\n    - true\n", string(b)) {
			return
		}

		var decoded Map
		err = yaml.Unmarshal(b, &decoded)
		if !assert.Nil(t, err) {
			return
		}
		if !assert.Equal(t, []string{"z", "a", "xs"}, decoded.Keys()) {
			return
		}
	})
}

func TestYaml_Apply(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the underlying io.Reader fails", func(t *testing.T) {
			readErr := errors.New("failed to read")
			src := FromYaml(readFunc(func(b []byte) (int, error) {
				return 0, readErr
			}))

			err := src.Apply(NewMap())
			if !assert.ErrorIs(t, err, readErr) {
				return
			}
		})

		t.Run("if the yaml is malformed", func(t *testing.T) {
			src := FromYaml(strings.NewReader("a: [1, 2"))

			var ierr InvalidYamlError
			err := src.Apply(NewMap())
			if !assert.ErrorAs(t, err, &ierr) {
				return
			}
		})
	})

	t.Run("will set the decoded values on the store", func(t *testing.T) {
		src := FromYaml(strings.NewReader("hello: world\na:\n  b: 1.2\n"))

		var keys []string
		store := storeFunc(func(k key.Keyer, v any) error {
			keys = append(keys, k.Key())
			return nil
		})

		err := src.Apply(store)
		if !assert.Nil(t, err) {
			return
		}
		if !assert.Equal(t, []string{"hello", "a.b"}, keys) {
			return
		}
	})
}
