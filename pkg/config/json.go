// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/z5labs/cascade/internal/try"
)

// Json represents a Source where its underlying format is JSON.
type Json struct {
	r io.Reader
}

// FromJson returns a source which will apply its config
// from JSON values parsed from the given io.Reader.
func FromJson(r io.Reader) Json {
	return Json{r: r}
}

// InvalidJsonError occurs if the underlying io.Reader contains invalid JSON.
type InvalidJsonError struct {
	Cause error
}

// Error implements the error interface.
func (e InvalidJsonError) Error() string {
	return fmt.Sprintf("invalid json: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e InvalidJsonError) Unwrap() error {
	return e.Cause
}

// NotAMapError occurs when a config document's root is not an object.
type NotAMapError struct {
	Kind Kind
}

// Error implements the error interface.
func (e NotAMapError) Error() string {
	return fmt.Sprintf("config document root must be a map but got: %s", e.Kind)
}

// Apply implements the Source interface.
func (src Json) Apply(store Store) (err error) {
	defer try.Close(&err, src.r)

	m, err := DecodeJson(src.r)
	if err != nil {
		return err
	}
	return m.Apply(store)
}

// DecodeJson reads a single JSON object from r, preserving the
// order its keys appear in.
func DecodeJson(r io.Reader) (*Map, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeJsonValue(dec)
	if err != nil {
		return nil, InvalidJsonError{Cause: err}
	}
	_, err = dec.Token()
	if err != io.EOF {
		return nil, InvalidJsonError{Cause: errors.New("unexpected data after top-level value")}
	}

	m, ok := v.AsMap()
	if !ok {
		return nil, NotAMapError{Kind: v.Kind()}
	}
	return m, nil
}

func decodeJsonValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Null(), err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeJsonObject(dec)
		case '[':
			return decodeJsonArray(dec)
		default:
			return Null(), fmt.Errorf("unexpected delimiter: %s", t)
		}
	case json.Number:
		n, err := strconv.ParseFloat(string(t), 64)
		if err != nil {
			return Null(), err
		}
		return Number(n), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	default:
		return Null(), fmt.Errorf("unexpected json token: %v", tok)
	}
}

func decodeJsonObject(dec *json.Decoder) (Value, error) {
	m := NewMap()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Null(), err
		}
		k, ok := tok.(string)
		if !ok {
			return Null(), fmt.Errorf("expected object key but got: %v", tok)
		}

		v, err := decodeJsonValue(dec)
		if err != nil {
			return Null(), err
		}
		m.Put(k, v)
	}

	// consume closing '}'
	_, err := dec.Token()
	if err != nil {
		return Null(), err
	}
	return Node(m), nil
}

func decodeJsonArray(dec *json.Decoder) (Value, error) {
	vs := []Value{}
	for dec.More() {
		v, err := decodeJsonValue(dec)
		if err != nil {
			return Null(), err
		}
		vs = append(vs, v)
	}

	// consume closing ']'
	_, err := dec.Token()
	if err != nil {
		return Null(), err
	}
	return List(vs...), nil
}

// UnmarshalJSON implements the [json.Unmarshaler] interface.
func (m *Map) UnmarshalJSON(b []byte) error {
	decoded, err := DecodeJson(bytes.NewReader(b))
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

// MarshalJSON implements the [json.Marshaler] interface. Keys are
// written in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	var err error
	i := 0
	m.Range(func(k string, v Value) bool {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++

		var kb, vb []byte
		kb, err = json.Marshal(k)
		if err != nil {
			return false
		}
		vb, err = v.MarshalJSON()
		if err != nil {
			return false
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON implements the [json.Marshaler] interface.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindMap:
		return v.m.MarshalJSON()
	case KindList:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, x := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := x.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return json.Marshal(v.Interface())
	}
}
