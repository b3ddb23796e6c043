// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"bytes"
	"fmt"
	"io"

	"github.com/z5labs/cascade/internal/try"

	"gopkg.in/yaml.v3"
)

// Yaml represents a Source where its underlying format is YAML.
type Yaml struct {
	r io.Reader
}

// FromYaml returns a source which will apply its config
// from YAML values parsed from the given io.Reader.
func FromYaml(r io.Reader) Yaml {
	return Yaml{r: r}
}

// InvalidYamlError occurs if the underlying io.Reader contains invalid YAML.
type InvalidYamlError struct {
	Cause error
}

// Error implements the error interface.
func (e InvalidYamlError) Error() string {
	return fmt.Sprintf("invalid yaml: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e InvalidYamlError) Unwrap() error {
	return e.Cause
}

// Apply implements the Source interface.
func (src Yaml) Apply(store Store) (err error) {
	defer try.Close(&err, src.r)

	m, err := DecodeYaml(src.r)
	if err != nil {
		return err
	}
	return m.Apply(store)
}

// DecodeYaml reads a single YAML mapping from r, preserving the
// order its keys appear in. An empty document yields an empty Map.
func DecodeYaml(r io.Reader) (*Map, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, InvalidYamlError{Cause: err}
	}

	var node yaml.Node
	err = yaml.NewDecoder(bytes.NewReader(b)).Decode(&node)
	if err == io.EOF {
		return NewMap(), nil
	}
	if err != nil {
		return nil, InvalidYamlError{Cause: err}
	}

	v, err := fromYamlNode(&node)
	if err != nil {
		return nil, InvalidYamlError{Cause: err}
	}
	if v.IsNull() {
		return NewMap(), nil
	}

	m, ok := v.AsMap()
	if !ok {
		return nil, NotAMapError{Kind: v.Kind()}
	}
	return m, nil
}

// UnmarshalYAML implements the [yaml.Unmarshaler] interface.
func (m *Map) UnmarshalYAML(node *yaml.Node) error {
	v, err := fromYamlNode(node)
	if err != nil {
		return err
	}
	decoded, ok := v.AsMap()
	if !ok {
		return NotAMapError{Kind: v.Kind()}
	}
	*m = *decoded
	return nil
}

// MarshalYAML implements the [yaml.Marshaler] interface.
func (m *Map) MarshalYAML() (any, error) {
	return toYamlNode(Node(m))
}

func fromYamlNode(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null(), nil
		}
		return fromYamlNode(node.Content[0])
	case yaml.AliasNode:
		return fromYamlNode(node.Alias)
	case yaml.MappingNode:
		return fromYamlMapping(node)
	case yaml.SequenceNode:
		vs := make([]Value, 0, len(node.Content))
		for _, n := range node.Content {
			v, err := fromYamlNode(n)
			if err != nil {
				return Null(), err
			}
			vs = append(vs, v)
		}
		return List(vs...), nil
	case yaml.ScalarNode:
		if node.ShortTag() == yamlTimestampTag {
			return String(node.Value), nil
		}
		var x any
		err := node.Decode(&x)
		if err != nil {
			return Null(), err
		}
		return ValueOf(x)
	default:
		return Null(), fmt.Errorf("unsupported yaml node kind: %d", node.Kind)
	}
}

const (
	yamlMergeTag     = "!!merge"
	yamlTimestampTag = "!!timestamp"
)

// fromYamlMapping converts a mapping node. Merge keys ("<<") pull in the
// keys of the referenced mapping, or of each mapping in a sequence with
// earlier ones winning, while keys written in the mapping itself win over
// anything merged in.
func fromYamlMapping(node *yaml.Node) (Value, error) {
	m := NewMap()
	var merged []*Map
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		val, err := fromYamlNode(v)
		if err != nil {
			return Null(), err
		}
		if k.ShortTag() != yamlMergeTag {
			m.Put(k.Value, val)
			continue
		}

		ms, err := mergeSources(val)
		if err != nil {
			return Null(), err
		}
		merged = append(merged, ms...)
	}
	if len(merged) == 0 {
		return Node(m), nil
	}

	base := NewMap()
	for i := len(merged) - 1; i >= 0; i-- {
		base = Merge(base, merged[i])
	}
	return Node(Merge(base, m)), nil
}

// MergeKeyError occurs when a YAML merge key refers to something
// other than a mapping or a sequence of mappings.
type MergeKeyError struct {
	Kind Kind
}

// Error implements the error interface.
func (e MergeKeyError) Error() string {
	return fmt.Sprintf("merge key value must be a mapping or a sequence of mappings, got %s", e.Kind)
}

func mergeSources(v Value) ([]*Map, error) {
	if m, ok := v.AsMap(); ok {
		return []*Map{m}, nil
	}

	list, ok := v.AsList()
	if !ok {
		return nil, MergeKeyError{Kind: v.Kind()}
	}
	ms := make([]*Map, 0, len(list))
	for _, x := range list {
		m, ok := x.AsMap()
		if !ok {
			return nil, MergeKeyError{Kind: x.Kind()}
		}
		ms = append(ms, m)
	}
	return ms, nil
}

func toYamlNode(v Value) (*yaml.Node, error) {
	switch v.Kind() {
	case KindMap:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var err error
		v.m.Range(func(k string, x Value) bool {
			var child *yaml.Node
			child, err = toYamlNode(x)
			if err != nil {
				return false
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, child)
			return true
		})
		return n, err
	case KindList:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, x := range v.list {
			child, err := toYamlNode(x)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	default:
		n := new(yaml.Node)
		err := n.Encode(v.Interface())
		return n, err
	}
}
