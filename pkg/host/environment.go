// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package host

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/z5labs/cascade/pkg/config"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Environment names a deployment environment and the host
// patterns which identify it.
type Environment struct {
	Name     string
	Patterns []string
}

// Validate checks that the environment is named and all of
// its patterns compile.
func (e Environment) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Name, validation.Required),
		validation.Field(&e.Patterns, validation.Each(validation.By(compiles))),
	)
}

func compiles(v any) error {
	s, _ := v.(string)
	_, err := compile(s)
	return err
}

// Environments is an ordered list of environments. Order matters
// since the first environment with a matching pattern wins.
type Environments []Environment

// Validate validates every environment in es.
func (es Environments) Validate() error {
	_, err := es.Compile()
	return err
}

// InvalidEnvironmentsError occurs when an environment map can not
// be built from a config value.
type InvalidEnvironmentsError struct {
	Environment string
	Reason      string
}

// Error implements the error interface.
func (e InvalidEnvironmentsError) Error() string {
	if e.Environment == "" {
		return fmt.Sprintf("invalid environments: %s", e.Reason)
	}
	return fmt.Sprintf("invalid environments: %s: %s", e.Environment, e.Reason)
}

// EnvironmentsFromMap builds Environments from a map of environment
// name to a list of patterns, keeping the map's key order. A null
// pattern list yields an environment without patterns.
func EnvironmentsFromMap(m *config.Map) (Environments, error) {
	es := make(Environments, 0, m.Len())
	var err error
	m.Range(func(name string, v config.Value) bool {
		e := Environment{Name: name}
		if v.IsNull() {
			es = append(es, e)
			return true
		}

		list, ok := v.AsList()
		if !ok {
			err = InvalidEnvironmentsError{Environment: name, Reason: "patterns must be a list, got " + v.Kind().String()}
			return false
		}
		for _, p := range list {
			s, ok := p.AsString()
			if !ok {
				err = InvalidEnvironmentsError{Environment: name, Reason: "pattern must be a string, got " + p.Kind().String()}
				return false
			}
			e.Patterns = append(e.Patterns, s)
		}
		es = append(es, e)
		return true
	})
	if err != nil {
		return nil, err
	}
	return es, nil
}

// UnmarshalJSON implements the [json.Unmarshaler] interface. The
// expected shape is {"name": ["pattern", ...], ...}.
func (es *Environments) UnmarshalJSON(b []byte) error {
	var m config.Map
	err := json.Unmarshal(b, &m)
	if err != nil {
		return err
	}
	return es.fromMap(&m)
}

// UnmarshalYAML implements the [yaml.Unmarshaler] interface.
func (es *Environments) UnmarshalYAML(node *yaml.Node) error {
	var m config.Map
	err := node.Decode(&m)
	if err != nil {
		return err
	}
	return es.fromMap(&m)
}

func (es *Environments) fromMap(m *config.Map) error {
	decoded, err := EnvironmentsFromMap(m)
	if err != nil {
		return err
	}
	*es = decoded
	return nil
}

// compile builds the expression used to search the composed host for a
// pattern. The leading and trailing groups only accept the start or end
// of the host, or a literal "W". That is almost certainly a mistyped \W
// but existing environment maps depend on it: "localhost" does not match
// "localhost:9876" because ':' is neither the end nor 'W'.
func compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?:^|W)` + pattern + `(?:$|W)`)
}

// Matcher holds the compiled patterns of an Environments list.
type Matcher struct {
	envs []compiledEnvironment
}

type compiledEnvironment struct {
	name     string
	patterns []*regexp.Regexp
}

// Compile compiles every pattern of es once. Invalid entries are reported
// in the returned error, shaped like the error from Validate, but the
// Matcher is always usable: patterns which fail to compile are left out.
func (es Environments) Compile() (*Matcher, error) {
	m := &Matcher{envs: make([]compiledEnvironment, 0, len(es))}
	errs := validation.Errors{}
	for i, e := range es {
		ce := compiledEnvironment{name: e.Name}
		perrs := validation.Errors{}
		for j, pattern := range e.Patterns {
			re, err := compile(pattern)
			if err != nil {
				perrs[strconv.Itoa(j)] = err
				continue
			}
			ce.patterns = append(ce.patterns, re)
		}
		m.envs = append(m.envs, ce)

		err := validation.Errors{
			"Name":     validation.Validate(e.Name, validation.Required),
			"Patterns": perrs.Filter(),
		}.Filter()
		if err != nil {
			errs[strconv.Itoa(i)] = err
		}
	}
	return m, errs.Filter()
}

// Match returns the name of the first environment with a pattern found in
// the composed identity of d. The path is only part of the identity when
// withPath is true. A nil Matcher never matches.
func (m *Matcher) Match(d Descriptor, withPath bool) (string, bool) {
	if m == nil {
		return "", false
	}

	id := d.Compose(withPath)
	for _, env := range m.envs {
		for _, re := range env.patterns {
			if re.MatchString(id) {
				return env.name, true
			}
		}
	}
	return "", false
}

// Match compiles envs and matches d against them, see [Matcher.Match].
// Environments and patterns are tried in order, patterns which fail to
// compile are skipped. Callers matching repeatedly should Compile once.
func Match(d Descriptor, withPath bool, envs Environments) (string, bool) {
	if envs == nil {
		return "", false
	}
	m, _ := envs.Compile()
	return m.Match(d, withPath)
}
