// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package host describes the network identity of the running
// application and maps it onto a named deployment environment.
package host

import (
	"net/url"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Descriptor is an immutable snapshot of a host's network identity.
type Descriptor struct {
	hostname string
	port     string
	path     string
}

// New returns a Descriptor. An empty port means no explicit port. The
// path is dropped when it is empty or the root "/".
func New(hostname, port, path string) Descriptor {
	if path == "/" {
		path = ""
	}
	return Descriptor{
		hostname: hostname,
		port:     port,
		path:     path,
	}
}

// FromURL builds a Descriptor from the host, port and path of u.
func FromURL(u *url.URL) Descriptor {
	return New(u.Hostname(), u.Port(), u.EscapedPath())
}

// Parse builds a Descriptor from a string of the form host[:port][/path].
// A scheme prefix such as "https://" is accepted and ignored.
func Parse(s string) (Descriptor, error) {
	if !strings.Contains(s, "://") {
		s = "//" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return Descriptor{}, err
	}

	d := FromURL(u)
	return d, d.Validate()
}

// Local returns a Descriptor for the current machine using [os.Hostname].
func Local() (Descriptor, error) {
	name, err := os.Hostname()
	if err != nil {
		return Descriptor{}, err
	}
	return New(name, "", ""), nil
}

// Hostname returns the host name.
func (d Descriptor) Hostname() string { return d.hostname }

// Port returns the port or an empty string when none was given.
func (d Descriptor) Port() string { return d.port }

// Path returns the path prefix or an empty string when none was given.
func (d Descriptor) Path() string { return d.path }

// Compose builds the identity used for matching. The port is
// appended after a colon when present and the path only when
// withPath is true.
func (d Descriptor) Compose(withPath bool) string {
	var sb strings.Builder
	sb.WriteString(d.hostname)
	if d.port != "" {
		sb.WriteByte(':')
		sb.WriteString(d.port)
	}
	if withPath && d.path != "" {
		sb.WriteString(d.path)
	}
	return sb.String()
}

// String implements the [fmt.Stringer] interface.
func (d Descriptor) String() string {
	return d.Compose(true)
}

// Validate reports whether d has a host name and, when set, a valid port.
func (d Descriptor) Validate() error {
	return validation.Errors{
		"hostname": validation.Validate(d.hostname, validation.Required),
		"port":     validation.Validate(d.port, is.Port),
	}.Filter()
}
