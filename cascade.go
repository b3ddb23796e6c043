// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cascade

import (
	"log/slog"
	"os"
	"path"
	"sync"

	"github.com/z5labs/cascade/internal/noop"
	"github.com/z5labs/cascade/pkg/config"
	"github.com/z5labs/cascade/pkg/fetch"
	"github.com/z5labs/cascade/pkg/host"
	"github.com/z5labs/cascade/pkg/slogfield"
)

// DefaultEnvironment is the environment a Configuration starts in. While
// it is active, keys are resolved against the top level of the config.
const DefaultEnvironment = "default"

type options struct {
	directory   string
	configFile  string
	environment string
	cascade     bool
	basePath    bool
	envs        host.Environments
	fetcher     fetch.Fetcher
	logHandler  slog.Handler
}

// Option configures a Configuration.
type Option func(*options)

// Directory sets the directory the config file is loaded from. Defaults to "config".
func Directory(dir string) Option {
	return func(o *options) {
		o.directory = dir
	}
}

// ConfigFile sets the name of the config file. Defaults to "config.json".
func ConfigFile(name string) Option {
	return func(o *options) {
		o.configFile = name
	}
}

// Environment sets the initially active environment.
func Environment(name string) Option {
	return func(o *options) {
		o.environment = name
	}
}

// CascadeMode toggles falling back to top-level values when a key is
// missing from the active environment. Enabled by default.
func CascadeMode(enabled bool) Option {
	return func(o *options) {
		o.cascade = enabled
	}
}

// BasePathMode toggles including the host's path when matching
// environments. Disabled by default.
func BasePathMode(enabled bool) Option {
	return func(o *options) {
		o.basePath = enabled
	}
}

// Environments sets the environment map. The active environment is
// selected from it as soon as the Configuration is created.
func Environments(envs host.Environments) Option {
	return func(o *options) {
		o.envs = envs
	}
}

// Fetcher sets where config files are fetched from. Defaults to the
// filesystem rooted at the current working directory.
func Fetcher(f fetch.Fetcher) Option {
	return func(o *options) {
		o.fetcher = f
	}
}

// LogHandler sets the handler environment changes and fetches are
// logged to. Nothing is logged by default.
func LogHandler(h slog.Handler) Option {
	return func(o *options) {
		o.logHandler = h
	}
}

// Configuration holds a config tree which may describe several deployment
// environments and resolves keys against the environment matching host.
//
// A Configuration is safe for concurrent use.
type Configuration struct {
	host    host.Descriptor
	fetcher fetch.Fetcher
	log     *slog.Logger

	mu          sync.RWMutex
	directory   string
	configFile  string
	environment string
	cascade     bool
	basePath    bool
	envs        host.Environments
	matcher     *host.Matcher
	obj         *config.Map
	staging     *config.Map
}

// New returns a Configuration for the application running on d.
func New(d host.Descriptor, opts ...Option) *Configuration {
	o := &options{
		directory:   "config",
		configFile:  "config.json",
		environment: DefaultEnvironment,
		cascade:     true,
		logHandler:  noop.LogHandler{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.fetcher == nil {
		o.fetcher = fetch.NewFS(os.DirFS("."), fetch.LogHandler(o.logHandler))
	}

	c := &Configuration{
		host:        d,
		fetcher:     o.fetcher,
		log:         slog.New(o.logHandler),
		directory:   o.directory,
		configFile:  o.configFile,
		environment: o.environment,
		cascade:     o.cascade,
		basePath:    o.basePath,
		obj:         config.NewMap(),
	}
	c.setEnvironments(o.envs)
	c.Check()
	return c
}

// Host returns the host descriptor environments are matched against.
func (c *Configuration) Host() host.Descriptor {
	return c.host
}

// Directory returns the directory the config file is loaded from.
func (c *Configuration) Directory() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.directory
}

// SetDirectory sets the directory the config file is loaded from.
func (c *Configuration) SetDirectory(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.directory = dir
}

// ConfigFile returns the name of the config file.
func (c *Configuration) ConfigFile() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.configFile
}

// SetConfigFile sets the name of the config file.
func (c *Configuration) SetConfigFile(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configFile = name
}

// ConfigPath returns the path LoadConfig fetches.
func (c *Configuration) ConfigPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return path.Join(c.directory, c.configFile)
}

// Environment returns the name of the active environment.
func (c *Configuration) Environment() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.environment
}

// SetEnvironment makes name the active environment.
func (c *Configuration) SetEnvironment(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.environment = name
}

// Is reports whether name is the active environment.
func (c *Configuration) Is(name string) bool {
	return c.Environment() == name
}

// Environments returns the environment map.
func (c *Configuration) Environments() host.Environments {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.envs
}

// SetEnvironments replaces the environment map and selects the active
// environment from it.
func (c *Configuration) SetEnvironments(envs host.Environments) {
	c.mu.Lock()
	c.setEnvironments(envs)
	c.mu.Unlock()

	c.Check()
}

func (c *Configuration) setEnvironments(envs host.Environments) {
	c.envs = envs
	c.matcher = nil
	if envs == nil {
		return
	}

	m, err := envs.Compile()
	if err != nil {
		c.log.Warn("environment map contains invalid entries, they will be skipped", slogfield.Error(err))
	}
	c.matcher = m
}

// CascadeMode reports whether keys missing from the active environment
// fall back to top-level values.
func (c *Configuration) CascadeMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cascade
}

// SetCascadeMode toggles falling back to top-level values.
func (c *Configuration) SetCascadeMode(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cascade = enabled
}

// BasePathMode reports whether the host's path is part of environment matching.
func (c *Configuration) BasePathMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.basePath
}

// SetBasePathMode toggles including the host's path in environment matching.
// It does not re-run Check.
func (c *Configuration) SetBasePathMode(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.basePath = enabled
}

// Check matches the host against the environment map and activates the
// first matching environment. It reports whether an environment matched;
// the active environment is left unchanged when none did.
func (c *Configuration) Check() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.matcher == nil {
		return false
	}

	id := c.host.Compose(c.basePath)
	name, ok := c.matcher.Match(c.host, c.basePath)
	if !ok {
		c.log.Debug("no environment matched host", slogfield.Host(id))
		return false
	}

	c.log.Info("matched environment", slogfield.Host(id), slogfield.Environment(name))
	c.environment = name
	return true
}

func (c *Configuration) environmentEnabled() bool {
	return c.environment != DefaultEnvironment && c.environment != ""
}
