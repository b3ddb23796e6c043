// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package cascade resolves configuration values for the deployment
// environment an application is running in.
//
// A single config file describes every environment. Top-level keys hold
// values shared by all environments and each environment gets a section
// keyed by its name:
//
//	{
//	    "api": {"endpoint": "https://api.example.com"},
//	    "timeout": "10s",
//	    "development": {
//	        "api": {"endpoint": "http://localhost:8080"}
//	    }
//	}
//
// # Environments
//
// The active environment is picked by matching the application's host
// against an ordered list of patterns per environment:
//
//	envs := host.Environments{
//	    {Name: "development", Patterns: []string{"localhost", "127.0.0.1"}},
//	    {Name: "staging", Patterns: []string{`staging\..*`}},
//	}
//	cfg := cascade.New(host.New("localhost", "9000", ""), cascade.Environments(envs))
//
// The first environment with a matching pattern wins. When nothing matches
// the environment stays "default" and keys resolve from the top level.
//
// # Resolution
//
// [Configuration.Get] looks a dotted key up in the active environment's
// section first. In cascade mode, the default, a key missing from the section
// is looked up from the top level instead:
//
//	cfg.Get("api.endpoint", "") // "http://localhost:8080"
//	cfg.Get("timeout", "5s")     // "10s"
//
// Values which are null, "", 0 or false are treated as missing and the
// given default is returned in their place.
//
// # Loading
//
// [Configuration.LoadConfig] fetches "config/config.json" through a
// [fetch.Fetcher]. Extra files staged with [Configuration.MergeConfigFile]
// or [Configuration.LazyMerge] are merged over it once it has loaded.
// [Configuration.Load] does both at once, fetching every file concurrently.
package cascade
