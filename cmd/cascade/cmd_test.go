// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

var testFiles = map[string]string{
	"config/config.json": `{
		"name": "app",
		"api": {"endpoint": "https://api.example.com", "version": "v1"},
		"dev1": {"api": {"endpoint": "http://localhost"}},
		"dev2": {"api": {"endpoint": "http://localhost:9876"}}
	}`,
	"config/environments.json": `{"dev1": ["localhost"], "dev2": ["localhost:9876"]}`,
	"config/local.yaml":        "api:\n  version: v2\n",
}

func TestGetCmd(t *testing.T) {
	dir := writeFiles(t, testFiles)

	t.Run("will print the value for the matched environment", func(t *testing.T) {
		out, _, err := run(t,
			"--source", dir,
			"--host", "localhost:9876",
			"--environments", "config/environments.json",
			"get", "api.endpoint",
		)
		require.NoError(t, err)
		require.Equal(t, "http://localhost:9876\n", out)
	})

	t.Run("will print a cascaded value", func(t *testing.T) {
		out, _, err := run(t,
			"--source", dir,
			"--host", "localhost",
			"--environments", "config/environments.json",
			"get", "api.version",
		)
		require.NoError(t, err)
		require.Equal(t, "v1\n", out)
	})

	t.Run("will print the default", func(t *testing.T) {
		t.Run("if cascade mode is disabled", func(t *testing.T) {
			out, _, err := run(t,
				"--source", dir,
				"--host", "localhost",
				"--environments", "config/environments.json",
				"--cascade=false",
				"get", "api.version", "none",
			)
			require.NoError(t, err)
			require.Equal(t, "none\n", out)
		})
	})

	t.Run("will apply merge files", func(t *testing.T) {
		out, _, err := run(t,
			"--source", dir,
			"--host", "example.org",
			"--merge", "config/local.yaml",
			"--merge-optional", "config/missing.json",
			"get", "api.version",
		)
		require.NoError(t, err)
		require.Equal(t, "v2\n", out)
	})

	t.Run("will apply environment variables", func(t *testing.T) {
		t.Setenv("CASCADE_TEST_api__version", "v9")

		out, _, err := run(t,
			"--source", dir,
			"--host", "example.org",
			"--env-prefix", "CASCADE_TEST_",
			"get", "api.version",
		)
		require.NoError(t, err)
		require.Equal(t, "v9\n", out)
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the key is missing and no default is given", func(t *testing.T) {
			_, _, err := run(t,
				"--source", dir,
				"--host", "example.org",
				"get", "missing",
			)
			require.ErrorIs(t, err, errKeyNotFound)
		})

		t.Run("if a merge file is missing", func(t *testing.T) {
			_, _, err := run(t,
				"--source", dir,
				"--host", "example.org",
				"--merge", "config/missing.json",
				"get", "name",
			)
			require.Error(t, err)
		})
	})
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.FileServer(http.Dir(writeFiles(t, testFiles))))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	u.User = url.UserPassword("bob", "hunter2")

	out, stderr, err := run(t,
		"--source", u.String(),
		"--host", "localhost:9876",
		"--environments", "config/environments.json",
		"--log-level", "info",
		"get", "api.endpoint",
	)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9876\n", out)
	require.Contains(t, stderr, "bob:xxxxx@")
	require.NotContains(t, stderr, "hunter2")
}

func TestEnvCmd(t *testing.T) {
	dir := writeFiles(t, testFiles)

	testCases := []struct {
		Name     string
		Args     []string
		Expected string
	}{
		{
			Name:     "no environment map",
			Args:     []string{"--host", "localhost"},
			Expected: "default",
		},
		{
			Name:     "matched environment",
			Args:     []string{"--host", "localhost:9876", "--environments", "config/environments.json"},
			Expected: "dev2",
		},
		{
			Name:     "forced environment",
			Args:     []string{"--host", "localhost:9876", "--environments", "config/environments.json", "--env", "production"},
			Expected: "production",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			args := append([]string{"--source", dir}, testCase.Args...)
			out, _, err := run(t, append(args, "env")...)
			require.NoError(t, err)
			require.Equal(t, testCase.Expected, strings.TrimSpace(out))
		})
	}
}

func TestDumpCmd(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"config/config.json": `{"b": 1, "a": {"c": true}}`,
	})

	t.Run("will print json", func(t *testing.T) {
		out, _, err := run(t, "--source", dir, "--host", "localhost", "dump")
		require.NoError(t, err)
		require.Equal(t, "{\"b\":1,\"a\":{\"c\":true}}\n", out)
	})

	t.Run("will print yaml", func(t *testing.T) {
		out, _, err := run(t, "--source", dir, "--host", "localhost", "dump", "--output", "yaml")
		require.NoError(t, err)
		require.Equal(t, "b: 1\na:\n  c: true\n", out)
	})

	t.Run("will write spans", func(t *testing.T) {
		t.Run("if tracing is enabled", func(t *testing.T) {
			_, stderr, err := run(t, "--source", dir, "--host", "localhost", "--trace", "dump")
			require.NoError(t, err)
			require.Contains(t, stderr, "FS.Fetch")
		})

		t.Run("if tracing is enabled logs carry the trace id", func(t *testing.T) {
			_, stderr, err := run(t, "--source", dir, "--host", "localhost", "--trace", "--log-level", "info", "dump")
			require.NoError(t, err)
			require.Contains(t, stderr, "otel.trace_id=")
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the output format is unknown", func(t *testing.T) {
			_, _, err := run(t, "--source", dir, "--host", "localhost", "dump", "--output", "toml")
			require.Error(t, err)
		})
	})
}
