// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/z5labs/cascade"
	"github.com/z5labs/cascade/pkg/config"
	"github.com/z5labs/cascade/pkg/fetch"
	"github.com/z5labs/cascade/pkg/host"
	"github.com/z5labs/cascade/pkg/maskslog"
	"github.com/z5labs/cascade/pkg/otelconfig"
	"github.com/z5labs/cascade/pkg/otelslog"
	"github.com/z5labs/cascade/pkg/slogfield"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	flagSource        = "source"
	flagDir           = "dir"
	flagFile          = "file"
	flagHost          = "host"
	flagEnv           = "env"
	flagEnvironments  = "environments"
	flagCascade       = "cascade"
	flagBasePath      = "base-path"
	flagMerge         = "merge"
	flagMergeOptional = "merge-optional"
	flagEnvPrefix     = "env-prefix"
	flagTemplate      = "template"
	flagTrace         = "trace"
	flagLogLevel      = "log-level"
)

var errKeyNotFound = errors.New("key not found")

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CASCADE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "cascade",
		Short:         "Resolve values from a multi-environment config file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return v.BindPFlags(cmd.Flags())
		},
	}

	fs := cmd.PersistentFlags()
	fs.String(flagSource, ".", "directory or http(s) base URL config files are fetched from")
	fs.String(flagDir, "config", "directory of the config file, relative to the source")
	fs.String(flagFile, "config.json", "name of the config file")
	fs.String(flagHost, "", "host to match environments against as host[:port][/path] (default: this machine's hostname)")
	fs.String(flagEnv, "", "force the active environment instead of matching the host")
	fs.String(flagEnvironments, "", "path, relative to the source, of a file mapping environment names to host patterns")
	fs.Bool(flagCascade, true, "fall back to top-level values for keys missing from the environment")
	fs.Bool(flagBasePath, false, "include the host's path when matching environments")
	fs.StringSlice(flagMerge, nil, "config files merged over the config file, later files win")
	fs.StringSlice(flagMergeOptional, nil, "like --merge but missing or invalid files are skipped")
	fs.String(flagEnvPrefix, "", "merge environment variables with this prefix over the config, __ nests keys")
	fs.Bool(flagTemplate, false, "render config files as text/templates before decoding")
	fs.Bool(flagTrace, false, "write trace spans to stderr")
	fs.String(flagLogLevel, "error", "log level: debug, info, warn or error")

	cmd.AddCommand(
		newGetCmd(v),
		newEnvCmd(v),
		newDumpCmd(v),
	)
	return cmd
}

func newGetCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY [DEFAULT]",
		Short: "Print the value of a dotted key for the active environment",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(cmd, v, func(cfg *cascade.Configuration) error {
				val, ok := cfg.Value(args[0])
				if ok {
					fmt.Fprintln(cmd.OutOrStdout(), val.String())
					return nil
				}
				if len(args) == 2 {
					fmt.Fprintln(cmd.OutOrStdout(), args[1])
					return nil
				}
				return fmt.Errorf("%w: %s", errKeyNotFound, args[0])
			})
		},
	}
}

func newEnvCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Print the active environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(cmd, v, func(cfg *cascade.Configuration) error {
				fmt.Fprintln(cmd.OutOrStdout(), cfg.Environment())
				return nil
			})
		},
	}
}

func newDumpCmd(v *viper.Viper) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the whole merged config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(cmd, v, func(cfg *cascade.Configuration) error {
				return dump(cmd.OutOrStdout(), cfg.GetAll(), output)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json or yaml")
	return cmd
}

func dump(w io.Writer, m *config.Map, format string) error {
	switch format {
	case "json":
		b, err := m.MarshalJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		err := enc.Encode(m)
		if err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func newLogHandler(w io.Writer, level string) (slog.Handler, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(level))
	if err != nil {
		return nil, err
	}
	return otelslog.NewHandler(
		maskslog.NewHandler(
			slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}),
			maskslog.Attr("url", maskslog.URL),
		),
	), nil
}

func newFetcher(source string, opts ...fetch.Option) (fetch.Fetcher, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		u, err := url.Parse(source)
		if err != nil {
			return nil, err
		}
		return fetch.NewHTTP(u, opts...), nil
	}
	return fetch.NewFS(os.DirFS(source), opts...), nil
}

func newDescriptor(s string) (host.Descriptor, error) {
	if s == "" {
		return host.Local()
	}
	return host.Parse(s)
}

// withConfig builds and loads a Configuration from the command's flags
// and passes it to f.
func withConfig(cmd *cobra.Command, v *viper.Viper, f func(*cascade.Configuration) error) (err error) {
	ctx := cmd.Context()

	logHandler, err := newLogHandler(cmd.ErrOrStderr(), v.GetString(flagLogLevel))
	if err != nil {
		return err
	}
	log := slog.New(logHandler)

	var initer otelconfig.Initializer = otelconfig.Noop
	if v.GetBool(flagTrace) {
		initer = otelconfig.Local(
			otelconfig.ServiceName("cascade"),
			otelconfig.Writer(cmd.ErrOrStderr()),
		)
	}
	tp, err := initer.Init(ctx)
	if err != nil {
		return err
	}
	defer func() {
		serr := tp.Shutdown(context.Background())
		if serr != nil {
			log.Error("failed to shutdown tracer provider", slogfield.Error(serr))
		}
	}()

	fopts := []fetch.Option{
		fetch.LogHandler(logHandler),
		fetch.TracerProvider(tp),
	}
	if v.GetBool(flagTemplate) {
		fopts = append(fopts, fetch.Template())
	}
	fetcher, err := newFetcher(v.GetString(flagSource), fopts...)
	if err != nil {
		return err
	}

	d, err := newDescriptor(v.GetString(flagHost))
	if err != nil {
		return err
	}

	cfg := cascade.New(
		d,
		cascade.Fetcher(fetcher),
		cascade.LogHandler(logHandler),
		cascade.Directory(v.GetString(flagDir)),
		cascade.ConfigFile(v.GetString(flagFile)),
		cascade.CascadeMode(v.GetBool(flagCascade)),
		cascade.BasePathMode(v.GetBool(flagBasePath)),
	)

	if p := v.GetString(flagEnvironments); p != "" {
		m, err := fetcher.Fetch(ctx, p)
		if err != nil {
			return err
		}
		envs, err := host.EnvironmentsFromMap(m)
		if err != nil {
			return err
		}
		cfg.SetEnvironments(envs)
	}
	if env := v.GetString(flagEnv); env != "" {
		cfg.SetEnvironment(env)
	}

	var extra []cascade.MergeFile
	for _, p := range v.GetStringSlice(flagMerge) {
		extra = append(extra, cascade.MergeFile{Path: p})
	}
	for _, p := range v.GetStringSlice(flagMergeOptional) {
		extra = append(extra, cascade.MergeFile{Path: p, Optional: true})
	}

	err = cfg.Load(ctx, extra...)
	if err != nil {
		return err
	}

	if prefix := v.GetString(flagEnvPrefix); prefix != "" {
		m, err := config.Read(config.FromEnv(prefix))
		if err != nil {
			return err
		}
		cfg.LazyMerge(m)
		cfg.Commit()
	}

	log.Debug("loaded config", slogfield.Path(cfg.ConfigPath()), slogfield.Environment(cfg.Environment()))
	return f(cfg)
}
