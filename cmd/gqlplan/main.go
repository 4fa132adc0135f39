// Copyright 2019 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// gqlplan validates GraphQL documents against a schema.
//
//	gqlplan validate -s schema.graphql query.graphql...
//	gqlplan tokens query.graphql
//	gqlplan serve -s schema.graphql
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/xerrors"
	"zombiezen.com/go/gqlplan/config"
	"zombiezen.com/go/gqlplan/graphql"
	"zombiezen.com/go/gqlplan/plancache"
	"zombiezen.com/go/gqlplan/rules"
	"zombiezen.com/go/gqlplan/rules/docrules"
	"zombiezen.com/go/gqlplan/schema"
)

// Output formats.
const (
	formatPretty = "pretty"
	formatText   = "text"
	formatJSON   = "json"
)

// errInvalid is returned when at least one document is invalid. The command
// has already reported why.
var errInvalid = xerrors.New("invalid documents")

type app struct {
	configPath string
	schemaPath string
	format     string

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func defaultFormat() string {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return formatPretty
	}
	return formatText
}

func newRootCmd() *cobra.Command {
	a := new(app)
	cmd := &cobra.Command{
		Use:           "gqlplan",
		Short:         "Validate GraphQL documents against a schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().StringVarP(&a.schemaPath, "schema", "s", "schema.graphql", "File path of GraphQL schema")
	cmd.PersistentFlags().StringVarP(&a.format, "format", "f", defaultFormat(), "Output format: pretty, text, json")

	cmd.AddCommand(newValidateCmd(a))
	cmd.AddCommand(newTokensCmd(a))
	cmd.AddCommand(newServeCmd(a))
	return cmd
}

func (a *app) init(stderr io.Writer) error {
	switch a.format {
	case formatPretty, formatText, formatJSON:
	default:
		return xerrors.Errorf("unknown format %q", a.format)
	}
	var err error
	a.cfg, err = config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.logger, err = a.cfg.Log.NewLogger(stderr)
	if err != nil {
		return err
	}
	return nil
}

func (a *app) loadSchema() (*schema.Schema, error) {
	data, err := os.ReadFile(a.schemaPath)
	if err != nil {
		return nil, xerrors.Errorf("load schema: %w", err)
	}
	s, err := schema.LoadSDL(a.schemaPath, string(data))
	if err != nil {
		return nil, xerrors.Errorf("load schema: %w", err)
	}
	a.logger.Debug("schema loaded", "path", a.schemaPath, "schema_id", s.ID())
	return s, nil
}

// newCompiler returns a compiler configured from a.cfg. If reg is not nil and
// metrics are enabled, the plan cache's metrics are registered with it.
func (a *app) newCompiler(s *schema.Schema, reg prometheus.Registerer) (*graphql.Compiler, error) {
	opts := []graphql.CompilerOption{
		graphql.WithLogger(a.logger),
		graphql.WithParseOptions(graphql.ParseOptions{
			MaxDepth: a.cfg.Parser.MaxDepth,
			MaxSize:  a.cfg.Parser.MaxSize,
		}),
		graphql.WithMaxProcessingDepth(a.cfg.Rules.MaxProcessingDepth),
	}
	if a.cfg.Rules.ChildrenFirst {
		opts = append(opts, graphql.WithRules(docrules.New(rules.WithChildrenFirst())))
	}
	if a.cfg.Cache.Enabled {
		var cacheOpts []plancache.Option
		cacheOpts = append(cacheOpts, plancache.WithLogger(a.logger))
		if reg != nil && a.cfg.Metrics.Enabled {
			cacheOpts = append(cacheOpts, plancache.WithRegisterer(reg))
		}
		cache, err := plancache.New[*graphql.ValidatedDocument](plancache.Config{
			Size:      a.cfg.Cache.Size,
			Namespace: a.cfg.Metrics.Namespace,
		}, cacheOpts...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, graphql.WithCache(cache))
	}
	return graphql.NewCompiler(s, opts...)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", xerrors.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
