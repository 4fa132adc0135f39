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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
	"zombiezen.com/go/gqlplan/diagnostic"
	"zombiezen.com/go/gqlplan/graphql"
	"zombiezen.com/go/gqlplan/rules"
)

type fileResult struct {
	File        string                  `json:"file"`
	Valid       bool                    `json:"valid"`
	Diagnostics []diagnostic.Diagnostic `json:"diagnostics,omitempty"`

	source string
}

func newValidateCmd(a *app) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "validate [flags] [FILE...]",
		Short: "Validate GraphQL documents against the schema",
		Long: `Validate parses each document and checks it against the schema.
With no files, or when a file is -, the document is read from standard input.
The command exits with a non-zero status if any document is invalid.`,
		Example: `  # Validate every query in a directory
  gqlplan validate -s schema.graphql queries/*.graphql

  # Re-validate whenever the schema or a query changes
  gqlplan validate -s schema.graphql --watch query.graphql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"-"}
			}
			if watch {
				for _, f := range args {
					if f == "-" {
						return xerrors.New("cannot watch standard input")
					}
				}
				return a.watch(cmd.Context(), cmd.OutOrStdout(), args)
			}
			ok, err := a.validateFiles(cmd.Context(), cmd.OutOrStdout(), cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if !ok {
				return errInvalid
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-validate when the schema or a document changes")
	return cmd
}

// validateFiles validates each file and writes the results to w. It reports
// whether every document was valid.
func (a *app) validateFiles(ctx context.Context, w io.Writer, stdin io.Reader, files []string) (bool, error) {
	s, err := a.loadSchema()
	if err != nil {
		return false, err
	}
	compiler, err := a.newCompiler(s, nil)
	if err != nil {
		return false, err
	}
	results := make([]fileResult, 0, len(files))
	allValid := true
	for _, f := range files {
		source, err := readInput(f, stdin)
		if err != nil {
			return false, err
		}
		name := f
		if name == "-" {
			name = "stdin"
		}
		result, err := compileFile(ctx, compiler, name, source)
		if err != nil {
			return false, err
		}
		allValid = allValid && result.Valid
		results = append(results, result)
	}
	if err := writeResults(w, a.format, results); err != nil {
		return false, err
	}
	return allValid, nil
}

// compileFile compiles a document, converting errors about the document
// itself into diagnostics.
func compileFile(ctx context.Context, compiler *graphql.Compiler, name, source string) (fileResult, error) {
	result := fileResult{File: name, source: source}
	vd, err := compiler.Compile(ctx, source)
	var se *graphql.SyntaxError
	switch {
	case err == nil:
		result.Valid = vd.Valid()
		result.Diagnostics = vd.Diagnostics()
	case xerrors.As(err, &se):
		result.Diagnostics = []diagnostic.Diagnostic{{
			Severity: diagnostic.Critical,
			Code:     diagnostic.SyntaxError,
			Message:  se.Message,
			Location: diagnostic.Location{Line: se.Line, Column: se.Column},
		}}
	case xerrors.Is(err, rules.ErrDepthExceeded):
		result.Diagnostics = []diagnostic.Diagnostic{{
			Severity: diagnostic.Critical,
			Code:     diagnostic.DepthExceeded,
			Message:  "document nests too deeply to validate",
		}}
	default:
		return fileResult{}, xerrors.Errorf("%s: %w", name, err)
	}
	return result, nil
}

func writeResults(w io.Writer, format string, results []fileResult) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case formatText:
		sb := new(strings.Builder)
		for _, r := range results {
			if r.Valid && len(r.Diagnostics) == 0 {
				fmt.Fprintf(sb, "%s: ok\n", r.File)
				continue
			}
			for _, d := range r.Diagnostics {
				if d.Location.IsValid() {
					fmt.Fprintf(sb, "%s:%v: %s: %s", r.File, d.Location, d.Severity, d.Message)
				} else {
					fmt.Fprintf(sb, "%s: %s: %s", r.File, d.Severity, d.Message)
				}
				if d.Rule != "" {
					fmt.Fprintf(sb, " (rule %s)", d.Rule)
				}
				sb.WriteString("\n")
			}
		}
		_, err := io.WriteString(w, sb.String())
		return err
	default:
		sb := new(strings.Builder)
		for _, r := range results {
			switch {
			case r.Valid && len(r.Diagnostics) == 0:
				fmt.Fprintf(sb, "✓ %s is valid\n", r.File)
				continue
			case r.Valid:
				fmt.Fprintf(sb, "✓ %s is valid with %s:\n", r.File, plural(len(r.Diagnostics), "warning"))
			default:
				fmt.Fprintf(sb, "✗ %s has %s:\n", r.File, plural(len(r.Diagnostics), "problem"))
			}
			for _, d := range r.Diagnostics {
				sb.WriteString(diagnostic.Render(r.File, r.source, d))
				sb.WriteString("\n")
			}
		}
		_, err := io.WriteString(w, sb.String())
		return err
	}
}
