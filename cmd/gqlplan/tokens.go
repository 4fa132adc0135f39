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
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"zombiezen.com/go/gqlplan/internal/gqlang"
)

type tokenJSON struct {
	Kind    string `json:"kind"`
	Text    string `json:"text"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Ignored bool   `json:"ignored,omitempty"`
}

func newTokensCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens FILE",
		Short: "Print the tokens of a GraphQL document",
		Long: `Tokens splits a document into lexical tokens and prints each one with its
position, including ignored tokens like whitespace and comments.
When FILE is -, the document is read from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			src := gqlang.NewSource(source)
			tokens, err := gqlang.Tokenize(src)
			if err != nil {
				return err
			}
			return writeTokens(cmd.OutOrStdout(), a.format, src, tokens)
		},
	}
}

func writeTokens(w io.Writer, format string, src *gqlang.Source, tokens []gqlang.Token) error {
	if format == formatJSON {
		list := make([]tokenJSON, 0, len(tokens))
		for _, tok := range tokens {
			pos := src.Position(tok.Span.Start)
			list = append(list, tokenJSON{
				Kind:    tok.Kind.String(),
				Text:    tok.Text(src),
				Line:    pos.Line,
				Column:  pos.Column,
				Ignored: tok.Ignored,
			})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	sb := new(strings.Builder)
	for _, tok := range tokens {
		fmt.Fprintf(sb, "%v\t%v\t%q", src.Position(tok.Span.Start), tok.Kind, tok.Text(src))
		if tok.Ignored {
			sb.WriteString("\tignored")
		}
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
