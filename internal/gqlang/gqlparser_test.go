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

package gqlang

import (
	"testing"

	"github.com/vektah/gqlparser/v2/ast"
	gqlparser "github.com/vektah/gqlparser/v2/parser"
)

// TestParseAgreesWithGQLParser checks that the parser accepts and rejects the
// same executable documents as github.com/vektah/gqlparser.
func TestParseAgreesWithGQLParser(t *testing.T) {
	tests := []string{
		`{ a }`,
		`{ a }, ,`,
		"# leading comment\n{ a }",
		`query Q($x: Int = 1, $y: [String!]!) { a(x: $x) @skip(if: true) { b } }`,
		`fragment F on T { a } query { ...F ... on T { b } ... @include(if: true) { c } }`,
		`{ a(s: """block""", l: [1, 2.5e3], o: {k: null, e: RED}) }`,
		`mutation { m } subscription { s }`,
		`{ alias: field(arg: "xé") }`,

		`{ a`,
		`query { }`,
		`{ a(x: ) }`,
		`{ a: }`,
		`{ ... }`,
		`{ a } }`,
		`query Q($x: Int = $y) { a }`,
		`query Q($x) { a }`,
	}
	for _, input := range tests {
		theirs, theirErr := gqlparser.ParseQuery(&ast.Source{Name: "test", Input: input})
		ours, ourErr := Parse(NewSource(input), nil)
		if (theirErr == nil) != (ourErr == nil) {
			t.Errorf("Parse(%q) error = %v; gqlparser error = %v", input, ourErr, theirErr)
			continue
		}
		if ourErr != nil {
			continue
		}
		ourDefs := 0
		for _, def := range ours.Children() {
			if typ := def.Type(); typ == OperationNode || typ == NamedFragmentNode {
				ourDefs++
			}
		}
		if theirDefs := len(theirs.Operations) + len(theirs.Fragments); ourDefs != theirDefs {
			t.Errorf("Parse(%q) has %d definitions; gqlparser found %d", input, ourDefs, theirDefs)
		}
	}
}
