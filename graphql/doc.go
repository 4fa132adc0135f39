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

/*
Package graphql compiles GraphQL documents against a schema. Compiling a
document lexes and parses its text, builds a tree of document parts bound to
the schema, and runs the validation rules described at
https://graphql.github.io/graphql-spec/June2018/#sec-Validation over it. The
result is a ValidatedDocument that an executor can plan from.

# Errors

Text that does not match the GraphQL grammar produces a *SyntaxError and no
document. Every other problem with a document is reported as a diagnostic:

	vd, err := compiler.Compile(ctx, `query { a } query { b }`)
	if err != nil {
		// Syntax error, cancellation, or a document nested too deeply.
	}
	if !vd.Valid() {
		for _, d := range vd.Diagnostics() {
			fmt.Println(d)
		}
	}

# Caching

A Compiler created with WithCache stores its results keyed by the document
text and the schema's identity. Concurrent compiles of the same text share one
compilation. Syntax errors are not cached.

For the common case where you are serving GraphQL over HTTP, see the graphqlhttp
package in this module.
*/
package graphql
