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

package graphql_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"zombiezen.com/go/gqlplan/graphql"
	"zombiezen.com/go/gqlplan/schema"
)

func ExampleCompiler() {
	compiler := newCompiler()

	vd, err := compiler.Compile(context.Background(), `query { genericGreeting }`)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(vd.Valid(), vd.TypeOf(""))
	// Output:
	// true query
}

func ExampleValidatedDocument_Diagnostics() {
	compiler := newCompiler()

	vd, err := compiler.Compile(context.Background(), `query { genericGreeting } query { greet }`)
	if err != nil {
		log.Fatal(err)
	}
	for _, d := range vd.Diagnostics() {
		fmt.Println(d)
	}
	// Output:
	// 1:27: multiple anonymous operations (rule 5.2.2.1)
	// 1:35: missing required argument subject (rule 5.4.2.1)
}

// Diagnostics can be converted to GraphQL response errors and serialized
// using the standard encoding/json package.
func ExampleResponseErrors() {
	compiler := newCompiler()

	vd, err := compiler.Compile(context.Background(), `{ greet(subject: 42) }`)
	if err != nil {
		log.Fatal(err)
	}
	response := graphql.Response{Errors: graphql.ResponseErrors(vd.Diagnostics())}
	responseJSON, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(responseJSON))
	// Output:
	// {
	//   "errors": [
	//     {
	//       "message": "cannot coerce 42 to String",
	//       "locations": [
	//         {
	//           "line": 1,
	//           "column": 18
	//         }
	//       ],
	//       "extensions": {
	//         "code": "INVALID_DOCUMENT",
	//         "rule": "5.6.1"
	//       }
	//     }
	//   ]
	// }
}

func newCompiler() *graphql.Compiler {
	s, err := schema.LoadSDL("greeting.graphql", `
		type Query {
			genericGreeting: String!
			greet(subject: String!): String!
		}
	`)
	if err != nil {
		panic(err)
	}
	compiler, err := graphql.NewCompiler(s)
	if err != nil {
		panic(err)
	}
	return compiler
}
