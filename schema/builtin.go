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

package schema

import (
	"sync"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// builtinSDL declares the types and directives every schema has.
// https://graphql.github.io/graphql-spec/June2018/#sec-Schema-Introspection
const builtinSDL = `
"The ` + "`Int`" + ` scalar type represents non-fractional signed whole numeric values."
scalar Int
"The ` + "`Float`" + ` scalar type represents signed double-precision fractional values."
scalar Float
"The ` + "`String`" + ` scalar type represents textual data, represented as UTF-8 character sequences."
scalar String
"The ` + "`Boolean`" + ` scalar type represents ` + "`true` or `false`" + `."
scalar Boolean
"The ` + "`ID`" + ` scalar type represents a unique identifier."
scalar ID

"Directs the executor to include this field or fragment only when the ` + "`if`" + ` argument is true."
directive @include(if: Boolean!) on FIELD | FRAGMENT_SPREAD | INLINE_FRAGMENT
"Directs the executor to skip this field or fragment when the ` + "`if`" + ` argument is true."
directive @skip(if: Boolean!) on FIELD | FRAGMENT_SPREAD | INLINE_FRAGMENT
"Marks an element of a GraphQL schema as no longer supported."
directive @deprecated(reason: String = "No longer supported") on FIELD_DEFINITION | ENUM_VALUE | ARGUMENT_DEFINITION | INPUT_FIELD_DEFINITION
"Exposes a URL that specifies the behavior of this scalar."
directive @specifiedBy(url: String!) on SCALAR

type __Schema {
  description: String
  types: [__Type!]!
  queryType: __Type!
  mutationType: __Type
  subscriptionType: __Type
  directives: [__Directive!]!
}

type __Type {
  kind: __TypeKind!
  name: String
  description: String
  specifiedByURL: String
  fields(includeDeprecated: Boolean = false): [__Field!]
  interfaces: [__Type!]
  possibleTypes: [__Type!]
  enumValues(includeDeprecated: Boolean = false): [__EnumValue!]
  inputFields: [__InputValue!]
  ofType: __Type
}

type __Field {
  name: String!
  description: String
  args: [__InputValue!]!
  type: __Type!
  isDeprecated: Boolean!
  deprecationReason: String
}

type __InputValue {
  name: String!
  description: String
  type: __Type!
  defaultValue: String
}

type __EnumValue {
  name: String!
  description: String
  isDeprecated: Boolean!
  deprecationReason: String
}

type __Directive {
  name: String!
  description: String
  locations: [__DirectiveLocation!]!
  args: [__InputValue!]!
  isRepeatable: Boolean!
}

enum __TypeKind {
  SCALAR
  OBJECT
  INTERFACE
  UNION
  ENUM
  INPUT_OBJECT
  LIST
  NON_NULL
}

enum __DirectiveLocation {
  QUERY
  MUTATION
  SUBSCRIPTION
  FIELD
  FRAGMENT_DEFINITION
  FRAGMENT_SPREAD
  INLINE_FRAGMENT
  VARIABLE_DEFINITION
  SCHEMA
  SCALAR
  OBJECT
  FIELD_DEFINITION
  ARGUMENT_DEFINITION
  INTERFACE
  UNION
  ENUM
  ENUM_VALUE
  INPUT_OBJECT
  INPUT_FIELD_DEFINITION
}
`

type builtinSet struct {
	types      []*Type
	directives []*Directive
	typeNames  map[string]bool
	dirNames   map[string]bool
}

var (
	builtinOnce sync.Once
	builtinDefs *builtinSet
)

// builtins returns the shared built-in definitions. They are never modified
// after the first call.
func builtins() *builtinSet {
	builtinOnce.Do(func() {
		doc, err := parser.ParseSchema(&ast.Source{Name: "builtin.graphql", Input: builtinSDL, BuiltIn: true})
		if err != nil {
			panic("parse builtin schema: " + err.Error())
		}
		b := &builtinSet{
			typeNames: make(map[string]bool),
			dirNames:  make(map[string]bool),
		}
		for _, def := range doc.Definitions {
			t := convertDefinition(def, false)
			t.index()
			b.types = append(b.types, t)
			b.typeNames[t.Name] = true
		}
		for _, def := range doc.Directives {
			d := convertDirective(def)
			b.directives = append(b.directives, d)
			b.dirNames[d.Name] = true
		}
		builtinDefs = b
	})
	return builtinDefs
}
