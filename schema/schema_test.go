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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadSDL(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr bool
	}{
		{
			name:    "Empty",
			source:  "",
			wantErr: true,
		},
		{
			name:    "SingleStringField",
			source:  "type Query { foo: String }",
			wantErr: false,
		},
		{
			name:    "ScalarType",
			source:  "type Query { foo: Bar }\nscalar Bar",
			wantErr: false,
		},
		{
			name:    "DuplicateTypeName",
			source:  "type Query { foo: String }\nscalar Bar\nscalar Bar",
			wantErr: true,
		},
		{
			name:    "UnknownType",
			source:  "type Query { foo: Bar }",
			wantErr: true,
		},
		{
			name:    "ReservedFieldName",
			source:  "type Query { __foo: String }",
			wantErr: true,
		},
		{
			name:    "ScalarQuery",
			source:  "scalar Query",
			wantErr: true,
		},
		{
			name:    "BuiltinConflict",
			source:  "type Query { foo: String }\ntype String { bar: Int }",
			wantErr: true,
		},
		{
			name: "Everything",
			source: `
				schema { query: Root, mutation: Mut }
				type Root { node(id: ID!): Node, pets: [Pet!]! }
				type Mut { rename(input: RenameInput!): Node }
				interface Node { id: ID! }
				type Dog implements Node { id: ID!, barks: Boolean }
				type Cat implements Node { id: ID!, meows: Boolean @deprecated(reason: "cats") }
				union Pet = Dog | Cat
				enum Color { RED GREEN }
				input RenameInput { id: ID!, name: String = "x", color: Color }
				directive @cached(ttl: Int) repeatable on FIELD | QUERY
			`,
			wantErr: false,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadSDL("schema.graphql", test.source)
			if err != nil && !test.wantErr {
				t.Errorf("LoadSDL(...) = _, %v; want <nil>", err)
			}
			if err == nil && test.wantErr {
				t.Error("LoadSDL(...) = _, <nil>; want error")
			}
		})
	}
}

const petSDL = `
schema { query: Root, mutation: Mut }
type Root { node(id: ID!): Node, pets: [Pet!]! }
type Mut { rename(input: RenameInput!): Node }
interface Node { id: ID! }
type Dog implements Node { id: ID!, barks: Boolean }
type Cat implements Node { id: ID!, meows: Boolean @deprecated(reason: "cats") }
union Pet = Dog | Cat
enum Color { RED GREEN }
input RenameInput { id: ID!, name: String = "x", color: Color }
directive @cached(ttl: Int) repeatable on FIELD | QUERY
`

func TestLoadSDLContents(t *testing.T) {
	s, err := LoadSDL("pets.graphql", petSDL)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.RootType(Query).String(); got != "Root" {
		t.Errorf("RootType(Query) = %s; want Root", got)
	}
	if got := s.RootType(Mutation).String(); got != "Mut" {
		t.Errorf("RootType(Mutation) = %s; want Mut", got)
	}
	if got := s.RootType(Subscription); got != nil {
		t.Errorf("RootType(Subscription) = %v; want <nil>", got)
	}

	node := s.Type("Node")
	if diff := cmp.Diff([]string{"Cat", "Dog"}, node.PossibleTypeNames()); diff != "" {
		t.Errorf("Node possible types (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Dog", "Cat"}, s.Type("Pet").PossibleTypeNames()); diff != "" {
		t.Errorf("Pet possible types (-want +got):\n%s", diff)
	}
	if !Overlaps(node, s.Type("Pet")) {
		t.Error("Overlaps(Node, Pet) = false; want true")
	}
	if Overlaps(s.Type("Dog"), s.Type("Cat")) {
		t.Error("Overlaps(Dog, Cat) = true; want false")
	}

	meows := s.Type("Cat").Field("meows")
	if meows == nil || !meows.IsDeprecated || meows.DeprecationReason != "cats" {
		t.Errorf("Cat.meows = %+v; want deprecated with reason \"cats\"", meows)
	}
	if f := s.Type("Dog").Field("__typename"); f == nil {
		t.Error("Dog.__typename missing")
	}
	if f := s.FieldOf(s.RootType(Query), "__schema"); f == nil || f.Type.String() != "__Schema!" {
		t.Errorf("Root.__schema = %+v", f)
	}
	if f := s.FieldOf(s.Type("Dog"), "__schema"); f != nil {
		t.Errorf("Dog.__schema = %+v; want <nil>", f)
	}
	if f := s.FieldOf(s.RootType(Query), "__type"); f == nil || f.Argument("name") == nil {
		t.Errorf("Root.__type = %+v; want field with name argument", f)
	}
	if f := s.Type("Root").Field("__schema"); f != nil {
		t.Errorf("Root.Field(__schema) = %+v; want <nil> (only through FieldOf)", f)
	}

	input := s.Type("RenameInput")
	if name := input.InputField("name"); !name.HasDefault() || *name.DefaultValue != `"x"` {
		t.Errorf("RenameInput.name = %+v; want default \"x\"", name)
	}
	if id := input.InputField("id"); id.HasDefault() {
		t.Errorf("RenameInput.id has default %q", *id.DefaultValue)
	}
	if !s.Type("Color").HasEnumValue("RED") || s.Type("Color").HasEnumValue("BLUE") {
		t.Error("Color enum values wrong")
	}

	cached := s.Directive("cached")
	if cached == nil || !cached.IsRepeatable || !cached.AllowsLocation(LocationQuery) || cached.AllowsLocation(LocationMutation) {
		t.Errorf("@cached = %+v", cached)
	}
	for _, name := range []string{"skip", "include", "deprecated", "specifiedBy"} {
		if s.Directive(name) == nil {
			t.Errorf("missing built-in directive @%s", name)
		}
	}
	for _, name := range []string{"Int", "Float", "String", "Boolean", "ID", "__Schema", "__Type", "__TypeKind"} {
		if s.Type(name) == nil {
			t.Errorf("missing built-in type %s", name)
		}
	}
}

func TestNew(t *testing.T) {
	stringRef := NamedType("String")
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "Minimal",
			cfg: Config{Types: []*Type{
				{Name: "Query", Kind: ObjectKind, Fields: []*Field{{Name: "a", Type: stringRef}}},
			}},
		},
		{
			name:    "NoQuery",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "EmptyObject",
			cfg: Config{Types: []*Type{
				{Name: "Query", Kind: ObjectKind},
			}},
			wantErr: true,
		},
		{
			name: "ExplicitMutationMissing",
			cfg: Config{
				Types: []*Type{
					{Name: "Query", Kind: ObjectKind, Fields: []*Field{{Name: "a", Type: stringRef}}},
				},
				Mutation: "Mutation",
			},
			wantErr: true,
		},
		{
			name: "InputObjectField",
			cfg: Config{Types: []*Type{
				{Name: "Query", Kind: ObjectKind, Fields: []*Field{{Name: "a", Type: NamedType("In")}}},
				{Name: "In", Kind: InputObjectKind, InputFields: []*InputValue{{Name: "x", Type: stringRef}}},
			}},
			wantErr: true,
		},
		{
			name: "ObjectArgument",
			cfg: Config{Types: []*Type{
				{Name: "Query", Kind: ObjectKind, Fields: []*Field{{
					Name:      "a",
					Type:      stringRef,
					Arguments: []*InputValue{{Name: "q", Type: NamedType("Query")}},
				}}},
			}},
			wantErr: true,
		},
		{
			name: "UnionOfScalar",
			cfg: Config{Types: []*Type{
				{Name: "Query", Kind: ObjectKind, Fields: []*Field{{Name: "a", Type: NamedType("U")}}},
				{Name: "U", Kind: UnionKind, PossibleTypes: []string{"String"}},
			}},
			wantErr: true,
		},
		{
			name: "ImplementsObject",
			cfg: Config{Types: []*Type{
				{Name: "Query", Kind: ObjectKind, Interfaces: []string{"Query"}, Fields: []*Field{{Name: "a", Type: stringRef}}},
			}},
			wantErr: true,
		},
		{
			name: "DuplicateDirective",
			cfg: Config{
				Types: []*Type{
					{Name: "Query", Kind: ObjectKind, Fields: []*Field{{Name: "a", Type: stringRef}}},
				},
				Directives: []*Directive{{Name: "skip", Locations: []DirectiveLocation{LocationField}}},
			},
			wantErr: true,
		},
		{
			name: "UnknownLocation",
			cfg: Config{
				Types: []*Type{
					{Name: "Query", Kind: ObjectKind, Fields: []*Field{{Name: "a", Type: stringRef}}},
				},
				Directives: []*Directive{{Name: "d", Locations: []DirectiveLocation{"NOWHERE"}}},
			},
			wantErr: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := New(test.cfg)
			if err != nil && !test.wantErr {
				t.Errorf("New(...) = _, %v; want <nil>", err)
			}
			if err == nil && test.wantErr {
				t.Error("New(...) = _, <nil>; want error")
			}
		})
	}
}

func TestSchemaIDsDiffer(t *testing.T) {
	a, err := LoadSDL("a", "type Query { a: Int }")
	if err != nil {
		t.Fatal(err)
	}
	b, err := LoadSDL("b", "type Query { a: Int }")
	if err != nil {
		t.Fatal(err)
	}
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("schema IDs = %q, %q; want distinct non-empty", a.ID(), b.ID())
	}
}
