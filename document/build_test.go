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

package document

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"zombiezen.com/go/gqlplan/diagnostic"
	"zombiezen.com/go/gqlplan/internal/gqlang"
	"zombiezen.com/go/gqlplan/schema"
)

const testSDL = `
type Query {
	a: Int
	b: String
	user(id: ID!): User
	search(filter: Filter, limit: Int = 10): [User!]!
}

type Mutation {
	rename(id: ID!, name: String!): User
}

type User {
	id: ID!
	name: String
	friends(first: Int): [User!]!
}

input Filter {
	name: String
	age: Int
	tags: [String!]
}
`

func mustBuild(tb testing.TB, query string) *Document {
	tb.Helper()
	s, err := schema.LoadSDL("test.graphql", testSDL)
	if err != nil {
		tb.Fatal(err)
	}
	src := gqlang.NewSource(query)
	root, err := gqlang.Parse(src, nil)
	if err != nil {
		tb.Fatal(err)
	}
	return Build(root, src, s)
}

// outline renders the part tree one part per line, indented by depth.
func outline(doc *Document) []string {
	var lines []string
	var visit func(id PartID, depth int)
	visit = func(id PartID, depth int) {
		desc := doc.Describe(id)
		// Drop the ID so outlines are comparable across documents.
		if i := strings.IndexByte(desc, '#'); i >= 0 {
			j := strings.IndexByte(desc, '(')
			desc = desc[:i] + desc[j:]
		}
		lines = append(lines, strings.Repeat("  ", depth)+desc)
		for _, c := range doc.Children(id) {
			visit(c, depth+1)
		}
	}
	visit(doc.Root(), 0)
	return lines
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "TwoFields",
			query: "query { a b }",
			want: []string{
				"Document()",
				"  Operation(query )",
				"    FieldSelectionSet()",
				"      Field(a)",
				"      Field(b)",
			},
		},
		{
			name:  "ArgumentsAndDirectives",
			query: `query Q($id: ID! = "1") @foo { user(id: $id) @skip(if: true) { name } }`,
			want: []string{
				"Document()",
				"  Operation(query Q)",
				"    Variable($id)",
				`      SuppliedValue("1")`,
				"    Directive(@foo)",
				"    FieldSelectionSet()",
				"      Field(user)",
				"        Argument(id)",
				"          SuppliedValue($id)",
				"        Directive(@skip)",
				"          Argument(if)",
				"            SuppliedValue(true)",
				"        FieldSelectionSet()",
				"          Field(name)",
			},
		},
		{
			name:  "Fragments",
			query: "{ ...F ... on User { id } ... { a } } fragment F on Query { b }",
			want: []string{
				"Document()",
				"  Operation(query )",
				"    FieldSelectionSet()",
				"      FragmentSpread(F)",
				"      InlineFragment(User)",
				"        FieldSelectionSet()",
				"          Field(id)",
				"      InlineFragment()",
				"        FieldSelectionSet()",
				"          Field(a)",
				"  NamedFragment(F)",
				"    FieldSelectionSet()",
				"      Field(b)",
			},
		},
		{
			name:  "Values",
			query: `{ search(filter: {name: "x", tags: ["a", "b"], age: null}, limit: $n) { id } }`,
			want: []string{
				"Document()",
				"  Operation(query )",
				"    FieldSelectionSet()",
				"      Field(search)",
				"        Argument(filter)",
				`          SuppliedValue({name: "x", tags: ["a", "b"], age: null})`,
				"            Argument(name)",
				`              SuppliedValue("x")`,
				"            Argument(tags)",
				`              SuppliedValue(["a", "b"])`,
				`                SuppliedValue("a")`,
				`                SuppliedValue("b")`,
				"            Argument(age)",
				"              SuppliedValue(null)",
				"        Argument(limit)",
				"          SuppliedValue($n)",
				"        FieldSelectionSet()",
				"          Field(id)",
			},
		},
		{
			name:  "TypeSystemDefinition",
			query: "scalar Date\n{ a }",
			want: []string{
				"Document()",
				"  TypeSystemDefinition(scalar Date)",
				"  Operation(query )",
				"    FieldSelectionSet()",
				"      Field(a)",
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := mustBuild(t, test.query)
			if diff := cmp.Diff(test.want, outline(doc)); diff != "" {
				t.Errorf("outline (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildTreeInvariants(t *testing.T) {
	doc := mustBuild(t, `
		query Q($f: Filter) {
			search(filter: $f) { ...UserFields friends(first: 2) { ... on User { id } } }
		}
		fragment UserFields on User { id name @include(if: false) }
	`)
	if got := doc.Parent(doc.Root()); got != NoPart {
		t.Errorf("Parent(root) = %d; want NoPart", got)
	}
	seen := make(map[PartID]int)
	for id := PartID(0); int(id) < doc.Len(); id++ {
		for _, c := range doc.Children(id) {
			seen[c]++
			if got := doc.Parent(c); got != id {
				t.Errorf("Parent(%s) = %d; want %d", doc.Describe(c), got, id)
			}
			if c <= id {
				t.Errorf("child %s precedes parent %s", doc.Describe(c), doc.Describe(id))
			}
		}
	}
	for id := PartID(1); int(id) < doc.Len(); id++ {
		if seen[id] != 1 {
			t.Errorf("%s appears in %d children lists; want 1", doc.Describe(id), seen[id])
		}
	}
}

func TestBuildBinding(t *testing.T) {
	doc := mustBuild(t, `
		query Q($id: ID!, $bad: Nope) {
			user(id: $id) { name missing }
			nothing
		}
		mutation { rename(id: "1", name: "x") { id } }
	`)
	s := doc.Schema()

	q := doc.Operation(doc.FindOperation("Q"))
	if q == nil {
		t.Fatal("FindOperation(\"Q\") not found")
	}
	if q.Kind() != schema.Query || q.RootType() != s.Type("Query") {
		t.Errorf("Q kind = %q, root = %v; want query on Query", q.Kind(), q.RootType())
	}
	vars := q.Variables()
	if len(vars) != 2 {
		t.Fatalf("len(Variables()) = %d; want 2", len(vars))
	}
	if v := doc.Variable(vars[0]); v.Type().String() != "ID!" || v.GraphType() != s.Type("ID") {
		t.Errorf("$id type = %v (%v); want ID! (ID)", v.Type(), v.GraphType())
	}
	if v := doc.Variable(vars[1]); v.GraphType() != nil {
		t.Errorf("$bad graph type = %v; want nil", v.GraphType())
	}

	set := doc.FieldSelectionSet(q.SelectionSet())
	if set.ParentType() != s.Type("Query") {
		t.Errorf("root selection set parent = %v; want Query", set.ParentType())
	}
	fields := doc.Children(q.SelectionSet())
	user := doc.Field(fields[0])
	if user.Definition() == nil || user.Type() != s.Type("User") || user.ParentType() != s.Type("Query") {
		t.Errorf("user field = %+v; want bound to Query.user returning User", user)
	}
	if !user.Included() {
		t.Error("user.Included() = false; want true")
	}
	arg := doc.Argument(user.Arguments()[0])
	if arg.Definition() == nil || arg.Definition().Type.String() != "ID!" {
		t.Errorf("user(id:) definition = %+v; want ID! argument", arg.Definition())
	}
	if v := doc.SuppliedValue(arg.Value()); v.Kind() != VariableValue || v.Raw() != "id" || v.Expected().String() != "ID!" {
		t.Errorf("user(id:) value = %v (%v, expected %v); want $id variable expecting ID!", v, v.Kind(), v.Expected())
	}
	sub := doc.Children(user.SelectionSet())
	if f := doc.Field(sub[1]); f.Definition() != nil || f.ParentType() != s.Type("User") {
		t.Errorf("missing field = %+v; want unbound field on User", f)
	}
	if f := doc.Field(fields[1]); f.Definition() != nil || f.Type() != nil {
		t.Errorf("nothing field = %+v; want unbound", f)
	}

	m := doc.Operation(doc.Operations()[1])
	if m.Kind() != schema.Mutation || m.RootType() != s.Type("Mutation") {
		t.Errorf("second operation = %q on %v; want mutation on Mutation", m.Kind(), m.RootType())
	}
}

func TestBuildFragments(t *testing.T) {
	doc := mustBuild(t, `
		query { user(id: "1") { ...Later } }
		fragment Later on User { ...Cycle }
		fragment Cycle on User { name ...Later }
		fragment Unused on User { ...Orphan }
		fragment Orphan on User { id }
		fragment Later on Query { a }
		fragment Bad on Nope { x }
	`)
	want := map[string]bool{
		"Later":  true,
		"Cycle":  true,
		"Unused": false,
		"Orphan": false,
		"Bad":    false,
	}
	frags := doc.Fragments()
	if len(frags) != 6 {
		t.Fatalf("len(Fragments()) = %d; want 6", len(frags))
	}
	for _, id := range frags {
		frag := doc.NamedFragment(id)
		if id != doc.Fragment(frag.Name()) {
			if frag.Referenced() {
				t.Errorf("duplicate %s marked referenced", frag.Name())
			}
			continue
		}
		if got := frag.Referenced(); got != want[frag.Name()] {
			t.Errorf("%s.Referenced() = %t; want %t", frag.Name(), got, want[frag.Name()])
		}
	}
	if frag := doc.NamedFragment(doc.Fragment("Bad")); frag.Target() != nil || frag.TypeCondition() != "Nope" {
		t.Errorf("Bad target = %v (%q); want nil (\"Nope\")", frag.Target(), frag.TypeCondition())
	}
	if got := doc.Fragment("Missing"); got != NoPart {
		t.Errorf("Fragment(\"Missing\") = %d; want NoPart", got)
	}

	// The spread in the operation resolves to the first "Later".
	op := doc.Operation(doc.Operations()[0])
	var spreads []PartID
	doc.Walk(op.SelectionSet(), func(id PartID) bool {
		if doc.Kind(id) == FragmentSpreadPart {
			spreads = append(spreads, id)
		}
		return true
	})
	if len(spreads) != 1 {
		t.Fatalf("found %d spreads in operation; want 1", len(spreads))
	}
	spread := doc.FragmentSpread(spreads[0])
	if spread.Fragment() != frags[0] {
		t.Errorf("spread resolved to %d; want %d (first Later)", spread.Fragment(), frags[0])
	}
	if spread.ParentType() != doc.Schema().Type("User") {
		t.Errorf("spread parent type = %v; want User", spread.ParentType())
	}
}

func TestBuildComplexValueIndex(t *testing.T) {
	doc := mustBuild(t, `{ search(filter: {name: "x", age: 1, name: "y"}) { id } }`)
	var value *SuppliedValue
	var valueID PartID
	doc.Walk(doc.Root(), func(id PartID) bool {
		if v := doc.SuppliedValue(id); v != nil && v.Kind() == ComplexValue {
			value, valueID = v, id
			return false
		}
		return true
	})
	if value == nil {
		t.Fatal("no complex value found")
	}
	if got, want := value.FieldNames(), []string{"age", "name"}; !cmp.Equal(got, want) {
		t.Errorf("FieldNames() = %q; want %q", got, want)
	}
	if got := doc.NumChildren(valueID); got != 3 {
		t.Errorf("NumChildren = %d; want 3", got)
	}
	name := doc.Argument(value.Field("name"))
	if got := doc.SuppliedValue(name.Value()).StringValue(); got != "x" {
		t.Errorf("Field(\"name\") = %q; want first occurrence \"x\"", got)
	}
	if name.Definition() == nil || name.Definition().Type.String() != "String" {
		t.Errorf("name definition = %+v; want Filter.name", name.Definition())
	}
	if got := value.Field("nope"); got != NoPart {
		t.Errorf("Field(\"nope\") = %d; want NoPart", got)
	}
}

func TestBuildDirectiveLocations(t *testing.T) {
	doc := mustBuild(t, `
		query Q($v: Int @d) @d { a @d ...F @d ... @d { b } }
		mutation M @d { rename(id: "1", name: "x") { id } }
		subscription S @d { a }
		fragment F on Query @d { a }
	`)
	var got []string
	doc.Walk(doc.Root(), func(id PartID) bool {
		if d := doc.Directive(id); d != nil {
			got = append(got, string(d.Location()))
			if d.Definition() != nil {
				t.Errorf("@d resolved to %+v; want nil", d.Definition())
			}
		}
		return true
	})
	want := []string{
		"VARIABLE_DEFINITION",
		"QUERY",
		"FIELD",
		"FRAGMENT_SPREAD",
		"INLINE_FRAGMENT",
		"MUTATION",
		"SUBSCRIPTION",
		"FRAGMENT_DEFINITION",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("locations (-want +got):\n%s", diff)
	}
}

func TestBuildVariableUses(t *testing.T) {
	doc := mustBuild(t, `
		query Q($id: ID!, $n: Int) { user(id: $id) { ...F ...F } }
		fragment F on User { friends(first: $n) { id } }
		fragment G on User { friends(first: $unused) { id } }
	`)
	op := doc.Operation(doc.FindOperation(""))
	var got []string
	for _, id := range op.VariableUses() {
		got = append(got, doc.SuppliedValue(id).Raw())
	}
	if diff := cmp.Diff([]string{"id", "n"}, got); diff != "" {
		t.Errorf("VariableUses (-want +got):\n%s", diff)
	}
}

func TestFindOperation(t *testing.T) {
	tests := []struct {
		query string
		name  string
		want  string
	}{
		{query: "{ a }", name: "", want: "query "},
		{query: "{ a }", name: "Foo", want: ""},
		{query: "query Foo { a } query Bar { b }", name: "Bar", want: "query Bar"},
		{query: "query Foo { a } query Bar { b }", name: "", want: ""},
		{query: "fragment F on Query { a }", name: "", want: ""},
	}
	for _, test := range tests {
		doc := mustBuild(t, test.query)
		id := doc.FindOperation(test.name)
		got := ""
		if id != NoPart {
			op := doc.Operation(id)
			got = string(op.Kind()) + " " + op.Name()
		}
		if got != test.want {
			t.Errorf("FindOperation(%q) in %q = %q; want %q", test.name, test.query, got, test.want)
		}
	}
}

func TestLocation(t *testing.T) {
	doc := mustBuild(t, "query {\n  a\n  b\n}")
	set := doc.Operation(doc.Operations()[0]).SelectionSet()
	b := doc.Child(set, 1)
	if got, want := doc.Location(b), (diagnostic.Location{Line: 3, Column: 3}); got != want {
		t.Errorf("Location(b) = %v; want %v", got, want)
	}
	if got := doc.Offset(b); got != 14 {
		t.Errorf("Offset(b) = %d; want 14", got)
	}
	if got := doc.Ancestor(b, OperationPart); doc.Kind(got) != OperationPart {
		t.Errorf("Ancestor(b, Operation) = %s", doc.Describe(got))
	}
}

func TestBuildDeterministic(t *testing.T) {
	const query = `
		query Q($id: ID!) { user(id: $id) { ...F } search(filter: {tags: ["a"]}) { id } }
		fragment F on User { name friends(first: 1) { id } }
	`
	first := outline(mustBuild(t, query))
	second := outline(mustBuild(t, query))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second build differs (-first +second):\n%s", diff)
	}
}

func TestKindString(t *testing.T) {
	for k := Kind(0); int(k) < NumKinds; k++ {
		if s := k.String(); strings.HasPrefix(s, "Kind(") {
			t.Errorf("Kind(%d).String() = %q", int(k), s)
		}
	}
	if got, want := Kind(NumKinds).String(), fmt.Sprintf("Kind(%d)", NumKinds); got != want {
		t.Errorf("Kind(NumKinds).String() = %q; want %q", got, want)
	}
}

func BenchmarkBuild(b *testing.B) {
	s, err := schema.LoadSDL("test.graphql", testSDL)
	if err != nil {
		b.Fatal(err)
	}
	src := gqlang.NewSource(`
		query Q($id: ID!, $n: Int) { user(id: $id) { ...F } search(filter: {name: "x", tags: ["a", "b"]}) { id name } }
		fragment F on User { name friends(first: $n) { id name friends { id } } }
	`)
	root, err := gqlang.Parse(src, nil)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Build(root, src, s)
	}
}
