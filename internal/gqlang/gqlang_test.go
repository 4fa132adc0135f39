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

	"github.com/google/go-cmp/cmp"
)

func TestStringValue(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: `""`, want: ""},
		{raw: `"foo"`, want: "foo"},
		{raw: `"a\"b\\c\/d"`, want: `a"b\c/d`},
		{raw: `"\b\f\n\r\t"`, want: "\b\f\n\r\t"},
		{raw: `"café"`, want: "café"},
		{raw: `""""""`, want: ""},
		{raw: `"""foo"""`, want: "foo"},
		{raw: `"""esc \""" ok"""`, want: `esc """ ok`},
		{raw: "\"\"\"\n    Hello,\n      World!\n\n    Yours,\n      GraphQL.\n  \"\"\"", want: "Hello,\n  World!\n\nYours,\n  GraphQL."},
		{raw: "\"\"\"\r\n  a\r\n  b\r\n\"\"\"", want: "a\nb"},
	}
	for _, test := range tests {
		n := &Node{typ: ScalarValueNode, scalar: StringScalar, primary: test.raw}
		if got := n.StringValue(); got != test.want {
			t.Errorf("StringValue(%q) = %q; want %q", test.raw, got, test.want)
		}
	}
}

func TestStringValueNonString(t *testing.T) {
	n := &Node{typ: ScalarValueNode, scalar: IntScalar, primary: "42"}
	if got := n.StringValue(); got != "42" {
		t.Errorf("StringValue() = %q; want \"42\"", got)
	}
}

func TestNodeWith(t *testing.T) {
	root, err := Parse(NewSource("query Q { a }"), nil)
	if err != nil {
		t.Fatal(err)
	}
	op := root.Child(0)
	renamed := op.With(WithSecondary("R"), WithPrimary("mutation"))
	if op.Secondary() != "Q" || op.Primary() != "query" {
		t.Errorf("With modified receiver: %v", op)
	}
	if renamed.Secondary() != "R" || renamed.Primary() != "mutation" {
		t.Errorf("With(...) = %v; want mutation R", renamed)
	}
	if renamed.Coord() != op.Coord() || renamed.Span() != op.Span() {
		t.Errorf("With changed location: %v %v; want %v %v", renamed.Coord(), renamed.Span(), op.Coord(), op.Span())
	}

	emptied := op.With(WithChildren())
	if emptied.Len() != 0 || op.Len() != 1 {
		t.Errorf("after WithChildren(): clone has %d children, original has %d; want 0, 1", emptied.Len(), op.Len())
	}
	children := op.Children()
	children[0] = nil
	if op.Child(0) == nil {
		t.Error("Children() returned the node's own slice")
	}
}

func TestCoord(t *testing.T) {
	var root Coord
	got := []Coord{root.Child(0), root.Child(2).Child(1), root.Child(0).Child(10).Child(3)}
	want := []Coord{"0", "2.1", "0.10.3"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("coords (-want +got):\n%s", diff)
	}
	depths := []int{root.Depth(), got[0].Depth(), got[1].Depth(), got[2].Depth()}
	if diff := cmp.Diff([]int{0, 1, 2, 3}, depths); diff != "" {
		t.Errorf("depths (-want +got):\n%s", diff)
	}
}

func TestFirstChild(t *testing.T) {
	root, err := Parse(NewSource("query Q($v: Int) @d { a }"), nil)
	if err != nil {
		t.Fatal(err)
	}
	op := root.Child(0)
	tests := []struct {
		typ  NodeType
		want Coord
	}{
		{VariableCollectionNode, "0.0"},
		{DirectiveNode, "0.1"},
		{FieldCollectionNode, "0.2"},
	}
	for _, test := range tests {
		got := op.FirstChild(test.typ)
		if got == nil || got.Coord() != test.want {
			t.Errorf("FirstChild(%v) = %v; want node at %q", test.typ, got, test.want)
		}
	}
	if got := op.FirstChild(InputItemNode); got != nil {
		t.Errorf("FirstChild(InputItem) = %v; want <nil>", got)
	}
}
