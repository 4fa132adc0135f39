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

// Package document provides the schema-bound model of a GraphQL executable
// document.
//
// A Document is a tree of parts. Parts are stored in an arena owned by the
// Document and referred to by PartID: a part's parent is an ID, never a
// pointer, and a part's children are an ordered list of IDs. Each part
// carries exactly one kind-specific payload, obtained with the accessor that
// matches its Kind (Operation, Field, Directive, and so on).
package document

import (
	"fmt"

	"zombiezen.com/go/gqlplan/diagnostic"
	"zombiezen.com/go/gqlplan/internal/gqlang"
	"zombiezen.com/go/gqlplan/schema"
)

// PartID identifies a part within its Document.
type PartID int32

// NoPart is the PartID used for absent references.
const NoPart PartID = -1

// Kind is the kind of a document part.
type Kind uint8

// Part kinds.
const (
	DocumentPart Kind = iota
	OperationPart
	VariablePart
	NamedFragmentPart
	InlineFragmentPart
	FragmentSpreadPart
	FieldSelectionSetPart
	FieldPart
	ArgumentPart
	DirectivePart
	SuppliedValuePart
	TypeSystemDefinitionPart

	numKinds
)

// NumKinds is the number of part kinds. Kind values are in [0, NumKinds).
const NumKinds = int(numKinds)

var kindNames = [...]string{
	DocumentPart:             "Document",
	OperationPart:            "Operation",
	VariablePart:             "Variable",
	NamedFragmentPart:        "NamedFragment",
	InlineFragmentPart:       "InlineFragment",
	FragmentSpreadPart:       "FragmentSpread",
	FieldSelectionSetPart:    "FieldSelectionSet",
	FieldPart:                "Field",
	ArgumentPart:             "Argument",
	DirectivePart:            "Directive",
	SuppliedValuePart:        "SuppliedValue",
	TypeSystemDefinitionPart: "TypeSystemDefinition",
}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Document is a GraphQL executable document bound to a schema.
//
// A Document is only modified while it is being built and by a Mutator
// during validation. After validation, it is safe to read from multiple
// goroutines.
type Document struct {
	src    *gqlang.Source
	schema *schema.Schema
	parts  []part

	operations []PartID
	fragments  []PartID
	// fragmentsByName maps a name to the first fragment declared with it.
	fragmentsByName map[string]PartID
}

// part is an element of the arena. Exactly one payload pointer is non-nil,
// and it matches kind. The root has no payload.
type part struct {
	kind     Kind
	parent   PartID
	children []PartID
	pos      gqlang.Pos

	operation *Operation
	variable  *Variable
	fragment  *NamedFragment
	inline    *InlineFragment
	spread    *FragmentSpread
	selection *FieldSelectionSet
	field     *Field
	argument  *Argument
	directive *Directive
	value     *SuppliedValue
	typeDefn  *TypeSystemDefinition
}

// Root returns the ID of the document part.
func (doc *Document) Root() PartID {
	return 0
}

// Len returns the number of parts in the document.
func (doc *Document) Len() int {
	return len(doc.parts)
}

// Schema returns the schema the document was bound to.
func (doc *Document) Schema() *schema.Schema {
	return doc.schema
}

// Source returns the document's source text.
func (doc *Document) Source() string {
	return doc.src.String()
}

// Kind returns the kind of the part.
func (doc *Document) Kind(id PartID) Kind {
	return doc.parts[id].kind
}

// Parent returns the part's parent or NoPart for the root.
func (doc *Document) Parent(id PartID) PartID {
	return doc.parts[id].parent
}

// NumChildren returns the number of children the part has.
func (doc *Document) NumChildren(id PartID) int {
	return len(doc.parts[id].children)
}

// Child returns the part's i'th child.
func (doc *Document) Child(id PartID, i int) PartID {
	return doc.parts[id].children[i]
}

// Children returns a copy of the part's children, in document order.
func (doc *Document) Children(id PartID) []PartID {
	return append([]PartID(nil), doc.parts[id].children...)
}

// Offset returns the byte offset of the part's first token in the source.
func (doc *Document) Offset(id PartID) int {
	return int(doc.parts[id].pos)
}

// Location returns the line and column of the part's first token.
func (doc *Document) Location(id PartID) diagnostic.Location {
	p := doc.src.Position(doc.parts[id].pos)
	return diagnostic.Location{Line: p.Line, Column: p.Column}
}

// Operation returns the payload of an operation part or nil if the part is
// not an operation.
func (doc *Document) Operation(id PartID) *Operation {
	return doc.parts[id].operation
}

// Variable returns the payload of a variable definition part or nil.
func (doc *Document) Variable(id PartID) *Variable {
	return doc.parts[id].variable
}

// NamedFragment returns the payload of a fragment definition part or nil.
func (doc *Document) NamedFragment(id PartID) *NamedFragment {
	return doc.parts[id].fragment
}

// InlineFragment returns the payload of an inline fragment part or nil.
func (doc *Document) InlineFragment(id PartID) *InlineFragment {
	return doc.parts[id].inline
}

// FragmentSpread returns the payload of a fragment spread part or nil.
func (doc *Document) FragmentSpread(id PartID) *FragmentSpread {
	return doc.parts[id].spread
}

// FieldSelectionSet returns the payload of a selection set part or nil.
func (doc *Document) FieldSelectionSet(id PartID) *FieldSelectionSet {
	return doc.parts[id].selection
}

// Field returns the payload of a field part or nil.
func (doc *Document) Field(id PartID) *Field {
	return doc.parts[id].field
}

// Argument returns the payload of an argument part or nil.
func (doc *Document) Argument(id PartID) *Argument {
	return doc.parts[id].argument
}

// Directive returns the payload of a directive part or nil.
func (doc *Document) Directive(id PartID) *Directive {
	return doc.parts[id].directive
}

// SuppliedValue returns the payload of a value part or nil.
func (doc *Document) SuppliedValue(id PartID) *SuppliedValue {
	return doc.parts[id].value
}

// TypeSystemDefinition returns the payload of a type system definition part
// or nil.
func (doc *Document) TypeSystemDefinition(id PartID) *TypeSystemDefinition {
	return doc.parts[id].typeDefn
}

// Definitions returns the document's top-level definitions in order.
func (doc *Document) Definitions() []PartID {
	return doc.Children(doc.Root())
}

// Operations returns the document's operations in order.
func (doc *Document) Operations() []PartID {
	return append([]PartID(nil), doc.operations...)
}

// Fragments returns the document's named fragments in order, including
// fragments that share a name.
func (doc *Document) Fragments() []PartID {
	return append([]PartID(nil), doc.fragments...)
}

// Fragment returns the first fragment declared with the given name or
// NoPart.
func (doc *Document) Fragment(name string) PartID {
	if id, ok := doc.fragmentsByName[name]; ok {
		return id
	}
	return NoPart
}

// FindOperation returns the operation with the given name or NoPart if it
// could not be found. If the name is empty and the document has exactly one
// operation, then FindOperation returns that operation.
func (doc *Document) FindOperation(name string) PartID {
	if name == "" {
		if len(doc.operations) != 1 {
			return NoPart
		}
		return doc.operations[0]
	}
	for _, id := range doc.operations {
		if doc.parts[id].operation.name == name {
			return id
		}
	}
	return NoPart
}

// Walk calls fn for every part in the subtree rooted at id, in depth-first
// order. If fn returns false, the part's children are skipped.
func (doc *Document) Walk(id PartID, fn func(PartID) bool) {
	if !fn(id) {
		return
	}
	for _, c := range doc.parts[id].children {
		doc.Walk(c, fn)
	}
}

// Ancestor returns the nearest ancestor of id with the given kind or NoPart.
func (doc *Document) Ancestor(id PartID, kind Kind) PartID {
	for id = doc.parts[id].parent; id != NoPart; id = doc.parts[id].parent {
		if doc.parts[id].kind == kind {
			return id
		}
	}
	return NoPart
}

// Describe returns a short description of a part for debugging.
func (doc *Document) Describe(id PartID) string {
	p := &doc.parts[id]
	name := ""
	switch p.kind {
	case OperationPart:
		name = string(p.operation.kind) + " " + p.operation.name
	case VariablePart:
		name = "$" + p.variable.name
	case NamedFragmentPart:
		name = p.fragment.name
	case InlineFragmentPart:
		name = p.inline.typeCondition
	case FragmentSpreadPart:
		name = p.spread.name
	case FieldPart:
		name = p.field.name
	case ArgumentPart:
		name = p.argument.name
	case DirectivePart:
		name = "@" + p.directive.name
	case SuppliedValuePart:
		name = p.value.String()
	case TypeSystemDefinitionPart:
		name = p.typeDefn.keyword + " " + p.typeDefn.name
	}
	return fmt.Sprintf("%v#%d(%s)", p.kind, id, name)
}
