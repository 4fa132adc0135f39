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
	"sort"
	"strings"

	"zombiezen.com/go/gqlplan/schema"
)

// Operation is the payload of an OperationPart.
type Operation struct {
	kind         schema.OperationType
	name         string
	rootType     *schema.Type
	variables    []PartID
	directives   []PartID
	selectionSet PartID

	// variableUses lists the Variable supplied values reachable from the
	// operation, including through fragment spreads.
	variableUses []PartID
}

// Kind returns the operation type: query, mutation, or subscription.
func (op *Operation) Kind() schema.OperationType { return op.kind }

// Name returns the operation's name or the empty string if it is anonymous.
func (op *Operation) Name() string { return op.name }

// RootType returns the schema's root type for the operation kind or nil if
// the schema does not support it.
func (op *Operation) RootType() *schema.Type { return op.rootType }

// Variables returns the operation's variable definitions.
func (op *Operation) Variables() []PartID { return append([]PartID(nil), op.variables...) }

// Directives returns the directives applied to the operation.
func (op *Operation) Directives() []PartID { return append([]PartID(nil), op.directives...) }

// SelectionSet returns the operation's root selection set.
func (op *Operation) SelectionSet() PartID { return op.selectionSet }

// VariableUses returns the variable references reachable from the
// operation in document order, following fragment spreads once each.
func (op *Operation) VariableUses() []PartID { return append([]PartID(nil), op.variableUses...) }

// Variable is the payload of a VariablePart: a variable definition.
type Variable struct {
	name         string
	typ          *schema.TypeRef
	graphType    *schema.Type
	defaultValue PartID
	directives   []PartID
}

// Name returns the variable's name without the leading "$".
func (v *Variable) Name() string { return v.name }

// Type returns the variable's declared type.
func (v *Variable) Type() *schema.TypeRef { return v.typ }

// GraphType returns the schema type named by the declared type or nil if the
// schema has no such type.
func (v *Variable) GraphType() *schema.Type { return v.graphType }

// DefaultValue returns the default value part or NoPart.
func (v *Variable) DefaultValue() PartID { return v.defaultValue }

// Directives returns the directives applied to the variable definition.
func (v *Variable) Directives() []PartID { return append([]PartID(nil), v.directives...) }

// FieldSelectionSet is the payload of a FieldSelectionSetPart. Its children
// are the selections.
type FieldSelectionSet struct {
	parentType *schema.Type
}

// ParentType returns the type the selections are made on or nil if it could
// not be resolved.
func (set *FieldSelectionSet) ParentType() *schema.Type { return set.parentType }

// Field is the payload of a FieldPart.
type Field struct {
	name         string
	alias        string
	def          *schema.Field
	parentType   *schema.Type
	typ          *schema.Type
	arguments    []PartID
	directives   []PartID
	selectionSet PartID
	included     bool
}

// Name returns the name of the field being selected.
func (f *Field) Name() string { return f.name }

// Alias returns the field's alias or the empty string.
func (f *Field) Alias() string { return f.alias }

// ResponseKey returns the alias if present, otherwise the name.
func (f *Field) ResponseKey() string {
	if f.alias != "" {
		return f.alias
	}
	return f.name
}

// Definition returns the schema field the selection resolved to or nil if
// the enclosing type has no such field.
func (f *Field) Definition() *schema.Field { return f.def }

// ParentType returns the enclosing type or nil if it is unknown.
func (f *Field) ParentType() *schema.Type { return f.parentType }

// Type returns the named type of the field's value. This is normally the
// named type of the definition, but a directive may retype the field.
func (f *Field) Type() *schema.Type { return f.typ }

// Arguments returns the field's argument parts.
func (f *Field) Arguments() []PartID { return append([]PartID(nil), f.arguments...) }

// Directives returns the directives applied to the field.
func (f *Field) Directives() []PartID { return append([]PartID(nil), f.directives...) }

// SelectionSet returns the field's selection set or NoPart.
func (f *Field) SelectionSet() PartID { return f.selectionSet }

// Included reports whether the field is part of the result. Fields start out
// included and may be excluded by directives like @skip.
func (f *Field) Included() bool { return f.included }

// NamedFragment is the payload of a NamedFragmentPart.
type NamedFragment struct {
	name          string
	typeCondition string
	target        *schema.Type
	referenced    bool
	directives    []PartID
	selectionSet  PartID
}

// Name returns the fragment's name.
func (frag *NamedFragment) Name() string { return frag.name }

// TypeCondition returns the name of the fragment's target type.
func (frag *NamedFragment) TypeCondition() string { return frag.typeCondition }

// Target returns the resolved target type or nil if the schema has no type
// with the type condition's name.
func (frag *NamedFragment) Target() *schema.Type { return frag.target }

// Referenced reports whether a spread reachable from some operation resolved
// to this fragment.
func (frag *NamedFragment) Referenced() bool { return frag.referenced }

// Directives returns the directives applied to the fragment definition.
func (frag *NamedFragment) Directives() []PartID {
	return append([]PartID(nil), frag.directives...)
}

// SelectionSet returns the fragment's selection set.
func (frag *NamedFragment) SelectionSet() PartID { return frag.selectionSet }

// InlineFragment is the payload of an InlineFragmentPart.
type InlineFragment struct {
	typeCondition string
	target        *schema.Type
	directives    []PartID
	selectionSet  PartID
	included      bool
}

// TypeCondition returns the name in the fragment's type condition or the
// empty string if it has none.
func (frag *InlineFragment) TypeCondition() string { return frag.typeCondition }

// Target returns the type the fragment's selections are made on. Without a
// type condition, this is the enclosing type.
func (frag *InlineFragment) Target() *schema.Type { return frag.target }

// Directives returns the directives applied to the inline fragment.
func (frag *InlineFragment) Directives() []PartID {
	return append([]PartID(nil), frag.directives...)
}

// SelectionSet returns the fragment's selection set.
func (frag *InlineFragment) SelectionSet() PartID { return frag.selectionSet }

// Included reports whether the fragment's selections are part of the result.
func (frag *InlineFragment) Included() bool { return frag.included }

// FragmentSpread is the payload of a FragmentSpreadPart.
type FragmentSpread struct {
	name       string
	fragment   PartID
	parentType *schema.Type
	directives []PartID
	included   bool
}

// Name returns the name of the spread fragment.
func (spread *FragmentSpread) Name() string { return spread.name }

// Fragment returns the NamedFragmentPart the spread resolved to or NoPart.
func (spread *FragmentSpread) Fragment() PartID { return spread.fragment }

// ParentType returns the type of the selection set containing the spread.
func (spread *FragmentSpread) ParentType() *schema.Type { return spread.parentType }

// Directives returns the directives applied to the spread.
func (spread *FragmentSpread) Directives() []PartID {
	return append([]PartID(nil), spread.directives...)
}

// Included reports whether the spread's selections are part of the result.
func (spread *FragmentSpread) Included() bool { return spread.included }

// Directive is the payload of a DirectivePart.
type Directive struct {
	name      string
	def       *schema.Directive
	location  schema.DirectiveLocation
	arguments []PartID
}

// Name returns the directive's name without the leading "@".
func (d *Directive) Name() string { return d.name }

// Definition returns the schema directive or nil if the schema does not
// declare one with the name.
func (d *Directive) Definition() *schema.Directive { return d.def }

// Location returns where the directive is applied.
func (d *Directive) Location() schema.DirectiveLocation { return d.location }

// Arguments returns the directive's argument parts.
func (d *Directive) Arguments() []PartID { return append([]PartID(nil), d.arguments...) }

// Argument is the payload of an ArgumentPart. Arguments appear on fields and
// directives, and as the fields of complex values.
type Argument struct {
	name  string
	def   *schema.InputValue
	value PartID
}

// Name returns the argument's name.
func (arg *Argument) Name() string { return arg.name }

// Definition returns the field argument, directive argument, or input object
// field the argument resolved to, or nil.
func (arg *Argument) Definition() *schema.InputValue { return arg.def }

// Value returns the argument's SuppliedValuePart.
func (arg *Argument) Value() PartID { return arg.value }

// ValueKind is the form of a supplied value.
type ValueKind uint8

// Value kinds.
const (
	ScalarValue ValueKind = iota
	ComplexValue
	ListValue
	VariableValue
	NullValue
)

func (kind ValueKind) String() string {
	switch kind {
	case ScalarValue:
		return "Scalar"
	case ComplexValue:
		return "Complex"
	case ListValue:
		return "List"
	case VariableValue:
		return "Variable"
	case NullValue:
		return "Null"
	default:
		return "ValueKind(?)"
	}
}

// ScalarKind is the literal form of a scalar value.
type ScalarKind uint8

// Scalar kinds.
const (
	StringScalar ScalarKind = iota
	BooleanScalar
	IntScalar
	FloatScalar
	EnumScalar
)

func (kind ScalarKind) String() string {
	switch kind {
	case StringScalar:
		return "String"
	case BooleanScalar:
		return "Boolean"
	case IntScalar:
		return "Int"
	case FloatScalar:
		return "Float"
	case EnumScalar:
		return "Enum"
	default:
		return "ScalarKind(?)"
	}
}

// SuppliedValue is the payload of a SuppliedValuePart.
type SuppliedValue struct {
	kind     ValueKind
	scalar   ScalarKind
	raw      string
	str      string
	expected *schema.TypeRef

	// fields maps a complex value's field names to the first ArgumentPart
	// with that name. It is built in one pass after the children exist.
	fields map[string]PartID
	// text is the value in GraphQL syntax.
	text string
}

// Kind returns the value's form.
func (v *SuppliedValue) Kind() ValueKind { return v.kind }

// ScalarKind returns the literal form of a scalar value.
func (v *SuppliedValue) ScalarKind() ScalarKind { return v.scalar }

// Raw returns the literal text of a scalar value as it appears in the
// source, or the variable name for a variable reference.
func (v *SuppliedValue) Raw() string { return v.raw }

// StringValue returns the decoded string for a String scalar.
func (v *SuppliedValue) StringValue() string { return v.str }

// Expected returns the input type the value is expected to conform to or
// nil if it is not known.
func (v *SuppliedValue) Expected() *schema.TypeRef { return v.expected }

// Field returns the ArgumentPart of a complex value's field or NoPart. If a
// field is given more than once, the first is returned.
func (v *SuppliedValue) Field(name string) PartID {
	if id, ok := v.fields[name]; ok {
		return id
	}
	return NoPart
}

// FieldNames returns the distinct field names of a complex value, sorted.
func (v *SuppliedValue) FieldNames() []string {
	names := make([]string, 0, len(v.fields))
	for name := range v.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsVariable reports whether the value is a variable reference.
func (v *SuppliedValue) IsVariable() bool { return v.kind == VariableValue }

// String returns the value in GraphQL syntax.
func (v *SuppliedValue) String() string { return v.text }

// TypeSystemDefinition is the payload of a TypeSystemDefinitionPart. Such
// definitions are not executable and are kept only so that they can be
// reported.
type TypeSystemDefinition struct {
	keyword string
	name    string
}

// Keyword returns the definition's leading keywords, like "type" or
// "extend scalar".
func (defn *TypeSystemDefinition) Keyword() string { return defn.keyword }

// Name returns the defined name or the empty string (e.g. for "schema").
func (defn *TypeSystemDefinition) Name() string { return defn.name }

// Describe returns the definition as "keyword name".
func (defn *TypeSystemDefinition) Describe() string {
	return strings.TrimSpace(defn.keyword + " " + defn.name)
}
