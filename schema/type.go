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

// Kind is the kind of a named type.
type Kind string

// Type kinds.
const (
	ScalarKind      Kind = "SCALAR"
	ObjectKind      Kind = "OBJECT"
	InterfaceKind   Kind = "INTERFACE"
	UnionKind       Kind = "UNION"
	EnumKind        Kind = "ENUM"
	InputObjectKind Kind = "INPUT_OBJECT"
)

// Type is a named GraphQL type.
//
// A Type passed to New belongs to the resulting schema and must not be
// modified afterward.
type Type struct {
	Name        string
	Kind        Kind
	Description string

	// Fields is set for objects and interfaces.
	Fields []*Field
	// Interfaces is the list of interfaces an object or interface implements.
	Interfaces []string
	// PossibleTypes is the list of member types of a union. For interfaces,
	// New fills in the objects that implement the interface.
	PossibleTypes []string
	// EnumValues is set for enums.
	EnumValues []*EnumValue
	// InputFields is set for input objects.
	InputFields []*InputValue

	fieldIndex      map[string]*Field
	inputFieldIndex map[string]*InputValue
	enumValueIndex  map[string]*EnumValue
}

// Field is a field on an object or interface.
type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Arguments         []*InputValue
	IsDeprecated      bool
	DeprecationReason string
}

// InputValue is an argument or an input object field.
type InputValue struct {
	Name        string
	Description string
	Type        *TypeRef
	// DefaultValue is the default's GraphQL literal or nil if the input
	// value has no default.
	DefaultValue *string
}

// EnumValue is a symbol of an enum type.
type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

// typenameField is the meta field available on every composite type.
var typenameField = &Field{
	Name:        "__typename",
	Description: "The name of the current object type.",
	Type:        NonNullType(NamedType("String")),
}

// String returns the type's name.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.Name
}

// IsComposite reports whether selections can be made on the type.
// https://graphql.github.io/graphql-spec/June2018/#sec-Fragments-On-Composite-Types
func (t *Type) IsComposite() bool {
	return t != nil && (t.Kind == ObjectKind || t.Kind == InterfaceKind || t.Kind == UnionKind)
}

// IsAbstract reports whether the type is an interface or union.
func (t *Type) IsAbstract() bool {
	return t != nil && (t.Kind == InterfaceKind || t.Kind == UnionKind)
}

// IsLeaf reports whether the type is a scalar or enum.
func (t *Type) IsLeaf() bool {
	return t != nil && (t.Kind == ScalarKind || t.Kind == EnumKind)
}

// IsInput reports whether the type may be used for arguments and variables.
// See https://graphql.github.io/graphql-spec/June2018/#IsInputType()
func (t *Type) IsInput() bool {
	return t != nil && (t.Kind == ScalarKind || t.Kind == EnumKind || t.Kind == InputObjectKind)
}

// IsOutput reports whether the type may be the type of a field.
// See https://graphql.github.io/graphql-spec/June2018/#IsOutputType()
func (t *Type) IsOutput() bool {
	return t != nil && t.Kind != InputObjectKind
}

// Field returns the field with the given name or nil if the type has no such
// field. __typename is present on every composite type.
func (t *Type) Field(name string) *Field {
	if !t.IsComposite() {
		return nil
	}
	if name == typenameField.Name {
		return typenameField
	}
	if t.fieldIndex != nil {
		return t.fieldIndex[name]
	}
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// InputField returns the input object field with the given name or nil.
func (t *Type) InputField(name string) *InputValue {
	if t == nil || t.Kind != InputObjectKind {
		return nil
	}
	if t.inputFieldIndex != nil {
		return t.inputFieldIndex[name]
	}
	return findInputValue(t.InputFields, name)
}

// HasEnumValue reports whether name is one of an enum's symbols.
func (t *Type) HasEnumValue(name string) bool {
	if t == nil || t.Kind != EnumKind {
		return false
	}
	if t.enumValueIndex != nil {
		return t.enumValueIndex[name] != nil
	}
	for _, v := range t.EnumValues {
		if v.Name == name {
			return true
		}
	}
	return false
}

// PossibleTypeNames returns the names of the object types that a value of
// this type could be at runtime.
func (t *Type) PossibleTypeNames() []string {
	switch {
	case t == nil:
		return nil
	case t.Kind == ObjectKind:
		return []string{t.Name}
	case t.IsAbstract():
		return t.PossibleTypes
	default:
		return nil
	}
}

// Implements reports whether the type declares that it implements the named
// interface.
func (t *Type) Implements(iface string) bool {
	if t == nil {
		return false
	}
	for _, name := range t.Interfaces {
		if name == iface {
			return true
		}
	}
	return false
}

func (t *Type) index() {
	switch t.Kind {
	case ObjectKind, InterfaceKind:
		t.fieldIndex = make(map[string]*Field, len(t.Fields))
		for _, f := range t.Fields {
			t.fieldIndex[f.Name] = f
		}
	case InputObjectKind:
		t.inputFieldIndex = make(map[string]*InputValue, len(t.InputFields))
		for _, f := range t.InputFields {
			t.inputFieldIndex[f.Name] = f
		}
	case EnumKind:
		t.enumValueIndex = make(map[string]*EnumValue, len(t.EnumValues))
		for _, v := range t.EnumValues {
			t.enumValueIndex[v.Name] = v
		}
	}
}

// Argument returns the field's argument with the given name or nil.
func (f *Field) Argument(name string) *InputValue {
	if f == nil {
		return nil
	}
	return findInputValue(f.Arguments, name)
}

// HasDefault reports whether the input value declares a default.
func (iv *InputValue) HasDefault() bool {
	return iv != nil && iv.DefaultValue != nil
}

func findInputValue(list []*InputValue, name string) *InputValue {
	for _, iv := range list {
		if iv.Name == name {
			return iv
		}
	}
	return nil
}
