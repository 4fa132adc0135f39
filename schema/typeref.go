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
	"strings"

	"golang.org/x/xerrors"
)

// TypeRef is a reference to a type, possibly wrapped in lists or non-null
// modifiers.
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // for List and NonNull
	Named  string   // for Named
}

// TypeRefKind is the form of a TypeRef.
type TypeRefKind string

// Type reference forms.
const (
	NamedRef   TypeRefKind = "NAMED"
	ListRef    TypeRefKind = "LIST"
	NonNullRef TypeRefKind = "NON_NULL"
)

// NamedType returns a reference to the named type.
func NamedType(name string) *TypeRef { return &TypeRef{Kind: NamedRef, Named: name} }

// ListType returns a reference to a list of elem.
func ListType(elem *TypeRef) *TypeRef { return &TypeRef{Kind: ListRef, OfType: elem} }

// NonNullType returns a non-null reference to t. t must not already be
// non-null.
func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: NonNullRef, OfType: t} }

// ParseTypeRef parses a type reference like "[Int!]!".
func ParseTypeRef(s string) (*TypeRef, error) {
	t, rest, err := parseTypeRef(strings.TrimSpace(s))
	if err != nil {
		return nil, xerrors.Errorf("parse type %q: %w", s, err)
	}
	if rest != "" {
		return nil, xerrors.Errorf("parse type %q: unexpected %q", s, rest)
	}
	return t, nil
}

func parseTypeRef(s string) (_ *TypeRef, rest string, _ error) {
	var t *TypeRef
	if strings.HasPrefix(s, "[") {
		elem, rest, err := parseTypeRef(strings.TrimLeft(s[1:], " "))
		if err != nil {
			return nil, "", err
		}
		if !strings.HasPrefix(rest, "]") {
			return nil, "", xerrors.New("missing ']'")
		}
		t = ListType(elem)
		s = rest[1:]
	} else {
		n := 0
		for n < len(s) && isNameByte(s[n], n == 0) {
			n++
		}
		if n == 0 {
			return nil, "", xerrors.New("expected type name")
		}
		t = NamedType(s[:n])
		s = s[n:]
	}
	s = strings.TrimLeft(s, " ")
	if strings.HasPrefix(s, "!") {
		t = NonNullType(t)
		s = strings.TrimLeft(s[1:], " ")
	}
	return t, s, nil
}

func isNameByte(c byte, first bool) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_' || !first && '0' <= c && c <= '9'
}

// String returns the reference in GraphQL syntax.
func (t *TypeRef) String() string {
	switch {
	case t == nil:
		return "<nil>"
	case t.Kind == NonNullRef:
		return t.OfType.String() + "!"
	case t.Kind == ListRef:
		return "[" + t.OfType.String() + "]"
	default:
		return t.Named
	}
}

// IsNonNull reports whether the reference is wrapped with Non-Null.
func (t *TypeRef) IsNonNull() bool {
	return t != nil && t.Kind == NonNullRef
}

// IsList reports whether the reference is a list, possibly non-null.
func (t *TypeRef) IsList() bool {
	if t == nil {
		return false
	}
	return t.Kind == ListRef || t.Kind == NonNullRef && t.OfType.Kind == ListRef
}

// Nullable returns the reference without its outer non-null modifier.
func (t *TypeRef) Nullable() *TypeRef {
	if t.IsNonNull() {
		return t.OfType
	}
	return t
}

// Elem returns the element type of a list reference, or nil if the reference
// is not a list.
func (t *TypeRef) Elem() *TypeRef {
	if !t.IsList() {
		return nil
	}
	return t.Nullable().OfType
}

// NamedType returns the innermost named type.
func (t *TypeRef) NamedType() string {
	for t != nil && t.Kind != NamedRef {
		t = t.OfType
	}
	if t == nil {
		return ""
	}
	return t.Named
}

// Equal reports whether two references denote the same type.
func (t *TypeRef) Equal(other *TypeRef) bool {
	for {
		switch {
		case t == nil || other == nil:
			return t == other
		case t.Kind != other.Kind:
			return false
		case t.Kind == NamedRef:
			return t.Named == other.Named
		}
		t, other = t.OfType, other.OfType
	}
}

// AreTypesCompatible reports if a value of variableType can be passed to a
// usage expecting locationType.
// See https://graphql.github.io/graphql-spec/June2018/#AreTypesCompatible()
func AreTypesCompatible(locationType, variableType *TypeRef) bool {
	for {
		switch {
		case locationType == nil || variableType == nil:
			return false
		case locationType.IsNonNull():
			if !variableType.IsNonNull() {
				return false
			}
			locationType = locationType.OfType
			variableType = variableType.OfType
		case variableType.IsNonNull():
			variableType = variableType.OfType
		case locationType.Kind == ListRef:
			if variableType.Kind != ListRef {
				return false
			}
			locationType = locationType.OfType
			variableType = variableType.OfType
		case variableType.Kind == ListRef:
			return false
		default:
			return locationType.Named == variableType.Named
		}
	}
}
