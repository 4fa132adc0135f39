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

// Package schema provides the GraphQL type system that documents are
// validated against.
package schema

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/xerrors"
)

// OperationType is one of the three kinds of GraphQL operation.
type OperationType string

// Operation types.
const (
	Query        OperationType = "query"
	Mutation     OperationType = "mutation"
	Subscription OperationType = "subscription"
)

// Schema is a validated set of type and directive definitions.
// It is safe to use from multiple goroutines.
type Schema struct {
	id           string
	description  string
	types        map[string]*Type
	directives   map[string]*Directive
	query        *Type
	mutation     *Type
	subscription *Type

	schemaField *Field
	typeField   *Field
}

// Config is the input to New.
type Config struct {
	Description string
	Types       []*Type
	Directives  []*Directive

	// Root operation type names. Query defaults to "Query". Mutation and
	// Subscription default to "Mutation" and "Subscription" if types with
	// those names exist.
	Query        string
	Mutation     string
	Subscription string
}

const reservedPrefix = "__"

// New builds a schema from the given definitions. The built-in scalars,
// directives, and introspection types are added automatically.
func New(cfg Config) (*Schema, error) {
	b := builtins()
	s := &Schema{
		id:          uuid.NewString(),
		description: cfg.Description,
		types:       make(map[string]*Type, len(b.types)+len(cfg.Types)),
		directives:  make(map[string]*Directive, len(b.directives)+len(cfg.Directives)),
	}
	for _, t := range b.types {
		s.types[t.Name] = t
	}
	for _, d := range b.directives {
		s.directives[d.Name] = d
	}
	for _, t := range cfg.Types {
		if t == nil {
			continue
		}
		if t.Name == "" {
			return nil, xerrors.New("build schema: type with empty name")
		}
		if strings.HasPrefix(t.Name, reservedPrefix) {
			return nil, xerrors.Errorf("build schema: use of reserved name %q", t.Name)
		}
		if s.types[t.Name] != nil {
			return nil, xerrors.Errorf("build schema: multiple types with name %q", t.Name)
		}
		s.types[t.Name] = t
	}
	for _, d := range cfg.Directives {
		if d == nil {
			continue
		}
		if s.directives[d.Name] != nil {
			return nil, xerrors.Errorf("build schema: multiple directives with name %q", d.Name)
		}
		s.directives[d.Name] = d
	}

	for _, t := range cfg.Types {
		if t == nil {
			continue
		}
		if err := s.checkType(t); err != nil {
			return nil, xerrors.Errorf("build schema: %w", err)
		}
		t.index()
	}
	for _, d := range cfg.Directives {
		if d == nil {
			continue
		}
		if err := s.checkDirective(d); err != nil {
			return nil, xerrors.Errorf("build schema: %w", err)
		}
	}
	s.fillImplementations(cfg.Types)

	var err error
	if s.query, err = s.rootType("query", cfg.Query, "Query", true); err != nil {
		return nil, xerrors.Errorf("build schema: %w", err)
	}
	if s.mutation, err = s.rootType("mutation", cfg.Mutation, "Mutation", false); err != nil {
		return nil, xerrors.Errorf("build schema: %w", err)
	}
	if s.subscription, err = s.rootType("subscription", cfg.Subscription, "Subscription", false); err != nil {
		return nil, xerrors.Errorf("build schema: %w", err)
	}
	s.schemaField = &Field{
		Name:        "__schema",
		Description: "Access the current type schema of this server.",
		Type:        NonNullType(NamedType("__Schema")),
	}
	s.typeField = &Field{
		Name:        "__type",
		Description: "Request the type information of a single type.",
		Type:        NamedType("__Type"),
		Arguments: []*InputValue{
			{Name: "name", Type: NonNullType(NamedType("String"))},
		},
	}
	return s, nil
}

func (s *Schema) rootType(op, name, defaultName string, required bool) (*Type, error) {
	explicit := name != ""
	if !explicit {
		name = defaultName
	}
	t := s.types[name]
	if t == nil {
		if required || explicit {
			return nil, xerrors.Errorf("could not find %s type %q", op, name)
		}
		return nil, nil
	}
	if t.Kind != ObjectKind {
		return nil, xerrors.Errorf("%s type %s must be an object", op, name)
	}
	return t, nil
}

func (s *Schema) checkType(t *Type) error {
	switch t.Kind {
	case ScalarKind:
		return nil
	case ObjectKind, InterfaceKind:
		if len(t.Fields) == 0 {
			return xerrors.Errorf("%s must define one or more fields", t.Name)
		}
		seen := make(map[string]bool, len(t.Fields))
		for _, f := range t.Fields {
			if strings.HasPrefix(f.Name, reservedPrefix) {
				return xerrors.Errorf("%s: use of reserved name %q", t.Name, f.Name)
			}
			if seen[f.Name] {
				return xerrors.Errorf("multiple fields named %q in %s", f.Name, t.Name)
			}
			seen[f.Name] = true
			ft := s.types[f.Type.NamedType()]
			if ft == nil {
				return xerrors.Errorf("%s.%s: undefined type %v", t.Name, f.Name, f.Type)
			}
			if !ft.IsOutput() {
				return xerrors.Errorf("%s.%s: %v is not an output type", t.Name, f.Name, f.Type)
			}
			if err := s.checkInputValues(t.Name+"."+f.Name, f.Arguments); err != nil {
				return err
			}
		}
		for _, name := range t.Interfaces {
			iface := s.types[name]
			if iface == nil {
				return xerrors.Errorf("%s implements undefined interface %s", t.Name, name)
			}
			if iface.Kind != InterfaceKind {
				return xerrors.Errorf("%s implements %s, which is not an interface", t.Name, name)
			}
		}
		return nil
	case UnionKind:
		if len(t.PossibleTypes) == 0 {
			return xerrors.Errorf("union %s must have one or more member types", t.Name)
		}
		for _, name := range t.PossibleTypes {
			member := s.types[name]
			if member == nil {
				return xerrors.Errorf("union %s: undefined type %s", t.Name, name)
			}
			if member.Kind != ObjectKind {
				return xerrors.Errorf("union %s: member %s is not an object type", t.Name, name)
			}
		}
		return nil
	case EnumKind:
		if len(t.EnumValues) == 0 {
			return xerrors.Errorf("enum %s must have one or more values", t.Name)
		}
		seen := make(map[string]bool, len(t.EnumValues))
		for _, v := range t.EnumValues {
			if strings.HasPrefix(v.Name, reservedPrefix) {
				return xerrors.Errorf("%s: use of reserved name %q", t.Name, v.Name)
			}
			if v.Name == "true" || v.Name == "false" || v.Name == "null" {
				return xerrors.Errorf("%s: invalid enum value %q", t.Name, v.Name)
			}
			if seen[v.Name] {
				return xerrors.Errorf("multiple enum values with name %q in %s", v.Name, t.Name)
			}
			seen[v.Name] = true
		}
		return nil
	case InputObjectKind:
		if len(t.InputFields) == 0 {
			return xerrors.Errorf("input %s must define one or more fields", t.Name)
		}
		return s.checkInputValues(t.Name, t.InputFields)
	default:
		return xerrors.Errorf("%s has unknown kind %q", t.Name, t.Kind)
	}
}

func (s *Schema) checkInputValues(owner string, list []*InputValue) error {
	seen := make(map[string]bool, len(list))
	for _, iv := range list {
		if strings.HasPrefix(iv.Name, reservedPrefix) {
			return xerrors.Errorf("%s: use of reserved name %q", owner, iv.Name)
		}
		if seen[iv.Name] {
			return xerrors.Errorf("%s: multiple input values named %q", owner, iv.Name)
		}
		seen[iv.Name] = true
		t := s.types[iv.Type.NamedType()]
		if t == nil {
			return xerrors.Errorf("%s(%s): undefined type %v", owner, iv.Name, iv.Type)
		}
		if !t.IsInput() {
			return xerrors.Errorf("%s(%s): %v is not an input type", owner, iv.Name, iv.Type)
		}
	}
	return nil
}

func (s *Schema) checkDirective(d *Directive) error {
	if d.Name == "" {
		return xerrors.New("directive with empty name")
	}
	if len(d.Locations) == 0 {
		return xerrors.Errorf("directive @%s must have one or more locations", d.Name)
	}
	for _, loc := range d.Locations {
		if !knownLocations[loc] {
			return xerrors.Errorf("directive @%s: unknown location %q", d.Name, loc)
		}
	}
	return s.checkInputValues("@"+d.Name, d.Arguments)
}

// fillImplementations records each object as a possible type of the
// interfaces it implements.
func (s *Schema) fillImplementations(types []*Type) {
	objects := make([]*Type, 0, len(types))
	for _, t := range types {
		if t != nil && t.Kind == ObjectKind {
			objects = append(objects, t)
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })
	for _, obj := range objects {
		for _, name := range obj.Interfaces {
			iface := s.types[name]
			if !containsString(iface.PossibleTypes, obj.Name) {
				iface.PossibleTypes = append(iface.PossibleTypes, obj.Name)
			}
		}
	}
}

// ID returns an identifier unique to this schema value, suitable for use in
// cache keys.
func (s *Schema) ID() string {
	return s.id
}

// Description returns the schema's description.
func (s *Schema) Description() string {
	return s.description
}

// Type returns the named type or nil if the schema has no such type.
func (s *Schema) Type(name string) *Type {
	return s.types[name]
}

// Directive returns the named directive or nil if the schema has no such
// directive.
func (s *Schema) Directive(name string) *Directive {
	return s.directives[name]
}

// RootType returns the root type for the operation type or nil if the schema
// does not support the operation type.
func (s *Schema) RootType(op OperationType) *Type {
	switch op {
	case Query:
		return s.query
	case Mutation:
		return s.mutation
	case Subscription:
		return s.subscription
	default:
		return nil
	}
}

// FieldOf returns the field of parent with the given name, including the
// introspection meta fields. It returns nil if there is no such field.
func (s *Schema) FieldOf(parent *Type, name string) *Field {
	if parent != nil && parent == s.query {
		switch name {
		case s.schemaField.Name:
			return s.schemaField
		case s.typeField.Name:
			return s.typeField
		}
	}
	return parent.Field(name)
}

// Types returns the schema's types sorted by name.
func (s *Schema) Types() []*Type {
	list := make([]*Type, 0, len(s.types))
	for _, t := range s.types {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Directives returns the schema's directives sorted by name.
func (s *Schema) Directives() []*Directive {
	list := make([]*Directive, 0, len(s.directives))
	for _, d := range s.directives {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Overlaps reports whether some object type is a possible type of both a
// and b.
// See https://graphql.github.io/graphql-spec/June2018/#sec-Fragment-spread-is-possible
func Overlaps(a, b *Type) bool {
	for _, name := range a.PossibleTypeNames() {
		if containsString(b.PossibleTypeNames(), name) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, elem := range list {
		if elem == s {
			return true
		}
	}
	return false
}
